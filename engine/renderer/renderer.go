package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

// Backend is the part of a graphics device the renderer records with.
type Backend interface {
	driver.Encoder
	CreateRenderPass(format driver.Format, clear bool) (driver.RenderPass, error)
	DestroyRenderPass(rp driver.RenderPass)
}

// Renderer owns the render passes and everything recorded into a frame.
// It is the scene and overlay pass of the frame recorder.
type Renderer struct {
	backend Backend
	format  driver.Format

	mainPass    driver.RenderPass
	overlayPass driver.RenderPass
	world       *views.WorldView
	ui          *views.UIView

	settings  metadata.Settings
	asset     assets.Asset
	materials []assets.Material

	// idle reports whether no submitted work can still read renderer
	// state. Only consulted when debug is set.
	idle  func() bool
	debug bool
}

func New(backend Backend, format driver.Format, settings metadata.Settings, debug bool) (*Renderer, error) {
	if !metadata.IsValidSSAOKernelSize(settings.SSAOKernelSize) {
		return nil, fmt.Errorf("ssao kernel size %d: %w", settings.SSAOKernelSize, driver.ErrInvalid)
	}
	mainPass, err := backend.CreateRenderPass(format, true)
	if err != nil {
		return nil, fmt.Errorf("create main render pass: %w", err)
	}
	overlayPass, err := backend.CreateRenderPass(format, false)
	if err != nil {
		backend.DestroyRenderPass(mainPass)
		return nil, fmt.Errorf("create overlay render pass: %w", err)
	}
	core.LogInfo("renderer created (format %s)", format)
	return &Renderer{
		backend:     backend,
		format:      format,
		mainPass:    mainPass,
		overlayPass: overlayPass,
		world:       views.NewWorldView(backend, mainPass),
		ui:          views.NewUIView(backend, overlayPass),
		settings:    settings,
		debug:       debug,
	}, nil
}

// MainPass is the render pass swapchain framebuffers are created against.
// The overlay pass is compatible with it.
func (r *Renderer) MainPass() driver.RenderPass {
	return r.mainPass
}

// SetIdleCheck installs the probe used to catch settings mutated while the
// GPU may still be reading them.
func (r *Renderer) SetIdleCheck(idle func() bool) {
	r.idle = idle
}

func (r *Renderer) Settings() metadata.Settings {
	return r.settings
}

func (r *Renderer) Model() assets.Asset {
	return r.asset
}

func (r *Renderer) Materials() []assets.Material {
	return r.materials
}

func (r *Renderer) checkIdle(op string) {
	if r.debug && r.idle != nil && !r.idle() {
		core.Violation("%s called while the graphics queue may be busy", op)
	}
}

func (r *Renderer) SetEmissiveIntensity(v float32) {
	r.checkIdle("SetEmissiveIntensity")
	r.settings.EmissiveIntensity = v
}

func (r *Renderer) SetSSAOEnabled(enabled bool) {
	r.checkIdle("SetSSAOEnabled")
	r.settings.SSAOEnabled = enabled
}

func (r *Renderer) SetSSAOKernelSize(size uint32) error {
	r.checkIdle("SetSSAOKernelSize")
	if !metadata.IsValidSSAOKernelSize(size) {
		return fmt.Errorf("ssao kernel size %d: %w", size, driver.ErrInvalid)
	}
	r.settings.SSAOKernelSize = size
	return nil
}

func (r *Renderer) SetSSAORadius(radius float32) {
	r.checkIdle("SetSSAORadius")
	r.settings.SSAORadius = radius
}

func (r *Renderer) SetSSAOStrength(strength float32) {
	r.checkIdle("SetSSAOStrength")
	r.settings.SSAOStrength = strength
}

func (r *Renderer) SetToneMapMode(mode metadata.ToneMapMode) {
	r.checkIdle("SetToneMapMode")
	r.settings.ToneMapMode = mode
}

func (r *Renderer) SetOutputMode(mode metadata.OutputMode) {
	r.checkIdle("SetOutputMode")
	r.settings.OutputMode = mode
}

// SetModel installs the asset drawn by the scene pass. The caller keeps
// ownership and releases the previous asset.
func (r *Renderer) SetModel(asset assets.Asset) {
	r.checkIdle("SetModel")
	r.asset = asset
	r.materials = nil
	if asset != nil {
		r.materials = asset.Materials()
		core.LogInfo("renderer: model %s with %d materials", asset.ID(), len(r.materials))
	}
}

func (r *Renderer) RecordScene(cb driver.CommandBuffer, target frame.Target, scene metadata.SceneView, settings metadata.Settings) error {
	return r.world.Render(cb, target, views.WorldUniforms{
		View:          scene.View,
		Projection:    scene.Projection,
		Eye:           scene.Eye,
		Settings:      settings,
		ModelID:       scene.ModelID,
		MaterialCount: len(r.materials),
		AnimationTime: scene.AnimationTime,
	})
}

func (r *Renderer) RecordOverlay(cb driver.CommandBuffer, target frame.Target, draw metadata.DrawData) error {
	return r.ui.Render(cb, target, draw)
}

// Uniforms returns the snapshot last recorded for image index.
func (r *Renderer) Uniforms(index uint32) (views.WorldUniforms, bool) {
	return r.world.Uniforms(index)
}

func (r *Renderer) OnNewSwapchain(props frame.SwapchainProperties) error {
	if props.SurfaceFormat.Format != r.format {
		core.LogWarn("swapchain format changed from %s to %s, render passes were built for the former", r.format, props.SurfaceFormat.Format)
	}
	r.world.OnResize(int(props.ImageCount))
	core.LogDebug("renderer: %d images at %dx%d", props.ImageCount, props.Extent.Width, props.Extent.Height)
	return nil
}

// Shutdown destroys the render passes. The device must be idle.
func (r *Renderer) Shutdown() {
	if r.overlayPass != nil {
		r.backend.DestroyRenderPass(r.overlayPass)
		r.overlayPass = nil
	}
	if r.mainPass != nil {
		r.backend.DestroyRenderPass(r.mainPass)
		r.mainPass = nil
	}
	r.asset = nil
	r.materials = nil
}
