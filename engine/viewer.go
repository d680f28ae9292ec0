package engine

import (
	"sync/atomic"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gui"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Stage uint8

const (
	// Viewer is built but Run was not called yet
	StageUninitialized Stage = iota
	// Viewer is drawing frames
	StageRunning
	// Viewer is tearing down its resources
	StageShuttingDown
	// Viewer is done; it cannot be restarted
	StageStopped
)

func (s Stage) String() string {
	switch s {
	case StageRunning:
		return "running"
	case StageShuttingDown:
		return "shutting down"
	case StageStopped:
		return "stopped"
	}
	return "uninitialized"
}

// Window is the platform window as the viewer sees it.
type Window interface {
	// PumpMessages returns the events that arrived since the last call, in
	// order.
	PumpMessages() []core.EventContext
	FramebufferSize() (uint32, uint32)
}

type AssetLoader interface {
	Submit(path string)
	TryTakeCompleted() (assets.Asset, bool)
	Shutdown()
}

// Overlay is the HUD. Every New* accessor hands out a pending value once.
type Overlay interface {
	frame.OverlaySource
	HandleEvent(e core.EventContext)
	PrepareFrame()
	NewEmissiveIntensity() (float32, bool)
	NewSSAOEnabled() (bool, bool)
	NewSSAOKernelSize() (uint32, bool)
	NewSSAORadius() (float32, bool)
	NewSSAOStrength() (float32, bool)
	NewToneMapMode() (metadata.ToneMapMode, bool)
	NewOutputMode() (metadata.OutputMode, bool)
	TakeAnimationControls() gui.AnimationControls
	AnimationSpeed() float32
	ShouldResetCamera() bool
	WantsPointer() bool
	SetModelMetadata(id string, meta *assets.Metadata)
	SetPlayback(p *assets.Playback)
	SetCamera(eye math.Vec3, distance float32)
	SetFrameStats(fps, frameMs float64)
}

// SettingsRenderer is the renderer state the viewer mutates between frames.
// Setters must only be called while the graphics queue is idle.
type SettingsRenderer interface {
	Settings() metadata.Settings
	SetEmissiveIntensity(v float32)
	SetSSAOEnabled(enabled bool)
	SetSSAOKernelSize(size uint32) error
	SetSSAORadius(radius float32)
	SetSSAOStrength(strength float32)
	SetToneMapMode(mode metadata.ToneMapMode)
	SetOutputMode(mode metadata.OutputMode)
	SetModel(asset assets.Asset)
	Shutdown()
}

type ModelWatcher interface {
	Watch(path string) error
	Close() error
}

// Components is everything a Viewer drives. Watcher may be nil. Release
// runs last during shutdown, in order; it is where the graphics backend and
// the window go away.
type Components struct {
	Window    Window
	Presenter *frame.Presenter
	Renderer  SettingsRenderer
	Loader    AssetLoader
	Overlay   Overlay
	Watcher   ModelWatcher
	Release   []func()
}

// Viewer runs the frame loop on the calling goroutine, which must be the
// main OS thread.
type Viewer struct {
	Components

	stage   Stage
	camera  *components.Camera
	clock   *core.Clock
	metrics *core.Metrics
	input   core.InputState

	// asset is the model on screen. Only the loop goroutine touches it.
	asset assets.Asset
	stop  atomic.Bool
}

func NewViewer(c Components) *Viewer {
	v := &Viewer{
		Components: c,
		stage:      StageUninitialized,
		camera:     components.NewCamera(),
		clock:      core.NewClock(),
		metrics:    core.NewMetrics(),
	}
	ext := c.Presenter.Extent()
	v.camera.SetAspect(ext.Width, ext.Height)
	c.Presenter.AddListener(v)
	c.Presenter.SetPump(v.pump)
	return v
}

// Stop asks the loop to finish after the current iteration. Safe to call
// from any goroutine.
func (v *Viewer) Stop() {
	v.stop.Store(true)
}

func (v *Viewer) Stage() Stage {
	return v.stage
}

func (v *Viewer) Camera() *components.Camera {
	return v.camera
}

// Asset returns the model currently on screen, if any.
func (v *Viewer) Asset() assets.Asset {
	return v.asset
}

func (v *Viewer) OnNewSwapchain(props frame.SwapchainProperties) error {
	v.camera.SetAspect(props.Extent.Width, props.Extent.Height)
	return nil
}

// Run loops until the window closes or Stop is called, then shuts everything
// down. A fatal error stops the loop and is returned after shutdown.
func (v *Viewer) Run() error {
	if v.stage != StageUninitialized {
		return nil
	}
	v.stage = StageRunning
	v.clock.Start()
	core.LogInfo("viewer running")

	var err error
	for v.stage == StageRunning {
		if v.stop.Load() {
			break
		}
		if err = v.Step(); err != nil {
			core.LogError("frame failed: %s", err)
			break
		}
	}
	v.shutdown()
	return err
}

// Step runs one loop iteration.
func (v *Viewer) Step() error {
	delta := v.clock.Tick()
	v.metrics.Update(delta)

	if !v.processEvents() {
		v.stage = StageShuttingDown
		return nil
	}

	if err := v.installCompletedAsset(); err != nil {
		return err
	}

	v.updateAnimation(float32(delta))
	v.updateCamera()

	if err := v.applySettings(); err != nil {
		return err
	}

	scene := v.sceneView()
	v.Overlay.SetCamera(scene.Eye, v.camera.Distance)
	v.Overlay.SetFrameStats(v.metrics.Frame())
	v.Overlay.PrepareFrame()

	err := v.Presenter.DrawFrame(scene, v.Overlay, v.Renderer.Settings())
	if frame.IsAborted(err) {
		core.LogInfo("close requested while minimized")
		v.stage = StageShuttingDown
		return nil
	}
	return err
}

// processEvents drains the window and reports false once a stop was
// requested.
func (v *Viewer) processEvents() bool {
	v.input = v.input.Next()
	running := true
	for _, e := range v.Window.PumpMessages() {
		v.input.Apply(e)
		v.Overlay.HandleEvent(e)

		switch e.Type {
		case core.EVENT_CODE_APPLICATION_QUIT:
			running = false
		case core.EVENT_CODE_KEY_PRESSED:
			if e.Data.(*core.KeyEvent).KeyCode == core.KEY_ESCAPE {
				running = false
			}
		case core.EVENT_CODE_RESIZED:
			re := e.Data.(*core.ResizeEvent)
			v.Presenter.RequestResize(re.Width, re.Height)
		case core.EVENT_CODE_FILE_DROPPED:
			for _, path := range e.Data.(*core.DropEvent).Paths {
				if !assets.IsModelFile(path) {
					core.LogWarn("ignoring dropped file %s: not a glTF model", path)
					continue
				}
				v.Loader.Submit(path)
			}
		}
	}
	return running && !v.stop.Load()
}

// pump keeps the window responsive while the presenter waits for a
// minimized window.
func (v *Viewer) pump() bool {
	return v.processEvents()
}

// installCompletedAsset swaps in a freshly loaded model. The previous model
// is released only after the graphics queue stopped using it.
func (v *Viewer) installCompletedAsset() error {
	next, ok := v.Loader.TryTakeCompleted()
	if !ok {
		return nil
	}
	if err := v.Presenter.WaitGraphicsIdle(); err != nil {
		next.Release()
		return err
	}
	prev := v.asset
	v.asset = next
	v.Renderer.SetModel(next)
	v.Overlay.SetModelMetadata(next.ID(), next.Metadata())
	v.Overlay.SetPlayback(next.Playback())
	if prev != nil {
		prev.Release()
	}
	core.LogInfo("showing %s (%s)", next.Path(), next.ID())

	if v.Watcher != nil {
		if err := v.Watcher.Watch(next.Path()); err != nil {
			core.LogWarn("cannot watch %s: %s", next.Path(), err)
		}
	}
	return nil
}

func (v *Viewer) updateAnimation(delta float32) {
	controls := v.Overlay.TakeAnimationControls()
	if v.asset == nil {
		return
	}
	p := v.asset.Playback()
	if controls.Toggle {
		p.Toggle()
	}
	if controls.Stop {
		p.Stop()
	}
	if controls.Reset {
		p.Reset()
	}
	if controls.ToggleMode {
		p.ToggleMode()
	}
	if controls.Next {
		p.Next()
	}
	v.asset.Update(delta * v.Overlay.AnimationSpeed())
	v.Overlay.SetPlayback(p)
}

func (v *Viewer) updateCamera() {
	if v.Overlay.ShouldResetCamera() {
		v.camera.Reset()
	}
	if !v.Overlay.WantsPointer() {
		v.camera.Update(&v.input)
	}
	ext := v.Presenter.Extent()
	v.camera.SetAspect(ext.Width, ext.Height)
}

// applySettings forwards pending HUD changes to the renderer, draining the
// graphics queue before each one.
func (v *Viewer) applySettings() error {
	apply := func(set func()) error {
		if err := v.Presenter.WaitGraphicsIdle(); err != nil {
			return err
		}
		set()
		return nil
	}

	if value, ok := v.Overlay.NewEmissiveIntensity(); ok {
		if err := apply(func() { v.Renderer.SetEmissiveIntensity(value) }); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewSSAOEnabled(); ok {
		if err := apply(func() { v.Renderer.SetSSAOEnabled(value) }); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewSSAOKernelSize(); ok {
		if err := apply(func() {
			if err := v.Renderer.SetSSAOKernelSize(value); err != nil {
				core.LogWarn("ssao kernel size: %s", err)
			}
		}); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewSSAORadius(); ok {
		if err := apply(func() { v.Renderer.SetSSAORadius(value) }); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewSSAOStrength(); ok {
		if err := apply(func() { v.Renderer.SetSSAOStrength(value) }); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewToneMapMode(); ok {
		if err := apply(func() { v.Renderer.SetToneMapMode(value) }); err != nil {
			return err
		}
	}
	if value, ok := v.Overlay.NewOutputMode(); ok {
		if err := apply(func() { v.Renderer.SetOutputMode(value) }); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) sceneView() metadata.SceneView {
	scene := metadata.SceneView{
		View:       v.camera.GetView(),
		Projection: v.camera.GetProjection(),
		Eye:        v.camera.Position(),
	}
	if v.asset != nil {
		scene.ModelID = v.asset.ID()
		scene.ModelName = v.asset.Metadata().Name
		scene.MaterialCount = len(v.asset.Materials())
		scene.AnimationTime = v.asset.Playback().Time
	}
	return scene
}

// shutdown releases everything in reverse dependency order: GPU work and
// swapchain resources first, then render passes, the model, background
// loaders and finally the backend and window.
func (v *Viewer) shutdown() {
	v.stage = StageShuttingDown
	core.LogInfo("viewer shutting down")

	if err := v.Presenter.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	v.Renderer.Shutdown()
	if v.asset != nil {
		v.asset.Release()
		v.asset = nil
	}
	if v.Watcher != nil {
		if err := v.Watcher.Close(); err != nil {
			core.LogWarn("close watcher: %s", err)
		}
	}
	v.Loader.Shutdown()
	for _, release := range v.Release {
		release()
	}
	v.stage = StageStopped
	core.LogInfo("viewer stopped")
}
