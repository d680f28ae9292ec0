package views

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// WorldUniforms is the per-image copy of everything the scene pass reads.
// It is written only while the image's command buffer is being recorded.
type WorldUniforms struct {
	View          math.Mat4
	Projection    math.Mat4
	Eye           math.Vec3
	Settings      metadata.Settings
	ModelID       string
	MaterialCount int
	AnimationTime float32
}

var clearColors = [metadata.OUTPUT_MODE_MAX]driver.Color{
	metadata.OUTPUT_MODE_FINAL:     {R: 0.1, G: 0.1, B: 0.12, A: 1},
	metadata.OUTPUT_MODE_COLOR:     {R: 0.2, G: 0.2, B: 0.2, A: 1},
	metadata.OUTPUT_MODE_EMISSIVE:  {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_METALLIC:  {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_SPECULAR:  {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_ROUGHNESS: {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_OCCLUSION: {R: 1, G: 1, B: 1, A: 1},
	metadata.OUTPUT_MODE_NORMAL:    {R: 0.5, G: 0.5, B: 1, A: 1},
	metadata.OUTPUT_MODE_ALPHA:     {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_UVS0:      {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_UVS1:      {R: 0, G: 0, B: 0, A: 1},
	metadata.OUTPUT_MODE_SSAO:      {R: 1, G: 1, B: 1, A: 1},
}

// ClearColor is the background the scene pass starts from for a given
// output mode.
func ClearColor(mode metadata.OutputMode) driver.Color {
	if mode >= metadata.OUTPUT_MODE_MAX {
		return clearColors[metadata.OUTPUT_MODE_FINAL]
	}
	return clearColors[mode]
}

// WorldView records the scene pass. It clears the image and sets the
// dynamic viewport state.
type WorldView struct {
	encoder  driver.Encoder
	pass     driver.RenderPass
	uniforms []WorldUniforms
}

func NewWorldView(encoder driver.Encoder, pass driver.RenderPass) *WorldView {
	return &WorldView{encoder: encoder, pass: pass}
}

// OnResize sizes the per-image uniform snapshots for a new swapchain.
func (v *WorldView) OnResize(imageCount int) {
	if imageCount <= len(v.uniforms) {
		v.uniforms = v.uniforms[:imageCount]
		return
	}
	v.uniforms = append(v.uniforms, make([]WorldUniforms, imageCount-len(v.uniforms))...)
}

func (v *WorldView) Uniforms(index uint32) (WorldUniforms, bool) {
	if int(index) >= len(v.uniforms) {
		return WorldUniforms{}, false
	}
	return v.uniforms[index], true
}

func (v *WorldView) Render(cb driver.CommandBuffer, target frame.Target, u WorldUniforms) error {
	if int(target.Index) >= len(v.uniforms) {
		return fmt.Errorf("image %d outside %d uniform slots: %w", target.Index, len(v.uniforms), driver.ErrInvalid)
	}
	v.uniforms[target.Index] = u

	area := driver.Rect2D{Extent: target.Extent}
	v.encoder.CmdBeginRenderPass(cb, driver.RenderPassBegin{
		RenderPass:  v.pass,
		Framebuffer: target.Framebuffer,
		Area:        area,
		ClearColor:  ClearColor(u.Settings.OutputMode),
	})
	setViewport(v.encoder, cb, target.Extent)
	v.encoder.CmdEndRenderPass(cb)
	return nil
}

func setViewport(encoder driver.Encoder, cb driver.CommandBuffer, extent driver.Extent2D) {
	encoder.CmdSetViewport(cb, driver.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	encoder.CmdSetScissor(cb, driver.Rect2D{Extent: extent})
}
