package views

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// UIView draws overlay rectangles on top of the scene with a load pass.
type UIView struct {
	encoder driver.Encoder
	pass    driver.RenderPass
	rects   []driver.ClearRect
}

func NewUIView(encoder driver.Encoder, pass driver.RenderPass) *UIView {
	return &UIView{encoder: encoder, pass: pass}
}

// Render clips draw to the target extent and clears each remaining rect.
// Nothing is recorded when no rect survives clipping.
func (v *UIView) Render(cb driver.CommandBuffer, target frame.Target, draw metadata.DrawData) error {
	v.rects = ClipRects(v.rects[:0], draw.Rects, target.Extent)
	if len(v.rects) == 0 {
		return nil
	}
	v.encoder.CmdBeginRenderPass(cb, driver.RenderPassBegin{
		RenderPass:  v.pass,
		Framebuffer: target.Framebuffer,
		Area:        driver.Rect2D{Extent: target.Extent},
	})
	setViewport(v.encoder, cb, target.Extent)
	v.encoder.CmdClearRects(cb, v.rects)
	v.encoder.CmdEndRenderPass(cb)
	return nil
}

// ClipRects appends the parts of rects inside extent to dst.
func ClipRects(dst []driver.ClearRect, rects []metadata.Rect, extent driver.Extent2D) []driver.ClearRect {
	w, h := int64(extent.Width), int64(extent.Height)
	for _, r := range rects {
		x0 := math.Clamp(int64(r.X), 0, w)
		y0 := math.Clamp(int64(r.Y), 0, h)
		x1 := math.Clamp(int64(r.X)+int64(r.Width), 0, w)
		y1 := math.Clamp(int64(r.Y)+int64(r.Height), 0, h)
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		dst = append(dst, driver.ClearRect{
			Rect: driver.Rect2D{
				X:      int32(x0),
				Y:      int32(y0),
				Extent: driver.Extent2D{Width: uint32(x1 - x0), Height: uint32(y1 - y0)},
			},
			Color: driver.Color{R: r.Color[0], G: r.Color[1], B: r.Color[2], A: r.Color[3]},
		})
	}
	return dst
}
