package gui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func press(o *Overlay, keys ...core.KeyCode) {
	for _, k := range keys {
		o.HandleEvent(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: k}})
	}
}

func newTestOverlay() *Overlay {
	return NewOverlay(NewBasicFont(), 1, true, metadata.DefaultSettings())
}

func TestPendingSettingsAreTakenOnce(t *testing.T) {
	o := newTestOverlay()

	_, ok := o.NewToneMapMode()
	assert.False(t, ok)

	press(o, core.KEY_T, core.KEY_T)
	mode, ok := o.NewToneMapMode()
	require.True(t, ok)
	assert.Equal(t, metadata.TONE_MAP_MODE_HEJL_RICHARD, mode)
	_, ok = o.NewToneMapMode()
	assert.False(t, ok)

	press(o, core.KEY_O)
	out, ok := o.NewOutputMode()
	require.True(t, ok)
	assert.Equal(t, metadata.OUTPUT_MODE_COLOR, out)

	press(o, core.KEY_F)
	enabled, ok := o.NewSSAOEnabled()
	require.True(t, ok)
	assert.False(t, enabled)

	press(o, core.KEY_K)
	kernel, ok := o.NewSSAOKernelSize()
	require.True(t, ok)
	assert.Equal(t, uint32(64), kernel)
}

func TestSettingRangesAreClamped(t *testing.T) {
	o := newTestOverlay()

	for i := 0; i < 300; i++ {
		press(o, core.KEY_E, core.KEY_RBRACKET, core.KEY_PLUS)
	}
	emissive, _ := o.NewEmissiveIntensity()
	radius, _ := o.NewSSAORadius()
	strength, _ := o.NewSSAOStrength()
	assert.Equal(t, metadata.MAX_EMISSIVE_INTENSITY, emissive)
	assert.Equal(t, metadata.MAX_SSAO_RADIUS, radius)
	assert.Equal(t, metadata.MAX_SSAO_STRENGTH, strength)

	for i := 0; i < 300; i++ {
		press(o, core.KEY_Q, core.KEY_LBRACKET, core.KEY_MINUS)
	}
	emissive, _ = o.NewEmissiveIntensity()
	radius, _ = o.NewSSAORadius()
	strength, _ = o.NewSSAOStrength()
	assert.Equal(t, metadata.MIN_EMISSIVE_INTENSITY, emissive)
	assert.Equal(t, metadata.MIN_SSAO_RADIUS, radius)
	assert.Equal(t, metadata.MIN_SSAO_STRENGTH, strength)
}

func TestKernelSizeCycles(t *testing.T) {
	o := newTestOverlay()
	var seen []uint32
	for i := 0; i < 4; i++ {
		press(o, core.KEY_K)
		k, ok := o.NewSSAOKernelSize()
		require.True(t, ok)
		seen = append(seen, k)
	}
	assert.Equal(t, []uint32{64, 128, 16, 32}, seen)
}

func TestAnimationControls(t *testing.T) {
	o := newTestOverlay()
	assert.False(t, o.TakeAnimationControls().Any())

	press(o, core.KEY_SPACE, core.KEY_L, core.KEY_N)
	c := o.TakeAnimationControls()
	assert.True(t, c.Toggle)
	assert.True(t, c.ToggleMode)
	assert.True(t, c.Next)
	assert.False(t, c.Stop)
	assert.False(t, o.TakeAnimationControls().Any())

	press(o, core.KEY_S, core.KEY_BACKSPACE)
	c = o.TakeAnimationControls()
	assert.True(t, c.Stop)
	assert.True(t, c.Reset)

	for i := 0; i < 200; i++ {
		press(o, core.KEY_PERIOD)
	}
	assert.Equal(t, MAX_ANIMATION_SPEED, o.AnimationSpeed())
	for i := 0; i < 200; i++ {
		press(o, core.KEY_COMMA)
	}
	assert.InDelta(t, MIN_ANIMATION_SPEED, o.AnimationSpeed(), 1e-5)
}

func TestResetCamera(t *testing.T) {
	o := newTestOverlay()
	assert.False(t, o.ShouldResetCamera())
	press(o, core.KEY_C)
	assert.True(t, o.ShouldResetCamera())
	assert.False(t, o.ShouldResetCamera())
}

func TestWantsPointerFollowsPanel(t *testing.T) {
	o := newTestOverlay()
	o.PrepareFrame()

	move := func(x, y float32) {
		o.HandleEvent(core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseEvent{PosX: x, PosY: y}})
	}
	move(DEFAULT_OVERLAY_MARGIN+2, DEFAULT_OVERLAY_MARGIN+2)
	assert.True(t, o.WantsPointer())
	move(5000, 5000)
	assert.False(t, o.WantsPointer())

	move(DEFAULT_OVERLAY_MARGIN+2, DEFAULT_OVERLAY_MARGIN+2)
	press(o, core.KEY_H)
	o.PrepareFrame()
	assert.False(t, o.WantsPointer())
}

func TestRenderClipsToExtent(t *testing.T) {
	o := newTestOverlay()
	meta := &assets.Metadata{Name: "fox", Meshes: 1, Primitives: 2, Animations: []assets.Animation{{Name: "walk", Duration: 1}}}
	model := assets.NewModel("fox.glb", meta)
	o.SetModelMetadata(model.ID(), meta)
	o.SetPlayback(model.Playback())
	o.SetCamera(math.NewVec3(0, 0, 3), 3)
	o.SetFrameStats(60, 16.6)
	o.PrepareFrame()

	full := o.Render(driver.Extent2D{Width: 4096, Height: 4096})
	require.False(t, full.Empty())
	panel := full.Rects[0]
	assert.Equal(t, int32(DEFAULT_OVERLAY_MARGIN), panel.X)
	assert.Greater(t, len(full.Rects), 10)

	small := o.Render(driver.Extent2D{Width: 40, Height: 20})
	require.False(t, small.Empty())
	for _, r := range small.Rects {
		assert.LessOrEqual(t, int(r.X)+int(r.Width), 40)
		assert.LessOrEqual(t, int(r.Y)+int(r.Height), 20)
	}
	assert.Less(t, len(small.Rects), len(full.Rects))

	press(o, core.KEY_H)
	o.PrepareFrame()
	assert.True(t, o.Render(driver.Extent2D{Width: 800, Height: 600}).Empty())
}
