package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/driver/drivertest"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/views"
)

func newRenderer(t *testing.T, device *drivertest.Device, debug bool) *Renderer {
	t.Helper()
	r, err := New(device, driver.FormatB8G8R8A8Unorm, metadata.DefaultSettings(), debug)
	require.NoError(t, err)
	require.NoError(t, r.OnNewSwapchain(frame.SwapchainProperties{
		SurfaceFormat: driver.SurfaceFormat{Format: driver.FormatB8G8R8A8Unorm},
		Extent:        driver.Extent2D{Width: 800, Height: 600},
		ImageCount:    3,
	}))
	return r
}

func recordingBuffer(t *testing.T, device *drivertest.Device) *drivertest.CommandBuffer {
	t.Helper()
	cbs, err := device.AllocateCommandBuffers(1)
	require.NoError(t, err)
	require.NoError(t, device.BeginCommandBuffer(cbs[0], driver.UsageSimultaneous))
	return cbs[0].(*drivertest.CommandBuffer)
}

func TestNewCreatesCompatiblePasses(t *testing.T) {
	device := drivertest.New()
	r := newRenderer(t, device, false)

	main := r.MainPass().(*drivertest.RenderPass)
	assert.True(t, main.Clear)
	assert.Equal(t, driver.FormatB8G8R8A8Unorm, main.Format)
	assert.Equal(t, 2, device.Live().RenderPasses)

	r.Shutdown()
	assert.Equal(t, 0, device.Live().RenderPasses)
	r.Shutdown()
}

func TestNewRejectsBadKernelSize(t *testing.T) {
	device := drivertest.New()
	settings := metadata.DefaultSettings()
	settings.SSAOKernelSize = 48
	_, err := New(device, driver.FormatB8G8R8A8Unorm, settings, false)
	assert.ErrorIs(t, err, driver.ErrInvalid)
	assert.Equal(t, 0, device.Live().RenderPasses)
}

func TestNewCleansUpOnOverlayPassFailure(t *testing.T) {
	device := drivertest.New()
	device.FailNth("CreateRenderPass", 2, driver.ErrOutOfMemory)
	_, err := New(device, driver.FormatB8G8R8A8Unorm, metadata.DefaultSettings(), false)
	assert.ErrorIs(t, err, driver.ErrOutOfMemory)
	assert.Equal(t, 0, device.Live().RenderPasses)
}

func TestRecordSceneSnapshotsUniforms(t *testing.T) {
	device := drivertest.New()
	r := newRenderer(t, device, false)
	cb := recordingBuffer(t, device)

	settings := r.Settings()
	settings.OutputMode = metadata.OUTPUT_MODE_NORMAL
	target := frame.Target{Index: 2, Framebuffer: "fb", Extent: driver.Extent2D{Width: 800, Height: 600}}
	scene := metadata.SceneView{ModelID: "m", AnimationTime: 0.5}
	require.NoError(t, r.RecordScene(cb, target, scene, settings))

	u, ok := r.Uniforms(2)
	require.True(t, ok)
	assert.Equal(t, "m", u.ModelID)
	assert.Equal(t, float32(0.5), u.AnimationTime)
	assert.Equal(t, metadata.OUTPUT_MODE_NORMAL, u.Settings.OutputMode)
	assert.Equal(t, []string{
		"BeginRenderPass " + r.MainPass().(*drivertest.RenderPass).String() + " 800x600",
		"SetViewport 800x600",
		"SetScissor 800x600",
		"EndRenderPass",
	}, cb.Commands)

	_, ok = r.Uniforms(3)
	assert.False(t, ok)
	err := r.RecordScene(cb, frame.Target{Index: 5}, scene, settings)
	assert.ErrorIs(t, err, driver.ErrInvalid)
}

func TestRecordOverlay(t *testing.T) {
	device := drivertest.New()
	r := newRenderer(t, device, false)
	cb := recordingBuffer(t, device)
	target := frame.Target{Index: 0, Framebuffer: "fb", Extent: driver.Extent2D{Width: 100, Height: 100}}

	require.NoError(t, r.RecordOverlay(cb, target, metadata.DrawData{}))
	assert.Empty(t, cb.Commands)

	draw := metadata.DrawData{Rects: []metadata.Rect{
		{X: 10, Y: 10, Width: 20, Height: 20},
		{X: 200, Y: 10, Width: 20, Height: 20},
	}}
	require.NoError(t, r.RecordOverlay(cb, target, draw))
	assert.Contains(t, cb.Commands, "ClearRects 1")
}

func TestClipRects(t *testing.T) {
	extent := driver.Extent2D{Width: 100, Height: 50}
	rects := []metadata.Rect{
		{X: -10, Y: -10, Width: 20, Height: 20, Color: [4]float32{1, 0, 0, 1}},
		{X: 90, Y: 40, Width: 20, Height: 20},
		{X: 100, Y: 0, Width: 5, Height: 5},
		{X: 0, Y: 0, Width: 0, Height: 5},
	}
	out := views.ClipRects(nil, rects, extent)
	require.Len(t, out, 2)
	assert.Equal(t, driver.Rect2D{X: 0, Y: 0, Extent: driver.Extent2D{Width: 10, Height: 10}}, out[0].Rect)
	assert.Equal(t, driver.Color{R: 1, A: 1}, out[0].Color)
	assert.Equal(t, driver.Rect2D{X: 90, Y: 40, Extent: driver.Extent2D{Width: 10, Height: 10}}, out[1].Rect)
}

func TestClearColorFollowsOutputMode(t *testing.T) {
	assert.Equal(t, views.ClearColor(metadata.OUTPUT_MODE_FINAL), views.ClearColor(metadata.OutputMode(200)))
	assert.NotEqual(t, views.ClearColor(metadata.OUTPUT_MODE_FINAL), views.ClearColor(metadata.OUTPUT_MODE_NORMAL))
}

func TestSettersRequireIdleInDebug(t *testing.T) {
	device := drivertest.New()
	r := newRenderer(t, device, true)
	idle := false
	r.SetIdleCheck(func() bool { return idle })

	assert.PanicsWithError(t, core.ErrContractViolation.Error()+": SetToneMapMode called while the graphics queue may be busy", func() {
		r.SetToneMapMode(metadata.TONE_MAP_MODE_ACES)
	})

	idle = true
	r.SetToneMapMode(metadata.TONE_MAP_MODE_ACES)
	r.SetOutputMode(metadata.OUTPUT_MODE_SSAO)
	r.SetEmissiveIntensity(10)
	r.SetSSAOEnabled(false)
	r.SetSSAORadius(0.5)
	r.SetSSAOStrength(2)
	require.NoError(t, r.SetSSAOKernelSize(128))
	assert.ErrorIs(t, r.SetSSAOKernelSize(7), driver.ErrInvalid)

	s := r.Settings()
	assert.Equal(t, metadata.TONE_MAP_MODE_ACES, s.ToneMapMode)
	assert.Equal(t, metadata.OUTPUT_MODE_SSAO, s.OutputMode)
	assert.Equal(t, float32(10), s.EmissiveIntensity)
	assert.False(t, s.SSAOEnabled)
	assert.Equal(t, float32(0.5), s.SSAORadius)
	assert.Equal(t, float32(2), s.SSAOStrength)
	assert.Equal(t, uint32(128), s.SSAOKernelSize)
}

func TestSettersSkipIdleCheckWithoutDebug(t *testing.T) {
	r := newRenderer(t, drivertest.New(), false)
	r.SetIdleCheck(func() bool { return false })
	assert.NotPanics(t, func() { r.SetSSAOEnabled(false) })
}

func TestSetModelPacksMaterials(t *testing.T) {
	r := newRenderer(t, drivertest.New(), false)
	meta := &assets.Metadata{Materials: []assets.MaterialInfo{{Name: "a"}, {Name: "b"}}}
	r.SetModel(assets.NewModel("a.gltf", meta))
	assert.Len(t, r.Materials(), 2)
	require.NotNil(t, r.Model())

	r.SetModel(nil)
	assert.Nil(t, r.Model())
	assert.Empty(t, r.Materials())
}
