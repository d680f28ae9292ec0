package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/driver/drivertest"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type testWindow struct {
	width, height uint32
}

func (w *testWindow) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

type testPasses struct {
	device   *drivertest.Device
	scenes   int
	overlays int
	targets  []Target
}

func (p *testPasses) RecordScene(cb driver.CommandBuffer, target Target, scene metadata.SceneView, settings metadata.Settings) error {
	p.device.CmdBeginRenderPass(cb, driver.RenderPassBegin{
		RenderPass:  "main",
		Framebuffer: target.Framebuffer,
		Area:        driver.Rect2D{Extent: target.Extent},
	})
	p.device.CmdEndRenderPass(cb)
	p.scenes++
	p.targets = append(p.targets, target)
	return nil
}

func (p *testPasses) RecordOverlay(cb driver.CommandBuffer, target Target, draw metadata.DrawData) error {
	p.overlays++
	return nil
}

type testListener struct {
	calls []SwapchainProperties
}

func (l *testListener) OnNewSwapchain(props SwapchainProperties) error {
	l.calls = append(l.calls, props)
	return nil
}

type fixture struct {
	device    *drivertest.Device
	window    *testWindow
	passes    *testPasses
	listener  *testListener
	presenter *Presenter
}

// newFixture builds a presenter whose surface follows the test window size.
func newFixture(t *testing.T, framesInFlight int) *fixture {
	t.Helper()
	f := &fixture{
		device:   drivertest.New(),
		window:   &testWindow{width: 800, height: 600},
		listener: &testListener{},
	}
	f.device.SupportFunc = func() driver.SwapchainSupport {
		return drivertest.DefaultSupport(f.window.width, f.window.height)
	}
	f.passes = &testPasses{device: f.device}

	p, err := NewPresenter(f.device, f.window, "main", f.passes, f.passes, Config{FramesInFlight: framesInFlight})
	require.NoError(t, err)
	p.AddListener(f.listener)
	f.presenter = p
	return f
}

func (f *fixture) draw(t *testing.T) {
	t.Helper()
	require.NoError(t, f.presenter.DrawFrame(metadata.SceneView{}, nil, metadata.DefaultSettings()))
}

func countPrefix(entries []string, prefix string) int {
	n := 0
	for _, e := range entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func indexOfPrefix(entries []string, prefix string) int {
	for i, e := range entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return i
		}
	}
	return -1
}

func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, core.ErrContractViolation), "unexpected panic: %v", err)
	}()
	fn()
}
