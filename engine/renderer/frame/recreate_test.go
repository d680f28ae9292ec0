package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/driver/drivertest"
)

func TestRecreateWithSameGeometryKeepsProperties(t *testing.T) {
	f := newFixture(t, 2)
	f.draw(t)
	before := f.presenter.Properties()
	live := f.device.Live()

	require.NoError(t, f.presenter.RecreateSwapchain())
	require.NoError(t, f.presenter.RecreateSwapchain())

	after := f.presenter.Properties()
	assert.Equal(t, before.ImageCount, after.ImageCount)
	assert.Equal(t, before.SurfaceFormat, after.SurfaceFormat)
	assert.Equal(t, before.Extent, after.Extent)
	assert.Equal(t, live, f.device.Live())
	assert.Len(t, f.listener.calls, 2)
	f.draw(t)
}

func TestRecreateStallsWhileMinimized(t *testing.T) {
	f := newFixture(t, 2)
	f.draw(t)
	f.window.width, f.window.height = 0, 0

	pumps := 0
	f.presenter.SetPump(func() bool {
		pumps++
		f.device.Note("pump")
		if pumps == 3 {
			f.window.width, f.window.height = 640, 480
			f.presenter.RequestResize(640, 480)
		}
		return true
	})

	mark := f.device.Mark()
	require.NoError(t, f.presenter.RecreateSwapchain())
	log := f.device.LogSince(mark)

	assert.Equal(t, 3, pumps)
	assert.Less(t, lastIndex(log, "pump"), indexOfPrefix(log, "WaitIdle"))
	require.Equal(t, 1, countPrefix(log, "CreateSwapchain"))
	assert.Contains(t, log[indexOfPrefix(log, "CreateSwapchain")], " 640x480 ")
	assert.Equal(t, driver.Extent2D{Width: 640, Height: 480}, f.presenter.Extent())
	_, pending := f.presenter.PendingResize()
	assert.False(t, pending)
	f.draw(t)
}

func TestRecreateAbortsOnStopDuringStall(t *testing.T) {
	f := newFixture(t, 2)
	f.draw(t)
	f.window.width = 0
	f.presenter.SetPump(func() bool { return false })

	err := f.presenter.RecreateSwapchain()
	assert.True(t, IsAborted(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, 1, f.device.Live().Swapchains)

	require.NoError(t, f.presenter.Shutdown())
	assert.Zero(t, f.device.Live().Total())
}

func TestNewPresenterWaitsForMinimizedWindow(t *testing.T) {
	device := drivertest.New()
	window := &testWindow{}
	device.SupportFunc = func() driver.SwapchainSupport {
		return drivertest.DefaultSupport(window.width, window.height)
	}
	passes := &testPasses{device: device}

	pumps := 0
	pump := func() bool {
		pumps++
		device.Note("pump")
		if pumps == 2 {
			window.width, window.height = 640, 480
		}
		return true
	}
	p, err := NewPresenter(device, window, "main", passes, passes, Config{Pump: pump})
	require.NoError(t, err)

	log := device.Log()
	assert.Equal(t, 2, pumps)
	assert.Less(t, lastIndex(log, "pump"), indexOfPrefix(log, "CreateSwapchain"))
	assert.Equal(t, driver.Extent2D{Width: 640, Height: 480}, p.Extent())

	require.NoError(t, p.Shutdown())
	assert.Zero(t, device.Live().Total())
}

func TestNewPresenterAbortsOnStopWhileMinimized(t *testing.T) {
	device := drivertest.New()
	passes := &testPasses{device: device}

	_, err := NewPresenter(device, &testWindow{}, "main", passes, passes, Config{Pump: func() bool { return false }})
	assert.True(t, IsAborted(err))
	assert.Zero(t, countPrefix(device.Log(), "CreateSwapchain"))
	assert.Zero(t, device.Live().Total())
}

func TestRecreateWithoutPumpAborts(t *testing.T) {
	f := newFixture(t, 2)
	f.window.height = 0
	assert.ErrorIs(t, f.presenter.RecreateSwapchain(), ErrRebuildAborted)
}

func TestResizeRequestRebuildsAfterPresent(t *testing.T) {
	f := newFixture(t, 2)
	f.device.SupportFunc = func() driver.SwapchainSupport {
		support := f.device.Support
		support.Capabilities.CurrentExtent = driver.Extent2D{Width: driver.UndefinedExtent, Height: driver.UndefinedExtent}
		return support
	}

	f.draw(t)
	f.presenter.RequestResize(1024, 768)
	f.window.width, f.window.height = 1024, 768

	mark := f.device.Mark()
	f.draw(t)
	log := f.device.LogSince(mark)

	assert.Less(t, indexOfPrefix(log, "QueuePresent"), indexOfPrefix(log, "DestroySwapchain"))
	assert.Equal(t, driver.Extent2D{Width: 1024, Height: 768}, f.presenter.Extent())
	require.Len(t, f.listener.calls, 1)
	assert.Equal(t, driver.Extent2D{Width: 1024, Height: 768}, f.listener.calls[0].Extent)
	_, pending := f.presenter.PendingResize()
	assert.False(t, pending)

	mark = f.device.Mark()
	f.draw(t)
	assert.Zero(t, countPrefix(f.device.LogSince(mark), "DestroySwapchain"))
}

func TestRecreateSurfaceLostIsFatal(t *testing.T) {
	f := newFixture(t, 2)
	f.device.FailNext("SwapchainSupport", driver.ErrSurfaceLost)

	err := f.presenter.RecreateSwapchain()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, driver.ErrSurfaceLost)

	require.NoError(t, f.presenter.Shutdown())
	assert.Zero(t, f.device.Live().Total())
}

func lastIndex(entries []string, entry string) int {
	idx := -1
	for i, e := range entries {
		if e == entry {
			idx = i
		}
	}
	return idx
}
