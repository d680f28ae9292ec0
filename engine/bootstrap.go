package engine

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gui"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/vulkan"
)

// Bootstrap opens the window, brings up Vulkan and wires a Viewer from cfg.
// On failure everything created so far is torn down again.
func Bootstrap(cfg config.Config) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	var cleanup []func()
	fail := func(err error) (*Viewer, error) {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
		return nil, err
	}

	window, err := platform.New()
	if err != nil {
		return nil, err
	}
	w := cfg.Window
	x, y := w.Position()
	if err := window.Startup(w.Title, x, y, w.Width, w.Height); err != nil {
		return nil, err
	}
	closeWindow := func() {
		if err := window.Shutdown(); err != nil {
			core.LogError("window shutdown: %s", err)
		}
	}
	cleanup = append(cleanup, closeWindow)

	backend := vulkan.New(cfg.Renderer.Debug)
	if err := backend.Initialize(window, w.Title); err != nil {
		return fail(fmt.Errorf("vulkan: %w", err))
	}
	cleanup = append(cleanup, backend.Shutdown)

	preferred := driver.Extent2D{Width: w.Width, Height: w.Height}
	if fw, fh := window.FramebufferSize(); fw != 0 && fh != 0 {
		preferred = driver.Extent2D{Width: fw, Height: fh}
	}
	support, err := backend.SwapchainSupport()
	if err != nil {
		return fail(err)
	}
	// Render passes are built once for the format the surface prefers.
	props, err := frame.IdealSwapchainProperties(support, preferred, cfg.Renderer.VSync)
	if err != nil {
		return fail(fmt.Errorf("swapchain properties: %w", err))
	}

	r, err := renderer.New(backend, props.SurfaceFormat.Format, metadata.DefaultSettings(), cfg.Renderer.Debug)
	if err != nil {
		return fail(err)
	}
	cleanup = append(cleanup, r.Shutdown)

	presenter, err := frame.NewPresenter(backend, window, r.MainPass(), r, r, frame.Config{
		FramesInFlight: cfg.Renderer.FramesInFlight,
		VSync:          cfg.Renderer.VSync,
		Extent:         preferred,
		FenceTimeout:   cfg.Renderer.FenceTimeout(),
		Pump:           startupPump(window),
	})
	if err != nil {
		return fail(err)
	}
	cleanup = append(cleanup, func() { _ = presenter.Shutdown() })
	presenter.AddListener(r)
	if err := r.OnNewSwapchain(presenter.Properties()); err != nil {
		return fail(err)
	}
	r.SetIdleCheck(presenter.Idle)

	loader, err := assets.NewLoader(cfg.Assets.Workers)
	if err != nil {
		return fail(err)
	}

	var watcher ModelWatcher
	if cfg.Assets.Watch {
		if fw, err := assets.NewWatcher(loader.Submit); err != nil {
			core.LogWarn("hot reload disabled: %s", err)
		} else {
			watcher = fw
		}
	}

	overlay := gui.NewOverlay(loadFont(cfg.Overlay.Font), cfg.Overlay.Scale, cfg.Overlay.Visible, r.Settings())

	v := NewViewer(Components{
		Window:    window,
		Presenter: presenter,
		Renderer:  r,
		Loader:    loader,
		Overlay:   overlay,
		Watcher:   watcher,
		Release:   []func(){backend.Shutdown, closeWindow},
	})
	if cfg.Assets.Path != "" {
		loader.Submit(cfg.Assets.Path)
	}
	return v, nil
}

// startupPump drains the window while the presenter waits for a window that
// starts minimized. Only a close request matters before the viewer exists.
func startupPump(window *platform.Platform) frame.PumpFunc {
	return func() bool {
		for _, e := range window.PumpMessages() {
			if e.Type == core.EVENT_CODE_APPLICATION_QUIT {
				return false
			}
		}
		return true
	}
}

func loadFont(path string) gui.Font {
	if path == "" {
		return gui.NewBasicFont()
	}
	font, err := gui.LoadBitmapFont(path)
	if err != nil {
		core.LogWarn("cannot load font %s, using the built-in one: %s", path, err)
		return gui.NewBasicFont()
	}
	return font
}
