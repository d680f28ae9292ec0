package frame

import (
	"errors"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

// ErrRebuildAborted is returned when a stop was requested while waiting for
// a minimized window.
var ErrRebuildAborted = errors.New("swapchain rebuild aborted")

// RecreateSwapchain tears down and rebuilds everything that depends on the
// surface geometry. It must only run between draw cycles.
func (p *Presenter) RecreateSwapchain() error {
	core.LogDebug("recreating swapchain")

	if err := p.waitForSurface(); err != nil {
		return err
	}

	if err := p.WaitIdle(); err != nil {
		return err
	}

	extent := p.swapchain.Extent()
	if p.pendingResize != nil {
		extent = *p.pendingResize
	}
	p.buffers.Free()
	p.swapchain.Destroy()

	if err := p.createWhenVisible(extent); err != nil {
		return err
	}

	props := p.swapchain.Properties()
	for _, l := range p.listeners {
		if err := l.OnNewSwapchain(props); err != nil {
			return &FatalError{Op: "swapchain listener", Err: err}
		}
	}
	p.pendingResize = nil
	return nil
}

// createInitialSwapchain builds the first swapchain. Without a pump a
// minimized window is a fatal error.
func (p *Presenter) createInitialSwapchain() error {
	if p.pump != nil {
		if err := p.waitForSurface(); err != nil {
			return err
		}
	}
	extent := p.config.Extent
	if w, h := p.window.FramebufferSize(); w != 0 && h != 0 {
		extent = driver.Extent2D{Width: w, Height: h}
	}
	if p.pump == nil {
		return p.createSwapchain(extent)
	}
	return p.createWhenVisible(extent)
}

// createWhenVisible retries while the surface still reports a zero extent
// after the window got a size back.
func (p *Presenter) createWhenVisible(extent driver.Extent2D) error {
	for {
		err := p.createSwapchain(extent)
		if !errors.Is(err, ErrZeroExtent) {
			return err
		}
		if err := p.pumpOnce(); err != nil {
			return err
		}
		if p.pendingResize != nil {
			extent = *p.pendingResize
		}
	}
}

// waitForSurface pumps events until the window has a drawable area.
func (p *Presenter) waitForSurface() error {
	for {
		w, h := p.window.FramebufferSize()
		if w != 0 && h != 0 {
			return nil
		}
		if err := p.pumpOnce(); err != nil {
			return err
		}
	}
}

func (p *Presenter) pumpOnce() error {
	if p.pump == nil || !p.pump() {
		return ErrRebuildAborted
	}
	return nil
}
