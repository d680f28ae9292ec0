package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const DEFAULT_FRAMES_IN_FLIGHT = 2

// Window is the part of the platform window the presenter needs.
type Window interface {
	// FramebufferSize returns the drawable size in pixels; zero while
	// minimized.
	FramebufferSize() (uint32, uint32)
}

// PumpFunc processes pending window events while the presenter waits for a
// minimized window to come back. It returns false once the application has
// been asked to stop.
type PumpFunc func() bool

// SwapchainListener is told about every new swapchain before the next frame
// is drawn.
type SwapchainListener interface {
	OnNewSwapchain(props SwapchainProperties) error
}

// OverlaySource produces the overlay draw data for the target extent.
type OverlaySource interface {
	Render(extent driver.Extent2D) metadata.DrawData
}

type Config struct {
	FramesInFlight int
	VSync          bool
	// Extent is the preferred size when the surface leaves it to us.
	Extent       driver.Extent2D
	FenceTimeout time.Duration
	// Pump, when set, lets NewPresenter wait for a window that starts
	// minimized instead of failing.
	Pump PumpFunc
}

// Presenter drives the acquire, record, submit and present cycle and rebuilds
// the swapchain when the surface changes.
type Presenter struct {
	device     driver.Device
	window     Window
	renderPass driver.RenderPass
	config     Config

	pool      *SyncObjectPool
	swapchain *Swapchain
	buffers   *CommandBufferSet
	recorder  *Recorder

	listeners     []SwapchainListener
	pump          PumpFunc
	pendingResize *driver.Extent2D

	frames   uint64
	lastSlot int
	idle     bool
	shutdown bool
}

func NewPresenter(device driver.Device, window Window, renderPass driver.RenderPass, scene ScenePass, overlay OverlayPass, config Config) (*Presenter, error) {
	if config.FramesInFlight == 0 {
		config.FramesInFlight = DEFAULT_FRAMES_IN_FLIGHT
	}
	if config.FenceTimeout <= 0 {
		config.FenceTimeout = driver.Forever
	}
	p := &Presenter{
		device:     device,
		window:     window,
		renderPass: renderPass,
		config:     config,
		lastSlot:   -1,
		idle:       true,
		pump:       config.Pump,
	}

	pool, err := NewSyncObjectPool(device, config.FramesInFlight)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	p.recorder = NewRecorder(device, pool, scene, overlay)

	if err := p.createInitialSwapchain(); err != nil {
		pool.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Presenter) createSwapchain(preferred driver.Extent2D) error {
	support, err := p.device.SwapchainSupport()
	if err != nil {
		return &FatalError{Op: "query swapchain support", Err: err}
	}
	props, err := IdealSwapchainProperties(support, preferred, p.config.VSync)
	if err != nil {
		return &FatalError{Op: "choose swapchain properties", Err: err}
	}
	sc, err := NewSwapchain(p.device, props, p.renderPass)
	if err != nil {
		return &FatalError{Op: "create swapchain", Err: err}
	}
	buffers, err := NewCommandBufferSet(p.device, sc.ImageCount())
	if err != nil {
		sc.Destroy()
		return &FatalError{Op: "create command buffers", Err: err}
	}
	p.swapchain = sc
	p.buffers = buffers
	return nil
}

// SetPump installs the event pump used while the window is minimized.
func (p *Presenter) SetPump(pump PumpFunc) {
	p.pump = pump
}

func (p *Presenter) AddListener(l SwapchainListener) {
	p.listeners = append(p.listeners, l)
}

// RequestResize records new surface geometry. The swapchain is rebuilt at
// the end of the next draw cycle.
func (p *Presenter) RequestResize(width, height uint32) {
	p.pendingResize = &driver.Extent2D{Width: width, Height: height}
}

func (p *Presenter) PendingResize() (driver.Extent2D, bool) {
	if p.pendingResize == nil {
		return driver.Extent2D{}, false
	}
	return *p.pendingResize, true
}

func (p *Presenter) Extent() driver.Extent2D {
	return p.swapchain.Extent()
}

func (p *Presenter) Properties() SwapchainProperties {
	return p.swapchain.Properties()
}

// Frames returns the number of frames presented.
func (p *Presenter) Frames() uint64 {
	return p.frames
}

// LastSlot returns the index of the slot used by the latest draw cycle.
func (p *Presenter) LastSlot() int {
	return p.lastSlot
}

// Idle reports whether the GPU is known to have finished all submitted work.
func (p *Presenter) Idle() bool {
	return p.idle
}

// WaitGraphicsIdle blocks until the graphics queue has drained. Call it
// before mutating anything submitted work may reference.
func (p *Presenter) WaitGraphicsIdle() error {
	if err := p.device.GraphicsQueueWaitIdle(); err != nil {
		return &FatalError{Op: "wait for graphics queue idle", Err: err}
	}
	p.pool.RetireAll()
	p.idle = true
	return nil
}

// WaitIdle blocks until the whole device is idle.
func (p *Presenter) WaitIdle() error {
	if err := p.device.WaitIdle(); err != nil {
		return &FatalError{Op: "wait for device idle", Err: err}
	}
	p.pool.RetireAll()
	p.idle = true
	return nil
}

// DrawFrame runs one acquire, record, submit and present cycle. Out-of-date
// and suboptimal surfaces are handled by rebuilding the swapchain; any error
// returned is fatal or ErrRebuildAborted.
func (p *Presenter) DrawFrame(scene metadata.SceneView, overlay OverlaySource, settings metadata.Settings) error {
	slot := p.pool.Next()
	p.lastSlot = slot.Index
	if err := p.pool.Wait(slot, p.config.FenceTimeout); err != nil {
		return err
	}

	index, acquireSuboptimal, err := p.swapchain.AcquireNextImage(driver.Forever, slot.ImageAvailable)
	if err != nil {
		if driver.IsRecoverable(err) {
			core.LogDebug("swapchain out of date on acquire")
			return p.RecreateSwapchain()
		}
		return &FatalError{Op: "acquire", Err: err}
	}

	cb := p.buffers.Get(index)
	if guard, ticket := cb.Guard(); guard != nil {
		if err := p.pool.WaitTicket(guard, ticket, p.config.FenceTimeout); err != nil {
			return err
		}
	}

	target := Target{Index: index, Framebuffer: p.swapchain.Framebuffer(index), Extent: p.swapchain.Extent()}
	var draw metadata.DrawData
	if overlay != nil {
		draw = overlay.Render(target.Extent)
	}
	if err := p.recorder.Record(cb, target, scene, draw, settings); err != nil {
		return &FatalError{Op: "record", Err: err}
	}

	if err := p.device.QueueSubmit(driver.SubmitInfo{
		CommandBuffer: cb.Handle,
		Wait:          slot.ImageAvailable,
		WaitStage:     driver.StageColorAttachmentOutput,
		Signal:        slot.RenderFinished,
		Fence:         slot.InFlight,
	}); err != nil {
		return &FatalError{Op: "submit", Err: err}
	}
	cb.markSubmitted(slot, p.pool.MarkSubmitted(slot))
	p.idle = false

	presentSuboptimal, err := p.swapchain.Present(slot.RenderFinished, index)
	if err != nil && !driver.IsRecoverable(err) {
		return &FatalError{Op: "present", Err: err}
	}
	p.frames++

	if err != nil || acquireSuboptimal || presentSuboptimal || p.pendingResize != nil {
		return p.RecreateSwapchain()
	}
	return nil
}

// Shutdown waits for the device to go idle and releases command buffers,
// the swapchain and the sync objects, in that order.
func (p *Presenter) Shutdown() error {
	if p.shutdown {
		return nil
	}
	p.shutdown = true
	err := p.device.WaitIdle()
	if err != nil {
		core.LogError("wait idle on shutdown: %s", err)
	}
	p.pool.RetireAll()
	p.buffers.Free()
	p.swapchain.Destroy()
	p.pool.Destroy()
	if err != nil {
		return fmt.Errorf("presenter shutdown: %w", err)
	}
	return nil
}

// IsAborted reports whether err is the result of a stop request arriving
// while a rebuild was waiting.
func IsAborted(err error) bool {
	return errors.Is(err, ErrRebuildAborted)
}
