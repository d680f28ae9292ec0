// Package drivertest provides an in-memory driver.Device that completes GPU
// work only when it is waited on. Every call is appended to an operation log
// so tests can assert ordering between CPU and GPU side effects.
package drivertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

type Semaphore struct {
	ID       int
	signaled bool
	alive    bool
}

func (s *Semaphore) String() string { return fmt.Sprintf("semaphore#%d", s.ID) }

type Fence struct {
	ID       int
	signaled bool
	pending  bool
	alive    bool
}

func (f *Fence) String() string { return fmt.Sprintf("fence#%d", f.ID) }

type CommandBuffer struct {
	ID        int
	Commands  []string
	Resets    int
	pending   *Fence
	recording bool
	recorded  bool
	alive     bool
}

func (c *CommandBuffer) String() string { return fmt.Sprintf("cb#%d", c.ID) }

type RenderPass struct {
	ID     int
	Format driver.Format
	Clear  bool
	alive  bool
}

func (r *RenderPass) String() string { return fmt.Sprintf("renderpass#%d", r.ID) }

type Image struct{ ID int }

type ImageView struct {
	ID     int
	Format driver.Format
	alive  bool
}

type Framebuffer struct {
	ID         int
	RenderPass driver.RenderPass
	View       *ImageView
	Extent     driver.Extent2D
	alive      bool
}

type Swapchain struct {
	ID     int
	Info   driver.SwapchainCreateInfo
	images []driver.Image
	next   uint32
	alive  bool
}

func (s *Swapchain) String() string { return fmt.Sprintf("swapchain#%d", s.ID) }

// AcquireResult scripts one AcquireNextImage call.
type AcquireResult struct {
	Suboptimal bool
	Err        error
}

// PresentResult scripts one QueuePresent call.
type PresentResult struct {
	Suboptimal bool
	Err        error
}

type Device struct {
	mu sync.Mutex

	// Support is returned by SwapchainSupport unless SupportFunc is set.
	Support     driver.SwapchainSupport
	SupportFunc func() driver.SwapchainSupport

	acquireScript []AcquireResult
	presentScript []PresentResult
	failures      map[string]*failure

	nextID int
	log    []string

	semaphores   map[*Semaphore]struct{}
	fences       map[*Fence]struct{}
	buffers      map[*CommandBuffer]struct{}
	swapchains   map[*Swapchain]struct{}
	views        map[*ImageView]struct{}
	framebuffers map[*Framebuffer]struct{}
	renderPasses map[*RenderPass]struct{}

	maxPending int
	fenceWaits map[*Fence]int
}

func New() *Device {
	return &Device{
		Support:      DefaultSupport(800, 600),
		failures:     map[string]*failure{},
		semaphores:   map[*Semaphore]struct{}{},
		fences:       map[*Fence]struct{}{},
		buffers:      map[*CommandBuffer]struct{}{},
		swapchains:   map[*Swapchain]struct{}{},
		views:        map[*ImageView]struct{}{},
		framebuffers: map[*Framebuffer]struct{}{},
		renderPasses: map[*RenderPass]struct{}{},
		fenceWaits:   map[*Fence]int{},
	}
}

// DefaultSupport describes a typical desktop surface of the given size.
func DefaultSupport(width, height uint32) driver.SwapchainSupport {
	return driver.SwapchainSupport{
		Capabilities: driver.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  driver.Extent2D{Width: width, Height: height},
			MinImageExtent: driver.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: driver.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []driver.SurfaceFormat{
			{Format: driver.FormatB8G8R8A8Srgb, ColorSpace: driver.ColorSpaceSrgbNonlinear},
			{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []driver.PresentMode{driver.PresentModeFifo, driver.PresentModeMailbox},
	}
}

// ScriptAcquire queues results for upcoming AcquireNextImage calls. Calls
// past the end of the script succeed.
func (d *Device) ScriptAcquire(results ...AcquireResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquireScript = append(d.acquireScript, results...)
}

func (d *Device) ScriptPresent(results ...PresentResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentScript = append(d.presentScript, results...)
}

type failure struct {
	remaining int
	err       error
}

// FailNext makes the next call of the named Device method return err.
func (d *Device) FailNext(op string, err error) {
	d.FailNth(op, 1, err)
}

// FailNth makes the nth upcoming call of the named Device method return err.
func (d *Device) FailNth(op string, n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = &failure{remaining: n, err: err}
}

// Note appends an external entry to the operation log.
func (d *Device) Note(entry string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, entry)
}

func (d *Device) Log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.log...)
}

// Mark returns a position in the log for use with LogSince.
func (d *Device) Mark() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.log)
}

func (d *Device) LogSince(mark int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.log[mark:]...)
}

// Count returns how many log entries equal entry.
func (d *Device) Count(entry string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.log {
		if e == entry {
			n++
		}
	}
	return n
}

// FenceWaits returns how many times f was waited on.
func (d *Device) FenceWaits(f driver.Fence) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fenceWaits[f.(*Fence)]
}

// MaxPending is the largest number of submissions observed outstanding at
// the same time.
func (d *Device) MaxPending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxPending
}

type Live struct {
	Semaphores     int
	Fences         int
	CommandBuffers int
	Swapchains     int
	ImageViews     int
	Framebuffers   int
	RenderPasses   int
}

func (l Live) Total() int {
	return l.Semaphores + l.Fences + l.CommandBuffers + l.Swapchains + l.ImageViews + l.Framebuffers + l.RenderPasses
}

func (d *Device) Live() Live {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Live{
		Semaphores:     len(d.semaphores),
		Fences:         len(d.fences),
		CommandBuffers: len(d.buffers),
		Swapchains:     len(d.swapchains),
		ImageViews:     len(d.views),
		Framebuffers:   len(d.framebuffers),
		RenderPasses:   len(d.renderPasses),
	}
}

func (d *Device) record(format string, args ...interface{}) {
	d.log = append(d.log, fmt.Sprintf(format, args...))
}

func (d *Device) fail(op string) error {
	f, ok := d.failures[op]
	if !ok {
		return nil
	}
	f.remaining--
	if f.remaining > 0 {
		return nil
	}
	delete(d.failures, op)
	d.record("%s failed", op)
	return f.err
}

func (d *Device) id() int {
	d.nextID++
	return d.nextID
}

func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSemaphore"); err != nil {
		return nil, err
	}
	s := &Semaphore{ID: d.id(), alive: true}
	d.semaphores[s] = struct{}{}
	d.record("CreateSemaphore %s", s)
	return s, nil
}

func (d *Device) DestroySemaphore(s driver.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sem := s.(*Semaphore)
	if !sem.alive {
		panic(fmt.Sprintf("drivertest: %s destroyed twice", sem))
	}
	sem.alive = false
	delete(d.semaphores, sem)
	d.record("DestroySemaphore %s", sem)
}

func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateFence"); err != nil {
		return nil, err
	}
	f := &Fence{ID: d.id(), signaled: signaled, alive: true}
	d.fences[f] = struct{}{}
	d.record("CreateFence %s signaled=%t", f, signaled)
	return f, nil
}

func (d *Device) DestroyFence(f driver.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fence := f.(*Fence)
	if !fence.alive {
		panic(fmt.Sprintf("drivertest: %s destroyed twice", fence))
	}
	if fence.pending {
		panic(fmt.Sprintf("drivertest: %s destroyed while GPU work is pending", fence))
	}
	fence.alive = false
	delete(d.fences, fence)
	d.record("DestroyFence %s", fence)
}

// WaitForFence completes the submission guarded by f. A fence that is
// neither signaled nor pending would never signal, so the wait times out
// immediately.
func (d *Device) WaitForFence(f driver.Fence, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	fence := f.(*Fence)
	d.fenceWaits[fence]++
	d.record("WaitForFence %s", fence)
	if err := d.fail("WaitForFence"); err != nil {
		return err
	}
	if fence.pending {
		d.complete(fence)
	}
	if !fence.signaled {
		return driver.ErrTimeout
	}
	return nil
}

func (d *Device) ResetFence(f driver.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	fence := f.(*Fence)
	d.record("ResetFence %s", fence)
	if fence.pending {
		return fmt.Errorf("reset of %s with pending work: %w", fence, driver.ErrInvalid)
	}
	fence.signaled = false
	return nil
}

func (d *Device) complete(f *Fence) {
	f.pending = false
	f.signaled = true
	for cb := range d.buffers {
		if cb.pending == f {
			cb.pending = nil
		}
	}
}

func (d *Device) completeAll() {
	for f := range d.fences {
		if f.pending {
			d.complete(f)
		}
	}
}

func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WaitIdle")
	if err := d.fail("WaitIdle"); err != nil {
		return err
	}
	d.completeAll()
	return nil
}

func (d *Device) GraphicsQueueWaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GraphicsQueueWaitIdle")
	if err := d.fail("GraphicsQueueWaitIdle"); err != nil {
		return err
	}
	d.completeAll()
	return nil
}

func (d *Device) SwapchainSupport() (driver.SwapchainSupport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SwapchainSupport")
	if err := d.fail("SwapchainSupport"); err != nil {
		return driver.SwapchainSupport{}, err
	}
	if d.SupportFunc != nil {
		return d.SupportFunc(), nil
	}
	return d.Support, nil
}

func (d *Device) CreateSwapchain(info driver.SwapchainCreateInfo) (driver.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSwapchain"); err != nil {
		return nil, err
	}
	if info.Extent.IsZero() {
		return nil, fmt.Errorf("swapchain with zero extent %dx%d: %w", info.Extent.Width, info.Extent.Height, driver.ErrInvalid)
	}
	sc := &Swapchain{ID: d.id(), Info: info, alive: true}
	for i := uint32(0); i < info.ImageCount; i++ {
		sc.images = append(sc.images, &Image{ID: d.id()})
	}
	d.swapchains[sc] = struct{}{}
	d.record("CreateSwapchain %s %dx%d images=%d", sc, info.Extent.Width, info.Extent.Height, info.ImageCount)
	return sc, nil
}

func (d *Device) DestroySwapchain(s driver.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc := s.(*Swapchain)
	if !sc.alive {
		panic(fmt.Sprintf("drivertest: %s destroyed twice", sc))
	}
	sc.alive = false
	delete(d.swapchains, sc)
	d.record("DestroySwapchain %s", sc)
}

func (d *Device) SwapchainImages(s driver.Swapchain) ([]driver.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]driver.Image(nil), s.(*Swapchain).images...), nil
}

func (d *Device) CreateImageView(img driver.Image, format driver.Format) (driver.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateImageView"); err != nil {
		return nil, err
	}
	v := &ImageView{ID: d.id(), Format: format, alive: true}
	d.views[v] = struct{}{}
	return v, nil
}

func (d *Device) DestroyImageView(v driver.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	view := v.(*ImageView)
	if !view.alive {
		panic(fmt.Sprintf("drivertest: view#%d destroyed twice", view.ID))
	}
	view.alive = false
	delete(d.views, view)
}

func (d *Device) CreateFramebuffer(rp driver.RenderPass, v driver.ImageView, extent driver.Extent2D) (driver.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateFramebuffer"); err != nil {
		return nil, err
	}
	fb := &Framebuffer{ID: d.id(), RenderPass: rp, View: v.(*ImageView), Extent: extent, alive: true}
	d.framebuffers[fb] = struct{}{}
	return fb, nil
}

func (d *Device) DestroyFramebuffer(f driver.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fb := f.(*Framebuffer)
	if !fb.alive {
		panic(fmt.Sprintf("drivertest: framebuffer#%d destroyed twice", fb.ID))
	}
	fb.alive = false
	delete(d.framebuffers, fb)
}

// AcquireNextImage hands out images round-robin.
func (d *Device) AcquireNextImage(s driver.Swapchain, timeout time.Duration, signal driver.Semaphore) (uint32, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc := s.(*Swapchain)
	sem := signal.(*Semaphore)
	result := AcquireResult{}
	if len(d.acquireScript) > 0 {
		result = d.acquireScript[0]
		d.acquireScript = d.acquireScript[1:]
	}
	if result.Err != nil {
		d.record("AcquireNextImage %s -> %v", sc, result.Err)
		return 0, false, result.Err
	}
	if !sc.alive {
		return 0, false, fmt.Errorf("acquire on destroyed %s: %w", sc, driver.ErrInvalid)
	}
	if sem.signaled {
		return 0, false, fmt.Errorf("acquire would signal %s twice: %w", sem, driver.ErrInvalid)
	}
	sem.signaled = true
	index := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	d.record("AcquireNextImage %s -> %d", sc, index)
	return index, result.Suboptimal, nil
}

func (d *Device) QueuePresent(s driver.Swapchain, index uint32, wait driver.Semaphore) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc := s.(*Swapchain)
	sem := wait.(*Semaphore)
	result := PresentResult{}
	if len(d.presentScript) > 0 {
		result = d.presentScript[0]
		d.presentScript = d.presentScript[1:]
	}
	if !sem.signaled {
		return false, fmt.Errorf("present waits on unsignaled %s: %w", sem, driver.ErrInvalid)
	}
	sem.signaled = false
	if result.Err != nil {
		d.record("QueuePresent %s %d -> %v", sc, index, result.Err)
		return false, result.Err
	}
	d.record("QueuePresent %s %d", sc, index)
	return result.Suboptimal, nil
}

func (d *Device) AllocateCommandBuffers(count int) ([]driver.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	out := make([]driver.CommandBuffer, count)
	for i := range out {
		cb := &CommandBuffer{ID: d.id(), alive: true}
		d.buffers[cb] = struct{}{}
		out[i] = cb
	}
	d.record("AllocateCommandBuffers %d", count)
	return out, nil
}

func (d *Device) FreeCommandBuffers(cbs []driver.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range cbs {
		cb := c.(*CommandBuffer)
		if cb.pending != nil {
			panic(fmt.Sprintf("drivertest: %s freed while GPU work is pending", cb))
		}
		cb.alive = false
		delete(d.buffers, cb)
	}
	d.record("FreeCommandBuffers %d", len(cbs))
}

func (d *Device) ResetCommandBuffer(c driver.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	if cb.pending != nil {
		return fmt.Errorf("reset of pending %s: %w", cb, driver.ErrInvalid)
	}
	cb.Resets++
	cb.Commands = nil
	cb.recorded = false
	return nil
}

func (d *Device) BeginCommandBuffer(c driver.CommandBuffer, usage driver.CommandBufferUsage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	if cb.pending != nil {
		return fmt.Errorf("begin of pending %s: %w", cb, driver.ErrInvalid)
	}
	cb.recording = true
	cb.Commands = nil
	return nil
}

func (d *Device) EndCommandBuffer(c driver.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	if !cb.recording {
		return fmt.Errorf("end of %s outside recording: %w", cb, driver.ErrInvalid)
	}
	cb.recording = false
	cb.recorded = true
	return nil
}

// QueueSubmit rejects a submission whose fence is still guarding earlier
// work, which is how the fake detects two frames sharing a slot.
func (d *Device) QueueSubmit(info driver.SubmitInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := info.CommandBuffer.(*CommandBuffer)
	fence := info.Fence.(*Fence)
	if err := d.fail("QueueSubmit"); err != nil {
		return err
	}
	if fence.pending || fence.signaled {
		return fmt.Errorf("submit with busy %s: %w", fence, driver.ErrInvalid)
	}
	if !cb.recorded || cb.pending != nil {
		return fmt.Errorf("submit of %s in wrong state: %w", cb, driver.ErrInvalid)
	}
	if info.Wait != nil {
		wait := info.Wait.(*Semaphore)
		if !wait.signaled {
			return fmt.Errorf("submit waits on unsignaled %s: %w", wait, driver.ErrInvalid)
		}
		wait.signaled = false
	}
	if info.Signal != nil {
		info.Signal.(*Semaphore).signaled = true
	}
	fence.pending = true
	cb.pending = fence
	pending := 0
	for f := range d.fences {
		if f.pending {
			pending++
		}
	}
	if pending > d.maxPending {
		d.maxPending = pending
	}
	d.record("QueueSubmit %s %s", cb, fence)
	return nil
}

func (d *Device) CmdBeginRenderPass(c driver.CommandBuffer, begin driver.RenderPassBegin) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	cb.Commands = append(cb.Commands, fmt.Sprintf("BeginRenderPass %v %dx%d", begin.RenderPass, begin.Area.Extent.Width, begin.Area.Extent.Height))
}

func (d *Device) CmdEndRenderPass(c driver.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	cb.Commands = append(cb.Commands, "EndRenderPass")
}

func (d *Device) CmdSetViewport(c driver.CommandBuffer, vp driver.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	cb.Commands = append(cb.Commands, fmt.Sprintf("SetViewport %.0fx%.0f", vp.Width, vp.Height))
}

func (d *Device) CmdSetScissor(c driver.CommandBuffer, rect driver.Rect2D) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	cb.Commands = append(cb.Commands, fmt.Sprintf("SetScissor %dx%d", rect.Extent.Width, rect.Extent.Height))
}

func (d *Device) CmdClearRects(c driver.CommandBuffer, rects []driver.ClearRect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := c.(*CommandBuffer)
	cb.Commands = append(cb.Commands, fmt.Sprintf("ClearRects %d", len(rects)))
}

func (d *Device) CreateRenderPass(format driver.Format, clear bool) (driver.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateRenderPass"); err != nil {
		return nil, err
	}
	rp := &RenderPass{ID: d.id(), Format: format, Clear: clear, alive: true}
	d.renderPasses[rp] = struct{}{}
	d.record("CreateRenderPass %s %s clear=%t", rp, format, clear)
	return rp, nil
}

func (d *Device) DestroyRenderPass(r driver.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rp := r.(*RenderPass)
	if !rp.alive {
		panic(fmt.Sprintf("drivertest: %s destroyed twice", rp))
	}
	rp.alive = false
	delete(d.renderPasses, rp)
	d.record("DestroyRenderPass %s", rp)
}

var _ driver.Device = (*Device)(nil)
