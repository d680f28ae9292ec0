package platform

import (
	"runtime"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/prism/engine/core"
)

const DEFAULT_EVENT_QUEUE_SIZE = 256

// Minimized windows produce no frames; block this long for events instead of
// spinning.
const minimizedWaitSeconds = 0.05

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	events        *core.EventQueue
	quitRequested atomic.Bool
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
		events: core.NewEventQueue(DEFAULT_EVENT_QUEUE_SIZE),
	}, nil
}

func (p *Platform) Startup(applicationName string, x, y int, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return ErrVulkanUnsupported
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetDropCallback(p.dropCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(x, y)
	p.Window.Show()

	core.LogInfo("window created (%dx%d)", width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events and returns them in arrival
// order.
func (p *Platform) PumpMessages() []core.EventContext {
	if w, h := p.FramebufferSize(); w == 0 || h == 0 {
		glfw.WaitEventsTimeout(minimizedWaitSeconds)
	} else {
		glfw.PollEvents()
	}
	if p.Window != nil && p.Window.ShouldClose() {
		p.pushQuit()
	}
	return ensureQuit(p.events.Drain(), p.quitRequested.Load())
}

// FramebufferSize is the drawable size in pixels, zero while minimized.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	if p.Window == nil {
		return 0, 0
	}
	w, h := p.Window.GetFramebufferSize()
	if w < 0 || h < 0 {
		return 0, 0
	}
	return uint32(w), uint32(h)
}

func (p *Platform) RequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the Vulkan surface for the window; instance is a
// vk.Instance.
func (p *Platform) CreateSurface(instance interface{}) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) pushQuit() {
	if p.quitRequested.CompareAndSwap(false, true) {
		p.events.Push(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
}

// ensureQuit keeps a close request in every batch once it was made, even if
// a flood of later events pushed it out of the queue.
func ensureQuit(events []core.EventContext, requested bool) []core.EventContext {
	if !requested {
		return events
	}
	for _, e := range events {
		if e.Type == core.EVENT_CODE_APPLICATION_QUIT {
			return events
		}
	}
	return append(events, core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		p.events.Push(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: code}})
	case glfw.Release:
		p.events.Push(core.EventContext{Type: core.EVENT_CODE_KEY_RELEASED, Data: &core.KeyEvent{KeyCode: code}})
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateButton(button)
	if !ok {
		return
	}
	x, y := w.GetCursorPos()
	sx, sy := contentScale(w)
	e := &core.MouseEvent{Button: b, PosX: float32(x) * sx, PosY: float32(y) * sy}
	switch action {
	case glfw.Press:
		p.events.Push(core.EventContext{Type: core.EVENT_CODE_BUTTON_PRESSED, Data: e})
	case glfw.Release:
		p.events.Push(core.EventContext{Type: core.EVENT_CODE_BUTTON_RELEASED, Data: e})
	}
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	sx, sy := contentScale(w)
	p.events.Push(core.EventContext{
		Type: core.EVENT_CODE_MOUSE_MOVED,
		Data: &core.MouseEvent{PosX: float32(xpos) * sx, PosY: float32(ypos) * sy},
	})
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.events.Push(core.EventContext{
		Type: core.EVENT_CODE_MOUSE_WHEEL,
		Data: &core.MouseEvent{Scroll: float32(yoff)},
	})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width < 0 || height < 0 {
		return
	}
	p.events.Push(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.ResizeEvent{Width: uint32(width), Height: uint32(height)},
	})
}

func (p *Platform) dropCallback(w *glfw.Window, names []string) {
	if len(names) == 0 {
		return
	}
	p.events.Push(core.EventContext{
		Type: core.EVENT_CODE_FILE_DROPPED,
		Data: &core.DropEvent{Paths: append([]string(nil), names...)},
	})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.pushQuit()
}

// contentScale converts window coordinates to framebuffer pixels.
func contentScale(w *glfw.Window) (float32, float32) {
	ww, wh := w.GetSize()
	fw, fh := w.GetFramebufferSize()
	if ww <= 0 || wh <= 0 {
		return 1, 1
	}
	return float32(fw) / float32(ww), float32(fh) / float32(wh)
}
