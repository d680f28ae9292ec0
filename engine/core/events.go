package core

import (
	"sync"

	"github.com/spaghettifunk/prism/engine/containers"
)

type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data: *MouseEvent with PosX/PosY
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel. Data: *MouseEvent with Scroll
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Framebuffer resized by the OS. Data: *ResizeEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	// Files dropped on the window. Data: *DropEvent
	EVENT_CODE_FILE_DROPPED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   float32
	PosY   float32
	Scroll float32
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

type DropEvent struct {
	Paths []string
}

// EventQueue buffers events produced by window callbacks until the main loop
// drains them. When full, the oldest event is dropped.
type EventQueue struct {
	mu    sync.Mutex
	queue *containers.RingQueue[EventContext]
}

func NewEventQueue(size int) *EventQueue {
	return &EventQueue{queue: containers.NewRingQueue[EventContext](size)}
}

func (q *EventQueue) Push(e EventContext) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queue.IsFull() {
		dropped, _ := q.queue.Dequeue()
		LogWarn("event queue full, dropping event 0x%02x", dropped.Type)
	}
	_ = q.queue.Enqueue(e)
}

// Drain returns all queued events in arrival order.
func (q *EventQueue) Drain() []EventContext {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Drain()
}
