package frame

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

type CommandBufferState uint8

const (
	COMMAND_BUFFER_STATE_READY CommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

// CommandBuffer is a persistent per-image command buffer. It remembers the
// slot and ticket of its latest submission so it is never reset while the
// GPU may still be executing it.
type CommandBuffer struct {
	Handle driver.CommandBuffer
	State  CommandBufferState

	guard  *Slot
	ticket Ticket
}

// Guard returns the slot and ticket of the latest submission, or a nil slot
// if the buffer was never submitted.
func (cb *CommandBuffer) Guard() (*Slot, Ticket) {
	return cb.guard, cb.ticket
}

func (cb *CommandBuffer) markSubmitted(slot *Slot, ticket Ticket) {
	cb.guard = slot
	cb.ticket = ticket
	cb.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// CommandBufferSet holds one command buffer per presentable image.
type CommandBufferSet struct {
	device  driver.Commands
	buffers []*CommandBuffer
}

func NewCommandBufferSet(device driver.Commands, count int) (*CommandBufferSet, error) {
	handles, err := device.AllocateCommandBuffers(count)
	if err != nil {
		return nil, fmt.Errorf("allocate %d command buffers: %w", count, err)
	}
	set := &CommandBufferSet{device: device, buffers: make([]*CommandBuffer, len(handles))}
	for i, h := range handles {
		set.buffers[i] = &CommandBuffer{Handle: h, State: COMMAND_BUFFER_STATE_READY}
	}
	return set, nil
}

func (s *CommandBufferSet) Len() int {
	return len(s.buffers)
}

func (s *CommandBufferSet) Get(index uint32) *CommandBuffer {
	return s.buffers[index]
}

// Free returns every buffer to the pool. No GPU work may reference them.
func (s *CommandBufferSet) Free() {
	if len(s.buffers) == 0 {
		return
	}
	handles := make([]driver.CommandBuffer, len(s.buffers))
	for i, b := range s.buffers {
		handles[i] = b.Handle
		b.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
	}
	s.device.FreeCommandBuffers(handles)
	s.buffers = nil
}
