// Package frame paces CPU recording against GPU execution: it owns the
// per-frame synchronization slots, the presentable images and the command
// buffers that draw into them, and rebuilds them when the surface changes.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

// Ticket identifies one submission made through a slot.
type Ticket uint64

// Slot is one frame-in-flight worth of synchronization.
type Slot struct {
	Index          int
	ImageAvailable driver.Semaphore
	RenderFinished driver.Semaphore
	InFlight       driver.Fence

	submitted Ticket
	retired   Ticket
	// armed is set once the fence has been waited and reset but nothing has
	// been submitted against it yet.
	armed bool
}

// Submitted returns the ticket of the latest submission through the slot.
func (s *Slot) Submitted() Ticket { return s.submitted }

type SyncObjectPool struct {
	device    driver.Sync
	slots     []*Slot
	current   int
	destroyed bool
}

// NewSyncObjectPool creates n slots. Fences start signaled so the first wait
// on each slot returns immediately.
func NewSyncObjectPool(device driver.Sync, n int) (*SyncObjectPool, error) {
	if n < 1 {
		return nil, fmt.Errorf("frames in flight must be at least 1, got %d", n)
	}
	p := &SyncObjectPool{device: device, current: -1}
	for i := 0; i < n; i++ {
		slot, err := p.createSlot(i)
		if err != nil {
			p.destroySlots()
			return nil, &FatalError{Op: "create sync objects", Err: err}
		}
		p.slots = append(p.slots, slot)
	}
	core.LogDebug("created %d frame slots", n)
	return p, nil
}

func (p *SyncObjectPool) createSlot(index int) (*Slot, error) {
	slot := &Slot{Index: index}
	var err error
	if slot.ImageAvailable, err = p.device.CreateSemaphore(); err != nil {
		return nil, err
	}
	if slot.RenderFinished, err = p.device.CreateSemaphore(); err != nil {
		p.device.DestroySemaphore(slot.ImageAvailable)
		return nil, err
	}
	if slot.InFlight, err = p.device.CreateFence(true); err != nil {
		p.device.DestroySemaphore(slot.ImageAvailable)
		p.device.DestroySemaphore(slot.RenderFinished)
		return nil, err
	}
	return slot, nil
}

func (p *SyncObjectPool) Len() int {
	return len(p.slots)
}

func (p *SyncObjectPool) Slot(i int) *Slot {
	return p.slots[i]
}

// Next advances to the following slot in strict round-robin order.
func (p *SyncObjectPool) Next() *Slot {
	p.current = (p.current + 1) % len(p.slots)
	return p.slots[p.current]
}

// Wait blocks until the slot's previous submission has completed and resets
// its fence for the next one. A slot left armed by an abandoned cycle is
// returned to immediately.
func (p *SyncObjectPool) Wait(slot *Slot, timeout time.Duration) error {
	if slot.armed {
		return nil
	}
	if err := p.device.WaitForFence(slot.InFlight, timeout); err != nil {
		return &FatalError{Op: fmt.Sprintf("wait for frame slot %d", slot.Index), Err: err}
	}
	slot.retired = slot.submitted
	if err := p.device.ResetFence(slot.InFlight); err != nil {
		return &FatalError{Op: fmt.Sprintf("reset fence of frame slot %d", slot.Index), Err: err}
	}
	slot.armed = true
	return nil
}

// MarkSubmitted records a submission that signals slot.InFlight.
func (p *SyncObjectPool) MarkSubmitted(slot *Slot) Ticket {
	if !slot.armed {
		core.Violation("submission through frame slot %d without waiting its fence", slot.Index)
	}
	slot.submitted++
	slot.armed = false
	return slot.submitted
}

// Retired reports whether the submission identified by ticket has completed
// as far as the CPU has observed.
func (p *SyncObjectPool) Retired(slot *Slot, ticket Ticket) bool {
	return slot.retired >= ticket
}

// WaitTicket blocks until ticket has completed. Waiting on the fence does not
// reset it; the owning slot still goes through Wait before reuse.
func (p *SyncObjectPool) WaitTicket(slot *Slot, ticket Ticket, timeout time.Duration) error {
	if p.Retired(slot, ticket) {
		return nil
	}
	if err := p.device.WaitForFence(slot.InFlight, timeout); err != nil {
		return &FatalError{Op: fmt.Sprintf("wait for frame slot %d", slot.Index), Err: err}
	}
	slot.retired = ticket
	return nil
}

// RetireAll marks every submission complete. Only valid after a device idle
// wait.
func (p *SyncObjectPool) RetireAll() {
	for _, s := range p.slots {
		s.retired = s.submitted
	}
}

// Destroy releases every primitive. The device must be idle.
func (p *SyncObjectPool) Destroy() {
	if p.destroyed {
		return
	}
	p.destroySlots()
	p.destroyed = true
}

func (p *SyncObjectPool) destroySlots() {
	for _, s := range p.slots {
		p.device.DestroySemaphore(s.ImageAvailable)
		p.device.DestroySemaphore(s.RenderFinished)
		p.device.DestroyFence(s.InFlight)
	}
	p.slots = nil
}

// FatalError is an unrecoverable device or surface failure.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
