package frame

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Target is the image a command buffer draws into.
type Target struct {
	Index       uint32
	Framebuffer driver.Framebuffer
	Extent      driver.Extent2D
}

// ScenePass records the 3D scene into an open command buffer.
type ScenePass interface {
	RecordScene(cb driver.CommandBuffer, target Target, scene metadata.SceneView, settings metadata.Settings) error
}

// OverlayPass records the GUI on top of the scene.
type OverlayPass interface {
	RecordOverlay(cb driver.CommandBuffer, target Target, draw metadata.DrawData) error
}

// Recorder fills a command buffer with one frame of work.
type Recorder struct {
	device  driver.Commands
	pool    *SyncObjectPool
	scene   ScenePass
	overlay OverlayPass
}

func NewRecorder(device driver.Commands, pool *SyncObjectPool, scene ScenePass, overlay OverlayPass) *Recorder {
	return &Recorder{device: device, pool: pool, scene: scene, overlay: overlay}
}

// Record re-records cb for target. Recording a buffer that the GPU may still
// be executing is a programming error and panics.
func (r *Recorder) Record(cb *CommandBuffer, target Target, scene metadata.SceneView, draw metadata.DrawData, settings metadata.Settings) error {
	if slot, ticket := cb.Guard(); slot != nil && !r.pool.Retired(slot, ticket) {
		core.Violation("command buffer for image %d reset while still in use by frame slot %d", target.Index, slot.Index)
	}

	if err := r.device.ResetCommandBuffer(cb.Handle); err != nil {
		return fmt.Errorf("reset command buffer %d: %w", target.Index, err)
	}
	cb.State = COMMAND_BUFFER_STATE_READY

	if err := r.device.BeginCommandBuffer(cb.Handle, driver.UsageSimultaneous); err != nil {
		return fmt.Errorf("begin command buffer %d: %w", target.Index, err)
	}
	cb.State = COMMAND_BUFFER_STATE_RECORDING

	if err := r.scene.RecordScene(cb.Handle, target, scene, settings); err != nil {
		return fmt.Errorf("record scene: %w", err)
	}
	if err := r.overlay.RecordOverlay(cb.Handle, target, draw); err != nil {
		return fmt.Errorf("record overlay: %w", err)
	}

	if err := r.device.EndCommandBuffer(cb.Handle); err != nil {
		return fmt.Errorf("end command buffer %d: %w", target.Index, err)
	}
	cb.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}
