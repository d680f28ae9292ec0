package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

func (vb *VulkanBackend) AllocateCommandBuffers(count int) ([]driver.CommandBuffer, error) {
	if count <= 0 {
		return nil, driver.ErrInvalid
	}
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        vb.context.Device.GraphicsCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	handles := make([]vk.CommandBuffer, count)
	if res := vk.AllocateCommandBuffers(vb.context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		return nil, resultError("vkAllocateCommandBuffers", res)
	}
	out := make([]driver.CommandBuffer, count)
	for i := range handles {
		out[i] = handles[i]
	}
	return out, nil
}

func (vb *VulkanBackend) FreeCommandBuffers(cbs []driver.CommandBuffer) {
	handles := make([]vk.CommandBuffer, 0, len(cbs))
	for _, cb := range cbs {
		if h, ok := cb.(vk.CommandBuffer); ok && h != nil {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return
	}
	vk.FreeCommandBuffers(vb.context.Device.LogicalDevice, vb.context.Device.GraphicsCommandPool, uint32(len(handles)), handles)
}

func (vb *VulkanBackend) ResetCommandBuffer(cb driver.CommandBuffer) error {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok {
		return driver.ErrInvalid
	}
	return resultError("vkResetCommandBuffer", vk.ResetCommandBuffer(handle, 0))
}

func (vb *VulkanBackend) BeginCommandBuffer(cb driver.CommandBuffer, usage driver.CommandBufferUsage) error {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok {
		return driver.ErrInvalid
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(usage),
	}
	return resultError("vkBeginCommandBuffer", vk.BeginCommandBuffer(handle, &beginInfo))
}

func (vb *VulkanBackend) EndCommandBuffer(cb driver.CommandBuffer) error {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok {
		return driver.ErrInvalid
	}
	return resultError("vkEndCommandBuffer", vk.EndCommandBuffer(handle))
}

func (vb *VulkanBackend) QueueSubmit(info driver.SubmitInfo) error {
	handle, ok := info.CommandBuffer.(vk.CommandBuffer)
	if !ok {
		return driver.ErrInvalid
	}
	fence, ok := info.Fence.(vk.Fence)
	if !ok {
		return driver.ErrInvalid
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{handle},
	}
	if wait, ok := info.Wait.(vk.Semaphore); ok {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{wait}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(info.WaitStage)}
	}
	if signal, ok := info.Signal.(vk.Semaphore); ok {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{signal}
	}

	return resultError("vkQueueSubmit", vk.QueueSubmit(vb.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence))
}
