package vulkan

import (
	"math"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

func (vb *VulkanBackend) CreateSemaphore() (driver.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var handle vk.Semaphore
	if res := vk.CreateSemaphore(vb.context.Device.LogicalDevice, &createInfo, vb.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateSemaphore", res)
	}
	return handle, nil
}

func (vb *VulkanBackend) DestroySemaphore(s driver.Semaphore) {
	if handle, ok := s.(vk.Semaphore); ok && handle != vk.NullSemaphore {
		vk.DestroySemaphore(vb.context.Device.LogicalDevice, handle, vb.context.Allocator)
	}
}

func (vb *VulkanBackend) CreateFence(signaled bool) (driver.Fence, error) {
	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(vb.context.Device.LogicalDevice, &createInfo, vb.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateFence", res)
	}
	return handle, nil
}

func (vb *VulkanBackend) DestroyFence(f driver.Fence) {
	if handle, ok := f.(vk.Fence); ok && handle != vk.NullFence {
		vk.DestroyFence(vb.context.Device.LogicalDevice, handle, vb.context.Allocator)
	}
}

func (vb *VulkanBackend) WaitForFence(f driver.Fence, timeout time.Duration) error {
	handle, ok := f.(vk.Fence)
	if !ok {
		return driver.ErrInvalid
	}
	res := vk.WaitForFences(vb.context.Device.LogicalDevice, 1, []vk.Fence{handle}, vk.True, timeoutNanos(timeout))
	switch res {
	case vk.Success:
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("vk_fence_wait - VK_ERROR_DEVICE_LOST.")
	}
	return resultError("vkWaitForFences", res)
}

func (vb *VulkanBackend) ResetFence(f driver.Fence) error {
	handle, ok := f.(vk.Fence)
	if !ok {
		return driver.ErrInvalid
	}
	return resultError("vkResetFences", vk.ResetFences(vb.context.Device.LogicalDevice, 1, []vk.Fence{handle}))
}

func (vb *VulkanBackend) WaitIdle() error {
	return resultError("vkDeviceWaitIdle", vk.DeviceWaitIdle(vb.context.Device.LogicalDevice))
}

func (vb *VulkanBackend) GraphicsQueueWaitIdle() error {
	return resultError("vkQueueWaitIdle", vk.QueueWaitIdle(vb.context.Device.GraphicsQueue))
}

func timeoutNanos(d time.Duration) uint64 {
	if d < 0 || d == driver.Forever {
		return math.MaxUint64
	}
	return uint64(d.Nanoseconds())
}
