package vulkan

import (
	vk "github.com/goki/vulkan"
)

type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugReport vk.DebugReportCallback

	Device *VulkanDevice
}
