package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

func (vb *VulkanBackend) CreateFramebuffer(rp driver.RenderPass, view driver.ImageView, extent driver.Extent2D) (driver.Framebuffer, error) {
	renderpass, ok := rp.(*VulkanRenderpass)
	if !ok {
		return nil, driver.ErrInvalid
	}
	attachment, ok := view.(vk.ImageView)
	if !ok {
		return nil, driver.ErrInvalid
	}

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{attachment},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(vb.context.Device.LogicalDevice, &createInfo, vb.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateFramebuffer", res)
	}
	return handle, nil
}

func (vb *VulkanBackend) DestroyFramebuffer(fb driver.Framebuffer) {
	if handle, ok := fb.(vk.Framebuffer); ok && handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(vb.context.Device.LogicalDevice, handle, vb.context.Allocator)
	}
}
