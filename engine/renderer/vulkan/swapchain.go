package vulkan

import (
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
}

func (vb *VulkanBackend) SwapchainSupport() (driver.SwapchainSupport, error) {
	return DeviceQuerySwapchainSupport(vb.context.Device.PhysicalDevice, vb.context.Surface)
}

func (vb *VulkanBackend) CreateSwapchain(info driver.SwapchainCreateInfo) (driver.Swapchain, error) {
	if info.Extent.IsZero() {
		return nil, driver.ErrInvalid
	}

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(vb.context.Device.PhysicalDevice, vb.context.Surface, &caps); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceCapabilities", res)
	}
	caps.Deref()

	swapchain := &VulkanSwapchain{
		ImageFormat: vk.SurfaceFormat{
			Format:     vk.Format(info.SurfaceFormat.Format),
			ColorSpace: vk.ColorSpace(info.SurfaceFormat.ColorSpace),
		},
		Extent: vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          vb.context.Surface,
		MinImageCount:    info.ImageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if vb.context.Device.GraphicsQueueIndex != vb.context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(vb.context.Device.GraphicsQueueIndex),
			uint32(vb.context.Device.PresentQueueIndex),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(vb.context.Device.LogicalDevice, &createInfo, vb.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateSwapchain", res)
	}
	swapchain.Handle = handle
	return swapchain, nil
}

func (vb *VulkanBackend) DestroySwapchain(sc driver.Swapchain) {
	swapchain, ok := sc.(*VulkanSwapchain)
	if !ok || swapchain.Handle == vk.NullSwapchain {
		return
	}
	vk.DestroySwapchain(vb.context.Device.LogicalDevice, swapchain.Handle, vb.context.Allocator)
	swapchain.Handle = vk.NullSwapchain
}

func (vb *VulkanBackend) SwapchainImages(sc driver.Swapchain) ([]driver.Image, error) {
	swapchain, ok := sc.(*VulkanSwapchain)
	if !ok {
		return nil, driver.ErrInvalid
	}
	var count uint32
	if res := vk.GetSwapchainImages(vb.context.Device.LogicalDevice, swapchain.Handle, &count, nil); res != vk.Success {
		return nil, resultError("vkGetSwapchainImages", res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(vb.context.Device.LogicalDevice, swapchain.Handle, &count, images); res != vk.Success {
		return nil, resultError("vkGetSwapchainImages", res)
	}
	out := make([]driver.Image, count)
	for i := range images {
		out[i] = images[i]
	}
	return out, nil
}

func (vb *VulkanBackend) CreateImageView(img driver.Image, format driver.Format) (driver.ImageView, error) {
	image, ok := img.(vk.Image)
	if !ok {
		return nil, driver.ErrInvalid
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(vb.context.Device.LogicalDevice, &viewInfo, vb.context.Allocator, &view); res != vk.Success {
		return nil, resultError("vkCreateImageView", res)
	}
	return view, nil
}

func (vb *VulkanBackend) DestroyImageView(v driver.ImageView) {
	if view, ok := v.(vk.ImageView); ok && view != vk.NullImageView {
		vk.DestroyImageView(vb.context.Device.LogicalDevice, view, vb.context.Allocator)
	}
}

func (vb *VulkanBackend) AcquireNextImage(sc driver.Swapchain, timeout time.Duration, s driver.Semaphore) (uint32, bool, error) {
	swapchain, ok := sc.(*VulkanSwapchain)
	if !ok {
		return 0, false, driver.ErrInvalid
	}
	semaphore, ok := s.(vk.Semaphore)
	if !ok {
		return 0, false, driver.ErrInvalid
	}

	var index uint32
	res := vk.AcquireNextImage(vb.context.Device.LogicalDevice, swapchain.Handle, timeoutNanos(timeout), semaphore, vk.NullFence, &index)
	switch res {
	case vk.Success:
		return index, false, nil
	case vk.Suboptimal:
		return index, true, nil
	}
	return 0, false, resultError("vkAcquireNextImage", res)
}

func (vb *VulkanBackend) QueuePresent(sc driver.Swapchain, index uint32, wait driver.Semaphore) (bool, error) {
	swapchain, ok := sc.(*VulkanSwapchain)
	if !ok {
		return false, driver.ErrInvalid
	}
	semaphore, ok := wait.(vk.Semaphore)
	if !ok {
		return false, driver.ErrInvalid
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{semaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain.Handle},
		PImageIndices:      []uint32{index},
	}
	res := vk.QueuePresent(vb.context.Device.PresentQueue, &presentInfo)
	switch res {
	case vk.Success:
		return false, nil
	case vk.Suboptimal:
		return true, nil
	}
	return false, resultError("vkQueuePresent", res)
}
