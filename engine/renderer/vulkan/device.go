package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

var ErrNoSuitableDevice = errors.New("no physical device meets the requirements")

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

func (q VulkanPhysicalDeviceQueueFamilyInfo) complete() bool {
	return q.GraphicsFamilyIndex >= 0 && q.PresentFamilyIndex >= 0
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	indices := []uint32{uint32(context.Device.GraphicsQueueIndex)}
	if context.Device.PresentQueueIndex != context.Device.GraphicsQueueIndex {
		indices = append(indices, uint32(context.Device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	available, err := deviceExtensions(context.Device.PhysicalDevice)
	if err != nil {
		return err
	}
	if _, ok := available["VK_KHR_portability_subset"]; ok {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		return resultError("vkCreateDevice", res)
	}
	core.LogInfo("Logical device created.")

	var graphics, present vk.Queue
	vk.GetDeviceQueue(context.Device.LogicalDevice, uint32(context.Device.GraphicsQueueIndex), 0, &graphics)
	vk.GetDeviceQueue(context.Device.LogicalDevice, uint32(context.Device.PresentQueueIndex), 0, &present)
	context.Device.GraphicsQueue = graphics
	context.Device.PresentQueue = present

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		return resultError("vkCreateCommandPool", res)
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	if context.Device.LogicalDevice != nil {
		if context.Device.GraphicsCommandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(context.Device.LogicalDevice, context.Device.GraphicsCommandPool, context.Allocator)
			context.Device.GraphicsCommandPool = vk.NullCommandPool
		}
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
}

// DeviceQuerySwapchainSupport reads what the surface supports right now. The
// current extent changes with the window, so it is queried on every rebuild.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (driver.SwapchainSupport, error) {
	support := driver.SwapchainSupport{}

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &caps); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfaceCapabilities", res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	support.Capabilities = driver.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  driver.Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		MinImageExtent: driver.Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxImageExtent: driver.Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
	}

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfaceFormats", res)
	}
	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, formats); res != vk.Success {
			return support, resultError("vkGetPhysicalDeviceSurfaceFormats", res)
		}
		for i := range formats {
			formats[i].Deref()
			support.Formats = append(support.Formats, driver.SurfaceFormat{
				Format:     driver.Format(formats[i].Format),
				ColorSpace: driver.ColorSpace(formats[i].ColorSpace),
			})
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfacePresentModes", res)
	}
	if modeCount != 0 {
		modes := make([]vk.PresentMode, modeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, modes); res != vk.Success {
			return support, resultError("vkGetPhysicalDeviceSurfacePresentModes", res)
		}
		for _, m := range modes {
			support.PresentModes = append(support.PresentModes, driver.PresentMode(m))
		}
	}
	return support, nil
}

func SelectPhysicalDevice(context *VulkanContext) error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &count, nil); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return fmt.Errorf("no devices which support Vulkan were found: %w", ErrNoSuitableDevice)
	}
	physicalDevices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &count, physicalDevices); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}

	// Prefer a discrete GPU but accept anything that can present.
	best := -1
	var bestQueues VulkanPhysicalDeviceQueueFamilyInfo
	var bestProps vk.PhysicalDeviceProperties
	for i, pd := range physicalDevices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()

		queues, ok := PhysicalDeviceMeetsRequirements(pd, context.Surface, &props)
		if !ok {
			continue
		}
		if best < 0 || (props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu && bestProps.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu) {
			best = i
			bestQueues = queues
			bestProps = props
		}
	}
	if best < 0 {
		return ErrNoSuitableDevice
	}

	context.Device.PhysicalDevice = physicalDevices[best]
	context.Device.GraphicsQueueIndex = bestQueues.GraphicsFamilyIndex
	context.Device.PresentQueueIndex = bestQueues.PresentFamilyIndex
	context.Device.Properties = bestProps

	core.LogInfo("Selected device: '%s'.", cString(bestProps.DeviceName[:]))
	switch bestProps.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(bestProps.ApiVersion)),
		vk.Version.Minor(vk.Version(bestProps.ApiVersion)),
		vk.Version.Patch(vk.Version(bestProps.ApiVersion)),
	)
	return nil
}

func PhysicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties) (VulkanPhysicalDeviceQueueFamilyInfo, bool) {
	queues := VulkanPhysicalDeviceQueueFamilyInfo{GraphicsFamilyIndex: -1, PresentFamilyIndex: -1}
	name := cString(properties.DeviceName[:])

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, families)

	for i := range families {
		families[i].Deref()
		graphics := vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit != 0

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return queues, false
		}
		present := supportsPresent == vk.True

		// A family that does both avoids concurrent sharing on the swapchain.
		if graphics && present {
			queues.GraphicsFamilyIndex = int32(i)
			queues.PresentFamilyIndex = int32(i)
			break
		}
		if graphics && queues.GraphicsFamilyIndex < 0 {
			queues.GraphicsFamilyIndex = int32(i)
		}
		if present && queues.PresentFamilyIndex < 0 {
			queues.PresentFamilyIndex = int32(i)
		}
	}

	if !queues.complete() {
		core.LogInfo("Device '%s' lacks graphics or present queues, skipping.", name)
		return queues, false
	}

	extensions, err := deviceExtensions(device)
	if err != nil {
		return queues, false
	}
	if _, ok := extensions[vk.KhrSwapchainExtensionName]; !ok {
		core.LogInfo("Required extension not found: '%s', skipping device '%s'.", vk.KhrSwapchainExtensionName, name)
		return queues, false
	}

	support, err := DeviceQuerySwapchainSupport(device, surface)
	if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		core.LogInfo("Required swapchain support not present, skipping device '%s'.", name)
		return queues, false
	}

	core.LogDebug("Device '%s': graphics family %d, present family %d", name, queues.GraphicsFamilyIndex, queues.PresentFamilyIndex)
	return queues, true
}

func deviceExtensions(device vk.PhysicalDevice) (map[string]struct{}, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success {
		return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	props := make([]vk.ExtensionProperties, count)
	if count != 0 {
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, props); res != vk.Success {
			return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
		}
	}
	out := make(map[string]struct{}, count)
	for i := range props {
		props[i].Deref()
		out[cString(props[i].ExtensionName[:])] = struct{}{}
	}
	return out, nil
}
