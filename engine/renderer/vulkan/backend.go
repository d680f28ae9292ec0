package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

// SurfaceSource is the window side of the backend: it names the instance
// extensions it needs and creates the presentation surface.
type SurfaceSource interface {
	RequiredExtensionNames() []string
	CreateSurface(instance interface{}) (uintptr, error)
}

// VulkanBackend owns the instance, surface and logical device and
// implements driver.Device on top of them.
type VulkanBackend struct {
	context *VulkanContext
	debug   bool
}

var _ driver.Device = (*VulkanBackend)(nil)

func New(debug bool) *VulkanBackend {
	return &VulkanBackend{
		context: &VulkanContext{
			Allocator: nil,
			Device:    &VulkanDevice{},
		},
		debug: debug,
	}
}

func (vb *VulkanBackend) Initialize(surface SurfaceSource, appName string) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Prism"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, surface.RequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	layers := []string{}
	if vb.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		layers = append(layers, "VK_LAYER_KHRONOS_validation")
		if err := checkLayers(layers); err != nil {
			return err
		}
	}
	core.LogDebug("required instance extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, vb.context.Allocator, &vb.context.Instance); res != vk.Success {
		return resultError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(vb.context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if vb.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vb.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			return resultError("vkCreateDebugReportCallback", res)
		}
		vb.context.debugReport = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	ptr, err := surface.CreateSurface(vb.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	if ptr == 0 {
		return fmt.Errorf("vulkan surface creation returned a null surface")
	}
	vb.context.Surface = vk.SurfaceFromPointer(ptr)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vb.context); err != nil {
		return err
	}

	core.LogInfo("Vulkan backend initialized successfully.")
	return nil
}

// Shutdown waits for the device and releases everything the backend
// created. Frame resources must already be gone.
func (vb *VulkanBackend) Shutdown() {
	if vb.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vb.context.Device.LogicalDevice)
	}
	DeviceDestroy(vb.context)

	if vb.context.Surface != vk.NullSurface {
		vk.DestroySurface(vb.context.Instance, vb.context.Surface, vb.context.Allocator)
		vb.context.Surface = vk.NullSurface
	}
	if vb.context.debugReport != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vb.context.Instance, vb.context.debugReport, vb.context.Allocator)
		vb.context.debugReport = vk.NullDebugReportCallback
	}
	if vb.context.Instance != nil {
		vk.DestroyInstance(vb.context.Instance, vb.context.Allocator)
		vb.context.Instance = nil
	}
	core.LogInfo("Vulkan backend shut down.")
}

func checkLayers(required []string) error {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return resultError("vkEnumerateInstanceLayerProperties", res)
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return resultError("vkEnumerateInstanceLayerProperties", res)
	}
	for _, name := range required {
		found := false
		for j := range available {
			available[j].Deref()
			if cString(available[j].LayerName[:]) == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("required validation layer is missing: %s", name)
		}
	}
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
