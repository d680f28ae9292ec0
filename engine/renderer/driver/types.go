package driver

import (
	"fmt"
	"math"
	"time"
)

// Opaque handles handed out by a Device. A backend decides their concrete
// type; callers only pass them back to the Device that created them.
type (
	Semaphore     interface{}
	Fence         interface{}
	CommandBuffer interface{}
	Swapchain     interface{}
	Image         interface{}
	ImageView     interface{}
	Framebuffer   interface{}
	RenderPass    interface{}
)

// Forever disables the timeout of a fence wait.
const Forever time.Duration = math.MaxInt64

// UndefinedExtent is reported by platforms that let the swapchain pick its
// own size.
const UndefinedExtent uint32 = math.MaxUint32

type Extent2D struct {
	Width  uint32
	Height uint32
}

func (e Extent2D) Area() uint64 {
	return uint64(e.Width) * uint64(e.Height)
}

func (e Extent2D) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// Format values match VkFormat.
type Format uint32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatR8G8B8A8Srgb  Format = 43
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "UNDEFINED"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8Srgb:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8_SRGB"
	}
	return fmt.Sprintf("FORMAT(%d)", uint32(f))
}

// ColorSpace values match VkColorSpaceKHR.
type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

// PresentMode values match VkPresentModeKHR.
type PresentMode uint32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "IMMEDIATE"
	case PresentModeMailbox:
		return "MAILBOX"
	case PresentModeFifo:
		return "FIFO"
	case PresentModeFifoRelaxed:
		return "FIFO_RELAXED"
	}
	return fmt.Sprintf("PRESENT_MODE(%d)", uint32(m))
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SurfaceCapabilities struct {
	MinImageCount  uint32
	MaxImageCount  uint32 // 0 means no limit
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
}

// SwapchainSupport is what the surface offers, queried fresh before every
// swapchain creation.
type SwapchainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type SwapchainCreateInfo struct {
	ImageCount    uint32
	SurfaceFormat SurfaceFormat
	PresentMode   PresentMode
	Extent        Extent2D
}

type PipelineStage uint32

const (
	StageTopOfPipe             PipelineStage = 0x00000001
	StageColorAttachmentOutput PipelineStage = 0x00000400
	StageBottomOfPipe          PipelineStage = 0x00002000
)

type SubmitInfo struct {
	CommandBuffer CommandBuffer
	Wait          Semaphore
	WaitStage     PipelineStage
	Signal        Semaphore
	Fence         Fence
}

type CommandBufferUsage uint32

const (
	UsageOneTimeSubmit CommandBufferUsage = 0x00000001
	UsageSimultaneous  CommandBufferUsage = 0x00000004
)

type Color struct {
	R, G, B, A float32
}

type Rect2D struct {
	X, Y   int32
	Extent Extent2D
}

type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

type RenderPassBegin struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Area        Rect2D
	ClearColor  Color
}

// ClearRect fills Rect with Color inside the current render pass.
type ClearRect struct {
	Rect  Rect2D
	Color Color
}
