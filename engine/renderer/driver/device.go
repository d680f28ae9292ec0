// Package driver is the seam between the frame engine and a graphics API.
// The frame package only speaks Device; the vulkan package implements it.
package driver

import "time"

type Sync interface {
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	// WaitForFence blocks until f is signaled or timeout elapses, in which
	// case ErrTimeout is returned.
	WaitForFence(f Fence, timeout time.Duration) error
	ResetFence(f Fence) error
	// WaitIdle blocks until every queue of the device is idle.
	WaitIdle() error
	GraphicsQueueWaitIdle() error
}

type Presentation interface {
	SwapchainSupport() (SwapchainSupport, error)
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(sc Swapchain)
	SwapchainImages(sc Swapchain) ([]Image, error)
	CreateImageView(img Image, format Format) (ImageView, error)
	DestroyImageView(v ImageView)
	CreateFramebuffer(rp RenderPass, view ImageView, extent Extent2D) (Framebuffer, error)
	DestroyFramebuffer(fb Framebuffer)
	// AcquireNextImage signals s once the returned image is ready to be
	// rendered to. ErrOutOfDate means the swapchain must be rebuilt.
	AcquireNextImage(sc Swapchain, timeout time.Duration, s Semaphore) (index uint32, suboptimal bool, err error)
	QueuePresent(sc Swapchain, index uint32, wait Semaphore) (suboptimal bool, err error)
}

type Commands interface {
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(cbs []CommandBuffer)
	ResetCommandBuffer(cb CommandBuffer) error
	BeginCommandBuffer(cb CommandBuffer, usage CommandBufferUsage) error
	EndCommandBuffer(cb CommandBuffer) error
	QueueSubmit(info SubmitInfo) error
}

// Encoder records commands into a command buffer in the recording state.
type Encoder interface {
	CmdBeginRenderPass(cb CommandBuffer, begin RenderPassBegin)
	CmdEndRenderPass(cb CommandBuffer)
	CmdSetViewport(cb CommandBuffer, vp Viewport)
	CmdSetScissor(cb CommandBuffer, rect Rect2D)
	CmdClearRects(cb CommandBuffer, rects []ClearRect)
}

type Device interface {
	Sync
	Presentation
	Commands
	Encoder
}
