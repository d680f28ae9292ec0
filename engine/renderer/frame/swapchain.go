package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

var ErrZeroExtent = errors.New("surface has zero area")

// SwapchainProperties are the parameters a swapchain was (or will be) built
// with.
type SwapchainProperties struct {
	SurfaceFormat driver.SurfaceFormat
	PresentMode   driver.PresentMode
	Extent        driver.Extent2D
	ImageCount    uint32
}

// IdealSwapchainProperties picks format, present mode, extent and image count
// from what the surface supports. preferred is used when the platform does
// not dictate the extent.
func IdealSwapchainProperties(support driver.SwapchainSupport, preferred driver.Extent2D, vsync bool) (SwapchainProperties, error) {
	if len(support.Formats) == 0 {
		return SwapchainProperties{}, errors.New("surface reports no formats")
	}
	caps := support.Capabilities
	props := SwapchainProperties{
		SurfaceFormat: chooseSurfaceFormat(support.Formats),
		PresentMode:   choosePresentMode(support.PresentModes, vsync),
		Extent:        chooseExtent(caps, preferred),
	}
	if props.Extent.IsZero() {
		return SwapchainProperties{}, ErrZeroExtent
	}

	props.ImageCount = caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && props.ImageCount > caps.MaxImageCount {
		props.ImageCount = caps.MaxImageCount
	}
	return props, nil
}

func chooseSurfaceFormat(formats []driver.SurfaceFormat) driver.SurfaceFormat {
	preferred := driver.SurfaceFormat{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSrgbNonlinear}
	if len(formats) == 1 && formats[0].Format == driver.FormatUndefined {
		return preferred
	}
	for _, f := range formats {
		if f == preferred {
			return f
		}
	}
	return formats[0]
}

func choosePresentMode(modes []driver.PresentMode, vsync bool) driver.PresentMode {
	if vsync {
		return driver.PresentModeFifo
	}
	has := func(want driver.PresentMode) bool {
		for _, m := range modes {
			if m == want {
				return true
			}
		}
		return false
	}
	switch {
	case has(driver.PresentModeMailbox):
		return driver.PresentModeMailbox
	case has(driver.PresentModeImmediate):
		return driver.PresentModeImmediate
	}
	return driver.PresentModeFifo
}

func chooseExtent(caps driver.SurfaceCapabilities, preferred driver.Extent2D) driver.Extent2D {
	if caps.CurrentExtent.Width != driver.UndefinedExtent {
		return caps.CurrentExtent
	}
	return driver.Extent2D{
		Width:  math.Clamp(preferred.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(preferred.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// Swapchain owns the presentable images and everything derived from them.
// It is only ever destroyed and rebuilt as a whole.
type Swapchain struct {
	device       driver.Device
	handle       driver.Swapchain
	props        SwapchainProperties
	images       []driver.Image
	views        []driver.ImageView
	framebuffers []driver.Framebuffer
}

// NewSwapchain builds a swapchain plus one view and framebuffer per image.
// On failure nothing is left behind.
func NewSwapchain(device driver.Device, props SwapchainProperties, renderPass driver.RenderPass) (*Swapchain, error) {
	sc := &Swapchain{device: device, props: props}
	if err := sc.build(renderPass); err != nil {
		sc.Destroy()
		return nil, err
	}
	core.LogInfo("swapchain created: %dx%d, %d images, %s, %s",
		props.Extent.Width, props.Extent.Height, len(sc.images), props.SurfaceFormat.Format, props.PresentMode)
	return sc, nil
}

func (sc *Swapchain) build(renderPass driver.RenderPass) error {
	handle, err := sc.device.CreateSwapchain(driver.SwapchainCreateInfo{
		ImageCount:    sc.props.ImageCount,
		SurfaceFormat: sc.props.SurfaceFormat,
		PresentMode:   sc.props.PresentMode,
		Extent:        sc.props.Extent,
	})
	if err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	sc.handle = handle

	if sc.images, err = sc.device.SwapchainImages(handle); err != nil {
		return fmt.Errorf("get swapchain images: %w", err)
	}
	// The driver may hand out more images than requested.
	sc.props.ImageCount = uint32(len(sc.images))

	for i, img := range sc.images {
		view, err := sc.device.CreateImageView(img, sc.props.SurfaceFormat.Format)
		if err != nil {
			return fmt.Errorf("create view for swapchain image %d: %w", i, err)
		}
		sc.views = append(sc.views, view)

		fb, err := sc.device.CreateFramebuffer(renderPass, view, sc.props.Extent)
		if err != nil {
			return fmt.Errorf("create framebuffer for swapchain image %d: %w", i, err)
		}
		sc.framebuffers = append(sc.framebuffers, fb)
	}
	return nil
}

func (sc *Swapchain) Properties() SwapchainProperties { return sc.props }

func (sc *Swapchain) Extent() driver.Extent2D { return sc.props.Extent }

func (sc *Swapchain) ImageCount() int { return len(sc.images) }

func (sc *Swapchain) Framebuffer(index uint32) driver.Framebuffer { return sc.framebuffers[index] }

// AcquireNextImage returns the index of the next image to render to. signal
// is signaled once the image is available. driver.ErrOutOfDate is returned
// wrapped and means the swapchain must be rebuilt.
func (sc *Swapchain) AcquireNextImage(timeout time.Duration, signal driver.Semaphore) (uint32, bool, error) {
	index, suboptimal, err := sc.device.AcquireNextImage(sc.handle, timeout, signal)
	if err != nil {
		return 0, false, fmt.Errorf("acquire next image: %w", err)
	}
	return index, suboptimal, nil
}

// Present queues image index for presentation once wait is signaled.
func (sc *Swapchain) Present(wait driver.Semaphore, index uint32) (bool, error) {
	suboptimal, err := sc.device.QueuePresent(sc.handle, index, wait)
	if err != nil {
		return false, fmt.Errorf("present image %d: %w", index, err)
	}
	return suboptimal, nil
}

// Destroy releases framebuffers, views and the swapchain. No GPU work may
// reference them.
func (sc *Swapchain) Destroy() {
	for _, fb := range sc.framebuffers {
		sc.device.DestroyFramebuffer(fb)
	}
	sc.framebuffers = nil
	for _, v := range sc.views {
		sc.device.DestroyImageView(v)
	}
	sc.views = nil
	sc.images = nil
	if sc.handle != nil {
		sc.device.DestroySwapchain(sc.handle)
		sc.handle = nil
	}
}
