package driver

import "errors"

var (
	// ErrOutOfDate reports a swapchain that no longer matches its surface.
	// It is recoverable by rebuilding the swapchain.
	ErrOutOfDate = errors.New("swapchain out of date")

	ErrSurfaceLost = errors.New("surface lost")
	ErrDeviceLost  = errors.New("device lost")
	ErrTimeout     = errors.New("timeout expired")
	ErrOutOfMemory = errors.New("out of memory")
	ErrInvalid     = errors.New("invalid handle")
)

// IsRecoverable reports whether err only requires a swapchain rebuild.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrOutOfDate)
}
