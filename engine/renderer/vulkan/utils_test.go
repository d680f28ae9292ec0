package vulkan

import (
	"math"
	"testing"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

func TestResultErrorTaxonomy(t *testing.T) {
	assert.NoError(t, resultError("present", vk.Success))
	assert.ErrorIs(t, resultError("present", vk.ErrorOutOfDate), driver.ErrOutOfDate)
	assert.ErrorIs(t, resultError("acquire", vk.ErrorSurfaceLost), driver.ErrSurfaceLost)
	assert.ErrorIs(t, resultError("submit", vk.ErrorDeviceLost), driver.ErrDeviceLost)
	assert.ErrorIs(t, resultError("wait", vk.Timeout), driver.ErrTimeout)
	assert.ErrorIs(t, resultError("alloc", vk.ErrorOutOfDeviceMemory), driver.ErrOutOfMemory)

	err := resultError("create", vk.ErrorFeatureNotPresent)
	assert.EqualError(t, err, "create: VK_ERROR_FEATURE_NOT_PRESENT")
	assert.False(t, driver.IsRecoverable(err))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "abc\x00", VulkanSafeString("abc"))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc\x00"))
	assert.Equal(t, "\x00", VulkanSafeString(""))

	in := []string{"a", "b"}
	assert.Equal(t, []string{"a\x00", "b\x00"}, VulkanSafeStrings(in))
	assert.Equal(t, []string{"a", "b"}, in)

	var name [16]byte
	copy(name[:], "VK_KHR_swapchain")
	assert.Equal(t, "VK_KHR_swapchain", cString(name[:]))
	copy(name[:], "VK_LAYER\x00junk")
	assert.Equal(t, "VK_LAYER", cString(name[:]))
}

func TestTimeoutNanos(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), timeoutNanos(driver.Forever))
	assert.Equal(t, uint64(math.MaxUint64), timeoutNanos(-1))
	assert.Equal(t, uint64(2_000_000), timeoutNanos(2*time.Millisecond))
}

func TestRect2DConversion(t *testing.T) {
	r := rect2D(driver.Rect2D{X: 4, Y: -2, Extent: driver.Extent2D{Width: 10, Height: 20}})
	assert.Equal(t, int32(4), r.Offset.X)
	assert.Equal(t, int32(-2), r.Offset.Y)
	assert.Equal(t, uint32(10), r.Extent.Width)
	assert.Equal(t, uint32(20), r.Extent.Height)
}
