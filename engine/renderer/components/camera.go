package components

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

const (
	DEFAULT_CAMERA_DISTANCE float32 = 3.0
	MIN_CAMERA_DISTANCE     float32 = 0.5
	DEFAULT_CAMERA_FOV      float32 = 45.0
	CAMERA_NEAR_CLIP        float32 = 0.01
	CAMERA_FAR_CLIP         float32 = 100.0

	rotateSensitivity float32 = 0.005
	panSensitivity    float32 = 0.001
	zoomSensitivity   float32 = 0.1
	maxPitch          float32 = 89.0 * math.K_DEG2RAD_MULTIPLIER
)

// Camera orbits a target point. Yaw and pitch are in radians; yaw 0 looks
// down -Z from the +Z side.
type Camera struct {
	Target   math.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	// Field of view in degrees.
	Fov    float32
	Aspect float32

	// Set when the view matrix needs to be rebuilt.
	IsDirty    bool
	ViewMatrix math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{Aspect: 1}
	camera.Reset()
	return camera
}

// Reset moves the camera back to its initial orbit. The aspect ratio is
// kept since it belongs to the surface.
func (c *Camera) Reset() {
	c.Target = math.NewVec3Zero()
	c.Distance = DEFAULT_CAMERA_DISTANCE
	c.Yaw = 0
	c.Pitch = 0
	c.Fov = DEFAULT_CAMERA_FOV
	c.IsDirty = true
}

func (c *Camera) SetAspect(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Update applies one iteration of mouse input: left drag rotates, right
// drag pans, the wheel zooms.
func (c *Camera) Update(input *core.InputState) {
	if input.IsButtonDown(core.BUTTON_LEFT) && (input.DeltaX != 0 || input.DeltaY != 0) {
		c.Yaw = math.Wrap(c.Yaw-input.DeltaX*rotateSensitivity, 2*math.K_PI)
		c.Pitch = math.Clamp(c.Pitch+input.DeltaY*rotateSensitivity, -maxPitch, maxPitch)
		c.IsDirty = true
	}
	if input.IsButtonDown(core.BUTTON_RIGHT) && (input.DeltaX != 0 || input.DeltaY != 0) {
		right, up := c.axes()
		scale := panSensitivity * c.Distance
		c.Target = c.Target.
			Sub(right.MulScalar(input.DeltaX * scale)).
			Add(up.MulScalar(input.DeltaY * scale))
		c.IsDirty = true
	}
	if input.Wheel != 0 {
		c.Distance = math.Clamp(c.Distance*(1-input.Wheel*zoomSensitivity), MIN_CAMERA_DISTANCE, CAMERA_FAR_CLIP)
		c.IsDirty = true
	}
}

// Position is the eye position on the orbit.
func (c *Camera) Position() math.Vec3 {
	offset := math.NewVec3(
		math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
	return c.Target.Add(offset.MulScalar(c.Distance))
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAt(c.Position(), c.Target, math.NewVec3Up())
		c.IsDirty = false
	}
	return c.ViewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	return math.NewMat4Perspective(math.DegToRad(c.Fov), c.Aspect, CAMERA_NEAR_CLIP, CAMERA_FAR_CLIP)
}

// axes returns the camera's right and up vectors in world space.
func (c *Camera) axes() (math.Vec3, math.Vec3) {
	forward := c.Target.Sub(c.Position()).Normalized()
	right := forward.Cross(math.NewVec3Up()).Normalized()
	up := right.Cross(forward)
	return right, up
}
