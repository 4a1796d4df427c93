// Package camera provides an orbit camera for viewing the flock volume.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the camera just short of the poles, where the up vector
// would become parallel to the view direction.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits a target point at a given distance.
type Camera struct {
	// Target is the point the camera looks at.
	Target mgl32.Vec3

	// Yaw is the angle around the vertical axis, measured from +Z toward +X.
	Yaw float32
	// Pitch is the elevation above the horizontal plane.
	Pitch float32
	// Distance from Target to the eye.
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Fovy is the vertical field of view in degrees.
	Fovy float32

	initial orbit
}

// orbit is the state Reset returns to.
type orbit struct {
	yaw, pitch, distance float32
}

// New creates a camera at eye position (x, y, z) looking at the origin.
func New(x, y, z float32) *Camera {
	c := &Camera{
		Fovy:        45,
		MinDistance: 1,
		MaxDistance: float32(math.MaxFloat32),
	}
	c.setEye(mgl32.Vec3{x, y, z})
	c.initial = orbit{yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

func (c *Camera) setEye(eye mgl32.Vec3) {
	offset := eye.Sub(c.Target)
	d := offset.Len()
	if d == 0 {
		c.Yaw, c.Pitch, c.Distance = 0, 0, 1
		return
	}
	c.Distance = d
	c.Pitch = clampPitch(float32(math.Asin(float64(offset.Y() / d))))
	c.Yaw = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	sp := float32(math.Sin(float64(c.Pitch)))
	cy := float32(math.Cos(float64(c.Yaw)))
	sy := float32(math.Sin(float64(c.Yaw)))
	return c.Target.Add(mgl32.Vec3{cp * sy, sp, cp * cy}.Mul(c.Distance))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// Orbit rotates the camera around the target by the given angles in radians.
// Pitch is clamped short of straight up and straight down.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clampPitch(c.Pitch + dPitch)
}

// Zoom multiplies the distance by factor, clamped to the distance limits.
// Factors below 1 move closer.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance * factor)
}

// SetDistance sets the distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = mgl32.Clamp(d, c.MinDistance, c.MaxDistance)
}

// SetLimits sets the distance constraints and re-clamps the current distance.
func (c *Camera) SetLimits(minDistance, maxDistance float32) {
	c.MinDistance = minDistance
	c.MaxDistance = max(maxDistance, minDistance)
	c.SetDistance(c.Distance)
}

// Reset returns the camera to the position it was created with.
func (c *Camera) Reset() {
	c.Yaw = c.initial.yaw
	c.Pitch = c.initial.pitch
	c.SetDistance(c.initial.distance)
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, -maxPitch, maxPitch)
}

// wrapAngle maps an angle into (-pi, pi].
func wrapAngle(a float32) float32 {
	r := float32(math.Remainder(float64(a), 2*math.Pi))
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
