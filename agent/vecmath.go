package agent

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minWallDistance floors the distance used by AvoidWalls so an agent sitting
// exactly on a wall saturates instead of dividing by zero.
const minWallDistance = 1e-9

// normalize returns the unit vector along v, or zero for a zero-length or
// non-finite v.
func normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// setLength rescales v to the given length. Zero stays zero.
func setLength(v mgl64.Vec3, length float64) mgl64.Vec3 {
	return normalize(v).Mul(length)
}

// clampLength caps the magnitude of v at maxLen.
func clampLength(v mgl64.Vec3, maxLen float64) mgl64.Vec3 {
	l := v.Len()
	if l > maxLen && l > 0 {
		return v.Mul(maxLen / l)
	}
	return v
}

// steerToward turns a desired direction into a bounded corrective force:
// full speed along desired, minus the current velocity, capped at maxForce.
// A zero desired vector yields zero steering.
func steerToward(desired, velocity mgl64.Vec3, maxSpeed, maxForce float64) mgl64.Vec3 {
	dir := setLength(desired, maxSpeed)
	if dir == (mgl64.Vec3{}) {
		return mgl64.Vec3{}
	}
	return clampLength(dir.Sub(velocity), maxForce)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
