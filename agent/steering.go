package agent

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rule weights applied when composing the steering force.
const (
	WeightAlignment  = 1.0
	WeightCohesion   = 1.0
	WeightSeparation = 1.0
	WeightAvoidWalls = 2.0
)

// wallThreshold is the fraction of the boundary distance past which
// AvoidWalls starts pushing back.
const wallThreshold = 0.9

// Alignment steers toward the mean velocity of neighbors within AlignRadius.
func (a *Agent) Alignment(neighbors []Neighbor) mgl64.Vec3 {
	var sum mgl64.Vec3
	total := 0
	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID || n.Dist >= a.Params.AlignRadius {
			continue
		}
		sum = sum.Add(n.Velocity)
		total++
	}
	if total == 0 {
		return mgl64.Vec3{}
	}
	return steerToward(sum.Mul(1/float64(total)), a.Velocity, a.Params.MaxSpeed, a.Params.MaxForce)
}

// Cohesion steers toward the centroid of neighbors within CohesionRadius.
func (a *Agent) Cohesion(neighbors []Neighbor) mgl64.Vec3 {
	var sum mgl64.Vec3
	total := 0
	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID || n.Dist >= a.Params.CohesionRadius {
			continue
		}
		sum = sum.Add(n.Position)
		total++
	}
	if total == 0 {
		return mgl64.Vec3{}
	}
	centroid := sum.Mul(1 / float64(total))
	return steerToward(centroid.Sub(a.Position), a.Velocity, a.Params.MaxSpeed, a.Params.MaxForce)
}

// Separation steers away from neighbors within SeparationRadius. Each
// neighbor contributes its offset divided by its distance. Coincident
// neighbors (distance 0) have no defined direction and are skipped.
func (a *Agent) Separation(neighbors []Neighbor) mgl64.Vec3 {
	var sum mgl64.Vec3
	total := 0
	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID || n.Dist >= a.Params.SeparationRadius || n.Dist <= 0 {
			continue
		}
		sum = sum.Add(a.Position.Sub(n.Position).Mul(1 / n.Dist))
		total++
	}
	if total == 0 {
		return mgl64.Vec3{}
	}
	return steerToward(sum.Mul(1/float64(total)), a.Velocity, a.Params.MaxSpeed, a.Params.MaxForce)
}

// AvoidWalls pushes the agent back toward the interior on every axis where
// it is past 90% of the boundary distance. The push on an axis is inversely
// proportional to the distance to that wall. The sum is capped at MaxForce
// and is never rescaled to MaxSpeed.
func (a *Agent) AvoidWalls(boundary float64) mgl64.Vec3 {
	var steer mgl64.Vec3
	limit := wallThreshold * boundary
	for axis := range 3 {
		p := a.Position[axis]
		switch {
		case p > limit:
			steer[axis] -= 1 / wallDistance(p-boundary)
		case p < -limit:
			steer[axis] += 1 / wallDistance(p+boundary)
		}
	}
	return clampLength(steer, a.Params.MaxForce)
}

func wallDistance(d float64) float64 {
	return math.Max(math.Abs(d), minWallDistance)
}

// Steer composes the weighted steering force from a neighbor list.
// It has no side effects.
func (a *Agent) Steer(neighbors []Neighbor, boundary float64) mgl64.Vec3 {
	alignment := a.Alignment(neighbors)

	var cohesion mgl64.Vec3
	switch a.Params.Cohesion {
	case CohesionCentroid:
		cohesion = a.Cohesion(neighbors)
	default:
		cohesion = alignment
	}

	separation := a.Separation(neighbors)
	avoidWalls := a.AvoidWalls(boundary)

	return alignment.Mul(WeightAlignment).
		Add(cohesion.Mul(WeightCohesion)).
		Add(separation.Mul(WeightSeparation)).
		Add(avoidWalls.Mul(WeightAvoidWalls))
}

// ApplyBehaviour resets the acceleration and accumulates this frame's
// steering from the agents nb reports around a.
func (a *Agent) ApplyBehaviour(nb Neighborhood, boundary float64) {
	a.Acceleration = mgl64.Vec3{}
	neighbors := nb.Within(a, a.Params.QueryRadius(), nil)
	a.Acceleration = a.Acceleration.Add(a.Steer(neighbors, boundary))
}
