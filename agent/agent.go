// Package agent defines a single flocking agent: its kinematic state,
// the steering rules it follows, and the integration step that moves it.
//
// An Agent is a plain value. It never holds references to other agents;
// steering rules read neighbor state through a Neighbor list built from a
// per-frame snapshot, so an agent's steering only ever depends on the
// configuration at the start of the frame.
package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Default behavior parameters, identical across the population.
const (
	DefaultAlignRadius      = 45.0
	DefaultCohesionRadius   = 35.0
	DefaultSeparationRadius = 25.0
	DefaultMaxSpeed         = 3.0
	DefaultMaxForce         = 0.025
)

// Up is the reference axis that Orientation rotates onto the heading.
var Up = mgl64.Vec3{0, 1, 0}

// ErrUnknownCohesionMode is returned by ParseCohesionMode for unrecognized names.
var ErrUnknownCohesionMode = errors.New("unknown cohesion mode")

// CohesionMode selects which computation feeds the cohesion term of Steer.
type CohesionMode uint8

const (
	// CohesionMirrorsAlignment reuses the alignment computation for the
	// cohesion term, so cohesion pulls toward the neighbors' heading.
	CohesionMirrorsAlignment CohesionMode = iota
	// CohesionCentroid steers toward the centroid of nearby agents.
	CohesionCentroid
)

// String returns the config name of the mode.
func (m CohesionMode) String() string {
	switch m {
	case CohesionMirrorsAlignment:
		return "mirror_alignment"
	case CohesionCentroid:
		return "centroid"
	default:
		return fmt.Sprintf("CohesionMode(%d)", uint8(m))
	}
}

// ParseCohesionMode maps a config name to a CohesionMode.
func ParseCohesionMode(name string) (CohesionMode, error) {
	switch name {
	case "mirror_alignment", "mirror":
		return CohesionMirrorsAlignment, nil
	case "centroid":
		return CohesionCentroid, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCohesionMode, name)
	}
}

// Params holds the per-agent behavior radii and limits.
type Params struct {
	AlignRadius      float64
	CohesionRadius   float64
	SeparationRadius float64
	MaxSpeed         float64 // velocity magnitude cap
	MaxForce         float64 // steering magnitude cap per rule
	Cohesion         CohesionMode
}

// DefaultParams returns the default behavior parameters.
func DefaultParams() Params {
	return Params{
		AlignRadius:      DefaultAlignRadius,
		CohesionRadius:   DefaultCohesionRadius,
		SeparationRadius: DefaultSeparationRadius,
		MaxSpeed:         DefaultMaxSpeed,
		MaxForce:         DefaultMaxForce,
		Cohesion:         CohesionMirrorsAlignment,
	}
}

// QueryRadius returns the largest radius any rule looks at.
func (p Params) QueryRadius() float64 {
	return max(p.AlignRadius, p.CohesionRadius, p.SeparationRadius)
}

// Spawn controls the random initial state of new agents.
type Spawn struct {
	Extent float64 // edge length of the centered spawn cube
	Speed  float64 // scale of each initial velocity component
}

// DefaultSpawn returns the default spawn volume and speed scale.
func DefaultSpawn() Spawn {
	return Spawn{Extent: 150, Speed: 2}
}

// Agent is one flocking entity.
type Agent struct {
	ID       uint32
	Position mgl64.Vec3
	Velocity mgl64.Vec3

	// Acceleration is written by ApplyBehaviour and consumed by Update.
	// It is zero between frames.
	Acceleration mgl64.Vec3

	Params Params
}

// New returns an agent at the origin with zero velocity.
func New(id uint32, params Params) Agent {
	return Agent{ID: id, Params: params}
}

// Random returns an agent with a random position inside the spawn cube
// and a small random velocity.
func Random(id uint32, rng *rand.Rand, spawn Spawn, params Params) Agent {
	a := New(id, params)
	a.Position = mgl64.Vec3{
		rng.Float64() - 0.5,
		rng.Float64() - 0.5,
		rng.Float64() - 0.5,
	}.Mul(spawn.Extent)
	a.Velocity = mgl64.Vec3{
		rng.Float64() - 0.5,
		rng.Float64() - 0.5,
		rng.Float64() - 0.5,
	}.Mul(spawn.Speed)
	return a
}

// Update integrates one frame: explicit Euler with a unit time step.
// Position advances by the old velocity, then the accumulated steering is
// added to the velocity and the speed is capped at MaxSpeed.
func (a *Agent) Update() {
	a.Position = a.Position.Add(a.Velocity)
	a.Velocity = clampLength(a.Velocity.Add(a.Acceleration), a.Params.MaxSpeed)
	a.Acceleration = mgl64.Vec3{}
}

// Orientation returns the rotation taking Up onto the heading.
// An agent at rest keeps the identity rotation.
func (a *Agent) Orientation() mgl64.Quat {
	dir := normalize(a.Velocity)
	if dir == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(Up, dir)
}

// Heading returns the unit heading vector, or zero at rest.
func (a *Agent) Heading() mgl64.Vec3 {
	return normalize(a.Velocity)
}

// Speed returns the velocity magnitude.
func (a *Agent) Speed() float64 {
	return a.Velocity.Len()
}

// Finite reports whether position and velocity hold only finite values.
func (a *Agent) Finite() bool {
	return finite(a.Position) && finite(a.Velocity)
}

// Repair replaces non-finite state: position components are clamped into
// [-boundary, boundary] (NaN becomes 0) and velocity components are zeroed.
// It returns true if anything was changed.
func (a *Agent) Repair(boundary float64) bool {
	changed := false
	for i := range 3 {
		p := a.Position[i]
		switch {
		case math.IsNaN(p):
			a.Position[i] = 0
			changed = true
		case math.IsInf(p, 1):
			a.Position[i] = boundary
			changed = true
		case math.IsInf(p, -1):
			a.Position[i] = -boundary
			changed = true
		}
		if v := a.Velocity[i]; math.IsNaN(v) || math.IsInf(v, 0) {
			a.Velocity[i] = 0
			changed = true
		}
	}
	if changed {
		a.Acceleration = mgl64.Vec3{}
	}
	return changed
}
