// Package components defines ECS components for the flock.
package components

import "github.com/pthm-cable/boids/agent"

// Boid identifies a flocking entity. ID is stable for the flock's lifetime
// and matches the index the entity was created at.
type Boid struct {
	ID uint32
}

// Behaviour holds the entity's steering radii and limits.
type Behaviour struct {
	Params agent.Params
}
