package main

import (
	"github.com/pthm-cable/boids/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the flocking rule parameters the optimizer searches.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "align_radius", Path: "flocking.align_radius", Min: 10, Max: 90, Default: 45},
			{Name: "cohesion_radius", Path: "flocking.cohesion_radius", Min: 10, Max: 90, Default: 35},
			{Name: "separation_radius", Path: "flocking.separation_radius", Min: 5, Max: 50, Default: 25},
			{Name: "max_speed", Path: "flocking.max_speed", Min: 1, Max: 6, Default: 3},
			{Name: "max_force", Path: "flocking.max_force", Min: 0.005, Max: 0.1, Default: 0.025},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Flocking.AlignRadius = c[0]
	cfg.Flocking.CohesionRadius = c[1]
	cfg.Flocking.SeparationRadius = c[2]
	cfg.Flocking.MaxSpeed = c[3]
	cfg.Flocking.MaxForce = c[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Flocking.AlignRadius,
		cfg.Flocking.CohesionRadius,
		cfg.Flocking.SeparationRadius,
		cfg.Flocking.MaxSpeed,
		cfg.Flocking.MaxForce,
	}
}
