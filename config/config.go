// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Camera     CameraConfig     `yaml:"camera"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the simulation volume.
type WorldConfig struct {
	Boundary float64 `yaml:"boundary"` // half-extent of the cube agents are steered to stay in
}

// PopulationConfig holds population size.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
}

// SpawnConfig holds the random initial state scales.
type SpawnConfig struct {
	Extent float64 `yaml:"extent"` // edge of the centered spawn cube
	Speed  float64 `yaml:"speed"`  // scale of each initial velocity component
}

// FlockingConfig holds rule selection and execution settings.
type FlockingConfig struct {
	DistanceMetric    string `yaml:"distance_metric"`    // manhattan | euclidean
	Cohesion          string `yaml:"cohesion"`           // mirror_alignment | centroid
	ParallelThreshold int    `yaml:"parallel_threshold"` // min population for the worker pool (-1 = never)
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
	StrictFinite      bool   `yaml:"strict_finite"`      // panic on NaN/Inf instead of repairing

	// Rule parameters shared by every agent.
	AlignRadius      float64 `yaml:"align_radius"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`
	SeparationRadius float64 `yaml:"separation_radius"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxForce         float64 `yaml:"max_force"`
}

// CameraConfig holds the initial orbit camera.
type CameraConfig struct {
	X           float32 `yaml:"x"`
	Y           float32 `yaml:"y"`
	Z           float32 `yaml:"z"`
	Fovy        float32 `yaml:"fovy"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // frames per stats window
	PerfWindow  int `yaml:"perf_window"`  // frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Boundary32 float32 // World.Boundary as float32
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks value ranges. Names of metrics and cohesion modes are
// resolved (and rejected) by the packages that own them.
func (c *Config) Validate() error {
	switch {
	case c.World.Boundary <= 0:
		return fmt.Errorf("%w: world.boundary must be positive, got %v", ErrInvalid, c.World.Boundary)
	case c.Population.Initial < 0:
		return fmt.Errorf("%w: population.initial must not be negative, got %d", ErrInvalid, c.Population.Initial)
	case c.Spawn.Extent < 0 || c.Spawn.Speed < 0:
		return fmt.Errorf("%w: spawn extent and speed must not be negative", ErrInvalid)
	case c.Flocking.DistanceMetric == "":
		return fmt.Errorf("%w: flocking.distance_metric is empty", ErrInvalid)
	case c.Flocking.Cohesion == "":
		return fmt.Errorf("%w: flocking.cohesion is empty", ErrInvalid)
	case c.Flocking.AlignRadius < 0 || c.Flocking.CohesionRadius < 0 || c.Flocking.SeparationRadius < 0:
		return fmt.Errorf("%w: flocking radii must not be negative", ErrInvalid)
	case c.Flocking.MaxSpeed <= 0:
		return fmt.Errorf("%w: flocking.max_speed must be positive, got %v", ErrInvalid, c.Flocking.MaxSpeed)
	case c.Flocking.MaxForce < 0:
		return fmt.Errorf("%w: flocking.max_force must not be negative, got %v", ErrInvalid, c.Flocking.MaxForce)
	case c.Telemetry.StatsWindow <= 0:
		return fmt.Errorf("%w: telemetry.stats_window must be positive, got %d", ErrInvalid, c.Telemetry.StatsWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Boundary32 = float32(c.World.Boundary)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Camera.MinDistance <= 0 {
		c.Camera.MinDistance = 1
	}
	if c.Camera.MaxDistance < c.Camera.MinDistance {
		c.Camera.MaxDistance = c.Camera.MinDistance
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
