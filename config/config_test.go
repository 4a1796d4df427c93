package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 180.0, cfg.World.Boundary)
	assert.Equal(t, 1000, cfg.Population.Initial)
	assert.Equal(t, 150.0, cfg.Spawn.Extent)
	assert.Equal(t, 2.0, cfg.Spawn.Speed)
	assert.Equal(t, "manhattan", cfg.Flocking.DistanceMetric)
	assert.Equal(t, "mirror_alignment", cfg.Flocking.Cohesion)
	assert.False(t, cfg.Flocking.StrictFinite)
	assert.Equal(t, float32(200), cfg.Camera.X)

	assert.Equal(t, float32(180), cfg.Derived.Boundary32)
	assert.Equal(t, float32(cfg.Screen.Width), cfg.Derived.ScreenW32)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
world:
  boundary: 50
flocking:
  distance_metric: euclidean
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.World.Boundary)
	assert.Equal(t, "euclidean", cfg.Flocking.DistanceMetric)
	assert.Equal(t, "mirror_alignment", cfg.Flocking.Cohesion, "untouched keys keep defaults")
	assert.Equal(t, 1000, cfg.Population.Initial)
	assert.Equal(t, float32(50), cfg.Derived.Boundary32)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("world: [unterminated"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero boundary", func(c *Config) { c.World.Boundary = 0 }},
		{"negative population", func(c *Config) { c.Population.Initial = -1 }},
		{"negative spawn extent", func(c *Config) { c.Spawn.Extent = -1 }},
		{"empty metric", func(c *Config) { c.Flocking.DistanceMetric = "" }},
		{"empty cohesion", func(c *Config) { c.Flocking.Cohesion = "" }},
		{"negative align radius", func(c *Config) { c.Flocking.AlignRadius = -1 }},
		{"zero max speed", func(c *Config) { c.Flocking.MaxSpeed = 0 }},
		{"negative max force", func(c *Config) { c.Flocking.MaxForce = -0.1 }},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Population.Initial = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, again.Population.Initial)
}

func TestCfgAfterInit(t *testing.T) {
	require.NoError(t, Init(""))
	assert.Equal(t, 180.0, Cfg().World.Boundary)
}
