package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Population.Initial = 40
	cfg.Telemetry.StatsWindow = 10
	return cfg
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessFlushesWindows(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newHeadless(t, Options{
		Config:         testConfig(t),
		Seed:           7,
		StepsPerUpdate: 5,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for range 5 {
		g.UpdateHeadless()
	}

	assert.Equal(t, int64(25), g.Tick())
	require.Len(t, windows, 2)
	assert.Equal(t, int64(10), windows[0].WindowEndTick)
	assert.Equal(t, int64(20), windows[1].WindowEndTick)
	assert.Equal(t, int64(10), windows[1].Frames)
	assert.Equal(t, 40, windows[1].Population)
	assert.Greater(t, windows[1].SpeedMean, 0.0)
}

func TestStatsWindowOption(t *testing.T) {
	var windows int
	g := newHeadless(t, Options{
		Config:        testConfig(t),
		Seed:          1,
		StatsWindow:   3,
		StatsCallback: func(telemetry.WindowStats) { windows++ },
	})

	for range 9 {
		g.UpdateHeadless()
	}
	assert.Equal(t, 3, windows)
}

func TestSameSeedSameFlock(t *testing.T) {
	cfg := testConfig(t)
	a := newHeadless(t, Options{Config: cfg, Seed: 99})
	b := newHeadless(t, Options{Config: cfg, Seed: 99})

	for range 12 {
		a.UpdateHeadless()
		b.UpdateHeadless()
	}

	assert.Equal(t, a.Flock().Birds(), b.Flock().Birds())
}

func TestDefaultConfigMatchesAgentDefaults(t *testing.T) {
	g := newHeadless(t, Options{Config: testConfig(t)})
	assert.Equal(t, agent.DefaultParams(), g.params)
}

func TestInvalidMetric(t *testing.T) {
	cfg := testConfig(t)
	cfg.Flocking.DistanceMetric = "chebyshev"

	_, err := NewGameWithOptions(Options{Config: cfg, Headless: true})
	assert.Error(t, err)
}

func TestInvalidCohesion(t *testing.T) {
	cfg := testConfig(t)
	cfg.Flocking.Cohesion = "nearest"

	_, err := NewGameWithOptions(Options{Config: cfg, Headless: true})
	assert.Error(t, err)
}

func TestSnapshotCapturesState(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, Options{Config: testConfig(t), Seed: 3, SnapshotDir: dir})
	for range 7 {
		g.UpdateHeadless()
	}

	snap := g.Snapshot()
	assert.Equal(t, int64(7), snap.Tick)
	assert.Equal(t, int64(3), snap.RNGSeed)
	assert.Equal(t, "manhattan", snap.DistanceMetric)
	require.Len(t, snap.Agents, 40)

	b := g.Flock().Birds()[5]
	assert.Equal(t, b.Position.X(), snap.Agents[5].X)
	assert.Equal(t, b.Velocity.Z(), snap.Agents[5].VelZ)

	g.saveSnapshot(nil)
	_, err := os.Stat(filepath.Join(dir, "snapshot_7.json"))
	assert.NoError(t, err)
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, Options{Config: testConfig(t), Seed: 5, OutputDir: dir})

	for range 20 {
		g.UpdateHeadless()
	}
	require.NoError(t, g.outputManager.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus two windows")
	assert.True(t, strings.HasPrefix(lines[0], "run_id,window_end,"))
	assert.True(t, strings.HasPrefix(lines[1], g.outputManager.RunID()+",10,"))

	_, err = os.Stat(filepath.Join(dir, "perf.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}
