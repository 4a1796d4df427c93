// Package game wires the flock to configuration, telemetry, and the
// optional raylib front end.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/flock"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

// bookmarkHistory is how many windows the bookmark detector remembers.
const bookmarkHistory = 10

// Options configures a Game beyond what the config file holds.
type Options struct {
	// Config overrides the global config. Nil means config.Cfg().
	Config *config.Config

	Seed           int64
	LogStats       bool
	StatsWindow    int // frames per telemetry window (0 = use config)
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// StatsCallback, if set, receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg      *config.Config
	flock    *flock.Flock
	boundary float64
	params   agent.Params

	rngSeed int64
	paused  bool

	stepsPerUpdate int
	stepOnce       bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	snapshotDir      string

	// Rendering (nil when headless)
	scene      *renderer.Scene
	hud        *ui.HUD
	statsPanel *ui.StatsPanel
	panelData  ui.StatsPanelData
	panelTick  int64

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a new game instance.
// In graphical mode it must be called after the raylib window is created.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	metric, err := agent.ParseMetric(cfg.Flocking.DistanceMetric)
	if err != nil {
		return nil, fmt.Errorf("flocking.distance_metric: %w", err)
	}
	mode, err := agent.ParseCohesionMode(cfg.Flocking.Cohesion)
	if err != nil {
		return nil, fmt.Errorf("flocking.cohesion: %w", err)
	}

	params := agent.Params{
		AlignRadius:      cfg.Flocking.AlignRadius,
		CohesionRadius:   cfg.Flocking.CohesionRadius,
		SeparationRadius: cfg.Flocking.SeparationRadius,
		MaxSpeed:         cfg.Flocking.MaxSpeed,
		MaxForce:         cfg.Flocking.MaxForce,
		Cohesion:         mode,
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}

	g := &Game{
		cfg:              cfg,
		boundary:         cfg.World.Boundary,
		params:           params,
		rngSeed:          opts.Seed,
		stepsPerUpdate:   max(opts.StepsPerUpdate, 1),
		collector:        telemetry.NewCollector(statsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkHistory),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		snapshotDir:      opts.SnapshotDir,
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}

	fopts := flock.Options{
		Seed:              opts.Seed,
		Spawn:             agent.Spawn{Extent: cfg.Spawn.Extent, Speed: cfg.Spawn.Speed},
		Params:            params,
		Metric:            metric,
		ParallelThreshold: cfg.Flocking.ParallelThreshold,
		Workers:           cfg.Flocking.Workers,
		StrictFinite:      cfg.Flocking.StrictFinite,
		Logger:            slog.Default(),
		Phases:            g.perfCollector,
	}

	g.flock = flock.New(cfg.Population.Initial, fopts)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.flock.Close()
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	if g.snapshotDir == "" {
		g.snapshotDir = g.outputManager.SnapshotDir()
	}

	if !opts.Headless {
		cam := camera.New(cfg.Camera.X, cfg.Camera.Y, cfg.Camera.Z)
		cam.Fovy = cfg.Camera.Fovy
		cam.SetLimits(cfg.Camera.MinDistance, cfg.Camera.MaxDistance)

		g.scene = renderer.NewScene(cam, cfg.Derived.Boundary32)
		g.hud = ui.NewHUD()
		g.statsPanel = ui.NewStatsPanel(int32(g.screenWidth)-290, 10, 280)
	}

	return g, nil
}

// Update handles input and runs stepsPerUpdate frames unless paused.
// Frame timing started here is closed by Draw.
func (g *Game) Update() {
	g.perfCollector.StartTick()

	g.handleInput()

	if g.paused {
		if g.stepOnce {
			g.simulationStep()
			g.stepOnce = false
		}
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs stepsPerUpdate frames with no input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perfCollector.StartTick()
		g.simulationStep()
		g.perfCollector.EndTick()
	}
}

// simulationStep advances the flock one frame and records telemetry.
func (g *Game) simulationStep() {
	g.flock.Update(g.boundary)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.flock.Tick()
}

// Flock returns the simulated flock.
func (g *Game) Flock() *flock.Flock {
	return g.flock
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Unload stops workers and closes output files.
func (g *Game) Unload() {
	g.flock.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
