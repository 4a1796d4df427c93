// Package flock owns a fixed population of agents and advances it one frame
// at a time.
//
// Each frame runs in two passes over the population in creation order.
// The first pass computes every agent's steering against a snapshot taken
// at the start of the frame; the second integrates every agent. No agent is
// moved before all steering has been computed, so the result does not
// depend on the order in which agents are visited.
package flock

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/components"
)

// ErrNonFinite is the panic value (wrapped) raised in strict mode when an
// agent ends a frame with a NaN or infinite position or velocity.
var ErrNonFinite = errors.New("non-finite agent state")

// Phase names reported to Options.Phases.
const (
	PhaseSnapshot  = "snapshot"
	PhaseSteer     = "steer"
	PhaseIntegrate = "integrate"
)

// DefaultParallelThreshold is the population size from which steering is
// computed on the worker pool.
const DefaultParallelThreshold = 64

// PhaseTimer is notified when each pass of a frame starts.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Options configures a Flock.
type Options struct {
	// Seed seeds the spawn RNG when Rand is nil.
	Seed int64
	Rand *rand.Rand

	Spawn  agent.Spawn
	Params agent.Params
	Metric agent.DistanceMetric

	// ParallelThreshold is the minimum population for parallel steering.
	// Zero means DefaultParallelThreshold; negative disables the pool.
	ParallelThreshold int
	// Workers is the pool size. Zero means GOMAXPROCS.
	Workers int

	// StrictFinite panics on non-finite state instead of repairing it.
	StrictFinite bool

	Logger *slog.Logger
	Phases PhaseTimer
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Seed:   1,
		Spawn:  agent.DefaultSpawn(),
		Params: agent.DefaultParams(),
		Metric: agent.Manhattan{},
	}
}

// Flock holds the population and the per-frame scratch state.
type Flock struct {
	world  *ecs.World
	mapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Behaviour,
		components.Boid,
	]
	posMap  *ecs.Map[components.Position]
	velMap  *ecs.Map[components.Velocity]
	behMap  *ecs.Map[components.Behaviour]
	boidMap *ecs.Map[components.Boid]

	// entities in creation order; both passes iterate this slice.
	entities []ecs.Entity

	metric    agent.DistanceMetric
	threshold int
	strict    bool
	logger    *slog.Logger
	phases    PhaseTimer

	// Per-frame scratch, overwritten every Update.
	snapshot []agent.Agent
	intents  []mgl64.Vec3

	parallel *parallelState

	tick    int64
	repairs int
}

// New creates a flock of populationSize agents with random positions inside
// the spawn cube and small random velocities.
func New(populationSize int, opts Options) *Flock {
	populationSize = max(populationSize, 0)
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	params := opts.Params
	if params == (agent.Params{}) {
		params = agent.DefaultParams()
	}
	spawn := opts.Spawn
	if spawn == (agent.Spawn{}) {
		spawn = agent.DefaultSpawn()
	}

	agents := make([]agent.Agent, populationSize)
	for i := range agents {
		agents[i] = agent.Random(uint32(i), rng, spawn, params)
	}
	return FromAgents(agents, opts)
}

// FromAgents creates a flock holding copies of the given agents, in order.
// IDs are reassigned to match each agent's index.
func FromAgents(agents []agent.Agent, opts Options) *Flock {
	world := ecs.NewWorld()

	f := &Flock{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Behaviour,
			components.Boid,
		](world),
		posMap:    ecs.NewMap[components.Position](world),
		velMap:    ecs.NewMap[components.Velocity](world),
		behMap:    ecs.NewMap[components.Behaviour](world),
		boidMap:   ecs.NewMap[components.Boid](world),
		entities:  make([]ecs.Entity, 0, len(agents)),
		metric:    opts.Metric,
		threshold: opts.ParallelThreshold,
		strict:    opts.StrictFinite,
		logger:    opts.Logger,
		phases:    opts.Phases,
		snapshot:  make([]agent.Agent, 0, len(agents)),
		intents:   make([]mgl64.Vec3, 0, len(agents)),
		parallel:  newParallelState(opts.Workers),
	}
	if f.metric == nil {
		f.metric = agent.Manhattan{}
	}
	if f.threshold == 0 {
		f.threshold = DefaultParallelThreshold
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	for i, a := range agents {
		pos := components.Position{}
		pos.Set(a.Position)
		vel := components.Velocity{}
		vel.Set(a.Velocity)
		beh := components.Behaviour{Params: a.Params}
		boid := components.Boid{ID: uint32(i)}

		f.entities = append(f.entities, f.mapper.NewEntity(&pos, &vel, &beh, &boid))
	}

	return f
}

// Update advances the simulation by one frame.
func (f *Flock) Update(boundary float64) {
	// Pass 0: freeze the frame's starting state.
	f.startPhase(PhaseSnapshot)
	f.takeSnapshot()

	n := len(f.snapshot)
	if cap(f.intents) < n {
		f.intents = make([]mgl64.Vec3, n)
	}
	f.intents = f.intents[:n]

	// Pass 1: steering for every agent, reading only the snapshot.
	f.startPhase(PhaseSteer)
	if f.threshold > 0 && n >= f.threshold {
		f.steerParallel(n, boundary)
	} else {
		f.steerChunk(0, n, &f.parallel.scratches[0], boundary)
	}

	// Pass 2: integrate in order; each agent only touches its own state.
	f.startPhase(PhaseIntegrate)
	f.integrate(boundary)

	f.tick++
}

// takeSnapshot copies every agent's current state, in creation order.
func (f *Flock) takeSnapshot() {
	f.snapshot = f.snapshot[:0]
	for _, e := range f.entities {
		f.snapshot = append(f.snapshot, f.read(e))
	}
}

// steerChunk computes steering intents for snapshot[i0:i1].
func (f *Flock) steerChunk(i0, i1 int, scratch *workerScratch, boundary float64) {
	nb := agent.Exhaustive{Agents: f.snapshot, Metric: f.metric}
	for i := i0; i < i1; i++ {
		self := &f.snapshot[i]
		scratch.neighbors = nb.Within(self, self.Params.QueryRadius(), scratch.neighbors[:0])
		f.intents[i] = self.Steer(scratch.neighbors, boundary)
	}
}

// integrate applies the intents and writes the new state back.
func (f *Flock) integrate(boundary float64) {
	for i, e := range f.entities {
		a := f.snapshot[i]
		a.Acceleration = f.intents[i]
		a.Update()

		if !a.Finite() {
			f.handleNonFinite(&a, boundary)
		}

		f.posMap.Get(e).Set(a.Position)
		f.velMap.Get(e).Set(a.Velocity)
	}
}

func (f *Flock) handleNonFinite(a *agent.Agent, boundary float64) {
	if f.strict {
		panic(fmt.Errorf("%w: agent %d at tick %d", ErrNonFinite, a.ID, f.tick))
	}
	a.Repair(boundary)
	f.repairs++
	f.logger.Warn("repaired non-finite agent state",
		"agent", a.ID,
		"tick", f.tick,
	)
}

// read builds an agent value from an entity's components.
func (f *Flock) read(e ecs.Entity) agent.Agent {
	return agent.Agent{
		ID:       f.boidMap.Get(e).ID,
		Position: f.posMap.Get(e).Vec(),
		Velocity: f.velMap.Get(e).Vec(),
		Params:   f.behMap.Get(e).Params,
	}
}

func (f *Flock) startPhase(phase string) {
	if f.phases != nil {
		f.phases.StartPhase(phase)
	}
}

// Birds returns a copy of the current population in creation order.
// Changes to the returned agents do not affect the flock.
func (f *Flock) Birds() []agent.Agent {
	birds := make([]agent.Agent, len(f.entities))
	for i, e := range f.entities {
		birds[i] = f.read(e)
	}
	return birds
}

// Len returns the population size.
func (f *Flock) Len() int {
	return len(f.entities)
}

// Tick returns the number of frames advanced so far.
func (f *Flock) Tick() int64 {
	return f.tick
}

// Metric returns the distance metric used for neighbor tests.
func (f *Flock) Metric() agent.DistanceMetric {
	return f.metric
}

// Repairs returns how many agent states have been repaired so far.
func (f *Flock) Repairs() int {
	return f.repairs
}

// Close stops the worker pool. The flock stays usable; a later parallel
// Update restarts the workers.
func (f *Flock) Close() {
	if f.parallel != nil {
		f.parallel.stopWorkers()
	}
}
