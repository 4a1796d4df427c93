package flock

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/boids/agent"
)

const boundary = 180.0

func serialOptions() Options {
	opts := DefaultOptions()
	opts.ParallelThreshold = -1
	return opts
}

func agentAt(pos, vel mgl64.Vec3) agent.Agent {
	a := agent.New(0, agent.DefaultParams())
	a.Position = pos
	a.Velocity = vel
	return a
}

// cluster returns n agents packed tightly enough to interact.
func cluster(seed int64, n int) []agent.Agent {
	rng := rand.New(rand.NewSource(seed))
	agents := make([]agent.Agent, n)
	for i := range agents {
		agents[i] = agent.Random(uint32(i), rng, agent.Spawn{Extent: 40, Speed: 4}, agent.DefaultParams())
	}
	return agents
}

func TestNewPopulation(t *testing.T) {
	f := New(250, serialOptions())
	defer f.Close()

	birds := f.Birds()
	require.Len(t, birds, 250)
	assert.Equal(t, 250, f.Len())

	spawn := agent.DefaultSpawn()
	for i, b := range birds {
		assert.Equal(t, uint32(i), b.ID)
		assert.Equal(t, agent.DefaultParams(), b.Params)
		assert.Equal(t, mgl64.Vec3{}, b.Acceleration)
		for axis := range 3 {
			assert.LessOrEqual(t, math.Abs(b.Position[axis]), spawn.Extent/2)
			assert.LessOrEqual(t, math.Abs(b.Velocity[axis]), spawn.Speed/2)
		}
	}
}

func TestNewNegativeSize(t *testing.T) {
	f := New(-3, serialOptions())
	assert.Zero(t, f.Len())

	f.Update(boundary) // empty frames are fine
	assert.Empty(t, f.Birds())
	assert.Equal(t, int64(1), f.Tick())
}

func TestSameSeedSamePopulation(t *testing.T) {
	opts := serialOptions()
	opts.Seed = 1234
	assert.Equal(t, New(50, opts).Birds(), New(50, opts).Birds())
}

func TestBirdsReturnsCopy(t *testing.T) {
	f := FromAgents(cluster(1, 5), serialOptions())
	before := f.Birds()

	birds := f.Birds()
	birds[0].Position = mgl64.Vec3{999, 999, 999}
	birds[1] = agent.Agent{}
	_ = append(birds[:2], birds[3:]...)

	assert.Equal(t, before, f.Birds())
}

func TestFromAgentsReassignsIDs(t *testing.T) {
	agents := cluster(2, 4)
	for i := range agents {
		agents[i].ID = 100
	}
	f := FromAgents(agents, serialOptions())

	for i, b := range f.Birds() {
		assert.Equal(t, uint32(i), b.ID)
		assert.Equal(t, agents[i].Position, b.Position)
	}
}

func TestTwoAgentScenarioFrame(t *testing.T) {
	f := FromAgents([]agent.Agent{
		agentAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}),
		agentAt(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0}),
	}, serialOptions())

	f.Update(boundary)
	birds := f.Birds()

	// Position moves by the pre-frame velocity.
	assert.InDelta(t, 1.0, birds[0].Position.X(), 1e-12)
	assert.InDelta(t, 9.0, birds[1].Position.X(), 1e-12)

	// alignment + mirrored cohesion + separation, each one MaxForce along x.
	steer := 3 * agent.DefaultMaxForce
	assert.InDelta(t, 1-steer, birds[0].Velocity.X(), 1e-12)
	assert.InDelta(t, -1+steer, birds[1].Velocity.X(), 1e-12)
	assert.Zero(t, birds[0].Velocity.Y())
	assert.Zero(t, birds[0].Velocity.Z())
}

// expectedFrame steps agents by hand: all steering from the same starting
// snapshot, then integration.
func expectedFrame(agents []agent.Agent, order []int) []agent.Agent {
	nb := agent.Exhaustive{Agents: agents, Metric: agent.Manhattan{}}
	steer := make([]mgl64.Vec3, len(agents))
	for _, i := range order {
		self := &agents[i]
		steer[i] = self.Steer(nb.Within(self, self.Params.QueryRadius(), nil), boundary)
	}

	out := make([]agent.Agent, len(agents))
	copy(out, agents)
	for i := range out {
		out[i].Acceleration = steer[i]
		out[i].Update()
	}
	return out
}

func TestStepsFromFrameStartSnapshot(t *testing.T) {
	agents := cluster(3, 30)

	forward := make([]int, len(agents))
	backward := make([]int, len(agents))
	for i := range agents {
		forward[i] = i
		backward[i] = len(agents) - 1 - i
	}

	wantForward := expectedFrame(agents, forward)
	wantBackward := expectedFrame(agents, backward)
	assert.Equal(t, wantForward, wantBackward, "steering must not depend on traversal order")

	f := FromAgents(agents, serialOptions())
	f.Update(boundary)
	assert.Equal(t, wantForward, f.Birds())
}

func TestSinglePassWouldDiffer(t *testing.T) {
	// Stepping agents one at a time (steer then move) lets later agents see
	// already-moved neighbors; the flock must not behave that way.
	agents := cluster(4, 20)

	sequential := make([]agent.Agent, len(agents))
	copy(sequential, agents)
	for i := range sequential {
		nb := agent.Exhaustive{Agents: sequential, Metric: agent.Manhattan{}}
		sequential[i].ApplyBehaviour(nb, boundary)
		sequential[i].Update()
	}

	f := FromAgents(agents, serialOptions())
	f.Update(boundary)

	assert.NotEqual(t, sequential, f.Birds())
}

func TestDeterministicFromSameState(t *testing.T) {
	agents := cluster(5, 80)
	a := FromAgents(agents, serialOptions())
	b := FromAgents(agents, serialOptions())

	for range 50 {
		a.Update(boundary)
		b.Update(boundary)
	}

	ba, bb := a.Birds(), b.Birds()
	for i := range ba {
		assert.True(t, ba[i].Position.ApproxEqualThreshold(bb[i].Position, 1e-9))
		assert.True(t, ba[i].Velocity.ApproxEqualThreshold(bb[i].Velocity, 1e-9))
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	agents := cluster(6, 150)

	serial := FromAgents(agents, serialOptions())

	opts := DefaultOptions()
	opts.ParallelThreshold = 1
	opts.Workers = 4
	parallel := FromAgents(agents, opts)
	defer parallel.Close()

	for range 20 {
		serial.Update(boundary)
		parallel.Update(boundary)
	}

	assert.Equal(t, serial.Birds(), parallel.Birds())
}

func TestCloseThenUpdateRestartsWorkers(t *testing.T) {
	opts := DefaultOptions()
	opts.ParallelThreshold = 1
	opts.Workers = 3
	f := FromAgents(cluster(7, 10), opts)

	f.Update(boundary)
	f.Close()
	f.Close()
	f.Update(boundary)
	f.Close()

	assert.Equal(t, int64(2), f.Tick())
}

func TestSpeedBoundEveryFrame(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 99
	f := New(200, opts)
	defer f.Close()

	for frame := range 100 {
		f.Update(boundary)
		for _, b := range f.Birds() {
			require.LessOrEqual(t, b.Speed(), agent.DefaultMaxSpeed+1e-12, "frame %d agent %d", frame, b.ID)
			require.True(t, b.Finite())
		}
	}
}

func TestWallTurnsAgentBack(t *testing.T) {
	f := FromAgents([]agent.Agent{
		agentAt(mgl64.Vec3{0.95 * boundary, 0, 0}, mgl64.Vec3{}),
	}, serialOptions())

	f.Update(boundary)
	assert.Less(t, f.Birds()[0].Velocity.X(), 0.0)
}

func TestMetricChangesNeighborhood(t *testing.T) {
	// L1 distance 50 is outside every radius; L2 distance ~35.4 is inside
	// the alignment radius.
	agents := []agent.Agent{
		agentAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}),
		agentAt(mgl64.Vec3{25, 25, 0}, mgl64.Vec3{0, 1, 0}),
	}

	l1 := FromAgents(agents, serialOptions())
	opts := serialOptions()
	opts.Metric = agent.Euclidean{}
	l2 := FromAgents(agents, opts)

	l1.Update(boundary)
	l2.Update(boundary)

	assert.Equal(t, mgl64.Vec3{1, 0, 0}, l1.Birds()[0].Velocity, "isolated under L1")
	assert.NotEqual(t, mgl64.Vec3{1, 0, 0}, l2.Birds()[0].Velocity, "neighbors under L2")
}

func TestNonFiniteRepairedByDefault(t *testing.T) {
	f := FromAgents([]agent.Agent{
		agentAt(mgl64.Vec3{math.NaN(), 0, 0}, mgl64.Vec3{1, 0, 0}),
		agentAt(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0}),
	}, serialOptions())

	f.Update(boundary)

	assert.Equal(t, 1, f.Repairs())
	for _, b := range f.Birds() {
		assert.True(t, b.Finite())
	}
}

func TestNonFinitePanicsInStrictMode(t *testing.T) {
	opts := serialOptions()
	opts.StrictFinite = true
	f := FromAgents([]agent.Agent{
		agentAt(mgl64.Vec3{0, math.Inf(1), 0}, mgl64.Vec3{}),
	}, opts)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrNonFinite))
	}()
	f.Update(boundary)
}

type recordingTimer struct {
	phases []string
}

func (r *recordingTimer) StartPhase(phase string) {
	r.phases = append(r.phases, phase)
}

func TestPhasesReported(t *testing.T) {
	timer := &recordingTimer{}
	opts := serialOptions()
	opts.Phases = timer
	f := FromAgents(cluster(8, 3), opts)

	f.Update(boundary)
	f.Update(boundary)

	assert.Equal(t, []string{
		PhaseSnapshot, PhaseSteer, PhaseIntegrate,
		PhaseSnapshot, PhaseSteer, PhaseIntegrate,
	}, timer.phases)
}
