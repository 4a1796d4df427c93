package agent

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func neighborsOf(self Agent, others ...Agent) []Neighbor {
	return Exhaustive{Agents: append([]Agent{self}, others...), Metric: Manhattan{}}.
		Within(&self, self.Params.QueryRadius(), nil)
}

func at(id uint32, pos, vel mgl64.Vec3) Agent {
	a := New(id, DefaultParams())
	a.Position = pos
	a.Velocity = vel
	return a
}

func assertVecInDelta(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestTwoAgentScenario(t *testing.T) {
	a := at(0, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
	b := at(1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	const boundary = 180.0

	na := neighborsOf(a, b)
	nb := neighborsOf(b, a)
	require.Len(t, na, 1)
	require.Len(t, nb, 1)
	assert.InDelta(t, 10.0, na[0].Dist, eps)

	// Alignment turns each toward the other's heading.
	assertVecInDelta(t, mgl64.Vec3{-DefaultMaxForce, 0, 0}, a.Alignment(na), eps)
	assertVecInDelta(t, mgl64.Vec3{DefaultMaxForce, 0, 0}, b.Alignment(nb), eps)

	// Separation pushes them apart along x.
	assertVecInDelta(t, mgl64.Vec3{-DefaultMaxForce, 0, 0}, a.Separation(na), eps)
	assertVecInDelta(t, mgl64.Vec3{DefaultMaxForce, 0, 0}, b.Separation(nb), eps)

	// No wall influence at the origin.
	assert.Equal(t, mgl64.Vec3{}, a.AvoidWalls(boundary))

	// With the mirrored cohesion term, cohesion equals alignment.
	assertVecInDelta(t, mgl64.Vec3{-3 * DefaultMaxForce, 0, 0}, a.Steer(na, boundary), eps)
	assertVecInDelta(t, mgl64.Vec3{3 * DefaultMaxForce, 0, 0}, b.Steer(nb, boundary), eps)
}

func TestCentroidCohesion(t *testing.T) {
	a := at(0, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
	b := at(1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	a.Params.Cohesion = CohesionCentroid

	na := neighborsOf(a, b)

	// Toward the centroid at +x.
	assertVecInDelta(t, mgl64.Vec3{DefaultMaxForce, 0, 0}, a.Cohesion(na), eps)

	// alignment (-f) + cohesion (+f) + separation (-f)
	assertVecInDelta(t, mgl64.Vec3{-DefaultMaxForce, 0, 0}, a.Steer(na, 180), eps)
}

func TestZeroNeighborsProduceZeroSteering(t *testing.T) {
	a := at(0, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 2, 3})
	far := at(1, mgl64.Vec3{100, 0, 0}, mgl64.Vec3{-1, 0, 0})

	n := neighborsOf(a, far)
	assert.Empty(t, n)

	assert.Equal(t, mgl64.Vec3{}, a.Alignment(n))
	assert.Equal(t, mgl64.Vec3{}, a.Cohesion(n))
	assert.Equal(t, mgl64.Vec3{}, a.Separation(n))

	// A far neighbor handed in directly is still filtered by radius.
	direct := []Neighbor{{ID: 1, Position: far.Position, Velocity: far.Velocity, Dist: 100}}
	assert.Equal(t, mgl64.Vec3{}, a.Alignment(direct))
	assert.Equal(t, mgl64.Vec3{}, a.Cohesion(direct))
	assert.Equal(t, mgl64.Vec3{}, a.Separation(direct))
}

func TestRulesIgnoreSelf(t *testing.T) {
	a := at(7, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 0, 0})
	self := []Neighbor{{ID: 7, Position: a.Position, Velocity: a.Velocity, Dist: 0}}

	assert.Equal(t, mgl64.Vec3{}, a.Alignment(self))
	assert.Equal(t, mgl64.Vec3{}, a.Cohesion(self))
	assert.Equal(t, mgl64.Vec3{}, a.Separation(self))
}

func TestAvoidWallsPushesBackInside(t *testing.T) {
	const boundary = 180.0
	a := at(0, mgl64.Vec3{0.95 * boundary, 0, 0}, mgl64.Vec3{})

	steer := a.AvoidWalls(boundary)
	assert.Less(t, steer.X(), 0.0)
	assert.Zero(t, steer.Y())
	assert.Zero(t, steer.Z())
	assert.LessOrEqual(t, steer.Len(), DefaultMaxForce+eps)
}

func TestAvoidWallsPerAxis(t *testing.T) {
	const boundary = 100.0
	tests := []struct {
		name string
		pos  mgl64.Vec3
		sign mgl64.Vec3
	}{
		{"inside", mgl64.Vec3{89, -89, 0}, mgl64.Vec3{0, 0, 0}},
		{"positive x", mgl64.Vec3{95, 0, 0}, mgl64.Vec3{-1, 0, 0}},
		{"negative y", mgl64.Vec3{0, -95, 0}, mgl64.Vec3{0, 1, 0}},
		{"corner", mgl64.Vec3{95, -95, 95}, mgl64.Vec3{-1, 1, -1}},
		{"past wall", mgl64.Vec3{0, 0, -150}, mgl64.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := at(0, tt.pos, mgl64.Vec3{})
			steer := a.AvoidWalls(boundary)
			for i := range 3 {
				switch {
				case tt.sign[i] > 0:
					assert.Greater(t, steer[i], 0.0, "axis %d", i)
				case tt.sign[i] < 0:
					assert.Less(t, steer[i], 0.0, "axis %d", i)
				default:
					assert.Zero(t, steer[i], "axis %d", i)
				}
			}
			assert.LessOrEqual(t, steer.Len(), DefaultMaxForce+eps)
		})
	}
}

func TestAvoidWallsStrengthensNearWall(t *testing.T) {
	a := at(0, mgl64.Vec3{91, 0, 0}, mgl64.Vec3{})
	a.Params.MaxForce = 10 // high enough that the cap does not hide the ramp
	near := at(0, mgl64.Vec3{99, 0, 0}, mgl64.Vec3{})
	near.Params.MaxForce = 10

	assert.Greater(t, near.AvoidWalls(100).Len(), a.AvoidWalls(100).Len())
}

func TestAvoidWallsOnTheWallSaturates(t *testing.T) {
	a := at(0, mgl64.Vec3{100, 100, -100}, mgl64.Vec3{})
	steer := a.AvoidWalls(100)

	assert.True(t, finite(steer))
	assert.InDelta(t, DefaultMaxForce, steer.Len(), eps)
}

func TestCoincidentNeighborsStayFinite(t *testing.T) {
	a := at(0, mgl64.Vec3{5, 5, 5}, mgl64.Vec3{0, 1, 0})
	b := at(1, mgl64.Vec3{5, 5, 5}, mgl64.Vec3{0, 1, 0})

	n := neighborsOf(a, b)
	require.Len(t, n, 1)
	assert.Zero(t, n[0].Dist)

	assert.Equal(t, mgl64.Vec3{}, a.Separation(n))
	steer := a.Steer(n, 180)
	assert.True(t, finite(steer))
}

func TestOpposingVelocitiesAverageToZero(t *testing.T) {
	a := at(0, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	b := at(1, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0})
	c := at(2, mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-1, 0, 0})

	// Mean velocity is zero-length: no direction to steer toward.
	assert.Equal(t, mgl64.Vec3{}, a.Alignment(neighborsOf(a, b, c)))
}

func TestForceBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	params := DefaultParams()

	for trial := range 200 {
		agents := make([]Agent, 12)
		for i := range agents {
			agents[i] = Random(uint32(i), rng, Spawn{Extent: 60, Speed: 10}, params)
		}
		self := &agents[0]
		n := Exhaustive{Agents: agents, Metric: Manhattan{}}.Within(self, params.QueryRadius(), nil)

		for name, v := range map[string]mgl64.Vec3{
			"alignment":  self.Alignment(n),
			"cohesion":   self.Cohesion(n),
			"separation": self.Separation(n),
			"avoidWalls": self.AvoidWalls(25),
		} {
			assert.LessOrEqual(t, v.Len(), params.MaxForce+eps, "trial %d %s", trial, name)
		}
	}
}

func TestApplyBehaviourMatchesSteer(t *testing.T) {
	agents := []Agent{
		at(0, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}),
		at(1, mgl64.Vec3{3, 4, 0}, mgl64.Vec3{0, 1, 0}),
		at(2, mgl64.Vec3{-8, 2, 1}, mgl64.Vec3{0, 0, -1}),
	}
	nb := Exhaustive{Agents: agents, Metric: Manhattan{}}

	a := agents[0]
	a.Acceleration = mgl64.Vec3{9, 9, 9} // stale value must not survive
	a.ApplyBehaviour(nb, 180)

	want := agents[0].Steer(nb.Within(&agents[0], agents[0].Params.QueryRadius(), nil), 180)
	assert.Equal(t, want, a.Acceleration)
}

func TestSteerHasNoSideEffects(t *testing.T) {
	a := at(0, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 0, 0})
	b := at(1, mgl64.Vec3{4, 2, 3}, mgl64.Vec3{0, 1, 0})
	before := a

	_ = a.Steer(neighborsOf(a, b), 10)
	assert.Equal(t, before, a)
}
