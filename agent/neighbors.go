package agent

import "github.com/go-gl/mathgl/mgl64"

// Neighbor holds a nearby agent's state with the precomputed distance from
// the querying agent.
type Neighbor struct {
	ID       uint32
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Dist     float64
}

// Neighborhood answers radius queries against a fixed view of the population.
// Implementations must exclude self (by ID) and only report agents whose
// distance is strictly below radius.
type Neighborhood interface {
	Within(self *Agent, radius float64, dst []Neighbor) []Neighbor
}

// Exhaustive scans every agent of a snapshot. It is the default
// neighbor query: O(n) per agent, O(n²) per frame.
type Exhaustive struct {
	Agents []Agent
	Metric DistanceMetric
}

// Within appends every other agent closer than radius to dst.
// Reuse dst across calls to avoid allocations.
func (x Exhaustive) Within(self *Agent, radius float64, dst []Neighbor) []Neighbor {
	metric := x.Metric
	if metric == nil {
		metric = Manhattan{}
	}
	for i := range x.Agents {
		other := &x.Agents[i]
		if other.ID == self.ID {
			continue
		}
		d := metric.Distance(self.Position, other.Position)
		if d < radius {
			dst = append(dst, Neighbor{
				ID:       other.ID,
				Position: other.Position,
				Velocity: other.Velocity,
				Dist:     d,
			})
		}
	}
	return dst
}
