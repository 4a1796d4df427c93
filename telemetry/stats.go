package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/agent"
)

// wallThreshold matches the fraction of the boundary where wall avoidance starts.
const wallThreshold = 0.9

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick int64  `csv:"-"`
	WindowEndTick   int64  `csv:"window_end"`
	Frames          int64  `csv:"frames"`

	Population int `csv:"population"`
	Repairs    int `csv:"repairs"` // non-finite states repaired during the window

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Shape of the flock
	Polarization  float64 `csv:"polarization"`
	CentroidX     float64 `csv:"centroid_x"`
	CentroidY     float64 `csv:"centroid_y"`
	CentroidZ     float64 `csv:"centroid_z"`
	Spread        float64 `csv:"spread"`
	MeanNeighbors float64 `csv:"mean_neighbors"`

	// Boundary pressure
	NearWall int `csv:"near_wall"`
	PastWall int `csv:"past_wall"`
}

// LogStats logs the window using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"polarization", s.Polarization,
		"spread", s.Spread,
		"mean_neighbors", s.MeanNeighbors,
		"near_wall", s.NearWall,
		"past_wall", s.PastWall,
		"repairs", s.Repairs,
	)
}

// FlockStats describes the population at one instant.
type FlockStats struct {
	Population int

	SpeedMean, SpeedStd          float64
	SpeedP10, SpeedP50, SpeedP90 float64

	// Polarization is |sum of unit headings| / n: 1 when every agent flies
	// the same way, near 0 for random headings.
	Polarization float64
	Centroid     mgl64.Vec3
	// Spread is the mean Euclidean distance from the centroid.
	Spread float64
	// MeanNeighbors counts agents within the alignment radius under the
	// flock's metric.
	MeanNeighbors float64

	NearWall int // agents with any coordinate past the avoidance threshold
	PastWall int // agents with any coordinate past the boundary
}

// ComputeSpeedStats calculates mean, std, and percentiles from speed values.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// ComputeFlockStats summarizes birds. Neighbor counts are exhaustive, so this
// is meant for once-per-window sampling, not every frame.
func ComputeFlockStats(birds []agent.Agent, boundary float64, metric agent.DistanceMetric, alignRadius float64) FlockStats {
	n := len(birds)
	if n == 0 {
		return FlockStats{}
	}

	speeds := make([]float64, n)
	var headingSum, posSum mgl64.Vec3
	var nearWall, pastWall int
	for i := range birds {
		b := &birds[i]
		speeds[i] = b.Speed()
		headingSum = headingSum.Add(b.Heading())
		posSum = posSum.Add(b.Position)

		near, past := wallPressure(b.Position, boundary)
		if near {
			nearWall++
		}
		if past {
			pastWall++
		}
	}

	inv := 1 / float64(n)
	centroid := posSum.Mul(inv)

	var spread float64
	for i := range birds {
		spread += birds[i].Position.Sub(centroid).Len()
	}

	nb := agent.Exhaustive{Agents: birds, Metric: metric}
	var neighbors int
	buf := make([]agent.Neighbor, 0, 32)
	for i := range birds {
		buf = nb.Within(&birds[i], alignRadius, buf[:0])
		neighbors += len(buf)
	}

	fs := FlockStats{
		Population:    n,
		Polarization:  headingSum.Len() * inv,
		Centroid:      centroid,
		Spread:        spread * inv,
		MeanNeighbors: float64(neighbors) * inv,
		NearWall:      nearWall,
		PastWall:      pastWall,
	}
	fs.SpeedMean, fs.SpeedStd, fs.SpeedP10, fs.SpeedP50, fs.SpeedP90 = ComputeSpeedStats(speeds)
	return fs
}

func wallPressure(p mgl64.Vec3, boundary float64) (near, past bool) {
	for axis := range 3 {
		c := math.Abs(p[axis])
		if c > wallThreshold*boundary {
			near = true
		}
		if c > boundary {
			past = true
		}
	}
	return near, past
}
