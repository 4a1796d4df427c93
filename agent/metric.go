package agent

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnknownMetric is returned by ParseMetric for unrecognized names.
var ErrUnknownMetric = errors.New("unknown distance metric")

// DistanceMetric measures the distance used for every neighbor radius test.
type DistanceMetric interface {
	Distance(a, b mgl64.Vec3) float64
	Name() string
}

// Manhattan is the L1 metric. Radii under it describe octahedra, not spheres.
type Manhattan struct{}

// Distance returns |dx| + |dy| + |dz|.
func (Manhattan) Distance(a, b mgl64.Vec3) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1]) + math.Abs(a[2]-b[2])
}

// Name returns "manhattan".
func (Manhattan) Name() string { return "manhattan" }

// Euclidean is the L2 metric.
type Euclidean struct{}

// Distance returns the straight-line distance.
func (Euclidean) Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Name returns "euclidean".
func (Euclidean) Name() string { return "euclidean" }

// ParseMetric maps a config name to a DistanceMetric.
func ParseMetric(name string) (DistanceMetric, error) {
	switch name {
	case "manhattan", "l1":
		return Manhattan{}, nil
	case "euclidean", "l2":
		return Euclidean{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}
