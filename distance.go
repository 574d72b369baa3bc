package skygroup

import (
	"fmt"
	"math"
)

// Degree/radian conversion factors.
const (
	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
)

// Metric measures the distance between two points given as (x, y) pairs.
// For spherical metrics x is the longitude (R.A.) and y the latitude (Dec.).
type Metric interface {
	Distance(x1, y1, x2, y2 float64) float64
}

// MetricFunc adapts a plain function into a Metric.
type MetricFunc func(x1, y1, x2, y2 float64) float64

func (f MetricFunc) Distance(x1, y1, x2, y2 float64) float64 { return f(x1, y1, x2, y2) }

// EuclideanMetric computes the planar distance sqrt(dx² + dy²).
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanMetric computes the planar L1 (city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(x1, y1, x2, y2 float64) float64 {
	return math.Abs(x2-x1) + math.Abs(y2-y1)
}

// HaversineMetric computes the great-circle distance on the unit sphere.
// Inputs and output are in radians.
type HaversineMetric struct{}

func (HaversineMetric) Distance(lon1, lat1, lon2, lat2 float64) float64 {
	return haversine(lon1, lat1, lon2, lat2)
}

// HaversineDegMetric is HaversineMetric with inputs and output in degrees.
type HaversineDegMetric struct{}

func (HaversineDegMetric) Distance(lon1, lat1, lon2, lat2 float64) float64 {
	return haversine(lon1*DegToRad, lat1*DegToRad, lon2*DegToRad, lat2*DegToRad) * RadToDeg
}

func hav(x float64) float64 {
	s := math.Sin(x / 2)
	return s * s
}

func haversine(lon1, lat1, lon2, lat2 float64) float64 {
	h := hav(lat2-lat1) + math.Cos(lat1)*math.Cos(lat2)*hav(lon2-lon1)
	// Rounding can push h just outside [0, 1] for coincident or antipodal points.
	h = min(max(h, 0), 1)
	return 2 * math.Asin(math.Sqrt(h))
}

// Distances applies m element-wise to equal-length coordinate slices and
// returns one distance per index. It panics if the slice lengths differ.
func Distances(m Metric, x1, y1, x2, y2 []float64) []float64 {
	n := len(x1)
	if len(y1) != n || len(x2) != n || len(y2) != n {
		panic(fmt.Sprintf("skygroup: Distances length mismatch (%d, %d, %d, %d)", len(x1), len(y1), len(x2), len(y2)))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.Distance(x1[i], y1[i], x2[i], y2[i])
	}
	return out
}

// MetricByName returns the built-in metric with the given name:
// "euclidean", "manhattan", "haversine" (radians) or "haversine_deg".
func MetricByName(name string) (Metric, error) {
	switch name {
	case "euclidean":
		return EuclideanMetric{}, nil
	case "manhattan":
		return ManhattanMetric{}, nil
	case "haversine":
		return HaversineMetric{}, nil
	case "haversine_deg":
		return HaversineDegMetric{}, nil
	default:
		return nil, fmt.Errorf("skygroup: unknown metric %q (want euclidean, manhattan, haversine or haversine_deg)", name)
	}
}
