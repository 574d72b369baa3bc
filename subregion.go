package skygroup

import "fmt"

// Bounds is an axis-aligned rectangle. A point is inside when it lies
// strictly between the minimum and maximum on both axes.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Contains reports whether (x, y) lies strictly inside b.
func (b Bounds) Contains(x, y float64) bool {
	return x > b.XMin && x < b.XMax && y > b.YMin && y < b.YMax
}

// Pad returns b grown by fx of its width on the left and right and fy of its
// height on the top and bottom.
func (b Bounds) Pad(fx, fy float64) Bounds {
	wx := b.XMax - b.XMin
	wy := b.YMax - b.YMin
	return Bounds{
		XMin: b.XMin - fx*wx,
		XMax: b.XMax + fx*wx,
		YMin: b.YMin - fy*wy,
		YMax: b.YMax + fy*wy,
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%g:%g, %g:%g)", b.XMin, b.XMax, b.YMin, b.YMax)
}

// Subregion returns the points of (x, y) inside b, in their original order,
// together with each returned point's index in the input. The returned
// slices are empty, not nil, when no point is inside.
func Subregion(x, y []float64, b Bounds) (xs, ys []float64, indices []int) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("skygroup: Subregion length mismatch (x=%d, y=%d)", len(x), len(y)))
	}
	xs = []float64{}
	ys = []float64{}
	indices = []int{}
	for i := range x {
		if b.Contains(x[i], y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
			indices = append(indices, i)
		}
	}
	return xs, ys, indices
}
