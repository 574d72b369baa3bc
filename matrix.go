package skygroup

import "fmt"

// CondensedLen returns the length of the condensed distance matrix for n points.
func CondensedLen(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// CondensedIndex returns the position of the pair (i, j), i != j, in a
// condensed distance matrix of n points.
func CondensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + (j - i - 1)
}

// DistanceMatrix returns the condensed pairwise distance matrix of the points
// (x[i], y[i]) under m: the upper triangle in row-major order, of length
// n(n-1)/2, as produced by scipy's pdist.
//
// The pairs are laid out as four flat slices (one block per row) and the
// metric is applied to them in a single pass.
func DistanceMatrix(x, y []float64, m Metric) []float64 {
	if len(x) != len(y) {
		panic(fmt.Sprintf("skygroup: DistanceMatrix length mismatch (x=%d, y=%d)", len(x), len(y)))
	}
	n := len(x)
	size := CondensedLen(n)

	x1 := make([]float64, size)
	y1 := make([]float64, size)
	x2 := make([]float64, size)
	y2 := make([]float64, size)

	ind := 0
	for i := 0; i < n-1; i++ {
		span := n - i - 1
		fill(x1[ind:ind+span], x[i])
		fill(y1[ind:ind+span], y[i])
		copy(x2[ind:ind+span], x[i+1:])
		copy(y2[ind:ind+span], y[i+1:])
		ind += span
	}

	return Distances(m, x1, y1, x2, y2)
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
