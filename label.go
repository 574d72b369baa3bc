package skygroup

import (
	"cmp"
	"slices"
)

// Label converts MST edges into a single-linkage dendrogram in scipy
// linkage format. mstEdges is [][3]float64 where each edge is [from, to, weight].
// Returns [][4]float64 rows: [left, right, distance, mergedSize].
// Merged cluster IDs start at n and increment with each row.
func Label(mstEdges [][3]float64, n int) [][4]float64 {
	if len(mstEdges) == 0 {
		return nil
	}

	// Stable, so equal-weight merges keep Prim's discovery order.
	sorted := slices.Clone(mstEdges)
	slices.SortStableFunc(sorted, func(a, b [3]float64) int {
		return cmp.Compare(a[2], b[2])
	})

	uf := NewUnionFind(n)
	result := make([][4]float64, 0, len(sorted))

	for _, edge := range sorted {
		aa := uf.Find(int(edge[0]))
		bb := uf.Find(int(edge[1]))
		merged := uf.merge(aa, bb)
		result = append(result, [4]float64{float64(aa), float64(bb), edge[2], float64(uf.size[merged])})
	}

	return result
}
