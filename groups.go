package skygroup

// FindGroups returns the groups of co-located points among (xs, ys): sets of
// two or more points joined by single linkage at distances <= sep under m.
// Each group lists indices into xs/ys in ascending order, and groups are
// ordered by their smallest member. Singletons are not returned.
//
// The full condensed distance matrix is built, so cost is O(n²) in time and
// memory; IdentifyAllGroups bounds n by batching.
func FindGroups(xs, ys []float64, sep float64, m Metric) [][]int {
	n := len(xs)
	if n < 2 {
		return nil
	}

	dendrogram := SingleLinkage(DistanceMatrix(xs, ys, m), n)
	uf := cutForest(dendrogram, n, sep)

	var groups [][]int
	byRoot := make(map[int]int)
	for i := 0; i < n; i++ {
		if uf.Size(i) < 2 {
			continue
		}
		root := uf.Find(i)
		k, ok := byRoot[root]
		if !ok {
			k = len(groups)
			byRoot[root] = k
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], i)
	}
	return groups
}
