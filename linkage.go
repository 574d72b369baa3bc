package skygroup

// SingleLinkage builds the single-linkage dendrogram of n points from their
// condensed distance matrix. The result matches scipy's linkage with
// method="single" up to the order of equal-distance merges.
func SingleLinkage(condensed []float64, n int) [][4]float64 {
	return Label(PrimMST(condensed, n), n)
}

// CutTree flattens a dendrogram of n points into clusters: two points share
// a cluster when the dendrogram joins them at a distance <= t (scipy's
// fcluster with criterion="distance"). Labels are dense from 0, numbered
// in order of each cluster's smallest point index.
func CutTree(dendrogram [][4]float64, n int, t float64) []int {
	if n <= 0 {
		return []int{}
	}

	uf := cutForest(dendrogram, n, t)
	labels := make([]int, n)
	byRoot := make(map[int]int)
	for i := range labels {
		root := uf.Find(i)
		label, ok := byRoot[root]
		if !ok {
			label = len(byRoot)
			byRoot[root] = label
		}
		labels[i] = label
	}
	return labels
}

// cutForest replays the dendrogram rows at distance <= t into a UnionFind.
func cutForest(dendrogram [][4]float64, n int, t float64) *UnionFind {
	uf := NewUnionFind(n)
	for k, row := range dendrogram {
		if row[2] > t {
			continue
		}
		root := uf.Union(int(row[0]), int(row[1]))
		// Row k creates cluster n+k; later rows refer to it by that ID.
		uf.Union(root, n+k)
	}
	return uf
}
