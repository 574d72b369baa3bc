package skygroup

// UnionFind is a disjoint-set forest with path compression and union by
// size. It holds 2*n - 1 slots: slots 0..n-1 are points and slots n..2n-2
// are the merged clusters of a single-linkage dendrogram, so a dendrogram
// row can be replayed directly against it.
type UnionFind struct {
	parent []int
	size   []int
	// nextLabel is the ID for the next merged cluster, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n points.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{
		parent:    parent,
		size:      size,
		nextLabel: n,
	}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Union merges the sets containing x and y, attaching the smaller tree
// under the larger, and returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}
	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	return rootX
}

// Size returns the number of points in the set containing x.
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// merge joins two dendrogram roots under the next cluster label and returns
// that label. Both arguments must already be roots.
func (uf *UnionFind) merge(a, b int) int {
	label := uf.nextLabel
	uf.size[label] = uf.size[a] + uf.size[b]
	uf.parent[a] = label
	uf.parent[b] = label
	uf.nextLabel++
	return label
}
