package skygroup

import "math"

// PrimMST computes a minimum spanning tree of n points with Prim's algorithm
// over a condensed distance matrix. Returns (n-1) edges as [from, to, weight].
// It runs in O(n²) time and O(n) extra memory.
func PrimMST(condensed []float64, n int) [][3]float64 {
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	currentDistances := make([]float64, n)
	for j := range currentDistances {
		currentDistances[j] = math.Inf(1)
	}

	inTree[0] = true
	currentNode := 0
	edges := make([][3]float64, 0, n-1)

	for i := 0; i < n-1; i++ {
		// Relax against the node added last, then pick the nearest outsider.
		minDist := math.Inf(1)
		minNode := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := condensed[CondensedIndex(n, currentNode, j)]; d < currentDistances[j] {
				currentDistances[j] = d
			}
			if minNode == -1 || currentDistances[j] < minDist {
				minDist = currentDistances[j]
				minNode = j
			}
		}

		edges = append(edges, [3]float64{
			float64(currentNode),
			float64(minNode),
			minDist,
		})

		inTree[minNode] = true
		currentNode = minNode
	}

	return edges
}
