// Package regress implements the tag-to-feature regression model: bagged
// regression trees, one independently trained ensemble per target
// attribute.
package regress

import (
	"math"
	"math/rand"
	"sort"
)

// node is a single node of a regression tree, stored in a flat slice so
// trees serialize to a compact JSON form.
//
// Leaf nodes have Left == -1 and carry the mean target value of their
// training samples in Value. Internal nodes route samples with
// x[Feature] <= Threshold to Left and the rest to Right.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int32   `json:"l"`
	Right     int32   `json:"r"`
	Value     float64 `json:"v"`
}

// tree is a CART regression tree grown by variance-reduction splitting.
type tree struct {
	Nodes []node `json:"nodes"`
}

// treeParams are the per-tree growing constraints.
type treeParams struct {
	maxDepth int
	minLeaf  int
	mTry     int // number of candidate features per split
}

// growTree builds a regression tree on the sample index set idx.
// The rng drives feature subsampling only; given the same rng state,
// samples, and parameters the resulting tree is identical.
func growTree(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) *tree {
	t := &tree{}
	t.grow(x, y, idx, 0, p, rng)
	return t
}

// grow appends the subtree for idx and returns its node index.
func (t *tree) grow(x [][]float64, y []float64, idx []int, depth int, p treeParams, rng *rand.Rand) int32 {
	self := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, node{Left: -1, Right: -1, Value: mean(y, idx)})

	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf {
		return self
	}

	feature, threshold, ok := bestSplit(x, y, idx, p, rng)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return self
	}

	t.Nodes[self].Feature = feature
	t.Nodes[self].Threshold = threshold
	t.Nodes[self].Left = t.grow(x, y, left, depth+1, p, rng)
	t.Nodes[self].Right = t.grow(x, y, right, depth+1, p, rng)
	return self
}

// bestSplit searches a random subset of mTry features for the split that
// minimizes the summed squared error of the two children. Candidate
// thresholds are midpoints between consecutive distinct feature values.
func bestSplit(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(x[idx[0]])
	candidates := sampleFeatures(nFeatures, p.mTry, rng)

	bestSSE := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, len(idx))
	for _, f := range candidates {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		// Prefix sums over the sorted order let every split position be
		// scored in constant time.
		var sumL, sqL, sumR, sqR float64
		for _, i := range order {
			sumR += y[i]
			sqR += y[i] * y[i]
		}

		n := len(order)
		for pos := 1; pos < n; pos++ {
			yi := y[order[pos-1]]
			sumL += yi
			sqL += yi * yi
			sumR -= yi
			sqR -= yi * yi

			// Cannot split between equal feature values.
			lo := x[order[pos-1]][f]
			hi := x[order[pos]][f]
			if lo == hi {
				continue
			}
			if pos < p.minLeaf || n-pos < p.minLeaf {
				continue
			}

			nl, nr := float64(pos), float64(n-pos)
			sse := (sqL - sumL*sumL/nl) + (sqR - sumR*sumR/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// sampleFeatures picks mTry distinct feature indices via partial
// Fisher-Yates. The returned order is rng-determined, so repeated runs
// with the same seed examine features in the same sequence.
func sampleFeatures(nFeatures, mTry int, rng *rand.Rand) []int {
	if mTry >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}

	perm := make([]int, nFeatures)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < mTry; i++ {
		j := i + rng.Intn(nFeatures-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:mTry]
}

// predict routes a feature vector to a leaf and returns its value.
func (t *tree) predict(x []float64) float64 {
	i := int32(0)
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}
