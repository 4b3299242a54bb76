// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a regression tree, stored in a flat slice.
// Leaves have Left == -1.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Samples   int
}

// Tree is a CART regression tree grown by recursive variance-reduction
// splitting. It is the shared building block of the forest and boosting
// variants.
type Tree struct {
	Nodes []TreeNode
}

// IsLeaf reports whether node i is a leaf.
func (t *Tree) IsLeaf(i int) bool {
	return t.Nodes[i].Left < 0
}

// PredictRow walks the tree for a single feature row.
func (t *Tree) PredictRow(row []float64) float64 {
	i := 0
	for !t.IsLeaf(i) {
		n := &t.Nodes[i]
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// treeBuilder grows a Tree over a sample subset. When featureFrac < 1 a
// random feature subset is drawn per split, which decorrelates forest
// members.
type treeBuilder struct {
	x           [][]float64
	y           []float64
	maxDepth    int
	minSamples  int
	featureFrac float64
	rng         *rand.Rand
	importances []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

func (b *treeBuilder) build(indices []int) *Tree {
	t := &Tree{}
	b.grow(t, indices, 0)
	return t
}

// grow appends the subtree for the given samples and returns its root
// node index.
func (b *treeBuilder) grow(t *Tree, indices []int, depth int) int {
	node := TreeNode{Left: -1, Right: -1, Value: meanAt(b.y, indices), Samples: len(indices)}
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)

	if depth >= b.maxDepth || len(indices) < b.minSamples {
		return idx
	}

	best := b.bestSplit(indices)
	if best == nil {
		return idx
	}

	b.importances[best.feature] += best.gain

	left := b.grow(t, best.left, depth+1)
	right := b.grow(t, best.right, depth+1)
	t.Nodes[idx].Feature = best.feature
	t.Nodes[idx].Threshold = best.threshold
	t.Nodes[idx].Left = left
	t.Nodes[idx].Right = right
	return idx
}

// bestSplit scans candidate features for the threshold maximizing
// weighted variance reduction. Returns nil if no split improves on the
// parent.
func (b *treeBuilder) bestSplit(indices []int) *split {
	nFeatures := len(b.x[0])
	features := b.candidateFeatures(nFeatures)

	parentSSE := sseAt(b.y, indices)
	var best *split

	order := make([]int, len(indices))
	for _, f := range features {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		// Prefix sums over the sorted order let each threshold be
		// evaluated in O(1).
		var sumLeft, sqLeft float64
		sumTotal, sqTotal := sumsAt(b.y, order)

		for i := 0; i < len(order)-1; i++ {
			v := b.y[order[i]]
			sumLeft += v
			sqLeft += v * v

			if b.x[order[i]][f] == b.x[order[i+1]][f] {
				continue
			}

			nl := float64(i + 1)
			nr := float64(len(order) - i - 1)
			sseLeft := sqLeft - sumLeft*sumLeft/nl
			sumRight := sumTotal - sumLeft
			sseRight := (sqTotal - sqLeft) - sumRight*sumRight/nr

			gain := parentSSE - sseLeft - sseRight
			if gain <= 1e-12 {
				continue
			}
			if best == nil || gain > best.gain {
				best = &split{
					feature:   f,
					threshold: (b.x[order[i]][f] + b.x[order[i+1]][f]) / 2,
					gain:      gain,
				}
			}
		}
	}

	if best == nil {
		return nil
	}
	for _, i := range indices {
		if b.x[i][best.feature] <= best.threshold {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	if len(best.left) == 0 || len(best.right) == 0 {
		return nil
	}
	return best
}

func (b *treeBuilder) candidateFeatures(nFeatures int) []int {
	if b.featureFrac >= 1 || b.rng == nil {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	k := int(b.featureFrac * float64(nFeatures))
	if k < 1 {
		k = 1
	}
	return b.rng.Perm(nFeatures)[:k]
}

func meanAt(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func sumsAt(y []float64, indices []int) (sum, sq float64) {
	for _, i := range indices {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sseAt(y []float64, indices []int) float64 {
	sum, sq := sumsAt(y, indices)
	n := float64(len(indices))
	if n == 0 {
		return 0
	}
	return sq - sum*sum/n
}

// normalizeImportances scales importance scores to sum to 1 in place.
// All-zero scores are left untouched.
func normalizeImportances(imp []float64) []float64 {
	var total float64
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}
