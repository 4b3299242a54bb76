// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import "fmt"

// LGBM is a histogram-based boosting regressor with leaf-wise tree
// growth: features are bucketed into fixed-width bins at fit time, and
// each boosting round repeatedly splits the leaf with the highest gain
// until the leaf budget is exhausted.
type LGBM struct {
	Params     Hyperparams
	Base       float64
	Trees      []*Tree
	Importance []float64
	BinEdges   [][]float64
}

const lgbmNumBins = 64

// NewLGBM returns an untrained histogram-boosting regressor.
func NewLGBM(hp Hyperparams) *LGBM {
	return &LGBM{Params: hp}
}

// computeBins derives uniform bin edges per feature from the training
// range. Constant features get a single degenerate bin.
func computeBins(x [][]float64) [][]float64 {
	nFeatures := len(x[0])
	edges := make([][]float64, nFeatures)
	for f := 0; f < nFeatures; f++ {
		lo, hi := x[0][f], x[0][f]
		for _, row := range x {
			if row[f] < lo {
				lo = row[f]
			}
			if row[f] > hi {
				hi = row[f]
			}
		}
		if hi == lo {
			edges[f] = []float64{lo}
			continue
		}
		e := make([]float64, lgbmNumBins-1)
		step := (hi - lo) / lgbmNumBins
		for b := range e {
			e[b] = lo + step*float64(b+1)
		}
		edges[f] = e
	}
	return edges
}

func binIndex(edges []float64, v float64) int {
	// Linear scan; bin counts are small and fixed.
	for b, e := range edges {
		if v <= e {
			return b
		}
	}
	return len(edges)
}

// lgbmLeaf is a growable leaf candidate during leaf-wise construction.
type lgbmLeaf struct {
	node    int
	indices []int
	gSum    float64
	hSum    float64

	// cached best split
	feature   int
	threshold float64
	gain      float64
}

type lgbmBuilder struct {
	x           [][]float64
	bins        [][]int // row-major bin indices
	edges       [][]float64
	grad, hess  []float64
	lambda      float64
	minSamples  int
	numLeaves   int
	importances []float64
}

func (b *lgbmBuilder) build(indices []int) *Tree {
	t := &Tree{}

	root := b.newLeaf(t, indices)
	leaves := []*lgbmLeaf{root}

	for len(leaves) < b.numLeaves {
		// Pick the open leaf with the best cached gain.
		bestIdx := -1
		for i, lf := range leaves {
			if lf.gain > 0 && (bestIdx < 0 || lf.gain > leaves[bestIdx].gain) {
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		lf := leaves[bestIdx]
		var left, right []int
		for _, i := range lf.indices {
			if b.x[i][lf.feature] <= lf.threshold {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			lf.gain = 0
			continue
		}

		b.importances[lf.feature] += lf.gain

		leftLeaf := b.newLeaf(t, left)
		rightLeaf := b.newLeaf(t, right)
		t.Nodes[lf.node].Feature = lf.feature
		t.Nodes[lf.node].Threshold = lf.threshold
		t.Nodes[lf.node].Left = leftLeaf.node
		t.Nodes[lf.node].Right = rightLeaf.node

		leaves[bestIdx] = leftLeaf
		leaves = append(leaves, rightLeaf)
	}
	return t
}

func (b *lgbmBuilder) newLeaf(t *Tree, indices []int) *lgbmLeaf {
	var gSum, hSum float64
	for _, i := range indices {
		gSum += b.grad[i]
		hSum += b.hess[i]
	}

	node := TreeNode{Left: -1, Right: -1, Value: -gSum / (hSum + b.lambda), Samples: len(indices)}
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)

	lf := &lgbmLeaf{node: idx, indices: indices, gSum: gSum, hSum: hSum}
	if len(indices) >= b.minSamples {
		b.findBestSplit(lf)
	}
	return lf
}

// findBestSplit builds per-feature gradient histograms for the leaf and
// scans bin boundaries for the best second-order gain.
func (b *lgbmBuilder) findBestSplit(lf *lgbmLeaf) {
	nFeatures := len(b.x[0])
	parentScore := lf.gSum * lf.gSum / (lf.hSum + b.lambda)

	for f := 0; f < nFeatures; f++ {
		edges := b.edges[f]
		if len(edges) < 2 {
			// Constant feature, single degenerate bin.
			continue
		}

		nBins := len(edges) + 1
		gHist := make([]float64, nBins)
		hHist := make([]float64, nBins)
		for _, i := range lf.indices {
			bin := b.bins[i][f]
			gHist[bin] += b.grad[i]
			hHist[bin] += b.hess[i]
		}

		var gLeft, hLeft float64
		for bin := 0; bin < nBins-1; bin++ {
			gLeft += gHist[bin]
			hLeft += hHist[bin]
			if hLeft == 0 {
				continue
			}
			gRight := lf.gSum - gLeft
			hRight := lf.hSum - hLeft
			if hRight == 0 {
				break
			}

			score := gLeft*gLeft/(hLeft+b.lambda) + gRight*gRight/(hRight+b.lambda) - parentScore
			if score/2 > lf.gain+1e-12 {
				lf.gain = score / 2
				lf.feature = f
				lf.threshold = edges[bin]
			}
		}
	}
}

// Fit boosts from the target mean over binned features.
func (l *LGBM) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("lgbm fit: %d rows, %d targets", len(x), len(y))
	}

	n := len(x)
	nFeatures := len(x[0])
	l.BinEdges = computeBins(x)

	bins := make([][]int, n)
	for i, row := range x {
		bins[i] = make([]int, nFeatures)
		for f, v := range row {
			bins[i][f] = binIndex(l.BinEdges[f], v)
		}
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	l.Base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = l.Base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	l.Trees = make([]*Tree, 0, l.Params.NumTrees)
	l.Importance = make([]float64, nFeatures)

	for round := 0; round < l.Params.NumTrees; round++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
			hess[i] = 1
		}

		b := &lgbmBuilder{
			x:           x,
			bins:        bins,
			edges:       l.BinEdges,
			grad:        grad,
			hess:        hess,
			lambda:      l.Params.Lambda,
			minSamples:  l.Params.MinSamples,
			numLeaves:   l.Params.NumLeaves,
			importances: make([]float64, nFeatures),
		}
		t := b.build(indices)
		l.Trees = append(l.Trees, t)
		for i, v := range b.importances {
			l.Importance[i] += v
		}

		for i, row := range x {
			pred[i] += l.Params.LearningRate * t.PredictRow(row)
		}
	}

	normalizeImportances(l.Importance)
	return nil
}

// Predict sums the shrunk tree outputs over the base prediction.
func (l *LGBM) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for r, row := range x {
		v := l.Base
		for _, t := range l.Trees {
			v += l.Params.LearningRate * t.PredictRow(row)
		}
		out[r] = v
	}
	return out
}

// Importances returns the normalized gain-based importance scores.
func (l *LGBM) Importances() []float64 {
	return l.Importance
}
