// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"fmt"
	"sort"
)

// XGB is a second-order gradient-boosting regressor. Leaf weights are
// the regularized Newton step -G/(H+lambda) over the leaf's gradient
// and hessian sums, and split gain is the corresponding score
// improvement.
type XGB struct {
	Params     Hyperparams
	Base       float64
	Trees      []*Tree
	Importance []float64
}

// NewXGB returns an untrained second-order boosting regressor.
func NewXGB(hp Hyperparams) *XGB {
	return &XGB{Params: hp}
}

// xgbBuilder grows one tree over gradient/hessian statistics.
type xgbBuilder struct {
	x           [][]float64
	grad, hess  []float64
	maxDepth    int
	minSamples  int
	lambda      float64
	importances []float64
}

func (b *xgbBuilder) build(indices []int) *Tree {
	t := &Tree{}
	b.grow(t, indices, 0)
	return t
}

func (b *xgbBuilder) grow(t *Tree, indices []int, depth int) int {
	var gSum, hSum float64
	for _, i := range indices {
		gSum += b.grad[i]
		hSum += b.hess[i]
	}

	node := TreeNode{Left: -1, Right: -1, Value: -gSum / (hSum + b.lambda), Samples: len(indices)}
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)

	if depth >= b.maxDepth || len(indices) < b.minSamples {
		return idx
	}

	feature, threshold, gain := b.bestSplit(indices, gSum, hSum)
	if gain <= 0 {
		return idx
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	b.importances[feature] += gain

	l := b.grow(t, left, depth+1)
	r := b.grow(t, right, depth+1)
	t.Nodes[idx].Feature = feature
	t.Nodes[idx].Threshold = threshold
	t.Nodes[idx].Left = l
	t.Nodes[idx].Right = r
	return idx
}

func (b *xgbBuilder) bestSplit(indices []int, gTotal, hTotal float64) (feature int, threshold, gain float64) {
	nFeatures := len(b.x[0])
	parentScore := gTotal * gTotal / (hTotal + b.lambda)
	best := 0.0
	feature = -1

	order := make([]int, len(indices))
	for f := 0; f < nFeatures; f++ {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		var gLeft, hLeft float64
		for i := 0; i < len(order)-1; i++ {
			gLeft += b.grad[order[i]]
			hLeft += b.hess[order[i]]

			if b.x[order[i]][f] == b.x[order[i+1]][f] {
				continue
			}

			gRight := gTotal - gLeft
			hRight := hTotal - hLeft
			score := gLeft*gLeft/(hLeft+b.lambda) + gRight*gRight/(hRight+b.lambda) - parentScore
			if score > best+1e-12 {
				best = score
				feature = f
				threshold = (b.x[order[i]][f] + b.x[order[i+1]][f]) / 2
			}
		}
	}
	gain = best / 2
	if feature < 0 {
		return -1, 0, 0
	}
	return feature, threshold, gain
}

// Fit boosts from the target mean with squared-error gradients.
func (x *XGB) Fit(xm [][]float64, y []float64) error {
	if len(xm) == 0 || len(xm) != len(y) {
		return fmt.Errorf("xgb fit: %d rows, %d targets", len(xm), len(y))
	}

	n := len(xm)
	nFeatures := len(xm[0])

	var sum float64
	for _, v := range y {
		sum += v
	}
	x.Base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = x.Base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	x.Trees = make([]*Tree, 0, x.Params.NumTrees)
	x.Importance = make([]float64, nFeatures)

	for round := 0; round < x.Params.NumTrees; round++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
			hess[i] = 1
		}

		b := &xgbBuilder{
			x:           xm,
			grad:        grad,
			hess:        hess,
			maxDepth:    x.Params.MaxDepth,
			minSamples:  x.Params.MinSamples,
			lambda:      x.Params.Lambda,
			importances: make([]float64, nFeatures),
		}
		t := b.build(indices)
		x.Trees = append(x.Trees, t)
		for i, v := range b.importances {
			x.Importance[i] += v
		}

		for i, row := range xm {
			pred[i] += x.Params.LearningRate * t.PredictRow(row)
		}
	}

	normalizeImportances(x.Importance)
	return nil
}

// Predict sums the shrunk tree outputs over the base prediction.
func (x *XGB) Predict(xm [][]float64) []float64 {
	out := make([]float64, len(xm))
	for r, row := range xm {
		v := x.Base
		for _, t := range x.Trees {
			v += x.Params.LearningRate * t.PredictRow(row)
		}
		out[r] = v
	}
	return out
}

// Importances returns the normalized gain-based importance scores.
func (x *XGB) Importances() []float64 {
	return x.Importance
}
