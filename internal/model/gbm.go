// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import "fmt"

// GBM is a gradient-boosting regressor with squared-error loss: each
// tree fits the residual of the running prediction, shrunk by the
// learning rate.
type GBM struct {
	Params     Hyperparams
	Base       float64
	Trees      []*Tree
	Importance []float64
}

// NewGBM returns an untrained gradient-boosting regressor.
func NewGBM(hp Hyperparams) *GBM {
	return &GBM{Params: hp}
}

// Fit boosts sequentially from the target mean.
func (g *GBM) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("gbm fit: %d rows, %d targets", len(x), len(y))
	}

	n := len(x)
	nFeatures := len(x[0])

	var sum float64
	for _, v := range y {
		sum += v
	}
	g.Base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.Base
	}

	residual := make([]float64, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	g.Trees = make([]*Tree, 0, g.Params.NumTrees)
	g.Importance = make([]float64, nFeatures)

	for round := 0; round < g.Params.NumTrees; round++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}

		b := &treeBuilder{
			x:           x,
			y:           residual,
			maxDepth:    g.Params.MaxDepth,
			minSamples:  g.Params.MinSamples,
			featureFrac: 1,
			importances: make([]float64, nFeatures),
		}
		t := b.build(indices)
		g.Trees = append(g.Trees, t)
		for i, v := range b.importances {
			g.Importance[i] += v
		}

		for i, row := range x {
			pred[i] += g.Params.LearningRate * t.PredictRow(row)
		}
	}

	normalizeImportances(g.Importance)
	return nil
}

// Predict sums the shrunk tree outputs over the base prediction.
func (g *GBM) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for r, row := range x {
		v := g.Base
		for _, t := range g.Trees {
			v += g.Params.LearningRate * t.PredictRow(row)
		}
		out[r] = v
	}
	return out
}

// Importances returns the normalized gain-based importance scores.
func (g *GBM) Importances() []float64 {
	return g.Importance
}
