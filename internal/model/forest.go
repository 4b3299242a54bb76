// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
)

// Forest is a random-forest regressor: bootstrap-sampled CART trees
// with per-split feature subsampling, averaged at prediction time.
type Forest struct {
	Params      Hyperparams
	Trees       []*Tree
	Importance  []float64
	NumFeatures int
}

// NewForest returns an untrained forest.
func NewForest(hp Hyperparams) *Forest {
	return &Forest{Params: hp}
}

// Fit grows the configured number of trees. Trees are independent, so
// they are grown in parallel chunks across the available cores, each
// chunk with its own deterministically derived RNG.
func (f *Forest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("forest fit: %d rows, %d targets", len(x), len(y))
	}

	n := len(x)
	nFeatures := len(x[0])
	f.NumFeatures = nFeatures
	f.Trees = make([]*Tree, f.Params.NumTrees)

	importanceSets := make([][]float64, f.Params.NumTrees)

	workers := runtime.GOMAXPROCS(0)
	if workers > f.Params.NumTrees {
		workers = f.Params.NumTrees
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for ti := worker; ti < f.Params.NumTrees; ti += workers {
				rng := rand.New(rand.NewSource(f.Params.Seed + int64(ti))) //nolint:gosec // deterministic tree growth

				indices := make([]int, n)
				for i := range indices {
					indices[i] = rng.Intn(n)
				}

				b := &treeBuilder{
					x:           x,
					y:           y,
					maxDepth:    f.Params.MaxDepth,
					minSamples:  f.Params.MinSamples,
					featureFrac: f.Params.SubsampleCol,
					rng:         rng,
					importances: make([]float64, nFeatures),
				}
				f.Trees[ti] = b.build(indices)
				importanceSets[ti] = b.importances
			}
		}(w)
	}
	wg.Wait()

	f.Importance = make([]float64, nFeatures)
	for _, set := range importanceSets {
		for i, v := range set {
			f.Importance[i] += v
		}
	}
	normalizeImportances(f.Importance)
	return nil
}

// Predict averages tree outputs per row.
func (f *Forest) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if len(f.Trees) == 0 {
		return out
	}
	for r, row := range x {
		var sum float64
		for _, t := range f.Trees {
			sum += t.PredictRow(row)
		}
		out[r] = sum / float64(len(f.Trees))
	}
	return out
}

// Importances returns the normalized gain-based importance scores.
func (f *Forest) Importances() []float64 {
	return f.Importance
}
