// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/logging"
)

// sampleHyperparams draws one random configuration from the algorithm's
// search space.
func sampleHyperparams(algorithm string, rng *rand.Rand, seed int64) Hyperparams {
	hp := DefaultHyperparams(algorithm)
	hp.Seed = seed
	hp.NumTrees = 50 + rng.Intn(251)
	hp.LearningRate = 0.01 + rng.Float64()*0.29
	hp.MinSamples = 2 + rng.Intn(9)

	switch algorithm {
	case AlgorithmRandomForest:
		hp.MaxDepth = 3 + rng.Intn(13)
	case AlgorithmLightGBM:
		hp.MaxDepth = 3 + rng.Intn(8)
		hp.NumLeaves = 20 + rng.Intn(81)
	default:
		hp.MaxDepth = 3 + rng.Intn(8)
	}
	if algorithm == AlgorithmXGBoost {
		hp.Lambda = 0.1 + rng.Float64()*9.9
	}
	return hp
}

// TrainWithOptimization runs a seeded random search over the
// algorithm's hyperparameter space, minimizing mean validation RMSE
// across targets, then retrains the model with the best configuration
// found. Trials run in parallel, each fitting an independent throwaway
// regressor.
func (m *Model) TrainWithOptimization(ctx context.Context, xTrain *features.Frame, yTrain [][]float64, xVal *features.Frame, yVal [][]float64, trials int) error {
	if trials < 1 {
		trials = 1
	}
	if xVal == nil || len(xVal.Rows) == 0 {
		return fmt.Errorf("optimization requires a validation split")
	}

	// Draw all configurations up front so the search is reproducible
	// regardless of trial scheduling.
	rng := rand.New(rand.NewSource(m.Params.Seed)) //nolint:gosec // reproducible search
	configs := make([]Hyperparams, trials)
	for i := range configs {
		configs[i] = sampleHyperparams(m.Algorithm, rng, m.Params.Seed)
	}

	var (
		mu       sync.Mutex
		bestRMSE = -1.0
		bestIdx  = -1
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			reg, err := NewMultiRegressor(m.Algorithm, configs[i])
			if err != nil {
				return err
			}
			if err := reg.Fit(xTrain.Rows, yTrain); err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}

			rmse := EvaluateSplit(reg.Predict(xVal.Rows), yVal, TargetNames)["average"].RMSE

			mu.Lock()
			if bestIdx < 0 || rmse < bestRMSE {
				bestRMSE = rmse
				bestIdx = i
			}
			mu.Unlock()

			logging.Debug().
				Int("trial", i).
				Float64("val_rmse", rmse).
				Msg("hyperparameter trial complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("hyperparameter search: %w", err)
	}

	best := configs[bestIdx]
	logging.Info().
		Str("algorithm", m.Algorithm).
		Int("trials", trials).
		Int("num_trees", best.NumTrees).
		Int("max_depth", best.MaxDepth).
		Float64("learning_rate", best.LearningRate).
		Float64("best_val_rmse", bestRMSE).
		Msg("hyperparameter search complete")

	m.mu.Lock()
	m.Params = best
	m.mu.Unlock()
	return m.Train(xTrain, yTrain, xVal, yVal)
}
