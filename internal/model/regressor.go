// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package model implements tree-ensemble regression for engagement
// prediction.
//
// Four algorithm variants share a uniform contract: random forest,
// gradient boosting, and two second-order boosting variants in the
// style of xgboost and lightgbm. All are multi-target; variants with
// single-target cores are lifted through a per-target decorator.
//
// # Thread Safety
//
// A fitted regressor is read-only; concurrent prediction needs no
// locking. The owning Model guards its train/predict state transitions
// with a shared lock.
package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the model lifecycle.
var (
	// ErrNotTrained is returned when prediction, importance, or
	// persistence is requested before a successful train.
	ErrNotTrained = errors.New("model not trained")

	// ErrUnsupportedAlgorithm is returned for an unknown algorithm
	// selector at construction time.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrArtifactNotFound is returned when a load references a missing
	// model or metadata artifact.
	ErrArtifactNotFound = errors.New("model artifact not found")
)

// Algorithm selectors.
const (
	AlgorithmRandomForest     = "random_forest"
	AlgorithmGradientBoosting = "gradient_boosting"
	AlgorithmXGBoost          = "xgboost"
	AlgorithmLightGBM         = "lightgbm"
)

// Algorithms lists the supported selectors.
var Algorithms = []string{
	AlgorithmRandomForest,
	AlgorithmGradientBoosting,
	AlgorithmXGBoost,
	AlgorithmLightGBM,
}

// Hyperparams holds the tunable knobs shared across algorithms. Knobs an
// algorithm does not use are ignored by it.
type Hyperparams struct {
	NumTrees     int
	MaxDepth     int
	LearningRate float64
	MinSamples   int     // minimum samples to split a node
	SubsampleCol float64 // fraction of features considered per split (forest)
	Lambda       float64 // L2 regularization on leaf weights (xgboost)
	NumLeaves    int     // leaf budget per tree (lightgbm)
	Seed         int64
}

// DefaultHyperparams returns the starting configuration for an
// algorithm before any search.
func DefaultHyperparams(algorithm string) Hyperparams {
	hp := Hyperparams{
		NumTrees:     100,
		MaxDepth:     6,
		LearningRate: 0.1,
		MinSamples:   2,
		SubsampleCol: 1.0 / 3.0,
		Lambda:       1.0,
		NumLeaves:    31,
		Seed:         42,
	}
	if algorithm == AlgorithmRandomForest {
		hp.MaxDepth = 10
	}
	return hp
}

// MultiRegressor is the uniform capability contract every algorithm
// variant satisfies: fit once, predict many, expose per-feature
// importance.
type MultiRegressor interface {
	// Fit trains on a feature matrix and per-row target vectors. Every
	// row of y has the same width, the target count.
	Fit(x [][]float64, y [][]float64) error

	// Predict returns one target vector per input row.
	Predict(x [][]float64) [][]float64

	// Importances returns the per-feature importance scores, indexed by
	// feature column, normalized to sum to 1 when any split occurred.
	Importances() []float64

	// NumTargets returns the target width frozen at fit time.
	NumTargets() int
}

// Regressor is the single-target core lifted by MultiOutput.
type Regressor interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) []float64
	Importances() []float64
}

// NewMultiRegressor constructs the regressor for an algorithm selector.
func NewMultiRegressor(algorithm string, hp Hyperparams) (MultiRegressor, error) {
	switch algorithm {
	case AlgorithmRandomForest:
		return NewMultiOutput(func() Regressor { return NewForest(hp) }), nil
	case AlgorithmGradientBoosting:
		return NewMultiOutput(func() Regressor { return NewGBM(hp) }), nil
	case AlgorithmXGBoost:
		return NewMultiOutput(func() Regressor { return NewXGB(hp) }), nil
	case AlgorithmLightGBM:
		return NewMultiOutput(func() Regressor { return NewLGBM(hp) }), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}
