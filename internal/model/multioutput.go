// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import "fmt"

// MultiOutput lifts a single-target Regressor into the MultiRegressor
// contract by fitting one independent sub-model per target column over
// the shared feature matrix.
type MultiOutput struct {
	Subs []Regressor

	factory func() Regressor
}

// NewMultiOutput returns a decorator that builds one sub-regressor per
// target at fit time.
func NewMultiOutput(factory func() Regressor) *MultiOutput {
	return &MultiOutput{factory: factory}
}

// Fit trains one sub-model per target column.
func (m *MultiOutput) Fit(x [][]float64, y [][]float64) error {
	if len(y) == 0 || len(y) != len(x) {
		return fmt.Errorf("multi-output fit: %d rows, %d target rows", len(x), len(y))
	}

	nTargets := len(y[0])
	m.Subs = make([]Regressor, nTargets)

	col := make([]float64, len(y))
	for t := 0; t < nTargets; t++ {
		for i := range y {
			col[i] = y[i][t]
		}
		sub := m.factory()
		if err := sub.Fit(x, col); err != nil {
			return fmt.Errorf("fit target %d: %w", t, err)
		}
		m.Subs[t] = sub
	}
	return nil
}

// Predict returns one row per input with a value per target.
func (m *MultiOutput) Predict(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range out {
		out[i] = make([]float64, len(m.Subs))
	}
	for t, sub := range m.Subs {
		col := sub.Predict(x)
		for i, v := range col {
			out[i][t] = v
		}
	}
	return out
}

// Importances averages per-target importance scores and renormalizes.
func (m *MultiOutput) Importances() []float64 {
	if len(m.Subs) == 0 {
		return nil
	}
	base := m.Subs[0].Importances()
	out := make([]float64, len(base))
	for _, sub := range m.Subs {
		for i, v := range sub.Importances() {
			out[i] += v
		}
	}
	return normalizeImportances(out)
}

// NumTargets returns the target width frozen at fit time.
func (m *MultiOutput) NumTargets() int {
	return len(m.Subs)
}
