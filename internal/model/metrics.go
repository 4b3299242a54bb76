// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import "math"

// TargetMetrics holds the regression metrics for one target.
type TargetMetrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// SplitMetrics maps a target name (or "average") to its metrics for one
// evaluated data split.
type SplitMetrics map[string]TargetMetrics

// EvaluateSplit computes per-target MSE, RMSE, MAE, and R2 for
// predictions against truth, plus an "average" row across targets.
// Rows of predicted and actual are indexed identically; columns follow
// targetNames.
func EvaluateSplit(predicted, actual [][]float64, targetNames []string) SplitMetrics {
	out := make(SplitMetrics, len(targetNames)+1)
	if len(actual) == 0 {
		return out
	}

	var avg TargetMetrics
	for t, name := range targetNames {
		m := evaluateTarget(predicted, actual, t)
		out[name] = m
		avg.MSE += m.MSE
		avg.RMSE += m.RMSE
		avg.MAE += m.MAE
		avg.R2 += m.R2
	}

	n := float64(len(targetNames))
	avg.MSE /= n
	avg.RMSE /= n
	avg.MAE /= n
	avg.R2 /= n
	out["average"] = avg
	return out
}

func evaluateTarget(predicted, actual [][]float64, t int) TargetMetrics {
	n := float64(len(actual))

	var mean float64
	for i := range actual {
		mean += actual[i][t]
	}
	mean /= n

	var sse, sae, sst float64
	for i := range actual {
		d := predicted[i][t] - actual[i][t]
		sse += d * d
		sae += math.Abs(d)
		dm := actual[i][t] - mean
		sst += dm * dm
	}

	m := TargetMetrics{
		MSE:  sse / n,
		RMSE: math.Sqrt(sse / n),
		MAE:  sae / n,
	}
	if sst > 0 {
		m.R2 = 1 - sse/sst
	}
	return m
}

// Round2 rounds metrics to two decimals for reporting surfaces.
func (m SplitMetrics) Round2() SplitMetrics {
	out := make(SplitMetrics, len(m))
	for name, tm := range m {
		out[name] = TargetMetrics{
			MSE:  round2(tm.MSE),
			RMSE: round2(tm.RMSE),
			MAE:  round2(tm.MAE),
			R2:   round2(tm.R2),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
