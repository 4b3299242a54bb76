// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package main

import (
	"math/rand"
	"testing"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/model"
)

// trainedTestModel fits a small model on targets that are deterministic
// functions of the followers column, so every target view is learnable.
func trainedTestModel(t *testing.T) (*model.Model, *features.Frame, [][]float64) {
	t.Helper()

	rng := rand.New(rand.NewSource(3))
	cols := []string{"hour_of_day", "day_of_week", "followers"}
	x := features.NewFrame(cols, 80)
	y := make([][]float64, 80)
	for i := range y {
		followers := rng.Float64() * 100
		x.Rows[i] = []float64{float64(rng.Intn(24)), float64(rng.Intn(7)), followers}
		y[i] = []float64{followers * 2, followers, followers / 2}
	}

	hp := model.DefaultHyperparams(model.AlgorithmGradientBoosting)
	hp.NumTrees = 30
	hp.SubsampleCol = 1
	m, err := model.NewWithParams(model.AlgorithmGradientBoosting, hp)
	if err != nil {
		t.Fatalf("NewWithParams failed: %v", err)
	}
	if err := m.Train(x, y, x, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return m, x, y
}

func TestValidTarget(t *testing.T) {
	for _, target := range targetLabels {
		if !validTarget(target) {
			t.Errorf("validTarget(%q) = false", target)
		}
	}
	for _, target := range []string{"", "views", "Engagement"} {
		if validTarget(target) {
			t.Errorf("validTarget(%q) = true", target)
		}
	}
}

func TestSummaryMetricsSingleTarget(t *testing.T) {
	m, x, y := trainedTestModel(t)

	opts := trainOptions{target: "likes"}
	got, err := summaryMetrics(m, opts, x, y, x, y)
	if err != nil {
		t.Fatalf("summaryMetrics failed: %v", err)
	}

	want := m.Metrics["val"].Round2()["likes"]
	if got["val_rmse"] != want.RMSE {
		t.Errorf("val_rmse = %v, want likes row %v", got["val_rmse"], want.RMSE)
	}
	if got["val_r2"] != want.R2 {
		t.Errorf("val_r2 = %v, want likes row %v", got["val_r2"], want.R2)
	}
	if _, ok := got["train_rmse"]; !ok {
		t.Error("train split missing from summary")
	}
}

func TestSummaryMetricsComposite(t *testing.T) {
	m, x, y := trainedTestModel(t)

	opts := trainOptions{target: targetEngagement, weights: dataset.DefaultWeights()}
	got, err := summaryMetrics(m, opts, x, y, x, y)
	if err != nil {
		t.Fatalf("summaryMetrics failed: %v", err)
	}

	for _, key := range []string{"train_rmse", "train_mae", "train_r2", "val_rmse", "val_mae", "val_r2"} {
		if _, ok := got[key]; !ok {
			t.Errorf("summary missing %s", key)
		}
	}
	// The composite is a weighted sum of targets the model fits well,
	// so its R2 must be solidly positive on the training split.
	if got["train_r2"] < 0.5 {
		t.Errorf("train_r2 = %v, want >= 0.5", got["train_r2"])
	}
	if got["train_rmse"] < 0 {
		t.Errorf("train_rmse = %v, want >= 0", got["train_rmse"])
	}
}

func TestSummaryMetricsWeightsChangeComposite(t *testing.T) {
	m, x, y := trainedTestModel(t)

	balanced, err := summaryMetrics(m, trainOptions{target: targetEngagement, weights: dataset.DefaultWeights()}, x, y, x, y)
	if err != nil {
		t.Fatalf("summaryMetrics failed: %v", err)
	}
	likesOnly, err := summaryMetrics(m, trainOptions{
		target:  targetEngagement,
		weights: dataset.Weights{Likes: 1, Scale: 100},
	}, x, y, x, y)
	if err != nil {
		t.Fatalf("summaryMetrics failed: %v", err)
	}

	// The configured weighting feeds the composite, so different
	// weights must yield different error magnitudes.
	if balanced["train_rmse"] == likesOnly["train_rmse"] && balanced["train_mae"] == likesOnly["train_mae"] {
		t.Errorf("weights ignored: balanced %+v, likes-only %+v", balanced, likesOnly)
	}
}
