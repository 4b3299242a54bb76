// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package serving

import (
	"math"
	"testing"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/model"
)

func f64(v float64) *float64 { return &v }

// A baseline input that triggers none of the quality penalties, paired
// with a prediction that triggers none of the stability penalties.
func cleanInput() (confidenceInput, model.Prediction) {
	in := confidenceInput{
		textLength:     100,
		followersCount: 5000,
		followingCount: 500,
		accountAge:     365,
		hashtagCount:   3,
	}
	pred := model.Prediction{Likes: 120, Shares: 80, Comments: 40}
	return in, pred
}

func TestComputeConfidenceBase(t *testing.T) {
	in, pred := cleanInput()

	tests := []struct {
		name  string
		valR2 *float64
		want  float64
	}{
		{"no validation metrics", nil, 0.7},
		{"high r2 clipped to 0.9", f64(0.97), 0.9},
		{"negative r2 clipped to floor", f64(-0.4), 0.5},
		{"mid r2 passes through", f64(0.82), 0.82},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeConfidence(tt.valR2, DefaultConfidence, in, &pred)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeConfidence() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestComputeConfidenceQualityPenalties(t *testing.T) {
	base := f64(0.8)

	tests := []struct {
		name   string
		mutate func(*confidenceInput)
		want   float64
	}{
		{"short text", func(in *confidenceInput) { in.textLength = 5 }, 0.8 * 0.9},
		{"long text", func(in *confidenceInput) { in.textLength = 600 }, 0.8 * 0.95},
		{"extreme follower ratio", func(in *confidenceInput) { in.followersCount = 100000; in.followingCount = 10 }, 0.8 * 0.9},
		{"inverse extreme ratio", func(in *confidenceInput) { in.followersCount = 1; in.followingCount = 500 }, 0.8 * 0.9},
		{"zero followers ignored", func(in *confidenceInput) { in.followersCount = 0 }, 0.8},
		{"zero following ignored", func(in *confidenceInput) { in.followingCount = 0 }, 0.8},
		{"young account", func(in *confidenceInput) { in.accountAge = 10 }, 0.8 * 0.9},
		{"hashtag spam", func(in *confidenceInput) { in.hashtagCount = 15 }, 0.8 * 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, pred := cleanInput()
			tt.mutate(&in)
			got := computeConfidence(base, DefaultConfidence, in, &pred)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeConfidence() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestComputeConfidenceStabilityPenalties(t *testing.T) {
	base := f64(0.8)
	in, _ := cleanInput()

	tests := []struct {
		name string
		pred model.Prediction
		want float64
	}{
		{"very high mean", model.Prediction{Likes: 2000, Shares: 1500, Comments: 1000}, 0.8 * 0.9},
		{"very low mean", model.Prediction{Likes: 4, Shares: 3, Comments: 2}, 0.8 * 0.9},
		{"high variance", model.Prediction{Likes: 300, Shares: 1, Comments: 1}, 0.8 * 0.9},
		{"zero prediction skips cv, low mean applies", model.Prediction{}, 0.8 * 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeConfidence(base, DefaultConfidence, in, &tt.pred)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeConfidence() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestComputeConfidenceBounds(t *testing.T) {
	// Stack every penalty; the result must not fall below the floor.
	in := confidenceInput{
		textLength:     2,
		followersCount: 100000,
		followingCount: 10,
		accountAge:     1,
		hashtagCount:   20,
	}
	pred := model.Prediction{Likes: 1, Shares: 0, Comments: 0}
	got := computeConfidence(f64(0.5), DefaultConfidence, in, &pred)
	if got != ConfidenceFloor {
		t.Errorf("stacked penalties: confidence = %g, want floor %g", got, ConfidenceFloor)
	}

	// No penalties with perfect metrics stays below the ceiling.
	in2, pred2 := cleanInput()
	got = computeConfidence(f64(1.0), DefaultConfidence, in2, &pred2)
	if got > ConfidenceCeiling {
		t.Errorf("confidence = %g exceeds ceiling %g", got, ConfidenceCeiling)
	}
}

func TestConfidenceInputFromRecord(t *testing.T) {
	rec := dataset.PostRecord{
		PostText:       "launch day",
		Hashtags:       "tech,ai,startup",
		FollowersCount: 900,
		FollowingCount: 300,
		AccountAge:     120,
	}
	in := confidenceInputFromRecord(&rec)
	if in.textLength != len("launch day") {
		t.Errorf("textLength = %d", in.textLength)
	}
	if in.hashtagCount != 3 {
		t.Errorf("hashtagCount = %d, want 3", in.hashtagCount)
	}

	rec.Hashtags = ""
	if got := confidenceInputFromRecord(&rec).hashtagCount; got != 0 {
		t.Errorf("empty hashtags: hashtagCount = %d, want 0", got)
	}
}
