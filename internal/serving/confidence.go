// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package serving

import (
	"math"
	"strings"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/model"
)

// Confidence bounds. The system never reports full certainty.
const (
	ConfidenceFloor   = 0.5
	ConfidenceCeiling = 0.95
	DefaultConfidence = 0.7
)

// confidenceInput collects the request attributes that degrade the
// data-quality multiplier.
type confidenceInput struct {
	textLength     int
	followersCount int
	followingCount int
	accountAge     int
	hashtagCount   int
}

func confidenceInputFromRecord(rec *dataset.PostRecord) confidenceInput {
	in := confidenceInput{
		textLength:     len(rec.PostText),
		followersCount: rec.FollowersCount,
		followingCount: rec.FollowingCount,
		accountAge:     rec.AccountAge,
	}
	if rec.Hashtags != "" {
		in.hashtagCount = strings.Count(rec.Hashtags, ",") + 1
	}
	return in
}

// computeConfidence derives the prediction confidence as the product of
// a metrics-derived base, a data-quality multiplier, and a
// prediction-stability multiplier, clamped to [0.5, 0.95].
//
// valR2 is the validation average R2, or nil when validation metrics
// are unavailable, in which case fallback is used as the base.
func computeConfidence(valR2 *float64, fallback float64, in confidenceInput, pred *model.Prediction) float64 {
	base := fallback
	if valR2 != nil {
		base = clamp(*valR2, ConfidenceFloor, 0.9)
	}

	quality := 1.0
	if in.textLength < 10 {
		quality *= 0.9
	} else if in.textLength > 500 {
		quality *= 0.95
	}
	if in.followersCount > 0 && in.followingCount > 0 {
		ratio := float64(in.followersCount) / float64(in.followingCount)
		if ratio > 100 || ratio < 0.01 {
			quality *= 0.9
		}
	}
	if in.accountAge < 30 {
		quality *= 0.9
	}
	if in.hashtagCount > 10 {
		quality *= 0.95
	}

	stability := 1.0
	values := []float64{pred.Likes, pred.Shares, pred.Comments}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if mean > 0 {
		var variance float64
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(len(values)))
		if std/mean > 1.0 {
			stability *= 0.9
		}
	}
	if mean > 1000 {
		stability *= 0.9
	} else if mean < 5 {
		stability *= 0.9
	}

	return clamp(base*quality*stability, ConfidenceFloor, ConfidenceCeiling)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
