// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package dataset

import (
	"fmt"
	"math/rand"
)

// Weights scales the composite engagement score built from the three
// raw targets. Each target is normalized by its maximum over the dataset
// before weighting, so the composite is comparable across datasets with
// very different absolute engagement volumes.
type Weights struct {
	Likes    float64
	Shares   float64
	Comments float64
	Scale    float64
}

// DefaultWeights weight likes and shares equally with comments at half
// weight, scaled to a 0-100 score.
func DefaultWeights() Weights {
	return Weights{Likes: 0.4, Shares: 0.4, Comments: 0.2, Scale: 100}
}

// ValidateTargets ensures every record carries engagement targets.
// Records without targets cannot be used for training.
func ValidateTargets(records []PostRecord) error {
	for i := range records {
		if records[i].Targets == nil {
			return fmt.Errorf("record %d (%s): %w", i, records[i].PostID, ErrMissingTarget)
		}
	}
	if len(records) == 0 {
		return fmt.Errorf("empty dataset: %w", ErrMissingTarget)
	}
	return nil
}

// TargetMatrix extracts the per-record target vectors in TargetNames order.
// Call ValidateTargets first; records without targets contribute zeros.
func TargetMatrix(records []PostRecord) [][]float64 {
	out := make([][]float64, len(records))
	for i := range records {
		if records[i].Targets != nil {
			out[i] = records[i].Targets.Values()
		} else {
			out[i] = make([]float64, len(TargetNames))
		}
	}
	return out
}

// CompositeScores computes the weighted composite engagement score for
// each record. Targets are max-normalized per column; a column whose
// maximum is zero contributes zero.
func CompositeScores(records []PostRecord, w Weights) []float64 {
	rows := TargetMatrix(records)
	maxLikes, maxShares, maxComments := TargetMaxima(rows)
	return CompositeMatrix(rows, w, maxLikes, maxShares, maxComments)
}

// TargetMaxima returns the per-column maxima of a target matrix in
// canonical likes/shares/comments order.
func TargetMaxima(rows [][]float64) (maxLikes, maxShares, maxComments float64) {
	for _, r := range rows {
		maxLikes = max(maxLikes, r[0])
		maxShares = max(maxShares, r[1])
		maxComments = max(maxComments, r[2])
	}
	return maxLikes, maxShares, maxComments
}

// CompositeMatrix computes the weighted composite engagement score for
// each row of a likes/shares/comments matrix, normalizing columns by
// the supplied maxima. Score predictions with the maxima of the actual
// targets so both sides share a scale. A zero maximum zeroes that
// column's contribution.
func CompositeMatrix(rows [][]float64, w Weights, maxLikes, maxShares, maxComments float64) []float64 {
	scores := make([]float64, len(rows))
	for i, r := range rows {
		var s float64
		if maxLikes > 0 {
			s += w.Likes * r[0] / maxLikes
		}
		if maxShares > 0 {
			s += w.Shares * r[1] / maxShares
		}
		if maxComments > 0 {
			s += w.Comments * r[2] / maxComments
		}
		scores[i] = s * w.Scale
	}
	return scores
}

// Split partitions records into train and validation sets. The split is
// a seeded uniform shuffle, so the same seed always yields the same
// partition. testSize is the validation fraction in (0, 1).
func Split(records []PostRecord, testSize float64, seed int64) (train, test []PostRecord, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %.3f outside (0, 1)", testSize)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 records to split, got %d", len(records))
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible shuffle, not security sensitive
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(float64(len(records)) * testSize)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= len(records) {
		nTest = len(records) - 1
	}

	test = make([]PostRecord, 0, nTest)
	train = make([]PostRecord, 0, len(records)-nTest)
	for i, j := range idx {
		if i < nTest {
			test = append(test, records[j])
		} else {
			train = append(train, records[j])
		}
	}
	return train, test, nil
}
