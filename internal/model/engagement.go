// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/logging"
)

// Engagement level thresholds on the summed prediction.
const (
	LevelLowMax    = 50
	LevelMediumMax = 200
)

// TargetNames are the three predicted engagement targets, in column
// order.
var TargetNames = []string{"likes", "shares", "comments"}

// Prediction is the per-row model output.
type Prediction struct {
	Likes    float64
	Shares   float64
	Comments float64
	Level    string
}

// Total returns the summed prediction used for level bucketing and the
// post-time grid search.
func (p *Prediction) Total() float64 {
	return p.Likes + p.Shares + p.Comments
}

// ImportanceEntry is one feature's importance score.
type ImportanceEntry struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// Model wraps a multi-target regressor behind the train/predict/
// evaluate/persist lifecycle. A model starts untrained; Predict,
// FeatureImportance, and Save fail with ErrNotTrained until Train
// succeeds. After training the regressor is read-only, so concurrent
// prediction takes only the shared lock.
type Model struct {
	Algorithm    string
	Params       Hyperparams
	FeatureNames []string
	Metrics      map[string]SplitMetrics

	regressor MultiRegressor
	trained   bool
	trainedAt time.Time
	mu        sync.RWMutex
}

// New creates an untrained model for the given algorithm selector.
func New(algorithm string) (*Model, error) {
	return NewWithParams(algorithm, DefaultHyperparams(algorithm))
}

// NewWithParams creates an untrained model with explicit hyperparameters.
func NewWithParams(algorithm string, hp Hyperparams) (*Model, error) {
	// Validate the selector eagerly so an unknown algorithm fails at
	// construction, not at train time.
	if _, err := NewMultiRegressor(algorithm, hp); err != nil {
		return nil, err
	}
	return &Model{
		Algorithm: algorithm,
		Params:    hp,
		Metrics:   make(map[string]SplitMetrics),
	}, nil
}

// IsTrained reports whether a successful train has completed.
func (m *Model) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

// TrainedAt returns when the model was last trained.
func (m *Model) TrainedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trainedAt
}

// Train fits the regressor, freezes the feature schema from the
// training frame, and records train (and, when provided, validation)
// metrics. Validation frames may be nil.
func (m *Model) Train(xTrain *features.Frame, yTrain [][]float64, xVal *features.Frame, yVal [][]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(xTrain.Rows) == 0 {
		return fmt.Errorf("train: empty training set")
	}
	if len(xTrain.Rows) != len(yTrain) {
		return fmt.Errorf("train: %d feature rows, %d target rows", len(xTrain.Rows), len(yTrain))
	}

	reg, err := NewMultiRegressor(m.Algorithm, m.Params)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := reg.Fit(xTrain.Rows, yTrain); err != nil {
		return fmt.Errorf("fit %s: %w", m.Algorithm, err)
	}

	m.regressor = reg
	m.FeatureNames = append([]string(nil), xTrain.Columns...)
	m.trained = true
	m.trainedAt = time.Now()

	m.Metrics = map[string]SplitMetrics{
		"train": EvaluateSplit(reg.Predict(xTrain.Rows), yTrain, TargetNames),
	}
	if xVal != nil && len(xVal.Rows) > 0 {
		m.Metrics["val"] = EvaluateSplit(reg.Predict(xVal.Rows), yVal, TargetNames)
	}

	logging.Info().
		Str("algorithm", m.Algorithm).
		Int("rows", len(xTrain.Rows)).
		Int("features", len(m.FeatureNames)).
		Dur("duration", time.Since(started)).
		Msg("model trained")
	return nil
}

// Evaluate computes metrics for an additional split on the fitted
// weights and records them under the given split name.
func (m *Model) Evaluate(name string, x *features.Frame, y [][]float64) (SplitMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.trained {
		return nil, ErrNotTrained
	}
	metrics := EvaluateSplit(m.regressor.Predict(x.Rows), y, TargetNames)
	m.Metrics[name] = metrics
	return metrics, nil
}

// Predict returns one prediction per frame row. The frame's columns
// must already match FeatureNames; callers reconcile drift before
// calling (the parity invariant belongs to the serving layer).
func (m *Model) Predict(x *features.Frame) ([]Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return nil, ErrNotTrained
	}

	raw := m.regressor.Predict(x.Rows)
	out := make([]Prediction, len(raw))
	for i, row := range raw {
		out[i] = Prediction{
			Likes:    clampNonNegative(row[0]),
			Shares:   clampNonNegative(row[1]),
			Comments: clampNonNegative(row[2]),
		}
		out[i].Level = EngagementLevel(out[i].Total())
	}
	return out, nil
}

// EngagementLevel buckets a summed prediction into low, medium, or
// high.
func EngagementLevel(total float64) string {
	switch {
	case total <= LevelLowMax:
		return "low"
	case total <= LevelMediumMax:
		return "medium"
	default:
		return "high"
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// FeatureImportance returns the per-feature importance scores sorted
// descending, truncated to topN when topN > 0.
func (m *Model) FeatureImportance(topN int) ([]ImportanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return nil, ErrNotTrained
	}

	scores := m.regressor.Importances()
	entries := make([]ImportanceEntry, 0, len(scores))
	for i, s := range scores {
		if i < len(m.FeatureNames) {
			entries = append(entries, ImportanceEntry{Feature: m.FeatureNames[i], Score: s})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Feature < entries[j].Feature
	})
	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}
	return entries, nil
}

// RecommendPostTime grid-searches all 168 weekday/hour combinations,
// holding the other features of the single input row fixed, and returns
// the next calendar occurrence of the combination with the highest
// total predicted engagement. Returns ok=false, without error, when the
// fitted feature set lacks hour_of_day or day_of_week.
func (m *Model) RecommendPostTime(row []float64, now time.Time) (best time.Time, ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return time.Time{}, false, ErrNotTrained
	}

	hourIdx, dayIdx := -1, -1
	for i, name := range m.FeatureNames {
		switch name {
		case "hour_of_day":
			hourIdx = i
		case "day_of_week":
			dayIdx = i
		}
	}
	if hourIdx < 0 || dayIdx < 0 {
		logging.Warn().Msg("post time recommendation unavailable: hour_of_day or day_of_week not among fitted features")
		return time.Time{}, false, nil
	}
	if len(row) != len(m.FeatureNames) {
		return time.Time{}, false, fmt.Errorf("recommend: row has %d values, model expects %d", len(row), len(m.FeatureNames))
	}

	probe := append([]float64(nil), row...)
	batch := [][]float64{probe}

	bestEngagement := -1.0
	bestDay, bestHour := 0, 0
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			probe[dayIdx] = float64(day)
			probe[hourIdx] = float64(hour)

			pred := m.regressor.Predict(batch)[0]
			var total float64
			for _, v := range pred {
				total += v
			}
			if total > bestEngagement {
				bestEngagement = total
				bestDay = day
				bestHour = hour
			}
		}
	}

	return nextOccurrence(now, bestDay, bestHour), true, nil
}

// nextOccurrence converts a Monday=0 weekday and hour to its next
// calendar occurrence strictly after now.
func nextOccurrence(now time.Time, day, hour int) time.Time {
	nowDay := features.DayOfWeek(now.Weekday())
	daysAhead := (day - nowDay + 7) % 7
	if daysAhead == 0 && now.Hour() >= hour {
		daysAhead = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location()).
		AddDate(0, 0, daysAhead)
}
