// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package serving runs the online prediction path: it loads the latest
// trained artifacts, transforms incoming posts, and assembles the full
// prediction response with confidence scoring and post-time
// recommendation.
//
// # Degradation
//
// Prediction never fails because an auxiliary stage failed. When the
// transform pipeline is unavailable the raw numeric features are used;
// a failed importance lookup yields an empty map, a failed confidence
// computation yields the default 0.7, and an impossible post-time
// recommendation yields no recommendation. Only a missing model or a
// regression failure surfaces as an error.
//
// # Thread Safety
//
// Service is safe for concurrent use. Artifact loading is retried on
// each use until it succeeds; loaded artifacts are read-only
// afterwards.
package serving

import (
	"fmt"
	"sync"
	"time"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/logging"
	"github.com/engageai/engageai/internal/metrics"
	"github.com/engageai/engageai/internal/model"
)

const importanceTopN = 10

// Result is the full prediction response for one post.
type Result struct {
	Likes               float64            `json:"predicted_likes"`
	Shares              float64            `json:"predicted_shares"`
	Comments            float64            `json:"predicted_comments"`
	EngagementLevel     string             `json:"engagement_level"`
	ConfidenceScore     float64            `json:"confidence_score"`
	FeatureImportance   map[string]float64 `json:"feature_importance"`
	RecommendedPostTime *time.Time         `json:"recommended_post_time"`
}

// PerformanceReport describes the active model and its evaluation
// metrics.
type PerformanceReport struct {
	ModelType   string                        `json:"model_type"`
	TrainedAt   string                        `json:"trained_at"`
	NumFeatures int                           `json:"num_features"`
	Metrics     map[string]model.SplitMetrics `json:"metrics"`
}

// TrainingRunDoc is the training-run document persisted by the train
// command and read back for the content-analysis and importance
// endpoints.
type TrainingRunDoc struct {
	ModelType              string               `json:"model_type"`
	Target                 string               `json:"target"`
	Timestamp              string               `json:"timestamp"`
	DatasetRows            int                  `json:"dataset_rows"`
	Metrics                map[string]float64   `json:"metrics,omitempty"`
	FeatureImportance      map[string]float64   `json:"feature_importance,omitempty"`
	FeatureNames           []string             `json:"feature_names,omitempty"`
	ModelPath              string               `json:"model_path"`
	FeatureEngineeringPath string               `json:"feature_engineering_path"`
	AttributionSample      []map[string]float64 `json:"attribution_sample,omitempty"`
	ContentAnalysis        ContentAnalysis      `json:"content_analysis"`
}

// Service serves predictions from the most recent artifacts in a model
// store.
type Service struct {
	store *model.Store

	loadMu   sync.Mutex
	model    *model.Model
	meta     *model.Metadata
	pipeline *features.Pipeline

	docMu    sync.Mutex
	trainDoc *TrainingRunDoc

	topFeatures  int
	fallbackConf float64

	// now is replaceable for tests.
	now func() time.Time
}

// NewService creates a Service over the given artifact store. Artifacts
// load lazily on first use, so a server can start before the first
// training run completes.
func NewService(store *model.Store) *Service {
	return &Service{
		store:        store,
		topFeatures:  importanceTopN,
		fallbackConf: DefaultConfidence,
		now:          time.Now,
	}
}

// WithTopFeatures sets how many feature importances accompany each
// prediction response. Values below 1 are ignored.
func (s *Service) WithTopFeatures(n int) *Service {
	if n > 0 {
		s.topFeatures = n
	}
	return s
}

// WithFallbackConfidence sets the base confidence used when validation
// metrics are unavailable. Values outside [0.5, 0.95] are ignored.
func (s *Service) WithFallbackConfidence(c float64) *Service {
	if c >= ConfidenceFloor && c <= ConfidenceCeiling {
		s.fallbackConf = c
	}
	return s
}

// load resolves and loads the latest model, metadata, and transform
// pipeline. The model is required; a missing pipeline only degrades
// prediction to raw features. A failed load is retried on the next
// call, so a server started before the first training run becomes
// ready once artifacts appear.
func (s *Service) load() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.model != nil {
		return nil
	}

	name, err := s.store.LatestModelName()
	if err != nil {
		metrics.RecordModelLoad(err)
		return err
	}
	m, meta, err := s.store.Load(name)
	metrics.RecordModelLoad(err)
	if err != nil {
		return fmt.Errorf("load model %s: %w", name, err)
	}
	s.model = m
	s.meta = meta
	logging.Info().
		Str("model", name).
		Str("algorithm", m.Algorithm).
		Int("features", len(m.FeatureNames)).
		Msg("Model loaded")

	pipePath, err := s.store.LatestPipelinePath()
	if err == nil {
		s.pipeline, err = features.LoadPipeline(pipePath)
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Transform pipeline unavailable, serving raw features")
		s.pipeline = nil
	}
	return nil
}

// Ready reports whether a model is loaded or loadable.
func (s *Service) Ready() bool {
	return s.load() == nil
}

// Predict runs the full prediction path for one post.
func (s *Service) Predict(rec *dataset.PostRecord) (*Result, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	start := s.now()

	frame := s.transform(rec)
	preds, err := s.model.Predict(frame)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	pred := preds[0]

	res := &Result{
		Likes:           round2(pred.Likes),
		Shares:          round2(pred.Shares),
		Comments:        round2(pred.Comments),
		EngagementLevel: pred.Level,
	}
	res.FeatureImportance = s.importance()
	res.ConfidenceScore = round2(computeConfidence(s.valR2(), s.fallbackConf, confidenceInputFromRecord(rec), &pred))
	res.RecommendedPostTime = s.recommend(frame.Rows[0])

	metrics.RecordPrediction(res.EngagementLevel, res.ConfidenceScore, time.Since(start))
	return res, nil
}

// transform produces the model-ordered feature row for a record,
// falling back to raw numeric features when the fitted pipeline is
// unavailable or rejects the input.
func (s *Service) transform(rec *dataset.PostRecord) *features.Frame {
	raws := []features.Raw{features.Extract(rec)}

	var frame *features.Frame
	if s.pipeline != nil {
		var err error
		frame, err = s.pipeline.Transform(raws)
		if err != nil {
			logging.Warn().Err(err).Msg("Transform failed, serving raw features")
			frame = nil
		}
	}
	if frame == nil {
		metrics.RecordFallback("transform")
		frame = features.RawFrame(raws)
	}

	frame, report := frame.Reconcile(s.model.FeatureNames)
	if report.Changed() {
		logging.Warn().
			Int("missing", len(report.Missing)).
			Int("extra", len(report.Extra)).
			Msg("Feature schema reconciled against model")
	}
	return frame
}

func (s *Service) importance() map[string]float64 {
	entries, err := s.model.FeatureImportance(s.topFeatures)
	if err != nil {
		metrics.RecordFallback("importance")
		return map[string]float64{}
	}
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		out[e.Feature] = round2(e.Score)
	}
	return out
}

// valR2 returns the validation average R2 from the loaded metrics, or
// nil when no validation split was recorded.
func (s *Service) valR2() *float64 {
	val, ok := s.model.Metrics["val"]
	if !ok {
		metrics.RecordFallback("confidence")
		return nil
	}
	avg, ok := val["average"]
	if !ok {
		metrics.RecordFallback("confidence")
		return nil
	}
	r2 := avg.R2
	return &r2
}

func (s *Service) recommend(row []float64) *time.Time {
	best, ok, err := s.model.RecommendPostTime(row, s.now())
	if err != nil || !ok {
		if err != nil {
			logging.Warn().Err(err).Msg("Post-time recommendation failed")
		}
		metrics.RecordFallback("recommendation")
		return nil
	}
	return &best
}

// Performance returns the active model's description and evaluation
// metrics, rounded for presentation.
func (s *Service) Performance() (*PerformanceReport, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	rounded := make(map[string]model.SplitMetrics, len(s.model.Metrics))
	for split, sm := range s.model.Metrics {
		rounded[split] = sm.Round2()
	}
	return &PerformanceReport{
		ModelType:   s.model.Algorithm,
		TrainedAt:   s.model.TrainedAt().Format(time.RFC3339),
		NumFeatures: len(s.model.FeatureNames),
		Metrics:     rounded,
	}, nil
}

// FeatureImportance returns the model's top features by importance.
// topN <= 0 returns all features.
func (s *Service) FeatureImportance(topN int) ([]model.ImportanceEntry, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.model.FeatureImportance(topN)
}

// loadTrainingRun caches the most recent training-run document. Like
// load, a miss is retried on the next call.
func (s *Service) loadTrainingRun() (*TrainingRunDoc, error) {
	s.docMu.Lock()
	defer s.docMu.Unlock()

	if s.trainDoc != nil {
		return s.trainDoc, nil
	}
	var doc TrainingRunDoc
	if err := s.store.LoadTrainingRun(&doc); err != nil {
		return nil, err
	}
	s.trainDoc = &doc
	return s.trainDoc, nil
}

// ContentAnalysis returns the corpus statistics recorded with the most
// recent training run.
func (s *Service) ContentAnalysis() (*ContentAnalysis, error) {
	doc, err := s.loadTrainingRun()
	if err != nil {
		return nil, err
	}
	return &doc.ContentAnalysis, nil
}

// AttributionSample returns the per-sample feature attributions recorded
// with the most recent training run, or nil when unavailable. The
// sample is an optional diagnostic, so failures are swallowed.
func (s *Service) AttributionSample() []map[string]float64 {
	doc, err := s.loadTrainingRun()
	if err != nil {
		return nil
	}
	return doc.AttributionSample
}
