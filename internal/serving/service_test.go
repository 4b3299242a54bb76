// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package serving

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/model"
)

// trainArtifacts trains a small model on a generated corpus and writes
// the full artifact set (weights, metadata, pipeline, training run)
// into dir.
func trainArtifacts(t *testing.T, dir string, withPipeline bool) []dataset.PostRecord {
	t.Helper()

	records, err := dataset.Generate(dataset.GenerateOptions{
		NumPosts: 150,
		NumUsers: 15,
		Seed:     11,
		End:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	pipe := features.NewPipeline()
	frame, err := pipe.FitTransform(features.ExtractAll(records))
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	y := dataset.TargetMatrix(records)

	m, err := model.NewWithParams(model.AlgorithmGradientBoosting, model.Hyperparams{
		NumTrees:     20,
		MaxDepth:     4,
		LearningRate: 0.1,
		MinSamples:   2,
		SubsampleCol: 1,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("NewWithParams failed: %v", err)
	}
	if err := m.Train(frame, y, frame, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	store, err := model.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Save(m, model.ModelName(m.Algorithm, "engagement", ts)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if withPipeline {
		if err := pipe.Save(filepath.Join(dir, model.PipelineFilename(ts))); err != nil {
			t.Fatalf("pipeline Save failed: %v", err)
		}
	}
	doc := TrainingRunDoc{
		ModelType:       m.Algorithm,
		Target:          "engagement",
		Timestamp:       ts.Format(time.RFC3339),
		DatasetRows:     len(records),
		ContentAnalysis: AnalyzeContent(records),
	}
	if err := store.SaveTrainingRun(ts, doc); err != nil {
		t.Fatalf("SaveTrainingRun failed: %v", err)
	}
	return records
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	store, err := model.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return NewService(store)
}

func samplePost() dataset.PostRecord {
	return dataset.PostRecord{
		PostText:       "Excited to announce our amazing new product launch!",
		MediaType:      "video",
		Hashtags:       "tech,launch,startup",
		Timestamp:      time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC),
		FollowersCount: 5000,
		FollowingCount: 500,
		AccountAge:     365,
	}
}

func TestServicePredict(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true)
	svc := newTestService(t, dir)

	rec := samplePost()
	res, err := svc.Predict(&rec)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if res.Likes < 0 || res.Shares < 0 || res.Comments < 0 {
		t.Errorf("negative prediction: %+v", res)
	}
	switch res.EngagementLevel {
	case "low", "medium", "high":
	default:
		t.Errorf("EngagementLevel = %q", res.EngagementLevel)
	}
	if res.ConfidenceScore < ConfidenceFloor || res.ConfidenceScore > ConfidenceCeiling {
		t.Errorf("ConfidenceScore = %g outside [%g, %g]", res.ConfidenceScore, ConfidenceFloor, ConfidenceCeiling)
	}
	if len(res.FeatureImportance) == 0 || len(res.FeatureImportance) > importanceTopN {
		t.Errorf("FeatureImportance has %d entries", len(res.FeatureImportance))
	}
	if res.RecommendedPostTime == nil {
		t.Fatal("RecommendedPostTime is nil")
	}
	if !res.RecommendedPostTime.After(time.Now()) {
		t.Errorf("RecommendedPostTime %v is not in the future", res.RecommendedPostTime)
	}
}

func TestServicePredictDeterministic(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true)
	svc := newTestService(t, dir)

	rec := samplePost()
	first, err := svc.Predict(&rec)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	second, err := svc.Predict(&rec)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if first.Likes != second.Likes || first.Shares != second.Shares || first.Comments != second.Comments {
		t.Errorf("predictions differ: %+v vs %+v", first, second)
	}
}

func TestServicePredictWithoutPipeline(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, false)
	svc := newTestService(t, dir)

	// With no pipeline artifact the service reconciles raw features
	// against the trained schema and must still answer.
	rec := samplePost()
	res, err := svc.Predict(&rec)
	if err != nil {
		t.Fatalf("Predict without pipeline failed: %v", err)
	}
	if res.EngagementLevel == "" {
		t.Error("missing engagement level")
	}
}

func TestServiceNotReadyWithoutModel(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	if svc.Ready() {
		t.Error("Ready() = true with empty store")
	}
	rec := samplePost()
	if _, err := svc.Predict(&rec); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Errorf("Predict error = %v, want ErrArtifactNotFound", err)
	}
}

func TestServiceBecomesReadyAfterTraining(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, dir)

	if svc.Ready() {
		t.Fatal("Ready() = true with empty store")
	}
	rec := samplePost()
	if _, err := svc.Predict(&rec); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("Predict error = %v, want ErrArtifactNotFound", err)
	}
	if _, err := svc.ContentAnalysis(); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("ContentAnalysis error = %v, want ErrArtifactNotFound", err)
	}

	// Artifacts appear after the service has already answered unready.
	// The same instance must pick them up without a restart.
	trainArtifacts(t, dir, true)

	if !svc.Ready() {
		t.Fatal("Ready() = false after artifacts were written")
	}
	if _, err := svc.Predict(&rec); err != nil {
		t.Errorf("Predict after training failed: %v", err)
	}
	if _, err := svc.ContentAnalysis(); err != nil {
		t.Errorf("ContentAnalysis after training failed: %v", err)
	}
}

func TestServicePerformance(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true)
	svc := newTestService(t, dir)

	report, err := svc.Performance()
	if err != nil {
		t.Fatalf("Performance failed: %v", err)
	}
	if report.ModelType != model.AlgorithmGradientBoosting {
		t.Errorf("ModelType = %q", report.ModelType)
	}
	if report.NumFeatures == 0 {
		t.Error("NumFeatures = 0")
	}
	for _, split := range []string{"train", "val"} {
		sm, ok := report.Metrics[split]
		if !ok {
			t.Fatalf("missing %s metrics", split)
		}
		if _, ok := sm["average"]; !ok {
			t.Errorf("%s metrics missing average row", split)
		}
	}
}

func TestServiceFeatureImportance(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true)
	svc := newTestService(t, dir)

	entries, err := svc.FeatureImportance(5)
	if err != nil {
		t.Fatalf("FeatureImportance failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Score > entries[i-1].Score {
			t.Errorf("entries not sorted: %v", entries)
		}
	}
}

func TestServiceContentAnalysis(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true)
	svc := newTestService(t, dir)

	ca, err := svc.ContentAnalysis()
	if err != nil {
		t.Fatalf("ContentAnalysis failed: %v", err)
	}
	total := ca.SentimentAnalysis.PositivePosts + ca.SentimentAnalysis.NegativePosts + ca.SentimentAnalysis.NeutralPosts
	if total < 99.5 || total > 100.5 {
		t.Errorf("sentiment percentages sum to %g", total)
	}
	if len(ca.TemporalPatterns.BestDays) == 0 {
		t.Error("no best days in content analysis")
	}
}

func TestServiceContentAnalysisMissing(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	if _, err := svc.ContentAnalysis(); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Errorf("ContentAnalysis error = %v, want ErrArtifactNotFound", err)
	}
}
