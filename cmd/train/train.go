// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/engageai/engageai/internal/config"
	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/features"
	"github.com/engageai/engageai/internal/logging"
	"github.com/engageai/engageai/internal/metrics"
	"github.com/engageai/engageai/internal/model"
	"github.com/engageai/engageai/internal/serving"
)

type trainOptions struct {
	dataPath  string
	algorithm string
	target    string
	testSize  float64
	optimize  bool
	trials    int
	outputDir string
	seed      int64
	weights   dataset.Weights
}

func newTrainCmd(cfg *config.Config) *cobra.Command {
	opts := trainOptions{
		algorithm: cfg.Training.Algorithm,
		target:    targetEngagement,
		testSize:  cfg.Training.TestSize,
		trials:    cfg.Training.Trials,
		outputDir: cfg.Models.Dir,
		seed:      cfg.Training.Seed,
		weights:   compositeWeights(cfg.Training.EngagementWeights),
	}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an engagement model from a labeled CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataPath, "data", "", "path to the training CSV (required)")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", opts.algorithm,
		fmt.Sprintf("regression algorithm %v", model.Algorithms))
	cmd.Flags().StringVar(&opts.target, "target", opts.target,
		fmt.Sprintf("target summarized in the run document %v", targetLabels))
	cmd.Flags().Float64Var(&opts.testSize, "test-size", opts.testSize, "held-out validation fraction")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "run hyperparameter search before the final fit")
	cmd.Flags().IntVar(&opts.trials, "trials", opts.trials, "hyperparameter search trials")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", opts.outputDir, "artifact output directory")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "RNG seed for split and search")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// targetEngagement selects the weighted composite of the three raw
// targets. The model always fits all three; the target chooses which
// view of them summarizes the run.
const targetEngagement = "engagement"

var targetLabels = []string{"likes", "shares", "comments", targetEngagement}

// compositeWeights adapts the configured composite weighting for the
// dataset package.
func compositeWeights(w config.EngagementWeights) dataset.Weights {
	return dataset.Weights{Likes: w.Likes, Shares: w.Shares, Comments: w.Comments, Scale: w.Scale}
}

func validTarget(target string) bool {
	for _, t := range targetLabels {
		if t == target {
			return true
		}
	}
	return false
}

func runTrain(cmd *cobra.Command, opts trainOptions) error {
	start := time.Now()

	if !validTarget(opts.target) {
		return fmt.Errorf("unknown target %q, expected one of %v", opts.target, targetLabels)
	}

	records, err := dataset.LoadCSV(opts.dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := dataset.ValidateTargets(records); err != nil {
		return err
	}
	logging.Info().
		Int("rows", len(records)).
		Str("algorithm", opts.algorithm).
		Str("data", opts.dataPath).
		Msg("Training started")

	trainSet, valSet, err := dataset.Split(records, opts.testSize, opts.seed)
	if err != nil {
		return err
	}

	pipe := features.NewPipeline()
	xTrain, err := pipe.FitTransform(features.ExtractAll(trainSet))
	if err != nil {
		return fmt.Errorf("fit transform pipeline: %w", err)
	}
	xVal, err := pipe.Transform(features.ExtractAll(valSet))
	if err != nil {
		return fmt.Errorf("transform validation set: %w", err)
	}
	yTrain := dataset.TargetMatrix(trainSet)
	yVal := dataset.TargetMatrix(valSet)

	hp := model.DefaultHyperparams(opts.algorithm)
	hp.Seed = opts.seed
	m, err := model.NewWithParams(opts.algorithm, hp)
	if err != nil {
		return err
	}

	if opts.optimize {
		err = m.TrainWithOptimization(cmd.Context(), xTrain, yTrain, xVal, yVal, opts.trials)
	} else {
		err = m.Train(xTrain, yTrain, xVal, yVal)
	}
	metrics.RecordTrainingRun(opts.algorithm, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	store, err := model.NewStore(opts.outputDir)
	if err != nil {
		return err
	}

	ts := time.Now()
	name := model.ModelName(opts.algorithm, opts.target, ts)
	if err := store.Save(m, name); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	pipePath := filepath.Join(opts.outputDir, model.PipelineFilename(ts))
	if err := pipe.Save(pipePath); err != nil {
		return fmt.Errorf("save pipeline: %w", err)
	}

	importance := make(map[string]float64)
	if entries, err := m.FeatureImportance(0); err == nil {
		for _, e := range entries {
			importance[e.Feature] = e.Score
		}
	}

	summary, err := summaryMetrics(m, opts, xTrain, yTrain, xVal, yVal)
	if err != nil {
		return fmt.Errorf("summarize %s target: %w", opts.target, err)
	}

	doc := serving.TrainingRunDoc{
		ModelType:              opts.algorithm,
		Target:                 opts.target,
		Timestamp:              ts.Format(time.RFC3339),
		DatasetRows:            len(records),
		Metrics:                summary,
		FeatureImportance:      importance,
		FeatureNames:           m.FeatureNames,
		ModelPath:              filepath.Join(opts.outputDir, name+".gob.gz"),
		FeatureEngineeringPath: pipePath,
		AttributionSample:      attributionSample(m, xVal),
		ContentAnalysis:        serving.AnalyzeContent(records),
	}
	if err := store.SaveTrainingRun(ts, doc); err != nil {
		return err
	}

	if rmse, ok := summary["val_rmse"]; ok {
		metrics.TrainingBestRMSE.WithLabelValues(opts.algorithm).Set(rmse)
	}

	logging.Info().
		Str("model", name).
		Str("pipeline", pipePath).
		Dur("duration", time.Since(start)).
		Msg("Training finished")
	return nil
}

// attributionSampleCap bounds the diagnostic attribution sample size.
const attributionSampleCap = 10

// attributionSample computes per-feature prediction attributions for a
// capped sample of validation rows. Best-effort: any failure drops the
// whole sample.
func attributionSample(m *model.Model, frame *features.Frame) []map[string]float64 {
	n := len(frame.Rows)
	if n > attributionSampleCap {
		n = attributionSampleCap
	}
	out := make([]map[string]float64, 0, n)
	for i := 0; i < n; i++ {
		attr, err := m.Attribution(frame.Rows[i])
		if err != nil {
			return nil
		}
		out = append(out, attr)
	}
	return out
}

// summaryMetrics flattens the per-split metrics of the selected target
// for the training-run document. Single targets report their own row
// from the recorded split metrics; the composite engagement target is
// re-evaluated from the weighted, max-normalized predictions.
func summaryMetrics(m *model.Model, opts trainOptions, xTrain *features.Frame, yTrain [][]float64, xVal *features.Frame, yVal [][]float64) (map[string]float64, error) {
	out := make(map[string]float64)

	if opts.target != targetEngagement {
		for split, sm := range m.Metrics {
			if tm, ok := sm.Round2()[opts.target]; ok {
				out[split+"_rmse"] = tm.RMSE
				out[split+"_mae"] = tm.MAE
				out[split+"_r2"] = tm.R2
			}
		}
		return out, nil
	}

	splits := []struct {
		name string
		x    *features.Frame
		y    [][]float64
	}{
		{"train", xTrain, yTrain},
		{"val", xVal, yVal},
	}
	for _, s := range splits {
		if s.x == nil || len(s.x.Rows) == 0 {
			continue
		}
		tm, err := compositeMetrics(m, opts.weights, s.x, s.y)
		if err != nil {
			return nil, err
		}
		out[s.name+"_rmse"] = tm.RMSE
		out[s.name+"_mae"] = tm.MAE
		out[s.name+"_r2"] = tm.R2
	}
	return out, nil
}

// compositeMetrics scores predictions and actuals through the weighted
// composite and evaluates the resulting single-column regression. Both
// sides normalize by the actual maxima so they share a scale.
func compositeMetrics(m *model.Model, w dataset.Weights, x *features.Frame, y [][]float64) (model.TargetMetrics, error) {
	preds, err := m.Predict(x)
	if err != nil {
		return model.TargetMetrics{}, err
	}
	predRows := make([][]float64, len(preds))
	for i, p := range preds {
		predRows[i] = []float64{p.Likes, p.Shares, p.Comments}
	}

	maxLikes, maxShares, maxComments := dataset.TargetMaxima(y)
	actual := dataset.CompositeMatrix(y, w, maxLikes, maxShares, maxComments)
	predicted := dataset.CompositeMatrix(predRows, w, maxLikes, maxShares, maxComments)

	sm := model.EvaluateSplit(asColumn(predicted), asColumn(actual), []string{targetEngagement})
	return sm.Round2()[targetEngagement], nil
}

func asColumn(v []float64) [][]float64 {
	out := make([][]float64, len(v))
	for i, s := range v {
		out[i] = []float64{s}
	}
	return out
}
