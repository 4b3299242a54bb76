// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package metrics provides Prometheus instrumentation for EngageAI.
//
// Covered surfaces:
//   - HTTP endpoint latency and throughput
//   - Prediction pipeline outcomes and confidence distribution
//   - Model artifact loading
//   - Offline training runs
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engageai_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engageai_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engageai_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engageai_predictions_total",
			Help: "Total number of engagement predictions by outcome level",
		},
		[]string{"engagement_level"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engageai_prediction_duration_seconds",
			Help:    "End-to-end single-post prediction duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engageai_prediction_confidence",
			Help:    "Distribution of prediction confidence scores",
			Buckets: []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95},
		},
	)

	PredictionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engageai_prediction_fallbacks_total",
			Help: "Total number of degraded prediction-path stages",
		},
		[]string{"stage"}, // "transform", "importance", "confidence", "recommendation"
	)

	// Model Loading Metrics
	ModelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engageai_model_loads_total",
			Help: "Total number of model artifact load attempts",
		},
		[]string{"result"}, // "success", "error"
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engageai_model_info",
			Help: "Information about the currently loaded model (value is feature count)",
		},
		[]string{"model_type", "model_name"},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engageai_training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"algorithm", "result"},
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engageai_training_duration_seconds",
			Help:    "Training run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"algorithm"},
	)

	TrainingBestRMSE = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engageai_training_best_rmse",
			Help: "Mean validation RMSE of the most recent training run",
		},
		[]string{"algorithm"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPrediction records a served prediction.
func RecordPrediction(engagementLevel string, confidence float64, duration time.Duration) {
	PredictionsTotal.WithLabelValues(engagementLevel).Inc()
	PredictionConfidence.Observe(confidence)
	PredictionDuration.Observe(duration.Seconds())
}

// RecordFallback records a degraded prediction-path stage.
func RecordFallback(stage string) {
	PredictionFallbacks.WithLabelValues(stage).Inc()
}

// RecordModelLoad records a model load attempt.
func RecordModelLoad(err error) {
	if err != nil {
		ModelLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	ModelLoadsTotal.WithLabelValues("success").Inc()
}

// RecordTrainingRun records a completed training run.
func RecordTrainingRun(algorithm string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	TrainingRunsTotal.WithLabelValues(algorithm, result).Inc()
	TrainingDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}
