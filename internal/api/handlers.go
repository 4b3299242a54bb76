// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/engageai/engageai/internal/logging"
	"github.com/engageai/engageai/internal/model"
	"github.com/engageai/engageai/internal/serving"
)

// maxRequestBody bounds the predict request body size.
const maxRequestBody = 1 << 20 // 1 MiB

// Handler exposes the prediction service over HTTP.
type Handler struct {
	svc       *serving.Service
	startTime time.Time
}

// NewHandler creates a Handler over a prediction service.
func NewHandler(svc *serving.Service) *Handler {
	return &Handler{svc: svc, startTime: time.Now()}
}

// Predict handles POST /api/v1/predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PredictRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if fieldErrs := req.Validate(); fieldErrs != nil {
		rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeValidationFailed, "request validation failed", fieldErrs)
		return
	}

	rec := req.ToRecord()
	res, err := h.svc.Predict(&rec)
	if err != nil {
		h.writeServiceError(rw, err)
		return
	}
	rw.Success(res)
}

// Performance handles GET /api/v1/metrics/performance.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	report, err := h.svc.Performance()
	if err != nil {
		h.writeServiceError(rw, err)
		return
	}
	rw.Success(report)
}

// FeatureImportance handles GET /api/v1/metrics/feature-importance.
// The optional top_n query parameter limits the result; 0 or absent
// returns the default 10.
func (h *Handler) FeatureImportance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	topN := 10
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "top_n must be an integer in [1, 1000]")
			return
		}
		topN = n
	}

	entries, err := h.svc.FeatureImportance(topN)
	if err != nil {
		h.writeServiceError(rw, err)
		return
	}
	data := map[string]interface{}{"feature_importance": entries}
	if sample := h.svc.AttributionSample(); len(sample) > 0 {
		data["attribution_sample"] = sample
	}
	rw.Success(data)
}

// ContentAnalysis handles GET /api/v1/metrics/content-analysis.
func (h *Handler) ContentAnalysis(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ca, err := h.svc.ContentAnalysis()
	if err != nil {
		h.writeServiceError(rw, err)
		return
	}
	rw.Success(ca)
}

// Health handles GET /api/v1/health with an overall status summary.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.svc.Ready() {
		status = "degraded"
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":       status,
		"model_loaded": h.svc.Ready(),
		"uptime":       time.Since(h.startTime).String(),
	})
}

// HealthLive handles GET /api/v1/health/live. Liveness only confirms
// the process answers.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).String(),
	})
}

// HealthReady handles GET /api/v1/health/ready. Ready means a trained
// model is loaded or loadable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.svc.Ready() {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "no trained model available")
		return
	}
	rw.Success(map[string]interface{}{"status": "ready"})
}

// writeServiceError maps service errors onto the API error taxonomy.
func (h *Handler) writeServiceError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrArtifactNotFound):
		rw.Error(http.StatusServiceUnavailable, ErrCodeModelNotTrained, "no trained model available")
	case errors.Is(err, model.ErrNotTrained):
		rw.Error(http.StatusServiceUnavailable, ErrCodeModelNotTrained, "model is not trained")
	default:
		logging.Error().Err(err).Msg("Request failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
