// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/engageai/engageai/internal/config"
	"github.com/engageai/engageai/internal/middleware"
	"github.com/engageai/engageai/internal/serving"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter builds the full HTTP handler for the prediction service.
func NewRouter(cfg *config.Config, svc *serving.Service) http.Handler {
	handler := NewHandler(svc)

	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.API.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints stay unthrottled for monitoring.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	// Prediction and metrics endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.API.RateLimitReqs, cfg.API.RateLimitWindow))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Post("/predict", handler.Predict)
		r.Get("/metrics/performance", handler.Performance)
		r.Get("/metrics/feature-importance", handler.FeatureImportance)
		r.Get("/metrics/content-analysis", handler.ContentAnalysis)
	})

	// Prometheus scrape endpoint, outside the API rate limit.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
