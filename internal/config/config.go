// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package config provides layered configuration for EngageAI using Koanf v2.
//
// Configuration is loaded from three sources, highest priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables
package config

import (
	"fmt"
	"math"
	"time"
)

// Config is the root configuration for both the serving binary and the
// training CLI.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Models   ModelsConfig   `koanf:"models"`
	Serving  ServingConfig  `koanf:"serving"`
	Training TrainingConfig `koanf:"training"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ModelsConfig holds model artifact storage settings.
type ModelsConfig struct {
	// Dir is the directory holding persisted model weights, metadata and
	// feature pipeline artifacts.
	Dir string `koanf:"dir"`
}

// ServingConfig holds prediction-serving settings.
type ServingConfig struct {
	// DefaultConfidence is the fallback confidence score used when
	// validation metrics are unavailable or confidence computation fails.
	DefaultConfidence float64 `koanf:"default_confidence"`

	// TopFeatures is the number of feature importances returned with a
	// prediction response.
	TopFeatures int `koanf:"top_features"`
}

// TrainingConfig holds training pipeline settings.
type TrainingConfig struct {
	// Algorithm is the default regression algorithm
	// (random_forest, gradient_boosting, xgboost, lightgbm).
	Algorithm string `koanf:"algorithm"`

	// TestSize is the fraction of data held out for evaluation.
	TestSize float64 `koanf:"test_size"`

	// Trials is the default number of hyperparameter search trials.
	Trials int `koanf:"trials"`

	// Seed is the RNG seed for splits, sampling and search.
	Seed int64 `koanf:"seed"`

	// EngagementWeights weight the composite engagement target.
	// The weights are a business choice, not derived from data.
	EngagementWeights EngagementWeights `koanf:"engagement_weights"`
}

// EngagementWeights are the composite engagement score weights applied to
// max-normalized likes, shares and comments. The weighted sum is scaled
// by Scale.
type EngagementWeights struct {
	Likes    float64 `koanf:"likes"`
	Shares   float64 `koanf:"shares"`
	Comments float64 `koanf:"comments"`
	Scale    float64 `koanf:"scale"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	// RateLimitReqs is the number of requests allowed per window per IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir must not be empty")
	}
	if c.Serving.DefaultConfidence < 0.5 || c.Serving.DefaultConfidence > 0.95 {
		return fmt.Errorf("serving.default_confidence must be in [0.5, 0.95], got %g", c.Serving.DefaultConfidence)
	}
	if c.Serving.TopFeatures <= 0 {
		return fmt.Errorf("serving.top_features must be positive, got %d", c.Serving.TopFeatures)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("training.test_size must be in (0, 1), got %g", c.Training.TestSize)
	}
	if c.Training.Trials < 1 {
		return fmt.Errorf("training.trials must be at least 1, got %d", c.Training.Trials)
	}

	w := c.Training.EngagementWeights
	sum := w.Likes + w.Shares + w.Comments
	if sum <= 0 || math.IsNaN(sum) {
		return fmt.Errorf("training.engagement_weights must sum to a positive value, got %g", sum)
	}
	if w.Scale <= 0 {
		return fmt.Errorf("training.engagement_weights.scale must be positive, got %g", w.Scale)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
