// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Training.EngagementWeights.Likes != 0.4 {
		t.Errorf("default likes weight = %g, want 0.4", cfg.Training.EngagementWeights.Likes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"empty models dir", func(c *Config) { c.Models.Dir = "" }},
		{"confidence too low", func(c *Config) { c.Serving.DefaultConfidence = 0.4 }},
		{"confidence too high", func(c *Config) { c.Serving.DefaultConfidence = 0.99 }},
		{"test size zero", func(c *Config) { c.Training.TestSize = 0 }},
		{"test size one", func(c *Config) { c.Training.TestSize = 1 }},
		{"zero trials", func(c *Config) { c.Training.Trials = 0 }},
		{"zero weights", func(c *Config) {
			c.Training.EngagementWeights = EngagementWeights{Scale: 100}
		}},
		{"zero scale", func(c *Config) { c.Training.EngagementWeights.Scale = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("MODELS_DIR", "/tmp/engageai-models")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Models.Dir != "/tmp/engageai-models" {
		t.Errorf("models dir = %q, want /tmp/engageai-models", cfg.Models.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors origins = %v, want two trimmed origins", cfg.API.CORSOrigins)
	}
	if cfg.API.RateLimitWindow != 30*time.Second {
		t.Errorf("rate limit window = %s, want 30s", cfg.API.RateLimitWindow)
	}
}

func TestLoadIgnoresUnmappedEnv(t *testing.T) {
	t.Setenv("RANDOM_UNRELATED_VAR", "value")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9200\nmodels:\n  dir: /data/models\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200 from file", cfg.Server.Port)
	}
	if cfg.Models.Dir != "/data/models" {
		t.Errorf("models dir = %q, want /data/models", cfg.Models.Dir)
	}
}
