// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Command server runs the EngageAI prediction API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/engageai/engageai/internal/api"
	"github.com/engageai/engageai/internal/config"
	"github.com/engageai/engageai/internal/logging"
	"github.com/engageai/engageai/internal/model"
	"github.com/engageai/engageai/internal/serving"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config failed; default logger is all we have.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("models_dir", cfg.Models.Dir).
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("Starting EngageAI")

	store, err := model.NewStore(cfg.Models.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open model store")
	}

	svc := serving.NewService(store).
		WithTopFeatures(cfg.Serving.TopFeatures).
		WithFallbackConfidence(cfg.Serving.DefaultConfidence)
	if !svc.Ready() {
		// Not fatal: the server comes up and reports unready until a
		// training run produces artifacts.
		logging.Warn().Str("models_dir", cfg.Models.Dir).Msg("No trained model available yet")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, svc),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}
