// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Command train is the offline CLI: it generates synthetic datasets and
// runs the full training pipeline, writing model, pipeline, and
// training-run artifacts into the model store.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/engageai/engageai/internal/config"
	"github.com/engageai/engageai/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	root := &cobra.Command{
		Use:           "train",
		Short:         "EngageAI offline training pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTrainCmd(cfg), newGenerateCmd(cfg))

	if err := root.Execute(); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
