// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/engageai/engageai/internal/config"
	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/logging"
)

func newGenerateCmd(cfg *config.Config) *cobra.Command {
	var (
		output   string
		numPosts int
		numUsers int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic labeled dataset CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.Generate(dataset.GenerateOptions{
				NumPosts: numPosts,
				NumUsers: numUsers,
				Seed:     seed,
				End:      time.Now(),
			})
			if err != nil {
				return err
			}

			f, err := os.Create(output) //nolint:gosec // output path is operator-supplied
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer func() { _ = f.Close() }() //nolint:errcheck // write errors are surfaced by WriteCSV

			if err := dataset.WriteCSV(f, records); err != nil {
				return fmt.Errorf("write dataset: %w", err)
			}
			logging.Info().
				Int("posts", numPosts).
				Int("users", numUsers).
				Str("output", output).
				Msg("Dataset generated")
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "sample_social_media_data.csv", "output CSV path")
	cmd.Flags().IntVar(&numPosts, "num-posts", 10000, "number of posts to generate")
	cmd.Flags().IntVar(&numUsers, "num-users", 1000, "number of distinct users")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Training.Seed, "RNG seed")

	return cmd
}
