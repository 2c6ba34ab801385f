// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/ingest"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Embed the travel dataset and upsert it into the vector index",
		RunE:  runUpload,
	}

	cmd.Flags().StringP("data", "d", "", "dataset file (defaults to ingest.dataset)")

	return cmd
}

func runUpload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	dataset, _ := cmd.Flags().GetString("data")
	if dataset == "" {
		dataset = cfg.Ingest.Dataset
	}

	embedder, closeCache, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := index.Close(); err != nil {
			slog.Warn("closing vector index", "error", err)
		}
	}()

	ingestor := ingest.NewIngestor(embedder, index, cfg.Ingest.BatchSize)
	ingestor.SetDimension(cfg.Gemini.Dimension)

	n, err := ingestor.Run(ctx, dataset)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Upserted %d nodes from %s\n", n, dataset)
	return nil
}
