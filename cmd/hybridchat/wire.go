// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/cache"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/config"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/embed"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// buildEmbedder wires the Gemini embedder behind the persistent
// embedding cache. The returned close func releases the cache handle.
func buildEmbedder(ctx context.Context, cfg *config.Config) (embed.Embedder, func(), error) {
	c, err := cache.New(cfg.Cache.Path, cache.Options{
		TTL:            cfg.Cache.TTL,
		MaxEntries:     cfg.Cache.MaxEntries,
		RetainFraction: cfg.Cache.RetainFraction,
	})
	if err != nil {
		return nil, nil, apperr.Wrapf(err, apperr.CodeCLISetupFailure, "opening embedding cache %s", cfg.Cache.Path)
	}

	gemini, err := embed.NewGeminiEmbedder(ctx, embed.GeminiConfig{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.EmbedModel,
	})
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := c.Close(); err != nil {
			slog.Warn("closing embedding cache", "error", err)
		}
	}
	return embed.NewCachedEmbedder(gemini, c), closeFn, nil
}

// buildIndex wires the configured vector-index backend.
func buildIndex(ctx context.Context, cfg *config.Config) (vecindex.Index, error) {
	switch cfg.Index.Backend {
	case config.BackendPinecone:
		return vecindex.NewPinecone(ctx, vecindex.PineconeConfig{
			APIKey:    cfg.Pinecone.APIKey,
			IndexName: cfg.Pinecone.Index,
			Dimension: cfg.Gemini.Dimension,
			Cloud:     cfg.Pinecone.Cloud,
			Region:    cfg.Pinecone.Region,
		})
	case config.BackendLocal:
		return vecindex.NewLocal(cfg.Index.LocalPath, cfg.Gemini.Dimension)
	default:
		return nil, apperr.Errorf(apperr.CodeIndexBackendUnknown, "unknown index backend %q", cfg.Index.Backend)
	}
}
