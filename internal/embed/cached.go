// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package embed

import (
	"context"
	"log/slog"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/cache"
	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// Compile-time interface check.
var _ Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder resolves texts against the embedding cache first and
// only sends the misses to the wrapped provider. Freshly computed
// vectors are written back so later calls hit. A write-back failure is
// logged and the vector is still returned.
type CachedEmbedder struct {
	provider Embedder
	cache    *cache.Cache
	logger   *slog.Logger
}

// NewCachedEmbedder wraps provider with the given cache.
func NewCachedEmbedder(provider Embedder, c *cache.Cache) *CachedEmbedder {
	return &CachedEmbedder{provider: provider, cache: c, logger: slog.Default()}
}

func (e *CachedEmbedder) Model() string { return e.provider.Model() }

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := e.provider.Model()

	found, missing, err := e.cache.Resolve(ctx, texts, model)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for pos, vec := range found {
		vectors[pos] = vec
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	missTexts := make([]string, len(missing))
	for j, pos := range missing {
		missTexts[j] = texts[pos]
	}

	computed, err := e.provider.Embed(ctx, missTexts, task)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, apperr.Errorf(apperr.CodeProviderResponseInvalid,
			"provider returned %d vectors for %d texts", len(computed), len(missTexts))
	}

	for j, pos := range missing {
		vectors[pos] = computed[j]
		if err := e.cache.Put(ctx, texts[pos], model, computed[j]); err != nil {
			e.logger.Warn("caching embedding", "model", model, "error", err)
		}
	}

	return vectors, nil
}
