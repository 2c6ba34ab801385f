// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package chat

import (
	"context"
	"log/slog"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/embed"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/graph"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// Assistant answers travel questions by embedding the query, retrieving
// nearest nodes from the vector index, expanding them with graph facts,
// and asking the chat model for a grounded answer.
type Assistant struct {
	embedder embed.Embedder
	index    vecindex.Index
	graph    graph.Traverser
	model    Model
	topK     int
	logger   *slog.Logger
}

// NewAssistant wires the retrieval components into an assistant.
func NewAssistant(embedder embed.Embedder, index vecindex.Index, traverser graph.Traverser, model Model, topK int) *Assistant {
	if topK <= 0 {
		topK = 5
	}
	return &Assistant{
		embedder: embedder,
		index:    index,
		graph:    traverser,
		model:    model,
		topK:     topK,
		logger:   slog.Default(),
	}
}

// Answer runs one full retrieval-augmented round for query.
func (a *Assistant) Answer(ctx context.Context, query string) (string, error) {
	vectors, err := a.embedder.Embed(ctx, []string{query}, embed.TaskRetrievalQuery)
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", apperr.Errorf(apperr.CodeProviderResponseInvalid, "embedder returned %d vectors for one query", len(vectors))
	}

	matches, err := a.index.Query(ctx, vectors[0], a.topK)
	if err != nil {
		return "", err
	}
	a.logger.Debug("vector matches", "count", len(matches))

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}

	facts, err := a.graph.NeighborFacts(ctx, ids)
	if err != nil {
		return "", err
	}
	a.logger.Debug("graph facts", "count", len(facts))

	system, user := BuildPrompt(PromptInput{Query: query, Matches: matches, Facts: facts})
	return a.model.Generate(ctx, system, user)
}
