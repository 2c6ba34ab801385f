// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package ingest loads a travel dataset, embeds each node's semantic
// text through the cached embedder, and upserts the vectors into the
// vector index in batches.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/embed"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

const (
	// DefaultBatchSize is the embed/upsert batch size.
	DefaultBatchSize = 32

	// defaultBatchDelay paces upserts to stay friendly to free-tier
	// rate limits.
	defaultBatchDelay = 200 * time.Millisecond

	// descFallbackLimit caps the description used when a node has no
	// dedicated semantic text.
	descFallbackLimit = 1000
)

// Node is one dataset entry.
type Node struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	Tags         []string `json:"tags"`
	Description  string   `json:"description"`
	SemanticText string   `json:"semantic_text"`
}

// semanticText returns the text to embed for the node: the dedicated
// semantic_text field, or the head of the description as a fallback.
func (n Node) semanticText() string {
	if strings.TrimSpace(n.SemanticText) != "" {
		return n.SemanticText
	}
	desc := []rune(n.Description)
	if len(desc) > descFallbackLimit {
		desc = desc[:descFallbackLimit]
	}
	return string(desc)
}

func (n Node) metadata() map[string]any {
	city := n.City
	if city == "" {
		city = n.Region
	}

	tags := make([]any, len(n.Tags))
	for i, tag := range n.Tags {
		tags[i] = tag
	}

	return map[string]any{
		"id":   n.ID,
		"type": n.Type,
		"name": n.Name,
		"city": city,
		"tags": tags,
	}
}

// Ingestor embeds dataset nodes and upserts them into the index.
type Ingestor struct {
	embedder   embed.Embedder
	index      vecindex.Index
	batchSize  int
	batchDelay time.Duration
	wantDim    int
	logger     *slog.Logger
}

// NewIngestor creates an Ingestor. batchSize <= 0 selects the default.
func NewIngestor(embedder embed.Embedder, index vecindex.Index, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Ingestor{
		embedder:   embedder,
		index:      index,
		batchSize:  batchSize,
		batchDelay: defaultBatchDelay,
		logger:     slog.Default(),
	}
}

// SetDimension records the expected embedding dimension. When set, Run
// warns if the provider returns vectors of a different width, which
// usually means the index was created for another model.
func (g *Ingestor) SetDimension(d int) {
	g.wantDim = d
}

// Run loads the dataset at path and ingests every node with non-blank
// semantic text. It returns the number of nodes upserted.
func (g *Ingestor) Run(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, apperr.Wrapf(err, apperr.CodeIngestReadFailure, "reading dataset %s", path)
	}

	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return 0, apperr.Wrapf(err, apperr.CodeIngestDatasetInvalid, "parsing dataset %s", path)
	}

	items := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if strings.TrimSpace(node.semanticText()) == "" {
			continue
		}
		items = append(items, node)
	}

	g.logger.Info("ingesting dataset", "path", path, "nodes", len(items), "model", g.embedder.Model())

	for start := 0; start < len(items); start += g.batchSize {
		if err := ctx.Err(); err != nil {
			return start, err
		}

		batch := items[start:min(start+g.batchSize, len(items))]

		texts := make([]string, len(batch))
		for i, node := range batch {
			texts[i] = node.semanticText()
		}

		vectors, err := g.embedder.Embed(ctx, texts, embed.TaskRetrievalDocument)
		if err != nil {
			return start, err
		}
		if len(vectors) != len(batch) {
			return start, apperr.Errorf(apperr.CodeProviderResponseInvalid,
				"embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		if start == 0 && g.wantDim > 0 && len(vectors) > 0 && len(vectors[0]) != g.wantDim {
			g.logger.Warn("embedding dimension differs from configured",
				"got", len(vectors[0]), "want", g.wantDim, "model", g.embedder.Model())
		}

		upserts := make([]vecindex.Item, len(batch))
		for i, node := range batch {
			upserts[i] = vecindex.Item{ID: node.ID, Values: vectors[i], Metadata: node.metadata()}
		}

		if err := g.index.Upsert(ctx, upserts); err != nil {
			return start, err
		}

		if start+g.batchSize < len(items) {
			select {
			case <-ctx.Done():
				return start + len(batch), ctx.Err()
			case <-time.After(g.batchDelay):
			}
		}
	}

	return len(items), nil
}
