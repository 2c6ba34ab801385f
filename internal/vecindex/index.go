// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package vecindex provides the vector-index boundary: upserts of
// (id, vector, metadata) and nearest-neighbor queries. Two backends are
// available: the managed Pinecone index and a local sqlite-vec file.
package vecindex

import "context"

// Item is one vector to upsert.
type Item struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Match is one nearest-neighbor result. Score semantics follow the
// backend metric; for cosine similarity, higher is closer.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Index is a vector database at its boundary.
type Index interface {
	Upsert(ctx context.Context, items []Item) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Close() error
}
