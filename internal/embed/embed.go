// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package embed provides the embedding-provider boundary and a
// cache-aware embedder that resolves texts against the local embedding
// cache before calling the provider.
package embed

import "context"

// TaskType hints the provider about the retrieval role of the texts.
type TaskType string

const (
	TaskRetrievalQuery    TaskType = "RETRIEVAL_QUERY"
	TaskRetrievalDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// Embedder turns texts into embedding vectors, one vector per input
// text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string, task TaskType) ([][]float32, error)

	// Model identifies the embedding model; cache keys are scoped by it.
	Model() string
}
