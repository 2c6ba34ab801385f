// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/embed"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/ingest"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
)

type fakeEmbedder struct{ batches [][]string }

func (f *fakeEmbedder) Model() string { return "m1" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string, _ embed.TaskType) ([][]float32, error) {
	f.batches = append(f.batches, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2}
	}
	return out, nil
}

type fakeIndex struct{ upserts [][]vecindex.Item }

func (f *fakeIndex) Upsert(_ context.Context, items []vecindex.Item) error {
	f.upserts = append(f.upserts, items)
	return nil
}

func (f *fakeIndex) Query(context.Context, []float32, int) ([]vecindex.Match, error) { return nil, nil }
func (f *fakeIndex) Close() error                                                    { return nil }

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestIngestor_Run(t *testing.T) {
	path := writeDataset(t, `[
		{"id": "n1", "type": "city", "name": "Hanoi", "city": "Hanoi", "tags": ["capital"], "semantic_text": "Hanoi is the capital of Vietnam"},
		{"id": "n2", "type": "attraction", "name": "Ha Long Bay", "region": "Quang Ninh", "description": "Limestone karsts and emerald waters"},
		{"id": "n3", "type": "attraction", "name": "Blank", "semantic_text": "   "}
	]`)

	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	g := ingest.NewIngestor(embedder, index, 10)
	g.SetBatchDelay(0)

	n, err := g.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "blank node skipped")

	require.Len(t, index.upserts, 1)
	items := index.upserts[0]
	require.Len(t, items, 2)

	assert.Equal(t, "n1", items[0].ID)
	assert.Equal(t, "Hanoi", items[0].Metadata["city"])
	assert.Equal(t, []any{"capital"}, items[0].Metadata["tags"])

	// Nodes without semantic_text embed the description instead, and
	// fall back to region when city is missing.
	assert.Equal(t, "n2", items[1].ID)
	assert.Equal(t, "Quang Ninh", items[1].Metadata["city"])
	require.Len(t, embedder.batches, 1)
	assert.Equal(t, "Limestone karsts and emerald waters", embedder.batches[0][1])
}

func TestIngestor_Batching(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 5; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"id": "n` + string(rune('0'+i)) + `", "semantic_text": "text"}`)
	}
	sb.WriteString("]")
	path := writeDataset(t, sb.String())

	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	g := ingest.NewIngestor(embedder, index, 2)
	g.SetBatchDelay(0)

	n, err := g.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// 5 nodes at batch size 2 means batches of 2, 2, 1.
	require.Len(t, embedder.batches, 3)
	assert.Len(t, embedder.batches[0], 2)
	assert.Len(t, embedder.batches[2], 1)
	assert.Len(t, index.upserts, 3)
}

func TestIngestor_InvalidDataset(t *testing.T) {
	path := writeDataset(t, `{"not": "an array"}`)

	g := ingest.NewIngestor(&fakeEmbedder{}, &fakeIndex{}, 0)
	_, err := g.Run(context.Background(), path)
	assert.Error(t, err)
}

func TestIngestor_MissingFile(t *testing.T) {
	g := ingest.NewIngestor(&fakeEmbedder{}, &fakeIndex{}, 0)
	_, err := g.Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
