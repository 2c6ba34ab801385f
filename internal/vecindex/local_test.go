// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package vecindex_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
)

func newLocalIndex(t *testing.T, dimension int) *vecindex.Local {
	t.Helper()
	idx, err := vecindex.NewLocal(filepath.Join(t.TempDir(), "index.sqlite"), dimension)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestLocal_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newLocalIndex(t, 3)

	err := idx.Upsert(ctx, []vecindex.Item{
		{ID: "hanoi", Values: []float32{1, 0, 0}, Metadata: map[string]any{"name": "Hanoi", "type": "city"}},
		{ID: "hue", Values: []float32{0, 1, 0}, Metadata: map[string]any{"name": "Hue"}},
		{ID: "danang", Values: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "hanoi", matches[0].ID)
	assert.Equal(t, "Hanoi", matches[0].Metadata["name"])
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score, "results ordered closest-first")
}

func TestLocal_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := newLocalIndex(t, 3)

	require.NoError(t, idx.Upsert(ctx, []vecindex.Item{
		{ID: "v1", Values: []float32{1, 0, 0}, Metadata: map[string]any{"version": float64(1)}},
	}))
	require.NoError(t, idx.Upsert(ctx, []vecindex.Item{
		{ID: "v1", Values: []float32{0, 1, 0}, Metadata: map[string]any{"version": float64(2)}},
	}))

	matches, err := idx.Query(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "v1", matches[0].ID)
	assert.Equal(t, float64(2), matches[0].Metadata["version"])
}

func TestLocal_EmptyUpsertIsNoop(t *testing.T) {
	idx := newLocalIndex(t, 3)
	assert.NoError(t, idx.Upsert(context.Background(), nil))
}

func TestLocal_InvalidDimension(t *testing.T) {
	_, err := vecindex.NewLocal(filepath.Join(t.TempDir(), "bad.sqlite"), 0)
	assert.Error(t, err)
}
