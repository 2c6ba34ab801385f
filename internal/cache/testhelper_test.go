// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/cache"
)

// testCachePath returns a temp SQLite cache path.
func testCachePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".sqlite")
}

// openCache creates a cache at a temp path with the given options and
// registers cleanup.
func openCache(t *testing.T, name string, opts cache.Options) (*cache.Cache, string) {
	t.Helper()
	path := testCachePath(t, name)
	c, err := cache.New(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

// backdate rewrites created_at for one key through a side connection,
// simulating a record written age ago.
func backdate(t *testing.T, path, text, model string, age time.Duration) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	then := float64(time.Now().Add(-age).UnixNano()) / float64(time.Second)
	res, err := db.Exec(`UPDATE embeddings SET created_at = ? WHERE key = ?`, then, cache.DeriveKey(text, model))
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.EqualValues(t, 1, n, "backdate should touch exactly one row")
}

// rawSnippet reads the diagnostic text column for one key.
func rawSnippet(t *testing.T, path, text, model string) string {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var snippet string
	err = db.QueryRow(`SELECT text FROM embeddings WHERE key = ?`, cache.DeriveKey(text, model)).Scan(&snippet)
	require.NoError(t, err)
	return snippet
}

// corruptBlob truncates the stored blob for one key to a length that is
// not a multiple of the float width.
func corruptBlob(t *testing.T, path, text, model string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`UPDATE embeddings SET emb = ? WHERE key = ?`, []byte{0x01, 0x02, 0x03}, cache.DeriveKey(text, model))
	require.NoError(t, err)
}
