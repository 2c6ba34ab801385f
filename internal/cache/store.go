// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package cache is a local, persistent cache for embedding vectors keyed
// by (model, whitespace-normalized text). It exists to avoid recomputing
// expensive embedding-API calls: vectors are stored in a single SQLite
// file as packed float32 blobs, expired lazily on read after a TTL, and
// evicted oldest-first when the record count exceeds a configured cap.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors for cache operations, checkable with errors.Is.
var (
	// ErrUnavailable indicates the backing file is locked by another
	// writer beyond the bounded busy timeout.
	ErrUnavailable = errors.New("cache storage unavailable")

	// ErrMalformedVector indicates a stored blob whose length is not a
	// multiple of the float width.
	ErrMalformedVector = errors.New("malformed vector blob")

	// ErrInvalidConfig indicates an invalid Options value.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

const (
	// DefaultTTL is the default record lifetime.
	DefaultTTL = 30 * 24 * time.Hour

	// DefaultMaxEntries is the default record cap.
	DefaultMaxEntries = 200_000

	// DefaultRetainFraction is the default post-eviction watermark as a
	// fraction of the cap.
	DefaultRetainFraction = 0.9

	// defaultMaxQueryParams stays under SQLite's bound-variable ceiling
	// (999 by default) for IN-clause queries.
	defaultMaxQueryParams = 900

	// snippetLimit caps the diagnostic text column. The snippet is never
	// read back programmatically; lookups go through the key alone.
	snippetLimit = 2000
)

// Options configures a Cache. The zero value of any field selects its
// default.
type Options struct {
	// TTL is the record lifetime used by lazy expiry.
	TTL time.Duration

	// MaxEntries caps the total record count.
	MaxEntries int

	// RetainFraction is the fraction of MaxEntries kept after eviction.
	RetainFraction float64

	// MaxQueryParams bounds the number of bound variables per batch
	// query.
	MaxQueryParams int

	// Logger receives non-fatal cleanup failures. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func (o *Options) validate() error {
	if o.TTL < 0 {
		return fmt.Errorf("ttl %s must not be negative: %w", o.TTL, ErrInvalidConfig)
	}
	if o.MaxEntries < 0 {
		return fmt.Errorf("max entries %d must not be negative: %w", o.MaxEntries, ErrInvalidConfig)
	}
	if o.RetainFraction < 0 || o.RetainFraction > 1 {
		return fmt.Errorf("retain fraction %v must be in [0, 1]: %w", o.RetainFraction, ErrInvalidConfig)
	}
	if o.MaxQueryParams < 0 {
		return fmt.Errorf("max query params %d must not be negative: %w", o.MaxQueryParams, ErrInvalidConfig)
	}

	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxEntries == 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.RetainFraction == 0 {
		o.RetainFraction = DefaultRetainFraction
	}
	if o.MaxQueryParams == 0 {
		o.MaxQueryParams = defaultMaxQueryParams
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}

// Cache is an embedding cache backed by a single SQLite file. The
// *sql.DB handle is the only shared resource; concurrent callers rely on
// SQLite's own locking (WAL journal, bounded busy timeout). The
// count-then-evict sequence in Put is not atomic across processes, so
// the live count may transiently overshoot MaxEntries under concurrent
// writers; acceptable for a local, low-concurrency cache.
type Cache struct {
	db       *sql.DB
	expiry   ExpiryPolicy
	eviction EvictionPolicy

	maxParams int
	logger    *slog.Logger
}

// New opens (or creates) the embedding cache at path and initialises the
// embeddings table. The schema is idempotent; opening an existing cache
// file is a no-op migration.
func New(path string, opts Options) (*Cache, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storageErr("pinging cache db", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, storageErr("migrating cache db", err)
	}

	return &Cache{
		db:        db,
		expiry:    ExpiryPolicy{TTL: opts.TTL},
		eviction:  EvictionPolicy{MaxEntries: opts.MaxEntries, Retain: opts.RetainFraction},
		maxParams: opts.MaxQueryParams,
		logger:    opts.Logger,
	}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS embeddings (
	key        TEXT PRIMARY KEY,
	model      TEXT,
	text       TEXT,
	emb        BLOB,
	created_at REAL
);

CREATE INDEX IF NOT EXISTS idx_created_at ON embeddings(created_at);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached vector for (text, model), or ok=false when no
// live record exists. A record past its TTL is treated as absent and
// deleted best-effort; a record with a malformed blob is likewise
// treated as absent. Neither cleanup failure surfaces to the caller.
func (c *Cache) Get(ctx context.Context, text, model string) ([]float32, bool, error) {
	key := DeriveKey(text, model)

	const q = `SELECT emb, created_at FROM embeddings WHERE key = ?`

	var blob []byte
	var createdAt float64
	err := c.db.QueryRowContext(ctx, q, key).Scan(&blob, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("getting embedding", err)
	}

	if c.expiry.Expired(createdAt, time.Now()) {
		c.dropKey(ctx, key, "expired")
		return nil, false, nil
	}

	vec, err := DecodeVector(blob)
	if err != nil {
		c.logger.Warn("dropping malformed cache record", "key", key, "error", err)
		c.dropKey(ctx, key, "malformed")
		return nil, false, nil
	}

	return vec, true, nil
}

// Put inserts or replaces the record for (text, model) with the current
// wall-clock time, then synchronously runs the eviction pass. The text
// is truncated to 2000 runes for the diagnostic column. An eviction
// failure is logged, not returned: the write has already committed.
func (c *Cache) Put(ctx context.Context, text, model string, vec []float32) error {
	key := DeriveKey(text, model)
	blob := EncodeVector(vec)
	now := float64(time.Now().UnixNano()) / float64(time.Second)

	const q = `INSERT OR REPLACE INTO embeddings (key, model, text, emb, created_at)
VALUES (?, ?, ?, ?, ?)`

	if _, err := c.db.ExecContext(ctx, q, key, model, truncate(text, snippetLimit), blob, now); err != nil {
		return storageErr("putting embedding", err)
	}

	if err := c.evict(ctx); err != nil {
		c.logger.Warn("evicting embedding cache", "error", err)
	}
	return nil
}

// Count returns the total live record count, without TTL filtering.
func (c *Cache) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM embeddings`).Scan(&n); err != nil {
		return 0, storageErr("counting embeddings", err)
	}
	return n, nil
}

// evict removes the oldest records when the count exceeds the cap,
// bringing the cache back down to the retain watermark in one batch.
// Ties on created_at break deterministically by key order.
func (c *Cache) evict(ctx context.Context) error {
	n, err := c.Count(ctx)
	if err != nil {
		return err
	}
	if !c.eviction.Exceeded(n) {
		return nil
	}

	const q = `DELETE FROM embeddings WHERE key IN (
	SELECT key FROM embeddings ORDER BY created_at ASC, key ASC LIMIT ?
)`
	if _, err := c.db.ExecContext(ctx, q, n-c.eviction.Keep()); err != nil {
		return storageErr("deleting oldest embeddings", err)
	}
	return nil
}

// deleteKeys bulk-removes records, chunking the IN clause to respect the
// bound-variable ceiling.
func (c *Cache) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += c.maxParams {
		chunk := keys[start:min(start+c.maxParams, len(keys))]

		args := make([]any, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}

		q := `DELETE FROM embeddings WHERE key IN (` + placeholders(len(chunk)) + `)`
		if _, err := c.db.ExecContext(ctx, q, args...); err != nil {
			return storageErr("deleting embeddings", err)
		}
	}
	return nil
}

// dropKey removes a single stale record best-effort; the caller already
// reports the record as absent either way.
func (c *Cache) dropKey(ctx context.Context, key, cause string) {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM embeddings WHERE key = ?`, key); err != nil {
		c.logger.Warn("deleting stale cache record", "key", key, "cause", cause, "error", err)
	}
}

func placeholders(n int) string {
	p := strings.Repeat("?,", n)
	return p[:len(p)-1]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// storageErr wraps a database failure, folding SQLITE_BUSY and
// SQLITE_LOCKED into ErrUnavailable so callers can distinguish a
// contended file from a corrupt one.
func storageErr(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && (serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
