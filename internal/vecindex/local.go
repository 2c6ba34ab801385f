// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package vecindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ Index = (*Local)(nil)

// Local implements Index on a local SQLite file with the sqlite-vec
// extension, for running without a Pinecone account. sqlite-vec reports
// distance (lower is closer); Query negates it so score ordering matches
// the Pinecone backend.
type Local struct {
	db        *sql.DB
	dimension int
}

// NewLocal opens (or creates) a sqlite-vec index at path with the given
// vector dimension.
func NewLocal(path string, dimension int) (*Local, error) {
	if dimension <= 0 {
		return nil, apperr.Errorf(apperr.CodeIndexConfigInvalid, "local index: dimension %d must be positive", dimension)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexConfigInvalid, "local index: opening db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperr.Wrapf(err, apperr.CodeIndexConfigInvalid, "local index: pinging db")
	}

	if err := migrateLocal(db, dimension); err != nil {
		_ = db.Close()
		return nil, apperr.Wrapf(err, apperr.CodeIndexConfigInvalid, "local index: migrating")
	}

	return &Local{db: db, dimension: dimension}, nil
}

func migrateLocal(db *sql.DB, dimension int) error {
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS nodes USING vec0(id TEXT PRIMARY KEY, embedding float[%d])`,
		dimension,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return fmt.Errorf("creating nodes virtual table: %w", err)
	}

	const metaDDL = `
CREATE TABLE IF NOT EXISTS node_metadata (
	id       TEXT PRIMARY KEY,
	metadata TEXT NOT NULL DEFAULT '{}'
)`
	if _, err := db.Exec(metaDDL); err != nil {
		return fmt.Errorf("creating node_metadata table: %w", err)
	}

	return nil
}

// Upsert inserts or replaces items in one transaction.
func (l *Local) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		blob, err := sqlite_vec.SerializeFloat32(item.Values)
		if err != nil {
			return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: serializing vector %s", item.ID)
		}

		metaJSON := []byte("{}")
		if len(item.Metadata) > 0 {
			metaJSON, err = json.Marshal(item.Metadata)
			if err != nil {
				return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: encoding metadata for %s", item.ID)
			}
		}

		// vec0 does not support ON CONFLICT; delete first for upsert.
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, item.ID); err != nil {
			return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: deleting existing vector %s", item.ID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO nodes(id, embedding) VALUES (?, ?)`, item.ID, blob); err != nil {
			return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: inserting vector %s", item.ID)
		}

		const metaQ = `INSERT INTO node_metadata(id, metadata) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET metadata = excluded.metadata`
		if _, err := tx.ExecContext(ctx, metaQ, item.ID, string(metaJSON)); err != nil {
			return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: upserting metadata %s", item.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "local index: committing upsert")
	}
	return nil
}

// Query performs a k-nearest-neighbor search.
func (l *Local) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "local index: serializing query vector")
	}

	const q = `SELECT n.id, n.distance, COALESCE(m.metadata, '{}')
FROM nodes n
LEFT JOIN node_metadata m ON m.id = n.id
WHERE n.embedding MATCH ? AND k = ?
ORDER BY n.distance`

	rows, err := l.db.QueryContext(ctx, q, blob, topK)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "local index: querying top %d", topK)
	}
	defer func() { _ = rows.Close() }()

	var matches []Match
	for rows.Next() {
		var m Match
		var distance float32
		var metaStr string
		if err := rows.Scan(&m.ID, &distance, &metaStr); err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "local index: scanning result")
		}
		m.Score = -distance

		if metaStr != "" && metaStr != "{}" {
			if err := json.Unmarshal([]byte(metaStr), &m.Metadata); err != nil {
				return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "local index: decoding metadata for %s", m.ID)
			}
		}

		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "local index: iterating results")
	}

	return matches, nil
}

// Close closes the underlying database connection.
func (l *Local) Close() error { return l.db.Close() }
