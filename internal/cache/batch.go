// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache

import (
	"context"
	"time"
)

// Resolve partitions texts into cached and missing positions for one
// model. found maps each list position to its decoded vector; missing
// lists the remaining positions in ascending order. Duplicate texts cost
// a single lookup but every duplicate position is reported
// independently. Backend queries are chunked to respect the
// bound-variable ceiling; chunking never changes the result versus a
// single query. Expired and malformed records count as misses for all
// their positions and are deleted once per distinct key. An empty input
// returns without touching the backend.
func (c *Cache) Resolve(ctx context.Context, texts []string, model string) (map[int][]float32, []int, error) {
	found := make(map[int][]float32)
	if len(texts) == 0 {
		return found, nil, nil
	}

	// Group positions by key so duplicates share one lookup.
	byKey := make(map[string][]int, len(texts))
	distinct := make([]string, 0, len(texts))
	for i, t := range texts {
		k := DeriveKey(t, model)
		if _, seen := byKey[k]; !seen {
			distinct = append(distinct, k)
		}
		byKey[k] = append(byKey[k], i)
	}

	now := time.Now()
	var stale []string

	for start := 0; start < len(distinct); start += c.maxParams {
		chunk := distinct[start:min(start+c.maxParams, len(distinct))]

		args := make([]any, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}

		q := `SELECT key, emb, created_at FROM embeddings WHERE key IN (` + placeholders(len(chunk)) + `)`
		rows, err := c.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, nil, storageErr("querying embeddings batch", err)
		}

		for rows.Next() {
			var key string
			var blob []byte
			var createdAt float64
			if err := rows.Scan(&key, &blob, &createdAt); err != nil {
				_ = rows.Close()
				return nil, nil, storageErr("scanning embedding row", err)
			}

			if c.expiry.Expired(createdAt, now) {
				stale = append(stale, key)
				continue
			}

			vec, err := DecodeVector(blob)
			if err != nil {
				c.logger.Warn("dropping malformed cache record", "key", key, "error", err)
				stale = append(stale, key)
				continue
			}

			for _, pos := range byKey[key] {
				found[pos] = vec
			}
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, nil, storageErr("iterating embedding rows", err)
		}
		_ = rows.Close()
	}

	var missing []int
	for i := range texts {
		if _, ok := found[i]; !ok {
			missing = append(missing, i)
		}
	}

	// Stale records are already misses; deletion is best-effort cleanup.
	if len(stale) > 0 {
		if err := c.deleteKeys(ctx, stale); err != nil {
			c.logger.Warn("deleting stale cache records", "count", len(stale), "error", err)
		}
	}

	return found, missing, nil
}
