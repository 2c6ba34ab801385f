// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeriveKey returns the cache key for a (text, model) pair.
//
// Whitespace runs in text are collapsed to single spaces and the ends are
// trimmed before hashing, so texts that differ only in whitespace share a
// key. Case is deliberately preserved. The key is the hex-encoded SHA-256
// of "model|cleaned-text", so records for different models never share a
// key for the same text.
func DeriveKey(text, model string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(model + "|" + cleaned))
	return hex.EncodeToString(sum[:])
}
