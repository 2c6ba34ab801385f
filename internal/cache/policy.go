// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache

import "time"

// ExpiryPolicy decides when a record is stale. Expiry is lazy: stale
// records are removed only when a read touches them, never by a
// background sweep.
type ExpiryPolicy struct {
	// TTL is the maximum record age. Zero or negative disables expiry.
	TTL time.Duration
}

// Expired reports whether a record written at createdAt (float Unix
// seconds) is older than the TTL at time now.
func (p ExpiryPolicy) Expired(createdAt float64, now time.Time) bool {
	if p.TTL <= 0 {
		return false
	}
	nowSec := float64(now.UnixNano()) / float64(time.Second)
	return nowSec-createdAt > p.TTL.Seconds()
}

// EvictionPolicy bounds the total record count. It runs after every
// write: when the count exceeds MaxEntries, the oldest records are
// deleted in one batch until Keep() remain. Batching a full slice keeps
// the steady-state write cost low at the price of a transient overshoot
// between the insert and the eviction pass.
type EvictionPolicy struct {
	// MaxEntries is the record cap. Zero or negative disables eviction.
	MaxEntries int

	// Retain is the fraction of MaxEntries to keep after an eviction
	// pass.
	Retain float64
}

// Exceeded reports whether n records trip the cap.
func (p EvictionPolicy) Exceeded(n int64) bool {
	return p.MaxEntries > 0 && n > int64(p.MaxEntries)
}

// Keep returns the post-eviction watermark, floor(MaxEntries * Retain).
func (p EvictionPolicy) Keep() int64 {
	return int64(float64(p.MaxEntries) * p.Retain)
}
