// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/cache"
)

func TestExpiryPolicy(t *testing.T) {
	now := time.Now()
	sec := func(age time.Duration) float64 {
		return float64(now.Add(-age).UnixNano()) / float64(time.Second)
	}

	p := cache.ExpiryPolicy{TTL: time.Hour}
	assert.False(t, p.Expired(sec(time.Minute), now))
	assert.False(t, p.Expired(sec(59*time.Minute), now))
	assert.True(t, p.Expired(sec(time.Hour+time.Second), now))

	// Disabled policy never expires anything.
	off := cache.ExpiryPolicy{}
	assert.False(t, off.Expired(sec(24*365*time.Hour), now))
}

func TestEvictionPolicy(t *testing.T) {
	p := cache.EvictionPolicy{MaxEntries: 200_000, Retain: 0.9}
	assert.False(t, p.Exceeded(200_000))
	assert.True(t, p.Exceeded(200_001))
	assert.EqualValues(t, 180_000, p.Keep())

	small := cache.EvictionPolicy{MaxEntries: 10, Retain: 0.95}
	assert.EqualValues(t, 9, small.Keep(), "watermark rounds down")

	off := cache.EvictionPolicy{}
	assert.False(t, off.Exceeded(1<<40))
}
