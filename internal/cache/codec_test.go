// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/cache"
)

func TestVectorCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"typical", []float32{0.1, -0.2, 0.3}},
		{"empty", []float32{}},
		{"single", []float32{42}},
		{"extremes", []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := cache.EncodeVector(tt.vec)
			assert.Len(t, blob, len(tt.vec)*4)

			got, err := cache.DecodeVector(blob)
			require.NoError(t, err)
			assert.Equal(t, tt.vec, got)
		})
	}
}

func TestVectorCodec_LittleEndianLayout(t *testing.T) {
	blob := cache.EncodeVector([]float32{1.5})
	require.Len(t, blob, 4)
	assert.Equal(t, math.Float32bits(1.5), binary.LittleEndian.Uint32(blob))
}

func TestDecodeVector_MalformedLength(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7} {
		_, err := cache.DecodeVector(make([]byte, n))
		assert.ErrorIs(t, err, cache.ErrMalformedVector, "length %d", n)
	}
}

func TestDecodeVector_EmptyBlob(t *testing.T) {
	got, err := cache.DecodeVector(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
