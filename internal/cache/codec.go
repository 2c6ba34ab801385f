// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package cache

import (
	"encoding/binary"
	"fmt"
	"math"
)

// floatWidth is the serialized size of one vector element.
const floatWidth = 4

// EncodeVector packs a vector into little-endian 4-byte floats with no
// framing; the element count is the blob length divided by four. An empty
// vector encodes to an empty blob.
func EncodeVector(vec []float32) []byte {
	blob := make([]byte, len(vec)*floatWidth)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(blob[i*floatWidth:], math.Float32bits(f))
	}
	return blob
}

// DecodeVector unpacks a blob produced by EncodeVector. A blob whose
// length is not a multiple of four fails with ErrMalformedVector.
func DecodeVector(blob []byte) ([]float32, error) {
	if len(blob)%floatWidth != 0 {
		return nil, fmt.Errorf("blob of %d bytes: %w", len(blob), ErrMalformedVector)
	}

	vec := make([]float32, len(blob)/floatWidth)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*floatWidth:]))
	}
	return vec, nil
}
