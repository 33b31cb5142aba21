package store

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Embeddings are kept opaque inside the JSON file: the float64 vector is
// packed little-endian and wrapped in base64 so the surrounding document
// stays readable while the vector payload stays compact.

func encodeEmbedding(vec []float64) string {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeEmbedding(blob string) ([]float64, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("decode embedding: %d bytes is not a float64 vector", len(raw))
	}
	vec := make([]float64, len(raw)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return vec, nil
}
