package vector

import (
	"crypto/md5"
	"encoding/binary"

	"gonum.org/v1/gonum/floats"
)

// NewHashedTable creates a table with deterministic pseudo-random unit vectors
// for the given vocabulary. The same word always maps to the same vector,
// which makes it useful for tests and demos without a real embedding file.
func NewHashedTable(dimensions int, words ...string) *Table {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	t := &Table{dimension: dimensions, words: make(map[string][]float64, len(words))}
	for _, word := range words {
		t.words[word] = hashedVector(word, dimensions)
	}
	return t
}

// hashedVector derives a unit vector from the MD5 hash of word.
func hashedVector(word string, dimensions int) []float64 {
	vec := make([]float64, dimensions)
	hash := md5.Sum([]byte(word))

	for i := 0; i < dimensions; i++ {
		// Use 4 bytes from the hash as a seed for each dimension, wrapping around
		hashIdx := (i * 4) % len(hash)
		seed := binary.LittleEndian.Uint32(append(hash[hashIdx:], hash[:4]...))
		seed ^= uint32(i) * 2654435761

		// Generate a value between -1 and 1 based on the seed
		vec[i] = float64(seed%1000)/500.0 - 1.0
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}
