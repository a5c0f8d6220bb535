package vector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Float64SliceToBytes converts a slice of float64 to a byte slice.
func Float64SliceToBytes(values []float64) ([]byte, error) {
	buf := new(bytes.Buffer)

	// First write the length of the slice
	err := binary.Write(buf, binary.LittleEndian, int32(len(values)))
	if err != nil {
		return nil, fmt.Errorf("failed to write vector length: %w", err)
	}

	// Then write the float64 values
	err = binary.Write(buf, binary.LittleEndian, values)
	if err != nil {
		return nil, fmt.Errorf("failed to write vector values: %w", err)
	}

	return buf.Bytes(), nil
}

// BytesToFloat64Slice converts a byte slice to a slice of float64.
func BytesToFloat64Slice(data []byte) ([]float64, error) {
	buf := bytes.NewReader(data)

	var length int32
	err := binary.Read(buf, binary.LittleEndian, &length)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector length: %w", err)
	}
	if length < 0 || int(length)*8 > buf.Len() {
		return nil, fmt.Errorf("invalid vector length %d for %d bytes", length, len(data))
	}

	values := make([]float64, length)
	err = binary.Read(buf, binary.LittleEndian, values)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector values: %w", err)
	}

	return values, nil
}

// EuclideanDistance returns the L2 distance between two vectors.
func EuclideanDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same dimension: %d != %d", len(a), len(b))
	}
	return floats.Distance(a, b, 2), nil
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// The result is a value between -1 and 1, where 1 means the vectors are identical,
// 0 means they are orthogonal, and -1 means they are opposite.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same dimension: %d != %d", len(a), len(b))
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("one or both vectors have zero magnitude")
	}

	similarity := floats.Dot(a, b) / (normA * normB)
	return math.Max(-1, math.Min(1, similarity)), nil
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
