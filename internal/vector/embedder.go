// Package vector provides the word vector table, sentence embedding and
// vector utilities used by the summarization pipeline.
package vector

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultEmbeddingDimensions matches the 25d GloVe twitter vectors.
	DefaultEmbeddingDimensions = 25
)

// Embedder turns a token list into a single sentence vector.
type Embedder interface {
	// Embed returns the sentence vector and the number of recognized tokens.
	// A sentence with no recognized token yields the zero vector.
	Embed(tokens []string) ([]float64, int)

	// Dimension returns the length of every vector Embed produces.
	Dimension() int
}

// SentenceEmbedder averages the word vectors of recognized tokens.
type SentenceEmbedder struct {
	table *Table
}

// NewSentenceEmbedder creates an embedder backed by a shared, read-only table.
func NewSentenceEmbedder(table *Table) *SentenceEmbedder {
	return &SentenceEmbedder{table: table}
}

// Embed computes the element-wise mean of the vectors of tokens found in the
// table. Out-of-vocabulary tokens are ignored. When no token is found the
// zero vector is returned together with a count of 0, never NaN.
func (e *SentenceEmbedder) Embed(tokens []string) ([]float64, int) {
	sum := make([]float64, e.table.Dimension())
	found := 0
	for _, token := range tokens {
		vec, ok := e.table.Lookup(token)
		if !ok {
			continue
		}
		floats.Add(sum, vec)
		found++
	}
	if found > 0 {
		floats.Scale(1/float64(found), sum)
	}
	return sum, found
}

// Dimension returns the table dimension.
func (e *SentenceEmbedder) Dimension() int {
	return e.table.Dimension()
}

// Table returns the underlying word vector table.
func (e *SentenceEmbedder) Table() *Table {
	return e.table
}
