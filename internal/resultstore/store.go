// Package resultstore persists batch summarization results so runs can be
// listed, compared and searched after the process exits.
package resultstore

import (
	"time"
)

// Record is the stored outcome of one dataset row.
type Record struct {
	ID           string
	RunID        string
	Row          int
	DocumentID   string
	Summary      string
	Reference    string
	Score        float64
	Scored       bool
	ClusterCount int
	Error        string

	// Embedding is the sentence embedding of the summary, used by Search.
	Embedding []float64
	CreatedAt time.Time
}

// Match is a stored record and its similarity to a query vector.
type Match struct {
	Record     Record
	Similarity float64
}

// Store defines the interface for storing and retrieving batch results.
type Store interface {
	// Initialize initializes the store with configuration options.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Save inserts or replaces a record.
	Save(record Record) error

	// ListRun returns the records of a run ordered by row.
	ListRun(runID string) ([]Record, error)

	// DeleteRun removes every record of a run and reports how many were removed.
	DeleteRun(runID string) (int, error)

	// Search returns the stored summaries most similar to query.
	Search(query []float64, limit int) ([]Match, error)
}
