package resultstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/vector"
)

// SQLiteStore is an implementation of Store that uses SQLite.
// A single connection is shared, so access is serialized.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS summary_results (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		row_number INTEGER NOT NULL,
		document_id TEXT NOT NULL,
		summary TEXT NOT NULL,
		reference TEXT NOT NULL,
		score REAL NOT NULL,
		scored INTEGER NOT NULL,
		cluster_count INTEGER NOT NULL,
		error TEXT NOT NULL,
		embedding BLOB,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_summary_results_run ON summary_results (run_id, row_number);`,
}

// Initialize initializes the store with the given database path.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbPath = dbPath

	// Open the SQLite database
	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").WithField("path", dbPath)
	}
	s.conn = conn

	for _, stmtSQL := range schema {
		if err := s.exec(stmtSQL); err != nil {
			// Close the connection on error
			s.conn.Close()
			s.conn = nil
			return errortypes.DatabaseError(err, "failed to create schema")
		}
	}

	return nil
}

func (s *SQLiteStore) exec(query string) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// Save inserts or replaces a record.
func (s *SQLiteStore) Save(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errortypes.DatabaseError(fmt.Errorf("store is not initialized"), "cannot save record")
	}

	var embedding []byte
	if len(r.Embedding) > 0 {
		var err error
		embedding, err = vector.Float64SliceToBytes(r.Embedding)
		if err != nil {
			return errortypes.InternalError(err, "failed to encode summary embedding")
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	stmt, err := s.conn.Prepare(`
	INSERT OR REPLACE INTO summary_results
		(id, run_id, row_number, document_id, summary, reference, score, scored, cluster_count, error, embedding, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare insert statement")
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, r.ID)
	stmt.BindText(2, r.RunID)
	stmt.BindInt64(3, int64(r.Row))
	stmt.BindText(4, r.DocumentID)
	stmt.BindText(5, r.Summary)
	stmt.BindText(6, r.Reference)
	stmt.BindFloat(7, r.Score)
	stmt.BindBool(8, r.Scored)
	stmt.BindInt64(9, int64(r.ClusterCount))
	stmt.BindText(10, r.Error)
	if embedding != nil {
		stmt.BindBytes(11, embedding)
	} else {
		stmt.BindNull(11)
	}
	stmt.BindInt64(12, r.CreatedAt.UnixNano())

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to insert result").WithField("id", r.ID)
	}
	return nil
}

const selectColumns = `id, run_id, row_number, document_id, summary, reference, score, scored, cluster_count, error, embedding, created_at`

// ListRun returns the records of a run ordered by row.
func (s *SQLiteStore) ListRun(runID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, errortypes.DatabaseError(fmt.Errorf("store is not initialized"), "cannot list run")
	}

	stmt, err := s.conn.Prepare(`SELECT ` + selectColumns + ` FROM summary_results WHERE run_id = ? ORDER BY row_number;`)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()
	stmt.BindText(1, runID)

	return scanRecords(stmt)
}

// DeleteRun removes every record of a run.
func (s *SQLiteStore) DeleteRun(runID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return 0, errortypes.DatabaseError(fmt.Errorf("store is not initialized"), "cannot delete run")
	}

	stmt, err := s.conn.Prepare(`DELETE FROM summary_results WHERE run_id = ?;`)
	if err != nil {
		return 0, errortypes.DatabaseError(err, "failed to prepare delete statement")
	}
	defer stmt.Reset()
	stmt.BindText(1, runID)

	if _, err := stmt.Step(); err != nil {
		return 0, errortypes.DatabaseError(err, "failed to delete run").WithField("run_id", runID)
	}
	return s.conn.Changes(), nil
}

// Search returns the stored summaries most similar to query by cosine
// similarity, highest first. Records without an embedding are skipped.
func (s *SQLiteStore) Search(query []float64, limit int) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, errortypes.DatabaseError(fmt.Errorf("store is not initialized"), "cannot search results")
	}

	stmt, err := s.conn.Prepare(`SELECT ` + selectColumns + ` FROM summary_results WHERE embedding IS NOT NULL ORDER BY created_at DESC;`)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	records, err := scanRecords(stmt)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, r := range records {
		similarity, err := vector.CosineSimilarity(query, r.Embedding)
		if err != nil {
			// Zero vectors and other dimensions cannot be compared.
			continue
		}
		matches = append(matches, Match{Record: r, Similarity: similarity})
	}

	// Sort results by similarity (highest first)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func scanRecords(stmt *sqlite.Stmt) ([]Record, error) {
	var records []Record
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to execute select statement")
		}
		if !hasRow {
			break // No more rows
		}

		// Column indices are 0-based
		r := Record{
			ID:           stmt.ColumnText(0),
			RunID:        stmt.ColumnText(1),
			Row:          int(stmt.ColumnInt64(2)),
			DocumentID:   stmt.ColumnText(3),
			Summary:      stmt.ColumnText(4),
			Reference:    stmt.ColumnText(5),
			Score:        stmt.ColumnFloat(6),
			Scored:       stmt.ColumnInt64(7) != 0,
			ClusterCount: int(stmt.ColumnInt64(8)),
			Error:        stmt.ColumnText(9),
			CreatedAt:    time.Unix(0, stmt.ColumnInt64(11)),
		}

		if n := stmt.ColumnLen(10); n > 0 {
			buf := make([]byte, n)
			stmt.ColumnBytes(10, buf)
			embedding, err := vector.BytesToFloat64Slice(buf)
			if err != nil {
				return nil, errortypes.DatabaseError(err, "failed to decode embedding").WithField("id", r.ID)
			}
			r.Embedding = embedding
		}
		records = append(records, r)
	}
	return records, nil
}
