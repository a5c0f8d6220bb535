// Package dataset reads tabular documents with a Text column and an optional
// Summary column holding the reference summary.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

// Column names looked up case-insensitively in the header row.
const (
	TextColumn    = "Text"
	SummaryColumn = "Summary"
)

// Row is one document of a dataset.
type Row struct {
	// Number is the zero-based position of the row after the header.
	Number  int
	Text    string
	Summary string
}

// HasReference reports whether the row carries a reference summary.
func (r Row) HasReference() bool {
	return strings.TrimSpace(r.Summary) != ""
}

// Options controls how a dataset is read.
type Options struct {
	// Limit caps the number of rows read. Zero reads everything.
	Limit int

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, opts Options) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.ExternalError(err, "cannot open dataset").WithField("path", path)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV reads a header row followed by data rows. The Text column is
// required and the Summary column is optional.
func ReadCSV(r io.Reader, opts Options) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errortypes.ValidationError(errors.New("dataset is empty"), "invalid dataset")
		}
		return nil, errortypes.ValidationError(err, "cannot read dataset header")
	}
	textIdx, summaryIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, TextColumn):
			textIdx = i
		case strings.EqualFold(name, SummaryColumn):
			summaryIdx = i
		}
	}
	if textIdx < 0 {
		return nil, errortypes.ValidationError(fmt.Errorf("missing %q column in header %v", TextColumn, header), "invalid dataset")
	}

	var rows []Row
	for opts.Limit <= 0 || len(rows) < opts.Limit {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errortypes.ValidationError(err, "cannot read dataset row").WithField("row", len(rows))
		}
		row := Row{Number: len(rows)}
		if textIdx < len(record) {
			row.Text = record[textIdx]
		}
		if summaryIdx >= 0 && summaryIdx < len(record) {
			row.Summary = record[summaryIdx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes a header row followed by records.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}
