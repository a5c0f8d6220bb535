package vector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/localrivet/clustersummary/internal/errortypes"
)

// maxLoggedMalformed caps the number of malformed lines logged one by one.
const maxLoggedMalformed = 10

// Table is an immutable mapping from word to a fixed-dimension vector.
// It is safe for concurrent reads once loaded.
type Table struct {
	dimension int
	words     map[string][]float64
}

// LoadReport describes what happened while reading a vector resource.
type LoadReport struct {
	Lines      int
	Loaded     int
	Malformed  int
	Duplicates int

	// Samples holds the first malformed-line errors, each matching
	// errortypes.ErrMalformedVectorLine.
	Samples []error
}

// NewTable builds a table from an in-memory mapping. Vectors whose length
// differs from dimension are rejected.
func NewTable(dimension int, words map[string][]float64) (*Table, error) {
	if dimension <= 0 {
		return nil, errortypes.ValidationError(fmt.Errorf("dimension must be positive, got %d", dimension), "invalid vector table")
	}
	t := &Table{dimension: dimension, words: make(map[string][]float64, len(words))}
	for word, vec := range words {
		if len(vec) != dimension {
			return nil, errortypes.ValidationError(
				fmt.Errorf("word %q has %d components, want %d", word, len(vec), dimension),
				"invalid vector table")
		}
		t.words[word] = append([]float64(nil), vec...)
	}
	return t, nil
}

// LoadTable reads a whitespace-delimited vector resource from path.
// Files ending in .gz are decompressed on the fly.
func LoadTable(path string, dimension int, logger *slog.Logger) (*Table, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, errortypes.ResourceNotFoundError(err, path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, LoadReport{}, errortypes.ResourceNotFoundError(err, path)
		}
		defer gz.Close()
		r = gz
	}

	if logger == nil {
		logger = slog.Default()
	}
	table, report, err := ReadTable(r, dimension, logger.With("path", path))
	if err != nil {
		var appErr *errortypes.AppError
		if !errors.As(err, &appErr) {
			err = errortypes.ResourceNotFoundError(err, path)
		}
		return nil, report, err
	}
	return table, report, nil
}

// ReadTable parses lines of the form "word v1 v2 ... vD". Lines with the wrong
// number of components or non-numeric components are discarded and counted.
func ReadTable(r io.Reader, dimension int, logger *slog.Logger) (*Table, LoadReport, error) {
	var report LoadReport
	if dimension <= 0 {
		return nil, report, errortypes.ValidationError(fmt.Errorf("dimension must be positive, got %d", dimension), "invalid vector table")
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Table{dimension: dimension, words: make(map[string][]float64)}
	br := bufio.NewReaderSize(r, 1<<16)

	for {
		line, readErr := br.ReadString('\n')
		if len(line) > 0 {
			report.Lines++
			word, vec, err := parseLine(line, report.Lines, dimension)
			switch {
			case err != nil:
				report.Malformed++
				if len(report.Samples) < maxLoggedMalformed {
					report.Samples = append(report.Samples, err)
					logger.Warn("Skipping malformed vector line", "line", report.Lines, "error", err)
				}
			case word != "":
				if _, exists := t.words[word]; exists {
					report.Duplicates++
				}
				t.words[word] = vec
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, report, fmt.Errorf("failed to read vector resource: %w", readErr)
		}
	}

	report.Loaded = len(t.words)
	if report.Malformed > 0 {
		logger.Warn("Vector resource contained malformed lines", "malformed", report.Malformed, "lines", report.Lines)
	}
	logger.Info("Loaded word vectors", "words", report.Loaded, "dimension", dimension)
	return t, report, nil
}

// parseLine returns an empty word and no error for blank lines.
func parseLine(line string, number, dimension int) (string, []float64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, nil
	}
	if len(fields)-1 != dimension {
		return "", nil, errortypes.MalformedVectorLineError(number,
			fmt.Sprintf("expected %d components, got %d", dimension, len(fields)-1))
	}

	vec := make([]float64, dimension)
	for i, field := range fields[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", nil, errortypes.MalformedVectorLineError(number,
				fmt.Sprintf("component %d is not a finite number: %q", i+1, field))
		}
		vec[i] = v
	}
	return fields[0], vec, nil
}

// Dimension returns the vector length shared by every entry.
func (t *Table) Dimension() int {
	return t.dimension
}

// Len returns the number of words in the table.
func (t *Table) Len() int {
	return len(t.words)
}

// Lookup returns the vector for word. The returned slice must not be modified.
func (t *Table) Lookup(word string) ([]float64, bool) {
	vec, ok := t.words[word]
	return vec, ok
}
