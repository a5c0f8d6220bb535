package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

const sample = `Id,Text,Summary
1,"The cat sat on the mat. Dogs bark loudly at night.",A cat and some dogs.
2,"Second document, with a comma.",
3,Third document.,Third.
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample), Options{})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Text != "The cat sat on the mat. Dogs bark loudly at night." || rows[0].Summary != "A cat and some dogs." {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Text != "Second document, with a comma." || rows[1].HasReference() {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
	for i, row := range rows {
		if row.Number != i {
			t.Errorf("row %d has number %d", i, row.Number)
		}
	}
}

func TestReadCSVLimit(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample), Options{Limit: 2})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing text column", "Id,Summary\n1,x\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(test.input), Options{})
			if !errortypes.IsValidationError(err) {
				t.Errorf("ReadCSV() error = %v, want validation error", err)
			}
		})
	}
}

func TestReadCSVDelimiterAndCase(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("text;summary\nHello there friend.;Hi.\n"), Options{Comma: ';'})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Summary != "Hi." {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestReadFileAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path, Options{})
	if err != nil || len(rows) != 3 {
		t.Fatalf("ReadFile() = %d rows, %v", len(rows), err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{}); err == nil {
		t.Errorf("expected error for missing file")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []string{"Text", "Summary"}, [][]string{{"a, b", "c"}}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "Text,Summary\n\"a, b\",c\n" {
		t.Errorf("WriteCSV() = %q", got)
	}
}
