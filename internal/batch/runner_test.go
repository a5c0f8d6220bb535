package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localrivet/clustersummary/internal/dataset"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/evaluate"
	"github.com/localrivet/clustersummary/internal/logger"
	"github.com/localrivet/clustersummary/internal/resultstore"
	"github.com/localrivet/clustersummary/internal/segment"
	"github.com/localrivet/clustersummary/internal/summarizer"
	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/vector"
)

// mockSummarizer echoes the first word of a document, fails on "fail" and
// blocks until cancelled on "slow".
type mockSummarizer struct {
	calls atomic.Int32
}

func (m *mockSummarizer) SummarizeText(ctx context.Context, text string) (*summarizer.Result, error) {
	m.calls.Add(1)
	switch {
	case strings.HasPrefix(text, "fail"):
		return nil, errortypes.EmptyDocumentError(0)
	case strings.HasPrefix(text, "slow"):
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &summarizer.Result{Summary: strings.Fields(text)[0], K: 1}, nil
}

type exactScorer struct{}

func (exactScorer) Score(reference, candidate string) float64 {
	if reference == candidate {
		return 1
	}
	return 0
}

func TestRunnerKeepsRowOrderAndIsolatesFailures(t *testing.T) {
	rows := []dataset.Row{
		{Number: 0, Text: "alpha one two", Summary: "alpha"},
		{Number: 1, Text: "fail here"},
		{Number: 2, Text: "beta three four", Summary: "other"},
		{Number: 3, Text: "gamma five six"},
	}
	metrics := telemetry.NewMetricsCollector()
	runner, err := NewRunner(&Config{
		Summarizer: &mockSummarizer{},
		Scorer:     exactScorer{},
		Workers:    2,
		Metrics:    metrics,
		Logger:     logger.Discard(),
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	report, err := runner.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.RunID == "" {
		t.Errorf("RunID is empty")
	}
	if report.Succeeded != 3 || report.Failed != 1 || report.Scored != 2 {
		t.Errorf("report counts = %d/%d/%d, want 3/1/2", report.Succeeded, report.Failed, report.Scored)
	}
	if report.MeanScore != 0.5 {
		t.Errorf("MeanScore = %v, want 0.5", report.MeanScore)
	}

	wantSummaries := []string{"alpha", "", "beta", "gamma"}
	for i, o := range report.Outcomes {
		if o.Row != i {
			t.Errorf("outcome %d has row %d", i, o.Row)
		}
		if o.Summary != wantSummaries[i] {
			t.Errorf("outcome %d summary = %q, want %q", i, o.Summary, wantSummaries[i])
		}
	}
	if !errors.Is(report.Outcomes[1].Err, errortypes.ErrEmptyDocument) {
		t.Errorf("row 1 error = %v, want ErrEmptyDocument", report.Outcomes[1].Err)
	}
	if report.Outcomes[3].Scored {
		t.Errorf("row without reference should not be scored")
	}
	if metrics.GetCounter(telemetry.MetricBatchRuns) != 1 {
		t.Errorf("batch run counter not incremented")
	}
}

func TestRunnerDocumentTimeout(t *testing.T) {
	metrics := telemetry.NewMetricsCollector()
	runner, err := NewRunner(&Config{
		Summarizer:      &mockSummarizer{},
		DocumentTimeout: 20 * time.Millisecond,
		Metrics:         metrics,
		Logger:          logger.Discard(),
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	report, err := runner.Run(context.Background(), []dataset.Row{
		{Number: 0, Text: "slow document"},
		{Number: 1, Text: "fast document"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if errortypes.TypeOf(report.Outcomes[0].Err) != errortypes.ErrorTypeTimeout {
		t.Errorf("slow row error = %v, want timeout error", report.Outcomes[0].Err)
	}
	if report.Outcomes[1].Err != nil || report.Outcomes[1].Summary != "fast" {
		t.Errorf("fast row = %+v, want success", report.Outcomes[1])
	}
	if metrics.GetCounter(telemetry.MetricBatchTimeouts) != 1 {
		t.Errorf("timeout counter = %d, want 1", metrics.GetCounter(telemetry.MetricBatchTimeouts))
	}
}

func TestRunnerCancelled(t *testing.T) {
	mock := &mockSummarizer{}
	runner, err := NewRunner(&Config{Summarizer: mock, Workers: 1, Logger: logger.Discard()})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, []dataset.Row{{Text: "alpha"}, {Number: 1, Text: "beta"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if report == nil || len(report.Outcomes) != 2 {
		t.Fatalf("expected a partial report with two slots")
	}
	if mock.calls.Load() != 0 {
		t.Errorf("summarizer called %d times after cancellation", mock.calls.Load())
	}
}

func TestNewRunnerRequiresSummarizer(t *testing.T) {
	if _, err := NewRunner(&Config{}); err == nil {
		t.Errorf("expected error without summarizer")
	}
}

func TestRunnerWithPipelineAndStore(t *testing.T) {
	words := map[string][]float64{}
	for _, w := range []string{"cat", "mat", "sat", "red", "old"} {
		words[w] = []float64{1, 0}
	}
	for _, w := range []string{"dogs", "bark", "loudly", "night", "barking", "disturb", "sleep", "loud"} {
		words[w] = []float64{0, 1}
	}
	table, err := vector.NewTable(2, words)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	embedder := vector.NewSentenceEmbedder(table)
	cs, err := summarizer.NewClusterSummarizer(&summarizer.ClusterSummarizerConfig{
		Embedder:  embedder,
		Tokenizer: segment.Regex{},
		Separator: summarizer.DefaultSeparator,
		Logger:    logger.Discard(),
	})
	if err != nil {
		t.Fatalf("NewClusterSummarizer() error = %v", err)
	}

	store := resultstore.NewSQLiteStore()
	if err := store.Initialize(filepath.Join(t.TempDir(), "results.db")); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer store.Close()

	runner, err := NewRunner(&Config{
		Summarizer: cs,
		Scorer:     evaluate.New(nil, nil),
		Embedder:   embedder,
		Store:      store,
		Logger:     logger.Discard(),
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	doc := "The cat sat on the mat. Dogs bark loudly at night. The mat was red and old. Loud barking dogs disturb sleep."
	want := "The cat sat on the mat. Dogs bark loudly at night."
	report, err := runner.Run(context.Background(), []dataset.Row{
		{Number: 0, Text: doc, Summary: want},
		{Number: 1, Text: "Hi. Ok."},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcomes[0].Summary != want || report.Outcomes[0].Score != 1 {
		t.Errorf("row 0 = %+v", report.Outcomes[0])
	}
	if !errors.Is(report.Outcomes[1].Err, errortypes.ErrEmptyDocument) {
		t.Errorf("row 1 error = %v, want ErrEmptyDocument", report.Outcomes[1].Err)
	}

	records, err := store.ListRun(report.RunID)
	if err != nil {
		t.Fatalf("ListRun() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("stored %d records, want 2", len(records))
	}
	if records[0].Summary != want || records[0].ClusterCount != 2 || len(records[0].Embedding) != 2 {
		t.Errorf("unexpected stored record: %+v", records[0])
	}
	if records[1].Error == "" {
		t.Errorf("failed row stored without error")
	}
}
