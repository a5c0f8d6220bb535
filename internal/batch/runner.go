// Package batch summarizes and scores dataset rows in parallel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/localrivet/clustersummary/internal/dataset"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/resultstore"
	"github.com/localrivet/clustersummary/internal/summarizer"
	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/util"
	"github.com/localrivet/clustersummary/internal/vector"
	"golang.org/x/sync/errgroup"
)

// Default runner settings.
const (
	DefaultWorkers         = 4
	DefaultDocumentTimeout = 30 * time.Second
)

// DocumentSummarizer summarizes one raw document.
type DocumentSummarizer interface {
	SummarizeText(ctx context.Context, text string) (*summarizer.Result, error)
}

// Scorer compares a candidate summary with a reference.
type Scorer interface {
	Score(reference, candidate string) float64
}

// Config holds configuration for a Runner.
type Config struct {
	Summarizer DocumentSummarizer
	Scorer     Scorer

	// Embedder, when set, embeds each summary for the result store.
	Embedder vector.Embedder

	// Store, when set, receives one record per row.
	Store resultstore.Store

	Workers         int
	DocumentTimeout time.Duration

	Metrics *telemetry.MetricsCollector
	Logger  *slog.Logger
}

// Outcome is the result of one row. Err is set when the row failed; the
// other rows of the run are unaffected.
type Outcome struct {
	Row        int
	DocumentID string
	Summary    string
	Reference  string
	Score      float64
	Scored     bool
	K          int
	Duration   time.Duration
	Err        error
}

// Report is the result of a whole run. Outcomes keep the order of the input rows.
type Report struct {
	RunID     string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Scored    int
	MeanScore float64
	Elapsed   time.Duration
}

// Runner drives a summarizer over dataset rows with a bounded worker pool.
type Runner struct {
	summarizer DocumentSummarizer
	scorer     Scorer
	embedder   vector.Embedder
	store      resultstore.Store
	workers    int
	timeout    time.Duration
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// NewRunner creates a Runner. A summarizer is required.
func NewRunner(config *Config) (*Runner, error) {
	if config == nil || config.Summarizer == nil {
		return nil, errortypes.ConfigError(errors.New("summarizer is required"), "cannot create batch runner")
	}
	r := &Runner{
		summarizer: config.Summarizer,
		scorer:     config.Scorer,
		embedder:   config.Embedder,
		store:      config.Store,
		workers:    config.Workers,
		timeout:    config.DocumentTimeout,
		metrics:    config.Metrics,
		logger:     config.Logger,
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	if r.timeout <= 0 {
		r.timeout = DefaultDocumentTimeout
	}
	if r.metrics == nil {
		r.metrics = telemetry.NewMetricsCollector()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Run processes rows and returns a report. Only cancellation of ctx aborts
// the run; in that case the partial report is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, rows []dataset.Row) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:    uuid.New().String(),
		Outcomes: make([]Outcome, len(rows)),
	}
	logger := r.logger.With("run_id", report.RunID)
	logger.Info("Starting batch run", "rows", len(rows), "workers", r.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Outcomes[i] = r.process(gctx, rows[i])
			if err := r.save(report.RunID, report.Outcomes[i]); err != nil {
				errortypes.LogError(logger, err)
			}
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	var total float64
	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			report.Failed++
		case o.DocumentID != "":
			report.Succeeded++
		}
		if o.Scored {
			report.Scored++
			total += o.Score
		}
	}
	if report.Scored > 0 {
		report.MeanScore = total / float64(report.Scored)
	}
	report.Elapsed = time.Since(start)

	r.metrics.IncrementCounter(telemetry.MetricBatchRuns, 1)
	r.metrics.RecordTimestamp(telemetry.MetricBatchLastRun)
	logger.Info("Finished batch run",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"mean_score", report.MeanScore,
		"elapsed", report.Elapsed)

	return report, runErr
}

func (r *Runner) process(ctx context.Context, row dataset.Row) Outcome {
	out := Outcome{
		Row:        row.Number,
		DocumentID: util.DocumentID(row.Text),
		Reference:  row.Summary,
	}
	start := time.Now()

	dctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.summarizer.SummarizeText(dctx, row.Text)
	out.Duration = time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			r.metrics.IncrementCounter(telemetry.MetricBatchTimeouts, 1)
			err = errortypes.TimeoutError(err, fmt.Sprintf("document exceeded %v", r.timeout)).WithField("row", row.Number)
		}
		r.logger.Warn("Row failed", "row", row.Number, "error", err)
		out.Err = err
		return out
	}

	out.Summary = res.Summary
	out.K = res.K
	if r.scorer != nil && row.HasReference() {
		out.Score = r.scorer.Score(row.Summary, res.Summary)
		out.Scored = true
	}
	return out
}

func (r *Runner) save(runID string, o Outcome) error {
	if r.store == nil {
		return nil
	}
	rec := resultstore.Record{
		ID:           fmt.Sprintf("%s/%d", runID, o.Row),
		RunID:        runID,
		Row:          o.Row,
		DocumentID:   o.DocumentID,
		Summary:      o.Summary,
		Reference:    o.Reference,
		Score:        o.Score,
		Scored:       o.Scored,
		ClusterCount: o.K,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	} else if r.embedder != nil {
		if vec, found := r.embedder.Embed(preprocess.Tokenize(o.Summary)); found > 0 && !vector.IsZero(vec) {
			rec.Embedding = vec
		}
	}
	return r.store.Save(rec)
}
