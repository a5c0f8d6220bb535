// Package clustersummary wires the extractive summarization pipeline: a word
// vector table, the cluster summarizer, the BLEU evaluator, the result store
// and the batch runner.
package clustersummary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/localrivet/clustersummary/internal/batch"
	"github.com/localrivet/clustersummary/internal/cluster"
	"github.com/localrivet/clustersummary/internal/config"
	"github.com/localrivet/clustersummary/internal/dataset"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/evaluate"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/resultstore"
	"github.com/localrivet/clustersummary/internal/segment"
	"github.com/localrivet/clustersummary/internal/server"
	"github.com/localrivet/clustersummary/internal/summarizer"
	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/vector"
)

// Config represents the configuration for the ClusterSummary service.
type Config = config.Config

// Service owns the loaded vector table and every component built on it.
type Service struct {
	config     *config.Config
	metrics    *telemetry.MetricsCollector
	table      *vector.Table
	embedder   *vector.SentenceEmbedder
	summarizer *summarizer.ClusterSummarizer
	baseline   *summarizer.LeadSummarizer
	evaluator  *evaluate.Evaluator
	store      resultstore.Store
	runner     *batch.Runner
	logger     *slog.Logger
}

// ServiceOptions defines the options for creating a new Service.
type ServiceOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil.
	Logger     *slog.Logger // External logger. If nil, the configured logger is used.

	// Table replaces loading Config.Vectors.Path.
	Table *vector.Table

	// WithoutStore skips opening the result store.
	WithoutStore bool
}

// DefaultConfig returns the default configuration for the ClusterSummary service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// NewService loads the configuration and the vector table once and builds
// the pipeline components around them.
func NewService(opts ServiceOptions) (*Service, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = cfg.NewLogger()
	}

	s := &Service{
		config:  cfg,
		metrics: telemetry.NewMetricsCollector(),
		logger:  logger,
	}

	s.table = opts.Table
	if s.table == nil {
		table, err := s.loadTable()
		if err != nil {
			return nil, err
		}
		s.table = table
	}
	s.embedder = vector.NewSentenceEmbedder(s.table)

	tokenizer, err := segment.New(cfg.Preprocess.Tokenizer)
	if err != nil {
		return nil, errortypes.ConfigError(err, "invalid preprocess.tokenizer")
	}

	preprocessor := preprocess.New(cfg.Preprocess.ShortSentenceTokens)
	s.summarizer, err = summarizer.NewClusterSummarizer(&summarizer.ClusterSummarizerConfig{
		Embedder:     s.embedder,
		Tokenizer:    tokenizer,
		Preprocessor: preprocessor,
		KMeans: cluster.Options{
			Seed:          cfg.Clustering.Seed,
			MaxIterations: cfg.Clustering.MaxIterations,
			Restarts:      cfg.Clustering.Restarts,
			Tolerance:     cfg.Clustering.Tolerance,
		},
		Separator: cfg.Clustering.Separator,
		Metrics:   s.metrics,
		Logger:    logger.With("component", "summarizer"),
	})
	if err != nil {
		return nil, err
	}

	s.baseline = summarizer.NewLeadSummarizer(&summarizer.LeadSummarizerConfig{
		Tokenizer:    tokenizer,
		Preprocessor: preprocessor,
		Separator:    cfg.Clustering.Separator,
	})

	smoothing, err := evaluate.ParseSmoothing(cfg.Evaluation.Smoothing)
	if err != nil {
		return nil, errortypes.ConfigError(err, "invalid evaluation.smoothing")
	}
	s.evaluator = evaluate.New(&evaluate.Config{
		MaxOrder:  cfg.Evaluation.MaxOrder,
		Smoothing: smoothing,
	}, s.metrics)

	if !opts.WithoutStore {
		store := resultstore.NewSQLiteStore()
		if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
			return nil, err
		}
		s.store = store
	}

	timeout, err := cfg.DocumentTimeout()
	if err != nil {
		s.Close()
		return nil, err
	}
	runnerConfig := &batch.Config{
		Summarizer:      s.summarizer,
		Scorer:          s.evaluator,
		Embedder:        s.embedder,
		Store:           s.store,
		Workers:         cfg.Batch.Workers,
		DocumentTimeout: timeout,
		Metrics:         s.metrics,
		Logger:          logger.With("component", "batch"),
	}
	s.runner, err = batch.NewRunner(runnerConfig)
	if err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("ClusterSummary service initialized",
		"words", s.table.Len(),
		"dimension", s.table.Dimension(),
		"tokenizer", cfg.Preprocess.Tokenizer)
	return s, nil
}

func (s *Service) loadTable() (*vector.Table, error) {
	start := time.Now()
	table, report, err := vector.LoadTable(s.config.Vectors.Path, s.config.Vectors.Dimension, s.logger.With("component", "vectors"))
	s.metrics.IncrementCounter(telemetry.MetricVectorLinesRead, int64(report.Lines))
	s.metrics.IncrementCounter(telemetry.MetricVectorLinesMalformed, int64(report.Malformed))
	if err != nil {
		errortypes.LogError(s.logger, err)
		return nil, err
	}
	s.metrics.SetGauge(telemetry.MetricVectorWordsLoaded, float64(report.Loaded))
	s.metrics.RecordTimer(telemetry.MetricVectorLoadTime, time.Since(start))
	return table, nil
}

// Summarize splits text into sentences and summarizes it.
func (s *Service) Summarize(ctx context.Context, text string) (*summarizer.Result, error) {
	return s.summarizer.SummarizeText(ctx, text)
}

// SummarizeSentences summarizes an already segmented document.
func (s *Service) SummarizeSentences(ctx context.Context, sentences []string) (*summarizer.Result, error) {
	return s.summarizer.SummarizeSentences(ctx, sentences)
}

// Baseline returns the leading sentences of text, as many as the cluster
// summary would select.
func (s *Service) Baseline(text string) (string, error) {
	return s.baseline.Summarize(text)
}

// Score returns the BLEU score of candidate against reference.
func (s *Service) Score(reference, candidate string) float64 {
	return s.evaluator.Score(reference, candidate)
}

// RunBatch reads the dataset at path and summarizes every row.
func (s *Service) RunBatch(ctx context.Context, path string, limit int) (*batch.Report, error) {
	rows, err := dataset.ReadFile(path, dataset.Options{Limit: limit})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded dataset", "path", path, "rows", len(rows))
	return s.runner.Run(ctx, rows)
}

// Dependencies returns the components the tool servers call into.
func (s *Service) Dependencies() server.Dependencies {
	deps := server.Dependencies{
		Summarizer: s.summarizer,
		Scorer:     s.evaluator,
		Embedder:   s.embedder,
		Store:      s.store,
		Metrics:    s.metrics,
		Table:      s.table,
		Logger:     s.logger.With("component", "server"),
	}
	return deps
}

// NewMCPServer returns an initialized stdio MCP server.
func (s *Service) NewMCPServer() (*server.MCPToolServer, error) {
	srv := server.NewMCPToolServer(s.Dependencies())
	if err := srv.Initialize(); err != nil {
		return nil, err
	}
	return srv, nil
}

// NewHTTPServer returns an initialized JSON API server. An empty addr uses
// the configured one.
func (s *Service) NewHTTPServer(addr string) (*server.HTTPServer, error) {
	if addr == "" {
		addr = s.config.HTTP.Addr
	}
	srv := server.NewHTTPServer(addr, s.Dependencies())
	if err := srv.Initialize(); err != nil {
		return nil, err
	}
	return srv, nil
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *Config {
	return s.config
}

// Metrics returns the collector shared by every component.
func (s *Service) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// Table returns the loaded vector table.
func (s *Service) Table() *vector.Table {
	return s.table
}

// Store returns the result store, or nil when it was not opened.
func (s *Service) Store() resultstore.Store {
	return s.store
}

// Close releases the result store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	s.logger.Info("Closing result store")
	err := s.store.Close()
	s.store = nil
	return err
}

// ReportHeader is the header of the CSV written by WriteReport.
var ReportHeader = []string{"Row", "Summary", "Reference", "Score", "K", "Error"}

// WriteReport writes one CSV line per outcome of report.
func WriteReport(w io.Writer, report *batch.Report) error {
	records := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		score, errText := "", ""
		if o.Scored {
			score = strconv.FormatFloat(o.Score, 'f', 4, 64)
		}
		if o.Err != nil {
			errText = o.Err.Error()
		}
		records = append(records, []string{
			strconv.Itoa(o.Row),
			o.Summary,
			o.Reference,
			score,
			strconv.Itoa(o.K),
			errText,
		})
	}
	if err := dataset.WriteCSV(w, ReportHeader, records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
