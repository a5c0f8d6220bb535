package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/resultstore"
	"github.com/localrivet/clustersummary/internal/summarizer"
	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/tools"
	"github.com/localrivet/clustersummary/internal/vector"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// DefaultRequestTimeout bounds the work done for a single request.
const DefaultRequestTimeout = 30 * time.Second

// DocumentSummarizer summarizes raw or segmented documents.
type DocumentSummarizer interface {
	SummarizeText(ctx context.Context, text string) (*summarizer.Result, error)
	SummarizeSentences(ctx context.Context, sentences []string) (*summarizer.Result, error)
}

// Scorer scores a candidate against one or more references.
type Scorer interface {
	ScoreMulti(references []string, candidate string) float64
}

// Dependencies are the components the handlers call into. Store and
// Embedder are only needed for search.
type Dependencies struct {
	Summarizer DocumentSummarizer
	Scorer     Scorer
	Embedder   vector.Embedder
	Store      resultstore.Store
	Metrics    *telemetry.MetricsCollector
	Table      *vector.Table

	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Handlers implements the tool operations independently of the transport.
type Handlers struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewHandlers validates deps and fills defaults.
func NewHandlers(deps Dependencies) (*Handlers, error) {
	if deps.Summarizer == nil || deps.Scorer == nil || deps.Metrics == nil {
		return nil, errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{deps: deps, logger: logger}, nil
}

// SummarizeText splits and summarizes a raw document.
func (h *Handlers) SummarizeText(ctx context.Context, req tools.SummarizeTextRequest) (tools.SummarizeResponse, error) {
	h.logger.Info("Processing summarize_text request", "text_length", len(req.Text))

	ctx, cancel := context.WithTimeout(ctx, h.deps.RequestTimeout)
	defer cancel()

	res, err := h.deps.Summarizer.SummarizeText(ctx, req.Text)
	if err != nil {
		return tools.SummarizeResponse{}, h.wrapSummarizeError(err, "text_length", len(req.Text))
	}
	return summarizeResponse(res, req.IncludeDetails), nil
}

// SummarizeSentences summarizes an already segmented document.
func (h *Handlers) SummarizeSentences(ctx context.Context, req tools.SummarizeSentencesRequest) (tools.SummarizeResponse, error) {
	h.logger.Info("Processing summarize_sentences request", "sentences", len(req.Sentences))

	ctx, cancel := context.WithTimeout(ctx, h.deps.RequestTimeout)
	defer cancel()

	res, err := h.deps.Summarizer.SummarizeSentences(ctx, req.Sentences)
	if err != nil {
		return tools.SummarizeResponse{}, h.wrapSummarizeError(err, "sentences", len(req.Sentences))
	}
	return summarizeResponse(res, req.IncludeDetails), nil
}

func (h *Handlers) wrapSummarizeError(err error, key string, value int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = errortypes.TimeoutError(err, "summarization exceeded the request deadline").WithField(key, value)
	}
	errortypes.LogError(h.logger, err)
	return err
}

func summarizeResponse(res *summarizer.Result, details bool) tools.SummarizeResponse {
	resp := tools.SummarizeResponse{
		Status:  tools.StatusSuccess,
		Summary: res.Summary,
		K:       res.K,
	}
	if !details {
		return resp
	}
	for _, sel := range res.Selections {
		resp.Selections = append(resp.Selections, tools.Selection{
			Index:    sel.Index,
			Text:     sel.Text,
			Position: sel.Position,
		})
	}
	d := res.Diagnostics
	resp.Diagnostics = &tools.Diagnostics{
		Sentences:    d.Sentences,
		Kept:         d.Kept,
		Dropped:      d.Dropped,
		OOVSentences: len(d.OOVSentences),
		Iterations:   d.Iterations,
		Inertia:      d.Inertia,
	}
	return resp
}

// ScoreSummary scores a candidate summary against its references.
func (h *Handlers) ScoreSummary(_ context.Context, req tools.ScoreSummaryRequest) (tools.ScoreSummaryResponse, error) {
	h.logger.Info("Processing score_summary request", "candidate_length", len(req.Candidate))

	refs := req.References
	if req.Reference != "" {
		refs = append([]string{req.Reference}, refs...)
	}
	if len(refs) == 0 {
		err := errortypes.ValidationError(errors.New("no reference given"), "cannot score summary")
		errortypes.LogError(h.logger, err)
		return tools.ScoreSummaryResponse{}, err
	}

	return tools.ScoreSummaryResponse{
		Status: tools.StatusSuccess,
		Score:  h.deps.Scorer.ScoreMulti(refs, req.Candidate),
	}, nil
}

// SearchSummaries finds stored batch summaries close to the query text.
func (h *Handlers) SearchSummaries(_ context.Context, req tools.SearchSummariesRequest) (tools.SearchSummariesResponse, error) {
	h.logger.Info("Processing search_summaries request", "query", req.Query, "limit", req.Limit)

	if h.deps.Store == nil || h.deps.Embedder == nil {
		err := errortypes.ConfigError(ErrMissingDependencies, "search needs a result store")
		errortypes.LogError(h.logger, err)
		return tools.SearchSummariesResponse{}, err
	}

	// Set default limit if not specified
	limit := req.Limit
	if limit <= 0 {
		limit = tools.DefaultSearchLimit
	}

	query, found := h.deps.Embedder.Embed(preprocess.Tokenize(req.Query))
	if found == 0 || vector.IsZero(query) {
		err := errortypes.ValidationError(errortypes.ErrOutOfVocabulary, "query has no known word").
			WithField("query", req.Query)
		errortypes.LogError(h.logger, err)
		return tools.SearchSummariesResponse{}, err
	}

	matches, err := h.deps.Store.Search(query, limit)
	if err != nil {
		errortypes.LogError(h.logger, err)
		return tools.SearchSummariesResponse{}, err
	}

	resp := tools.SearchSummariesResponse{Status: tools.StatusSuccess, Results: []tools.SearchResult{}}
	for _, m := range matches {
		resp.Results = append(resp.Results, tools.SearchResult{
			ID:         m.Record.ID,
			RunID:      m.Record.RunID,
			Row:        m.Record.Row,
			Summary:    m.Record.Summary,
			Similarity: m.Similarity,
		})
	}
	h.logger.Info("Successfully searched summaries", "count", len(resp.Results))
	return resp, nil
}

// PipelineStats reports pipeline health and metrics.
func (h *Handlers) PipelineStats(_ context.Context, req tools.PipelineStatsRequest) (tools.PipelineStatsResponse, error) {
	health, err := summarizer.CreateHealthReportJSON(h.deps.Metrics, h.deps.Table)
	if err != nil {
		err = errortypes.InternalError(err, "failed to build health report")
		errortypes.LogError(h.logger, err)
		return tools.PipelineStatsResponse{}, err
	}
	resp := tools.PipelineStatsResponse{
		Status:  tools.StatusSuccess,
		Health:  health,
		Metrics: h.deps.Metrics.GetReport(),
	}
	if req.Reset {
		h.deps.Metrics.Reset()
	}
	return resp, nil
}
