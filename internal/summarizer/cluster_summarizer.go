package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/localrivet/clustersummary/internal/cluster"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/segment"
	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/vector"
)

// ClusterSummarizerConfig holds configuration for the ClusterSummarizer.
type ClusterSummarizerConfig struct {
	// Embedder is required. It is shared read-only between calls.
	Embedder vector.Embedder

	// Tokenizer splits raw text into sentences. Defaults to Punkt.
	Tokenizer segment.Tokenizer

	// Preprocessor defaults to the two-token cutoff.
	Preprocessor *preprocess.Preprocessor

	// ClusterCount defaults to cluster.SqrtCount of the original sentence count.
	ClusterCount cluster.CountFunc

	KMeans cluster.Options

	// Separator joins the selected sentences as given; an empty one
	// concatenates them. Use DefaultSeparator for a single space.
	Separator string

	Metrics *telemetry.MetricsCollector
	Logger  *slog.Logger
}

// ClusterSummarizer groups sentence embeddings with k-means and keeps the
// sentence nearest to each centroid, in document order.
type ClusterSummarizer struct {
	embedder     vector.Embedder
	tokenizer    segment.Tokenizer
	preprocessor *preprocess.Preprocessor
	clusterCount cluster.CountFunc
	kmeans       cluster.Options
	separator    string
	metrics      *telemetry.MetricsCollector
	logger       *slog.Logger
}

// Selection is one sentence of a summary.
type Selection struct {
	Index    int     `json:"index"`
	Text     string  `json:"text"`
	Cluster  int     `json:"cluster"`
	Position float64 `json:"position"`
}

// Cluster describes one group of sentences. Members and Representative are
// original sentence indices.
type Cluster struct {
	ID             int       `json:"id"`
	Members        []int     `json:"members"`
	Centroid       []float64 `json:"centroid"`
	Representative int       `json:"representative"`
	Position       float64   `json:"position"`
}

// Diagnostics reports what happened to a document on its way to a summary.
type Diagnostics struct {
	Sentences    int     `json:"sentences"`
	Kept         int     `json:"kept"`
	Dropped      int     `json:"dropped"`
	OOVSentences []int   `json:"oov_sentences,omitempty"`
	Iterations   int     `json:"iterations"`
	Inertia      float64 `json:"inertia"`
}

// Result is a complete summary of one document.
type Result struct {
	Summary     string      `json:"summary"`
	K           int         `json:"k"`
	Selections  []Selection `json:"selections"`
	Clusters    []Cluster   `json:"clusters"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// NewClusterSummarizer creates a ClusterSummarizer, filling defaults for
// every optional setting.
func NewClusterSummarizer(config *ClusterSummarizerConfig) (*ClusterSummarizer, error) {
	if config == nil || config.Embedder == nil {
		return nil, errortypes.ConfigError(errors.New("embedder is required"), "cannot create cluster summarizer")
	}

	s := &ClusterSummarizer{
		embedder:     config.Embedder,
		tokenizer:    config.Tokenizer,
		preprocessor: config.Preprocessor,
		clusterCount: config.ClusterCount,
		kmeans:       config.KMeans,
		separator:    config.Separator,
		metrics:      config.Metrics,
		logger:       config.Logger,
	}
	if s.tokenizer == nil {
		tok, err := segment.NewPunkt()
		if err != nil {
			return nil, errortypes.ConfigError(err, "cannot load sentence tokenizer")
		}
		s.tokenizer = tok
	}
	if s.preprocessor == nil {
		s.preprocessor = preprocess.New(preprocess.DefaultShortSentenceTokens)
	}
	if s.clusterCount == nil {
		s.clusterCount = cluster.SqrtCount
	}
	if s.kmeans == (cluster.Options{}) {
		s.kmeans = cluster.DefaultOptions()
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewMetricsCollector()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Initialize sets up the summarizer with any required configuration.
func (s *ClusterSummarizer) Initialize() error {
	if s.embedder.Dimension() <= 0 {
		return errortypes.ConfigError(fmt.Errorf("embedder dimension %d", s.embedder.Dimension()), "invalid embedder")
	}
	return nil
}

// Summarize splits text into sentences and returns the summary string.
func (s *ClusterSummarizer) Summarize(text string) (string, error) {
	res, err := s.SummarizeText(context.Background(), text)
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// SummarizeText splits text into sentences and summarizes them.
func (s *ClusterSummarizer) SummarizeText(ctx context.Context, text string) (*Result, error) {
	return s.SummarizeSentences(ctx, s.tokenizer.Split(text))
}

// SummarizeSentences summarizes an already segmented document. It either
// returns a complete result or an error, never a partial summary.
func (s *ClusterSummarizer) SummarizeSentences(ctx context.Context, sentences []string) (*Result, error) {
	start := time.Now()
	res, err := s.summarize(ctx, sentences)
	s.metrics.RecordTimer(telemetry.MetricSummarizeTime, time.Since(start))
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricDocumentsFailed, 1)
		return nil, err
	}
	s.metrics.IncrementCounter(telemetry.MetricDocumentsSummarized, 1)
	return res, nil
}

func (s *ClusterSummarizer) summarize(ctx context.Context, sentences []string) (*Result, error) {
	kept := s.preprocessor.Process(sentences)
	diag := Diagnostics{
		Sentences: len(sentences),
		Kept:      len(kept),
		Dropped:   len(sentences) - len(kept),
	}
	s.metrics.IncrementCounter(telemetry.MetricSentencesSeen, int64(diag.Sentences))
	s.metrics.IncrementCounter(telemetry.MetricSentencesDropped, int64(diag.Dropped))
	if len(kept) == 0 {
		return nil, errortypes.EmptyDocumentError(len(sentences))
	}

	points := make([][]float64, len(kept))
	for i, sentence := range kept {
		vec, found := s.embedder.Embed(sentence.Tokens)
		if found == 0 {
			diag.OOVSentences = append(diag.OOVSentences, sentence.Index)
		}
		points[i] = vec
	}
	if len(diag.OOVSentences) > 0 {
		s.metrics.IncrementCounter(telemetry.MetricOOVSentences, int64(len(diag.OOVSentences)))
		s.logger.Debug("Sentences without known words embedded as zero vectors",
			"error", errortypes.ErrOutOfVocabulary, "count", len(diag.OOVSentences))
	}

	k, err := cluster.ClampCount(s.clusterCount(len(sentences)), len(points))
	if err != nil {
		return nil, err
	}

	km, err := cluster.KMeans(ctx, points, k, s.kmeans)
	if err != nil {
		return nil, err
	}
	diag.Iterations = km.Iterations
	diag.Inertia = km.Inertia
	s.metrics.IncrementCounter(telemetry.MetricKMeansIterations, int64(km.Iterations))
	s.metrics.SetGauge(telemetry.MetricClusterCount, float64(k))

	clusters := make([]Cluster, 0, k)
	for id, members := range km.Members() {
		c, err := describeCluster(id, members, kept, points, km.Centroids[id])
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Position != clusters[j].Position {
			return clusters[i].Position < clusters[j].Position
		}
		return clusters[i].Members[0] < clusters[j].Members[0]
	})

	selections := make([]Selection, len(clusters))
	parts := make([]string, len(clusters))
	for i, c := range clusters {
		selections[i] = Selection{
			Index:    c.Representative,
			Text:     sentences[c.Representative],
			Cluster:  c.ID,
			Position: c.Position,
		}
		parts[i] = sentences[c.Representative]
	}

	s.logger.Debug("Summarized document", "sentences", diag.Sentences, "kept", diag.Kept, "k", k, "iterations", km.Iterations)
	return &Result{
		Summary:     strings.Join(parts, s.separator),
		K:           k,
		Selections:  selections,
		Clusters:    clusters,
		Diagnostics: diag,
	}, nil
}

// describeCluster maps point indices back to original sentence indices and
// picks the member nearest the centroid. Members arrive in ascending order,
// so ties go to the earliest sentence.
func describeCluster(id int, members []int, kept []preprocess.Sentence, points [][]float64, centroid []float64) (Cluster, error) {
	c := Cluster{ID: id, Members: make([]int, len(members)), Centroid: centroid}
	best := math.Inf(1)
	var sum float64
	for i, p := range members {
		original := kept[p].Index
		c.Members[i] = original
		sum += float64(original)

		d, err := vector.EuclideanDistance(points[p], centroid)
		if err != nil {
			return Cluster{}, errortypes.InternalError(err, "cannot measure centroid distance")
		}
		if d < best {
			best = d
			c.Representative = original
		}
	}
	c.Position = sum / float64(len(members))
	return c, nil
}

// Metrics returns the collector the summarizer reports to.
func (s *ClusterSummarizer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// Tokenizer returns the sentence tokenizer in use.
func (s *ClusterSummarizer) Tokenizer() segment.Tokenizer {
	return s.tokenizer
}
