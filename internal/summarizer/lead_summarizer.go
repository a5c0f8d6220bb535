package summarizer

import (
	"strings"

	"github.com/localrivet/clustersummary/internal/cluster"
	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
	"github.com/localrivet/clustersummary/internal/segment"
)

// LeadSummarizer is a baseline implementation of the Summarizer interface.
// It keeps the first k sentences that survive preprocessing, using the same
// cluster count rule as the ClusterSummarizer.
type LeadSummarizer struct {
	tokenizer    segment.Tokenizer
	preprocessor *preprocess.Preprocessor
	count        cluster.CountFunc
	separator    string
}

// LeadSummarizerConfig holds configuration for the LeadSummarizer. Fill it
// with the settings of the ClusterSummarizer it is compared against.
type LeadSummarizerConfig struct {
	// Tokenizer defaults to splitting on sentence-final punctuation.
	Tokenizer segment.Tokenizer

	// Preprocessor defaults to the two-token cutoff.
	Preprocessor *preprocess.Preprocessor

	// ClusterCount defaults to cluster.SqrtCount.
	ClusterCount cluster.CountFunc

	// Separator is used as given; an empty one concatenates sentences.
	Separator string
}

// NewLeadSummarizer creates a new LeadSummarizer instance. A nil config
// uses every default, including DefaultSeparator.
func NewLeadSummarizer(config *LeadSummarizerConfig) *LeadSummarizer {
	if config == nil {
		config = &LeadSummarizerConfig{Separator: DefaultSeparator}
	}
	s := &LeadSummarizer{
		tokenizer:    config.Tokenizer,
		preprocessor: config.Preprocessor,
		count:        config.ClusterCount,
		separator:    config.Separator,
	}
	if s.tokenizer == nil {
		s.tokenizer = segment.Regex{}
	}
	if s.preprocessor == nil {
		s.preprocessor = preprocess.New(preprocess.DefaultShortSentenceTokens)
	}
	if s.count == nil {
		s.count = cluster.SqrtCount
	}
	return s
}

// Initialize sets up the summarizer with any required configuration.
func (s *LeadSummarizer) Initialize() error {
	return nil // Nothing to load
}

// Summarize takes a text input and returns its leading sentences.
func (s *LeadSummarizer) Summarize(text string) (string, error) {
	return s.SummarizeSentences(s.tokenizer.Split(text))
}

// SummarizeSentences returns the leading sentences of an already segmented document.
func (s *LeadSummarizer) SummarizeSentences(sentences []string) (string, error) {
	kept := s.preprocessor.Process(sentences)
	if len(kept) == 0 {
		return "", errortypes.EmptyDocumentError(len(sentences))
	}
	k, err := cluster.ClampCount(s.count(len(sentences)), len(kept))
	if err != nil {
		return "", err
	}

	parts := make([]string, k)
	for i := 0; i < k; i++ {
		parts[i] = kept[i].Text
	}
	return strings.Join(parts, s.separator), nil
}
