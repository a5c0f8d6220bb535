// Package summarizer provides extractive summarizers that select existing
// sentences of a document.
package summarizer

const (
	// DefaultSeparator joins the selected sentences of a summary.
	DefaultSeparator = " "
)

// Summarizer defines the interface for summarizing text content.
type Summarizer interface {
	// Summarize takes a text input and returns a condensed summary.
	Summarize(text string) (string, error)

	// Initialize sets up the summarizer with any required configuration.
	Initialize() error
}

var (
	_ Summarizer = (*ClusterSummarizer)(nil)
	_ Summarizer = (*LeadSummarizer)(nil)
)
