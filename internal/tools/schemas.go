// Package tools defines the request and response schemas shared by the MCP
// tools and the HTTP API of the ClusterSummary service.
package tools

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolSummarizeSentences is the name of the summarize_sentences MCP tool
	ToolSummarizeSentences = "summarize_sentences"

	// ToolScoreSummary is the name of the score_summary MCP tool
	ToolScoreSummary = "score_summary"

	// ToolSearchSummaries is the name of the search_summaries MCP tool
	ToolSearchSummaries = "search_summaries"

	// ToolPipelineStats is the name of the pipeline_stats MCP tool
	ToolPipelineStats = "pipeline_stats"

	// DefaultSearchLimit is the default number of results to return
	// when no limit is specified in a search_summaries request
	DefaultSearchLimit = 5

	// StatusSuccess and StatusError are the values of every response Status.
	StatusSuccess = "success"
	StatusError   = "error"
)

// SummarizeTextRequest defines the input schema for summarize_text tool
type SummarizeTextRequest struct {
	// Text is the raw document; it is split into sentences first
	Text string `json:"text"`

	// IncludeDetails adds the selected sentences and diagnostics to the response
	IncludeDetails bool `json:"include_details,omitempty"`
}

// SummarizeSentencesRequest defines the input schema for summarize_sentences tool
type SummarizeSentencesRequest struct {
	// Sentences is an already segmented document in reading order
	Sentences []string `json:"sentences"`

	// IncludeDetails adds the selected sentences and diagnostics to the response
	IncludeDetails bool `json:"include_details,omitempty"`
}

// Selection is one sentence chosen for a summary
type Selection struct {
	// Index is the position of the sentence in the original document
	Index int `json:"index"`

	// Text is the verbatim sentence
	Text string `json:"text"`

	// Position is the mean original index of the sentence's cluster
	Position float64 `json:"position"`
}

// Diagnostics reports how a document was processed
type Diagnostics struct {
	Sentences    int     `json:"sentences"`
	Kept         int     `json:"kept"`
	Dropped      int     `json:"dropped"`
	OOVSentences int     `json:"oov_sentences"`
	Iterations   int     `json:"iterations"`
	Inertia      float64 `json:"inertia"`
}

// SummarizeResponse defines the output schema for both summarize tools
type SummarizeResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summary is the selected sentences joined in document order
	Summary string `json:"summary,omitempty"`

	// K is the number of clusters, and of sentences in the summary
	K int `json:"k,omitempty"`

	Selections  []Selection  `json:"selections,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ScoreSummaryRequest defines the input schema for score_summary tool
type ScoreSummaryRequest struct {
	// Candidate is the produced summary
	Candidate string `json:"candidate"`

	// Reference is the reference summary
	Reference string `json:"reference,omitempty"`

	// References are additional references for the same document
	References []string `json:"references,omitempty"`
}

// ScoreSummaryResponse defines the output schema for score_summary tool
type ScoreSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Score is the BLEU score in [0,1]
	Score float64 `json:"score"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SearchSummariesRequest defines the input schema for search_summaries tool
type SearchSummariesRequest struct {
	// Query is embedded and compared with stored batch summaries
	Query string `json:"query"`

	// Limit is the maximum number of results to return
	// If not specified, DefaultSearchLimit will be used
	Limit int `json:"limit,omitempty"`
}

// SearchResult is one stored summary matching a query
type SearchResult struct {
	ID         string  `json:"id"`
	RunID      string  `json:"run_id"`
	Row        int     `json:"row"`
	Summary    string  `json:"summary"`
	Similarity float64 `json:"similarity"`
}

// SearchSummariesResponse defines the output schema for search_summaries tool
type SearchSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Results contains the matching summaries, most similar first
	Results []SearchResult `json:"results"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// PipelineStatsRequest defines the input schema for pipeline_stats tool
type PipelineStatsRequest struct {
	// Reset clears the metrics after the report is built
	Reset bool `json:"reset,omitempty"`
}

// PipelineStatsResponse defines the output schema for pipeline_stats tool
type PipelineStatsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Health is the pipeline health report as JSON
	Health string `json:"health,omitempty"`

	// Metrics is the plain text metrics report
	Metrics string `json:"metrics,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
