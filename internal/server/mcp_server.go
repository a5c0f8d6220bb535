package server

import (
	"context"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/tools"
	"github.com/localrivet/gomcp/server"
)

// MCPToolServer implements the ToolServer interface for handling MCP tool
// calls over stdio.
type MCPToolServer struct {
	deps      Dependencies
	handlers  *Handlers
	mcpServer server.Server
}

// NewMCPToolServer creates a new MCPToolServer instance.
func NewMCPToolServer(deps Dependencies) *MCPToolServer {
	return &MCPToolServer{deps: deps}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPToolServer) Initialize() error {
	handlers, err := NewHandlers(s.deps)
	if err != nil {
		return err
	}
	s.handlers = handlers
	handlers.logger.Info("Initializing MCP Tool Server")

	// Create the MCP server
	srv := server.NewServer("clustersummary")

	srv = srv.Tool(tools.ToolSummarizeText, "Summarize a document by clustering its sentences and keeping one per cluster",
		s.handleSummarizeText)

	srv = srv.Tool(tools.ToolSummarizeSentences, "Summarize an already segmented document",
		s.handleSummarizeSentences)

	srv = srv.Tool(tools.ToolScoreSummary, "Score a summary against reference summaries with BLEU",
		s.handleScoreSummary)

	srv = srv.Tool(tools.ToolSearchSummaries, "Find stored batch summaries similar to a query",
		s.handleSearchSummaries)

	srv = srv.Tool(tools.ToolPipelineStats, "Report pipeline health and metrics",
		s.handlePipelineStats)

	s.mcpServer = srv
	handlers.logger.Info("MCP Tool Server initialized successfully", "tool_count", 5)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	s.handlers.logger.Info("Starting MCP Tool Server")

	// Start the server using stdio transport
	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPToolServer) Stop() error {
	if s.handlers != nil {
		s.handlers.logger.Info("Stopping MCP Tool Server")
	}
	// The server will exit when stdin is closed
	return nil
}

// Tool errors are reported inside the response so the client sees them as
// a failed result rather than a protocol error.

func (s *MCPToolServer) handleSummarizeText(_ *server.Context, req tools.SummarizeTextRequest) (tools.SummarizeResponse, error) {
	resp, err := s.handlers.SummarizeText(context.Background(), req)
	if err != nil {
		return tools.SummarizeResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return resp, nil
}

func (s *MCPToolServer) handleSummarizeSentences(_ *server.Context, req tools.SummarizeSentencesRequest) (tools.SummarizeResponse, error) {
	resp, err := s.handlers.SummarizeSentences(context.Background(), req)
	if err != nil {
		return tools.SummarizeResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return resp, nil
}

func (s *MCPToolServer) handleScoreSummary(_ *server.Context, req tools.ScoreSummaryRequest) (tools.ScoreSummaryResponse, error) {
	resp, err := s.handlers.ScoreSummary(context.Background(), req)
	if err != nil {
		return tools.ScoreSummaryResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return resp, nil
}

func (s *MCPToolServer) handleSearchSummaries(_ *server.Context, req tools.SearchSummariesRequest) (tools.SearchSummariesResponse, error) {
	resp, err := s.handlers.SearchSummaries(context.Background(), req)
	if err != nil {
		return tools.SearchSummariesResponse{Status: tools.StatusError, Results: []tools.SearchResult{}, Error: err.Error()}, nil
	}
	return resp, nil
}

func (s *MCPToolServer) handlePipelineStats(_ *server.Context, req tools.PipelineStatsRequest) (tools.PipelineStatsResponse, error) {
	resp, err := s.handlers.PipelineStats(context.Background(), req)
	if err != nil {
		return tools.PipelineStatsResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return resp, nil
}

var _ ToolServer = (*MCPToolServer)(nil)
