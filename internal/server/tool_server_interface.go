// Package server exposes the summarization pipeline as MCP tools and as a
// JSON HTTP API.
package server

// ToolServer defines the lifecycle shared by the MCP and HTTP surfaces.
type ToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts serving and blocks until the server stops.
	Start() error

	// Stop gracefully shuts down the server.
	Stop() error
}
