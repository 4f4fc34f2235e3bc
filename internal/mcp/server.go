// Package mcp exposes the document store's retrieval tools over the
// Model Context Protocol, so external agent clients can search uploaded
// documents and pull study material with their own models.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"studyassist/internal/docstore"
	"studyassist/internal/tools"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing document retrieval tools.
type Server struct {
	store *docstore.Manager
	tools *tools.Registry
	mcp   *server.MCPServer
}

// NewServer creates an MCP server over the given document store.
func NewServer(store *docstore.Manager, registry *tools.Registry) *Server {
	s := &Server{
		store: store,
		tools: registry,
	}

	s.mcp = server.NewMCPServer(
		"studyassist",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(searchDocumentTool, s.handleSearchDocument)
	s.mcp.AddTool(summaryMaterialTool, s.handleSummaryMaterial)
	s.mcp.AddTool(quizMaterialTool, s.handleQuizMaterial)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
