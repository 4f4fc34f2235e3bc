package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleListDocuments returns the uploaded document catalog.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.store.Registry().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No documents uploaded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n", len(records)))
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("\n- %s (ID: %s)\n  Pages: %d, Chunks: %d, Status: %s\n",
			rec.Filename, rec.ID, rec.TotalPages, rec.ChunkCount, rec.Status))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchDocument runs a semantic search through the retrieval tool
// layer, so MCP clients see the same passage formatting the chat agent does.
func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := request.RequireString("doc_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: doc_id"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	args := map[string]any{"query": query}
	if pages := request.GetString("pages", ""); pages != "" {
		args["pages"] = pages
	}
	return s.runTool(ctx, "search_document", docID, args)
}

// handleSummaryMaterial retrieves broad document content with summary
// instructions attached.
func (s *Server) handleSummaryMaterial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := request.RequireString("doc_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: doc_id"), nil
	}

	args := map[string]any{}
	if level := request.GetString("detail_level", ""); level != "" {
		args["detail_level"] = level
	}
	return s.runTool(ctx, "generate_summary", docID, args)
}

// handleQuizMaterial retrieves key document content with quiz-writing
// instructions attached.
func (s *Server) handleQuizMaterial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := request.RequireString("doc_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: doc_id"), nil
	}

	args := map[string]any{}
	if num := request.GetInt("num_questions", 0); num > 0 {
		args["num_questions"] = num
	}
	if difficulty := request.GetString("difficulty", ""); difficulty != "" {
		args["difficulty"] = difficulty
	}
	return s.runTool(ctx, "generate_quiz", docID, args)
}

// runTool dispatches to a registered retrieval tool with JSON-encoded args.
func (s *Server) runTool(ctx context.Context, name, docID string, args map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := s.tools.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("tool %q not registered", name)), nil
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding arguments: %v", err)), nil
	}
	result, err := tool.Run(ctx, docID, string(encoded))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
	}
	return mcp.NewToolResultText(result), nil
}
