// Package mcpapi exposes the retrieval service as an MCP tool server
// (github.com/mark3labs/mcp-go): one stdio-transport server exposing a
// single tool, retrieve_code, whose input schema mirrors POST
// /retrieve's body and whose handler calls the same
// internal/retrieval.Retriever the HTTP layer calls. This is pure
// supplementary transport — no new core semantics.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/retrieval"
)

const toolName = "retrieve_code"

// Server wraps an MCP stdio server exposing retrieve_code.
type Server struct {
	mcpServer *server.MCPServer
	retriever *retrieval.Retriever
	logger    *slog.Logger
}

// NewServer builds an MCP server named name/version over retriever.
func NewServer(name, version string, retriever *retrieval.Retriever, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{retriever: retriever, logger: logger}

	mcpServer := server.NewMCPServer(name, version)
	mcpServer.AddTool(retrieveCodeTool(), s.handleRetrieveCode)
	s.mcpServer = mcpServer
	return s
}

func retrieveCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolName,
		Description: "Retrieve semantically relevant code chunks for a natural language query, filtered by repository and branch and gated by proof-of-possession of local file hashes. Use this when asked to find, locate, or explain code in an indexed repository.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language description of the code to find.",
				},
				"repo": map[string]interface{}{
					"type":        "string",
					"description": "Repository name/path to restrict results to, or \"*\" for no restriction.",
				},
				"branch": map[string]interface{}{
					"type":        "string",
					"description": "Branch or revision label to restrict results to.",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Caller identity; accepted for parity with POST /retrieve, not used by retrieval.",
				},
				"file_hashes": map[string]interface{}{
					"type":        "object",
					"description": "Map of local file path to its SHA-256 hex digest, proving possession of the claimed codebase. Empty accepts (development mode).",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of chunks to return (default 10).",
					"default":     10,
				},
			},
			Required: []string{"query"},
		},
	}
}

// Start runs the MCP server over stdio until the transport closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func (s *Server) handleRetrieveCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = make(map[string]interface{})
	}

	req := models.RetrieveRequest{
		Query:  stringArg(args, "query"),
		Repo:   stringArg(args, "repo"),
		Branch: stringArg(args, "branch"),
		UserID: stringArg(args, "user_id"),
		K:      intArg(args, "k", 10),
	}
	if fh, ok := args["file_hashes"].(map[string]interface{}); ok {
		req.FileHashes = make(map[string]string, len(fh))
		for path, v := range fh {
			if hash, ok := v.(string); ok {
				req.FileHashes[path] = hash
			}
		}
	}

	if req.Query == "" {
		return errorResult("query is required and must be a string"), nil
	}

	chunks, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return errorResult(fmt.Sprintf("retrieval failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode results: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(jsonData)},
		},
	}, nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: fmt.Sprintf("Error: %s", message)},
		},
		IsError: true,
	}
}
