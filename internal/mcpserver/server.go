// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes mdxmend tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mdxmend/internal/apperr"
	"github.com/starford/mdxmend/internal/mendservice"
)

const rulesURI = "mdxmend://rules"

// Server wraps the MCP server with mdxmend tools.
type Server struct {
	mcp *server.MCPServer
	svc *mendservice.Service
}

// New creates a new MCP server with all mdxmend tools registered.
func New(svc *mendservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"mdxmend",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("check_documents",
		mcp.WithDescription("Validate the documents in the configured directory and list every defect found. "+
			"Never modifies files."),
		mcp.WithString("document", mcp.Description("Optional file name to check a single document")),
	), s.checkDocuments)

	s.mcp.AddTool(mcp.NewTool("repair_documents",
		mcp.WithDescription("Join broken front-matter titles and fix link/tag spacing in every document, "+
			"in place. Returns the run with per-document outcomes."),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would change without writing")),
	), s.repairDocuments)

	s.mcp.AddTool(mcp.NewTool("fix_text",
		mcp.WithDescription("Apply the title join and syntax fixes to the given text and return the result. "+
			"Read the mdxmend://rules resource for the exact shapes."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document text to repair")),
	), s.fixText)

	s.mcp.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded repair runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs (default 20)")),
	), s.listRuns)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Repair Rules",
			mcp.WithResourceDescription("Every defect shape mdxmend detects and how it is rewritten."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRulesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) checkDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		findings any
		count    int
	)
	if name := req.GetString("document", ""); name != "" {
		f, err := s.svc.CheckDocument(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		findings, count = f, len(f)
	} else {
		f, err := s.svc.Check(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		findings, count = f, len(f)
	}
	if count == 0 {
		return mcp.NewToolResultText("No issues found."), nil
	}
	return jsonResult(findings)
}

func (s *Server) repairDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	findings, err := s.svc.Check(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	run, err := s.svc.Repair(ctx, mendservice.RepairOptions{
		DryRun:   req.GetBool("dry_run", false),
		Findings: len(findings),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(run)
}

func (s *Server) fixText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(mendservice.FixText(content)), nil
}

func (s *Server) listRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.svc.Runs(ctx, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrLedgerDisabled) {
			return mcp.NewToolResultError("run history is unavailable: ledger is disabled"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(runs) == 0 {
		return mcp.NewToolResultText("no runs recorded"), nil
	}
	return jsonResult(runs)
}

func (s *Server) readRulesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     RulesContract(),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
