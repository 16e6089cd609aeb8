// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the review pipeline and vault to LLM clients via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/pipeline"
	"github.com/starford/munin/internal/vault"
)

// Server wraps the MCP server with Munin tools.
type Server struct {
	mcp   *server.MCPServer
	vault *vault.Vault
	pipe  *pipeline.Pipeline
}

// New creates a new MCP server with all Munin tools registered.
func New(v *vault.Vault, pipe *pipeline.Pipeline) *Server {
	s := &Server{vault: v, pipe: pipe}

	s.mcp = server.NewMCPServer(
		"Munin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_review",
		mcp.WithDescription("Analyze recent observation notes and write a weekly review "+
			"document into the vault. Returns the review path and per-note outcome counts."),
		mcp.WithNumber("days", mcp.Description("Trailing window in days (default 7)")),
		mcp.WithBoolean("all_time", mcp.Description("Review every note regardless of age")),
	), s.generateReview)

	s.mcp.AddTool(mcp.NewTool("list_observations",
		mcp.WithDescription("List observation notes modified within the window."),
		mcp.WithNumber("days", mcp.Description("Trailing window in days (default 7)")),
		mcp.WithBoolean("all_time", mcp.Description("List every note regardless of age")),
	), s.listObservations)

	s.mcp.AddTool(mcp.NewTool("read_observation",
		mcp.WithDescription("Read the full content of one observation note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path, relative to the vault or the observations directory")),
	), s.readObservation)

	// Resource: observation note format.
	s.mcp.AddResource(
		mcp.NewResource("munin://observation-format", "Observation Note Format",
			mcp.WithResourceDescription("Canonical Markdown format for observation notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readObservationFormatResource,
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

// window builds a ReviewWindow from the common days/all_time arguments.
func window(req mcp.CallToolRequest) models.ReviewWindow {
	if req.GetBool("all_time", false) {
		return models.ReviewWindow{AllTime: true}
	}
	days := req.GetInt("days", 7)
	if days < 1 {
		days = 7
	}
	return models.ReviewWindow{Days: days}
}

func (s *Server) generateReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.pipe.Run(ctx, window(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"path":            res.Path,
		"window":          res.Review.Window.Describe(),
		"notes_processed": len(res.Review.Entries),
		"failed_entries":  res.Failures,
		"notes_skipped":   res.NotesSkipped,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.vault.Locate(window(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readObservation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.vault.ReadObservation(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readObservationFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "munin://observation-format",
			MIMEType: "text/markdown",
			Text:     ObservationFormatContract,
		},
	}, nil
}
