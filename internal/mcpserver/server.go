// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/starford/raido/internal/artifactservice"
	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.ArtifactIndex
	svc   *artifactservice.Service
	hist  *history.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(store storage.Provider, db index.ArtifactIndex, svc *artifactservice.Service, hist *history.Service) *Server {
	s := &Server{store: store, db: db, svc: svc, hist: hist}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_artifacts",
		mcp.WithDescription("Full-text search through artifact titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchArtifacts)

	s.mcp.AddTool(mcp.NewTool("read_artifact",
		mcp.WithDescription("Read the full Markdown content of an artifact."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Artifact kind (requirement, usecase, testcase, ...)")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Artifact id (e.g. REQ-001)")),
	), s.readArtifact)

	s.mcp.AddTool(mcp.NewTool("create_artifact",
		mcp.WithDescription("Create a new artifact from Markdown content. "+
			"Content MUST follow the canonical artifact format (YAML frontmatter with id "+
			"and title, H1 title, named H2 sections). Read the contract first via the "+
			"get_artifact_contract tool or the raido://artifact-format resource."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Artifact kind")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Raido artifact format contract")),
	), s.createArtifact)

	s.mcp.AddTool(mcp.NewTool("list_artifacts",
		mcp.WithDescription("List artifacts, optionally filtered by kind and status."),
		mcp.WithString("kind", mcp.Description("Optional artifact kind filter")),
		mcp.WithString("status", mcp.Description("Optional lifecycle status filter")),
	), s.listArtifacts)

	s.mcp.AddTool(mcp.NewTool("artifact_history",
		mcp.WithDescription("Get the commit history of an artifact, newest first."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Artifact kind")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Artifact id")),
	), s.artifactHistory)

	s.mcp.AddTool(mcp.NewTool("trace_artifact",
		mcp.WithDescription("Get the outgoing and incoming relationships of an artifact."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Artifact id")),
	), s.traceArtifact)

	s.mcp.AddTool(mcp.NewTool("get_artifact_contract",
		mcp.WithDescription("Returns the canonical Raido artifact format contract. "+
			"Call this before creating or updating artifacts to ensure correct structure."),
	), s.getArtifactContract)

	// Resource: artifact format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://artifact-format", "Artifact Format Contract",
			mcp.WithResourceDescription("Canonical Markdown artifact format that all artifacts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArtifactFormatResource,
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

func (s *Server) searchArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Get(ctx, models.Kind(kind), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s %s", kind, id)), nil
	}
	return mcp.NewToolResultText(res.Content), nil
}

func (s *Server) createArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Create(ctx, models.Kind(kind), content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", res.Path)), nil
}

func (s *Server) listArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	opts := index.ListOptions{
		Kind:   models.Kind(cast.ToString(args["kind"])),
		Status: cast.ToString(args["status"]),
	}
	if opts.Kind != "" && !opts.Kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind: %s", opts.Kind)), nil
	}

	rows, _, err := s.db.ListArtifacts(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", row.ArtifactID, row.Kind, row.Status, row.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no artifacts found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) artifactHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	k := models.Kind(kind)
	if !k.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind: %s", kind)), nil
	}
	commits := s.hist.GetArtifactHistory(ctx, artifactservice.Path(k, id))
	if len(commits) == 0 {
		return mcp.NewToolResultText("no history found"), nil
	}
	out, _ := json.MarshalIndent(commits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) traceArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outgoing, incoming, err := s.db.TraceLinks(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"outgoing": outgoing,
		"incoming": incoming,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getArtifactContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ArtifactFormatContract), nil
}

func (s *Server) readArtifactFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://artifact-format",
			MIMEType: "text/markdown",
			Text:     ArtifactFormatContract,
		},
	}, nil
}
