package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/artifactservice"
	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

type fakeCommitter struct{ n int }

func (f *fakeCommitter) CommitAll(_ context.Context, _ string) (string, error) {
	f.n++
	return fmt.Sprintf("commit-%d", f.n), nil
}

type fakeBackend struct {
	commits []models.CommitInfo
}

func (f *fakeBackend) Log(_ context.Context) ([]models.CommitInfo, error)    { return f.commits, nil }
func (f *fakeBackend) Tags(_ context.Context) ([]models.TagDetail, error)    { return nil, nil }
func (f *fakeBackend) LogPath(_ context.Context, _ string) ([]models.CommitInfo, error) {
	return f.commits, nil
}
func (f *fakeBackend) ShowFile(_ context.Context, _, _ string) ([]byte, error) {
	return nil, errors.New("no such object")
}

func testServer(t *testing.T) (*Server, *fakeBackend) {
	t.Helper()

	workspace := t.TempDir()
	store, err := storage.NewFS(workspace)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "raido-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := artifactservice.New(store, db, &fakeCommitter{}, logger)
	backend := &fakeBackend{}
	hist := history.NewService(backend, 0, logger)

	return New(store, db, svc, hist), backend
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_artifacts":
		result, err = srv.searchArtifacts(ctx, req)
	case "read_artifact":
		result, err = srv.readArtifact(ctx, req)
	case "create_artifact":
		result, err = srv.createArtifact(ctx, req)
	case "list_artifacts":
		result, err = srv.listArtifacts(ctx, req)
	case "artifact_history":
		result, err = srv.artifactHistory(ctx, req)
	case "trace_artifact":
		result, err = srv.traceArtifact(ctx, req)
	case "get_artifact_contract":
		result, err = srv.getArtifactContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const requirementContent = `---
id: "REQ-001"
title: "Login"
useCaseIds:
  - "UC-001"
---

# Login

## Description

Users can log in with a password.
`

func TestCreateAndReadArtifact(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_artifact", map[string]interface{}{
		"kind":    "requirement",
		"content": requirementContent,
	})
	if text := resultText(r); text != "created: requirements/REQ-001.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_artifact", map[string]interface{}{
		"kind": "requirement",
		"id":   "REQ-001",
	})
	if text := resultText(r); !strings.Contains(text, `id: "REQ-001"`) {
		t.Errorf("read result missing id: %q", text)
	}
}

func TestReadArtifact_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_artifact", map[string]interface{}{
		"kind": "requirement",
		"id":   "REQ-404",
	})
	if !r.IsError {
		t.Error("expected error result for missing artifact")
	}
}

func TestCreateArtifact_InvalidKind(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_artifact", map[string]interface{}{
		"kind":    "bogus",
		"content": requirementContent,
	})
	if !r.IsError {
		t.Error("expected error result for invalid kind")
	}
}

func TestSearchArtifacts(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_artifact", map[string]interface{}{
		"kind":    "requirement",
		"content": requirementContent,
	})

	r := callTool(t, srv, "search_artifacts", map[string]interface{}{
		"query": "password",
	})
	if text := resultText(r); !strings.Contains(text, "requirements/REQ-001.md") {
		t.Errorf("search result missing hit: %q", text)
	}
}

func TestListArtifacts(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_artifacts", map[string]interface{}{})
	if text := resultText(r); text != "no artifacts found" {
		t.Errorf("empty list result = %q", text)
	}

	callTool(t, srv, "create_artifact", map[string]interface{}{
		"kind":    "requirement",
		"content": requirementContent,
	})

	r = callTool(t, srv, "list_artifacts", map[string]interface{}{"kind": "requirement"})
	if text := resultText(r); !strings.Contains(text, "REQ-001") {
		t.Errorf("list result missing artifact: %q", text)
	}

	r = callTool(t, srv, "list_artifacts", map[string]interface{}{"kind": "bogus"})
	if !r.IsError {
		t.Error("expected error result for invalid kind filter")
	}
}

func TestArtifactHistory(t *testing.T) {
	srv, backend := testServer(t)
	backend.commits = []models.CommitInfo{{Hash: "c1", Message: "Add requirement REQ-001"}}

	r := callTool(t, srv, "artifact_history", map[string]interface{}{
		"kind": "requirement",
		"id":   "REQ-001",
	})
	if text := resultText(r); !strings.Contains(text, "Add requirement REQ-001") {
		t.Errorf("history result missing commit: %q", text)
	}
}

func TestTraceArtifact(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_artifact", map[string]interface{}{
		"kind":    "requirement",
		"content": requirementContent,
	})

	r := callTool(t, srv, "trace_artifact", map[string]interface{}{"id": "REQ-001"})
	if text := resultText(r); !strings.Contains(text, "UC-001") {
		t.Errorf("trace result missing relationship: %q", text)
	}
}

func TestGetArtifactContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_artifact_contract", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "Artifact Format Contract") {
		t.Errorf("contract result = %q", text)
	}
}
