package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir := t.TempDir()
	r := New(dir, "git", "Test Author", "test@example.com")
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInit_Idempotent(t *testing.T) {
	r := newTestRepo(t)
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestCommitAll_AndLog(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "requirements/REQ-001.md", "first\n")
	h1, err := r.CommitAll(ctx, "Add requirement REQ-001")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if h1 == "" {
		t.Fatal("expected commit hash")
	}

	writeFile(t, r, "requirements/REQ-001.md", "second\n")
	h2, err := r.CommitAll(ctx, "Update requirement REQ-001")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if h2 == h1 {
		t.Fatal("expected a new commit hash")
	}

	log, err := r.Log(ctx)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(log))
	}
	// Newest first.
	if log[0].Hash != h2 || log[1].Hash != h1 {
		t.Fatalf("unexpected log order: %v", log)
	}
	if log[0].Message != "Update requirement REQ-001" {
		t.Fatalf("unexpected message %q", log[0].Message)
	}
	if log[0].Author != "Test Author" {
		t.Fatalf("unexpected author %q", log[0].Author)
	}
	if log[0].Timestamp == 0 {
		t.Fatal("expected non-zero timestamp")
	}
}

func TestCommitAll_CleanTreeReturnsHead(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "a.md", "x\n")
	h1, err := r.CommitAll(ctx, "Add a")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := r.CommitAll(ctx, "nothing changed")
	if err != nil {
		t.Fatalf("clean-tree commit: %v", err)
	}
	if h2 != h1 {
		t.Fatalf("expected HEAD %s on clean tree, got %s", h1, h2)
	}
}

func TestCommitAll_EmptyRepoNoChanges(t *testing.T) {
	r := newTestRepo(t)
	h, err := r.CommitAll(context.Background(), "noop")
	if err != nil {
		t.Fatalf("commit on empty repo: %v", err)
	}
	if h != "" {
		t.Fatalf("expected empty hash, got %q", h)
	}
}

func TestLog_EmptyRepo(t *testing.T) {
	r := newTestRepo(t)
	log, err := r.Log(context.Background())
	if err != nil {
		t.Fatalf("log on empty repo: %v", err)
	}
	if len(log) != 0 {
		t.Fatalf("expected empty log, got %d entries", len(log))
	}
}

func TestLogPath_ScopedToFile(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "requirements/REQ-001.md", "one\n")
	if _, err := r.CommitAll(ctx, "Add REQ-001"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "requirements/REQ-002.md", "two\n")
	if _, err := r.CommitAll(ctx, "Add REQ-002"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "requirements/REQ-001.md", "one changed\n")
	if _, err := r.CommitAll(ctx, "Update REQ-001"); err != nil {
		t.Fatal(err)
	}

	log, err := r.LogPath(ctx, "requirements/REQ-001.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 commits for REQ-001, got %d", len(log))
	}
	if log[0].Message != "Update REQ-001" || log[1].Message != "Add REQ-001" {
		t.Fatalf("unexpected scoped log: %v", log)
	}
}

func TestLatestCommit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "a.md", "x\n")
	h, err := r.CommitAll(ctx, "Add a")
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.LatestCommit(ctx, "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("expected %s, got %s", h, got)
	}

	got, err = r.LatestCommit(ctx, "missing.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("expected empty hash for unknown path, got %q", got)
	}
}

func TestTags_AnnotatedAndCommitResolution(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "a.md", "x\n")
	h, err := r.CommitAll(ctx, "Add a")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.CreateTag(ctx, "v1.0", "Baseline: Release 1"); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	tags, err := r.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	tag := tags[0]
	if tag.Name != "v1.0" {
		t.Fatalf("unexpected tag name %q", tag.Name)
	}
	if tag.Message != "Baseline: Release 1" {
		t.Fatalf("unexpected tag message %q", tag.Message)
	}
	// Annotated tag must resolve to the commit, not the tag object.
	if tag.Commit != h {
		t.Fatalf("expected tag commit %s, got %s", h, tag.Commit)
	}
	if tag.Timestamp == 0 {
		t.Fatal("expected non-zero tag timestamp")
	}
}

func TestShowFile_AtCommit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "a.md", "version one\n")
	h1, err := r.CommitAll(ctx, "Add a")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "a.md", "version two\n")
	if _, err := r.CommitAll(ctx, "Update a"); err != nil {
		t.Fatal(err)
	}

	content, err := r.ShowFile(ctx, h1, "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "version one\n" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestStatus(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "committed.md", "x\n")
	writeFile(t, r, "gone.md", "y\n")
	if _, err := r.CommitAll(ctx, "Add files"); err != nil {
		t.Fatal(err)
	}

	writeFile(t, r, "committed.md", "changed\n")
	writeFile(t, r, "fresh.md", "new file\n")
	if err := os.Remove(filepath.Join(r.dir, "gone.md")); err != nil {
		t.Fatal(err)
	}

	statuses, err := r.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	byPath := map[string]string{}
	for _, s := range statuses {
		byPath[s.Path] = s.Status
	}
	if byPath["fresh.md"] != "new" {
		t.Fatalf("expected fresh.md new, got %q", byPath["fresh.md"])
	}
	if byPath["committed.md"] != "modified" {
		t.Fatalf("expected committed.md modified, got %q", byPath["committed.md"])
	}
	if byPath["gone.md"] != "deleted" {
		t.Fatalf("expected gone.md deleted, got %q", byPath["gone.md"])
	}
}

func TestStatus_RenamedPathReportsNewName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	writeFile(t, r, "old.md", "same content\n")
	if _, err := r.CommitAll(ctx, "Add old.md"); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(filepath.Join(r.dir, "old.md"), filepath.Join(r.dir, "new.md")); err != nil {
		t.Fatal(err)
	}
	// Stage the rename so porcelain reports it as "R old -> new".
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		t.Fatal(err)
	}

	statuses, err := r.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	byPath := map[string]string{}
	for _, s := range statuses {
		byPath[s.Path] = s.Status
	}
	if byPath["new.md"] != "modified" {
		t.Fatalf("expected new.md modified, got %v", byPath)
	}
	if _, ok := byPath["old.md -> new.md"]; ok {
		t.Fatal("rename line leaked into status path")
	}
}

func TestRun_FailureIncludesStderr(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.ShowFile(context.Background(), "deadbeef", "nope.md")
	if err == nil {
		t.Fatal("expected error for unknown commit")
	}
}
