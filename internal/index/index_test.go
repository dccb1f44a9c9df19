package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRow(path, id string, kind models.Kind) ArtifactRow {
	return ArtifactRow{
		Path:       path,
		ArtifactID: id,
		Kind:       kind,
		Title:      "Title of " + id,
		Status:     "draft",
		Priority:   "medium",
		Revision:   "01",
		Checksum:   "cs-" + id,
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"artifacts", "links", "baselines", "baseline_artifacts"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement)
	if err := db.UpsertArtifact(row, "The system shall log users in.", []string{"UC-001"}); err != nil {
		t.Fatalf("UpsertArtifact: %v", err)
	}
	cs, err := db.GetChecksum("requirements/REQ-001.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-REQ-001" {
		t.Errorf("checksum = %q, want %q", cs, "cs-REQ-001")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("requirements/nope.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestGetByID(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "body", nil)

	got, err := db.GetByID(models.KindRequirement, "REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Path != "requirements/REQ-001.md" {
		t.Fatalf("unexpected row: %+v", got)
	}

	got, err = db.GetByID(models.KindUseCase, "REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for wrong kind, got %+v", got)
	}
}

func TestListArtifacts_FiltersAndTotal(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", nil)
	_ = db.UpsertArtifact(testRow("requirements/REQ-002.md", "REQ-002", models.KindRequirement), "b", nil)
	_ = db.UpsertArtifact(testRow("usecases/UC-001.md", "UC-001", models.KindUseCase), "b", nil)

	approved := testRow("requirements/REQ-003.md", "REQ-003", models.KindRequirement)
	approved.Status = "approved"
	_ = db.UpsertArtifact(approved, "b", nil)

	rows, total, err := db.ListArtifacts(ListOptions{Kind: models.KindRequirement})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("expected 3 requirements, got total=%d len=%d", total, len(rows))
	}
	// Default sort is by artifact id.
	if rows[0].ArtifactID != "REQ-001" || rows[2].ArtifactID != "REQ-003" {
		t.Fatalf("unexpected order: %v", rows)
	}

	rows, total, err = db.ListArtifacts(ListOptions{Kind: models.KindRequirement, Status: "approved"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || rows[0].ArtifactID != "REQ-003" {
		t.Fatalf("unexpected status filter result: total=%d rows=%v", total, rows)
	}
}

func TestListArtifacts_ExcludesSoftDeleted(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", nil)

	gone := testRow("requirements/REQ-002.md", "REQ-002", models.KindRequirement)
	gone.Deleted = true
	_ = db.UpsertArtifact(gone, "b", nil)

	rows, total, err := db.ListArtifacts(ListOptions{Kind: models.KindRequirement})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || rows[0].ArtifactID != "REQ-001" {
		t.Fatalf("soft-deleted artifact leaked into listing: %v", rows)
	}

	_, total, err = db.ListArtifacts(ListOptions{Kind: models.KindRequirement, IncludeDeleted: true})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected 2 with IncludeDeleted, got %d", total)
	}
}

func TestActiveArtifacts_OrderedByPath(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("usecases/UC-001.md", "UC-001", models.KindUseCase), "b", nil)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", nil)

	gone := testRow("requirements/REQ-002.md", "REQ-002", models.KindRequirement)
	gone.Deleted = true
	_ = db.UpsertArtifact(gone, "b", nil)

	rows, err := db.ActiveArtifacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 active artifacts, got %d", len(rows))
	}
	if rows[0].Path != "requirements/REQ-001.md" || rows[1].Path != "usecases/UC-001.md" {
		t.Fatalf("unexpected order: %v", rows)
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	row := testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement)
	_ = db.UpsertArtifact(row, "b", []string{"UC-001"})
	_ = db.UpsertArtifact(row, "b", []string{"UC-002"})

	outgoing, _, err := db.TraceLinks("REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(outgoing) != 1 || outgoing[0].Target != "UC-002" {
		t.Fatalf("old links should be replaced on upsert: %v", outgoing)
	}
}

func TestTraceLinks_BothDirections(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", []string{"UC-001"})
	_ = db.UpsertArtifact(testRow("testcases/TC-001.md", "TC-001", models.KindTestCase), "b", []string{"REQ-001"})

	outgoing, incoming, err := db.TraceLinks("REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(outgoing) != 1 || outgoing[0].Target != "UC-001" {
		t.Fatalf("unexpected outgoing: %v", outgoing)
	}
	if len(incoming) != 1 || incoming[0].Source != "TC-001" {
		t.Fatalf("unexpected incoming: %v", incoming)
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", []string{"UC-001"})
	_ = db.UpsertArtifact(testRow("usecases/UC-001.md", "UC-001", models.KindUseCase), "b", nil)

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if len(links) != 1 || links[0].Source != "REQ-001" || links[0].Target != "UC-001" {
		t.Fatalf("unexpected links: %v", links)
	}
}

func TestDeleteArtifact(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArtifact(testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement), "b", []string{"UC-001"})

	if err := db.DeleteArtifact("requirements/REQ-001.md"); err != nil {
		t.Fatalf("DeleteArtifact: %v", err)
	}
	cs, _ := db.GetChecksum("requirements/REQ-001.md")
	if cs != "" {
		t.Errorf("deleted artifact still has checksum %q", cs)
	}
	outgoing, _, _ := db.TraceLinks("REQ-001")
	if len(outgoing) != 0 {
		t.Errorf("expected 0 outgoing links after delete, got %d", len(outgoing))
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	row := testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement)
	row.Title = "User login"
	_ = db.UpsertArtifact(row, "The system shall support password login.", nil)

	hits, err := db.Search("password", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Path != "requirements/REQ-001.md" {
		t.Fatalf("unexpected hits: %v", hits)
	}
}

func TestLookupsPropagateBackendErrors(t *testing.T) {
	db := testDB(t)
	db.Close()

	// A failing backend must surface, not masquerade as absence: a
	// swallowed error here would make baseline creation compute a
	// first-baseline delta.
	if _, err := db.LatestBaseline("PRJ-001"); err == nil {
		t.Error("LatestBaseline on closed db should fail")
	}
	if _, err := db.GetByID(models.KindRequirement, "REQ-001"); err == nil {
		t.Error("GetByID on closed db should fail")
	}
	if _, err := db.GetChecksum("requirements/REQ-001.md"); err == nil {
		t.Error("GetChecksum on closed db should fail")
	}
}

func TestSearch_ExcludesSoftDeleted(t *testing.T) {
	db := testDB(t)
	row := testRow("requirements/REQ-001.md", "REQ-001", models.KindRequirement)
	row.Title = "Login flow"
	_ = db.UpsertArtifact(row, "The system shall support password login.", nil)

	row.Deleted = true
	_ = db.UpsertArtifact(row, "The system shall support password login.", nil)

	hits, err := db.Search("password", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("soft-deleted artifact returned by search: %v", hits)
	}
}

func TestBaselines_InsertListLatest(t *testing.T) {
	db := testDB(t)

	b1 := models.ProjectBaseline{
		ID:               "bl-1",
		ProjectID:        "PRJ-001",
		Name:             "Release 1",
		Version:          "v1.0",
		Timestamp:        1000,
		ArtifactCommits:  map[string]string{"REQ-001": "c1"},
		AddedArtifacts:   []string{"REQ-001"},
		RemovedArtifacts: []string{},
	}
	b2 := models.ProjectBaseline{
		ID:               "bl-2",
		ProjectID:        "PRJ-001",
		Name:             "Release 2",
		Version:          "v2.0",
		Timestamp:        2000,
		ArtifactCommits:  map[string]string{"REQ-001": "c2", "REQ-002": "c2"},
		AddedArtifacts:   []string{"REQ-002"},
		RemovedArtifacts: []string{},
	}
	if err := db.InsertBaseline(b1); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertBaseline(b2); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListBaselines("PRJ-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 baselines, got %d", len(list))
	}
	// Newest first, Latest on the newest only.
	if list[0].ID != "bl-2" || !list[0].Latest {
		t.Fatalf("expected bl-2 latest first, got %+v", list[0])
	}
	if list[1].Latest {
		t.Fatal("older baseline must not carry the latest flag")
	}
	if list[0].ArtifactCommits["REQ-002"] != "c2" {
		t.Fatalf("unexpected artifact commits: %v", list[0].ArtifactCommits)
	}
	if len(list[0].AddedArtifacts) != 1 || list[0].AddedArtifacts[0] != "REQ-002" {
		t.Fatalf("unexpected added artifacts: %v", list[0].AddedArtifacts)
	}

	latest, err := db.LatestBaseline("PRJ-001")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != "bl-2" {
		t.Fatalf("unexpected latest baseline: %+v", latest)
	}
}

func TestLatestBaseline_NoneIsNil(t *testing.T) {
	db := testDB(t)
	latest, err := db.LatestBaseline("PRJ-404")
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("expected nil, got %+v", latest)
	}
}

func TestSync_IndexesWorkspace(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reqDir := filepath.Join(dir, "requirements")
	if err := os.MkdirAll(reqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `---
id: "REQ-001"
title: "Login"
status: "approved"
priority: "high"
revision: "02"
useCaseIds:
  - "UC-001"
---

# Login

## Description

Users can log in.
`
	if err := os.WriteFile(filepath.Join(reqDir, "REQ-001.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	row, err := db.GetByID(models.KindRequirement, "REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("expected REQ-001 indexed")
	}
	if row.Kind != models.KindRequirement || row.Status != "approved" || row.Revision != "02" {
		t.Fatalf("unexpected row: %+v", row)
	}

	outgoing, _, err := db.TraceLinks("REQ-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(outgoing) != 1 || outgoing[0].Target != "UC-001" {
		t.Fatalf("unexpected links: %v", outgoing)
	}

	// Remove the file and sync again: stale entry goes away.
	if err := os.Remove(filepath.Join(reqDir, "REQ-001.md")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	row, _ = db.GetByID(models.KindRequirement, "REQ-001")
	if row != nil {
		t.Fatalf("expected stale entry removed, got %+v", row)
	}
}

func TestSync_SoftDeletedStaysInCatalog(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reqDir := filepath.Join(dir, "requirements")
	_ = os.MkdirAll(reqDir, 0o755)
	content := `---
id: "REQ-009"
title: "Obsolete"
isDeleted: true
deletedAt: 1724400000000
---

# Obsolete
`
	_ = os.WriteFile(filepath.Join(reqDir, "REQ-009.md"), []byte(content), 0o644)

	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	rows, total, err := db.ListArtifacts(ListOptions{Kind: models.KindRequirement})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("soft-deleted artifact leaked into listing: %v", rows)
	}

	rows, _, err = db.ListArtifacts(ListOptions{Kind: models.KindRequirement, IncludeDeleted: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].Deleted {
		t.Fatalf("expected deleted row in catalog, got %v", rows)
	}
}
