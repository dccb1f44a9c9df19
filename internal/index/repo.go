package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// ArtifactRow represents a row in the artifacts table.
type ArtifactRow struct {
	Path       string
	ArtifactID string
	Kind       models.Kind
	Title      string
	Status     string
	Priority   string
	Revision   string
	Checksum   string
	Deleted    bool
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// LinkRow is one directed relationship between two artifact ids.
type LinkRow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// ListOptions filters and pages a catalog listing.
type ListOptions struct {
	Kind           models.Kind
	Status         string
	IncludeDeleted bool
	Limit          int
	Offset         int
	Sort           string // "id", "title", "updated" (default "id")
}

// UpsertArtifact inserts or replaces an artifact, its FTS entry, and
// its outgoing relationship links within a transaction.
func (db *DB) UpsertArtifact(a ArtifactRow, body string, related []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	deleted := 0
	if a.Deleted {
		deleted = 1
	}

	_, err = tx.Exec(`
		INSERT INTO artifacts (path, artifact_id, kind, title, status, priority, revision, checksum, deleted, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			artifact_id = excluded.artifact_id,
			kind        = excluded.kind,
			title       = excluded.title,
			status      = excluded.status,
			priority    = excluded.priority,
			revision    = excluded.revision,
			checksum    = excluded.checksum,
			deleted     = excluded.deleted,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, a.Path, a.ArtifactID, string(a.Kind), a.Title, a.Status, a.Priority, a.Revision, a.Checksum, deleted, body, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert artifact: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, a.Path, a.Title, body, string(a.Kind)); err != nil {
		return err
	}

	// Replace outgoing links: delete old then bulk insert.
	if a.ArtifactID != "" {
		_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, a.ArtifactID)
		if len(related) > 0 {
			stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, type) VALUES (?, ?, 'reference')`)
			if err != nil {
				return fmt.Errorf("index: prepare link insert: %w", err)
			}
			defer stmt.Close()
			for _, target := range related {
				if _, err := stmt.Exec(a.ArtifactID, target); err != nil {
					return fmt.Errorf("index: insert link: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

// DeleteArtifact removes an artifact row, its FTS entry, and its
// outgoing links. Used when a file disappears from disk; soft-deleted
// artifacts stay in the catalog with the deleted flag set instead.
func (db *DB) DeleteArtifact(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	_ = tx.QueryRow(`SELECT artifact_id FROM artifacts WHERE path = ?`, path).Scan(&id)

	ftsDelete(tx, path)
	if id != "" {
		_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, id)
	}
	_, _ = tx.Exec(`DELETE FROM artifacts WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or empty string
// if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM artifacts WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum %s: %w", path, err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed artifact.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// AllPaths returns every indexed artifact path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

const artifactColumns = `path, artifact_id, kind, title, status, priority, revision, checksum, deleted, updated_at`

func scanArtifact(scan func(...any) error) (ArtifactRow, error) {
	var a ArtifactRow
	var kind string
	var deleted int
	err := scan(&a.Path, &a.ArtifactID, &kind, &a.Title, &a.Status, &a.Priority, &a.Revision, &a.Checksum, &deleted, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	a.Kind = models.Kind(kind)
	a.Deleted = deleted != 0
	return a, nil
}

// GetByID returns the catalog row for one artifact id within a kind.
// Returns nil when the artifact is not indexed.
func (db *DB) GetByID(kind models.Kind, id string) (*ArtifactRow, error) {
	row := db.conn.QueryRow(`
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE kind = ? AND artifact_id = ?
	`, string(kind), id)
	a, err := scanArtifact(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get %s/%s: %w", kind, id, err)
	}
	return &a, nil
}

// ListArtifacts returns a filtered page of catalog rows and the total
// count matching the filter. Soft-deleted artifacts are excluded unless
// IncludeDeleted is set.
func (db *DB) ListArtifacts(opts ListOptions) ([]ArtifactRow, int, error) {
	var where []string
	var args []any
	if opts.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(opts.Kind))
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if !opts.IncludeDeleted {
		where = append(where, "deleted = 0")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM artifacts`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count artifacts: %w", err)
	}

	order := "artifact_id"
	switch opts.Sort {
	case "title":
		order = "title"
	case "updated":
		order = "updated_at DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(`
		SELECT `+artifactColumns+`
		FROM artifacts`+cond+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, append(args, limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRow
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// ActiveArtifacts returns every non-deleted artifact ordered by path.
// The stable order makes baseline membership deterministic.
func (db *DB) ActiveArtifacts() ([]ArtifactRow, error) {
	rows, err := db.conn.Query(`
		SELECT ` + artifactColumns + `
		FROM artifacts
		WHERE deleted = 0
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: active artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRow
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TraceLinks returns the outgoing and incoming relationships of one
// artifact id.
func (db *DB) TraceLinks(id string) (outgoing, incoming []LinkRow, err error) {
	collect := func(query, arg string) ([]LinkRow, error) {
		rows, err := db.conn.Query(query, arg)
		if err != nil {
			return nil, fmt.Errorf("index: trace links: %w", err)
		}
		defer rows.Close()
		out := []LinkRow{}
		for rows.Next() {
			var l LinkRow
			if err := rows.Scan(&l.Source, &l.Target, &l.Type); err != nil {
				return nil, err
			}
			out = append(out, l)
		}
		return out, rows.Err()
	}

	outgoing, err = collect(`SELECT source, target, type FROM links WHERE source = ? ORDER BY target`, id)
	if err != nil {
		return nil, nil, err
	}
	incoming, err = collect(`SELECT source, target, type FROM links WHERE target = ? ORDER BY source`, id)
	if err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

// GraphNode is one artifact in the traceability graph.
type GraphNode struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// GraphLink is one edge in the traceability graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Graph returns the full traceability graph over non-deleted artifacts.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	rows, err := db.conn.Query(`
		SELECT artifact_id, kind, title
		FROM artifacts
		WHERE deleted = 0 AND artifact_id != ''
		ORDER BY artifact_id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	linkRows, err := db.conn.Query(`SELECT source, target, type FROM links ORDER BY source, target`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer linkRows.Close()

	var links []GraphLink
	for linkRows.Next() {
		var l GraphLink
		if err := linkRows.Scan(&l.Source, &l.Target, &l.Type); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, linkRows.Err()
}
