package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/starford/raido/internal/models"
)

// InsertBaseline persists a baseline and its artifact->commit snapshot
// within a transaction. Baselines are immutable: there is no update.
func (db *DB) InsertBaseline(b models.ProjectBaseline) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	added, _ := json.Marshal(emptyIfNil(b.AddedArtifacts))
	removed, _ := json.Marshal(emptyIfNil(b.RemovedArtifacts))

	_, err = tx.Exec(`
		INSERT INTO baselines (id, project_id, name, version, description, created_at, added, removed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.ProjectID, b.Name, b.Version, b.Description, b.Timestamp, string(added), string(removed))
	if err != nil {
		return fmt.Errorf("index: insert baseline: %w", err)
	}

	if len(b.ArtifactCommits) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO baseline_artifacts (baseline_id, artifact_id, commit_hash, seq) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare baseline artifact insert: %w", err)
		}
		defer stmt.Close()

		ids := make([]string, 0, len(b.ArtifactCommits))
		for id := range b.ArtifactCommits {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for seq, id := range ids {
			if _, err := stmt.Exec(b.ID, id, b.ArtifactCommits[id], seq); err != nil {
				return fmt.Errorf("index: insert baseline artifact: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListBaselines returns every baseline of a project, newest first. The
// baseline with the maximum timestamp carries the Latest flag.
func (db *DB) ListBaselines(projectID string) ([]models.ProjectBaseline, error) {
	rows, err := db.conn.Query(`
		SELECT id, project_id, name, version, description, created_at, added, removed
		FROM baselines
		WHERE project_id = ?
		ORDER BY created_at DESC, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("index: list baselines: %w", err)
	}
	defer rows.Close()

	out := []models.ProjectBaseline{}
	for rows.Next() {
		b, err := scanBaseline(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		commits, err := db.baselineCommits(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ArtifactCommits = commits
	}

	// Mark the newest baseline. Ties keep the first in list order.
	var maxTS int64 = -1
	maxIdx := -1
	for i, b := range out {
		if b.Timestamp > maxTS {
			maxTS = b.Timestamp
			maxIdx = i
		}
	}
	if maxIdx >= 0 {
		out[maxIdx].Latest = true
	}
	return out, nil
}

// LatestBaseline returns the newest baseline of a project, or nil when
// the project has none.
func (db *DB) LatestBaseline(projectID string) (*models.ProjectBaseline, error) {
	row := db.conn.QueryRow(`
		SELECT id, project_id, name, version, description, created_at, added, removed
		FROM baselines
		WHERE project_id = ?
		ORDER BY created_at DESC, id
		LIMIT 1
	`, projectID)
	b, err := scanBaseline(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: latest baseline: %w", err)
	}
	commits, err := db.baselineCommits(b.ID)
	if err != nil {
		return nil, err
	}
	b.ArtifactCommits = commits
	b.Latest = true
	return &b, nil
}

func scanBaseline(scan func(...any) error) (models.ProjectBaseline, error) {
	var b models.ProjectBaseline
	var added, removed string
	err := scan(&b.ID, &b.ProjectID, &b.Name, &b.Version, &b.Description, &b.Timestamp, &added, &removed)
	if err != nil {
		return b, err
	}
	b.AddedArtifacts = []string{}
	b.RemovedArtifacts = []string{}
	_ = json.Unmarshal([]byte(added), &b.AddedArtifacts)
	_ = json.Unmarshal([]byte(removed), &b.RemovedArtifacts)
	return b, nil
}

func (db *DB) baselineCommits(baselineID string) (map[string]string, error) {
	rows, err := db.conn.Query(`
		SELECT artifact_id, commit_hash
		FROM baseline_artifacts
		WHERE baseline_id = ?
		ORDER BY seq
	`, baselineID)
	if err != nil {
		return nil, fmt.Errorf("index: baseline artifacts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		out[id] = hash
	}
	return out, rows.Err()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
