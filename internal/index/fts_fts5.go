//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS artifacts_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			kind,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, body, kind string) error {
	_, _ = tx.Exec(`DELETE FROM artifacts_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO artifacts_fts (path, title, body, kind) VALUES (?, ?, ?, ?)`,
		path, title, body, kind)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM artifacts_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search and returns matching results
// with snippets. Soft-deleted artifacts keep their FTS rows but are
// filtered out through the catalog, matching the LIKE fallback.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT artifacts_fts.path,
		       artifacts_fts.title,
		       snippet(artifacts_fts, 2, '<b>', '</b>', '...', 64)
		FROM artifacts_fts
		JOIN artifacts ON artifacts.path = artifacts_fts.path
		WHERE artifacts_fts MATCH ? AND artifacts.deleted = 0
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
