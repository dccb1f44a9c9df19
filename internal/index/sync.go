package index

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/codec"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the workspace and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
//
// Soft-deleted artifacts keep their files, so they stay in the catalog
// with the deleted flag set.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteArtifact(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile extracts catalog metadata from data and upserts it.
func indexFile(db *DB, relPath string, data []byte) error {
	text := string(data)
	meta := codec.ExtractMeta(text)

	row := ArtifactRow{
		Path:       relPath,
		ArtifactID: meta.ID,
		Kind:       kindOfPath(relPath),
		Title:      meta.Title,
		Status:     meta.Status,
		Priority:   meta.Priority,
		Revision:   meta.Revision,
		Checksum:   checksum.Sum(data),
		Deleted:    meta.IsDeleted,
		UpdatedAt:  time.Now().UTC(),
	}
	return db.UpsertArtifact(row, text, meta.Related)
}

// kindOfPath derives the artifact kind from the first path segment.
func kindOfPath(relPath string) models.Kind {
	dir, _, found := strings.Cut(filepath.ToSlash(relPath), "/")
	if !found {
		return ""
	}
	return models.KindFromDir(dir)
}
