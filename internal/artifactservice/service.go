// Package artifactservice implements artifact CRUD over the workspace:
// canonical serialization, git commits per mutation, soft deletion, and
// catalog upkeep.
package artifactservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/codec"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Committer is the subset of version-control operations mutations need.
type Committer interface {
	CommitAll(ctx context.Context, message string) (string, error)
}

// Service implements artifact operations over workspace files.
type Service struct {
	store storage.Provider
	db    index.ArtifactIndex
	repo  Committer
	log   *slog.Logger
}

// New creates a Service. A nil logger falls back to slog.Default().
func New(store storage.Provider, db index.ArtifactIndex, repo Committer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, repo: repo, log: logger}
}

// Result describes a stored artifact revision.
type Result struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
	Commit   string `json:"commit,omitempty"`
}

// Path returns the workspace-relative file path of an artifact.
func Path(kind models.Kind, id string) string {
	return kind.Dir() + "/" + id + ".md"
}

// Create stores a new artifact. The incoming content is parsed, missing
// lifecycle fields are defaulted, and the canonical rendering is what
// hits disk, so every stored file round-trips byte-identically.
func (s *Service) Create(ctx context.Context, kind models.Kind, content string) (*Result, error) {
	if !kind.Valid() {
		return nil, apperr.ErrInvalidKind
	}
	doc := codec.ParseDocument(content)
	id := doc.Str("id", "")
	if id == "" {
		return nil, apperr.ErrMissingID
	}
	path := Path(kind, id)
	if _, err := s.store.Read(path); err == nil {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrAlreadyExists)
	}

	now := time.Now().UnixMilli()
	ensureDefaults(kind, doc)
	if doc.Int("dateCreated", 0) == 0 {
		doc.Set("dateCreated", now)
	}
	doc.Set("lastModified", now)

	return s.persist(ctx, doc, path, fmt.Sprintf("Add %s %s", kind, id))
}

// Get returns the stored content of an artifact. Soft-deleted artifacts
// are still readable: their file carries the deletion marker.
func (s *Service) Get(_ context.Context, kind models.Kind, id string) (*Result, error) {
	if !kind.Valid() {
		return nil, apperr.ErrInvalidKind
	}
	path := Path(kind, id)
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &Result{Path: path, Content: string(data), Checksum: checksum.Sum(data)}, nil
}

// Update replaces an artifact's content. The revision counter is bumped
// from the stored file, not from the caller's payload, so concurrent
// writers cannot silently reuse a revision. When ifMatch is non-empty
// it must equal the stored checksum or the update is rejected with
// apperr.ErrConflict.
func (s *Service) Update(ctx context.Context, kind models.Kind, id, content, ifMatch string) (*Result, error) {
	if !kind.Valid() {
		return nil, apperr.ErrInvalidKind
	}
	path := Path(kind, id)
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrConflict)
	}

	stored := codec.ParseDocument(string(existing))
	doc := codec.ParseDocument(content)
	doc.Set("id", id)
	ensureDefaults(kind, doc)
	doc.Set("revision", codec.BumpRevision(stored.Str("revision", codec.DefaultRevision)))
	if doc.Int("dateCreated", 0) == 0 {
		doc.Set("dateCreated", stored.Int("dateCreated", 0))
	}
	doc.Set("lastModified", time.Now().UnixMilli())

	return s.persist(ctx, doc, path, fmt.Sprintf("Update %s %s", kind, id))
}

// SoftDelete marks an artifact deleted in place. The file stays on disk
// and in history; listings exclude it from then on.
func (s *Service) SoftDelete(ctx context.Context, kind models.Kind, id string) (*Result, error) {
	if !kind.Valid() {
		return nil, apperr.ErrInvalidKind
	}
	path := Path(kind, id)
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}

	doc := codec.ParseDocument(string(existing))
	if doc.Bool("isDeleted") {
		return &Result{Path: path, Content: string(existing), Checksum: checksum.Sum(existing)}, nil
	}
	now := time.Now().UnixMilli()
	doc.Set("isDeleted", true)
	doc.Set("deletedAt", now)
	doc.Set("lastModified", now)

	return s.persist(ctx, doc, path, fmt.Sprintf("Delete %s %s", kind, id))
}

// List returns a filtered page of catalog rows plus the total count.
func (s *Service) List(opts index.ListOptions) ([]index.ArtifactRow, int, error) {
	return s.db.ListArtifacts(opts)
}

// persist renders doc canonically, writes it, commits, and reindexes.
func (s *Service) persist(ctx context.Context, doc *codec.Document, path, message string) (*Result, error) {
	rendered := doc.Render()
	if err := s.store.Write(path, []byte(rendered)); err != nil {
		return nil, err
	}

	hash, err := s.repo.CommitAll(ctx, message)
	if err != nil {
		// The file is on disk; the next mutation's commit will pick it
		// up. Surface the failure so callers know history lags.
		return nil, fmt.Errorf("artifact stored but not committed: %w", err)
	}

	if err := s.reindex(path, []byte(rendered)); err != nil {
		s.log.Warn("reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	return &Result{
		Path:     path,
		Content:  rendered,
		Checksum: checksum.Sum([]byte(rendered)),
		Commit:   hash,
	}, nil
}

func (s *Service) reindex(path string, data []byte) error {
	meta := codec.ExtractMeta(string(data))
	row := index.ArtifactRow{
		Path:       path,
		ArtifactID: meta.ID,
		Kind:       kindOfPath(path),
		Title:      meta.Title,
		Status:     meta.Status,
		Priority:   meta.Priority,
		Revision:   meta.Revision,
		Checksum:   checksum.Sum(data),
		Deleted:    meta.IsDeleted,
		UpdatedAt:  time.Now().UTC(),
	}
	return s.db.UpsertArtifact(row, string(data), meta.Related)
}

// ensureDefaults fills the lifecycle fields a minimal payload may omit.
// Status and priority exist only on kinds whose schema defines them;
// injecting them elsewhere would store keys the kind's codec drops.
func ensureDefaults(kind models.Kind, doc *codec.Document) {
	if kind.HasStatus() && doc.Str("status", "") == "" {
		doc.Set("status", codec.DefaultStatus)
	}
	if kind.HasPriority() && doc.Str("priority", "") == "" {
		doc.Set("priority", codec.DefaultPriority)
	}
	if doc.Str("revision", "") == "" {
		doc.Set("revision", codec.DefaultRevision)
	}
}

func kindOfPath(path string) models.Kind {
	dir, _, found := strings.Cut(path, "/")
	if !found {
		return ""
	}
	return models.KindFromDir(dir)
}
