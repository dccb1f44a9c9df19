// Package baseline creates and lists project baselines: immutable
// snapshots of the latest commit of every active artifact, recorded in
// the catalog and marked with an annotated tag in the repository.
package baseline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// Tagger is the subset of version-control operations baselines need.
type Tagger interface {
	LatestCommit(ctx context.Context, path string) (string, error)
	CreateTag(ctx context.Context, name, message string) error
}

// Manager creates and lists baselines.
type Manager struct {
	db     index.ArtifactIndex
	tagger Tagger
	log    *slog.Logger
}

// NewManager creates a Manager. A nil logger falls back to slog.Default().
func NewManager(db index.ArtifactIndex, tagger Tagger, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, tagger: tagger, log: logger}
}

// Create snapshots the current state of a project: the latest commit of
// every active artifact, plus the membership delta against the previous
// baseline. The snapshot is persisted first; the annotated tag is
// best-effort and its failure only logs a warning, since the catalog
// record alone fully describes the baseline.
func (m *Manager) Create(ctx context.Context, projectID, name, version, description string) (*models.ProjectBaseline, error) {
	if name == "" {
		return nil, fmt.Errorf("baseline: name is required")
	}
	if version == "" {
		return nil, fmt.Errorf("baseline: version is required")
	}

	artifacts, err := m.db.ActiveArtifacts()
	if err != nil {
		return nil, fmt.Errorf("baseline: list artifacts: %w", err)
	}

	commits := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		if a.ArtifactID == "" {
			continue
		}
		hash, err := m.tagger.LatestCommit(ctx, a.Path)
		if err != nil {
			return nil, fmt.Errorf("baseline: latest commit of %s: %w", a.Path, err)
		}
		// Files written but never committed have no hash yet; they are
		// part of the baseline with an empty pin and will resolve on
		// the next commit cycle.
		commits[a.ArtifactID] = hash
	}

	previous, err := m.db.LatestBaseline(projectID)
	if err != nil {
		return nil, fmt.Errorf("baseline: previous baseline: %w", err)
	}
	added, removed := membershipDelta(previous, commits)

	b := models.ProjectBaseline{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		Name:             name,
		Version:          version,
		Description:      description,
		Timestamp:        time.Now().UnixMilli(),
		ArtifactCommits:  commits,
		AddedArtifacts:   added,
		RemovedArtifacts: removed,
	}

	if err := m.db.InsertBaseline(b); err != nil {
		return nil, fmt.Errorf("baseline: persist: %w", err)
	}

	if err := m.tagger.CreateTag(ctx, version, fmt.Sprintf("Baseline: %s", name)); err != nil {
		m.log.Warn("baseline tag failed",
			slog.String("version", version),
			slog.String("error", err.Error()))
	}

	b.Latest = true
	return &b, nil
}

// List returns every baseline of a project, newest first, with the
// Latest flag set on the most recent one.
func (m *Manager) List(_ context.Context, projectID string) ([]models.ProjectBaseline, error) {
	return m.db.ListBaselines(projectID)
}

// membershipDelta compares current membership against the previous
// baseline. The first baseline of a project reports every artifact as
// added.
func membershipDelta(previous *models.ProjectBaseline, current map[string]string) (added, removed []string) {
	added = []string{}
	removed = []string{}

	var prev map[string]string
	if previous != nil {
		prev = previous.ArtifactCommits
	}
	for id := range current {
		if _, ok := prev[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range prev {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
