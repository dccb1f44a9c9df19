// Package history answers revision-history queries on top of the
// version-control backend. Read queries are fail-soft: a backend
// failure is logged and surfaced as an empty result, so a broken or
// missing repository never takes down artifact reads.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/starford/raido/internal/codec"
	"github.com/starford/raido/internal/models"
)

// DefaultTimeout bounds a single backend query.
const DefaultTimeout = 10 * time.Second

// Backend is the subset of version-control operations history queries
// need.
type Backend interface {
	Log(ctx context.Context) ([]models.CommitInfo, error)
	LogPath(ctx context.Context, path string) ([]models.CommitInfo, error)
	Tags(ctx context.Context) ([]models.TagDetail, error)
	ShowFile(ctx context.Context, hash, path string) ([]byte, error)
}

// Service serves history queries with a per-query timeout.
type Service struct {
	backend Backend
	timeout time.Duration
	log     *slog.Logger
}

// NewService creates a Service. A zero timeout falls back to
// DefaultTimeout; a nil logger falls back to slog.Default().
func NewService(backend Backend, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, timeout: timeout, log: logger}
}

// GetHistory returns the full commit log, newest first. Backend
// failures yield an empty (non-nil) slice.
func (s *Service) GetHistory(ctx context.Context) []models.CommitInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	commits, err := s.backend.Log(ctx)
	if err != nil {
		s.log.Warn("history query failed", "err", err)
		return []models.CommitInfo{}
	}
	if commits == nil {
		commits = []models.CommitInfo{}
	}
	return commits
}

// GetArtifactHistory returns the commit log for one artifact file,
// newest first. Backend failures yield an empty (non-nil) slice.
func (s *Service) GetArtifactHistory(ctx context.Context, path string) []models.CommitInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	commits, err := s.backend.LogPath(ctx, path)
	if err != nil {
		s.log.Warn("artifact history query failed", "path", path, "err", err)
		return []models.CommitInfo{}
	}
	if commits == nil {
		commits = []models.CommitInfo{}
	}
	return commits
}

// GetTagsWithDetails returns every tag with message, timestamp and
// resolved commit. Backend failures yield an empty (non-nil) slice.
func (s *Service) GetTagsWithDetails(ctx context.Context) []models.TagDetail {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tags, err := s.backend.Tags(ctx)
	if err != nil {
		s.log.Warn("tag query failed", "err", err)
		return []models.TagDetail{}
	}
	if tags == nil {
		tags = []models.TagDetail{}
	}
	return tags
}

// AnnotatedCommit is a log entry with the name of the tag pointing at
// it, when one exists.
type AnnotatedCommit struct {
	models.CommitInfo
	Tag string `json:"tag,omitempty"`
}

// AnnotatedHistory returns the full log with each commit annotated with
// its tag. When several tags point at the same commit the
// lexicographically smallest name wins, so the annotation is stable
// across runs.
func (s *Service) AnnotatedHistory(ctx context.Context) []AnnotatedCommit {
	commits := s.GetHistory(ctx)
	tags := s.GetTagsWithDetails(ctx)
	return AnnotateCommits(commits, tags)
}

// AnnotateCommits correlates commits with tags by commit hash.
func AnnotateCommits(commits []models.CommitInfo, tags []models.TagDetail) []AnnotatedCommit {
	byCommit := make(map[string][]string, len(tags))
	for _, t := range tags {
		byCommit[t.Commit] = append(byCommit[t.Commit], t.Name)
	}
	for _, names := range byCommit {
		sort.Strings(names)
	}

	out := make([]AnnotatedCommit, 0, len(commits))
	for _, c := range commits {
		ac := AnnotatedCommit{CommitInfo: c}
		if names := byCommit[c.Hash]; len(names) > 0 {
			ac.Tag = names[0]
		}
		out = append(out, ac)
	}
	return out
}

// FileAtCommit returns the artifact file content as of a commit. Unlike
// the log queries this is not fail-soft: the caller asked for one
// specific revision and needs to know when it cannot be produced.
func (s *Service) FileAtCommit(ctx context.Context, hash, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.backend.ShowFile(ctx, hash, path)
	if err != nil {
		return nil, fmt.Errorf("history: file %s at %s: %w", path, hash, err)
	}
	return data, nil
}

// FieldChange records one frontmatter key whose value differs between
// two revisions.
type FieldChange struct {
	Key  string `json:"key"`
	From string `json:"from"`
	To   string `json:"to"`
}

// SectionChange records one body section whose text differs between two
// revisions.
type SectionChange struct {
	Heading string `json:"heading"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ArtifactDiff is the field-level difference of one artifact between
// two commits.
type ArtifactDiff struct {
	Path     string          `json:"path"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Fields   []FieldChange   `json:"fields"`
	Sections []SectionChange `json:"sections"`
}

// DiffArtifact compares one artifact file between two commits and
// reports changed frontmatter keys and body sections.
func (s *Service) DiffArtifact(ctx context.Context, path, from, to string) (*ArtifactDiff, error) {
	fromData, err := s.FileAtCommit(ctx, from, path)
	if err != nil {
		return nil, err
	}
	toData, err := s.FileAtCommit(ctx, to, path)
	if err != nil {
		return nil, err
	}

	fromDoc := codec.ParseDocument(string(fromData))
	toDoc := codec.ParseDocument(string(toData))

	diff := &ArtifactDiff{
		Path:     path,
		From:     from,
		To:       to,
		Fields:   []FieldChange{},
		Sections: []SectionChange{},
	}

	for _, key := range unionKeys(fromDoc, toDoc) {
		fv, _ := fromDoc.Get(key)
		tv, _ := toDoc.Get(key)
		fs, ts := formatValue(fv), formatValue(tv)
		if fs != ts {
			diff.Fields = append(diff.Fields, FieldChange{Key: key, From: fs, To: ts})
		}
	}
	if fromDoc.Title != toDoc.Title {
		diff.Fields = append(diff.Fields, FieldChange{Key: "title", From: fromDoc.Title, To: toDoc.Title})
	}
	for _, heading := range unionSections(fromDoc, toDoc) {
		fb, tb := fromDoc.Section(heading), toDoc.Section(heading)
		if fb != tb {
			diff.Sections = append(diff.Sections, SectionChange{Heading: heading, From: fb, To: tb})
		}
	}
	return diff, nil
}

// unionKeys returns every frontmatter key of both documents, in
// from-document order with to-only keys appended. The explicit title
// entry is skipped when present so it is not reported twice.
func unionKeys(from, to *codec.Document) []string {
	seen := map[string]bool{"title": true}
	var keys []string
	for _, e := range from.Frontmatter {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	for _, e := range to.Frontmatter {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func unionSections(from, to *codec.Document) []string {
	seen := map[string]bool{}
	var headings []string
	for _, s := range from.Sections {
		if !seen[s.Heading] {
			seen[s.Heading] = true
			headings = append(headings, s.Heading)
		}
	}
	for _, s := range to.Sections {
		if !seen[s.Heading] {
			seen[s.Heading] = true
			headings = append(headings, s.Heading)
		}
	}
	return headings
}

// formatValue renders a frontmatter value as a comparable string.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ", ")
	case []models.CustomAttribute:
		parts := make([]string, 0, len(t))
		for _, a := range t {
			parts = append(parts, a.AttributeID+"="+cast.ToString(a.Value))
		}
		return strings.Join(parts, ", ")
	default:
		return cast.ToString(t)
	}
}
