package api

import (
	"github.com/starford/raido/internal/artifactservice"
	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// CreateArtifactRequest is the request body for creating an artifact.
type CreateArtifactRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateArtifactRequest is the request body for updating an artifact.
type UpdateArtifactRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateBaselineRequest is the request body for creating a baseline.
type CreateBaselineRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Version     string `json:"version" validate:"required"`
	Description string `json:"description"`
}

// ArtifactDetail is the full artifact response type (aliased from the
// domain layer).
type ArtifactDetail = artifactservice.Result

// ArtifactListItem is a lightweight item in a list response.
type ArtifactListItem struct {
	Path     string      `json:"path"`
	ID       string      `json:"id"`
	Kind     models.Kind `json:"kind"`
	Title    string      `json:"title"`
	Status   string      `json:"status"`
	Priority string      `json:"priority"`
	Revision string      `json:"revision"`
	Checksum string      `json:"checksum"`
	Deleted  bool        `json:"deleted,omitempty"`
}

// ArtifactListResponse wraps paginated artifact listings.
type ArtifactListResponse struct {
	Artifacts []ArtifactListItem `json:"artifacts" validate:"required"`
	Total     int                `json:"total" validate:"required"`
}

// HistoryResponse wraps a commit log.
type HistoryResponse struct {
	Commits []models.CommitInfo `json:"commits" validate:"required"`
}

// AnnotatedHistoryResponse wraps the tag-annotated commit log.
type AnnotatedHistoryResponse struct {
	Commits []history.AnnotatedCommit `json:"commits" validate:"required"`
}

// TagListResponse wraps baseline tag details.
type TagListResponse struct {
	Tags []models.TagDetail `json:"tags" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Snippet string `json:"snippet" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TraceResponse wraps the relationships of one artifact.
type TraceResponse struct {
	Outgoing []index.LinkRow `json:"outgoing" validate:"required"`
	Incoming []index.LinkRow `json:"incoming" validate:"required"`
}

// TraceGraphResponse wraps the full traceability graph.
type TraceGraphResponse struct {
	Nodes []index.GraphNode `json:"nodes" validate:"required"`
	Links []index.GraphLink `json:"links" validate:"required"`
}

// StatusResponse wraps the working-tree status.
type StatusResponse struct {
	Files []models.FileStatus `json:"files" validate:"required"`
}

func listItem(row index.ArtifactRow) ArtifactListItem {
	return ArtifactListItem{
		Path:     row.Path,
		ID:       row.ArtifactID,
		Kind:     row.Kind,
		Title:    row.Title,
		Status:   row.Status,
		Priority: row.Priority,
		Revision: row.Revision,
		Checksum: row.Checksum,
		Deleted:  row.Deleted,
	}
}
