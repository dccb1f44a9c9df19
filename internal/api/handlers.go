package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/artifactservice"
	"github.com/starford/raido/internal/baseline"
	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// StatusProvider reports the working-tree state of the workspace.
type StatusProvider interface {
	Status(ctx context.Context) ([]models.FileStatus, error)
}

// EventPublisher announces mutations to SSE clients. File-backed
// artifact mutations are announced by the watcher; only baseline
// creation, which touches no workspace file, is published here.
type EventPublisher interface {
	PublishBaselineEvent(projectID, version string)
}

// Handler holds API route handlers.
type Handler struct {
	svc       *artifactservice.Service
	hist      *history.Service
	baselines *baseline.Manager
	db        index.ArtifactIndex
	status    StatusProvider
	events    EventPublisher
}

// NewHandler creates a new Handler. status and events may be nil.
func NewHandler(svc *artifactservice.Service, hist *history.Service, baselines *baseline.Manager, db index.ArtifactIndex, status StatusProvider, events EventPublisher) *Handler {
	return &Handler{svc: svc, hist: hist, baselines: baselines, db: db, status: status, events: events}
}

func artifactKind(r *http.Request) models.Kind {
	return models.Kind(chi.URLParam(r, "kind"))
}

func artifactID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// writeArtifactError maps domain errors onto HTTP statuses.
func writeArtifactError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("artifact already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusPreconditionFailed, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrInvalidKind):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact kind"))
	case errors.Is(err, apperr.ErrMissingID):
		writeJSON(w, http.StatusBadRequest, errorBody("artifact id is required"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListArtifacts handles GET /api/artifacts.
//
//	@Summary		List artifacts with optional filtering and pagination
//	@Tags			artifacts
//	@Produce		json
//	@Param			kind			query		string	false	"Artifact kind"
//	@Param			status			query		string	false	"Lifecycle status filter"
//	@Param			includeDeleted	query		bool	false	"Include soft-deleted artifacts"
//	@Param			limit			query		int		false	"Page size"
//	@Param			offset			query		int		false	"Page offset"
//	@Param			sort			query		string	false	"Sort field"	Enums(id, title, updated)
//	@Success		200				{object}	ArtifactListResponse
//	@Security		BearerAuth
//	@Router			/artifacts [get]
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	kind := models.Kind(q.Get("kind"))
	if kind != "" && !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact kind"))
		return
	}

	rows, total, err := h.svc.List(index.ListOptions{
		Kind:           kind,
		Status:         q.Get("status"),
		IncludeDeleted: q.Get("includeDeleted") == "true",
		Limit:          limit,
		Offset:         offset,
		Sort:           q.Get("sort"),
	})
	if err != nil {
		slog.Error("list artifacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]ArtifactListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItem(row))
	}
	writeJSON(w, http.StatusOK, ArtifactListResponse{Artifacts: items, Total: total})
}

// CreateArtifact handles POST /api/artifacts/{kind}.
//
//	@Summary		Create a new artifact from markdown content
//	@Tags			artifacts
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string					true	"Artifact kind"
//	@Param			body	body		CreateArtifactRequest	true	"Artifact to create"
//	@Success		201		{object}	ArtifactDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind} [post]
func (h *Handler) CreateArtifact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	res, err := h.svc.Create(r.Context(), artifactKind(r), req.Content)
	if err != nil {
		writeArtifactError(w, err, "create artifact")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetArtifact handles GET /api/artifacts/{kind}/{id}.
//
//	@Summary		Get a single artifact
//	@Tags			artifacts
//	@Produce		json
//	@Param			kind	path		string	true	"Artifact kind"
//	@Param			id		path		string	true	"Artifact id"
//	@Success		200		{object}	ArtifactDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id} [get]
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), artifactKind(r), artifactID(r))
	if err != nil {
		writeArtifactError(w, err, "get artifact")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateArtifact handles PUT /api/artifacts/{kind}/{id}.
//
//	@Summary		Update an artifact with optimistic concurrency
//	@Tags			artifacts
//	@Accept			json
//	@Produce		json
//	@Param			kind		path		string					true	"Artifact kind"
//	@Param			id			path		string					true	"Artifact id"
//	@Param			If-Match	header		string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateArtifactRequest	true	"Updated content"
//	@Success		200			{object}	ArtifactDetail
//	@Failure		404			{object}	errResponse
//	@Failure		412			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id} [put]
func (h *Handler) UpdateArtifact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req UpdateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	res, err := h.svc.Update(r.Context(), artifactKind(r), artifactID(r), req.Content, r.Header.Get("If-Match"))
	if err != nil {
		writeArtifactError(w, err, "update artifact")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteArtifact handles DELETE /api/artifacts/{kind}/{id}.
//
//	@Summary		Soft-delete an artifact (the file and its history stay)
//	@Tags			artifacts
//	@Produce		json
//	@Param			kind	path		string	true	"Artifact kind"
//	@Param			id		path		string	true	"Artifact id"
//	@Success		200		{object}	ArtifactDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id} [delete]
func (h *Handler) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SoftDelete(r.Context(), artifactKind(r), artifactID(r))
	if err != nil {
		writeArtifactError(w, err, "delete artifact")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ArtifactHistory handles GET /api/artifacts/{kind}/{id}/history.
//
//	@Summary		Get the commit log of one artifact, newest first
//	@Tags			history
//	@Produce		json
//	@Param			kind	path		string	true	"Artifact kind"
//	@Param			id		path		string	true	"Artifact id"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id}/history [get]
func (h *Handler) ArtifactHistory(w http.ResponseWriter, r *http.Request) {
	kind := artifactKind(r)
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact kind"))
		return
	}
	path := artifactservice.Path(kind, artifactID(r))
	commits := h.hist.GetArtifactHistory(r.Context(), path)
	writeJSON(w, http.StatusOK, HistoryResponse{Commits: commits})
}

// ArtifactAtCommit handles GET /api/artifacts/{kind}/{id}/at/{commit}.
//
//	@Summary		Get artifact content as of a specific commit
//	@Tags			history
//	@Produce		json
//	@Param			kind	path		string	true	"Artifact kind"
//	@Param			id		path		string	true	"Artifact id"
//	@Param			commit	path		string	true	"Commit hash"
//	@Success		200		{object}	ArtifactDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id}/at/{commit} [get]
func (h *Handler) ArtifactAtCommit(w http.ResponseWriter, r *http.Request) {
	kind := artifactKind(r)
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact kind"))
		return
	}
	path := artifactservice.Path(kind, artifactID(r))
	data, err := h.hist.FileAtCommit(r.Context(), chi.URLParam(r, "commit"), path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("revision not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path, "content": string(data)})
}

// DiffArtifact handles GET /api/artifacts/{kind}/{id}/diff?from=&to=.
//
//	@Summary		Field-level diff of an artifact between two commits
//	@Tags			history
//	@Produce		json
//	@Param			kind	path		string	true	"Artifact kind"
//	@Param			id		path		string	true	"Artifact id"
//	@Param			from	query		string	true	"Older commit hash"
//	@Param			to		query		string	true	"Newer commit hash"
//	@Success		200		{object}	history.ArtifactDiff
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{kind}/{id}/diff [get]
func (h *Handler) DiffArtifact(w http.ResponseWriter, r *http.Request) {
	kind := artifactKind(r)
	if !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact kind"))
		return
	}
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	path := artifactservice.Path(kind, artifactID(r))
	diff, err := h.hist.DiffArtifact(r.Context(), path, from, to)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("revision not found"))
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// History handles GET /api/history.
//
//	@Summary		Full commit log annotated with baseline tags
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	AnnotatedHistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	commits := h.hist.AnnotatedHistory(r.Context())
	writeJSON(w, http.StatusOK, AnnotatedHistoryResponse{Commits: commits})
}

// Tags handles GET /api/tags.
//
//	@Summary		List baseline tags with messages and timestamps
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags := h.hist.GetTagsWithDetails(r.Context())
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// WorkspaceStatus handles GET /api/status.
//
//	@Summary		Working-tree status of the workspace repository
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) WorkspaceStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeJSON(w, http.StatusOK, StatusResponse{Files: []models.FileStatus{}})
		return
	}
	files, err := h.status.Status(r.Context())
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if files == nil {
		files = []models.FileStatus{}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Files: files})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over artifact titles and bodies
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Trace handles GET /api/trace/{id}.
//
//	@Summary		Outgoing and incoming relationships of one artifact
//	@Tags			trace
//	@Produce		json
//	@Param			id	path		string	true	"Artifact id"
//	@Success		200	{object}	TraceResponse
//	@Security		BearerAuth
//	@Router			/trace/{id} [get]
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	outgoing, incoming, err := h.db.TraceLinks(chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("trace failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TraceResponse{Outgoing: outgoing, Incoming: incoming})
}

// TraceGraph handles GET /api/trace.
//
//	@Summary		Full traceability graph over active artifacts
//	@Tags			trace
//	@Produce		json
//	@Success		200	{object}	TraceGraphResponse
//	@Security		BearerAuth
//	@Router			/trace [get]
func (h *Handler) TraceGraph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.db.Graph()
	if err != nil {
		slog.Error("trace graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if nodes == nil {
		nodes = []index.GraphNode{}
	}
	if links == nil {
		links = []index.GraphLink{}
	}
	writeJSON(w, http.StatusOK, TraceGraphResponse{Nodes: nodes, Links: links})
}

// ListBaselines handles GET /api/baselines.
//
//	@Summary		List baselines of a project, newest first
//	@Tags			baselines
//	@Produce		json
//	@Param			projectId	query		string	true	"Project id"
//	@Success		200			{object}	[]models.ProjectBaseline
//	@Security		BearerAuth
//	@Router			/baselines [get]
func (h *Handler) ListBaselines(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("projectId is required"))
		return
	}
	list, err := h.baselines.List(r.Context(), projectID)
	if err != nil {
		slog.Error("list baselines failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateBaseline handles POST /api/baselines.
//
//	@Summary		Create a baseline snapshot of the project
//	@Tags			baselines
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateBaselineRequest	true	"Baseline to create"
//	@Success		201		{object}	models.ProjectBaseline
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/baselines [post]
func (h *Handler) CreateBaseline(w http.ResponseWriter, r *http.Request) {
	var req CreateBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ProjectID == "" || req.Name == "" || req.Version == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("projectId, name and version are required"))
		return
	}

	b, err := h.baselines.Create(r.Context(), req.ProjectID, req.Name, req.Version, req.Description)
	if err != nil {
		slog.Error("create baseline failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if h.events != nil {
		h.events.PublishBaselineEvent(b.ProjectID, b.Version)
	}
	writeJSON(w, http.StatusCreated, b)
}
