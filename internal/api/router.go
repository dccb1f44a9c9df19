package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Artifacts CRUD.
	r.Get("/artifacts", h.ListArtifacts)
	r.Post("/artifacts/{kind}", h.CreateArtifact)
	r.Get("/artifacts/{kind}/{id}", h.GetArtifact)
	r.Put("/artifacts/{kind}/{id}", h.UpdateArtifact)
	r.Delete("/artifacts/{kind}/{id}", h.DeleteArtifact)

	// Revision history.
	r.Get("/artifacts/{kind}/{id}/history", h.ArtifactHistory)
	r.Get("/artifacts/{kind}/{id}/at/{commit}", h.ArtifactAtCommit)
	r.Get("/artifacts/{kind}/{id}/diff", h.DiffArtifact)
	r.Get("/history", h.History)
	r.Get("/tags", h.Tags)
	r.Get("/status", h.WorkspaceStatus)

	// Search and traceability.
	r.Get("/search", h.Search)
	r.Get("/trace", h.TraceGraph)
	r.Get("/trace/{id}", h.Trace)

	// Baselines.
	r.Get("/baselines", h.ListBaselines)
	r.Post("/baselines", h.CreateBaseline)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
