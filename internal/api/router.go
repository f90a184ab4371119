package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vetbridge/internal/matchservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *matchservice.Service, sseHandler http.Handler, logger *slog.Logger) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware)

	// Search.
	r.Get("/search", h.SearchGet)
	r.Post("/search", h.SearchPost)

	// Catalog.
	r.Get("/resources/{id}", h.GetResource)
	r.Get("/taxonomy", h.Taxonomy)

	// Recommendations and triage.
	r.Post("/recommendations", h.Recommend)
	r.Post("/triage", h.Triage)
	r.Post("/crisis/check", h.CheckCrisis)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
