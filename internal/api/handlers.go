package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vetbridge/internal/apperr"
	"github.com/starford/vetbridge/internal/matchservice"
	"github.com/starford/vetbridge/internal/query"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc    *matchservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *matchservice.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// fail maps err onto a status code and writes the error body.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrCatalogUnavailable):
		h.logger.Error("api: "+op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("resource catalog unavailable"))
	default:
		h.logger.Error("api: "+op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// SearchGet handles GET /api/search.
//
//	@Summary		Search the resource catalog
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	false	"Free text"
//	@Param			category	query		string	false	"Category key"
//	@Param			symptoms	query		string	false	"Comma-separated symptom keys"
//	@Param			severity	query		string	false	"Severity tier"	Enums(low, moderate, high, crisis)
//	@Param			location	query		string	false	"Region code or 'national'"
//	@Param			type		query		string	false	"Resource type"	Enums(institutional, grassroots, regional)
//	@Param			minRating	query		number	false	"Minimum rating"
//	@Param			page		query		int		false	"Page number"
//	@Param			pageSize	query		int		false	"Page size"
//	@Param			seed		query		string	false	"Composition seed"
//	@Success		200			{object}	SearchResponse
//	@Failure		503			{object}	errResponse
//	@Router			/search [get]
func (h *Handler) SearchGet(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, searchRequestFromQuery(r))
}

// SearchPost handles POST /api/search.
//
//	@Summary		Search the resource catalog
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SearchRequest	true	"Search request"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/search [post]
func (h *Handler) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	h.search(w, r, req)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, req query.Request) {
	resp, err := h.svc.Search(r.Context(), req)
	if err != nil {
		h.fail(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// searchRequestFromQuery reads search parameters from the URL. Malformed
// numbers are ignored rather than rejected.
func searchRequestFromQuery(r *http.Request) query.Request {
	q := r.URL.Query()
	req := query.Request{
		Query:        q.Get("q"),
		Category:     q.Get("category"),
		Severity:     q.Get("severity"),
		Location:     q.Get("location"),
		ResourceType: q.Get("type"),
		Seed:         q.Get("seed"),
	}
	for _, v := range q["symptoms"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Symptoms = append(req.Symptoms, s)
			}
		}
	}
	if v, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil {
		req.MinRating = &v
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return req
}

// GetResource handles GET /api/resources/{id}.
//
//	@Summary		Get a single resource
//	@Tags			resources
//	@Produce		json
//	@Param			id	path		string	true	"Resource id"
//	@Success		200	{object}	ResourceResponse
//	@Failure		404	{object}	errResponse
//	@Router			/resources/{id} [get]
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get resource", err)
		return
	}
	writeJSON(w, http.StatusOK, ResourceResponse{Success: true, Data: res})
}

// Taxonomy handles GET /api/taxonomy.
//
//	@Summary		List categories and symptoms
//	@Tags			resources
//	@Produce		json
//	@Success		200	{object}	TaxonomyResponse
//	@Router			/taxonomy [get]
func (h *Handler) Taxonomy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Taxonomy())
}

// Recommend handles POST /api/recommendations.
//
//	@Summary		Build a three-track recommendation set
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecommendRequest	true	"What to recommend for"
//	@Success		200		{object}	RecommendResponse
//	@Failure		503		{object}	errResponse
//	@Router			/recommendations [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !decode(w, r, &req) {
		return
	}
	set, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		h.fail(w, "recommend", err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendResponse{Success: true, Data: set})
}

// Triage handles POST /api/triage.
//
//	@Summary		Advance the triage wizard by one step
//	@Tags			triage
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TriageRequest	true	"Wizard turn"
//	@Success		200		{object}	TriageResponse
//	@Failure		400		{object}	errResponse
//	@Router			/triage [post]
func (h *Handler) Triage(w http.ResponseWriter, r *http.Request) {
	var req TriageRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Triage(r.Context(), req))
}

// CheckCrisis handles POST /api/crisis/check.
//
//	@Summary		Screen text for crisis language
//	@Tags			triage
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CrisisCheckRequest	true	"Text to screen"
//	@Success		200		{object}	matchservice.CrisisCheck
//	@Router			/crisis/check [post]
func (h *Handler) CheckCrisis(w http.ResponseWriter, r *http.Request) {
	var req CrisisCheckRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.CheckCrisis(append([]string{req.Text}, req.Messages...)...))
}
