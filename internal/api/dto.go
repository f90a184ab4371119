package api

import (
	"github.com/starford/vetbridge/internal/matchservice"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/search"
	"github.com/starford/vetbridge/internal/triage"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest = query.Request

// SearchResponse is one page of search results.
type SearchResponse = search.Response

// ResourceResponse wraps a single resource.
type ResourceResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    *models.Resource `json:"data"`
}

// RecommendRequest is the body of POST /api/recommendations.
type RecommendRequest = matchservice.RecommendRequest

// RecommendResponse wraps a three-track recommendation set.
type RecommendResponse struct {
	Success bool                      `json:"success" example:"true"`
	Data    *models.RecommendationSet `json:"data"`
}

// TriageRequest is the body of POST /api/triage.
type TriageRequest = triage.Request

// TriageResponse is the wizard's answer.
type TriageResponse = triage.Response

// CrisisCheckRequest is the body of POST /api/crisis/check.
type CrisisCheckRequest struct {
	Text     string   `json:"text" example:"I can't sleep"`
	Messages []string `json:"messages,omitempty"`
}

// TaxonomyResponse lists categories and symptoms.
type TaxonomyResponse = matchservice.TaxonomyView
