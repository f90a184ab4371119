// Package matchservice is the facade shared by the HTTP API and the MCP
// server.
package matchservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/vetbridge/internal/apperr"
	"github.com/starford/vetbridge/internal/crisis"
	"github.com/starford/vetbridge/internal/metrics"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/recommend"
	"github.com/starford/vetbridge/internal/search"
	"github.com/starford/vetbridge/internal/taxonomy"
	"github.com/starford/vetbridge/internal/triage"
)

// RecommendRequest asks for a three-track recommendation set.
type RecommendRequest struct {
	Severity string   `json:"severity,omitempty"`
	Category string   `json:"category,omitempty"`
	Symptoms []string `json:"symptoms,omitempty"`
	Location string   `json:"location,omitempty"`
	Seed     string   `json:"seed,omitempty"`
}

// CrisisCheck is the result of screening free text.
type CrisisCheck struct {
	IsCrisis        bool                      `json:"isCrisis"`
	Message         string                    `json:"message,omitempty"`
	NextSteps       []string                  `json:"nextSteps,omitempty"`
	Recommendations *models.RecommendationSet `json:"recommendations,omitempty"`
}

// TaxonomyEntry is the public view of one vocabulary entry.
type TaxonomyEntry struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Category string   `json:"category,omitempty"`
	Synonyms []string `json:"synonyms"`
}

// TaxonomyView lists categories and symptoms in menu order.
type TaxonomyView struct {
	Categories []TaxonomyEntry `json:"categories"`
	Symptoms   []TaxonomyEntry `json:"symptoms"`
}

// Service coordinates search, recommendations and triage.
type Service struct {
	engine  *search.Engine
	builder *recommend.Builder
	machine *triage.Machine
	tax     *taxonomy.Taxonomy
}

// New creates a service.
func New(engine *search.Engine, builder *recommend.Builder, machine *triage.Machine, tax *taxonomy.Taxonomy) *Service {
	return &Service{engine: engine, builder: builder, machine: machine, tax: tax}
}

// Search runs one search page.
func (s *Service) Search(ctx context.Context, req query.Request) (*search.Response, error) {
	return s.engine.Search(ctx, req)
}

// Resource returns one catalog resource.
func (s *Service) Resource(ctx context.Context, id string) (*models.Resource, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("resource id: %w", apperr.ErrInvalidInput)
	}
	return s.engine.Get(ctx, id)
}

// Recommend builds a recommendation set. Crisis language in the symptoms
// forces crisis severity.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*models.RecommendationSet, error) {
	sev := models.ParseSeverity(req.Severity)
	if crisis.DetectAny(append([]string{req.Category}, req.Symptoms...)...) {
		metrics.RecordCrisisIntercept("recommend")
		sev = models.SeverityCrisis
	}
	if sev == "" {
		sev = models.SeverityModerate
	}
	return s.builder.Build(ctx, recommend.Input{
		Severity: sev,
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Symptoms: req.Symptoms,
		Location: req.Location,
		Seed:     req.Seed,
	})
}

// Triage runs one wizard turn.
func (s *Service) Triage(ctx context.Context, req triage.Request) *triage.Response {
	return s.machine.Turn(ctx, req)
}

// CheckCrisis screens texts for crisis language and returns the bundle on
// a hit.
func (s *Service) CheckCrisis(texts ...string) CrisisCheck {
	if !crisis.DetectAny(texts...) {
		return CrisisCheck{}
	}
	metrics.RecordCrisisIntercept("check")
	b := crisis.NewBundle()
	return CrisisCheck{
		IsCrisis:        true,
		Message:         b.Message,
		NextSteps:       b.NextSteps,
		Recommendations: &b.Recommendations,
	}
}

// ExpandSymptoms maps each key onto its synonym expansion. Unknown keys
// expand to themselves.
func (s *Service) ExpandSymptoms(keys []string) map[string][]string {
	out := make(map[string][]string, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		terms, _ := s.tax.Expand(k)
		out[k] = terms
	}
	return out
}

// Taxonomy returns the vocabulary.
func (s *Service) Taxonomy() TaxonomyView {
	return TaxonomyView{
		Categories: s.entries(taxonomy.KindCategory),
		Symptoms:   s.entries(taxonomy.KindSymptom),
	}
}

func (s *Service) entries(kind taxonomy.Kind) []TaxonomyEntry {
	keys := s.tax.Keys(kind)
	out := make([]TaxonomyEntry, 0, len(keys))
	for _, k := range keys {
		e, _ := s.tax.Lookup(k)
		syn := e.Synonyms
		if syn == nil {
			syn = []string{}
		}
		out = append(out, TaxonomyEntry{Key: e.Key, Label: e.Label, Category: e.Category, Synonyms: syn})
	}
	return out
}
