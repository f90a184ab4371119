package search

import (
	"sort"
	"strings"

	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
)

// Score weights.
const (
	weightTerm     = 2
	weightCategory = 3
	weightOrgType  = 2
	weightLocation = 2
)

// Scored is a candidate with its relevance score and the terms that matched
// its title or description.
type Scored struct {
	Resource models.Resource `json:"resource"`
	Score    int             `json:"score"`
	Matched  []string        `json:"matched,omitempty"`
}

func scoredTrack(s Scored) models.Track {
	return s.Resource.Track()
}

// PreferredOrgType returns the organisation type favoured for plan: crisis
// and high severity prefer institutional, low prefers grassroots, otherwise
// the requested resource type. ok is false when there is no preference.
func PreferredOrgType(plan query.Plan) (models.OrgType, bool) {
	switch plan.Severity {
	case models.SeverityCrisis, models.SeverityHigh:
		return models.OrgInstitutional, true
	case models.SeverityLow:
		return models.OrgGrassroots, true
	}
	if plan.ResourceType != models.OrgUnknown && plan.ResourceType != "" {
		return plan.ResourceType, true
	}
	return "", false
}

// ScoreResource scores r against plan.
func ScoreResource(r models.Resource, plan query.Plan) Scored {
	s := Scored{Resource: r}
	title := strings.ToLower(r.Title)
	desc := strings.ToLower(r.Description)
	for _, t := range plan.Terms {
		if strings.Contains(title, t) || strings.Contains(desc, t) {
			s.Score += weightTerm
			s.Matched = append(s.Matched, t)
		}
	}
	for _, c := range plan.Categories {
		if containsFold(r.Categories, c) || containsFold(r.Tags, c) {
			s.Score += weightCategory
		}
	}
	if pref, ok := PreferredOrgType(plan); ok && r.OrgType == pref {
		s.Score += weightOrgType
	}
	if plan.Location != "" {
		if plan.Location == models.LocationNational {
			if r.IsNational() {
				s.Score += weightLocation
			}
		} else if strings.EqualFold(r.Location, plan.Location) {
			s.Score += weightLocation
		}
	}
	return s
}

// Rank scores rows and orders them by score, then featured, rating and
// recency. The id breaks any remaining tie so the order is total.
func Rank(rows []models.Resource, plan query.Plan) []Scored {
	out := make([]Scored, len(rows))
	for i, r := range rows {
		out[i] = ScoreResource(r, plan)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Resource.Featured != b.Resource.Featured {
			return a.Resource.Featured
		}
		if a.Resource.Rating != b.Resource.Rating {
			return a.Resource.Rating > b.Resource.Rating
		}
		if !a.Resource.UpdatedAt.Equal(b.Resource.UpdatedAt) {
			return a.Resource.UpdatedAt.After(b.Resource.UpdatedAt)
		}
		return a.Resource.ID < b.Resource.ID
	})
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
