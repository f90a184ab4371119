package query

import (
	"strings"

	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/taxonomy"
)

// Request is a structured search request. Every field is optional.
type Request struct {
	Query        string   `json:"query,omitempty"`
	Category     string   `json:"category,omitempty"`
	Symptoms     []string `json:"symptoms,omitempty"`
	Severity     string   `json:"severity,omitempty"`
	Location     string   `json:"location,omitempty"`
	ResourceType string   `json:"resourceType,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	Page         int      `json:"page,omitempty"`
	PageSize     int      `json:"pageSize,omitempty"`
	Seed         string   `json:"seed,omitempty"`
}

// Limits bounds pagination.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns page size 20 capped at 100.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: 20, MaxPageSize: 100}
}

// Plan is the built query. Each group is nil when the request did not
// constrain it.
type Plan struct {
	Text     Predicate
	Symptom  Predicate
	Category Predicate
	Filters  Predicate

	// Terms are the lowered free-text terms and symptom synonyms, used for
	// scoring.
	Terms      []string
	Categories []string // requested category plus the categories of requested symptoms

	Severity     models.Severity
	Location     string
	ResourceType models.OrgType // OrgUnknown when absent

	Page     int
	PageSize int
	Seed     string
	Symptoms []string
}

// Full ANDs every present group.
func (p Plan) Full() Predicate {
	var and And
	for _, g := range []Predicate{p.Text, p.Symptom, p.Category, p.Filters} {
		if g != nil {
			and = append(and, g)
		}
	}
	return and
}

// Unconstrained reports whether the request added no predicate at all.
func (p Plan) Unconstrained() bool {
	return p.Text == nil && p.Symptom == nil && p.Category == nil && p.Filters == nil
}

// CategoryOnly returns the category group, or nil when no category was
// requested.
func (p Plan) CategoryOnly() Predicate {
	return p.Category
}

// HasCategory reports whether a category filter was requested.
func (p Plan) HasCategory() bool {
	return p.Category != nil
}

// Offset returns the row offset of the requested page.
func (p Plan) Offset() int {
	return (p.Page - 1) * p.PageSize
}

var textFields = []Field{FieldTitle, FieldDescription, FieldTags, FieldOrgName}

// Build turns req into a Plan. It never fails: unknown symptom keys become
// literal terms and unknown filter values are ignored.
//
// The groups (free text, symptoms, category, filters) are ANDed by
// Plan.Full. Inside the free-text group the terms are ORed, so a resource
// matching any one term qualifies; the scorer ranks resources that match
// more terms higher.
func Build(req Request, tax *taxonomy.Taxonomy, lim Limits) Plan {
	p := Plan{
		Severity:     models.ParseSeverity(req.Severity),
		ResourceType: models.OrgUnknown,
		Seed:         req.Seed,
	}
	seenTerm := map[string]struct{}{}
	addTerm := func(t string) bool {
		if _, dup := seenTerm[t]; dup {
			return false
		}
		seenTerm[t] = struct{}{}
		p.Terms = append(p.Terms, t)
		return true
	}
	seenCat := map[string]struct{}{}
	addCategory := func(c string) {
		if c == "" {
			return
		}
		if _, dup := seenCat[c]; dup {
			return
		}
		seenCat[c] = struct{}{}
		p.Categories = append(p.Categories, c)
	}

	// Free text: any term may match.
	var text Or
	for _, t := range strings.Fields(strings.ToLower(req.Query)) {
		if addTerm(t) {
			text = append(text, anyTextField(t))
		}
	}
	if len(text) > 0 {
		p.Text = text
	}

	// Symptoms: synonyms of every key, also matched against categories.
	var sym Or
	for _, raw := range req.Symptoms {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		p.Symptoms = append(p.Symptoms, key)
		terms, known := tax.Expand(key)
		if known {
			addCategory(tax.CategoryOf(key))
		}
		for _, s := range terms {
			if !addTerm(s) {
				continue
			}
			if !known {
				sym = append(sym, anyTextField(s))
				continue
			}
			sym = append(sym, Or{
				Contains(FieldTitle, s),
				Contains(FieldDescription, s),
				Contains(FieldTags, s),
				Contains(FieldOrgName, s),
				Equals(FieldCategories, s),
				Contains(FieldCategories, s),
			})
		}
	}
	if len(sym) > 0 {
		p.Symptom = sym
	}

	if c := strings.ToLower(strings.TrimSpace(req.Category)); c != "" {
		p.Category = Or{Equals(FieldCategories, c), Contains(FieldTags, c)}
		p.Categories = append([]string{c}, removeString(p.Categories, c)...)
	}

	var filters And
	if loc := strings.ToLower(strings.TrimSpace(req.Location)); loc != "" {
		p.Location = loc
		if loc == models.LocationNational {
			filters = append(filters, Or{Equals(FieldLocation, loc), Empty(FieldLocation)})
		} else {
			filters = append(filters, Equals(FieldLocation, loc))
		}
	}
	if ot, ok := models.ParseOrgType(req.ResourceType); ok && ot != models.OrgUnknown {
		p.ResourceType = ot
		filters = append(filters, Equals(FieldOrgType, string(ot)))
	}
	if req.MinRating != nil && *req.MinRating >= 0 {
		filters = append(filters, AtLeast(FieldRating, *req.MinRating))
	}
	if len(filters) > 0 {
		p.Filters = filters
	}

	p.Page = req.Page
	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = req.PageSize
	if p.PageSize < 1 {
		p.PageSize = lim.DefaultPageSize
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultLimits().DefaultPageSize
	}
	if lim.MaxPageSize > 0 && p.PageSize > lim.MaxPageSize {
		p.PageSize = lim.MaxPageSize
	}
	return p
}

func anyTextField(term string) Or {
	or := make(Or, 0, len(textFields))
	for _, f := range textFields {
		or = append(or, Contains(f, term))
	}
	return or
}

func removeString(in []string, s string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
