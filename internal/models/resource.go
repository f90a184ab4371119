// Package models defines the domain types for Vetbridge.
package models

import (
	"strings"
	"time"
)

// OrgType classifies the organisation behind a resource.
type OrgType string

const (
	OrgInstitutional OrgType = "institutional"
	OrgGrassroots    OrgType = "grassroots"
	OrgRegional      OrgType = "regional"
	OrgUnknown       OrgType = "unknown"
)

// ParseOrgType normalises a free-form organisation type, including the
// aliases used by callers ("government", "nonprofit", "local").
// ok is false when the value is not recognised.
func ParseOrgType(s string) (OrgType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "institutional", "government", "gov", "va", "federal":
		return OrgInstitutional, true
	case "grassroots", "nonprofit", "non-profit", "community", "ngo":
		return OrgGrassroots, true
	case "regional", "local", "state", "county":
		return OrgRegional, true
	case "unknown":
		return OrgUnknown, true
	}
	return OrgUnknown, false
}

// Track is one of the three recommendation buckets.
type Track string

const (
	TrackInstitutional Track = "institutional"
	TrackGrassroots    Track = "grassroots"
	TrackRegional      Track = "regional"
)

// Tracks lists every track in bucket-priority order: grassroots first so
// institutional resources cannot crowd the others out.
var Tracks = []Track{TrackGrassroots, TrackInstitutional, TrackRegional}

// ParseTrack returns the track named s.
func ParseTrack(s string) (Track, bool) {
	t := Track(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TrackInstitutional, TrackGrassroots, TrackRegional:
		return t, true
	}
	return "", false
}

// LocationNational marks a resource that serves every region.
const LocationNational = "national"

// Contact is the optional structured contact block of a resource.
type Contact struct {
	Phone string `json:"phone,omitempty" yaml:"phone"`
	Email string `json:"email,omitempty" yaml:"email"`
	URL   string `json:"url,omitempty" yaml:"url"`
}

// IsZero reports whether no contact field is set.
func (c Contact) IsZero() bool {
	return c.Phone == "" && c.Email == "" && c.URL == ""
}

// Resource is a catalog entry. Only ID is guaranteed; everything else may
// be empty since the catalog is not schema-enforced.
type Resource struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Categories   []string  `json:"categories"`
	Tags         []string  `json:"tags"`
	OrgType      OrgType   `json:"orgType"`
	OrgName      string    `json:"orgName,omitempty"`
	Location     string    `json:"location,omitempty"`
	Verified     bool      `json:"verified"`
	Featured     bool      `json:"featured"`
	Rating       float64   `json:"rating"`
	Views        int       `json:"views"`
	HelpfulCount int       `json:"helpfulCount"`
	Contact      *Contact  `json:"contact,omitempty"`
	Path         string    `json:"-"`
	Checksum     string    `json:"-"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsNational reports whether the resource serves every region. A missing
// location counts as national.
func (r Resource) IsNational() bool {
	loc := strings.ToLower(strings.TrimSpace(r.Location))
	return loc == "" || loc == LocationNational
}

// Track maps the organisation type onto a recommendation track. Unknown
// organisations with a concrete region are regional, otherwise grassroots.
func (r Resource) Track() Track {
	switch r.OrgType {
	case OrgInstitutional:
		return TrackInstitutional
	case OrgRegional:
		return TrackRegional
	case OrgGrassroots:
		return TrackGrassroots
	}
	if !r.IsNational() {
		return TrackRegional
	}
	return TrackGrassroots
}

// IsCrisisLine reports whether the resource is a crisis line.
func (r Resource) IsCrisisLine() bool {
	for _, t := range append(append([]string{}, r.Tags...), r.Categories...) {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "crisis-line", "crisis line", "hotline", "24/7":
			return true
		}
	}
	return false
}

// Priority is the urgency tier of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority returns the tier for s, or "" when unrecognised.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	}
	return ""
}

// Recommendation sources.
const (
	SourceCatalog   = "catalog"
	SourceSuggested = "suggested"
	SourceCrisis    = "crisis"
)

// Recommendation is one entry of a track.
type Recommendation struct {
	ResourceID  string   `json:"resourceId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Track       Track    `json:"track"`
	Priority    Priority `json:"priority"`
	Note        string   `json:"note"`
	Contact     *Contact `json:"contact,omitempty"`
	CrisisLine  bool     `json:"crisisLine,omitempty"`
	Source      string   `json:"source"`
}

// RecommendationSet is the three-track output of a match or assessment.
type RecommendationSet struct {
	Institutional []Recommendation `json:"institutional"`
	Grassroots    []Recommendation `json:"grassroots"`
	Regional      []Recommendation `json:"regional"`
}

// Get returns the list for track t.
func (s *RecommendationSet) Get(t Track) []Recommendation {
	switch t {
	case TrackInstitutional:
		return s.Institutional
	case TrackGrassroots:
		return s.Grassroots
	case TrackRegional:
		return s.Regional
	}
	return nil
}

// Set replaces the list for track t.
func (s *RecommendationSet) Set(t Track, recs []Recommendation) {
	if recs == nil {
		recs = []Recommendation{}
	}
	switch t {
	case TrackInstitutional:
		s.Institutional = recs
	case TrackGrassroots:
		s.Grassroots = recs
	case TrackRegional:
		s.Regional = recs
	}
}

// Len returns the total number of entries across tracks.
func (s *RecommendationSet) Len() int {
	return len(s.Institutional) + len(s.Grassroots) + len(s.Regional)
}
