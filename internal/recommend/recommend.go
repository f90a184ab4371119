// Package recommend builds three-track recommendation sets from catalog
// searches and collaborator suggestions.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/vetbridge/internal/compose"
	"github.com/starford/vetbridge/internal/crisis"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/search"
)

// Ranker is the part of the search engine the builder needs.
type Ranker interface {
	Rank(ctx context.Context, req query.Request) (*search.Ranking, error)
}

// Config tunes the builder.
type Config struct {
	PerTrack int
	Targets  map[models.Track]compose.Target
}

// DefaultConfig returns three entries per track with one guaranteed slot
// for the institutional and grassroots tracks.
func DefaultConfig() Config {
	return Config{
		PerTrack: 3,
		Targets: map[models.Track]compose.Target{
			models.TrackInstitutional: {MinCount: 1},
			models.TrackGrassroots:    {MinCount: 1},
		},
	}
}

// Input describes what to recommend for.
type Input struct {
	Severity  models.Severity
	Category  string
	Symptoms  []string
	Location  string
	Seed      string
	Suggested []models.Recommendation // collaborator entries, already tagged with a track
}

// Builder assembles recommendation sets. Safe for concurrent use.
type Builder struct {
	ranker Ranker
	cfg    Config
	logger *slog.Logger
}

// New returns a builder.
func New(ranker Ranker, cfg Config, logger *slog.Logger) *Builder {
	if cfg.PerTrack <= 0 {
		cfg.PerTrack = DefaultConfig().PerTrack
	}
	if cfg.Targets == nil {
		cfg.Targets = DefaultConfig().Targets
	}
	return &Builder{ranker: ranker, cfg: cfg, logger: logger}
}

var trackOrgType = map[models.Track]models.OrgType{
	models.TrackInstitutional: models.OrgInstitutional,
	models.TrackGrassroots:    models.OrgGrassroots,
	models.TrackRegional:      models.OrgRegional,
}

// Build searches once per track in parallel, pools the hits with the
// suggestions, composes the pool and splits it by track. A catalog failure
// is returned as an error.
func (b *Builder) Build(ctx context.Context, in Input) (*models.RecommendationSet, error) {
	ranked := make([][]search.Scored, len(models.Tracks))
	g, gctx := errgroup.WithContext(ctx)
	for i, track := range models.Tracks {
		g.Go(func() error {
			rk, err := b.ranker.Rank(gctx, query.Request{
				Category:     in.Category,
				Symptoms:     in.Symptoms,
				Severity:     string(in.Severity),
				Location:     in.Location,
				ResourceType: string(trackOrgType[track]),
			})
			if err != nil {
				return fmt.Errorf("recommend: %s track: %w", track, err)
			}
			ranked[i] = rk.Results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var pool []models.Recommendation
	for _, results := range ranked {
		for _, s := range results {
			if _, dup := seen[s.Resource.ID]; dup {
				continue
			}
			seen[s.Resource.ID] = struct{}{}
			pool = append(pool, fromScored(s, in))
		}
	}
	return b.assemble(pool, in), nil
}

// BuildBestEffort is Build for the triage wizard: catalog failures are
// logged and absorbed, leaving a suggestions-only set.
func (b *Builder) BuildBestEffort(ctx context.Context, in Input) *models.RecommendationSet {
	set, err := b.Build(ctx, in)
	if err == nil {
		return set
	}
	b.logger.Warn("recommend: catalog unavailable, using suggestions only", slog.String("error", err.Error()))
	return b.assemble(nil, in)
}

// assemble composes the pool plus suggestions into a set.
func (b *Builder) assemble(pool []models.Recommendation, in Input) *models.RecommendationSet {
	for _, s := range in.Suggested {
		if s.Track == "" {
			continue
		}
		pool = append(pool, s)
	}
	composed := compose.Compose(pool, func(r models.Recommendation) models.Track { return r.Track }, compose.Options[models.Track]{
		Seed:     in.Seed,
		Symptoms: in.Symptoms,
		Targets:  b.cfg.Targets,
		Order:    models.Tracks,
	})

	set := &models.RecommendationSet{}
	for _, track := range models.Tracks {
		var recs []models.Recommendation
		for _, r := range composed {
			if r.Track == track && len(recs) < b.cfg.PerTrack {
				recs = append(recs, r)
			}
		}
		set.Set(track, recs)
	}
	if in.Severity == models.SeverityCrisis {
		enforceCrisisLine(set, b.cfg.PerTrack)
	}
	for _, track := range models.Tracks {
		assignPriorities(set.Get(track))
	}
	return set
}

// enforceCrisisLine makes a 24/7 crisis line the first institutional entry.
func enforceCrisisLine(set *models.RecommendationSet, perTrack int) {
	inst := set.Institutional
	for i, r := range inst {
		if r.CrisisLine {
			if i > 0 {
				inst = append([]models.Recommendation{r}, append(inst[:i:i], inst[i+1:]...)...)
			}
			set.Institutional = inst
			return
		}
	}
	inst = append([]models.Recommendation{crisis.VeteransCrisisLine()}, inst...)
	if len(inst) > perTrack {
		inst = inst[:perTrack]
	}
	set.Institutional = inst
}

// assignPriorities tiers a track by position: high, medium, then low.
func assignPriorities(recs []models.Recommendation) {
	for i := range recs {
		switch i {
		case 0:
			recs[i].Priority = models.PriorityHigh
		case 1:
			recs[i].Priority = models.PriorityMedium
		default:
			recs[i].Priority = models.PriorityLow
		}
	}
}

func fromScored(s search.Scored, in Input) models.Recommendation {
	r := s.Resource
	return models.Recommendation{
		ResourceID:  r.ID,
		Title:       r.Title,
		Description: r.Description,
		Track:       r.Track(),
		Note:        relevanceNote(s, in),
		Contact:     r.Contact,
		CrisisLine:  r.IsCrisisLine(),
		Source:      models.SourceCatalog,
	}
}

func relevanceNote(s search.Scored, in Input) string {
	r := s.Resource
	switch {
	case r.IsCrisisLine():
		return "Immediate, confidential support available 24/7."
	case len(s.Matched) > 0:
		m := s.Matched
		if len(m) > 3 {
			m = m[:3]
		}
		return "Matches what you described: " + strings.Join(m, ", ") + "."
	case in.Category != "":
		return "Offers support for " + strings.ReplaceAll(in.Category, "-", " ") + "."
	case r.Verified:
		return "A verified resource for veterans."
	}
	return "May be helpful for your situation."
}
