// Package search executes query plans against the catalog with a fallback
// cascade, ranks the candidates and composes the page.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/vetbridge/internal/apperr"
	"github.com/starford/vetbridge/internal/catalog"
	"github.com/starford/vetbridge/internal/compose"
	"github.com/starford/vetbridge/internal/metrics"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/taxonomy"
)

// Level names the cascade step that produced a result set.
type Level string

const (
	LevelFull       Level = "full"
	LevelCategory   Level = "category"
	LevelUnfiltered Level = "unfiltered"
)

// Config tunes the engine.
type Config struct {
	CandidateBudget int
	SampleSize      int
	TimeSalt        bool
	Limits          query.Limits
	Targets         map[models.Track]compose.Target
}

// DefaultConfig returns a budget of 500 candidates, a 50-row sample and the
// default composer targets.
func DefaultConfig() Config {
	return Config{
		CandidateBudget: 500,
		SampleSize:      50,
		Limits:          query.DefaultLimits(),
		Targets:         DefaultTargets(),
	}
}

// DefaultTargets returns institutional >= 3 or 30%, grassroots >= 5 or 60%.
func DefaultTargets() map[models.Track]compose.Target {
	return map[models.Track]compose.Target{
		models.TrackInstitutional: {MinCount: 3, MinShare: 0.3},
		models.TrackGrassroots:    {MinCount: 5, MinShare: 0.6},
	}
}

// Engine runs searches. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	finder catalog.Finder
	tax    *taxonomy.Taxonomy
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the optional time salt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine reading from finder.
func NewEngine(finder catalog.Finder, tax *taxonomy.Taxonomy, cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if cfg.CandidateBudget <= 0 {
		cfg.CandidateBudget = DefaultConfig().CandidateBudget
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultConfig().SampleSize
	}
	if cfg.Targets == nil {
		cfg.Targets = DefaultTargets()
	}
	e := &Engine{finder: finder, tax: tax, cfg: cfg, now: time.Now, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Response is a search result page.
type Response struct {
	Success    bool              `json:"success"`
	Degraded   bool              `json:"degraded"`
	Level      Level             `json:"level"`
	Skipped    []Level           `json:"skipped,omitempty"`
	Data       []models.Resource `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Results    []Scored          `json:"-"`
}

// Ranking is the ranked candidate window of one search. Results holds at
// most the candidate budget; Total counts every row the level matches.
type Ranking struct {
	Plan     query.Plan
	Level    Level
	Skipped  []Level
	Degraded bool
	Results  []Scored
	Total    int

	where query.Predicate
}

// Search answers req with one page. A catalog failure is returned wrapped
// in apperr.ErrCatalogUnavailable; an empty result is not an error.
func (e *Engine) Search(ctx context.Context, req query.Request) (*Response, error) {
	rk, err := e.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	results := rk.Results
	if rk.Plan.Seed != "" {
		results = compose.Compose(results, scoredTrack, compose.Options[models.Track]{
			Seed:     rk.Plan.Seed,
			Salt:     e.salt(),
			Symptoms: rk.Plan.Symptoms,
			Targets:  e.cfg.Targets,
			Order:    models.Tracks,
		})
	}

	page := paginate(results, rk.Plan.Page, rk.Plan.PageSize)
	if len(page) < rk.Plan.PageSize && rk.Total > len(results) {
		tail, err := e.beyondWindow(ctx, rk, len(page))
		if err != nil {
			return nil, err
		}
		page = append(page[:len(page):len(page)], tail...)
	}
	resp := &Response{
		Success:  true,
		Degraded: rk.Degraded,
		Level:    rk.Level,
		Skipped:  rk.Skipped,
		Data:     make([]models.Resource, len(page)),
		Results:  page,
		Pagination: Pagination{
			Page:       rk.Plan.Page,
			PageSize:   rk.Plan.PageSize,
			TotalItems: rk.Total,
			TotalPages: (rk.Total + rk.Plan.PageSize - 1) / rk.Plan.PageSize,
		},
	}
	for i, s := range page {
		resp.Data[i] = s.Resource
	}
	return resp, nil
}

// Rank builds the plan for req, runs the cascade and ranks the candidates.
// Levels are tried at most once each, in order: full, category (only when
// a category was requested), unfiltered sample.
func (e *Engine) Rank(ctx context.Context, req query.Request) (*Ranking, error) {
	plan := query.Build(req, e.tax, e.cfg.Limits)
	rk := &Ranking{Plan: plan}

	rk.where = plan.Full()
	rows, err := e.fetch(ctx, LevelFull, catalog.Query{Where: rk.where, Limit: e.cfg.CandidateBudget})
	if err != nil {
		return nil, err
	}
	rk.Level = LevelFull

	// An unconstrained plan already is the unfiltered level.
	if len(rows) == 0 && !plan.Unconstrained() {
		rk.Skipped = append(rk.Skipped, LevelFull)
		if plan.HasCategory() {
			rk.where = plan.CategoryOnly()
			rows, err = e.fetch(ctx, LevelCategory, catalog.Query{Where: rk.where, Limit: e.cfg.CandidateBudget})
			if err != nil {
				return nil, err
			}
			rk.Level = LevelCategory
			if len(rows) == 0 {
				rk.Skipped = append(rk.Skipped, LevelCategory)
			}
		}
		if len(rows) == 0 {
			rk.where = nil
			rows, err = e.fetch(ctx, LevelUnfiltered, catalog.Query{Limit: e.cfg.SampleSize})
			if err != nil {
				return nil, err
			}
			rk.Level = LevelUnfiltered
		}
		rk.Degraded = true
		e.logger.Warn("search: degraded",
			slog.String("level", string(rk.Level)),
			slog.String("skipped", joinLevels(rk.Skipped)),
			slog.Int("results", len(rows)))
	}
	metrics.RecordSearch(string(rk.Level), rk.Degraded)

	rk.Total = len(rows)
	// The unfiltered level is a fixed-size sample and never pages further.
	if rk.Level != LevelUnfiltered && len(rows) == e.cfg.CandidateBudget {
		n, err := e.finder.Count(ctx, rk.where)
		if err != nil {
			e.logger.Error("search: catalog count failed", slog.String("level", string(rk.Level)), slog.String("error", err.Error()))
			return nil, fmt.Errorf("search: %s level: %w: %w", rk.Level, apperr.ErrCatalogUnavailable, err)
		}
		rk.Total = max(n, len(rows))
	}

	rk.Results = Rank(rows, plan)
	return rk, nil
}

// beyondWindow reads the rest of a page past the ranked window. Rows after
// the window follow it in catalog order and are ranked within the page.
func (e *Engine) beyondWindow(ctx context.Context, rk *Ranking, have int) ([]Scored, error) {
	offset := (rk.Plan.Page-1)*rk.Plan.PageSize + have
	if offset < len(rk.Results) || offset >= rk.Total {
		return nil, nil
	}
	rows, err := e.fetch(ctx, rk.Level, catalog.Query{Where: rk.where, Limit: rk.Plan.PageSize - have, Offset: offset})
	if err != nil {
		return nil, err
	}
	return Rank(rows, rk.Plan), nil
}

func (e *Engine) fetch(ctx context.Context, level Level, q catalog.Query) ([]models.Resource, error) {
	rows, err := e.finder.Find(ctx, q)
	if err != nil {
		e.logger.Error("search: catalog query failed", slog.String("level", string(level)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("search: %s level: %w: %w", level, apperr.ErrCatalogUnavailable, err)
	}
	return rows, nil
}

// Get returns one resource by id.
func (e *Engine) Get(ctx context.Context, id string) (*models.Resource, error) {
	return e.finder.Get(ctx, id)
}

// salt is the caller-side time component of the composer seed, 0 unless
// enabled.
func (e *Engine) salt() int64 {
	if !e.cfg.TimeSalt {
		return 0
	}
	return e.now().Unix() % 10000
}

func paginate(items []Scored, page, size int) []Scored {
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

func joinLevels(ls []Level) string {
	s := make([]string, len(ls))
	for i, l := range ls {
		s[i] = string(l)
	}
	return strings.Join(s, ",")
}
