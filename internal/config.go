package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vetbridge/internal/compose"
	"github.com/starford/vetbridge/internal/llm"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/recommend"
	"github.com/starford/vetbridge/internal/search"
	"github.com/starford/vetbridge/internal/triage"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Search    SearchConfig      `yaml:"search"`
	Compose   ComposeConfig     `yaml:"compose"`
	Recommend RecommendConfig   `yaml:"recommend"`
	LLM       LLMConfig         `yaml:"llm"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Compose.Validate(); err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig locates the resource documents and the SQLite catalog built
// from them.
type CatalogConfig struct {
	Dir             string        `yaml:"dir"`
	SQLitePath      string        `yaml:"sqlite_path"`
	Watch           bool          `yaml:"watch"`
	CandidateBudget int           `yaml:"candidate_budget"`
	SampleSize      int           `yaml:"sample_size"`
	EventThrottle   time.Duration `yaml:"event_throttle"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.CandidateBudget, validation.Required, validation.Min(1)),
		validation.Field(&c.SampleSize, validation.Required, validation.Min(1)),
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	)
}

// SearchConfig holds pagination limits and the composer's time salt switch.
type SearchConfig struct {
	DefaultPageSize int  `yaml:"default_page_size"`
	MaxPageSize     int  `yaml:"max_page_size"`
	TimeSalt        bool `yaml:"time_salt"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxPageSize, validation.Required, validation.Min(c.DefaultPageSize)),
	)
}

// ComposeConfig holds the per-track minimum representation of composed
// search results.
type ComposeConfig struct {
	Targets map[string]compose.Target `yaml:"targets"`
}

// Validate validates the compose configuration.
func (c *ComposeConfig) Validate() error {
	return validateTargets(c.Targets)
}

// RecommendConfig sizes the recommendation tracks.
type RecommendConfig struct {
	PerTrack int                       `yaml:"per_track"`
	Targets  map[string]compose.Target `yaml:"targets"`
}

// Validate validates the recommend configuration.
func (c *RecommendConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PerTrack, validation.Required, validation.Min(1), validation.Max(10)),
	); err != nil {
		return err
	}
	return validateTargets(c.Targets)
}

// LLMConfig selects the text-generation collaborator used by triage.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = llm.ProviderNone
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(llm.ProviderNone, llm.ProviderOllama, llm.ProviderOpenAI)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(16)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return err
	}
	if c.Provider != llm.ProviderNone && c.Model == "" {
		return fmt.Errorf("model is required for provider %q", c.Provider)
	}
	if c.Provider == llm.ProviderOpenAI && c.APIKeyEnv == "" {
		return errors.New("api_key_env is required for provider openai")
	}
	return nil
}

func validateTargets(targets map[string]compose.Target) error {
	for name, t := range targets {
		if _, ok := models.ParseTrack(name); !ok {
			return fmt.Errorf("targets: unknown track %q", name)
		}
		if err := validation.ValidateStruct(&t,
			validation.Field(&t.MinCount, validation.Min(0)),
			validation.Field(&t.MinShare, validation.Min(0.0), validation.Max(1.0)),
		); err != nil {
			return fmt.Errorf("targets.%s: %w", name, err)
		}
	}
	return nil
}

func trackTargets(in map[string]compose.Target) map[models.Track]compose.Target {
	out := make(map[models.Track]compose.Target, len(in))
	for name, t := range in {
		if track, ok := models.ParseTrack(name); ok {
			out[track] = t
		}
	}
	return out
}

// EngineConfig returns the search engine settings.
func (c *Config) EngineConfig() search.Config {
	return search.Config{
		CandidateBudget: c.Catalog.CandidateBudget,
		SampleSize:      c.Catalog.SampleSize,
		TimeSalt:        c.Search.TimeSalt,
		Limits: query.Limits{
			DefaultPageSize: c.Search.DefaultPageSize,
			MaxPageSize:     c.Search.MaxPageSize,
		},
		Targets: trackTargets(c.Compose.Targets),
	}
}

// RecommendBuilderConfig returns the recommendation builder settings.
func (c *Config) RecommendBuilderConfig() recommend.Config {
	return recommend.Config{
		PerTrack: c.Recommend.PerTrack,
		Targets:  trackTargets(c.Recommend.Targets),
	}
}

// GeneratorConfig returns the collaborator client settings.
func (c *Config) GeneratorConfig() llm.Config {
	return llm.Config{
		Provider:  c.LLM.Provider,
		Model:     c.LLM.Model,
		BaseURL:   c.LLM.BaseURL,
		APIKeyEnv: c.LLM.APIKeyEnv,
		Timeout:   c.LLM.Timeout,
	}
}

// TriageConfig returns the wizard's collaborator call settings.
func (c *Config) TriageConfig() triage.Config {
	return triage.Config{
		Timeout:     c.LLM.Timeout,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			Dir:             "./catalog",
			SQLitePath:      "./vetbridge.db",
			Watch:           true,
			CandidateBudget: 500,
			SampleSize:      50,
			EventThrottle:   2 * time.Second,
		},
		Search: SearchConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Compose: ComposeConfig{
			Targets: map[string]compose.Target{
				string(models.TrackInstitutional): {MinCount: 3, MinShare: 0.3},
				string(models.TrackGrassroots):    {MinCount: 5, MinShare: 0.6},
			},
		},
		Recommend: RecommendConfig{
			PerTrack: 3,
			Targets: map[string]compose.Target{
				string(models.TrackInstitutional): {MinCount: 1},
				string(models.TrackGrassroots):    {MinCount: 1},
			},
		},
		LLM: LLMConfig{
			Provider:    llm.ProviderNone,
			Model:       "llama3.1",
			BaseURL:     "http://localhost:11434",
			APIKeyEnv:   "OPENAI_API_KEY",
			Timeout:     15 * time.Second,
			MaxTokens:   400,
			Temperature: 0.4,
		},
	}
}
