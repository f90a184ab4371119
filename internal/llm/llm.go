// Package llm holds the text-generation collaborator clients. Output is
// untrusted; callers must tolerate any response, including errors.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/vetbridge/internal/models"
)

// Providers.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ErrEmptyResponse is returned when the collaborator answered with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Options tune one call.
type Options struct {
	MaxTokens   int
	Temperature float64
	JSON        bool // ask for a single JSON object
}

// Generator produces a reply to a role-tagged conversation under a system
// instruction.
type Generator interface {
	Chat(ctx context.Context, system string, messages []models.Message, opts Options) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// New returns the configured generator, or nil when the provider is "none"
// or the OpenAI key is missing. A nil Generator means every step uses its
// static fallback.
func New(cfg Config, logger *slog.Logger) (Generator, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		logger.Info("llm: disabled, using static fallbacks")
		return nil, nil
	case ProviderOllama:
		logger.Info("llm: using ollama", slog.String("model", cfg.Model), slog.String("base_url", cfg.BaseURL))
		return NewOllama(cfg.Model, cfg.BaseURL, client), nil
	case ProviderOpenAI:
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			logger.Warn("llm: openai key not set, using static fallbacks", slog.String("env", cfg.APIKeyEnv))
			return nil, nil
		}
		logger.Info("llm: using openai", slog.String("model", cfg.Model))
		return NewOpenAI(cfg.Model, cfg.BaseURL, key, client), nil
	}
	return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}

func conversation(system string, messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, models.Message{Role: models.RoleSystem, Content: system})
	}
	return append(out, messages...)
}
