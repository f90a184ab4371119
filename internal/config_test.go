package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/vetbridge/internal/compose"
	"github.com/starford/vetbridge/internal/llm"
	"github.com/starford/vetbridge/internal/models"
	pkgconfig "github.com/starford/vetbridge/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLLMConfig_EmptyProviderDefaultsNone(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Provider = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty provider should default to none: %v", err)
	}
	if cfg.Provider != llm.ProviderNone {
		t.Errorf("provider = %q, want %q", cfg.Provider, llm.ProviderNone)
	}
}

func TestLLMConfig_UnknownProvider(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Provider = "magic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func TestLLMConfig_OpenAIRequiresKeyEnv(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Provider = llm.ProviderOpenAI
	cfg.APIKeyEnv = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api_key_env") {
		t.Fatalf("err = %v, want api_key_env error", err)
	}
}

func TestLLMConfig_ShortTimeout(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Timeout = 10 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second timeout should fail")
	}
}

func TestSearchConfig_MaxBelowDefault(t *testing.T) {
	cfg := SearchConfig{DefaultPageSize: 50, MaxPageSize: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("max_page_size below default_page_size should fail")
	}
}

func TestComposeConfig_UnknownTrack(t *testing.T) {
	cfg := ComposeConfig{Targets: map[string]compose.Target{"federal": {MinCount: 1}}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "federal") {
		t.Fatalf("err = %v, want unknown track error", err)
	}
}

func TestComposeConfig_ShareOutOfRange(t *testing.T) {
	cfg := ComposeConfig{Targets: map[string]compose.Target{"grassroots": {MinShare: 1.5}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("min_share above 1 should fail")
	}
}

func TestCatalogConfig_Required(t *testing.T) {
	cfg := NewDefaultConfig().Catalog
	cfg.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty dir should fail")
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Search.TimeSalt = true
	ec := cfg.EngineConfig()
	if ec.CandidateBudget != 500 || ec.SampleSize != 50 || !ec.TimeSalt {
		t.Errorf("engine config = %+v", ec)
	}
	if ec.Limits.DefaultPageSize != 20 || ec.Limits.MaxPageSize != 100 {
		t.Errorf("limits = %+v", ec.Limits)
	}
	if got := ec.Targets[models.TrackGrassroots]; got.MinCount != 5 || got.MinShare != 0.6 {
		t.Errorf("grassroots target = %+v", got)
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("VETBRIDGE_TEST_PORT", "9191")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: ${VETBRIDGE_TEST_PORT}
catalog:
  dir: ./resources
  sqlite_path: ./test.db
  watch: false
  candidate_budget: 200
  sample_size: 25
  event_throttle: 500ms
compose:
  targets:
    grassroots:
      min_count: 2
      min_share: 0.5
llm:
  provider: ollama
  model: llama3.1
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9191 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %s", cfg.App.LogLevel)
	}
	if cfg.Catalog.Watch || cfg.Catalog.EventThrottle != 500*time.Millisecond {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.LLM.Timeout != 5*time.Second || cfg.LLM.MaxTokens != 400 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if got := cfg.Compose.Targets["grassroots"]; got.MinCount != 2 {
		t.Errorf("grassroots target = %+v", got)
	}
}
