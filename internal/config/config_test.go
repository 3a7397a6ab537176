package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROVIDER", "")
	t.Setenv("ANALYSIS_MODE", "")
	t.Setenv("PROVIDER_BASE_URL", "")
	t.Setenv("MODEL_ID", "")
	t.Setenv("ACCEPTED_EXTENSIONS", "")

	cfg := Load()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.AnalysisMode != ModeBatch {
		t.Errorf("expected mode %q, got %q", ModeBatch, cfg.AnalysisMode)
	}
	if cfg.ProviderBaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("unexpected default base url %q", cfg.ProviderBaseURL)
	}
	if cfg.ModelID != "deepseek/deepseek-r1" {
		t.Errorf("unexpected default model %q", cfg.ModelID)
	}
	if cfg.ProbeTimeout != 30*time.Second || cfg.AnalysisTimeout != 60*time.Second || cfg.BatchTimeout != 120*time.Second {
		t.Errorf("unexpected timeouts: probe=%s single=%s batch=%s", cfg.ProbeTimeout, cfg.AnalysisTimeout, cfg.BatchTimeout)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected no retries by default, got %d", cfg.MaxRetries)
	}
	if !cfg.SkipUnsupportedFiles {
		t.Error("expected unsupported files to be skipped by default")
	}
	if len(cfg.AcceptedExtensions) != 1 || cfg.AcceptedExtensions[0] != ".pdf" {
		t.Errorf("expected [.pdf], got %v", cfg.AcceptedExtensions)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_BATCH_SIZE", "-5")
	t.Setenv("MAX_SINGLE_CHARS", "abc")
	t.Setenv("INTER_REQUEST_DELAY", "-1s")
	t.Setenv("PROVIDER_MAX_RETRIES", "-2")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()
	if cfg.MaxBatchSize != 12000 {
		t.Errorf("expected MaxBatchSize=12000, got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxSingleChars != 10000 {
		t.Errorf("expected MaxSingleChars=10000, got %d", cfg.MaxSingleChars)
	}
	if cfg.InterRequestDelay != 0 {
		t.Errorf("expected negative delay clamped to 0, got %s", cfg.InterRequestDelay)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected MaxRetries=0, got %d", cfg.MaxRetries)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level fallback, got %s", cfg.LogLevel)
	}
}

func TestLoad_MaxRetriesCapped(t *testing.T) {
	t.Setenv("PROVIDER_MAX_RETRIES", "40")

	cfg := Load()
	if cfg.MaxRetries != maxRetriesLimit {
		t.Errorf("expected MaxRetries capped at %d, got %d", maxRetriesLimit, cfg.MaxRetries)
	}
}

func TestLoad_AnthropicDefaults(t *testing.T) {
	t.Setenv("PROVIDER", "Anthropic")
	t.Setenv("PROVIDER_BASE_URL", "")
	t.Setenv("MODEL_ID", "")

	cfg := Load()
	if cfg.Provider != ProviderAnthropic {
		t.Fatalf("expected provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.ProviderBaseURL != "https://api.anthropic.com" {
		t.Errorf("unexpected base url %q", cfg.ProviderBaseURL)
	}
}

func TestLoad_AcceptedExtensionsNormalized(t *testing.T) {
	t.Setenv("ACCEPTED_EXTENSIONS", "PDF, .docx,,txt ")

	cfg := Load()
	want := []string{".pdf", ".docx", ".txt"}
	if len(cfg.AcceptedExtensions) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.AcceptedExtensions)
	}
	for i := range want {
		if cfg.AcceptedExtensions[i] != want[i] {
			t.Errorf("ext[%d]: expected %q, got %q", i, want[i], cfg.AcceptedExtensions[i])
		}
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Provider:           ProviderOpenAI,
		ProviderAPIKey:     "sk-test",
		AnalysisMode:       ModeBatch,
		AcceptedExtensions: []string{".pdf"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing key", func(c *Config) { c.ProviderAPIKey = "" }, true},
		{"unknown provider", func(c *Config) { c.Provider = "gemini" }, true},
		{"unknown mode", func(c *Config) { c.AnalysisMode = "stream" }, true},
		{"no extensions", func(c *Config) { c.AcceptedExtensions = nil }, true},
		{"single mode", func(c *Config) { c.AnalysisMode = ModeSingle }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
