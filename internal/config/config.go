package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Analysis modes.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// Provider adapters.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const maxRetriesLimit = 10

type Config struct {
	Port     string
	LogLevel slog.Level

	// Optional bearer key protecting the analysis endpoints.
	ServiceAPIKey string

	// LLM provider
	Provider        string
	ProviderAPIKey  string
	ProviderBaseURL string
	ModelID         string
	ProviderReferer string
	ProviderTitle   string

	// Analysis
	AnalysisMode       string
	MaxBatchSize       int
	MaxSingleChars     int
	InterRequestDelay  time.Duration
	ProbeTimeout       time.Duration
	AnalysisTimeout    time.Duration
	BatchTimeout       time.Duration
	MaxRetries         int
	ParallelDimensions bool
	PromptsFile        string
	StatsWindow        time.Duration

	// Uploads
	SkipUnsupportedFiles bool
	AcceptedExtensions   []string
	MaxUploadBytes       int64

	// PDF
	PDFFallbackPdftotext bool

	// HTTP
	WriteTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Port:     envOr("PORT", "5000"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		Provider:        strings.ToLower(envOr("PROVIDER", ProviderOpenAI)),
		ProviderAPIKey:  os.Getenv("PROVIDER_API_KEY"),
		ProviderBaseURL: os.Getenv("PROVIDER_BASE_URL"),
		ModelID:         os.Getenv("MODEL_ID"),
		ProviderReferer: os.Getenv("PROVIDER_REFERER"),
		ProviderTitle:   envOr("PROVIDER_TITLE", "Financial Due Diligence Tool"),

		AnalysisMode:       strings.ToLower(envOr("ANALYSIS_MODE", ModeBatch)),
		MaxBatchSize:       envInt("MAX_BATCH_SIZE", 12000),
		MaxSingleChars:     envInt("MAX_SINGLE_CHARS", 10000),
		InterRequestDelay:  envDuration("INTER_REQUEST_DELAY", 3*time.Second),
		ProbeTimeout:       envDuration("PROBE_TIMEOUT", 30*time.Second),
		AnalysisTimeout:    envDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		BatchTimeout:       envDuration("BATCH_TIMEOUT", 120*time.Second),
		MaxRetries:         envInt("PROVIDER_MAX_RETRIES", 0),
		ParallelDimensions: envBool("PARALLEL_DIMENSIONS", false),
		PromptsFile:        os.Getenv("PROMPTS_FILE"),
		StatsWindow:        envDuration("STATS_WINDOW", time.Hour),

		SkipUnsupportedFiles: envBool("SKIP_UNSUPPORTED_FILES", true),
		AcceptedExtensions:   envList("ACCEPTED_EXTENSIONS", []string{".pdf"}),
		MaxUploadBytes:       envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		WriteTimeout: envDuration("WRITE_TIMEOUT", 30*time.Minute),
	}

	if cfg.ProviderBaseURL == "" {
		cfg.ProviderBaseURL = DefaultBaseURL(cfg.Provider)
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModel(cfg.Provider)
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 12000
	}
	if cfg.MaxSingleChars <= 0 {
		cfg.MaxSingleChars = 10000
	}
	if cfg.InterRequestDelay < 0 {
		cfg.InterRequestDelay = 0
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 60 * time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries > maxRetriesLimit {
		cfg.MaxRetries = maxRetriesLimit
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("PROVIDER_API_KEY is required")
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	switch c.AnalysisMode {
	case ModeSingle, ModeBatch:
	default:
		return fmt.Errorf("unknown ANALYSIS_MODE %q (want %s or %s)", c.AnalysisMode, ModeSingle, ModeBatch)
	}
	if len(c.AcceptedExtensions) == 0 {
		return fmt.Errorf("ACCEPTED_EXTENSIONS must list at least one extension")
	}
	return nil
}

// DefaultBaseURL is the API root used when PROVIDER_BASE_URL is unset.
func DefaultBaseURL(provider string) string {
	if provider == ProviderAnthropic {
		return "https://api.anthropic.com"
	}
	return "https://openrouter.ai/api/v1"
}

// DefaultModel is the model used when MODEL_ID is unset.
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-sonnet-4-5-20250929"
	}
	return "deepseek/deepseek-r1"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList parses a comma separated list of file extensions, normalizing each
// to lower case with a leading dot.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
