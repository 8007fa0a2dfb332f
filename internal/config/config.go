package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	ResumedocAPIKey string

	// Claude suggestions
	AnthropicAPIKey string
	AnthropicModel  string

	// Document store; empty DatabaseURL selects the in-memory store.
	DatabaseURL string
	DocumentTTL time.Duration

	// Upload limits
	MaxUploadBytes      int64
	MaxConcurrentIngest int

	// Render worker pool
	RenderWorkers  int
	MaxRenderQueue int
	RenderTimeout  time.Duration
	RenderJobTTL   time.Duration
	ChromePath     string

	// Parser and serializer
	RulesFile      string
	SuppressTitles []string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		ResumedocAPIKey: os.Getenv("RESUMEDOC_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DocumentTTL: envDuration("DOCUMENT_TTL", 24*time.Hour),

		MaxUploadBytes:      envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		MaxConcurrentIngest: envInt("MAX_CONCURRENT_INGEST", 4),

		RenderWorkers:  envInt("RENDER_WORKERS", 2),
		MaxRenderQueue: envInt("MAX_RENDER_QUEUE", 50),
		RenderTimeout:  envDuration("RENDER_TIMEOUT", 60*time.Second),
		RenderJobTTL:   envDuration("RENDER_JOB_TTL", 1*time.Hour),
		ChromePath:     os.Getenv("CHROME_PATH"),

		RulesFile:      os.Getenv("RULES_FILE"),
		SuppressTitles: envList("SUPPRESS_TITLES", []string{"Professional Summary"}),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 24 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxConcurrentIngest <= 0 {
		cfg.MaxConcurrentIngest = 4
	}
	if cfg.RenderWorkers <= 0 {
		cfg.RenderWorkers = 2
	}
	if cfg.MaxRenderQueue <= 0 {
		cfg.MaxRenderQueue = 50
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 60 * time.Second
	}
	if cfg.RenderJobTTL <= 0 {
		cfg.RenderJobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate reports missing required keys. The Anthropic key is optional;
// without it suggestion generation is disabled.
func (c Config) Validate() error {
	if c.ResumedocAPIKey == "" {
		return fmt.Errorf("RESUMEDOC_API_KEY is required")
	}
	return nil
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

// envList splits a comma-separated value. A variable set to "-" yields an
// empty list.
func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if strings.TrimSpace(v) == "-" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
