// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Port     string
	DataDir  string
	GinMode  string
	LogLevel slog.Level

	CacheTTL        time.Duration
	IPLimitPerMin   int
	MaxBatchRecords int

	AllowedOrigins []string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env")
	}

	cfg := &Config{
		Port:            envString("PORT", "8000"),
		DataDir:         envString("DATA_DIR", "./data"),
		GinMode:         envString("GIN_MODE", "release"),
		LogLevel:        parseLevel(envString("LOG_LEVEL", "info")),
		CacheTTL:        envDuration("CACHE_TTL", 10*time.Minute),
		IPLimitPerMin:   envInt("IP_LIMIT_PER_MIN", 60),
		MaxBatchRecords: envInt("MAX_BATCH_RECORDS", 250),
		AllowedOrigins:  envList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		LLMBaseURL:      envString("LLM_BASE_URL", ""),
		LLMAPIKey:       envString("LLM_API_KEY", ""),
		LLMModel:        envString("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 20*time.Second),
	}

	return cfg
}

// LLMEnabled reports whether an external commentary backend is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMBaseURL != "" && c.LLMAPIKey != ""
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
