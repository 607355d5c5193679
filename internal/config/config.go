package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// UpstreamBaseURL is the root of the external Titul REST API,
	// e.g. https://api.titul.uz/api. All durable data lives there.
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	RedisURL string

	JWTSecret string
	JWTExpiry time.Duration

	// DraftTTL / AttemptTTL bound how long an abandoned editing or
	// answering session survives in Redis before it is discarded.
	DraftTTL   time.Duration
	AttemptTTL time.Duration

	// HistoryPollInterval is the broadcast-history refresh period.
	HistoryPollInterval time.Duration

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error, .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		UpstreamBaseURL:     strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "http://localhost:8000/api"), "/"),
		UpstreamTimeout:     time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:           getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:           time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		DraftTTL:            time.Duration(getEnvInt("DRAFT_TTL_HOURS", 12)) * time.Hour,
		AttemptTTL:          time.Duration(getEnvInt("ATTEMPT_TTL_HOURS", 6)) * time.Hour,
		HistoryPollInterval: time.Duration(getEnvInt("HISTORY_POLL_SECONDS", 10)) * time.Second,
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
