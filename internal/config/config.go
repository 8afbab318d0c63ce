package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr       string
	AllowedOrigins []string

	// Upstream platform API
	PlatformURL     string
	PlatformTimeout time.Duration

	// Token lifecycle
	TokenTTL        time.Duration // fallback when the access token carries no exp claim
	RefreshLead     time.Duration // refresh this long before expiry
	CartSettleDelay time.Duration // wait after email verification before first cart load

	// Session snapshot persistence
	StateBackend string // "file" or "redis"
	StatePath    string
	StateSecret  string
	RedisAddr    string
	RedisPass    string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),

		PlatformURL:     getEnv("PLATFORM_API_URL", "http://localhost:8000/api/v1"),
		PlatformTimeout: getEnvDuration("PLATFORM_TIMEOUT", 30*time.Second),

		TokenTTL:        getEnvDuration("TOKEN_TTL", 60*time.Minute),
		RefreshLead:     getEnvDuration("TOKEN_REFRESH_LEAD", 5*time.Minute),
		CartSettleDelay: getEnvDuration("CART_SETTLE_DELAY", 500*time.Millisecond),

		StateBackend: getEnv("STATE_BACKEND", "file"),
		StatePath:    getEnv("STATE_PATH", "storefront-session.json"),
		StateSecret:  getEnv("STATE_SECRET", ""),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:    getEnv("REDIS_PASS", ""),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
