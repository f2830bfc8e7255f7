// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port     string
	APIKey   string
	LogLevel string
	Env      string

	// Commerce backend (WordPress REST API) connection
	CommerceBaseURL        string
	CommerceConsumerKey    string
	CommerceConsumerSecret string
	CommerceRateLimit      int

	// Webhook ingestion
	WebhookSecret          string
	WebhookVerifySignature bool
	WebhookLogDir          string
	WebhookMemoTTL         time.Duration
	WebhookSweepInterval   time.Duration

	// Resource cache staleness window (stale-while-revalidate threshold)
	CacheStaleAfter time.Duration

	// Rendered page cache
	PageCacheSize int
	PageCacheTTL  time.Duration

	// Maximum request body size in bytes; 0 disables the limit
	MaxRequestBodyBytes int64

	// Observability
	OtelTracesExporter string
	MetricsEnabled     bool
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// defaultWebhookLogDir depends on the environment: a local directory in
// development, a system path in production.
func defaultWebhookLogDir(env string) string {
	if env == "production" {
		return "/var/log/vendora-edge/webhooks"
	}
	return "./logs/webhooks"
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists.
// Returns default values for any missing environment variables.
// API_KEY is required and the function will return an error if it's not set.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY environment variable is required but not set")
	}

	env := getEnv("ENV", "development")

	commerceRateLimit := getEnvAsInt("COMMERCE_RATE_LIMIT", 10)
	if commerceRateLimit <= 0 {
		return nil, errors.New("COMMERCE_RATE_LIMIT must be a positive integer")
	}

	pageCacheSize := getEnvAsInt("PAGE_CACHE_SIZE", 512)
	if pageCacheSize <= 0 {
		return nil, errors.New("PAGE_CACHE_SIZE must be a positive integer")
	}

	verifySignature := getEnvAsBool("WEBHOOK_VERIFY_SIGNATURE", false)
	if verifySignature && os.Getenv("WEBHOOK_SECRET") == "" {
		return nil, errors.New("WEBHOOK_SECRET is required when WEBHOOK_VERIFY_SIGNATURE is enabled")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		APIKey:   apiKey,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      env,

		CommerceBaseURL:        getEnv("COMMERCE_BASE_URL", "http://localhost:8000"),
		CommerceConsumerKey:    os.Getenv("COMMERCE_CONSUMER_KEY"),
		CommerceConsumerSecret: os.Getenv("COMMERCE_CONSUMER_SECRET"),
		CommerceRateLimit:      commerceRateLimit,

		WebhookSecret:          os.Getenv("WEBHOOK_SECRET"),
		WebhookVerifySignature: verifySignature,
		WebhookLogDir:          getEnv("WEBHOOK_LOG_DIR", defaultWebhookLogDir(env)),
		WebhookMemoTTL:         getEnvAsDuration("WEBHOOK_MEMO_TTL", 24*time.Hour),
		WebhookSweepInterval:   getEnvAsDuration("WEBHOOK_SWEEP_INTERVAL", time.Hour),

		CacheStaleAfter: getEnvAsDuration("CACHE_STALE_AFTER", time.Minute),

		PageCacheSize: pageCacheSize,
		PageCacheTTL:  getEnvAsDuration("PAGE_CACHE_TTL", 5*time.Minute),

		MaxRequestBodyBytes: int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", 1<<20)),

		OtelTracesExporter: os.Getenv("OTEL_TRACES_EXPORTER"),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
	}

	return cfg, nil
}
