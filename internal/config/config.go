package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey       string
	MaxSummaryRequests int // maximum summarizer calls per day (0 = unlimited)

	// RSS settings
	FeedsConfigPath string // optional YAML override for the feed registry
	FetchTimeout    time.Duration
	PoliteDelay     time.Duration // fixed delay after each feed fetch

	// Enrichment settings
	SummaryTimeout     time.Duration // per summarizer call
	SummaryConcurrency int
	RetryAttempts      int
	RetryDelay         time.Duration

	// Cache settings
	CacheTTL time.Duration

	// App settings
	HTTPPort string
	Debug    bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		FetchTimeout:       10 * time.Second,
		PoliteDelay:        1 * time.Second,
		SummaryTimeout:     30 * time.Second,
		SummaryConcurrency: 8,
		MaxSummaryRequests: 0,
		RetryAttempts:      3,
		RetryDelay:         5 * time.Second,
		CacheTTL:           1800 * time.Second,
		HTTPPort:           "8002",
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")
	cfg.HTTPPort = getEnvOrDefault("HTTP_PORT", cfg.HTTPPort)

	if v := getEnvIntOrDefault("CACHE_TTL_SECONDS", 1800); v > 0 {
		cfg.CacheTTL = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("FETCH_TIMEOUT_SECONDS", 10); v > 0 {
		cfg.FetchTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("POLITE_DELAY_MS", 1000); v >= 0 {
		cfg.PoliteDelay = time.Duration(v) * time.Millisecond
	}
	if v := getEnvIntOrDefault("SUMMARY_TIMEOUT_SECONDS", 30); v > 0 {
		cfg.SummaryTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("SUMMARY_CONCURRENCY", 8); v > 0 {
		cfg.SummaryConcurrency = v
	}
	if v := getEnvIntOrDefault("MAX_SUMMARY_REQUESTS", 0); v >= 0 {
		cfg.MaxSummaryRequests = v
	}
	if v := getEnvIntOrDefault("RETRY_ATTEMPTS", 3); v > 0 {
		cfg.RetryAttempts = v
	}
	if v := getEnvIntOrDefault("RETRY_DELAY_SECONDS", 5); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Second
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}
