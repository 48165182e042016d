package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBase      string        // Required: base URL of the store API, e.g. https://shop.example.com/api
	DatabaseFile string        // Optional: path to the local SQLite state file (default: ./storefront.db)
	PageSize     int           // Optional: server page size for admin lists (default: 10)
	HTTPTimeout  time.Duration // Optional: per-request HTTP timeout (default: 30s)
	Debounce     time.Duration // Optional: admin search debounce interval (default: 300ms)
	RateLimit    float64       // Optional: outbound requests per second, 0 disables limiting
	Env          string        // Environment (dev, staging, prod) (default: dev)
	LogLevel     string        // Log level (debug, info, warn, error) (default: info)
	LogFormat    string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	cfg := Config{
		APIBase:      os.Getenv("STOREFRONT_API_BASE"),
		DatabaseFile: getEnvOrDefault("STOREFRONT_DATABASE_FILE", "storefront.db"),
		PageSize:     getEnvIntOrDefault("STOREFRONT_PAGE_SIZE", 10),
		HTTPTimeout:  getEnvDurationOrDefault("STOREFRONT_HTTP_TIMEOUT", 30*time.Second),
		Debounce:     getEnvDurationOrDefault("STOREFRONT_DEBOUNCE", 300*time.Millisecond),
		Env:          getEnvOrDefault("ENV", "dev"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    getEnvOrDefault("LOG_FORMAT", "text"),
	}

	if rateStr := os.Getenv("STOREFRONT_RATE_LIMIT"); rateStr != "" {
		if rate, err := strconv.ParseFloat(rateStr, 64); err == nil {
			cfg.RateLimit = rate
		}
		// If parsing fails, RateLimit remains 0 (limiting disabled)
	}

	if cfg.APIBase == "" {
		cfg.APIBase = "http://localhost:8000/api"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
