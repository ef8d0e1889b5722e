package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Fetch     FetchConfig
	Extractor ExtractorConfig
	API       APIConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type CacheConfig struct {
	TTL time.Duration
}

type FetchConfig struct {
	Timeout       time.Duration
	StreamTimeout time.Duration
	MaxRedirects  int
}

// ExtractorConfig selects the metadata back-end: "page" scrapes the public
// video page, "api" queries a companion REST endpoint.
type ExtractorConfig struct {
	Backend     string
	APIEndpoint string
}

type APIConfig struct {
	APIKeys           []string
	RateLimitWindow   time.Duration
	InfoRateLimit     int
	DownloadRateLimit int
	HealthRateLimit   int
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")

	// Cache configuration
	ttlSeconds := getEnvInt("CACHE_TTL_SECONDS", 300)
	if ttlSeconds <= 0 {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: must be positive, got %d", ttlSeconds)
	}
	cfg.Cache.TTL = time.Duration(ttlSeconds) * time.Second

	// Outbound fetch configuration
	fetchTimeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.Fetch.Timeout = fetchTimeout
	streamTimeout, err := time.ParseDuration(getEnv("STREAM_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STREAM_TIMEOUT: %w", err)
	}
	cfg.Fetch.StreamTimeout = streamTimeout
	cfg.Fetch.MaxRedirects = getEnvInt("FETCH_MAX_REDIRECTS", 5)

	// Extractor back-end configuration
	cfg.Extractor.Backend = getEnv("EXTRACTOR_BACKEND", "page")
	if cfg.Extractor.Backend != "page" && cfg.Extractor.Backend != "api" {
		return nil, fmt.Errorf("invalid EXTRACTOR_BACKEND: must be \"page\" or \"api\", got %q", cfg.Extractor.Backend)
	}
	cfg.Extractor.APIEndpoint = getEnv("EXTRACTOR_API_ENDPOINT", "https://tikwm.com/api/")

	// API configuration
	cfg.API.APIKeys = getEnvStringSlice("API_KEYS", nil)
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.API.RateLimitWindow = rateLimitWindow
	cfg.API.InfoRateLimit = getEnvInt("INFO_RATE_LIMIT", 60)
	cfg.API.DownloadRateLimit = getEnvInt("DOWNLOAD_RATE_LIMIT", 20)
	cfg.API.HealthRateLimit = getEnvInt("HEALTH_RATE_LIMIT", 120)

	// CORS configuration
	cfg.CORS.AllowedOrigins = getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"})

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
