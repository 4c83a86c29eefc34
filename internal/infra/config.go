package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	StorageBaseURL     string
	StoragePath        string
	GeoIPDBPath        string
	FulfillmentBaseURL string
	FulfillmentAPIKey  string
	AssetProbeTimeout  time.Duration
	TolerancePercent   float64
	MobileBreakpointPx float64
	CORSOrigins        []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		StorageBaseURL:     os.Getenv("STORAGE_BASE_URL"),
		StoragePath:        getEnv("STORAGE_PATH", "./data/uploads"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		FulfillmentBaseURL: getEnv("FULFILLMENT_BASE_URL", "https://api.printful.com"),
		FulfillmentAPIKey:  os.Getenv("FULFILLMENT_API_KEY"),
		AssetProbeTimeout:  time.Second * time.Duration(getEnvInt("ASSET_PROBE_TIMEOUT_SECONDS", 15)),
		TolerancePercent:   getEnvFloat("ASPECT_TOLERANCE_PERCENT", 0.5),
		MobileBreakpointPx: getEnvFloat("MOBILE_BREAKPOINT_PX", 768),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.StorageBaseURL == "" {
		cfg.StorageBaseURL = "http://localhost:" + cfg.Port + "/static"
	}
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("STORAGE_BASE_URL invalid: %w", err)
	}
	if cfg.TolerancePercent <= 0 {
		return nil, fmt.Errorf("ASPECT_TOLERANCE_PERCENT must be positive")
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
