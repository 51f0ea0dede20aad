package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	// Upstream API. A missing key is reported on each call, not at load.
	APIKey      string
	APIHost     string
	APIBaseURL  string
	HTTPTimeout time.Duration

	DefaultPlace             weather.Place
	DefaultMeasurementSystem weather.MeasurementSystem

	// RefreshInterval controls how often the current place is re-fetched (0 = never).
	RefreshInterval time.Duration

	// In-memory history retention.
	StoreMaxHistory int           // max number of snapshots per place (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.APIKey == "" {
		log.Printf("WARN: WEATHER_API_KEY is not set; weather requests will fail")
	}
	cfg.APIHost = getenvDefault("WEATHER_API_HOST", "ai-weather-by-meteosource.p.rapidapi.com")
	cfg.APIBaseURL = os.Getenv("WEATHER_API_BASE_URL")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.DefaultPlace = weather.Place{
		ID:   getenvDefault("DEFAULT_PLACE_ID", "london"),
		Name: getenvDefault("DEFAULT_PLACE_NAME", "London"),
	}

	system, err := weather.ParseMeasurementSystem(getenvDefault("DEFAULT_MEASUREMENT_SYSTEM", string(weather.SystemAuto)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MEASUREMENT_SYSTEM: %w", err)
	}
	cfg.DefaultMeasurementSystem = system

	// Refresh interval: default 15 minutes.
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.BreakerMaxFailures = uint32(getenvInt("BREAKER_MAX_FAILURES", 5))
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
