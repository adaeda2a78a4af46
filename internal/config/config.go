// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the API server configuration.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	// Weather upstream.
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherTimeout time.Duration
	UseDummyData   bool

	// AI stylist upstream.
	PerplexityAPIKey  string
	PerplexityBaseURL string
	PerplexityModel   string

	// Telemetry.
	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	// AdminEnabled mounts the unauthenticated /v1/admin routes.
	AdminEnabled bool

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// DotEnvLoaded reports whether a .env file was read.
	DotEnvLoaded bool
}

// Load reads a .env file from the working directory if one exists, then
// the environment. Variables already set in the environment win.
func Load() (*Config, error) {
	loaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
		loaded = false
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getenvDefault("APP_PORT", "8080"),
		Environment:       getenvDefault("APP_ENV", "development"),
		WeatherAPIKey:     os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:    os.Getenv("WEATHER_API_BASE_URL"),
		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityBaseURL: os.Getenv("PERPLEXITY_BASE_URL"),
		PerplexityModel:   os.Getenv("PERPLEXITY_MODEL"),
		OTLPEndpoint:      getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.WeatherTimeout, err = getenvDuration("WEATHER_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.UseDummyData, err = getenvBool("USE_DUMMY_DATA", false); err != nil {
		return nil, err
	}
	if cfg.OTelEnabled, err = getenvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRatio, err = getenvFloat("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		return nil, err
	}
	if cfg.AdminEnabled, err = getenvBool("ADMIN_ENABLED", cfg.Environment == "development"); err != nil {
		return nil, err
	}

	if cfg.RequireTLS, err = getenvBool("REQUIRE_TLS", false); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

// getenvDuration accepts Go durations ("5s") or a bare number of milliseconds.
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
