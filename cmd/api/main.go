// Package main provides the entrypoint for the weatherwear API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/advisor"
	"github.com/weatherwear/weatherwear/internal/airquality"
	"github.com/weatherwear/weatherwear/internal/api"
	"github.com/weatherwear/weatherwear/internal/api/middleware"
	"github.com/weatherwear/weatherwear/internal/config"
	"github.com/weatherwear/weatherwear/internal/featureflags"
	"github.com/weatherwear/weatherwear/internal/provider/resilience"
	"github.com/weatherwear/weatherwear/internal/recommendation"
	"github.com/weatherwear/weatherwear/internal/telemetry"
	"github.com/weatherwear/weatherwear/internal/weather"
	"github.com/weatherwear/weatherwear/internal/weather/kma"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "weatherwear-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Bool("dotenv", cfg.DotEnvLoaded).
		Msg("starting weatherwear API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.OTelSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Feature flags, seeded from configuration
	ffDefaults := featureflags.DefaultFlags(featureflags.Defaults{SyntheticWeather: cfg.UseDummyData})
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository:   featureflags.NewInMemoryRepository(ffDefaults),
		Logger:       log,
		CacheTTL:     1 * time.Minute,
		DefaultFlags: ffDefaults,
	})
	log.Info().Bool("synthetic_weather", cfg.UseDummyData).Msg("feature flags service initialized")

	registry := resilience.NewRegistry()

	// Weather upstream. Without a key every fetch falls back to synthetic data.
	var provider weather.Provider
	if cfg.WeatherAPIKey != "" {
		rc := resilience.SingleAttemptConfig(kma.ProviderName, cfg.WeatherTimeout)
		rc.Registry = registry
		provider = kma.NewClient(kma.ClientConfig{
			ServiceKey: cfg.WeatherAPIKey,
			BaseURL:    cfg.WeatherBaseURL,
			HTTPClient: resilience.NewClient(rc),
			Logger:     log,
		})
		log.Info().Dur("timeout", cfg.WeatherTimeout).Msg("KMA client initialized")
	} else {
		log.Warn().Msg("WEATHER_API_KEY not set - weather will be synthetic")
	}

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   log,
		Switch:   ffService,
	})

	estimator := airquality.NewEstimator(airquality.EstimatorConfig{
		Logger: log,
		Switch: ffService,
	})

	engine, err := recommendation.NewEngine(recommendation.EngineConfig{Logger: log})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load clothing rules")
	}

	// AI stylist
	stylistConfig := resilience.DefaultClientConfig(advisor.ProviderName)
	stylistConfig.Timeout = advisor.DefaultTimeout
	stylistConfig.MaxRetries = 1
	stylistConfig.Registry = registry
	stylist := advisor.NewClient(advisor.ClientConfig{
		APIKey:     cfg.PerplexityAPIKey,
		BaseURL:    cfg.PerplexityBaseURL,
		Model:      cfg.PerplexityModel,
		HTTPClient: resilience.NewClient(stylistConfig),
		Logger:     log,
	})
	if !stylist.Configured() {
		log.Warn().Msg("PERPLEXITY_API_KEY not set - stylist endpoints will return 503 and personal advice will use the rule engine")
	}

	personal, err := advisor.NewPersonalStylist(advisor.PersonalConfig{
		Chat:   stylist,
		Engine: engine,
		Store:  advisor.NewInMemoryContextStore(advisor.DefaultMaxContexts, nil),
		Switch: ffService,
		Logger: log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create personal stylist")
	}

	if cfg.AdminEnabled {
		log.Warn().Msg("admin routes enabled without authentication")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:              Version,
		BuildTime:            BuildTime,
		Logger:               log,
		ServiceName:          serviceName,
		Metrics:              metrics,
		RequireTLS:           cfg.RequireTLS,
		WeatherService:       weatherService,
		AirQualityService:    estimator,
		RecommendationEngine: engine,
		Stylist:              stylist,
		PersonalStylist:      personal,
		FeatureFlagService:   ffService,
		ProviderRegistry:     registry,
		AdminEnabled:         cfg.AdminEnabled,
	})

	// Create HTTP server. The write timeout leaves room for a slow stylist reply.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: advisor.DefaultTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
