// Package api provides the HTTP API for weatherwear.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/api/handler"
	"github.com/weatherwear/weatherwear/internal/api/middleware"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/featureflags"
	"github.com/weatherwear/weatherwear/internal/provider/resilience"
	"github.com/weatherwear/weatherwear/internal/recommendation"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	WeatherService       handler.WeatherService
	AirQualityService    handler.AirQualityService
	RecommendationEngine *recommendation.Engine
	Stylist              handler.Stylist
	PersonalStylist      handler.PersonalStylist
	FeatureFlagService   *featureflags.Service
	ProviderRegistry     *resilience.Registry

	// AdminEnabled mounts the feature flag admin routes. They carry no
	// authentication, so only enable them on trusted networks.
	AdminEnabled bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "weatherwear-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement behind a proxy
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry, cfg.FeatureFlagService)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService, cfg.AirQualityService, cfg.FeatureFlagService, cfg.Logger)
	recommendationHandler := handler.NewRecommendationHandler(cfg.WeatherService, cfg.RecommendationEngine)
	stylistHandler := handler.NewStylistHandler(cfg.Stylist, cfg.FeatureFlagService, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	aiRateLimit := middleware.RateLimitByIP(middleware.AIRateLimit)             // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, not rate limited for health checkers)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/weather", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/current", weatherHandler.Current)
			r.Get("/forecast/now", weatherHandler.NearTerm)
			r.Get("/forecast/short", weatherHandler.ShortRange)
		})

		r.Route("/recommendations/clothes", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/current", recommendationHandler.Current)
			r.Get("/forecast", recommendationHandler.Forecast)
		})

		// Stylist endpoints call a paid model - strict rate limiting
		r.Route("/stylist", func(r chi.Router) {
			r.Use(aiRateLimit)
			r.With(middleware.RequireJSON).Post("/clothing", stylistHandler.Clothing)
			r.Get("/trends", stylistHandler.Trends)

			if cfg.PersonalStylist != nil {
				personalHandler := handler.NewPersonalHandler(cfg.WeatherService, cfg.RecommendationEngine, cfg.PersonalStylist, cfg.Logger)

				r.Route("/personal", func(r chi.Router) {
					r.Get("/recommend", personalHandler.Recommend)
					r.Get("/forecast", personalHandler.Forecast)
					r.With(middleware.RequireJSON).Post("/chat", personalHandler.Chat)
					r.Get("/preferences", personalHandler.GetPreferences)
					r.With(middleware.RequireJSON).Post("/preferences", personalHandler.UpdatePreferences)
				})
			}
		})

		if cfg.AdminEnabled && cfg.FeatureFlagService != nil {
			featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService, cfg.Logger)

			r.Route("/admin/feature-flags", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Use(middleware.RequireJSON)
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		}
	})

	return r
}
