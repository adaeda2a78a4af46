// Package handler provides HTTP handlers for the weatherwear API.
package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/airquality"
	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/featureflags"
	"github.com/weatherwear/weatherwear/internal/weather"
)

// WeatherService fetches normalized weather for a point. Implementations
// never fail; they fall back to synthetic data instead.
type WeatherService interface {
	FetchObservation(ctx context.Context, p weather.GeoPoint) weather.Observation
	FetchNearTermForecast(ctx context.Context, p weather.GeoPoint) []weather.HourlySlot
	FetchShortRangeForecast(ctx context.Context, p weather.GeoPoint) []weather.DailySlot
}

// AirQualityService estimates particulate and UV readings for a point.
type AirQualityService interface {
	AirQuality(ctx context.Context, lat, lon float64) airquality.AirQuality
	UVIndex(ctx context.Context, lat, lon float64) airquality.UVIndex
}

// WeatherHandler handles weather endpoints.
type WeatherHandler struct {
	weather WeatherService
	air     AirQualityService
	flags   *featureflags.Service
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler. air may be nil, in which
// case current weather carries no air quality or UV readings.
func NewWeatherHandler(ws WeatherService, air AirQualityService, flags *featureflags.Service, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		weather: ws,
		air:     air,
		flags:   flags,
		logger:  logger,
	}
}

// Current handles GET /v1/weather/current.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	if errs != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", errs)
		return
	}

	ctx := r.Context()
	out := models.CurrentWeather{
		Observation: h.weather.FetchObservation(ctx, p),
		Location:    models.NewLocation(p),
	}

	if h.air != nil && !h.flags.IsAirQualityDisabled(ctx) {
		aq := h.air.AirQuality(ctx, p.Lat, p.Lon)
		uv := h.air.UVIndex(ctx, p.Lat, p.Lon)
		out.AirQuality = &aq
		out.UV = &uv
	}

	response.JSON(w, r, http.StatusOK, out)
}

// NearTerm handles GET /v1/weather/forecast/now.
func (h *WeatherHandler) NearTerm(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	if errs != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", errs)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearTermForecast{
		Location: models.NewLocation(p),
		Slots:    h.weather.FetchNearTermForecast(r.Context(), p),
	})
}

// ShortRange handles GET /v1/weather/forecast/short.
func (h *WeatherHandler) ShortRange(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	if errs != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", errs)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ShortRangeForecast{
		Location: models.NewLocation(p),
		Days:     h.weather.FetchShortRangeForecast(r.Context(), p),
	})
}
