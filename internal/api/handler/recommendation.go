package handler

import (
	"net/http"

	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/recommendation"
)

// RecommendationHandler handles rule-based clothing endpoints.
type RecommendationHandler struct {
	weather WeatherService
	engine  *recommendation.Engine
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(ws WeatherService, engine *recommendation.Engine) *RecommendationHandler {
	return &RecommendationHandler{weather: ws, engine: engine}
}

// Current handles GET /v1/recommendations/clothes/current.
func (h *RecommendationHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	if errs != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", errs)
		return
	}

	conditions, rec := h.engine.ForObservation(h.weather.FetchObservation(r.Context(), p))
	response.JSON(w, r, http.StatusOK, models.CurrentClothing{
		Location:       models.NewLocation(p),
		WeatherData:    conditions,
		Recommendation: rec,
	})
}

// Forecast handles GET /v1/recommendations/clothes/forecast. type=short
// selects the daily forecast; type=now or no type selects the hourly one.
func (h *RecommendationHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	query := models.ForecastClothingQuery{Type: r.URL.Query().Get("type")}
	errs = append(errs, validateStruct(query)...)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid forecast query", errs)
		return
	}

	out := models.ForecastClothing{Location: models.NewLocation(p)}
	if query.Type == models.ForecastTypeShort {
		out.ForecastType = models.ForecastTypeShort
		out.Recommendations = h.engine.ForDaily(h.weather.FetchShortRangeForecast(r.Context(), p))
	} else {
		out.ForecastType = models.ForecastTypeNow
		out.Recommendations = h.engine.ForHourly(h.weather.FetchNearTermForecast(r.Context(), p))
	}

	response.JSON(w, r, http.StatusOK, out)
}
