package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/advisor"
	"github.com/weatherwear/weatherwear/internal/api/middleware"
	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/featureflags"
)

const maxStylistBody = 64 << 10

// Stylist produces model-written clothing advice.
type Stylist interface {
	Recommend(ctx context.Context, w advisor.WeatherSummary, p advisor.Preferences) (*advisor.Advice, error)
	Trends(ctx context.Context, query string) (*advisor.Advice, error)
}

// StylistHandler handles AI stylist endpoints.
type StylistHandler struct {
	stylist Stylist
	flags   *featureflags.Service
	logger  zerolog.Logger
}

// NewStylistHandler creates a new StylistHandler.
func NewStylistHandler(stylist Stylist, flags *featureflags.Service, logger zerolog.Logger) *StylistHandler {
	return &StylistHandler{stylist: stylist, flags: flags, logger: logger}
}

// Clothing handles POST /v1/stylist/clothing.
func (h *StylistHandler) Clothing(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w, r) {
		return
	}

	var req models.StylistClothingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStylistBody)).Decode(&req); err != nil {
		response.BadRequest(w, r, "request body must be a JSON object", nil)
		return
	}
	if errs := validateStruct(req); len(errs) > 0 {
		response.BadRequest(w, r, "invalid stylist request", errs)
		return
	}

	advice, err := h.stylist.Recommend(r.Context(), *req.WeatherData, req.UserPreferences)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, advice)
}

// Trends handles GET /v1/stylist/trends.
func (h *StylistHandler) Trends(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w, r) {
		return
	}

	query := models.StylistTrendsQuery{Query: r.URL.Query().Get("query")}
	if errs := validateStruct(query); len(errs) > 0 {
		response.BadRequest(w, r, "query parameter is required", errs)
		return
	}

	advice, err := h.stylist.Trends(r.Context(), query.Query)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, advice)
}

func (h *StylistHandler) unavailable(w http.ResponseWriter, r *http.Request) bool {
	if h.stylist == nil || h.flags.IsStylistDisabled(r.Context()) {
		response.ServiceUnavailable(w, r, "the stylist is currently disabled")
		return true
	}
	return false
}

func (h *StylistHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, advisor.ErrNotConfigured) {
		response.ServiceUnavailable(w, r, "the stylist is not configured")
		return
	}

	h.logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("stylist request failed")
	response.BadGateway(w, r, "the stylist could not answer")
}
