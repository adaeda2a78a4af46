package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/advisor"
	"github.com/weatherwear/weatherwear/internal/api/middleware"
	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/recommendation"
	"github.com/weatherwear/weatherwear/internal/weather"
)

const (
	userIDCookie    = "userId"
	anonymousPrefix = "anon_"
)

// PersonalStylist gives advice that remembers each user.
type PersonalStylist interface {
	Advise(ctx context.Context, userID string, c recommendation.Conditions, message string) (*advisor.PersonalAdvice, error)
	AdviseForecast(ctx context.Context, userID string, slots []recommendation.ForecastRecommendation) ([]advisor.PersonalForecastAdvice, error)
	Preferences(ctx context.Context, userID string) (advisor.PersonalPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, update advisor.PersonalPreferences) (advisor.PersonalPreferences, error)
}

// PersonalHandler handles personal stylist endpoints. The model being off
// or failing is not an error here; answers then come from the rule engine.
type PersonalHandler struct {
	weather WeatherService
	engine  *recommendation.Engine
	stylist PersonalStylist
	logger  zerolog.Logger
}

// NewPersonalHandler creates a new PersonalHandler.
func NewPersonalHandler(ws WeatherService, engine *recommendation.Engine, stylist PersonalStylist, logger zerolog.Logger) *PersonalHandler {
	return &PersonalHandler{weather: ws, engine: engine, stylist: stylist, logger: logger}
}

// Recommend handles GET /v1/stylist/personal/recommend.
func (h *PersonalHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	msg := models.PersonalMessageQuery{Message: r.URL.Query().Get("message")}
	errs = append(errs, validateStruct(msg)...)
	userID, idErrs := h.userID(w, r, "")
	errs = append(errs, idErrs...)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid personal recommendation query", errs)
		return
	}

	conditions, _ := h.engine.ForObservation(h.weather.FetchObservation(r.Context(), p))
	advice, err := h.stylist.Advise(r.Context(), userID, conditions, msg.Message)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.PersonalRecommendation{
		UserID:                 userID,
		Location:               models.NewLocation(p),
		WeatherData:            conditions,
		PersonalRecommendation: advice,
	})
}

// Forecast handles GET /v1/stylist/personal/forecast. type=short selects
// the daily forecast; type=now or no type selects the hourly one.
func (h *PersonalHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	p, errs := parseCoordinates(r)
	query := models.ForecastClothingQuery{Type: r.URL.Query().Get("type")}
	errs = append(errs, validateStruct(query)...)
	userID, idErrs := h.userID(w, r, "")
	errs = append(errs, idErrs...)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid personal forecast query", errs)
		return
	}

	out := models.PersonalForecast{UserID: userID, Location: models.NewLocation(p)}
	var slots []recommendation.ForecastRecommendation
	if query.Type == models.ForecastTypeShort {
		out.ForecastType = models.ForecastTypeShort
		slots = h.engine.ForDaily(h.weather.FetchShortRangeForecast(r.Context(), p))
	} else {
		out.ForecastType = models.ForecastTypeNow
		slots = h.engine.ForHourly(h.weather.FetchNearTermForecast(r.Context(), p))
	}

	recs, err := h.stylist.AdviseForecast(r.Context(), userID, slots)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	out.Recommendations = recs
	response.JSON(w, r, http.StatusOK, out)
}

// Chat handles POST /v1/stylist/personal/chat.
func (h *PersonalHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.PersonalChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStylistBody)).Decode(&req); err != nil {
		response.BadRequest(w, r, "request body must be a JSON object", nil)
		return
	}
	errs := validateStruct(req)
	userID, idErrs := h.userID(w, r, req.UserID)
	if errs = append(errs, idErrs...); len(errs) > 0 {
		response.BadRequest(w, r, "invalid chat request", errs)
		return
	}

	p := weather.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	conditions, _ := h.engine.ForObservation(h.weather.FetchObservation(r.Context(), p))
	advice, err := h.stylist.Advise(r.Context(), userID, conditions, req.Message)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.PersonalChat{
		UserID:     userID,
		Message:    req.Message,
		AIResponse: advice,
	})
}

// GetPreferences handles GET /v1/stylist/personal/preferences.
func (h *PersonalHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	query := models.UserIDQuery{UserID: r.URL.Query().Get("userId")}
	if query.UserID == "" {
		if c, err := r.Cookie(userIDCookie); err == nil {
			query.UserID = c.Value
		}
	}
	if query.UserID == "" {
		response.BadRequest(w, r, "userId is required", []models.FieldError{
			{Field: "userId", Message: "is required", Code: "REQUIRED"},
		})
		return
	}
	if errs := validateStruct(query); len(errs) > 0 {
		response.BadRequest(w, r, "invalid userId", errs)
		return
	}

	prefs, err := h.stylist.Preferences(r.Context(), query.UserID)
	if errors.Is(err, advisor.ErrContextNotFound) {
		response.NotFound(w, r, "no preferences stored for this user")
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.PersonalPreferences{UserID: query.UserID, Preferences: prefs})
}

// UpdatePreferences handles POST /v1/stylist/personal/preferences.
func (h *PersonalHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.PersonalPreferencesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStylistBody)).Decode(&req); err != nil {
		response.BadRequest(w, r, "request body must be a JSON object", nil)
		return
	}
	errs := validateStruct(req)
	userID, idErrs := h.userID(w, r, req.UserID)
	if errs = append(errs, idErrs...); len(errs) > 0 {
		response.BadRequest(w, r, "invalid preferences request", errs)
		return
	}

	prefs, err := h.stylist.UpdatePreferences(r.Context(), userID, *req.Preferences)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.PersonalPreferences{UserID: userID, Preferences: prefs})
}

// userID resolves the caller from the userId query parameter, then the
// body, then the userId cookie. Unknown callers get a fresh anonymous ID,
// set as a cookie so later requests reuse it.
func (h *PersonalHandler) userID(w http.ResponseWriter, r *http.Request, fromBody string) (string, []models.FieldError) {
	id := r.URL.Query().Get("userId")
	if id == "" {
		id = fromBody
	}
	if id == "" {
		if c, err := r.Cookie(userIDCookie); err == nil {
			id = c.Value
		}
	}

	if id != "" {
		if errs := validateStruct(models.UserIDQuery{UserID: id}); len(errs) > 0 {
			return "", errs
		}
		return id, nil
	}

	id = anonymousPrefix + uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     userIDCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func (h *PersonalHandler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("personal stylist request failed")
	response.InternalError(w, r, "the personal stylist could not answer")
}
