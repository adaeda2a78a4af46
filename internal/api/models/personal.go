package models

import (
	"github.com/weatherwear/weatherwear/internal/advisor"
	"github.com/weatherwear/weatherwear/internal/recommendation"
)

// UserIDQuery holds a caller-chosen user ID.
type UserIDQuery struct {
	UserID string `json:"userId" validate:"omitempty,max=64,printascii"`
}

// PersonalMessageQuery holds the optional message sent with a personal
// recommendation request.
type PersonalMessageQuery struct {
	Message string `json:"message" validate:"max=500"`
}

// PersonalChatRequest is the body of POST /v1/stylist/personal/chat.
type PersonalChatRequest struct {
	Lat     *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Message string   `json:"message" validate:"required,max=500"`
	UserID  string   `json:"userId" validate:"omitempty,max=64,printascii"`
}

// PersonalPreferencesRequest is the body of POST /v1/stylist/personal/preferences.
type PersonalPreferencesRequest struct {
	UserID      string                       `json:"userId" validate:"omitempty,max=64,printascii"`
	Preferences *advisor.PersonalPreferences `json:"preferences" validate:"required"`
}

// PersonalRecommendation is a personal outfit for current conditions.
type PersonalRecommendation struct {
	UserID                 string                    `json:"userId"`
	Location               Location                  `json:"location"`
	WeatherData            recommendation.Conditions `json:"weatherData"`
	PersonalRecommendation *advisor.PersonalAdvice   `json:"personalRecommendation"`
}

// PersonalChat answers one chat message.
type PersonalChat struct {
	UserID     string                  `json:"userId"`
	Message    string                  `json:"message"`
	AIResponse *advisor.PersonalAdvice `json:"aiResponse"`
}

// PersonalForecast pairs every forecast slot with personal advice.
type PersonalForecast struct {
	UserID          string                           `json:"userId"`
	Location        Location                         `json:"location"`
	ForecastType    string                           `json:"forecastType"`
	Recommendations []advisor.PersonalForecastAdvice `json:"recommendations"`
}

// PersonalPreferences is a user's stored preferences.
type PersonalPreferences struct {
	UserID      string                      `json:"userId"`
	Preferences advisor.PersonalPreferences `json:"preferences"`
}
