package models

import (
	"github.com/weatherwear/weatherwear/internal/advisor"
	"github.com/weatherwear/weatherwear/internal/recommendation"
)

// Forecast types accepted by the clothing forecast endpoint.
const (
	ForecastTypeNow   = "now"
	ForecastTypeShort = "short"
)

// CurrentClothing is the clothing recommendation for current conditions.
type CurrentClothing struct {
	Location       Location                      `json:"location"`
	WeatherData    recommendation.Conditions     `json:"weatherData"`
	Recommendation recommendation.Recommendation `json:"recommendation"`
}

// ForecastClothing pairs every forecast slot with a recommendation.
type ForecastClothing struct {
	Location        Location                                `json:"location"`
	ForecastType    string                                  `json:"forecastType"`
	Recommendations []recommendation.ForecastRecommendation `json:"recommendations"`
}

// ForecastClothingQuery holds the optional forecast type selector.
type ForecastClothingQuery struct {
	Type string `json:"type" validate:"omitempty,oneof=now short"`
}

// StylistClothingRequest is the body of POST /v1/stylist/clothing.
type StylistClothingRequest struct {
	WeatherData     *advisor.WeatherSummary `json:"weatherData" validate:"required"`
	UserPreferences advisor.Preferences     `json:"userPreferences"`
}

// StylistTrendsQuery holds the trends search term.
type StylistTrendsQuery struct {
	Query string `json:"query" validate:"required,max=200"`
}
