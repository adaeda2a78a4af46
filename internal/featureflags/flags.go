// Package featureflags provides feature flag management for runtime configuration.
package featureflags

import "time"

// Well-known feature flag keys.
const (
	// FlagSyntheticWeather serves the static weather, air quality and UV
	// dataset instead of calling upstream.
	FlagSyntheticWeather = "synthetic_weather"

	// FlagDisableStylist turns the AI stylist endpoints off.
	FlagDisableStylist = "disable_stylist"

	// FlagDisableAirQuality omits air quality and UV from current weather.
	FlagDisableAirQuality = "disable_air_quality"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key" validate:"required,max=64"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates" validate:"required,min=1,dive"`
	Reason  string       `json:"reason" validate:"max=200"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// Defaults seeds the flags whose initial value comes from configuration.
type Defaults struct {
	SyntheticWeather bool
}

// DefaultFlags returns the default feature flags for the application.
func DefaultFlags(d Defaults) map[string]*Flag {
	now := time.Now()
	return map[string]*Flag{
		FlagSyntheticWeather: {
			Key:       FlagSyntheticWeather,
			Value:     d.SyntheticWeather,
			UpdatedAt: now,
		},
		FlagDisableStylist: {
			Key:       FlagDisableStylist,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableAirQuality: {
			Key:       FlagDisableAirQuality,
			Value:     false,
			UpdatedAt: now,
		},
	}
}
