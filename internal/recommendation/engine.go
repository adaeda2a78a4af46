// Package recommendation maps weather conditions to clothing suggestions
// using static rule tables.
package recommendation

import (
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/weather"
)

// Conditions is the weather a recommendation is made for.
type Conditions struct {
	Temperature float64       `json:"temperature"`
	Weather     weather.Label `json:"weather"`
	Humidity    float64       `json:"humidity"`
	WindSpeed   float64       `json:"windSpeed"`
}

// Recommendation is a clothing suggestion for one set of conditions.
type Recommendation struct {
	Items
	Temperature         float64       `json:"temperature"`
	TemperatureCategory string        `json:"temperatureCategory"`
	Weather             weather.Label `json:"weather"`
	Tips                []string      `json:"tips,omitempty"`
}

// ForecastRecommendation pairs a forecast slot with its recommendation.
type ForecastRecommendation struct {
	Time           string         `json:"time"`
	WeatherData    Conditions     `json:"weatherData"`
	Recommendation Recommendation `json:"recommendation"`
}

// EngineConfig holds configuration for the engine.
type EngineConfig struct {
	// Rules is the rule table (optional, defaults to the embedded table).
	Rules *Rules

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine applies a rule table. It is safe for concurrent use.
type Engine struct {
	rules  *Rules
	logger zerolog.Logger
}

// NewEngine creates a new engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	rules := cfg.Rules
	if rules == nil {
		var err error
		if rules, err = DefaultRules(); err != nil {
			return nil, err
		}
	}
	return &Engine{rules: rules, logger: cfg.Logger}, nil
}

// Recommend returns the clothing suggestion for c.
func (e *Engine) Recommend(c Conditions) Recommendation {
	band := e.bandFor(c.Temperature)

	rec := Recommendation{
		Items: Items{
			Top:       cloneItems(band.Top),
			Bottom:    cloneItems(band.Bottom),
			Outer:     cloneItems(band.Outer),
			Accessory: cloneItems(band.Accessory),
		},
		Temperature:         c.Temperature,
		TemperatureCategory: band.Name,
		Weather:             c.Weather,
	}

	label := string(c.Weather)
	for _, rule := range e.rules.Conditions {
		if strings.Contains(label, rule.Match) {
			rec.Outer = append(rec.Outer, rule.Outer...)
			rec.Accessory = append(rec.Accessory, rule.Accessory...)
			break
		}
	}

	if c.Humidity > e.rules.Humidity.Above && e.rules.Humidity.Tip != "" {
		rec.Tips = []string{e.rules.Humidity.Tip}
	}

	e.logger.Debug().
		Float64("temperature", c.Temperature).
		Str("weather", label).
		Str("category", band.Name).
		Msg("clothing recommendation made")

	return rec
}

// ForObservation recommends clothing for current conditions.
func (e *Engine) ForObservation(obs weather.Observation) (Conditions, Recommendation) {
	c := Conditions{
		Temperature: obs.Temperature,
		Weather:     obs.Weather,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
	}
	return c, e.Recommend(c)
}

// ForHourly recommends clothing for each near-term slot.
func (e *Engine) ForHourly(slots []weather.HourlySlot) []ForecastRecommendation {
	out := make([]ForecastRecommendation, 0, len(slots))
	for _, s := range slots {
		c := Conditions{Temperature: s.Temperature, Weather: s.Weather, Humidity: s.Humidity, WindSpeed: s.WindSpeed}
		out = append(out, ForecastRecommendation{Time: s.Time, WeatherData: c, Recommendation: e.Recommend(c)})
	}
	return out
}

// ForDaily recommends clothing for each short-range day using its maximum.
func (e *Engine) ForDaily(slots []weather.DailySlot) []ForecastRecommendation {
	out := make([]ForecastRecommendation, 0, len(slots))
	for _, s := range slots {
		c := Conditions{Temperature: s.Temperature.Max, Weather: s.Weather, Humidity: s.Humidity, WindSpeed: s.WindSpeed}
		out = append(out, ForecastRecommendation{Time: s.Date, WeatherData: c, Recommendation: e.Recommend(c)})
	}
	return out
}

// bandFor picks the warmest band whose lower bound is at or below t.
func (e *Engine) bandFor(t float64) Band {
	if !math.IsNaN(t) {
		for _, b := range e.rules.Bands {
			if b.Min == nil || *b.Min <= t {
				return b
			}
		}
	}
	fallback, _ := e.rules.band(e.rules.Fallback)
	return fallback
}

func cloneItems(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}
