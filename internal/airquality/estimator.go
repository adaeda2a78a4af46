package airquality

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// Baselines the estimates vary around.
const (
	basePM10 = 100
	basePM25 = 50
	baseUV   = 5
)

// Static readings served in synthetic mode.
var (
	staticAirQuality = AirQuality{PM10: basePM10, PM25: basePM25, PM10Grade: 2, PM25Grade: 2, PM10Status: "moderate", PM25Status: "moderate"}
	staticUVIndex    = UVIndex{Index: baseUV, Grade: 3, Status: "high"}
)

// ModeSwitch reports whether static readings must be served.
type ModeSwitch interface {
	IsSyntheticWeather(ctx context.Context) bool
}

// EstimatorConfig holds configuration for the estimator.
type EstimatorConfig struct {
	// Logger for estimator operations.
	Logger zerolog.Logger

	// Switch forces the static readings when it reports true (optional).
	Switch ModeSwitch

	// Location is the wall clock the UV curve follows (default: UTC+9).
	Location *time.Location

	// Clock returns the current time (default: time.Now).
	Clock func() time.Time

	// Jitter returns a number in [0, 1) (default: math/rand/v2).
	Jitter func() float64
}

// Estimator produces air quality and UV readings. No upstream feeds it: the
// values are jittered around fixed baselines, and UV follows the hour of day.
type Estimator struct {
	logger   zerolog.Logger
	modes    ModeSwitch
	location *time.Location
	clock    func() time.Time
	jitter   func() float64
}

// NewEstimator creates a new estimator.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	location := cfg.Location
	if location == nil {
		location = time.FixedZone("KST", 9*3600)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	jitter := cfg.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}

	return &Estimator{
		logger:   cfg.Logger,
		modes:    cfg.Switch,
		location: location,
		clock:    clock,
		jitter:   jitter,
	}
}

// AirQuality returns a particulate matter reading for the position.
func (e *Estimator) AirQuality(ctx context.Context, lat, lon float64) AirQuality {
	if e.synthetic(ctx) {
		return staticAirQuality
	}

	aq := NewAirQuality(
		clamp(int(math.Round(basePM10+e.variation())), 10, 200),
		clamp(int(math.Round(basePM25+e.variation())), 5, 100),
	)

	e.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("pm10", aq.PM10).
		Int("pm25", aq.PM25).
		Msg("estimated air quality")

	return aq
}

// UVIndex returns a UV reading for the position at the current hour.
func (e *Estimator) UVIndex(ctx context.Context, lat, lon float64) UVIndex {
	if e.synthetic(ctx) {
		return staticUVIndex
	}

	hour := e.clock().In(e.location).Hour()
	offset := int(e.jitter() * 3)

	var index int
	switch {
	case hour >= 10 && hour <= 16:
		index = 6 + offset
	case (hour >= 7 && hour < 10) || (hour > 16 && hour <= 19):
		index = 3 + offset
	default:
		index = offset
	}

	uv := NewUVIndex(index)

	e.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("hour", hour).
		Int("uv_index", uv.Index).
		Msg("estimated uv index")

	return uv
}

func (e *Estimator) synthetic(ctx context.Context) bool {
	return e.modes != nil && e.modes.IsSyntheticWeather(ctx)
}

// variation maps a jitter sample onto [-5, 5).
func (e *Estimator) variation() float64 {
	return e.jitter()*10 - 5
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
