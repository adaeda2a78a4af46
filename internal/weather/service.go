package weather

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/weatherwear/weatherwear/internal/telemetry"
)

const instrumentationName = "github.com/weatherwear/weatherwear/internal/weather"

// Request describes one provider call.
type Request struct {
	Product Product
	Cell    GridCell
	Window  IssuanceWindow
}

// Provider defines the interface for KMA-style item providers.
type Provider interface {
	// FetchItems returns the raw item list for the requested product batch.
	FetchItems(ctx context.Context, req Request) ([]RawItem, error)

	// Name returns the provider name for logging.
	Name() string
}

// ModeSwitch reports whether every operation must serve the static dataset.
type ModeSwitch interface {
	IsSyntheticWeather(ctx context.Context) bool
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the upstream item provider. A nil provider makes every
	// fetch fall back to synthetic data.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Switch forces the static dataset when it reports true (optional).
	Switch ModeSwitch

	// Location is the wall clock issuance windows are computed in (default: KST).
	Location *time.Location

	// Clock returns the current time (default: time.Now).
	Clock func() time.Time

	// Jitter feeds the synthetic fallback generators (default: math/rand/v2).
	Jitter Jitter
}

// Service retrieves and normalizes the three KMA products. Its fetch
// operations never fail: any upstream or payload problem is logged and
// answered with synthetic data built from the current clock.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	modes    ModeSwitch
	location *time.Location
	clock    func() time.Time
	jitter   Jitter

	tracer    trace.Tracer
	fallbacks metric.Int64Counter
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	location := cfg.Location
	if location == nil {
		location = KST
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	jitter := cfg.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}

	fallbacks, err := telemetry.Meter(instrumentationName).Int64Counter(
		"weather.fallback.total",
		metric.WithDescription("Weather fetches answered with synthetic data"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("failed to create weather fallback counter")
	}

	return &Service{
		provider:  cfg.Provider,
		logger:    cfg.Logger,
		modes:     cfg.Switch,
		location:  location,
		clock:     clock,
		jitter:    jitter,
		tracer:    telemetry.Tracer(instrumentationName),
		fallbacks: fallbacks,
	}
}

// FetchObservation returns current conditions at p.
func (s *Service) FetchObservation(ctx context.Context, p GeoPoint) Observation {
	if s.synthetic(ctx) {
		return StaticObservation()
	}

	now := s.now()
	items, err := s.fetch(ctx, ProductObservation, p, now)
	if err == nil {
		var obs Observation
		if obs, err = ReduceObservation(items); err == nil {
			return obs
		}
	}

	s.fellBack(ctx, ProductObservation, p, err)
	return SyntheticObservation(now, s.jitter)
}

// FetchNearTermForecast returns the hourly forecast for the next six hours at p.
func (s *Service) FetchNearTermForecast(ctx context.Context, p GeoPoint) []HourlySlot {
	if s.synthetic(ctx) {
		return StaticNearTerm()
	}

	now := s.now()
	items, err := s.fetch(ctx, ProductNearTerm, p, now)
	if err == nil {
		var slots []HourlySlot
		if slots, err = ReduceNearTerm(items); err == nil && len(slots) > 0 {
			return slots
		}
		if err == nil {
			err = ErrNoItems
		}
	}

	s.fellBack(ctx, ProductNearTerm, p, err)
	return SyntheticNearTerm(now, s.jitter)
}

// FetchShortRangeForecast returns the daily forecast for the coming days at p.
func (s *Service) FetchShortRangeForecast(ctx context.Context, p GeoPoint) []DailySlot {
	if s.synthetic(ctx) {
		return StaticShortRange()
	}

	now := s.now()
	items, err := s.fetch(ctx, ProductShortRange, p, now)
	if err == nil {
		var slots []DailySlot
		if slots, err = ReduceShortRange(items, now); err == nil && len(slots) > 0 {
			return slots
		}
		if err == nil {
			err = ErrNoItems
		}
	}

	s.fellBack(ctx, ProductShortRange, p, err)
	return SyntheticShortRange(now, s.jitter)
}

// ProviderName returns the configured provider name.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

// fetch projects p, picks the product's issuance window and calls the provider.
func (s *Service) fetch(ctx context.Context, product Product, p GeoPoint, now time.Time) ([]RawItem, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	req := Request{
		Product: product,
		Cell:    Project(p),
		Window:  product.Window(now),
	}

	ctx, span := s.tracer.Start(ctx, "weather.fetch",
		trace.WithAttributes(
			attribute.String("weather.product", string(product)),
			attribute.String("weather.provider", s.provider.Name()),
			attribute.Int("weather.grid.x", req.Cell.X),
			attribute.Int("weather.grid.y", req.Cell.Y),
			attribute.String("weather.base_date", req.Window.BaseDate),
			attribute.String("weather.base_time", req.Window.BaseTime),
		),
	)
	defer span.End()

	s.logger.Debug().
		Str("product", string(product)).
		Str("provider", s.ProviderName()).
		Int("nx", req.Cell.X).
		Int("ny", req.Cell.Y).
		Str("base_date", req.Window.BaseDate).
		Str("base_time", req.Window.BaseTime).
		Msg("fetching weather from provider")

	items, err := s.provider.FetchItems(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("weather.items", len(items)))
	return items, nil
}

// fellBack logs and counts a fetch answered with synthetic data.
func (s *Service) fellBack(ctx context.Context, product Product, p GeoPoint, err error) {
	reason := fallbackReason(err)

	s.logger.Warn().Err(err).
		Str("product", string(product)).
		Str("reason", reason).
		Str("provider", s.ProviderName()).
		Float64("lat", p.Lat).
		Float64("lon", p.Lon).
		Msg("serving synthetic weather data")

	if s.fallbacks != nil {
		s.fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("product", string(product)),
			attribute.String("reason", reason),
		))
	}
}

func (s *Service) synthetic(ctx context.Context) bool {
	return s.modes != nil && s.modes.IsSyntheticWeather(ctx)
}

func (s *Service) now() time.Time {
	return s.clock().In(s.location)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrNoItems):
		return "no_items"
	case errors.Is(err, ErrEnvelope):
		return "envelope"
	case errors.Is(err, ErrNoProvider):
		return "unconfigured"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "transport"
	}
}
