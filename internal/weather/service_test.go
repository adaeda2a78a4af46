package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwear/weatherwear/internal/weather"
)

var seoul = weather.GeoPoint{Lon: 126.978, Lat: 37.5665}

// mockProvider is a mock weather provider for testing.
type mockProvider struct {
	mu       sync.Mutex
	items    map[weather.Product][]weather.RawItem
	err      error
	requests []weather.Request
}

func (m *mockProvider) FetchItems(_ context.Context, req weather.Request) ([]weather.RawItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.items[req.Product], nil
}

func (m *mockProvider) Name() string {
	return "mock"
}

type fixedSwitch bool

func (f fixedSwitch) IsSyntheticWeather(context.Context) bool { return bool(f) }

func newTestService(provider weather.Provider, now time.Time) *weather.Service {
	cfg := weather.ServiceConfig{
		Logger: zerolog.Nop(),
		Clock:  func() time.Time { return now },
		Jitter: midJitter,
	}
	if provider != nil {
		cfg.Provider = provider
	}
	return weather.NewService(cfg)
}

func TestService_FetchObservation_Seoul(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 5, 0, 0, weather.KST)
	provider := &mockProvider{items: map[weather.Product][]weather.RawItem{
		weather.ProductObservation: {
			obsItem("T1H", "18.5"),
			obsItem("REH", "55"),
			obsItem("WSD", "2.1"),
			obsItem("PTY", "0"),
			obsItem("SKY", "1"),
		},
	}}
	svc := newTestService(provider, now)

	obs := svc.FetchObservation(context.Background(), seoul)

	assert.Equal(t, weather.Observation{Temperature: 18.5, Humidity: 55, WindSpeed: 2.1, Weather: weather.LabelClear}, obs)
	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, weather.ProductObservation, req.Product)
	assert.Equal(t, weather.GridCell{X: 60, Y: 127}, req.Cell)
	assert.Equal(t, weather.IssuanceWindow{BaseDate: "20240601", BaseTime: "0800"}, req.Window)
}

func TestService_FetchNearTermForecast(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 50, 0, 0, weather.KST)
	provider := &mockProvider{items: map[weather.Product][]weather.RawItem{
		weather.ProductNearTerm: {
			fcstItem("T1H", "20240601", "1600", "22"),
			fcstItem("T1H", "20240601", "1500", "21"),
			fcstItem("SKY", "20240601", "1500", "4"),
			fcstItem("PTY", "20240601", "1600", "1"),
		},
	}}
	svc := newTestService(provider, now)

	slots := svc.FetchNearTermForecast(context.Background(), seoul)

	require.Len(t, slots, 2)
	assert.Equal(t, "15:00", slots[0].Time)
	assert.Equal(t, weather.LabelOvercast, slots[0].Weather)
	assert.Equal(t, weather.LabelRain, slots[1].Weather)
	assert.Equal(t, "1430", provider.requests[0].Window.BaseTime)
}

func TestService_FetchShortRangeForecast(t *testing.T) {
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, weather.KST)
	provider := &mockProvider{items: map[weather.Product][]weather.RawItem{
		weather.ProductShortRange: {
			fcstItem("TMN", "20240601", "0600", "14"),
			fcstItem("TMX", "20240601", "1500", "26"),
			fcstItem("SKY", "20240601", "1200", "3"),
		},
	}}
	svc := newTestService(provider, now)

	days := svc.FetchShortRangeForecast(context.Background(), seoul)

	require.Len(t, days, 1)
	assert.Equal(t, "2024-06-01", days[0].Date)
	assert.Equal(t, weather.TemperatureRange{Min: 14, Max: 26}, days[0].Temperature)
	assert.Equal(t, weather.IssuanceWindow{BaseDate: "20240531", BaseTime: "2300"}, provider.requests[0].Window)
}

func TestService_FallbackOnProviderError(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 30, 0, 0, weather.KST)
	provider := &mockProvider{err: errors.New("connection refused")}
	svc := newTestService(provider, now)
	ctx := context.Background()

	obs := svc.FetchObservation(ctx, seoul)
	assert.Contains(t, allLabels, obs.Weather)

	assert.Len(t, svc.FetchNearTermForecast(ctx, seoul), 6)

	days := svc.FetchShortRangeForecast(ctx, seoul)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-06-01", days[0].Date)
}

func TestService_FallbackOnEnvelopeAndEmptyPayload(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 30, 0, 0, weather.KST)
	ctx := context.Background()

	rejected := newTestService(&mockProvider{err: weather.ErrEnvelope}, now)
	assert.Len(t, rejected.FetchShortRangeForecast(ctx, seoul), 3)

	empty := newTestService(&mockProvider{items: map[weather.Product][]weather.RawItem{}}, now)
	assert.Len(t, empty.FetchNearTermForecast(ctx, seoul), 6)
	assert.Len(t, empty.FetchShortRangeForecast(ctx, seoul), 3)
	assert.Equal(t, weather.SyntheticObservation(now, midJitter), empty.FetchObservation(ctx, seoul))
}

func TestService_NoProvider(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 30, 0, 0, weather.KST)
	svc := newTestService(nil, now)

	assert.Equal(t, "none", svc.ProviderName())
	assert.Len(t, svc.FetchNearTermForecast(context.Background(), seoul), 6)
}

func TestService_SyntheticSwitch(t *testing.T) {
	provider := &mockProvider{err: errors.New("must not be called")}
	svc := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		Switch:   fixedSwitch(true),
	})
	ctx := context.Background()

	assert.Equal(t, weather.StaticObservation(), svc.FetchObservation(ctx, seoul))
	assert.Equal(t, weather.StaticNearTerm(), svc.FetchNearTermForecast(ctx, seoul))
	assert.Equal(t, weather.StaticShortRange(), svc.FetchShortRangeForecast(ctx, seoul))
	assert.Empty(t, provider.requests)
}

func TestService_Idempotent(t *testing.T) {
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, weather.KST)
	provider := &mockProvider{items: map[weather.Product][]weather.RawItem{
		weather.ProductShortRange: {
			fcstItem("TMX", "20240602", "1500", "25"),
			fcstItem("REH", "20240602", "0900", "60"),
			fcstItem("TMX", "20240601", "1500", "24"),
		},
	}}
	svc := newTestService(provider, now)
	ctx := context.Background()

	first := svc.FetchShortRangeForecast(ctx, seoul)
	second := svc.FetchShortRangeForecast(ctx, seoul)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "2024-06-01", first[0].Date)
}
