package advisor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/weatherwear/weatherwear/internal/recommendation"
	"github.com/weatherwear/weatherwear/internal/telemetry"
	"github.com/weatherwear/weatherwear/internal/weather"
)

const instrumentationName = "github.com/weatherwear/weatherwear/internal/advisor"

// Advice sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Chatter answers a single system and user prompt pair.
type Chatter interface {
	Ask(ctx context.Context, system, prompt string) (*Advice, error)
}

// StylistSwitch reports whether model calls are turned off.
type StylistSwitch interface {
	IsStylistDisabled(ctx context.Context) bool
}

// Analysis is a coarse reading of the conditions an outfit is picked for.
type Analysis struct {
	TemperatureCategory string `json:"temperatureCategory"`
	WeatherImpact       string `json:"weatherImpact"`
	HumidityImpact      string `json:"humidityImpact"`
	WindImpact          string `json:"windImpact"`
	Overall             string `json:"overall"`
}

// PersonalAdvice is the stylist's answer for one user and one set of
// conditions.
type PersonalAdvice struct {
	Message         string               `json:"message"`
	Recommendation  recommendation.Items `json:"recommendation"`
	PersonalTips    []string             `json:"personalTips"`
	WeatherAnalysis Analysis             `json:"weatherAnalysis"`
	Source          string               `json:"source"`
}

// PersonalForecastAdvice pairs a forecast slot with personal advice.
type PersonalForecastAdvice struct {
	Time           string                    `json:"time"`
	WeatherData    recommendation.Conditions `json:"weatherData"`
	Recommendation *PersonalAdvice           `json:"recommendation"`
}

// PersonalConfig holds configuration for the personal stylist.
type PersonalConfig struct {
	// Chat answers prompts (optional; without it every answer is a fallback).
	Chat Chatter

	// Engine supplies fallback outfits and temperature categories.
	Engine *recommendation.Engine

	// Store keeps user contexts (optional, defaults to an in-memory store).
	Store ContextStore

	// Switch turns model calls off at runtime (optional).
	Switch StylistSwitch

	// Logger for stylist operations.
	Logger zerolog.Logger

	// Clock stamps conversation turns (optional, defaults to time.Now).
	Clock func() time.Time
}

// PersonalStylist gives outfit advice that remembers each user's taste and
// recent conversation. When the model is off or fails, answers come from
// the rule engine instead.
type PersonalStylist struct {
	chat   Chatter
	engine *recommendation.Engine
	store  ContextStore
	modes  StylistSwitch
	logger zerolog.Logger
	clock  func() time.Time

	fallbacks metric.Int64Counter
}

// NewPersonalStylist creates a new personal stylist.
func NewPersonalStylist(cfg PersonalConfig) (*PersonalStylist, error) {
	if cfg.Engine == nil {
		return nil, errors.New("personal stylist requires a recommendation engine")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	store := cfg.Store
	if store == nil {
		store = NewInMemoryContextStore(DefaultMaxContexts, clock)
	}

	fallbacks, err := telemetry.Meter(instrumentationName).Int64Counter(
		"stylist.personal.fallback.total",
		metric.WithDescription("Personal stylist answers served by the rule engine"),
		metric.WithUnit("{answer}"),
	)
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("failed to create personal stylist fallback counter")
	}

	return &PersonalStylist{
		chat:      cfg.Chat,
		engine:    cfg.Engine,
		store:     store,
		modes:     cfg.Switch,
		logger:    cfg.Logger,
		clock:     clock,
		fallbacks: fallbacks,
	}, nil
}

// Advise answers message for userID under conditions c. A non-empty
// message is added to the user's history before the model is asked.
func (s *PersonalStylist) Advise(ctx context.Context, userID string, c recommendation.Conditions, message string) (*PersonalAdvice, error) {
	uc, err := s.store.Update(ctx, userID, func(uc *UserContext) {
		if message == "" {
			return
		}
		uc.AddTurn(Turn{
			Content:     message,
			At:          s.clock(),
			Temperature: c.Temperature,
			Weather:     c.Weather,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading user context: %w", err)
	}

	advice, _ := s.advise(ctx, uc, c, message, orDefault(message, "What should I wear today?"), true)
	if err := s.remember(ctx, userID, advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// AdviseForecast answers for each forecast slot in order. Slot prompts are
// not added to the history. Once the model fails, the remaining slots are
// answered by the rule engine.
func (s *PersonalStylist) AdviseForecast(ctx context.Context, userID string, slots []recommendation.ForecastRecommendation) ([]PersonalForecastAdvice, error) {
	uc, err := s.store.Update(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("loading user context: %w", err)
	}

	out := make([]PersonalForecastAdvice, 0, len(slots))
	useAI := true
	for _, slot := range slots {
		var advice *PersonalAdvice
		advice, useAI = s.advise(ctx, uc, slot.WeatherData, "", fmt.Sprintf("What should I wear at %s?", slot.Time), useAI)
		out = append(out, PersonalForecastAdvice{
			Time:           slot.Time,
			WeatherData:    slot.WeatherData,
			Recommendation: advice,
		})
	}

	if len(out) > 0 {
		if err := s.remember(ctx, userID, out[0].Recommendation); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Preferences returns the stored preferences of userID.
func (s *PersonalStylist) Preferences(ctx context.Context, userID string) (PersonalPreferences, error) {
	uc, err := s.store.Get(ctx, userID)
	if err != nil {
		return PersonalPreferences{}, err
	}
	return uc.Preferences, nil
}

// UpdatePreferences merges update into the preferences of userID.
func (s *PersonalStylist) UpdatePreferences(ctx context.Context, userID string, update PersonalPreferences) (PersonalPreferences, error) {
	uc, err := s.store.Update(ctx, userID, func(uc *UserContext) {
		uc.Preferences = uc.Preferences.Merge(update)
	})
	if err != nil {
		return PersonalPreferences{}, fmt.Errorf("updating preferences: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Msg("personal preferences updated")
	return uc.Preferences, nil
}

// advise answers one prompt. It reports whether the model may still be
// asked for later prompts in the same request.
func (s *PersonalStylist) advise(ctx context.Context, uc *UserContext, c recommendation.Conditions, message, prompt string, useAI bool) (*PersonalAdvice, bool) {
	base := s.engine.Recommend(c)
	analysis := Analyze(c, base.TemperatureCategory)

	if useAI && s.chat != nil && !s.disabled(ctx) {
		reply, err := s.chat.Ask(ctx, personalSystemPrompt(uc), personalPrompt(c, prompt))
		if err == nil {
			advice := fromReply(reply, base.Items)
			advice.WeatherAnalysis = analysis
			return advice, true
		}

		if errors.Is(err, ErrNotConfigured) {
			s.logger.Debug().Msg("personal stylist has no api key, using rule engine")
		} else {
			s.logger.Warn().
				Err(err).
				Str("user_id", uc.UserID).
				Str("provider", ProviderName).
				Msg("personal stylist request failed, using rule engine")
		}
		useAI = false
	}

	if s.fallbacks != nil {
		s.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ai_attempted", s.chat != nil)))
	}
	return fallbackAdvice(uc.Preferences.Style, c, message, base, analysis), useAI
}

func (s *PersonalStylist) remember(ctx context.Context, userID string, advice *PersonalAdvice) error {
	_, err := s.store.Update(ctx, userID, func(uc *UserContext) {
		uc.AddRecommendation(advice.Recommendation)
	})
	if err != nil {
		return fmt.Errorf("saving recommendation: %w", err)
	}
	return nil
}

func (s *PersonalStylist) disabled(ctx context.Context) bool {
	return s.modes != nil && s.modes.IsStylistDisabled(ctx)
}

// Analyze grades conditions into coarse impact levels. category is the
// temperature band the rule engine picked.
func Analyze(c recommendation.Conditions, category string) Analysis {
	a := Analysis{
		TemperatureCategory: category,
		WeatherImpact:       "normal",
		HumidityImpact:      "normal",
		WindImpact:          "normal",
	}

	label := string(c.Weather)
	switch {
	case strings.Contains(label, "rain"), c.Weather == weather.LabelShower:
		a.WeatherImpact = "rainy"
	case strings.Contains(label, "snow"):
		a.WeatherImpact = "snowy"
	case c.Weather == weather.LabelOvercast:
		a.WeatherImpact = "cloudy"
	case c.Weather == weather.LabelClear:
		a.WeatherImpact = "sunny"
	}

	if c.Humidity > 70 {
		a.HumidityImpact = "high"
	}
	if c.WindSpeed > 5 {
		a.WindImpact = "strong"
	}

	a.Overall = fmt.Sprintf("%s and %s", category, a.WeatherImpact)
	return a
}

var (
	tipLine       = regexp.MustCompile(`(?im)^\s*(?:tips?|advice)\s*:\s*(.+)$`)
	categoryLines = map[string]*regexp.Regexp{
		"top":       regexp.MustCompile(`(?im)^\W*tops?\b[^:\n]*:\s*(.+)$`),
		"bottom":    regexp.MustCompile(`(?im)^\W*bottoms?\b[^:\n]*:\s*(.+)$`),
		"outer":     regexp.MustCompile(`(?im)^\W*(?:outer|outerwear)\b[^:\n]*:\s*(.+)$`),
		"accessory": regexp.MustCompile(`(?im)^\W*(?:accessory|accessories)\b[^:\n]*:\s*(.+)$`),
	}
)

// fromReply reads an outfit out of a model reply. Missing categories are
// filled from base so the answer is never an empty outfit.
func fromReply(reply *Advice, base recommendation.Items) *PersonalAdvice {
	advice := &PersonalAdvice{Source: SourceAI}

	if reply.Content != nil {
		advice.Recommendation = recommendation.Items{
			Top:       stringList(reply.Content["top"]),
			Bottom:    stringList(reply.Content["bottom"]),
			Outer:     stringList(reply.Content["outer"]),
			Accessory: stringList(reply.Content["accessory"]),
		}
		advice.Message, _ = reply.Content["message"].(string)
		advice.PersonalTips = stringList(reply.Content["tips"])
	} else {
		advice.Message = reply.Text
		advice.Recommendation = recommendation.Items{
			Top:       categoryFromText(reply.Text, "top"),
			Bottom:    categoryFromText(reply.Text, "bottom"),
			Outer:     categoryFromText(reply.Text, "outer"),
			Accessory: categoryFromText(reply.Text, "accessory"),
		}
		for _, m := range tipLine.FindAllStringSubmatch(reply.Text, -1) {
			advice.PersonalTips = append(advice.PersonalTips, strings.TrimSpace(m[1]))
		}
	}

	r := &advice.Recommendation
	if len(r.Top) == 0 && len(r.Bottom) == 0 && len(r.Outer) == 0 && len(r.Accessory) == 0 {
		advice.Recommendation = base
	}
	for _, items := range []*[]string{&r.Top, &r.Bottom, &r.Outer, &r.Accessory} {
		if *items == nil {
			*items = []string{}
		}
	}
	if advice.Message == "" {
		advice.Message = "Here is an outfit for today's weather."
	}
	if len(advice.PersonalTips) == 0 {
		advice.PersonalTips = []string{"Enjoy a style that suits today's weather."}
	}
	return advice
}

func categoryFromText(text, category string) []string {
	m := categoryLines[category].FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var items []string
	for _, item := range strings.Split(m[1], ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// stringList accepts either a JSON array of strings or a single string.
func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return []string{v}
		}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func fallbackAdvice(style string, c recommendation.Conditions, message string, base recommendation.Recommendation, analysis Analysis) *PersonalAdvice {
	style = orDefault(style, defaultStyle)

	var opener string
	lower := strings.ToLower(message)
	switch {
	case message == "":
	case strings.Contains(lower, "recommend"):
		opener = "Here is an outfit picked for the weather and your taste. "
	case strings.HasPrefix(lower, "hello"), strings.HasPrefix(lower, "hi"):
		opener = "Hello! Let me suggest an outfit for today's weather. "
	default:
		opener = "Here is what suits today's weather. "
	}

	return &PersonalAdvice{
		Message: fmt.Sprintf("%sIt is %.1f°C and %s. These pieces fit a %s style.",
			opener, c.Temperature, orDefault(string(c.Weather), string(weather.LabelClear)), style),
		Recommendation: base.Items,
		PersonalTips: []string{
			fmt.Sprintf("Combine colors that suit a %s style.", style),
			fmt.Sprintf("It is %.1f°C, so dress for how it feels outside.", c.Temperature),
		},
		WeatherAnalysis: analysis,
		Source:          SourceFallback,
	}
}
