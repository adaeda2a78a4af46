package advisor

import (
	"encoding/json"
	"fmt"

	"github.com/weatherwear/weatherwear/internal/recommendation"
)

const (
	stylistSystemPrompt = "You are a fashion and weather expert who recommends outfits suited to the weather."
	trendSystemPrompt   = "You are a fashion trend analyst with a deep understanding of current trends."
)

// Defaults applied to empty preference fields.
const (
	defaultGender   = "unisex"
	defaultStyle    = "casual"
	defaultAgeGroup = "adult"
)

func clothingPrompt(w WeatherSummary, p Preferences) string {
	return fmt.Sprintf(`Current weather: %.1f°C, humidity %.0f%%, %s.
Recommend a %s outfit for a %s %s. Be specific about the top, bottom, outerwear, shoes and accessories,
and briefly explain why each suits today's weather.
Reply as a JSON object with the keys "top", "bottom", "outer", "shoes", "accessories" and "tip".`,
		w.Temperature, w.Humidity, orDefault(w.Description, "clear"),
		orDefault(p.Style, defaultStyle), orDefault(p.AgeGroup, defaultAgeGroup), orDefault(p.Gender, defaultGender))
}

func trendPrompt(query string) string {
	return fmt.Sprintf(`Give up-to-date information about: %s.
Cover the main trends, popular styles, colors and materials, and how to wear them day to day.
Reply as a JSON object with the keys "trends", "styles", "colors", "materials", "tips" (arrays of strings) and "summary".`,
		query)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func personalSystemPrompt(uc *UserContext) string {
	prefs, _ := json.Marshal(uc.Preferences)
	recent, _ := json.Marshal(uc.LastRecommendations)
	history, _ := json.Marshal(uc.History)
	return fmt.Sprintf(`You are a personal stylist who recommends outfits suited to the weather and to the user's taste.
User preferences: %s
Recent recommendations: %s
Conversation so far: %s`, prefs, recent, history)
}

func personalPrompt(c recommendation.Conditions, request string) string {
	return fmt.Sprintf(`Current weather: %.1f°C, %s, humidity %.0f%%, wind %.1f m/s.

%s
Reply as a JSON object with the keys "top", "bottom", "outer", "accessory" and "tips" (arrays of strings) and "message".`,
		c.Temperature, orDefault(string(c.Weather), "clear"), c.Humidity, c.WindSpeed, request)
}
