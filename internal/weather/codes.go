package weather

// Label is a human-readable weather description.
type Label string

// The fixed label set exposed to consumers.
const (
	LabelClear        Label = "clear"
	LabelMostlyCloudy Label = "mostly cloudy"
	LabelOvercast     Label = "overcast"
	LabelRain         Label = "rain"
	LabelRainSnow     Label = "rain/snow"
	LabelSnow         Label = "snow"
	LabelShower       Label = "shower"
)

// Codes assumed when a payload omits PTY or SKY.
const (
	defaultPrecipitationCode = "0"
	defaultSkyCode           = "1"
)

// Translate maps a precipitation type (PTY) and sky condition (SKY) code pair to
// a label. Any precipitation takes priority over the sky state. Unknown
// combinations read as clear.
func Translate(precipitation, sky string) Label {
	switch precipitation {
	case "1", "5": // rain, raindrop
		return LabelRain
	case "2", "6": // rain/snow, raindrop/snow flurry
		return LabelRainSnow
	case "3", "7": // snow, snow flurry
		return LabelSnow
	case "4":
		return LabelShower
	}

	switch sky {
	case "1":
		return LabelClear
	case "3":
		return LabelMostlyCloudy
	case "4":
		return LabelOvercast
	}

	return LabelClear
}
