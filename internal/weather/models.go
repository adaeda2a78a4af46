package weather

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Weather errors.
var (
	// ErrNoItems is returned by the reducers when a payload carries no items at all.
	ErrNoItems = errors.New("no weather items in payload")

	// ErrEnvelope marks payloads whose envelope the provider flagged as failed
	// or that could not be read as an envelope at all.
	ErrEnvelope = errors.New("provider envelope rejected")

	// ErrNoProvider is returned when the service has no provider configured.
	ErrNoProvider = errors.New("no weather provider configured")
)

// GeoPoint is a WGS84 position supplied by a caller.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// GridCell is a cell of the KMA 5km forecast grid.
type GridCell struct {
	X int
	Y int
}

// IssuanceWindow identifies a published batch of a product.
type IssuanceWindow struct {
	BaseDate string // YYYYMMDD
	BaseTime string // HHmm
}

// Category is a KMA category code.
type Category string

// Category codes consumed by the reducers.
const (
	CategoryTemperature   Category = "T1H" // hourly temperature (°C)
	CategoryHumidity      Category = "REH" // relative humidity (%)
	CategoryWindSpeed     Category = "WSD" // wind speed (m/s)
	CategoryPrecipitation Category = "PTY" // precipitation type code
	CategorySky           Category = "SKY" // sky condition code
	CategoryMinTemp       Category = "TMN" // daily minimum temperature (°C)
	CategoryMaxTemp       Category = "TMX" // daily maximum temperature (°C)
)

// Value is a provider value that may arrive as a JSON string or number.
type Value string

// UnmarshalJSON accepts strings, numbers and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Value(n.String())
	return nil
}

// Float parses the value, treating anything unparseable or non-finite as 0.
func (v Value) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Code returns the value as a categorical code. Numeric codes such as 1.0 are
// reduced to their integer form.
func (v Value) Code() string {
	s := strings.TrimSpace(string(v))
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return s
}

// RawItem is one record of a provider item list.
type RawItem struct {
	Category  Category `json:"category"`
	BaseDate  string   `json:"baseDate,omitempty"`
	BaseTime  string   `json:"baseTime,omitempty"`
	FcstDate  string   `json:"fcstDate,omitempty"`
	FcstTime  string   `json:"fcstTime,omitempty"`
	ObsrValue Value    `json:"obsrValue,omitempty"`
	FcstValue Value    `json:"fcstValue,omitempty"`
	NX        int      `json:"nx,omitempty"`
	NY        int      `json:"ny,omitempty"`
}

// Observation is the normalized current-conditions record.
type Observation struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Weather     Label   `json:"weather"`
}

// HourlySlot is one hour of the near-term forecast.
type HourlySlot struct {
	Time        string  `json:"time"` // HH:MM
	Temperature float64 `json:"temperature"`
	Weather     Label   `json:"weather"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// TemperatureRange is a daily minimum/maximum pair.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DailySlot is one day of the short-range forecast.
type DailySlot struct {
	Date        string           `json:"date"` // YYYY-MM-DD
	Temperature TemperatureRange `json:"temperature"`
	Weather     Label            `json:"weather"`
	Humidity    float64          `json:"humidity"`
	WindSpeed   float64          `json:"windSpeed"`
}

// Product identifies one of the three KMA products.
type Product string

// Supported products.
const (
	ProductObservation Product = "observation"
	ProductNearTerm    Product = "near_term"
	ProductShortRange  Product = "short_range"
)

// PageSize is the numOfRows requested for the product.
func (p Product) PageSize() int {
	switch p {
	case ProductObservation:
		return 10
	case ProductNearTerm:
		return 60
	case ProductShortRange:
		return 1000
	default:
		return 10
	}
}

// Window returns the issuance window to request for the product at now.
func (p Product) Window(now time.Time) IssuanceWindow {
	switch p {
	case ProductNearTerm:
		return NearTermWindow(now)
	case ProductShortRange:
		return ShortRangeWindow(now)
	default:
		return ObservationWindow(now)
	}
}
