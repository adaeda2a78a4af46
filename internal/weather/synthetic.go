package weather

import (
	"math"
	"time"
)

// Jitter returns a pseudo-random number in [0, 1).
type Jitter func() float64

// Synthetic data parameters.
const (
	syntheticBaseTemp      = 23.0
	syntheticDailyBaseTemp = 22.0
	nearTermHours          = 6
	shortRangeDays         = 3
)

// StaticObservation is the fixed current-conditions record served when
// synthetic mode is forced.
func StaticObservation() Observation {
	return Observation{Temperature: 25, Humidity: 45, WindSpeed: 2.0, Weather: LabelOvercast}
}

// StaticNearTerm is the fixed near-term forecast served in synthetic mode.
func StaticNearTerm() []HourlySlot {
	return []HourlySlot{
		{Time: "12:00", Temperature: 24, Weather: LabelMostlyCloudy, Humidity: 40, WindSpeed: 1.5},
		{Time: "13:00", Temperature: 25, Weather: LabelOvercast, Humidity: 45, WindSpeed: 2.0},
		{Time: "14:00", Temperature: 26, Weather: LabelOvercast, Humidity: 50, WindSpeed: 2.5},
		{Time: "15:00", Temperature: 27, Weather: LabelMostlyCloudy, Humidity: 45, WindSpeed: 2.0},
		{Time: "16:00", Temperature: 25, Weather: LabelMostlyCloudy, Humidity: 40, WindSpeed: 1.5},
		{Time: "17:00", Temperature: 24, Weather: LabelClear, Humidity: 35, WindSpeed: 1.0},
	}
}

// StaticShortRange is the fixed short-range forecast served in synthetic mode.
func StaticShortRange() []DailySlot {
	return []DailySlot{
		{Date: "2023-10-25", Temperature: TemperatureRange{Min: 15, Max: 28}, Weather: LabelClear, Humidity: 40, WindSpeed: 1.5},
		{Date: "2023-10-26", Temperature: TemperatureRange{Min: 17, Max: 29}, Weather: LabelMostlyCloudy, Humidity: 50, WindSpeed: 2.0},
		{Date: "2023-10-27", Temperature: TemperatureRange{Min: 16, Max: 27}, Weather: LabelOvercast, Humidity: 55, WindSpeed: 2.5},
	}
}

// SyntheticObservation fabricates a plausible record for the hour of now.
func SyntheticObservation(now time.Time, jitter Jitter) Observation {
	return Observation{
		Temperature: math.Round(syntheticBaseTemp + diurnalBias(now.Hour()) + spread(jitter, 2)),
		Humidity:    math.Round(40 + jitter()*20),
		WindSpeed:   roundTo(1+jitter()*2, 1),
		Weather:     LabelClear,
	}
}

// SyntheticNearTerm fabricates six hourly slots starting at the hour of now.
func SyntheticNearTerm(now time.Time, jitter Jitter) []HourlySlot {
	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	slots := make([]HourlySlot, 0, nearTermHours)
	for i := 0; i < nearTermHours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)

		label := LabelClear
		if i%2 == 1 {
			label = LabelMostlyCloudy
		}

		slots = append(slots, HourlySlot{
			Time:        t.Format("15:04"),
			Temperature: math.Round(syntheticBaseTemp + diurnalBias(t.Hour()) + spread(jitter, 2)),
			Weather:     label,
			Humidity:    math.Round(40 + jitter()*20),
			WindSpeed:   roundTo(1+jitter()*2, 1),
		})
	}
	return slots
}

// SyntheticShortRange fabricates three consecutive days starting with the
// calendar day of now.
func SyntheticShortRange(now time.Time, jitter Jitter) []DailySlot {
	labels := [shortRangeDays]Label{LabelClear, LabelMostlyCloudy, LabelOvercast}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	slots := make([]DailySlot, 0, shortRangeDays)
	for i := 0; i < shortRangeDays; i++ {
		variance := spread(jitter, 2)
		slots = append(slots, DailySlot{
			Date: today.AddDate(0, 0, i).Format("2006-01-02"),
			Temperature: TemperatureRange{
				Min: math.Round(syntheticDailyBaseTemp - 5 + variance),
				Max: math.Round(syntheticDailyBaseTemp + 5 + variance),
			},
			Weather:   labels[i],
			Humidity:  math.Round(40 + float64(i)*5 + jitter()*10),
			WindSpeed: roundTo(1.5+float64(i)*0.5, 1),
		})
	}
	return slots
}

// diurnalBias warms the early afternoon and cools the small hours.
func diurnalBias(hour int) float64 {
	switch {
	case hour >= 12 && hour <= 15:
		return 2
	case hour >= 3 && hour <= 6:
		return -2
	default:
		return 0
	}
}

// spread maps a jitter sample onto [-width, width).
func spread(jitter Jitter, width float64) float64 {
	return jitter()*2*width - width
}
