package models

import (
	"github.com/weatherwear/weatherwear/internal/airquality"
	"github.com/weatherwear/weatherwear/internal/weather"
)

// CurrentWeather is the observation for a location, optionally merged with
// air quality and UV readings.
type CurrentWeather struct {
	weather.Observation
	Location   Location               `json:"location"`
	AirQuality *airquality.AirQuality `json:"airQuality,omitempty"`
	UV         *airquality.UVIndex    `json:"uv,omitempty"`
}

// Location echoes the requested coordinates and the grid cell they map to.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	NX  int     `json:"nx"`
	NY  int     `json:"ny"`
}

// NearTermForecast is the hourly forecast for the next six hours.
type NearTermForecast struct {
	Location Location             `json:"location"`
	Slots    []weather.HourlySlot `json:"slots"`
}

// ShortRangeForecast is the daily forecast for the next three days.
type ShortRangeForecast struct {
	Location Location            `json:"location"`
	Days     []weather.DailySlot `json:"days"`
}

// NewLocation builds a Location for the given point.
func NewLocation(p weather.GeoPoint) Location {
	cell := weather.Project(p)
	return Location{Lat: p.Lat, Lon: p.Lon, NX: cell.X, NY: cell.Y}
}
