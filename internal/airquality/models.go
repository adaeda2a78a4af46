// Package airquality estimates particulate matter and UV exposure for a
// position.
package airquality

// Grade is a banded severity level starting at 1.
type Grade int

// AirQuality is a particulate matter reading with its grades.
type AirQuality struct {
	PM10       int    `json:"pm10"`
	PM25       int    `json:"pm25"`
	PM10Grade  Grade  `json:"pm10Grade"`
	PM25Grade  Grade  `json:"pm25Grade"`
	PM10Status string `json:"pm10Status"`
	PM25Status string `json:"pm25Status"`
}

// UVIndex is an ultraviolet index reading with its grade.
type UVIndex struct {
	Index  int    `json:"uvIndex"`
	Grade  Grade  `json:"uvGrade"`
	Status string `json:"uvStatus"`
}

// PM10Grade bands a PM10 concentration (µg/m³).
func PM10Grade(v int) Grade {
	switch {
	case v <= 30:
		return 1
	case v <= 80:
		return 2
	case v <= 150:
		return 3
	default:
		return 4
	}
}

// PM25Grade bands a PM2.5 concentration (µg/m³).
func PM25Grade(v int) Grade {
	switch {
	case v <= 15:
		return 1
	case v <= 35:
		return 2
	case v <= 75:
		return 3
	default:
		return 4
	}
}

// UVGrade bands a UV index.
func UVGrade(v int) Grade {
	switch {
	case v <= 2:
		return 1
	case v <= 5:
		return 2
	case v <= 7:
		return 3
	case v <= 10:
		return 4
	default:
		return 5
	}
}

// ParticulateStatus describes a PM grade.
func ParticulateStatus(g Grade) string {
	switch g {
	case 1:
		return "good"
	case 2:
		return "moderate"
	case 3:
		return "bad"
	case 4:
		return "very bad"
	default:
		return "unknown"
	}
}

// UVStatus describes a UV grade.
func UVStatus(g Grade) string {
	switch g {
	case 1:
		return "low"
	case 2:
		return "moderate"
	case 3:
		return "high"
	case 4:
		return "very high"
	case 5:
		return "dangerous"
	default:
		return "unknown"
	}
}

// NewAirQuality builds a reading from raw concentrations.
func NewAirQuality(pm10, pm25 int) AirQuality {
	aq := AirQuality{
		PM10:      pm10,
		PM25:      pm25,
		PM10Grade: PM10Grade(pm10),
		PM25Grade: PM25Grade(pm25),
	}
	aq.PM10Status = ParticulateStatus(aq.PM10Grade)
	aq.PM25Status = ParticulateStatus(aq.PM25Grade)
	return aq
}

// NewUVIndex builds a reading from a raw index.
func NewUVIndex(index int) UVIndex {
	grade := UVGrade(index)
	return UVIndex{Index: index, Grade: grade, Status: UVStatus(grade)}
}
