package weather

import (
	"hash/fnv"
	"math"
	"sort"
	"time"
)

// Sentinels seeding the daily running minimum and maximum.
const (
	minTempSentinel = 100.0
	maxTempSentinel = -100.0
)

// noonFcstTime is the only forecast time whose PTY/SKY codes describe a day.
const noonFcstTime = "1200"

// ReduceObservation folds an observation item list into a single record.
// Unknown categories are ignored and unparseable values read as 0.
func ReduceObservation(items []RawItem) (Observation, error) {
	if len(items) == 0 {
		return Observation{}, ErrNoItems
	}

	var obs Observation
	pty, sky := defaultPrecipitationCode, defaultSkyCode

	for _, item := range items {
		switch item.Category {
		case CategoryTemperature:
			obs.Temperature = item.ObsrValue.Float()
		case CategoryHumidity:
			obs.Humidity = item.ObsrValue.Float()
		case CategoryWindSpeed:
			obs.WindSpeed = item.ObsrValue.Float()
		case CategoryPrecipitation:
			pty = item.ObsrValue.Code()
		case CategorySky:
			sky = item.ObsrValue.Code()
		}
	}

	obs.Weather = Translate(pty, sky)
	return obs, nil
}

type hourlyBucket struct {
	slot HourlySlot
	pty  string
	sky  string
}

// ReduceNearTerm groups ultra-short forecast items by forecast time and
// returns one slot per distinct time, ordered by "HH:MM".
func ReduceNearTerm(items []RawItem) ([]HourlySlot, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	buckets := make(map[string]*hourlyBucket)
	for _, item := range items {
		if item.FcstTime == "" {
			continue
		}

		b, ok := buckets[item.FcstTime]
		if !ok {
			b = &hourlyBucket{
				slot: HourlySlot{Time: clockLabel(item.FcstTime)},
				pty:  defaultPrecipitationCode,
				sky:  defaultSkyCode,
			}
			buckets[item.FcstTime] = b
		}

		switch item.Category {
		case CategoryTemperature:
			b.slot.Temperature = item.FcstValue.Float()
		case CategoryPrecipitation:
			b.pty = item.FcstValue.Code()
		case CategorySky:
			b.sky = item.FcstValue.Code()
		case CategoryHumidity:
			b.slot.Humidity = item.FcstValue.Float()
		case CategoryWindSpeed:
			b.slot.WindSpeed = item.FcstValue.Float()
		}
	}

	slots := make([]HourlySlot, 0, len(buckets))
	for _, b := range buckets {
		b.slot.Weather = Translate(b.pty, b.sky)
		slots = append(slots, b.slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}

type dailyBucket struct {
	key         string
	min         float64
	max         float64
	pty         string
	sky         string
	humiditySum float64
	humidityN   int
	windSum     float64
	windN       int
}

// ReduceShortRange groups short-range forecast items into one slot per
// forecast date, ordered by date. TMN/TMX are tracked as running extremes,
// PTY/SKY are read from the noon forecast only, and REH/WSD are averaged.
// now selects the seasonal baseline used when a day carries no usable
// temperatures.
func ReduceShortRange(items []RawItem, now time.Time) ([]DailySlot, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	buckets := make(map[string]*dailyBucket)
	for _, item := range items {
		if item.FcstDate == "" {
			continue
		}

		b, ok := buckets[item.FcstDate]
		if !ok {
			b = &dailyBucket{
				key: item.FcstDate,
				min: minTempSentinel,
				max: maxTempSentinel,
				pty: defaultPrecipitationCode,
				sky: defaultSkyCode,
			}
			buckets[item.FcstDate] = b
		}

		switch item.Category {
		case CategoryMinTemp:
			b.min = math.Min(b.min, item.FcstValue.Float())
		case CategoryMaxTemp:
			b.max = math.Max(b.max, item.FcstValue.Float())
		case CategoryPrecipitation:
			if item.FcstTime == noonFcstTime {
				b.pty = item.FcstValue.Code()
			}
		case CategorySky:
			if item.FcstTime == noonFcstTime {
				b.sky = item.FcstValue.Code()
			}
		case CategoryHumidity:
			b.humiditySum += item.FcstValue.Float()
			b.humidityN++
		case CategoryWindSpeed:
			b.windSum += item.FcstValue.Float()
			b.windN++
		}
	}

	slots := make([]DailySlot, 0, len(buckets))
	for _, b := range buckets {
		slots = append(slots, b.slot(now))
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Date < slots[j].Date })
	return slots, nil
}

func (b *dailyBucket) slot(now time.Time) DailySlot {
	s := DailySlot{
		Date:        dateLabel(b.key),
		Temperature: b.temperature(now),
		Weather:     Translate(b.pty, b.sky),
	}
	if b.humidityN > 0 {
		s.Humidity = math.Round(b.humiditySum / float64(b.humidityN))
	}
	if b.windN > 0 {
		s.WindSpeed = roundTo(b.windSum/float64(b.windN), 1)
	}
	return s
}

// temperature repairs ranges the provider left incomplete. A missing or
// inverted minimum sits 8 to 12 degrees under a known maximum; with neither
// known the range is a 10 degree band around the seasonal baseline.
func (b *dailyBucket) temperature(now time.Time) TemperatureRange {
	r := TemperatureRange{Min: b.min, Max: b.max}
	if r.Min != minTempSentinel && r.Min <= r.Max {
		return r
	}

	if r.Max > maxTempSentinel {
		r.Min = math.Round(r.Max - float64(diurnalSpread(b.key)))
		return r
	}

	base := seasonalBaseline(now)
	return TemperatureRange{Min: base - 5, Max: base + 5}
}

// diurnalSpread picks a spread in [8, 12] keyed on the forecast date so that
// the same payload always normalizes to the same range.
func diurnalSpread(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return 8 + int(h.Sum32()%5)
}

func seasonalBaseline(now time.Time) float64 {
	if m := now.Month(); m >= time.June && m <= time.September {
		return 22
	}
	return 15
}

// clockLabel turns "HHmm" into "HH:MM".
func clockLabel(hhmm string) string {
	if len(hhmm) != 4 {
		return hhmm
	}
	return hhmm[:2] + ":" + hhmm[2:]
}

// dateLabel turns "YYYYMMDD" into "YYYY-MM-DD".
func dateLabel(yyyymmdd string) string {
	if len(yyyymmdd) != 8 {
		return yyyymmdd
	}
	return yyyymmdd[:4] + "-" + yyyymmdd[4:6] + "-" + yyyymmdd[6:]
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
