package weather_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwear/weatherwear/internal/weather"
)

func obsItem(category, value string) weather.RawItem {
	return weather.RawItem{Category: weather.Category(category), ObsrValue: weather.Value(value)}
}

func fcstItem(category, date, hhmm, value string) weather.RawItem {
	return weather.RawItem{
		Category:  weather.Category(category),
		FcstDate:  date,
		FcstTime:  hhmm,
		FcstValue: weather.Value(value),
	}
}

func TestReduceObservation(t *testing.T) {
	items := []weather.RawItem{
		obsItem("T1H", "18.5"),
		obsItem("PTY", "0"),
		obsItem("SKY", "1"),
		obsItem("REH", "55"),
		obsItem("WSD", "2.1"),
	}

	obs, err := weather.ReduceObservation(items)
	require.NoError(t, err)

	assert.Equal(t, weather.Observation{
		Temperature: 18.5,
		Humidity:    55,
		WindSpeed:   2.1,
		Weather:     weather.LabelClear,
	}, obs)
}

func TestReduceObservation_PrecipitationLabel(t *testing.T) {
	obs, err := weather.ReduceObservation([]weather.RawItem{
		obsItem("T1H", "3.2"),
		obsItem("PTY", "3"),
		obsItem("SKY", "4"),
	})
	require.NoError(t, err)
	assert.Equal(t, weather.LabelSnow, obs.Weather)
}

func TestReduceObservation_BadValuesReadAsZero(t *testing.T) {
	obs, err := weather.ReduceObservation([]weather.RawItem{
		obsItem("T1H", "n/a"),
		obsItem("REH", ""),
		obsItem("WSD", "-"),
		obsItem("RN1", "강수없음"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, obs.Temperature)
	assert.Equal(t, 0.0, obs.Humidity)
	assert.Equal(t, 0.0, obs.WindSpeed)
	assert.Equal(t, weather.LabelClear, obs.Weather)
}

func TestReduceObservation_NonFiniteValuesReadAsZero(t *testing.T) {
	obs, err := weather.ReduceObservation([]weather.RawItem{
		obsItem("T1H", "NaN"),
		obsItem("REH", "Infinity"),
		obsItem("WSD", "-Inf"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, obs.Temperature)
	assert.Equal(t, 0.0, obs.Humidity)
	assert.Equal(t, 0.0, obs.WindSpeed)

	_, err = json.Marshal(obs)
	assert.NoError(t, err)
}

func TestReduceObservation_NoItems(t *testing.T) {
	_, err := weather.ReduceObservation(nil)
	assert.ErrorIs(t, err, weather.ErrNoItems)
}

func TestReduceNearTerm_GroupsAndSorts(t *testing.T) {
	items := []weather.RawItem{
		fcstItem("T1H", "20240510", "1600", "21"),
		fcstItem("T1H", "20240510", "1500", "22"),
		fcstItem("SKY", "20240510", "1500", "3"),
		fcstItem("PTY", "20240510", "1600", "1"),
		fcstItem("REH", "20240510", "1500", "60"),
		fcstItem("WSD", "20240510", "1500", "3.4"),
		fcstItem("T1H", "20240510", "1700", "20"),
		fcstItem("SKY", "20240510", "1700", "4"),
	}

	slots, err := weather.ReduceNearTerm(items)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, weather.HourlySlot{
		Time:        "15:00",
		Temperature: 22,
		Weather:     weather.LabelMostlyCloudy,
		Humidity:    60,
		WindSpeed:   3.4,
	}, slots[0])
	assert.Equal(t, "16:00", slots[1].Time)
	assert.Equal(t, weather.LabelRain, slots[1].Weather)
	assert.Equal(t, "17:00", slots[2].Time)
	assert.Equal(t, weather.LabelOvercast, slots[2].Weather)
}

func TestReduceNearTerm_OneSlotPerDistinctTime(t *testing.T) {
	var items []weather.RawItem
	times := []string{"2300", "1900", "2100", "2000", "2200", "1800"}
	for _, hhmm := range times {
		for _, cat := range []string{"T1H", "PTY", "SKY", "REH", "WSD", "LGT"} {
			items = append(items, fcstItem(cat, "20240510", hhmm, "1"))
		}
	}

	slots, err := weather.ReduceNearTerm(items)
	require.NoError(t, err)
	require.Len(t, slots, len(times))

	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1].Time, slots[i].Time)
	}
}

func TestReduceNearTerm_NonFiniteValuesReadAsZero(t *testing.T) {
	slots, err := weather.ReduceNearTerm([]weather.RawItem{
		fcstItem("T1H", "20240510", "1500", "nan"),
		fcstItem("REH", "20240510", "1500", "Inf"),
		fcstItem("WSD", "20240510", "1500", "+Infinity"),
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)

	assert.Equal(t, 0.0, slots[0].Temperature)
	assert.Equal(t, 0.0, slots[0].Humidity)
	assert.Equal(t, 0.0, slots[0].WindSpeed)

	_, err = json.Marshal(slots)
	assert.NoError(t, err)
}

// Slots are keyed by forecast time alone, so a window crossing midnight
// lists the small hours first.
func TestReduceNearTerm_MidnightSortsByClockTime(t *testing.T) {
	items := []weather.RawItem{
		fcstItem("T1H", "20240510", "2200", "18"),
		fcstItem("T1H", "20240510", "2300", "17"),
		fcstItem("T1H", "20240511", "0000", "16"),
		fcstItem("T1H", "20240511", "0100", "15"),
	}

	slots, err := weather.ReduceNearTerm(items)
	require.NoError(t, err)

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
	}
	assert.Equal(t, []string{"00:00", "01:00", "22:00", "23:00"}, times)
}

func TestReduceNearTerm_NoItems(t *testing.T) {
	_, err := weather.ReduceNearTerm([]weather.RawItem{})
	assert.ErrorIs(t, err, weather.ErrNoItems)
}

func TestReduceShortRange_MinMaxAndAverages(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, weather.KST)
	items := []weather.RawItem{
		fcstItem("TMN", "20241002", "0600", "10"),
		fcstItem("TMN", "20241002", "0600", "12"),
		fcstItem("TMN", "20241002", "0600", "9"),
		fcstItem("TMX", "20241002", "1500", "20"),
		fcstItem("TMX", "20241002", "1500", "22"),
		fcstItem("REH", "20241002", "0900", "50"),
		fcstItem("REH", "20241002", "1200", "61"),
		fcstItem("WSD", "20241002", "0900", "1.2"),
		fcstItem("WSD", "20241002", "1200", "2.3"),
		fcstItem("WSD", "20241002", "1500", "2.6"),
		fcstItem("SKY", "20241002", "0900", "4"),
		fcstItem("SKY", "20241002", "1200", "3"),
		fcstItem("PTY", "20241002", "1500", "1"),
	}

	slots, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	day := slots[0]
	assert.Equal(t, "2024-10-02", day.Date)
	assert.Equal(t, weather.TemperatureRange{Min: 9, Max: 22}, day.Temperature)
	assert.Equal(t, 56.0, day.Humidity)
	assert.Equal(t, 2.0, day.WindSpeed)
	// Only the noon codes count: SKY=3 at 1200, PTY at 1500 is ignored.
	assert.Equal(t, weather.LabelMostlyCloudy, day.Weather)
}

func TestReduceShortRange_NonFiniteValuesReadAsZero(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, weather.KST)
	items := []weather.RawItem{
		fcstItem("TMX", "20241002", "1500", "NaN"),
		fcstItem("REH", "20241002", "0900", "nan"),
		fcstItem("REH", "20241002", "1200", "60"),
		fcstItem("WSD", "20241002", "0900", "Infinity"),
		fcstItem("WSD", "20241002", "1200", "2"),
	}

	slots, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	day := slots[0]
	assert.Equal(t, 30.0, day.Humidity)
	assert.Equal(t, 1.0, day.WindSpeed)
	assert.Equal(t, 0.0, day.Temperature.Max)
	assert.LessOrEqual(t, day.Temperature.Min, day.Temperature.Max)

	_, err = json.Marshal(slots)
	assert.NoError(t, err)
}

func TestReduceShortRange_MissingMinSitsBelowMax(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, weather.KST)
	items := []weather.RawItem{
		fcstItem("TMX", "20241003", "1500", "25"),
		fcstItem("SKY", "20241003", "1200", "1"),
	}

	slots, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	r := slots[0].Temperature
	assert.Equal(t, 25.0, r.Max)
	assert.GreaterOrEqual(t, r.Max-r.Min, 8.0)
	assert.LessOrEqual(t, r.Max-r.Min, 12.0)
}

func TestReduceShortRange_InvertedRangeIsRepaired(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, weather.KST)
	slots, err := weather.ReduceShortRange([]weather.RawItem{
		fcstItem("TMN", "20241003", "0600", "30"),
		fcstItem("TMX", "20241003", "1500", "18"),
	}, now)
	require.NoError(t, err)

	r := slots[0].Temperature
	assert.Equal(t, 18.0, r.Max)
	assert.Less(t, r.Min, r.Max)
}

func TestReduceShortRange_SeasonalBaseline(t *testing.T) {
	items := []weather.RawItem{fcstItem("REH", "20240801", "0900", "70")}

	summer, err := weather.ReduceShortRange(items, time.Date(2024, 7, 31, 12, 0, 0, 0, weather.KST))
	require.NoError(t, err)
	assert.Equal(t, weather.TemperatureRange{Min: 17, Max: 27}, summer[0].Temperature)

	winter, err := weather.ReduceShortRange(items, time.Date(2024, 12, 31, 12, 0, 0, 0, weather.KST))
	require.NoError(t, err)
	assert.Equal(t, weather.TemperatureRange{Min: 10, Max: 20}, winter[0].Temperature)
}

func TestReduceShortRange_SortedByDate(t *testing.T) {
	now := time.Date(2024, 12, 30, 9, 0, 0, 0, weather.KST)
	items := []weather.RawItem{
		fcstItem("TMX", "20250101", "1500", "3"),
		fcstItem("TMX", "20241231", "1500", "4"),
		fcstItem("TMX", "20241230", "1500", "5"),
	}

	slots, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "2024-12-30", slots[0].Date)
	assert.Equal(t, "2024-12-31", slots[1].Date)
	assert.Equal(t, "2025-01-01", slots[2].Date)
}

func TestReduceShortRange_Idempotent(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, weather.KST)
	items := []weather.RawItem{
		fcstItem("TMX", "20241002", "1500", "21"),
		fcstItem("TMX", "20241003", "1500", "19"),
		fcstItem("REH", "20241003", "1200", "40"),
	}

	first, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	second, err := weather.ReduceShortRange(items, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValue_UnmarshalNumbersAndStrings(t *testing.T) {
	var v weather.Value
	require.NoError(t, v.UnmarshalJSON([]byte(`"18.5"`)))
	assert.Equal(t, 18.5, v.Float())

	require.NoError(t, v.UnmarshalJSON([]byte(`2.1`)))
	assert.Equal(t, 2.1, v.Float())

	require.NoError(t, v.UnmarshalJSON([]byte(`1`)))
	assert.Equal(t, "1", v.Code())

	require.NoError(t, v.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, 0.0, v.Float())
}
