package weather

import (
	"fmt"
	"time"
)

// KST is the wall clock the KMA publication schedule runs on.
var KST = time.FixedZone("KST", 9*60*60)

// Minutes after the hour at which each ultra-short product becomes available.
const (
	observationReadyMinute = 10
	nearTermReadyMinute    = 45
)

// shortRangeSlots are the daily issuance hours of the short-range forecast.
var shortRangeSlots = []int{2, 5, 8, 11, 14, 17, 20, 23}

// ObservationWindow returns the latest observation batch published by now.
// Observations are issued on the hour and settle about ten minutes later.
func ObservationWindow(now time.Time) IssuanceWindow {
	slot := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	if now.Minute() < observationReadyMinute {
		slot = slot.Add(-time.Hour)
	}
	return windowAt(slot)
}

// NearTermWindow returns the latest ultra-short forecast published by now.
// The forecast is issued at HH:30 and is served from HH:45.
func NearTermWindow(now time.Time) IssuanceWindow {
	slot := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 30, 0, 0, now.Location())
	if now.Minute() < nearTermReadyMinute {
		slot = slot.Add(-time.Hour)
	}
	return windowAt(slot)
}

// ShortRangeWindow returns the latest short-range forecast issuance at or
// before the current hour. Before 02:00 that is 23:00 of the previous day.
func ShortRangeWindow(now time.Time) IssuanceWindow {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	hour := -1
	for _, h := range shortRangeSlots {
		if h <= now.Hour() {
			hour = h
		}
	}
	if hour < 0 {
		day = day.AddDate(0, 0, -1)
		hour = shortRangeSlots[len(shortRangeSlots)-1]
	}

	return IssuanceWindow{
		BaseDate: day.Format("20060102"),
		BaseTime: fmt.Sprintf("%02d00", hour),
	}
}

func windowAt(slot time.Time) IssuanceWindow {
	return IssuanceWindow{
		BaseDate: slot.Format("20060102"),
		BaseTime: slot.Format("1504"),
	}
}
