package forecast

import (
	"github.com/shorecast/shorecast/internal/models"
)

// MergeTides aligns normalized tide data against independently-fetched
// forecasts in place. Hourly entries get the tide height whose normalized
// timestamp matches theirs; daily entries get the day's single highest high
// and lowest low with their HH:mm times. Entries with no matching tide data
// keep nil fields. Pure data alignment: no I/O, idempotent.
func MergeTides(hourly []models.HourlyForecast, daily []models.DailyForecast, tides *models.TideData) {
	if tides == nil {
		return
	}

	// Last write wins when the provider repeats a timestamp.
	byTime := make(map[string]float64, len(tides.Heights))
	for _, sample := range tides.Heights {
		byTime[sample.LocalTime] = sample.HeightMeters
	}
	for i := range hourly {
		if height, ok := byTime[hourly[i].LocalTime]; ok {
			h := height
			hourly[i].TideHeightMeters = &h
		}
	}

	byDay := make(map[string]models.DailyTideExtremes, len(tides.Extremes))
	for _, day := range tides.Extremes {
		byDay[day.Day] = day
	}
	for i := range daily {
		day, ok := byDay[daily[i].Date]
		if !ok {
			continue
		}
		// Highs are sorted descending and lows ascending by height, so the
		// first entry of each capped list is the one to surface.
		if len(day.Highs) > 0 {
			high := day.Highs[0]
			height := high.HeightMeters
			at := high.TimeOfDay()
			daily[i].HighTideMeters = &height
			daily[i].HighTideTime = &at
		}
		if len(day.Lows) > 0 {
			low := day.Lows[0]
			height := low.HeightMeters
			at := low.TimeOfDay()
			daily[i].LowTideMeters = &height
			daily[i].LowTideTime = &at
		}
	}
}

// MergeWaves attaches wave heights to hourly entries by timestamp key.
func MergeWaves(hourly []models.HourlyForecast, waves map[string]float64) {
	for i := range hourly {
		if height, ok := waves[hourly[i].LocalTime]; ok {
			h := height
			hourly[i].WaveHeightMeters = &h
		}
	}
}
