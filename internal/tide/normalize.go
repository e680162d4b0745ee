package tide

import (
	"sort"
	"strings"

	"github.com/shorecast/shorecast/internal/models"
)

// NormalizeTimestamp strips any timezone offset suffix from a provider
// timestamp and truncates to minute precision, yielding the 16-character
// timezone-naive form "2006-01-02T15:04" used as a stable join key.
func NormalizeTimestamp(raw string) string {
	ts := strings.TrimSpace(raw)
	if len(ts) > 16 {
		ts = ts[:16]
	}
	return ts
}

// normalize maps raw provider heights and extremes into the internal models.
// Heights keep provider order; extremes are grouped by calendar day, split by
// kind, sorted (highs descending, lows ascending by height), capped at two of
// each, and the days themselves sorted ascending.
func normalize(rawHeights []providerHeight, rawExtremes []providerExtreme) ([]models.TideSample, []models.DailyTideExtremes) {
	samples := make([]models.TideSample, len(rawHeights))
	for i, h := range rawHeights {
		samples[i] = models.TideSample{
			LocalTime:    NormalizeTimestamp(h.Date),
			HeightMeters: h.Height,
		}
	}

	byDay := make(map[string][]models.TideExtreme)
	for _, e := range rawExtremes {
		ts := NormalizeTimestamp(e.Date)
		if len(ts) < 10 {
			continue
		}
		kind := models.ExtremeLow
		if strings.EqualFold(e.Type, "High") {
			kind = models.ExtremeHigh
		}
		extreme := models.TideExtreme{
			Kind:         kind,
			LocalTime:    ts,
			HeightMeters: e.Height,
		}
		byDay[extreme.Day()] = append(byDay[extreme.Day()], extreme)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]models.DailyTideExtremes, 0, len(days))
	for _, day := range days {
		var highs, lows []models.TideExtreme
		for _, e := range byDay[day] {
			if e.Kind == models.ExtremeHigh {
				highs = append(highs, e)
			} else {
				lows = append(lows, e)
			}
		}

		sort.SliceStable(highs, func(i, j int) bool {
			return highs[i].HeightMeters > highs[j].HeightMeters
		})
		sort.SliceStable(lows, func(i, j int) bool {
			return lows[i].HeightMeters < lows[j].HeightMeters
		})

		// Some providers report more than two extremes per day in edge
		// cases; cap to the conventional two highs and two lows.
		if len(highs) > 2 {
			highs = highs[:2]
		}
		if len(lows) > 2 {
			lows = lows[:2]
		}

		daily = append(daily, models.DailyTideExtremes{
			Day:   day,
			Highs: highs,
			Lows:  lows,
		})
	}

	return samples, daily
}
