package models

type ExtremeKind string

const (
	ExtremeHigh ExtremeKind = "HIGH"
	ExtremeLow  ExtremeKind = "LOW"
)

// TideSample is a single water-height reading at minute precision.
// LocalTime is timezone-naive ("2006-01-02T15:04"); the provider's offset
// suffix is stripped during normalization so it can serve as a join key.
type TideSample struct {
	LocalTime    string  `json:"localTime"`
	HeightMeters float64 `json:"heightMeters"`
}

// TideExtreme is a high or low turning point in the tide curve.
type TideExtreme struct {
	Kind         ExtremeKind `json:"kind"`
	LocalTime    string      `json:"localTime"`
	HeightMeters float64     `json:"heightMeters"`
}

// DailyTideExtremes aggregates the extremes for one calendar day.
// Highs are sorted descending by height, lows ascending, each capped at two.
type DailyTideExtremes struct {
	Day   string        `json:"day"` // 2006-01-02
	Highs []TideExtreme `json:"highs"`
	Lows  []TideExtreme `json:"lows"`
}

// Day returns the calendar-day portion of a normalized local timestamp.
func (e TideExtreme) Day() string {
	if len(e.LocalTime) < 10 {
		return e.LocalTime
	}
	return e.LocalTime[:10]
}

// TimeOfDay returns the HH:mm portion of a normalized local timestamp.
func (e TideExtreme) TimeOfDay() string {
	if len(e.LocalTime) < 16 {
		return ""
	}
	return e.LocalTime[11:16]
}

// TideData is the normalized output of one tide fetch: continuous height
// samples, per-day extremes, and the provider's attribution string which
// must be surfaced to the presentation layer unmodified.
type TideData struct {
	Heights     []TideSample        `json:"heights"`
	Extremes    []DailyTideExtremes `json:"extremes"`
	Attribution string              `json:"attribution,omitempty"`
}
