package models

// HourlyForecast is one hour of weather/wave data keyed by local timestamp
// ("2006-01-02T15:04"). TideHeightMeters stays nil until the merge step
// finds a tide sample for the same key; nil means "no data", never zero.
type HourlyForecast struct {
	LocalTime        string   `json:"localTime"`
	TemperatureC     float64  `json:"temperatureC"`
	WindSpeedMS      float64  `json:"windSpeedMS"`
	WaveHeightMeters *float64 `json:"waveHeightMeters,omitempty"`
	TideHeightMeters *float64 `json:"tideHeightMeters,omitempty"`
}

// DailyForecast is one calendar day of weather data keyed by date
// ("2006-01-02"), augmented with the day's single highest high and lowest
// low tide after the merge step.
type DailyForecast struct {
	Date            string   `json:"date"`
	TemperatureMaxC float64  `json:"temperatureMaxC"`
	TemperatureMinC float64  `json:"temperatureMinC"`
	HighTideMeters  *float64 `json:"highTideMeters,omitempty"`
	HighTideTime    *string  `json:"highTideTime,omitempty"`
	LowTideMeters   *float64 `json:"lowTideMeters,omitempty"`
	LowTideTime     *string  `json:"lowTideTime,omitempty"`
}

// ForecastBundle is the joined output of one location refresh.
type ForecastBundle struct {
	Latitude        float64          `json:"latitude"`
	Longitude       float64          `json:"longitude"`
	Hourly          []HourlyForecast `json:"hourly"`
	Daily           []DailyForecast  `json:"daily"`
	TideAttribution string           `json:"tideAttribution,omitempty"`
	// TideStatus carries a short human-readable cause when tide data could
	// not be fetched; the weather portion is still populated.
	TideStatus string `json:"tideStatus,omitempty"`
}
