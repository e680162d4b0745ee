package forecast

import (
	"testing"

	"github.com/shorecast/shorecast/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTides() *models.TideData {
	return &models.TideData{
		Heights: []models.TideSample{
			{LocalTime: "2025-04-06T12:00", HeightMeters: 0.95},
			{LocalTime: "2025-04-06T13:00", HeightMeters: 1.42},
		},
		Extremes: []models.DailyTideExtremes{
			{
				Day: "2025-04-06",
				Highs: []models.TideExtreme{
					{Kind: models.ExtremeHigh, LocalTime: "2025-04-06T14:30", HeightMeters: 1.8},
					{Kind: models.ExtremeHigh, LocalTime: "2025-04-06T02:10", HeightMeters: 1.4},
				},
				Lows: []models.TideExtreme{
					{Kind: models.ExtremeLow, LocalTime: "2025-04-06T20:40", HeightMeters: 0.2},
					{Kind: models.ExtremeLow, LocalTime: "2025-04-06T08:20", HeightMeters: 0.4},
				},
			},
		},
		Attribution: "example attribution",
	}
}

func TestMergeTidesAlignsHourly(t *testing.T) {
	t.Parallel()

	hourly := []models.HourlyForecast{
		{LocalTime: "2025-04-06T12:00", TemperatureC: 18.2},
		{LocalTime: "2025-04-06T13:00", TemperatureC: 19.0},
		{LocalTime: "2025-04-06T14:00", TemperatureC: 19.4},
	}

	MergeTides(hourly, nil, sampleTides())

	require.NotNil(t, hourly[0].TideHeightMeters)
	assert.Equal(t, 0.95, *hourly[0].TideHeightMeters)
	require.NotNil(t, hourly[1].TideHeightMeters)
	assert.Equal(t, 1.42, *hourly[1].TideHeightMeters)
	assert.Nil(t, hourly[2].TideHeightMeters, "hours without tide data stay nil")
}

func TestMergeTidesAlignsDaily(t *testing.T) {
	t.Parallel()

	daily := []models.DailyForecast{
		{Date: "2025-04-06"},
		{Date: "2025-04-07"},
	}

	MergeTides(nil, daily, sampleTides())

	require.NotNil(t, daily[0].HighTideMeters)
	assert.Equal(t, 1.8, *daily[0].HighTideMeters)
	require.NotNil(t, daily[0].HighTideTime)
	assert.Equal(t, "14:30", *daily[0].HighTideTime)
	require.NotNil(t, daily[0].LowTideMeters)
	assert.Equal(t, 0.2, *daily[0].LowTideMeters)
	require.NotNil(t, daily[0].LowTideTime)
	assert.Equal(t, "20:40", *daily[0].LowTideTime)

	// Days not covered by the tide window keep nil fields; absent is not zero.
	assert.Nil(t, daily[1].HighTideMeters)
	assert.Nil(t, daily[1].HighTideTime)
	assert.Nil(t, daily[1].LowTideMeters)
	assert.Nil(t, daily[1].LowTideTime)
}

func TestMergeTidesNilData(t *testing.T) {
	t.Parallel()

	hourly := []models.HourlyForecast{{LocalTime: "2025-04-06T12:00"}}
	daily := []models.DailyForecast{{Date: "2025-04-06"}}

	MergeTides(hourly, daily, nil)

	assert.Nil(t, hourly[0].TideHeightMeters)
	assert.Nil(t, daily[0].HighTideMeters)
}

func TestMergeTidesIdempotent(t *testing.T) {
	t.Parallel()

	hourly := []models.HourlyForecast{{LocalTime: "2025-04-06T13:00"}}
	daily := []models.DailyForecast{{Date: "2025-04-06"}}
	tides := sampleTides()

	MergeTides(hourly, daily, tides)
	MergeTides(hourly, daily, tides)

	assert.Equal(t, 1.42, *hourly[0].TideHeightMeters)
	assert.Equal(t, 1.8, *daily[0].HighTideMeters)
	assert.Equal(t, "14:30", *daily[0].HighTideTime)
}

func TestMergeWaves(t *testing.T) {
	t.Parallel()

	hourly := []models.HourlyForecast{
		{LocalTime: "2025-04-06T12:00"},
		{LocalTime: "2025-04-06T13:00"},
	}

	MergeWaves(hourly, map[string]float64{"2025-04-06T12:00": 1.25})

	require.NotNil(t, hourly[0].WaveHeightMeters)
	assert.Equal(t, 1.25, *hourly[0].WaveHeightMeters)
	assert.Nil(t, hourly[1].WaveHeightMeters)
}
