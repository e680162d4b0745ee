package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/models"
	"github.com/shorecast/shorecast/pkg/http/client"
	"github.com/sony/gobreaker"
)

// OpenMeteoClient fetches hourly/daily weather and wave forecasts. These are
// the simple single-request collaborators the tide data is merged into.
// Each upstream API sits behind its own circuit breaker so a flapping
// provider is backed off independently of the retry policy.
type OpenMeteoClient struct {
	httpClient    client.Interface
	forecastURL   string
	marineURL     string
	forecastDays  int
	circuit       *gobreaker.CircuitBreaker
	marineCircuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(httpClient client.Interface, cfg *config.Config) *OpenMeteoClient {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}
	}

	return &OpenMeteoClient{
		httpClient:    httpClient,
		forecastURL:   cfg.WeatherBaseURL,
		marineURL:     cfg.MarineBaseURL,
		forecastDays:  cfg.TideWindowDays,
		circuit:       gobreaker.NewCircuitBreaker(settings("openmeteo-forecast")),
		marineCircuit: gobreaker.NewCircuitBreaker(settings("openmeteo-marine")),
	}
}

// GetForecast returns hourly and daily forecasts keyed by timezone-naive
// local timestamps, matching the tide normalizer's join keys.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, lat, lon float64) ([]models.HourlyForecast, []models.DailyForecast, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("hourly", "temperature_2m,wind_speed_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("wind_speed_unit", "ms")
	params.Set("timezone", "auto")
	params.Set("forecast_days", fmt.Sprintf("%d", c.forecastDays))

	body, err := c.get(ctx, c.circuit, fmt.Sprintf("%s?%s", c.forecastURL, params.Encode()))
	if err != nil {
		return nil, nil, fmt.Errorf("fetching weather forecast: %w", err)
	}

	var payload struct {
		Hourly struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			WindSpeed   []float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
		Daily struct {
			Time           []string  `json:"time"`
			TemperatureMax []float64 `json:"temperature_2m_max"`
			TemperatureMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decoding weather forecast: %w", err)
	}

	hourly := make([]models.HourlyForecast, 0, len(payload.Hourly.Time))
	for i, ts := range payload.Hourly.Time {
		entry := models.HourlyForecast{LocalTime: ts}
		if i < len(payload.Hourly.Temperature) {
			entry.TemperatureC = payload.Hourly.Temperature[i]
		}
		if i < len(payload.Hourly.WindSpeed) {
			entry.WindSpeedMS = payload.Hourly.WindSpeed[i]
		}
		hourly = append(hourly, entry)
	}

	daily := make([]models.DailyForecast, 0, len(payload.Daily.Time))
	for i, date := range payload.Daily.Time {
		entry := models.DailyForecast{Date: date}
		if i < len(payload.Daily.TemperatureMax) {
			entry.TemperatureMaxC = payload.Daily.TemperatureMax[i]
		}
		if i < len(payload.Daily.TemperatureMin) {
			entry.TemperatureMinC = payload.Daily.TemperatureMin[i]
		}
		daily = append(daily, entry)
	}

	return hourly, daily, nil
}

// GetWaves returns wave heights keyed by local timestamp.
func (c *OpenMeteoClient) GetWaves(ctx context.Context, lat, lon float64) (map[string]float64, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("hourly", "wave_height")
	params.Set("timezone", "auto")

	body, err := c.get(ctx, c.marineCircuit, fmt.Sprintf("%s?%s", c.marineURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching wave forecast: %w", err)
	}

	var payload struct {
		Hourly struct {
			Time       []string  `json:"time"`
			WaveHeight []float64 `json:"wave_height"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding wave forecast: %w", err)
	}

	waves := make(map[string]float64, len(payload.Hourly.Time))
	for i, ts := range payload.Hourly.Time {
		if i < len(payload.Hourly.WaveHeight) {
			waves[ts] = payload.Hourly.WaveHeight[i]
		}
	}

	return waves, nil
}

func (c *OpenMeteoClient) get(ctx context.Context, cb *gobreaker.CircuitBreaker, fullURL string) ([]byte, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Get(ctx, fullURL)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
