package forecast

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/models"
	"github.com/shorecast/shorecast/internal/tide"
	"golang.org/x/sync/errgroup"
)

// WeatherProvider supplies the hourly/daily forecasts and wave heights the
// tide data is merged into.
type WeatherProvider interface {
	GetForecast(ctx context.Context, lat, lon float64) ([]models.HourlyForecast, []models.DailyForecast, error)
	GetWaves(ctx context.Context, lat, lon float64) (map[string]float64, error)
}

// Service runs one location refresh: weather, wave, and tide fetches execute
// concurrently, join, and then merge.
type Service struct {
	Weather WeatherProvider
	Tides   tide.Provider
}

func NewService(weather WeatherProvider, tides tide.Provider) *Service {
	return &Service{
		Weather: weather,
		Tides:   tides,
	}
}

// Refresh produces the merged forecast for a location. A tide failure does
// not abort the refresh: the bundle carries a short human-readable tide
// status instead, so the consumer can keep previously-displayed tide data in
// place. Wave failures degrade the same way, silently.
func (s *Service) Refresh(ctx context.Context, lat, lon float64) (*models.ForecastBundle, error) {
	var (
		hourly  []models.HourlyForecast
		daily   []models.DailyForecast
		waves   map[string]float64
		tides   *models.TideData
		tideErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h, d, err := s.Weather.GetForecast(gctx, lat, lon)
		if err != nil {
			return fmt.Errorf("fetching weather: %w", err)
		}
		hourly, daily = h, d
		return nil
	})

	g.Go(func() error {
		w, err := s.Weather.GetWaves(gctx, lat, lon)
		if err != nil {
			log.Warn().Err(err).Msg("Wave fetch failed, continuing without waves")
			return nil
		}
		waves = w
		return nil
	})

	g.Go(func() error {
		t, err := s.Tides.GetTides(gctx, lat, lon)
		if err != nil {
			log.Warn().Err(err).Msg("Tide fetch failed, continuing without tides")
			tideErr = err
			return nil
		}
		tides = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	MergeWaves(hourly, waves)
	MergeTides(hourly, daily, tides)

	bundle := &models.ForecastBundle{
		Latitude:  lat,
		Longitude: lon,
		Hourly:    hourly,
		Daily:     daily,
	}
	if tides != nil {
		bundle.TideAttribution = tides.Attribution
	} else {
		bundle.TideStatus = tide.CauseMessage(tideErr)
	}

	return bundle, nil
}
