package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/forecast"
)

// Location is a coordinate the scheduler refreshes on its interval.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Scheduler periodically refreshes the merged forecast for configured
// locations. The cache layer keeps repeated refreshes within the TTL cheap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *forecast.Service
	locations []Location
	interval  time.Duration
	onRefresh func(Location, error)
}

// New creates a Scheduler. onRefresh, when non-nil, is invoked after each
// location refresh with its outcome.
func New(locations []Location, interval time.Duration, service *forecast.Service, onRefresh func(Location, error)) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		service:   service,
		locations: locations,
		interval:  interval,
		onRefresh: onRefresh,
	}
}

// Start schedules the periodic refresh job and starts the scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Info().Msg("No locations configured, nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		for _, loc := range s.locations {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			bundle, err := s.service.Refresh(ctx, loc.Latitude, loc.Longitude)
			cancel()

			if err != nil {
				log.Error().Err(err).
					Float64("lat", loc.Latitude).
					Float64("lon", loc.Longitude).
					Msg("Scheduled refresh failed")
			} else {
				log.Info().
					Float64("lat", loc.Latitude).
					Float64("lon", loc.Longitude).
					Int("hourly", len(bundle.Hourly)).
					Int("daily", len(bundle.Daily)).
					Str("tideStatus", bundle.TideStatus).
					Msg("Scheduled refresh completed")
			}

			if s.onRefresh != nil {
				s.onRefresh(loc, err)
			}
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
