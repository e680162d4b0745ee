package tide

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/cache"
	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/models"
	"github.com/shorecast/shorecast/pkg/http/client"
	"golang.org/x/sync/singleflight"
)

// Service fetches tide data for a coordinate, serving from the short-TTL
// cache when fresh and coalescing concurrent identical requests into a
// single upstream operation.
type Service struct {
	HTTPClient client.Interface
	Builder    *RequestBuilder
	Keys       KeyResolver
	Cache      CacheProvider

	windowDays int
	heightDays int
	chunkDays  int
	chunkPause time.Duration

	group singleflight.Group
	now   func() time.Time
}

func NewService(httpClient client.Interface, keys KeyResolver, tideCache CacheProvider, cfg *config.Config) *Service {
	return &Service{
		HTTPClient: httpClient,
		Builder:    NewRequestBuilder(cfg.TideBaseURL),
		Keys:       keys,
		Cache:      tideCache,
		windowDays: cfg.TideWindowDays,
		heightDays: cfg.HeightDays,
		chunkDays:  cfg.ChunkDays,
		chunkPause: cfg.ChunkPause,
		now:        time.Now,
	}
}

// GetTides returns normalized tide data for the location, fetching at most
// once per rounded-coordinate/day key concurrently. A fresh cache entry is
// returned without any network activity.
func (s *Service) GetTides(ctx context.Context, lat, lon float64) (*models.TideData, error) {
	day := s.now()
	key := cache.CacheKey(lat, lon, day)

	if record, err := s.Cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if record != nil {
		log.Debug().Str("key", key).Msg("Cache HIT for tide data")
		return recordToData(record), nil
	}

	// Concurrent callers for the same key attach to one in-flight fetch;
	// the handle is dropped when it completes, success or failure.
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// The shared fetch is detached from whichever caller started it, so
		// one caller cancelling does not fail the coalesced others. The HTTP
		// client's own timeouts still bound the work.
		fctx := context.WithoutCancel(ctx)

		if record, cacheErr := s.Cache.Get(fctx, key); cacheErr == nil && record != nil {
			return record, nil
		}

		apiKey, keyErr := s.Keys.Resolve(fctx)
		if keyErr != nil {
			return nil, keyErr
		}

		data, fetchErr := s.fetchWindow(fctx, lat, lon, apiKey)
		if fetchErr != nil {
			return nil, fetchErr
		}

		record := &cache.TideRecord{
			LocationKey: fmt.Sprintf("%.3f,%.3f", lat, lon),
			Day:         day.Format("2006-01-02"),
			Heights:     data.Heights,
			Extremes:    data.Extremes,
			Attribution: data.Attribution,
		}
		if saveErr := s.Cache.Save(fctx, key, record); saveErr != nil {
			log.Warn().Err(saveErr).Str("key", key).Msg("Cache write failed")
		}
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("key", key).Msg("Joined in-flight tide fetch")
	}

	return recordToData(v.(*cache.TideRecord)), nil
}

// fetchWindow satisfies the full window: one combined call first, and on
// failure a chunked extremes fallback plus a near-term heights request.
func (s *Service) fetchWindow(ctx context.Context, lat, lon float64, apiKey string) (*models.TideData, error) {
	start := startOfDay(s.now())

	resp, err := s.fetchChunk(ctx, lat, lon, start, s.windowDays, true, true, apiKey)
	if err == nil {
		heights, extremes := normalize(resp.Heights, resp.Extremes)
		return &models.TideData{
			Heights:     heights,
			Extremes:    extremes,
			Attribution: resp.Copyright,
		}, nil
	}
	log.Debug().Err(err).Msg("Combined tide request failed, falling back to chunked requests")

	var (
		rawHeights  []providerHeight
		rawExtremes []providerExtreme
		attribution string
		succeeded   int
	)

	// Extremes sub-windows, issued sequentially in increasing date order
	// with a pause between requests to respect provider rate limits. A
	// failed sub-window contributes nothing; it does not abort the rest.
	for offset := 0; offset < s.windowDays; offset += s.chunkDays {
		if offset > 0 {
			if pauseErr := pause(ctx, s.chunkPause); pauseErr != nil {
				return nil, pauseErr
			}
		}

		days := s.chunkDays
		if remaining := s.windowDays - offset; remaining < days {
			days = remaining
		}

		chunk, chunkErr := s.fetchChunk(ctx, lat, lon, start.AddDate(0, 0, offset), days, false, true, apiKey)
		if chunkErr != nil {
			log.Warn().Err(chunkErr).Int("offset_days", offset).Msg("Extremes chunk failed, omitting")
			continue
		}
		rawExtremes = append(rawExtremes, chunk.Extremes...)
		if chunk.Copyright != "" {
			attribution = chunk.Copyright
		}
		succeeded++
	}

	// Heights are only needed for near-term display, so one short window.
	if pauseErr := pause(ctx, s.chunkPause); pauseErr != nil {
		return nil, pauseErr
	}
	heightsResp, heightsErr := s.fetchChunk(ctx, lat, lon, start, s.heightDays, true, false, apiKey)
	if heightsErr != nil {
		log.Warn().Err(heightsErr).Msg("Heights request failed, omitting")
	} else {
		rawHeights = heightsResp.Heights
		if heightsResp.Copyright != "" {
			attribution = heightsResp.Copyright
		}
		succeeded++
	}

	if succeeded == 0 {
		return nil, ErrNotAvailable
	}

	heights, extremes := normalize(rawHeights, rawExtremes)
	return &models.TideData{
		Heights:     heights,
		Extremes:    extremes,
		Attribution: attribution,
	}, nil
}

// fetchChunk issues one provider request and decodes it. Transport failures
// surface after the client's retries; non-200 statuses are mapped to
// HTTPError for the caller to tolerate or propagate.
func (s *Service) fetchChunk(ctx context.Context, lat, lon float64, start time.Time, days int, includeHeights, includeExtremes bool, apiKey string) (*providerResponse, error) {
	url := s.Builder.Build(lat, lon, start, days, includeHeights, includeExtremes, apiKey)

	resp, err := s.HTTPClient.Get(ctx, url)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	return decodeResponse(resp.Body)
}

func recordToData(record *cache.TideRecord) *models.TideData {
	return &models.TideData{
		Heights:     record.Heights,
		Extremes:    record.Extremes,
		Attribution: record.Attribution,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
