package tide

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shorecast/shorecast/internal/cache"
	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/models"
	"github.com/shorecast/shorecast/internal/secrets"
	"github.com/shorecast/shorecast/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	records map[string]*cache.TideRecord
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*cache.TideRecord)}
}

func (f *fakeCache) Get(_ context.Context, key string) (*cache.TideRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[key], nil
}

func (f *fakeCache) Save(_ context.Context, key string, record *cache.TideRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key] = record
	f.saves++
	return nil
}

type staticKeys struct {
	key string
	err error
}

func (s staticKeys) Resolve(context.Context) (string, error) {
	return s.key, s.err
}

type fakeHTTP struct {
	fn func(ctx context.Context, path string) (*client.Response, error)
}

func (f *fakeHTTP) Get(ctx context.Context, path string) (*client.Response, error) {
	return f.fn(ctx, path)
}

var testNow = time.Date(2025, 4, 6, 9, 0, 0, 0, time.UTC)

func newTestService(fn func(ctx context.Context, path string) (*client.Response, error)) (*Service, *fakeCache) {
	cfg := config.New()
	cfg.TideBaseURL = "https://tides.test/api/v3"
	cfg.ChunkPause = time.Millisecond

	fc := newFakeCache()
	s := NewService(&fakeHTTP{fn: fn}, staticKeys{key: "test-key"}, fc, cfg)
	s.now = func() time.Time { return testNow }
	return s, fc
}

func respond(resp providerResponse) (*client.Response, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &client.Response{StatusCode: http.StatusOK, Body: body}, nil
}

// requestKind classifies a provider request by its data-kind toggles.
func requestKind(t *testing.T, rawURL string) (combined, heightsOnly, extremesOnly bool, date string) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := u.Query()
	hasHeights := q.Has("heights")
	hasExtremes := q.Has("extremes")
	return hasHeights && hasExtremes, hasHeights && !hasExtremes, hasExtremes && !hasHeights, q.Get("date")
}

func TestGetTidesCombinedFirst(t *testing.T) {
	t.Parallel()

	var calls int64
	service, fc := newTestService(func(_ context.Context, path string) (*client.Response, error) {
		atomic.AddInt64(&calls, 1)
		combined, _, _, date := requestKind(t, path)
		assert.True(t, combined)
		assert.Equal(t, "2025-04-06", date)
		return respond(providerResponse{
			Status:    200,
			Copyright: "Tidal data retrieved from example.test",
			Heights: []providerHeight{
				{Date: "2025-04-06T00:00+10:00", Height: 0.8},
				{Date: "2025-04-06T01:00+10:00", Height: 1.1},
			},
			Extremes: []providerExtreme{
				{Date: "2025-04-06T02:10+10:00", Height: 1.9, Type: "High"},
				{Date: "2025-04-06T08:40+10:00", Height: 0.2, Type: "Low"},
			},
		})
	})

	data, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
	assert.Equal(t, "Tidal data retrieved from example.test", data.Attribution)
	require.Len(t, data.Heights, 2)
	assert.Equal(t, "2025-04-06T00:00", data.Heights[0].LocalTime)
	require.Len(t, data.Extremes, 1)
	assert.Equal(t, 1, fc.saves)
}

func TestGetTidesServedFromCache(t *testing.T) {
	t.Parallel()

	var calls int64
	service, fc := newTestService(func(context.Context, string) (*client.Response, error) {
		atomic.AddInt64(&calls, 1)
		return &client.Response{StatusCode: http.StatusInternalServerError}, nil
	})

	key := cache.CacheKey(-33.89, 151.28, testNow)
	fc.records[key] = &cache.TideRecord{
		LocationKey: "-33.890,151.280",
		Day:         "2025-04-06",
		Heights:     []models.TideSample{{LocalTime: "2025-04-06T00:00", HeightMeters: 0.8}},
		Attribution: "cached",
	}

	data, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.NoError(t, err)

	assert.EqualValues(t, 0, atomic.LoadInt64(&calls), "fresh cache must not hit the network")
	assert.Equal(t, "cached", data.Attribution)
}

func TestGetTidesCoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()

	var calls int64
	service, fc := newTestService(func(_ context.Context, _ string) (*client.Response, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return respond(providerResponse{
			Status:    200,
			Copyright: "shared",
			Heights:   []providerHeight{{Date: "2025-04-06T00:00+10:00", Height: 0.8}},
		})
	})

	const callers = 8
	results := make([]*models.TideData, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.GetTides(context.Background(), -33.89, 151.28)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "concurrent callers must share one fetch")
	assert.Equal(t, 1, fc.saves)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, "shared", results[i].Attribution)
	}
}

func TestGetTidesSurvivesInitiatorCancellation(t *testing.T) {
	t.Parallel()

	var calls int64
	service, fc := newTestService(func(ctx context.Context, _ string) (*client.Response, error) {
		atomic.AddInt64(&calls, 1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
		return respond(providerResponse{
			Status:    200,
			Copyright: "survivor",
			Heights:   []providerHeight{{Date: "2025-04-06T00:00+10:00", Height: 0.8}},
		})
	})

	firstCtx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = service.GetTides(firstCtx, -33.89, 151.28)
	}()

	// Let the first caller start the fetch, join it with a live context,
	// then cancel the initiator mid-flight.
	time.Sleep(20 * time.Millisecond)

	var (
		second    *models.TideData
		secondErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondErr = service.GetTides(context.Background(), -33.89, 151.28)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	require.NoError(t, secondErr)
	require.NotNil(t, second)
	assert.Equal(t, "survivor", second.Attribution)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
	assert.Equal(t, 1, fc.saves)
}

func TestChunkedFallbackPartialTolerance(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var extremesDates []string

	service, _ := newTestService(func(_ context.Context, path string) (*client.Response, error) {
		combined, heightsOnly, extremesOnly, date := requestKind(t, path)
		switch {
		case combined:
			return &client.Response{StatusCode: http.StatusServiceUnavailable}, nil
		case extremesOnly:
			mu.Lock()
			extremesDates = append(extremesDates, date)
			mu.Unlock()
			if date == "2025-04-09" {
				// Middle sub-window fails; its contribution is omitted.
				return &client.Response{StatusCode: http.StatusInternalServerError}, nil
			}
			return respond(providerResponse{
				Status: 200,
				Extremes: []providerExtreme{
					{Date: date + "T02:00+10:00", Height: 1.5, Type: "High"},
					{Date: date + "T08:00+10:00", Height: 0.2, Type: "Low"},
				},
			})
		case heightsOnly:
			return respond(providerResponse{
				Status:  200,
				Heights: []providerHeight{{Date: "2025-04-06T00:00+10:00", Height: 0.9}},
			})
		}
		return &client.Response{StatusCode: http.StatusBadRequest}, nil
	})

	data, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.NoError(t, err)

	// Sub-windows are issued in increasing date order.
	assert.Equal(t, []string{"2025-04-06", "2025-04-09", "2025-04-12"}, extremesDates)

	require.Len(t, data.Extremes, 2)
	assert.Equal(t, "2025-04-06", data.Extremes[0].Day)
	assert.Equal(t, "2025-04-12", data.Extremes[1].Day)
	require.Len(t, data.Heights, 1)
}

func TestChunkedFallbackTotalFailure(t *testing.T) {
	t.Parallel()

	service, fc := newTestService(func(context.Context, string) (*client.Response, error) {
		return &client.Response{StatusCode: http.StatusServiceUnavailable}, nil
	})

	_, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.ErrorIs(t, err, ErrNotAvailable)
	assert.Equal(t, 0, fc.saves, "total failure must not populate the cache")
}

func TestGetTidesMissingCredential(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.ChunkPause = time.Millisecond
	fc := newFakeCache()
	service := NewService(&fakeHTTP{fn: func(context.Context, string) (*client.Response, error) {
		return nil, fmt.Errorf("no network call expected without a credential")
	}}, staticKeys{err: secrets.ErrNoAPIKey}, fc, cfg)
	service.now = func() time.Time { return testNow }

	_, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.ErrorIs(t, err, secrets.ErrNoAPIKey)
	assert.Equal(t, "missing credential", CauseMessage(err))
	assert.Equal(t, 0, fc.saves)
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	// 72 hourly heights across three days and eight extremes (four highs,
	// four lows over two days), delivered by the combined request.
	var heights []providerHeight
	for day := 6; day <= 8; day++ {
		for hour := 0; hour < 24; hour++ {
			heights = append(heights, providerHeight{
				Date:   fmt.Sprintf("2025-04-%02dT%02d:00+10:00", day, hour),
				Height: float64(hour%12) * 0.1,
			})
		}
	}
	extremes := []providerExtreme{
		{Date: "2025-04-06T02:10+10:00", Height: 1.4, Type: "High"},
		{Date: "2025-04-06T08:20+10:00", Height: 0.4, Type: "Low"},
		{Date: "2025-04-06T14:30+10:00", Height: 1.8, Type: "High"},
		{Date: "2025-04-06T20:40+10:00", Height: 0.2, Type: "Low"},
		{Date: "2025-04-07T03:00+10:00", Height: 1.7, Type: "High"},
		{Date: "2025-04-07T09:10+10:00", Height: 0.5, Type: "Low"},
		{Date: "2025-04-07T15:20+10:00", Height: 1.5, Type: "High"},
		{Date: "2025-04-07T21:30+10:00", Height: 0.3, Type: "Low"},
	}

	service, _ := newTestService(func(_ context.Context, _ string) (*client.Response, error) {
		return respond(providerResponse{
			Status:    200,
			Copyright: "example attribution",
			Heights:   heights,
			Extremes:  extremes,
		})
	})

	data, err := service.GetTides(context.Background(), -33.89, 151.28)
	require.NoError(t, err)

	require.Len(t, data.Heights, 72)
	for i, sample := range data.Heights {
		assert.Equal(t, NormalizeTimestamp(heights[i].Date), sample.LocalTime, "original order preserved")
	}

	require.Len(t, data.Extremes, 2)
	for _, day := range data.Extremes {
		require.Len(t, day.Highs, 2)
		require.Len(t, day.Lows, 2)
		assert.GreaterOrEqual(t, day.Highs[0].HeightMeters, day.Highs[1].HeightMeters)
		assert.LessOrEqual(t, day.Lows[0].HeightMeters, day.Lows[1].HeightMeters)
	}
	assert.Equal(t, "2025-04-06", data.Extremes[0].Day)
	assert.Equal(t, 1.8, data.Extremes[0].Highs[0].HeightMeters)
	assert.Equal(t, 0.2, data.Extremes[0].Lows[0].HeightMeters)
	assert.Equal(t, "2025-04-07", data.Extremes[1].Day)
}
