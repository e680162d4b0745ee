package tide

import (
	"context"

	"github.com/shorecast/shorecast/internal/cache"
	"github.com/shorecast/shorecast/internal/models"
)

// Provider is the tide subsystem as its consumers see it: given a location,
// produce normalized tide data.
type Provider interface {
	GetTides(ctx context.Context, lat, lon float64) (*models.TideData, error)
}

// CacheProvider is the read-through cache the service consults before and
// after fetching. Get returns nil (no error) on miss or staleness.
type CacheProvider interface {
	Get(ctx context.Context, key string) (*cache.TideRecord, error)
	Save(ctx context.Context, key string, record *cache.TideRecord) error
}

// KeyResolver resolves the provider API credential for one fetch call.
type KeyResolver interface {
	Resolve(ctx context.Context) (string, error)
}
