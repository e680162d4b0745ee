package tide

import (
	"fmt"
	"net/url"
	"time"
)

// RequestBuilder constructs provider query URLs against the single REST
// endpoint. Local-time mode, the LAT vertical datum, and metric units are
// fixed; the caller chooses the date window and which data kinds to request.
type RequestBuilder struct {
	baseURL string
}

func NewRequestBuilder(baseURL string) *RequestBuilder {
	return &RequestBuilder{baseURL: baseURL}
}

// Build returns the query URL for a window of days starting at start.
// Heights and extremes are independent toggles; days must already respect
// the provider's per-call cap (see the chunking logic in Service).
func (b *RequestBuilder) Build(lat, lon float64, start time.Time, days int, includeHeights, includeExtremes bool, apiKey string) string {
	params := url.Values{}
	if includeHeights {
		params.Set("heights", "")
	}
	if includeExtremes {
		params.Set("extremes", "")
	}
	params.Set("lat", fmt.Sprintf("%.4f", lat))
	params.Set("lon", fmt.Sprintf("%.4f", lon))
	params.Set("date", start.Format("2006-01-02"))
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("datum", "LAT")
	params.Set("localtime", "")
	params.Set("key", apiKey)

	return fmt.Sprintf("%s?%s", b.baseURL, params.Encode())
}
