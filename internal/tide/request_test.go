package tide

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBuilderBuild(t *testing.T) {
	t.Parallel()

	builder := NewRequestBuilder("https://tides.test/api/v3")
	start := time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC)

	raw := builder.Build(-33.8908, 151.2743, start, 7, true, true, "secret-key")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "tides.test", u.Host)
	assert.Equal(t, "-33.8908", q.Get("lat"))
	assert.Equal(t, "151.2743", q.Get("lon"))
	assert.Equal(t, "2025-04-06", q.Get("date"))
	assert.Equal(t, "7", q.Get("days"))
	assert.Equal(t, "LAT", q.Get("datum"))
	assert.Equal(t, "secret-key", q.Get("key"))
	assert.True(t, q.Has("heights"))
	assert.True(t, q.Has("extremes"))
	assert.True(t, q.Has("localtime"))
}

func TestRequestBuilderToggles(t *testing.T) {
	t.Parallel()

	builder := NewRequestBuilder("https://tides.test/api/v3")
	start := time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC)

	heightsOnly, err := url.Parse(builder.Build(0, 0, start, 3, true, false, "k"))
	require.NoError(t, err)
	assert.True(t, heightsOnly.Query().Has("heights"))
	assert.False(t, heightsOnly.Query().Has("extremes"))

	extremesOnly, err := url.Parse(builder.Build(0, 0, start, 3, false, true, "k"))
	require.NoError(t, err)
	assert.False(t, extremesOnly.Query().Has("heights"))
	assert.True(t, extremesOnly.Query().Has("extremes"))
}

func TestRequestBuilderRoundsCoordinates(t *testing.T) {
	t.Parallel()

	builder := NewRequestBuilder("https://tides.test/api/v3")
	start := time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC)

	u, err := url.Parse(builder.Build(47.602938472, -122.333529184, start, 3, true, true, "k"))
	require.NoError(t, err)
	assert.Equal(t, "47.6029", u.Query().Get("lat"))
	assert.Equal(t, "-122.3335", u.Query().Get("lon"))
}
