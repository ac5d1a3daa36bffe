package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/internal/core"
)

func TestNewsAPIFetcher_EmptyKeyReturnsEmpty(t *testing.T) {
	f := NewNewsAPIFetcher("", 10, nil)
	signals := f.Fetch(context.Background(), "oil")
	assert.Empty(t, signals)
	assert.NotNil(t, signals)
}

func TestNewsAPIFetcher_MissingSourceNameDefaultsUnknown(t *testing.T) {
	f := NewNewsAPIFetcher("test-key", 10, nil)
	var body newsAPIResponse
	body.Articles = append(body.Articles, struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	}{Title: "headline"})

	source := body.Articles[0].Source.Name
	if source == "" {
		source = "unknown"
	}
	assert.Equal(t, "unknown", source)
	assert.Equal(t, 10, f.PageSize)
}

func TestFeedFetcher_ParsesRSS(t *testing.T) {
	const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Reuters Markets</title>
<item><title>Oil spikes</title><description>OPEC cuts output</description><link>https://example.com/1</link></item>
<item><title>Gold rallies</title><description>Safe haven demand</description><link>https://example.com/2</link></item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL, 10, nil)
	signals := f.Fetch(context.Background())
	require.Len(t, signals, 2)
	assert.Equal(t, "Reuters Markets", signals[0].Source)
	assert.Equal(t, "Oil spikes", signals[0].Title)
}

func TestFeedFetcher_LimitTruncates(t *testing.T) {
	const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Feed</title>
<item><title>one</title></item>
<item><title>two</title></item>
<item><title>three</title></item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL, 2, nil)
	signals := f.Fetch(context.Background())
	assert.Len(t, signals, 2)
}

func TestFeedFetcher_FailureReturnsEmpty(t *testing.T) {
	f := NewFeedFetcher("http://127.0.0.1:0/not-a-real-host", 10, nil)
	signals := f.Fetch(context.Background())
	assert.NotNil(t, signals)
	assert.Empty(t, signals)
}

func TestMatchesAsset(t *testing.T) {
	s := core.Signal{Title: "Bitcoin rallies", Description: "BTC up 10%"}
	assert.True(t, MatchesAsset(s, "bitcoin"))
	assert.True(t, MatchesAsset(s, "BTC"))
	assert.False(t, MatchesAsset(s, "ethereum"))
	assert.True(t, MatchesAsset(s, ""))
}
