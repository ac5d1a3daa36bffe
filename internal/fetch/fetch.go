// Package fetch implements the two signal-fetcher kinds: a News-API client
// and a syndication-feed client. Both are independent, idempotent and safe
// to cancel via context.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"marketintel/internal/core"
)

const defaultTimeout = 10 * time.Second

// NewsAPIFetcher issues one GET against NewsAPI.org's /everything endpoint.
type NewsAPIFetcher struct {
	APIKey     string
	PageSize   int
	HTTPClient *http.Client
	logger     Logger
}

// Logger is the minimal logging surface fetchers need; satisfied by
// *slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// NewNewsAPIFetcher builds a fetcher. apiKey may be empty, in which case
// Fetch always returns an empty list without making a request.
func NewNewsAPIFetcher(apiKey string, pageSize int, logger Logger) *NewsAPIFetcher {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NewsAPIFetcher{
		APIKey:     apiKey,
		PageSize:   pageSize,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch retrieves up to PageSize signals matching query. On any failure it
// logs at warn and returns an empty, non-nil list.
func (f *NewsAPIFetcher) Fetch(ctx context.Context, query string) []core.Signal {
	if f.APIKey == "" {
		return []core.Signal{}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	endpoint := "https://newsapi.org/v2/everything?" + url.Values{
		"q":        {query},
		"language": {"en"},
		"pageSize": {fmt.Sprintf("%d", f.PageSize)},
		"sortBy":   {"publishedAt"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		f.warn("newsapi: building request", err)
		return []core.Signal{}
	}
	req.Header.Set("X-Api-Key", f.APIKey)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		f.warn("newsapi: request failed", err)
		return []core.Signal{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.warn("newsapi: non-200 response", fmt.Errorf("status %d", resp.StatusCode))
		return []core.Signal{}
	}

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		f.warn("newsapi: decoding response", err)
		return []core.Signal{}
	}

	signals := make([]core.Signal, 0, len(body.Articles))
	for _, a := range body.Articles {
		source := a.Source.Name
		if source == "" {
			source = "unknown"
		}
		signals = append(signals, core.Signal{
			Source:      source,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return signals
}

func (f *NewsAPIFetcher) warn(msg string, err error) {
	if f.logger != nil {
		f.logger.Warn(msg, "error", err)
	}
}

// FeedFetcher retrieves entries from one RSS/Atom feed URL.
type FeedFetcher struct {
	URL        string
	Limit      int
	HTTPClient *http.Client
	logger     Logger
}

// NewFeedFetcher builds a fetcher for a single feed URL.
func NewFeedFetcher(feedURL string, limit int, logger Logger) *FeedFetcher {
	if limit <= 0 {
		limit = 10
	}
	return &FeedFetcher{
		URL:        feedURL,
		Limit:      limit,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Fetch parses the feed and emits up to Limit signals. On any failure it
// logs at warn and returns an empty, non-nil list.
func (f *FeedFetcher) Fetch(ctx context.Context) []core.Signal {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		f.warn("feed: building request", err)
		return []core.Signal{}
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		f.warn("feed: request failed", err)
		return []core.Signal{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.warn("feed: non-200 response", fmt.Errorf("status %d", resp.StatusCode))
		return []core.Signal{}
	}

	parser := gofeed.NewParser()
	parsed, err := parser.Parse(resp.Body)
	if err != nil {
		f.warn("feed: parsing failed", err)
		return []core.Signal{}
	}

	source := parsed.Title
	if source == "" {
		source = "rss"
	}

	signals := make([]core.Signal, 0, f.Limit)
	for i, item := range parsed.Items {
		if i >= f.Limit {
			break
		}
		signals = append(signals, core.Signal{
			Source:      source,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			PublishedAt: item.Published,
		})
	}
	return signals
}

func (f *FeedFetcher) warn(msg string, err error) {
	if f.logger != nil {
		f.logger.Warn(msg, "error", err)
	}
}

// MatchesAsset reports whether query appears, case-insensitively, as a
// substring of the signal's title or description. Used by the crypto
// ingest variant to filter fixed feeds down to a single asset.
func MatchesAsset(s core.Signal, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Description), q)
}
