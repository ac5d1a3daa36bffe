// Package ingest implements the tiered admission coordinator: Tier-1
// fetchers race against a short deadline, and only escalate to the slower
// Tier-2 fetchers when Tier-1 confidence is insufficient.
package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"marketintel/internal/core"
	"marketintel/internal/fetch"
)

// Logger is the minimal logging surface the coordinator needs.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// Source is anything that can be raced for signals. Both NewsAPIFetcher and
// FeedFetcher are adapted to this shape by the constructors below.
type Source func(ctx context.Context) []core.Signal

// Tiers groups the Tier-1 (fast, high-trust) and Tier-2 (slow, fallback)
// source lists for one coordinator run.
type Tiers struct {
	Tier1 []Source
	Tier2 []Source
}

// Coordinator runs the admission algorithm described in §4.2: Tier-1 sources
// race a deadline; if enough of what lands by then is from trusted wires,
// Tier-2 is skipped entirely.
type Coordinator struct {
	Tier1Deadline  time.Duration
	ConfidenceGate float64
	MaxConcurrency int
	logger         Logger
}

// NewCoordinator builds a Coordinator. Zero-valued deadline/gate/concurrency
// fall back to the spec defaults (2s, 0.9, 8).
func NewCoordinator(deadline time.Duration, confidenceGate float64, logger Logger) *Coordinator {
	return NewCoordinatorWithConcurrency(deadline, confidenceGate, 0, logger)
}

// NewCoordinatorWithConcurrency is NewCoordinator plus an explicit cap on
// how many fetchers may run at once within a tier.
func NewCoordinatorWithConcurrency(deadline time.Duration, confidenceGate float64, maxConcurrency int, logger Logger) *Coordinator {
	if deadline <= 0 {
		deadline = 2 * time.Second
	}
	if confidenceGate <= 0 {
		confidenceGate = 0.9
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Coordinator{Tier1Deadline: deadline, ConfidenceGate: confidenceGate, MaxConcurrency: maxConcurrency, logger: logger}
}

type tierResult struct {
	signals []core.Signal
}

// Run executes the full tiered admission algorithm and returns the union of
// whatever signals were admitted.
func (c *Coordinator) Run(ctx context.Context, tiers Tiers) []core.Signal {
	tier1Ctx, cancelTier1 := context.WithCancel(ctx)
	defer cancelTier1()

	maxConcurrency := c.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	sem := make(chan struct{}, maxConcurrency)
	results := make(chan tierResult, len(tiers.Tier1))
	for _, src := range tiers.Tier1 {
		go func(s Source) {
			sem <- struct{}{}
			defer func() { <-sem }()
			// Always report a result, even after a recovered panic, so the
			// wait and drain loops below are never left waiting on it.
			var got []core.Signal
			defer func() { results <- tierResult{signals: got} }()
			defer c.recoverPanic("tier1 fetcher")
			got = s(tier1Ctx)
		}(src)
	}

	deadline := time.NewTimer(c.Tier1Deadline)
	defer deadline.Stop()

	var tier1Signals []core.Signal
	received := 0

waitLoop:
	for received < len(tiers.Tier1) {
		select {
		case r := <-results:
			tier1Signals = append(tier1Signals, r.signals...)
			received++
			if received == 1 {
				break waitLoop
			}
		case <-deadline.C:
			break waitLoop
		case <-ctx.Done():
			return tier1Signals
		}
	}

	confidence := tier1Confidence(tier1Signals)
	if len(tier1Signals) > 0 && confidence >= c.ConfidenceGate {
		cancelTier1()
		if c.logger != nil {
			c.logger.Info("ingest: tier1 fail-fast admission", "confidence", confidence, "count", len(tier1Signals))
		}
		return tier1Signals
	}

	// Drain any Tier-1 fetchers that finish while Tier-2 runs, guarded by a
	// mutex since Tier-2 runs concurrently and reads tier1Signals on return.
	var mu sync.Mutex
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for received < len(tiers.Tier1) {
			select {
			case r, ok := <-results:
				if !ok {
					return
				}
				mu.Lock()
				tier1Signals = append(tier1Signals, r.signals...)
				mu.Unlock()
				received++
			case <-ctx.Done():
				return
			}
		}
	}()

	tier2Signals := c.runTier2(ctx, tiers.Tier2)

	select {
	case <-drained:
	case <-ctx.Done():
	}
	mu.Lock()
	out := append(append([]core.Signal{}, tier1Signals...), tier2Signals...)
	mu.Unlock()
	return out
}

func (c *Coordinator) runTier2(ctx context.Context, tier2 []Source) []core.Signal {
	if len(tier2) == 0 {
		return nil
	}
	maxConcurrency := c.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	sem := make(chan struct{}, maxConcurrency)
	results := make(chan []core.Signal, len(tier2))
	for _, src := range tier2 {
		go func(s Source) {
			sem <- struct{}{}
			defer func() { <-sem }()
			var got []core.Signal
			defer func() { results <- got }()
			defer c.recoverPanic("tier2 fetcher")
			got = s(ctx)
		}(src)
	}

	var out []core.Signal
	for i := 0; i < len(tier2); i++ {
		select {
		case signals := <-results:
			out = append(out, signals...)
		case <-ctx.Done():
			return out
		}
	}
	return out
}

func (c *Coordinator) recoverPanic(stage string) {
	if r := recover(); r != nil && c.logger != nil {
		c.logger.Warn("ingest: fetcher panicked, contained", "stage", stage, "recovered", r)
	}
}

// tier1Confidence is the fraction of completed items whose lowercased
// source contains "reuters" or "bloomberg", clamped to [0,1].
func tier1Confidence(signals []core.Signal) float64 {
	if len(signals) == 0 {
		return 0
	}
	trusted := 0
	for _, s := range signals {
		src := strings.ToLower(s.Source)
		if strings.Contains(src, "reuters") || strings.Contains(src, "bloomberg") {
			trusted++
		}
	}
	confidence := float64(trusted) / float64(len(signals))
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// NewsAPISource adapts a NewsAPIFetcher into a Source bound to one query.
func NewsAPISource(f *fetch.NewsAPIFetcher, query string) Source {
	return func(ctx context.Context) []core.Signal {
		return f.Fetch(ctx, query)
	}
}

// FeedSource adapts a FeedFetcher into a Source.
func FeedSource(f *fetch.FeedFetcher) Source {
	return func(ctx context.Context) []core.Signal {
		return f.Fetch(ctx)
	}
}

// DefaultTier1Feeds is the feed part of the standard query path's default
// Tier-1 set: the high-trust Reuters/Bloomberg feeds that drive the
// fail-fast confidence gate in tier1Confidence. The News-API source is not
// in this list; the query command adds it alongside these feeds.
var DefaultTier1Feeds = []string{
	"https://www.reutersagency.com/feed/?best-topics=business-finance",
	"https://feeds.bloomberg.com/markets/news.rss",
}

// DefaultTier2Feeds is the standard query path's default Tier-2 fallback
// set (§4.2), only fetched when Tier-1 confidence misses the gate.
var DefaultTier2Feeds = []string{
	"https://finance.yahoo.com/news/rssindex",
	"https://www.investing.com/rss/news.rss",
}

// CryptoFeeds is the fixed list of feeds the crypto satellite pipeline
// polls, independent of the standard News-API/feed tier configuration.
var CryptoFeeds = []string{
	"https://cointelegraph.com/rss",
	"https://cryptoslate.com/feed/",
	"https://www.coindesk.com/arc/outboundfeeds/rss/",
	"https://en.bitcoinsistemi.com/feed/",
	"https://beincrypto.com/feed/",
}

// CryptoSource fetches one feed and filters its entries down to those
// matching asset by substring, as the crypto satellite pipeline does.
func CryptoSource(f *fetch.FeedFetcher, asset string) Source {
	return func(ctx context.Context) []core.Signal {
		all := f.Fetch(ctx)
		matched := make([]core.Signal, 0, len(all))
		for _, s := range all {
			if fetch.MatchesAsset(s, asset) {
				matched = append(matched, s)
			}
		}
		return matched
	}
}
