// Package app wires the configuration-driven capability handles (cache,
// reputation store, embedder, notifier) into a single Orchestrator, the way
// a cmd entrypoint would otherwise have to do inline.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"marketintel/internal/alerts"
	"marketintel/internal/config"
	"marketintel/internal/embedding"
	"marketintel/internal/fetch"
	"marketintel/internal/ingest"
	"marketintel/internal/llmsummary"
	"marketintel/internal/logger"
	"marketintel/internal/orchestrator"
	"marketintel/internal/reputation"
	"marketintel/internal/resultcache"
	"marketintel/internal/scoring"
)

// App bundles the orchestrator with the fetchers used to build per-query
// Tiers, since the fetchers themselves are cheap, stateless, and reused
// across requests.
type App struct {
	Orchestrator *orchestrator.Orchestrator
	NewsAPI      *fetch.NewsAPIFetcher
	Tier1Feeds   []*fetch.FeedFetcher
	Tier2Feeds   []*fetch.FeedFetcher
	CryptoFeeds  []*fetch.FeedFetcher

	cfg *config.Config
}

// New builds an App from cfg. The reputation backend is selected once here:
// a non-empty Database.ConnectionString selects Postgres, otherwise the
// embedded SQLite file store rooted at App.DataDir.
func New(cfg *config.Config) (*App, error) {
	var repo reputation.Store
	var err error
	if cfg.Database.ConnectionString != "" {
		repo, err = reputation.NewPostgresStore(cfg.Database.ConnectionString)
	} else {
		repo, err = reputation.NewSQLiteStore(cfg.App.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("app: building reputation store: %w", err)
	}

	var rdb *redis.Client
	if cfg.KV.URL != "" {
		opts, err := redis.ParseURL(cfg.KV.URL)
		if err != nil {
			return nil, fmt.Errorf("app: parsing kv url: %w", err)
		}
		rdb = redis.NewClient(opts)
	}

	log := logger.Adapter{}

	var embedder embedding.Embedder
	if cfg.LLM.APIKey != "" {
		embedder = embedding.NewGenAIEmbedder(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDimensions)
	} else {
		embedder = noopEmbedder{}
	}
	embeddingCache := embedding.NewCache(embedder, rdb, cfg.Pipeline.EmbeddingCacheTTL, log)

	var summarizer *llmsummary.Summarizer
	if cfg.LLM.APIKey != "" {
		summarizer = llmsummary.NewSummarizer(llmsummary.NewGenAIGenerator(cfg.LLM.APIKey, cfg.LLM.Model), log)
	}

	var notifier alerts.Notifier
	switch {
	case cfg.Alerts.TelegramBotToken != "" && cfg.Alerts.TelegramChatID != "":
		notifier = alerts.NewTelegramNotifier(cfg.Alerts.TelegramBotToken, cfg.Alerts.TelegramChatID, log)
	case cfg.Alerts.SlackWebhookURL != "":
		notifier = alerts.NewSlackNotifier(cfg.Alerts.SlackWebhookURL, log)
	}

	coordinator := ingest.NewCoordinatorWithConcurrency(cfg.Ingest.Tier1Deadline, cfg.Ingest.Tier1ConfidenceGate, cfg.Ingest.MaxConcurrency, log)
	resultCache := resultcache.NewCache(rdb, cfg.Pipeline.ResultCacheTTL, log)

	orc := &orchestrator.Orchestrator{
		Coordinator:         coordinator,
		Embedder:            embeddingCache,
		ResultCache:         resultCache,
		Reputation:          repo,
		Sentiment:           scoring.RuleBasedSentiment{},
		Summarizer:          summarizer,
		Notifier:            notifier,
		DedupThreshold:      cfg.Pipeline.DedupThreshold,
		CopyThreshold:       cfg.Pipeline.CopyThreshold,
		CryptoCopyThreshold: cfg.Pipeline.CryptoCopyThreshold,
		ClusterSeed:         cfg.Pipeline.ClusterSeed,
		MaxClusters:         cfg.Pipeline.MaxClusters,
		Logger:              log,
	}

	newsAPI := fetch.NewNewsAPIFetcher(cfg.NewsAPI.APIKey, cfg.NewsAPI.PageSize, log)
	newsAPI.HTTPClient = httpClientWithTimeout(cfg.NewsAPI.Timeout)

	cryptoFeeds := buildFeedFetchers(ingest.CryptoFeeds, cfg.Ingest.FetchTimeout, log)
	tier1Feeds := buildFeedFetchers(ingest.DefaultTier1Feeds, cfg.Ingest.FetchTimeout, log)
	tier2Feeds := buildFeedFetchers(ingest.DefaultTier2Feeds, cfg.Ingest.FetchTimeout, log)

	return &App{
		Orchestrator: orc,
		NewsAPI:      newsAPI,
		Tier1Feeds:   tier1Feeds,
		Tier2Feeds:   tier2Feeds,
		CryptoFeeds:  cryptoFeeds,
		cfg:          cfg,
	}, nil
}

func buildFeedFetchers(urls []string, timeout time.Duration, log logger.Adapter) []*fetch.FeedFetcher {
	feeds := make([]*fetch.FeedFetcher, 0, len(urls))
	for _, u := range urls {
		ff := fetch.NewFeedFetcher(u, 20, log)
		ff.HTTPClient = httpClientWithTimeout(timeout)
		feeds = append(feeds, ff)
	}
	return feeds
}

// noopEmbedder is used when no LLM API key is configured: embeddings come
// back as zero vectors, which still lets dedup/clustering/arbitration run
// rather than failing the request. Cosine similarity of a zero vector is 0,
// so every item reads as unrelated to every other: dedup drops nothing and
// arbitration finds no copies.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return make([]float64, 8), nil
}

func httpClientWithTimeout(d time.Duration) *http.Client {
	if d <= 0 {
		d = 10 * time.Second
	}
	return &http.Client{Timeout: d}
}
