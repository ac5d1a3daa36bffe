package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        App        `mapstructure:"app"`
	NewsAPI    NewsAPI    `mapstructure:"newsapi"`
	LLM        LLM        `mapstructure:"llm"`
	KV         KV         `mapstructure:"kv"`
	Database   Database   `mapstructure:"database"`
	Alerts     Alerts     `mapstructure:"alerts"`
	Ingest     Ingest     `mapstructure:"ingest"`
	Pipeline   Pipeline   `mapstructure:"pipeline"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// NewsAPI holds the NewsAPI.org fetcher configuration.
type NewsAPI struct {
	APIKey   string `mapstructure:"api_key"`
	PageSize int    `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LLM holds the embedding/summarization capability configuration.
type LLM struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	EmbeddingModel    string        `mapstructure:"embedding_model"`
	EmbeddingDimensions int32       `mapstructure:"embedding_dimensions"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// KV holds the Redis connection used by the embedding and result caches.
type KV struct {
	URL string `mapstructure:"url"`
}

// Database selects the reputation-memory backend. An empty ConnectionString
// selects the embedded SQLite file store rooted at App.DataDir; a non-empty
// one selects the networked Postgres backend.
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
	MaxConnections   int    `mapstructure:"max_connections"`
}

// Alerts holds outbound notifier credentials.
type Alerts struct {
	TelegramBotToken string        `mapstructure:"telegram_bot_token"`
	TelegramChatID   string        `mapstructure:"telegram_chat_id"`
	SlackWebhookURL  string        `mapstructure:"slack_webhook_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// Ingest holds the tiered ingest coordinator's timing and admission policy.
type Ingest struct {
	Tier1Deadline       time.Duration `mapstructure:"tier1_deadline"`
	Tier1ConfidenceGate float64       `mapstructure:"tier1_confidence_gate"`
	MaxConcurrency      int           `mapstructure:"max_concurrency"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
}

// Pipeline holds the numeric thresholds and cache TTLs shared across the
// dedup, clustering and caching stages.
type Pipeline struct {
	DedupThreshold      float64       `mapstructure:"dedup_threshold"`
	CopyThreshold       float64       `mapstructure:"copy_threshold"`
	CryptoCopyThreshold float64       `mapstructure:"crypto_copy_threshold"`
	EmbeddingCacheTTL   time.Duration `mapstructure:"embedding_cache_ttl"`
	ResultCacheTTL      time.Duration `mapstructure:"result_cache_ttl"`
	MaxClusters         int           `mapstructure:"max_clusters"`
	ClusterSeed         int64         `mapstructure:"cluster_seed"`
}

// Load reads .env then the environment into a Config, applying defaults for
// anything left unset. configFile is optional; when empty only environment
// variables and defaults are used.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load(".env")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".marketintel-data")

	viper.SetDefault("newsapi.page_size", 50)
	viper.SetDefault("newsapi.timeout", "10s")

	viper.SetDefault("llm.model", "gemini-flash-lite-latest")
	viper.SetDefault("llm.embedding_model", "gemini-embedding-001")
	viper.SetDefault("llm.embedding_dimensions", 768)
	viper.SetDefault("llm.timeout", "30s")

	viper.SetDefault("kv.url", "redis://localhost:6379/0")

	viper.SetDefault("database.max_connections", 10)

	viper.SetDefault("alerts.timeout", "10s")

	viper.SetDefault("ingest.tier1_deadline", "2s")
	viper.SetDefault("ingest.tier1_confidence_gate", 0.9)
	viper.SetDefault("ingest.max_concurrency", 8)
	viper.SetDefault("ingest.fetch_timeout", "10s")

	viper.SetDefault("pipeline.dedup_threshold", 0.92)
	viper.SetDefault("pipeline.copy_threshold", 0.92)
	viper.SetDefault("pipeline.crypto_copy_threshold", 0.82)
	viper.SetDefault("pipeline.embedding_cache_ttl", (7 * 24 * time.Hour).String())
	viper.SetDefault("pipeline.result_cache_ttl", "600s")
	viper.SetDefault("pipeline.max_clusters", 4)
	viper.SetDefault("pipeline.cluster_seed", 42)
}
