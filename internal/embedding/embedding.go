// Package embedding provides the Embedder capability and a Redis-backed
// cache that memoizes vectors per normalized text.
package embedding

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Embedder produces a unit-L2 vector for a text. Implementations must be
// deterministic and idempotent.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Logger is the minimal logging surface the cache needs.
type Logger interface {
	Warn(msg string, args ...any)
}

const cacheTTL = 7 * 24 * time.Hour

// Cache wraps an Embedder with a Redis-backed memo keyed on the trimmed
// text's MD5 hex digest. Cache errors are non-fatal: a store failure is
// logged and the freshly computed vector is still returned.
type Cache struct {
	embedder Embedder
	rdb      *redis.Client
	ttl      time.Duration
	logger   Logger
}

// NewCache builds a Cache. ttl<=0 uses the spec default of 7 days.
func NewCache(embedder Embedder, rdb *redis.Client, ttl time.Duration, logger Logger) *Cache {
	if ttl <= 0 {
		ttl = cacheTTL
	}
	return &Cache{embedder: embedder, rdb: rdb, ttl: ttl, logger: logger}
}

// Embed returns the cached vector for text if present, otherwise computes
// it via the wrapped Embedder and stores it for next time.
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var vec []float64
			if jsonErr := json.Unmarshal([]byte(raw), &vec); jsonErr == nil {
				return vec, nil
			}
		} else if err != redis.Nil {
			c.warn("embedding cache: get failed", err)
		}
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(vec); err == nil {
			if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.warn("embedding cache: set failed", err)
			}
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently through the cache, preserving
// order. A single failure aborts the batch.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (c *Cache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "error", err)
	}
}

// cacheKey matches the original implementation's key shape exactly:
// "emb:" + md5-hex of the trimmed text.
func cacheKey(text string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(text)))
	return "emb:" + hex.EncodeToString(sum[:])
}
