// Package resultcache memoizes a full orchestrator run behind the
// normalized query string, the same way the embedding cache memoizes a
// single vector (C10).
package resultcache

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

const defaultTTL = 600 * time.Second

// Logger is the narrow slice of the structured logger this package needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Cache stores and retrieves full analysis results under a key derived from
// the lowercased, trimmed query string.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger Logger
}

// NewCache builds a Cache. rdb may be nil, in which case Get always misses
// and Set is a no-op — the orchestrator runs uncached rather than failing.
func NewCache(rdb *redis.Client, ttl time.Duration, logger Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get looks up a previously cached result for query, unmarshaling into out.
// Returns false on miss or on any Redis/JSON failure — callers should treat
// a cache failure exactly like a miss.
func (c *Cache) Get(ctx context.Context, query string, out any) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.warn("resultcache: decoding cached result failed", "error", err)
		return false
	}
	return true
}

// Set stores result under query's cache key with the configured TTL.
// Failures are logged and swallowed: a cache-store failure must never fail
// the run that produced the result.
func (c *Cache) Set(ctx context.Context, query string, result any) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.warn("resultcache: encoding result failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(query), raw, c.ttl).Err(); err != nil {
		c.warn("resultcache: storing result failed", "error", err)
	}
}

func (c *Cache) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// cacheKey normalizes query the same way the Python original did
// (lowercase, trimmed) before hashing, so "Oil " and "oil" collide.
func cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("horaculo:analysis:%s", hex.EncodeToString(sum[:]))
}
