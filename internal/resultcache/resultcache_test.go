package resultcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_NormalizesCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, cacheKey("Oil  "), cacheKey("oil"))
	assert.NotEqual(t, cacheKey("oil"), cacheKey("gas"))
}

func TestCache_NilRedisAlwaysMisses(t *testing.T) {
	c := NewCache(nil, 0, nil)
	var out map[string]any
	assert.False(t, c.Get(context.Background(), "oil", &out))
	// Set must not panic with a nil client.
	c.Set(context.Background(), "oil", map[string]string{"a": "b"})
}

func TestNewCache_DefaultsTTL(t *testing.T) {
	c := NewCache(nil, 0, nil)
	assert.Equal(t, defaultTTL, c.ttl)
	c2 := NewCache(nil, 5*time.Second, nil)
	assert.Equal(t, 5*time.Second, c2.ttl)
}
