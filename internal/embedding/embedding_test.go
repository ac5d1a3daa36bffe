package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int
	vec   []float64
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func TestCache_NoRedisStillComputes(t *testing.T) {
	fe := &fakeEmbedder{vec: []float64{1, 0, 0}}
	c := NewCache(fe, nil, 0, nil)

	vec, err := c.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, vec)
	assert.Equal(t, 1, fe.calls)

	// Without Redis every call recomputes.
	_, err = c.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, fe.calls)
}

func TestCache_PropagatesEmbedderError(t *testing.T) {
	fe := &fakeEmbedder{err: assert.AnError}
	c := NewCache(fe, nil, 0, nil)
	_, err := c.Embed(context.Background(), "text")
	assert.Error(t, err)
}

func TestCacheKey_TrimsAndHashesDeterministically(t *testing.T) {
	assert.Equal(t, cacheKey("hello"), cacheKey("  hello  "))
	assert.NotEqual(t, cacheKey("hello"), cacheKey("world"))
}

func TestEmbedBatch_EmbedsEachText(t *testing.T) {
	fe := &fakeEmbedder{vec: []float64{0, 1}}
	c := NewCache(fe, nil, 0, nil)
	out, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, 3, fe.calls)
}
