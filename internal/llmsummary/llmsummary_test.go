package llmsummary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

func TestSummarize_UsesGeneratorOutputOnSuccess(t *testing.T) {
	s := NewSummarizer(fakeGenerator{text: "a tidy narrative"}, nil)
	got := s.Summarize(context.Background(), "oil", "Oil Surges", 0.2, 0.5, []string{"reuters"})
	assert.Equal(t, "a tidy narrative", got)
}

func TestSummarize_FallsBackOnGeneratorError(t *testing.T) {
	s := NewSummarizer(fakeGenerator{err: errors.New("boom")}, nil)
	got := s.Summarize(context.Background(), "oil", "Oil Surges", 0.2, 0.5, []string{"reuters"})
	assert.Contains(t, got, "oil")
}

func TestSummarize_NilGeneratorUsesFallback(t *testing.T) {
	s := NewSummarizer(nil, nil)
	got := s.Summarize(context.Background(), "oil", "Oil Surges", 0.8, -0.5, []string{"reuters"})
	assert.Contains(t, got, "conflict")
}

func TestFallbackSummary_ReflectsConflictAndSentimentBands(t *testing.T) {
	high := FallbackSummary("oil", "Oil Surges", 0.9, 0.6)
	assert.Contains(t, high, "heavy cross-source conflict")
	assert.Contains(t, high, "positive")

	low := FallbackSummary("oil", "Oil Surges", 0.1, -0.6)
	assert.Contains(t, low, "broad agreement")
	assert.Contains(t, low, "negative")
}

func TestTopSources_OrdersByFrequency(t *testing.T) {
	got := topSources([]string{"a", "b", "a", "c", "a", "b"}, 2)
	assert.Equal(t, []string{"a", "b"}, got)
}
