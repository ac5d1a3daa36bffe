// Package llmsummary renders a short human-readable narrative summary of an
// arbitration outcome, falling back to a local extractive summary when the
// LLM is unavailable or fails.
package llmsummary

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const promptTemplate = `You are a market intelligence analyst. In two sentences, summarize the
dominant narrative and the degree of cross-source agreement or conflict for
the following query and winning headline.

Query: %s
Winning headline: %s
Conflict intensity (0-1): %.2f
Average sentiment (-1 to 1): %.2f
Dominant sources: %s`

// Generator produces free text from a prompt. GenAIGenerator in
// genai.go is the production implementation; tests use a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Logger is the narrow logging surface this package needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Summarizer wraps a Generator with a deterministic fallback.
type Summarizer struct {
	gen    Generator
	logger Logger
}

func NewSummarizer(gen Generator, logger Logger) *Summarizer {
	return &Summarizer{gen: gen, logger: logger}
}

// Summarize asks the LLM for a narrative summary; on any failure (including
// a nil Generator) it falls back to FallbackSummary so the pipeline always
// returns something.
func (s *Summarizer) Summarize(ctx context.Context, query, winningHeadline string, conflict, avgSentiment float64, sources []string) string {
	if s.gen != nil {
		prompt := fmt.Sprintf(promptTemplate, query, winningHeadline, conflict, avgSentiment, strings.Join(topSources(sources, 3), ", "))
		text, err := s.gen.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		s.warn("llmsummary: generation failed, using fallback", "error", err)
	}
	return FallbackSummary(query, winningHeadline, conflict, avgSentiment)
}

func (s *Summarizer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// FallbackSummary builds a template sentence with no LLM call, used both as
// the failure path and whenever no Generator is configured at all.
func FallbackSummary(query, winningHeadline string, conflict, avgSentiment float64) string {
	agreement := "broad agreement across sources"
	switch {
	case conflict > 0.7:
		agreement = "heavy cross-source conflict"
	case conflict > 0.4:
		agreement = "moderate cross-source conflict"
	}
	tone := "neutral"
	switch {
	case avgSentiment > 0.3:
		tone = "positive"
	case avgSentiment < -0.3:
		tone = "negative"
	}
	return fmt.Sprintf("%s: %s. Sentiment around %q reads %s with %s.", query, winningHeadline, query, tone, agreement)
}

// topSources returns the n most frequent distinct sources, most frequent
// first, for inclusion in the prompt.
func topSources(sources []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range sources {
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}
