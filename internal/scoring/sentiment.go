// Package scoring computes the bounded per-item and per-batch scalars that
// feed arbitration and classification: sentiment, source credibility,
// coordination, psychology and hard-data extraction.
package scoring

import "strings"

const maxSentimentChars = 512

// SentimentClassifier scores a batch of texts, one [-1,1] value per text,
// in the same order. Implementations must never block the pipeline: on
// failure they should return zeroed scores of the same length rather than
// an error, matching the external capability's fallback contract.
type SentimentClassifier interface {
	BatchScore(texts []string) []float64
}

// RuleBasedSentiment is a keyword-weighted lexicon classifier. It is the
// SentimentClassifier that internal/app wires into the orchestrator; no
// model-backed classifier exists in this repository.
type RuleBasedSentiment struct{}

var positiveKeywords = map[string]float64{
	"excellent": 1.0, "amazing": 0.9, "outstanding": 0.9, "fantastic": 0.8,
	"great": 0.7, "good": 0.6, "positive": 0.6, "success": 0.7, "win": 0.6,
	"growth": 0.6, "innovation": 0.7, "breakthrough": 0.8, "rally": 0.7,
	"surge": 0.7, "soar": 0.8, "bullish": 0.7, "gain": 0.5, "profit": 0.6,
	"record": 0.5, "strong": 0.5, "boost": 0.6, "upgrade": 0.5, "beat": 0.5,
}

var negativeKeywords = map[string]float64{
	"terrible": -1.0, "awful": -0.9, "horrible": -0.9, "disaster": -0.8,
	"bad": -0.6, "poor": -0.6, "negative": -0.6, "failure": -0.7, "lose": -0.6,
	"crash": -0.8, "plunge": -0.8, "slump": -0.6, "bearish": -0.7, "sell-off": -0.7,
	"crisis": -0.8, "collapse": -0.8, "fraud": -0.7, "panic": -0.8, "default": -0.6,
	"loss": -0.6, "decline": -0.5, "warning": -0.4, "risk": -0.4, "downgrade": -0.5,
}

// BatchScore computes a bounded sentiment in [-1,1] for each text.
func (RuleBasedSentiment) BatchScore(texts []string) []float64 {
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = scoreText(truncate(text, maxSentimentChars))
	}
	return out
}

func scoreText(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'")
		if weight, ok := positiveKeywords[w]; ok {
			sum += weight
		}
		if weight, ok := negativeKeywords[w]; ok {
			sum += weight
		}
	}
	score := sum / float64(len(words)) * 10
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
