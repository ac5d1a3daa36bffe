package orchestrator

import (
	"context"
	"strings"

	"marketintel/internal/arbitration"
	"marketintel/internal/classifier"
	"marketintel/internal/core"
	"marketintel/internal/ingest"
	"marketintel/internal/scoring"
)

// CryptoResult is the crypto variant's return shape: a compact "semaphore"
// payload instead of the full four-screen UI, since the consumer here is a
// fast-glance dashboard rather than the deep-dive analysis views.
type CryptoResult struct {
	Status       string                  `json:"status"`
	Asset        string                  `json:"asset"`
	Metrics      CryptoMetrics           `json:"metrics"`
	ActionSignal classifier.ActionSignal `json:"action_signal"`
	HardData     core.HardData           `json:"hard_data"`
	Signals      []core.Signal           `json:"signals"`
}

type CryptoMetrics struct {
	ConflictIntensity float64 `json:"conflict_intensity"`
	SentimentGap      float64 `json:"sentiment_gap"`
	IsPanic           bool    `json:"is_panic"`
}

const maxCryptoSignals = 8

// RunCryptoQuery runs the same ingest→score→arbitrate shape as RunQuery but
// against the fixed crypto-feed list, with a looser copy threshold (0.82)
// and the four-rule classifier in place of the full UI payload. It never
// dedupes against an embedding cache cost the way the standard path does:
// the crypto feeds are few enough that raw signals double as both the
// arbitration corpus and the similarity corpus (see the open-question note
// on passing vectors twice).
func (o *Orchestrator) RunCryptoQuery(ctx context.Context, asset string, tiers ingest.Tiers) (*CryptoResult, error) {
	signals := o.Coordinator.Run(ctx, tiers)
	if len(signals) == 0 {
		return &CryptoResult{
			Status:       "no_data",
			Asset:        strings.ToUpper(asset),
			ActionSignal: classifier.NoSignal(),
		}, nil
	}

	texts := make([]string, len(signals))
	sources := make([]string, len(signals))
	for i, s := range signals {
		texts[i] = s.Text()
		sources[i] = s.Source
	}

	vectors, err := o.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	sentiments := o.Sentiment.BatchScore(texts)

	verdicts := arbitration.Arbitrate(vectors, sources, o.cryptoCopyThreshold())
	maxConflict := 0.0
	for _, v := range verdicts {
		if v.Intensity > maxConflict {
			maxConflict = v.Intensity
		}
	}
	avgSentiment := core.Mean(sentiments)

	isPanic := classifier.IsPanic(avgSentiment, maxConflict)
	action := classifier.Classify(maxConflict, avgSentiment, isPanic)

	hardData := scoring.ExtractHardData(texts)

	top := signals
	if len(top) > maxCryptoSignals {
		top = top[:maxCryptoSignals]
	}

	return &CryptoResult{
		Status: "success",
		Asset:  strings.ToUpper(asset),
		Metrics: CryptoMetrics{
			ConflictIntensity: maxConflict,
			SentimentGap:      avgSentiment,
			IsPanic:           isPanic,
		},
		ActionSignal: action,
		HardData:     hardData,
		Signals:      top,
	}, nil
}
