// Package orchestrator sequences C1 through C10 into one request-scoped
// run: ingest, dedupe, score, arbitrate, update reputation, and assemble the
// payload the UI screens consume (C11).
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"marketintel/internal/alerts"
	"marketintel/internal/arbitration"
	"marketintel/internal/clustering"
	"marketintel/internal/core"
	"marketintel/internal/dedup"
	"marketintel/internal/embedding"
	"marketintel/internal/ingest"
	"marketintel/internal/llmsummary"
	"marketintel/internal/reputation"
	"marketintel/internal/resultcache"
	"marketintel/internal/scoring"
)

// ErrNoData and ErrFiltered are the two "valid empty result" states the
// pipeline can reach without anything going wrong.
var (
	ErrNoData   = errors.New("NO_DATA")
	ErrFiltered = errors.New("FILTERED")
)

// Logger is the narrow logging surface this package needs.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// Orchestrator holds every capability handle the pipeline depends on. All
// fields are required except Summarizer and Notifier, which degrade
// gracefully when nil/zero-valued.
type Orchestrator struct {
	Coordinator *ingest.Coordinator
	Embedder    *embedding.Cache
	ResultCache *resultcache.Cache
	Reputation  reputation.Store
	Sentiment   scoring.SentimentClassifier
	Summarizer  *llmsummary.Summarizer
	Notifier    alerts.Notifier

	DedupThreshold      float64
	CopyThreshold       float64
	CryptoCopyThreshold float64
	ClusterSeed         int64
	MaxClusters         int

	Logger Logger
}

// Verdict is the top-level arbitration outcome.
type Verdict struct {
	WinnerSource string  `json:"winner_source"`
	Intensity    float64 `json:"intensity"`
	Entropy      float64 `json:"entropy"`
	Inconclusive bool    `json:"inconclusive"`
}

// EdenSignal flags a credible, uncontested narrative: high trust, low
// conflict, the "quiet but trusted" case the rest of the market has not
// caught up to yet.
type EdenSignal struct {
	Detected   bool    `json:"detected"`
	Source     *string `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Psychology mirrors scoring.PsychologyReport in the external schema's
// naming.
type Psychology struct {
	Mood           string  `json:"mood"`
	SentimentScore float64 `json:"sentiment_score"`
	IsCrowded      bool    `json:"is_crowded"`
	IsTrap         bool    `json:"is_trap"`
	AsymmetryLevel string  `json:"asymmetry_level"`
}

// ArbitragePoint is one row of screen_arbitrage.
type ArbitragePoint struct {
	Source      string  `json:"source"`
	Sentiment   float64 `json:"sentiment"`
	Credibility float64 `json:"credibility"`
	Label       string  `json:"label"`
}

// ScreenArbitrage is the first UI screen: per-source points plus the Eden
// highlight.
type ScreenArbitrage struct {
	Points         []ArbitragePoint `json:"points"`
	EdenDetected   bool             `json:"eden_detected"`
	EdenSource     *string          `json:"eden_source"`
	IntensityScore float64          `json:"intensity_score"`
}

// ClusterSummary is one row of screen_intelligence.
type ClusterSummary struct {
	ID           int      `json:"id"`
	Sources      []string `json:"sources"`
	SentimentAvg float64  `json:"sentiment_avg"`
}

type ScreenIntelligence struct {
	Clusters          []ClusterSummary `json:"clusters"`
	CoordinationScore float64          `json:"coordination_score"`
}

type ScreenStress struct {
	Entropy   float64 `json:"entropy"`
	Mood      string  `json:"mood"`
	IsTrap    bool    `json:"is_trap"`
	IsCrowded bool    `json:"is_crowded"`
	Asymmetry string  `json:"asymmetry"`
}

type PortalMeta struct {
	ExecutionTime string `json:"execution_time"`
	SourcesCount  int    `json:"sources_count"`
}

type ScreenPortal struct {
	Summary  string        `json:"summary"`
	HardData core.HardData `json:"hard_data"`
	Meta     PortalMeta    `json:"meta"`
}

type UI struct {
	ScreenArbitrage    ScreenArbitrage    `json:"screen_arbitrage"`
	ScreenIntelligence ScreenIntelligence `json:"screen_intelligence"`
	ScreenStress       ScreenStress       `json:"screen_stress"`
	ScreenPortal       ScreenPortal       `json:"screen_portal"`
}

// Result is the success-shaped return object from RunQuery.
type Result struct {
	Verdict    Verdict       `json:"verdict"`
	EdenSignal EdenSignal    `json:"eden_signal"`
	Psychology Psychology    `json:"psychology"`
	Summary    string        `json:"summary"`
	HardData   core.HardData `json:"hard_data"`
	UI         UI            `json:"ui"`
	Timestamp  string        `json:"timestamp"`
}

// RunQuery executes the full 15-step pipeline for one request. tiers is
// built by the caller (the fetcher set differs per query/capability), and
// identical queries within the result cache's TTL return a byte-identical
// payload without re-running any of it.
func (o *Orchestrator) RunQuery(ctx context.Context, query string, tiers ingest.Tiers) (*Result, error) {
	started := time.Now()

	var cached Result
	if o.ResultCache.Get(ctx, query, &cached) {
		return &cached, nil
	}

	signals := o.Coordinator.Run(ctx, tiers)
	if len(signals) == 0 {
		return nil, ErrNoData
	}

	claims := make([]string, len(signals))
	for i, s := range signals {
		claims[i] = extractLeadClaim(s.Text())
	}

	vectors, err := o.Embedder.EmbedBatch(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: embedding claims: %w", err)
	}

	retained, retainedVectors := dedup.Filter(signals, vectors, o.DedupThreshold)
	if len(retained) == 0 {
		return nil, ErrFiltered
	}

	texts := make([]string, len(retained))
	sources := make([]string, len(retained))
	for i, s := range retained {
		texts[i] = s.Text()
		sources[i] = s.Source
	}

	sentiments := o.Sentiment.BatchScore(texts)

	credibility := make([]float64, len(retained))
	for i, s := range retained {
		credibility[i] = scoring.Credibility(s.Source, o.Reputation)
	}

	clusterIDs := clustering.Assign(retainedVectors, o.ClusterSeed, o.MaxClusters)

	verdicts := arbitration.Arbitrate(retainedVectors, sources, o.CopyThreshold)
	winnerIdx := arbitration.Winner(verdicts, credibility)
	winner := verdicts[winnerIdx]
	entropy := arbitration.GlobalEntropy(winner)

	o.updateReputation(retained, sources, winner, sources[winnerIdx])

	coordination := scoring.Coordination(sources)
	psych := scoring.AnalyzePsychology(sentiments, winner.Intensity, coordination)

	winnerTrust := credibility[winnerIdx]
	edenDetected := winnerTrust > 0.85 && winner.Intensity < 0.5
	var edenSource *string
	if edenDetected {
		src := sources[winnerIdx]
		edenSource = &src
	}

	hardData := scoring.ExtractHardData(texts)

	avgSentiment := core.Mean(sentiments)
	summary := summaryText(o.Summarizer, ctx, query, retained[winnerIdx].Title, winner.Intensity, avgSentiment, sources)

	result := &Result{
		Verdict: Verdict{
			WinnerSource: sources[winnerIdx],
			Intensity:    winner.Intensity,
			Entropy:      entropy,
			Inconclusive: entropy > 1.8,
		},
		EdenSignal: EdenSignal{
			Detected:   edenDetected,
			Source:     edenSource,
			Confidence: winnerTrust,
		},
		Psychology: Psychology{
			Mood:           psych.Mood,
			SentimentScore: psych.SentimentScore,
			IsCrowded:      psych.IsCrowded,
			IsTrap:         psych.IsTrap,
			AsymmetryLevel: psych.AsymmetryLevel,
		},
		Summary:   summary,
		HardData:  hardData,
		UI:        buildUI(retained, sentiments, credibility, clusterIDs, coordination, entropy, psych, edenDetected, edenSource, winner.Intensity, summary, hardData, started),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	o.ResultCache.Set(ctx, query, result)

	if result.EdenSignal.Detected || winner.Intensity > 0.6 {
		o.emitAlert(ctx, query, result)
	}

	if err := o.Reputation.StoreEvent(query, hardData, result.Summary); err != nil {
		o.warn("orchestrator: storing event history failed", "error", err)
	}

	return result, nil
}

func (o *Orchestrator) updateReputation(retained []core.Signal, sources []string, winner core.Verdict, winnerSource string) {
	seen := make(map[string]bool)
	for i := range retained {
		s := sources[i]
		if seen[s] {
			continue
		}
		seen[s] = true
		consensus := s == winnerSource || winner.SourceScores[s] > 0.85
		if err := o.Reputation.RecordScan(s, consensus); err != nil {
			o.warn("orchestrator: recording reputation scan failed", "source", s, "error", err)
		}
	}
}

func (o *Orchestrator) emitAlert(ctx context.Context, query string, result *Result) {
	if o.Notifier == nil {
		return
	}
	text := fmt.Sprintf("[%s] winner=%s intensity=%.2f eden=%v: %s",
		query, result.Verdict.WinnerSource, result.Verdict.Intensity, result.EdenSignal.Detected, result.Summary)
	if err := o.Notifier.Notify(ctx, text); err != nil {
		o.warn("orchestrator: alert send failed", "error", err)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.Logger != nil {
		o.Logger.Warn(msg, args...)
	}
}

// cryptoCopyThreshold returns the arbitration copy threshold for the crypto
// variant, defaulting to the spec's 0.82 when unconfigured.
func (o *Orchestrator) cryptoCopyThreshold() float64 {
	if o.CryptoCopyThreshold <= 0 {
		return 0.82
	}
	return o.CryptoCopyThreshold
}

func summaryText(s *llmsummary.Summarizer, ctx context.Context, query, winnerHeadline string, intensity, avgSentiment float64, sources []string) string {
	if s != nil {
		return s.Summarize(ctx, query, winnerHeadline, intensity, avgSentiment, sources)
	}
	return llmsummary.FallbackSummary(query, winnerHeadline, intensity, avgSentiment)
}

func buildUI(
	retained []core.Signal,
	sentiments, credibility []float64,
	clusterIDs []int,
	coordination, entropy float64,
	psych scoring.PsychologyReport,
	edenDetected bool,
	edenSource *string,
	intensity float64,
	summary string,
	hardData core.HardData,
	started time.Time,
) UI {
	points := make([]ArbitragePoint, len(retained))
	for i, s := range retained {
		points[i] = ArbitragePoint{
			Source:      s.Source,
			Sentiment:   sentiments[i],
			Credibility: credibility[i],
			Label:       truncateLabel(s.Title, 50),
		}
	}

	clusterMap := make(map[int][]string)
	clusterSentiments := make(map[int][]float64)
	for i, cid := range clusterIDs {
		clusterMap[cid] = append(clusterMap[cid], retained[i].Source)
		clusterSentiments[cid] = append(clusterSentiments[cid], sentiments[i])
	}
	var clusters []ClusterSummary
	for id, srcs := range clusterMap {
		clusters = append(clusters, ClusterSummary{
			ID:           id,
			Sources:      srcs,
			SentimentAvg: core.Mean(clusterSentiments[id]),
		})
	}

	return UI{
		ScreenArbitrage: ScreenArbitrage{
			Points:         points,
			EdenDetected:   edenDetected,
			EdenSource:     edenSource,
			IntensityScore: intensity,
		},
		ScreenIntelligence: ScreenIntelligence{
			Clusters:          clusters,
			CoordinationScore: coordination,
		},
		ScreenStress: ScreenStress{
			Entropy:   entropy,
			Mood:      psych.Mood,
			IsTrap:    psych.IsTrap,
			IsCrowded: psych.IsCrowded,
			Asymmetry: psych.AsymmetryLevel,
		},
		ScreenPortal: ScreenPortal{
			Summary:  summary,
			HardData: hardData,
			Meta: PortalMeta{
				ExecutionTime: fmt.Sprintf("%.2fs", time.Since(started).Seconds()),
				SourcesCount:  len(retained),
			},
		},
	}
}

func truncateLabel(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var clauseSplit = regexp.MustCompile(`[.!?]`)

// extractLeadClaim splits text on sentence punctuation and takes the first
// clause, unless it is shorter than 6 words and a second clause exists, in
// which case the second clause is used. Result is truncated to 300 chars.
func extractLeadClaim(text string) string {
	clauses := clauseSplit.Split(text, -1)
	var first, second string
	for _, c := range clauses {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if first == "" {
			first = c
			continue
		}
		second = c
		break
	}
	claim := first
	if len(strings.Fields(first)) < 6 && second != "" {
		claim = second
	}
	if len(claim) > 300 {
		claim = claim[:300]
	}
	return claim
}
