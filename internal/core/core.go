// Package core holds the domain types shared by every pipeline stage:
// fetched signals, their embeddings, per-item verdicts and the
// persistent reputation records the orchestrator reads and writes.
package core

import "time"

// Signal is a single fetched news item. Immutable after construction.
type Signal struct {
	Source      string // free text, case-insensitive for lookup
	Title       string
	Description string
	URL         string
	PublishedAt string // opaque string, as returned by the origin feed/API
}

// Text is the canonical text of a signal: title, separator, description.
func (s Signal) Text() string {
	if s.Description == "" {
		return s.Title
	}
	return s.Title + " . " + s.Description
}

// SignalBundle is the ordered, request-scoped working set the orchestrator
// builds across dedup, scoring and clustering. All slices share length and
// index alignment once dedup has run.
type SignalBundle struct {
	Signals     []Signal
	Vectors     [][]float64
	Sentiments  []float64 // [-1, 1]
	Credibility []float64 // [0.1, 0.95]
	ClusterIDs  []int
}

// Len reports the number of retained items.
func (b *SignalBundle) Len() int {
	return len(b.Signals)
}

// Verdict is arbitration's per-item output. Position i corresponds to
// bundle position i.
type Verdict struct {
	Intensity    float64            // narrative-conflict magnitude, [0,1]
	SourceScores map[string]float64 // source name -> similarity in [0,1]
	Explanation  string
}

// SourceProfile is the persistent per-source reputation record.
// Invariant: ConsensusHits <= TotalScans, and TotalScans never decreases.
type SourceProfile struct {
	Source        string // primary key, lowercased
	TotalScans    int64
	ConsensusHits int64
	UpdatedAt     time.Time
}

// TrustedSource is a seeded substring-matched trust weight.
type TrustedSource struct {
	Source string // substring key, lowercased
	Weight float64
}

// EventHistoryEntry is one append-only row of the analysis log.
type EventHistoryEntry struct {
	Query          string
	HardData       HardData
	VerdictSummary string
	Timestamp      time.Time
}

// HardData is the set of concrete numeric facts lifted out of a bundle's
// text by the percentage/monetary extraction rules.
type HardData struct {
	Percentages []string `json:"percentages"`
	Monetary    []string `json:"monetary"`
	KeyNumbers  []string `json:"key_numbers"`
}

// DefaultTrustedSources seeds the reputation store's trusted-source table.
func DefaultTrustedSources() []TrustedSource {
	return []TrustedSource{
		{Source: "reuters", Weight: 0.95},
		{Source: "bloomberg", Weight: 0.95},
		{Source: "ft", Weight: 0.95},
		{Source: "financial times", Weight: 0.95},
		{Source: "wsj", Weight: 0.95},
		{Source: "wall street journal", Weight: 0.95},
	}
}
