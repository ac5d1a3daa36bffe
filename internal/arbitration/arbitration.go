// Package arbitration computes each item's cross-source similarity profile
// and resolves the narrative's winner and global entropy.
package arbitration

import (
	"fmt"
	"math"
	"sort"

	"marketintel/internal/core"
)

const defaultCopyThreshold = 0.92

// Arbitrate treats the n vectors as nodes in a pairwise similarity graph and
// returns one Verdict per item, in input order. copyThreshold<=0 uses the
// spec default of 0.92.
func Arbitrate(vectors [][]float64, sources []string, copyThreshold float64) []core.Verdict {
	if copyThreshold <= 0 {
		copyThreshold = defaultCopyThreshold
	}
	n := len(vectors)
	verdicts := make([]core.Verdict, n)

	sims := pairwiseSimilarity(vectors)

	for i := 0; i < n; i++ {
		sourceScores := make(map[string]float64)
		crossCopies := 0
		otherCount := 0
		var spread []float64

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			// source_scores must stay in [0,1] (spec invariant 2); cosine
			// similarity ranges [-1,1], so anti-correlated pairs are floored
			// at 0 rather than reported as negative agreement.
			sim := math.Max(0, sims[i][j])
			otherCount++
			if existing, ok := sourceScores[sources[j]]; !ok || sim > existing {
				sourceScores[sources[j]] = sim
			}
			if sim >= copyThreshold && sources[j] != sources[i] {
				crossCopies++
			}
			spread = append(spread, sim)
		}

		intensity := computeIntensity(crossCopies, otherCount, spread)
		verdicts[i] = core.Verdict{
			Intensity:    intensity,
			SourceScores: sourceScores,
			Explanation:  explain(sources[i], sourceScores, copyThreshold),
		}
	}
	return verdicts
}

func computeIntensity(crossCopies, otherCount int, sims []float64) float64 {
	if otherCount == 0 {
		return 0
	}
	copyComponent := float64(crossCopies) / float64(otherCount)
	spreadComponent := clampUnit(stddev(sims))
	intensity := 0.6*copyComponent + 0.4*spreadComponent
	return clampUnit(intensity)
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func explain(source string, scores map[string]float64, threshold float64) string {
	mirrors := make([]string, 0, len(scores))
	for s, sim := range scores {
		if sim >= threshold {
			mirrors = append(mirrors, s)
		}
	}
	sort.Strings(mirrors)
	if len(mirrors) == 0 {
		return fmt.Sprintf("%s shows no strong mirrors above the copy threshold", source)
	}
	return fmt.Sprintf("%s is mirrored above threshold by: %v", source, mirrors)
}

func pairwiseSimilarity(vectors [][]float64) [][]float64 {
	n := len(vectors)
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := core.CosineSimilarity(vectors[i], vectors[j])
			sims[i][j] = s
			sims[j][i] = s
		}
	}
	return sims
}

// Winner selects the highest-score item: score_i = centrality_i *
// (1 + credibility_i), where centrality_i is the sum of verdict i's
// source_scores. Ties resolve to the first occurrence.
func Winner(verdicts []core.Verdict, credibility []float64) int {
	best := 0
	bestScore := math.Inf(-1)
	for i, v := range verdicts {
		centrality := 0.0
		for _, s := range v.SourceScores {
			centrality += s
		}
		score := centrality * (1 + credibility[i])
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// GlobalEntropy is the Shannon entropy (natural log, epsilon-guarded) of the
// winning verdict's source_scores values, normalized by their sum.
func GlobalEntropy(winner core.Verdict) float64 {
	const eps = 1e-9
	var sum float64
	for _, v := range winner.SourceScores {
		sum += v
	}
	if sum <= 0 {
		return 0
	}
	var entropy float64
	for _, v := range winner.SourceScores {
		p := v / sum
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log(p+eps)
	}
	return entropy
}
