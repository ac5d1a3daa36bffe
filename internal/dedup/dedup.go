// Package dedup implements greedy, order-preserving near-duplicate removal
// over a bundle of embedded signals.
package dedup

import "marketintel/internal/core"

const defaultThreshold = 0.92

// Filter keeps the bundle's items whose maximum cosine similarity against
// every previously kept vector is strictly below threshold. Input order is
// preserved. threshold<=0 uses the spec default of 0.92.
func Filter(signals []core.Signal, vectors [][]float64, threshold float64) ([]core.Signal, [][]float64) {
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	kept := make([]core.Signal, 0, len(signals))
	keptVectors := make([][]float64, 0, len(vectors))

	for i, v := range vectors {
		maxSim := 0.0
		for _, kv := range keptVectors {
			if sim := core.CosineSimilarity(v, kv); sim > maxSim {
				maxSim = sim
			}
		}
		if maxSim < threshold {
			kept = append(kept, signals[i])
			keptVectors = append(keptVectors, v)
		}
	}
	return kept, keptVectors
}
