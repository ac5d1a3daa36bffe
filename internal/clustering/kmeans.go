// Package clustering partitions a bundle of retained vectors into k groups
// via a fixed-seed k-means over cosine distance.
package clustering

import (
	"math"
	"math/rand"

	"marketintel/internal/core"
)

const (
	minClusters          = 2
	defaultMaxClusters   = 4
	maxIterations        = 100
)

// K returns the cluster count for n items: min(maxK, max(2, n/5)). maxK<=0
// falls back to the spec default of 4. Items are assigned cluster 0
// unconditionally when n < K(n, maxK)+1.
func K(n, maxK int) int {
	if maxK <= 0 {
		maxK = defaultMaxClusters
	}
	k := n / 5
	if k < minClusters {
		k = minClusters
	}
	if k > maxK {
		k = maxK
	}
	return k
}

// Assign partitions vectors into K(len(vectors), maxK) clusters using
// k-means seeded deterministically, so identical input always yields
// identical labels. All items receive cluster 0 when there are too few to
// support K(n, maxK) non-empty clusters.
func Assign(vectors [][]float64, seed int64, maxK int) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	k := K(n, maxK)
	if n < k+1 {
		return make([]int, n)
	}

	rng := rand.New(rand.NewSource(seed))
	dim := len(vectors[0])
	centroids := initCentroidsPlusPlus(vectors, k, dim, rng)

	assignments := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		newAssignments := make([]int, n)
		for i, v := range vectors {
			newAssignments[i] = nearestCentroid(v, centroids)
			if newAssignments[i] != assignments[i] {
				changed = true
			}
		}
		assignments = newAssignments
		if iter > 0 && !changed {
			break
		}
		centroids = updateCentroids(vectors, assignments, k, dim)
	}
	return assignments
}

func initCentroidsPlusPlus(vectors [][]float64, k, dim int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, k)
	first := rng.Intn(len(vectors))
	centroids[0] = cloneVec(vectors[first])

	for c := 1; c < k; c++ {
		distances := make([]float64, len(vectors))
		total := 0.0
		for j, v := range vectors {
			minDist := math.Inf(1)
			for i := 0; i < c; i++ {
				d := cosineDistance(v, centroids[i])
				if d < minDist {
					minDist = d
				}
			}
			distances[j] = minDist * minDist
			total += distances[j]
		}
		if total == 0 {
			centroids[c] = cloneVec(vectors[rng.Intn(len(vectors))])
			continue
		}
		target := rng.Float64() * total
		cumulative := 0.0
		selected := 0
		for j, d := range distances {
			cumulative += d
			if cumulative >= target {
				selected = j
				break
			}
		}
		centroids[c] = cloneVec(vectors[selected])
	}
	return centroids
}

func nearestCentroid(v []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := cosineDistance(v, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func updateCentroids(vectors [][]float64, assignments []int, k, dim int) [][]float64 {
	centroids := make([][]float64, k)
	counts := make([]int, k)
	for i := range centroids {
		centroids[i] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := assignments[i]
		counts[c]++
		for j := range v {
			centroids[c][j] += v[j]
		}
	}
	for i := range centroids {
		if counts[i] > 0 {
			for j := range centroids[i] {
				centroids[i][j] /= float64(counts[i])
			}
		}
	}
	return centroids
}

// cosineDistance is 1 - cosine similarity; 0 for identical direction,
// 2 for opposite.
func cosineDistance(a, b []float64) float64 {
	return 1 - core.CosineSimilarity(a, b)
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
