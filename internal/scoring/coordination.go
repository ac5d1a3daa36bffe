package scoring

import "sort"

// Coordination measures dominance of the top-3 sources within a bundle: the
// sum of the three highest occurrence counts divided by the total count.
// High values indicate a handful of sources are amplifying the narrative.
func Coordination(sources []string) float64 {
	if len(sources) == 0 {
		return 0
	}
	counts := make(map[string]int, len(sources))
	for _, s := range sources {
		counts[s]++
	}
	freqs := make([]int, 0, len(counts))
	for _, c := range counts {
		freqs = append(freqs, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(freqs)))

	top := 0
	for i := 0; i < len(freqs) && i < 3; i++ {
		top += freqs[i]
	}
	total := len(sources)
	if total == 0 {
		return 0
	}
	return float64(top) / float64(total)
}
