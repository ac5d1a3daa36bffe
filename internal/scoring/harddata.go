package scoring

import (
	"regexp"
	"strings"

	"marketintel/internal/core"
)

var (
	percentagePattern = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?\s?%`)
	monetaryPattern    = regexp.MustCompile(`(?:[$€£]|USD|EUR|BRL)\s?\d+(?:\.\d+)?\s?(?:M|bn|k|milhões|bilhões)?`)
)

const maxHardDataItems = 10

// ExtractHardData pulls concrete numeric facts out of a set of texts: a
// percentage figure and a monetary figure, each deduplicated and capped at
// the top 10 unique matches.
func ExtractHardData(texts []string) core.HardData {
	combined := strings.Join(texts, " ")

	return core.HardData{
		Percentages: uniqueCapped(percentagePattern.FindAllString(combined, -1), maxHardDataItems),
		Monetary:    uniqueCapped(monetaryPattern.FindAllString(combined, -1), maxHardDataItems),
		KeyNumbers:  []string{},
	}
}

func uniqueCapped(matches []string, limit int) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, limit)
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}
