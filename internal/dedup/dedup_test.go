package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketintel/internal/core"
)

func TestFilter_DropsNearDuplicates(t *testing.T) {
	signals := []core.Signal{
		{Source: "A", Title: "one"},
		{Source: "B", Title: "two"},
		{Source: "C", Title: "three"},
	}
	vectors := [][]float64{
		{1, 0},
		{0.999, 0.045}, // cosine ~0.999 against first, should be dropped
		{0, 1},         // orthogonal to both, kept
	}

	kept, keptVectors := Filter(signals, vectors, 0.92)
	assert.Len(t, kept, 2)
	assert.Equal(t, "A", kept[0].Source)
	assert.Equal(t, "C", kept[1].Source)
	assert.Len(t, keptVectors, 2)
}

func TestFilter_PreservesOrder(t *testing.T) {
	signals := []core.Signal{{Source: "A"}, {Source: "B"}, {Source: "C"}}
	vectors := [][]float64{{1, 0}, {0, 1}, {-1, 0}}
	kept, _ := Filter(signals, vectors, 0.92)
	assert.Equal(t, []string{"A", "B", "C"}, []string{kept[0].Source, kept[1].Source, kept[2].Source})
}

func TestFilter_EmptyInput(t *testing.T) {
	kept, keptVectors := Filter(nil, nil, 0.92)
	assert.Empty(t, kept)
	assert.Empty(t, keptVectors)
}

func TestFilter_InvariantNoSurvivingPairAboveThreshold(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0.98, 0.2}, {0.99, 0.14}, {0, 1}}
	signals := make([]core.Signal, len(vectors))
	for i := range signals {
		signals[i] = core.Signal{Source: string(rune('A' + i))}
	}
	_, keptVectors := Filter(signals, vectors, 0.92)
	for i := 0; i < len(keptVectors); i++ {
		for j := i + 1; j < len(keptVectors); j++ {
			assert.Less(t, core.CosineSimilarity(keptVectors[i], keptVectors[j]), 0.92)
		}
	}
}
