package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestK(t *testing.T) {
	assert.Equal(t, 2, K(1, 0))
	assert.Equal(t, 2, K(9, 0))
	assert.Equal(t, 2, K(10, 0))
	assert.Equal(t, 4, K(20, 0))
	assert.Equal(t, 4, K(100, 0))
	assert.Equal(t, 3, K(100, 3))
}

func TestAssign_TooFewItemsAllClusterZero(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}}
	assignments := Assign(vectors, 42, 0)
	assert.Equal(t, []int{0, 0}, assignments)
}

func TestAssign_DeterministicAcrossRuns(t *testing.T) {
	vectors := make([][]float64, 12)
	for i := range vectors {
		if i%2 == 0 {
			vectors[i] = []float64{1, 0.01 * float64(i)}
		} else {
			vectors[i] = []float64{0.01 * float64(i), 1}
		}
	}
	a1 := Assign(vectors, 42, 0)
	a2 := Assign(vectors, 42, 0)
	assert.Equal(t, a1, a2)
	assert.Len(t, a1, 12)
}

func TestAssign_Empty(t *testing.T) {
	assert.Nil(t, Assign(nil, 42, 0))
}
