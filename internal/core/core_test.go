package core

import (
	"math"
	"testing"
)

func TestSignalText(t *testing.T) {
	s := Signal{Title: "Oil prices spike"}
	if s.Text() != "Oil prices spike" {
		t.Errorf("expected bare title when description empty, got %q", s.Text())
	}

	s.Description = "OPEC cuts output"
	want := "Oil prices spike . OPEC cuts output"
	if s.Text() != want {
		t.Errorf("expected %q, got %q", want, s.Text())
	}
}

func TestSignalBundleLen(t *testing.T) {
	b := &SignalBundle{Signals: []Signal{{Title: "a"}, {Title: "b"}}}
	if b.Len() != 2 {
		t.Errorf("expected len 2, got %d", b.Len())
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{1, 0}
	if got := CosineSimilarity(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected identical vectors to have similarity 1, got %f", got)
	}

	c := []float64{0, 1}
	if got := CosineSimilarity(a, c); math.Abs(got) > 1e-9 {
		t.Errorf("expected orthogonal vectors to have similarity 0, got %f", got)
	}

	if got := CosineSimilarity(a, []float64{1, 0, 0}); got != 0 {
		t.Errorf("expected mismatched lengths to return 0, got %f", got)
	}

	if got := CosineSimilarity([]float64{0, 0}, b); got != 0 {
		t.Errorf("expected zero-magnitude vector to return 0, got %f", got)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	var mag float64
	for _, x := range v {
		mag += x * x
	}
	if math.Abs(math.Sqrt(mag)-1.0) > 1e-9 {
		t.Errorf("expected unit norm, got magnitude %f", math.Sqrt(mag))
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("expected 0 for empty slice, got %f", got)
	}
	if got := Mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("expected mean 2, got %f", got)
	}
}

func TestDefaultTrustedSources(t *testing.T) {
	sources := DefaultTrustedSources()
	if len(sources) == 0 {
		t.Fatal("expected non-empty trusted source list")
	}
	found := false
	for _, s := range sources {
		if s.Source == "reuters" && s.Weight == 0.95 {
			found = true
		}
	}
	if !found {
		t.Error("expected reuters to be seeded at weight 0.95")
	}
}
