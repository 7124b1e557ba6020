package onetree

import (
	"math"
	"testing"
)

func TestScoreFeatures(t *testing.T) {
	scores := ScoreFeatures(WeightedSplits[float64](sampleForest()))
	expected := []struct {
		Feature string
		Weight  float64
		Cuts    []float64
	}{
		{"X_1", 9.888888888888884, []float64{math.Inf(-1), 0.2, 0.3, 0.5, math.Inf(1)}},
		{"X_2", 3.1111111111111116, []float64{math.Inf(-1), 0.5, math.Inf(1)}},
		{"X_3", 13.555555555555557, []float64{math.Inf(-1), 0.4, 0.5, 0.6, math.Inf(1)}},
	}
	if len(scores) != len(expected) {
		t.Fatalf("expected %d features but got %d", len(expected), len(scores))
	}
	for i, e := range expected {
		actual := scores[i]
		if actual.Feature != e.Feature {
			t.Fatalf("feature %d: expected %s but got %s", i, e.Feature, actual.Feature)
		}
		if math.Abs(actual.Weight-e.Weight) > 1e-9 {
			t.Errorf("feature %s: expected weight %f but got %f", e.Feature, e.Weight, actual.Weight)
		}
		if len(actual.Cuts) != len(e.Cuts) {
			t.Fatalf("feature %s: expected cuts %v but got %v", e.Feature, e.Cuts, actual.Cuts)
		}
		for j, x := range e.Cuts {
			if actual.Cuts[j] != x {
				t.Errorf("feature %s: expected cuts %v but got %v", e.Feature, e.Cuts, actual.Cuts)
				break
			}
		}
	}

	// X_3 saves the most checks even after paying for the binary search.
	if math.Abs(scores[2].Score()-11.233627460668195) > 1e-9 {
		t.Errorf("unexpected X_3 score: %f", scores[2].Score())
	}
}

func TestSelectSplits(t *testing.T) {
	splits := SelectSplits(WeightedSplits[float64](sampleForest()))
	cuts := []float64{math.Inf(-1), 0.4, 0.5, 0.6, math.Inf(1)}
	if len(splits) != len(cuts)-1 {
		t.Fatalf("expected %d splits but got %d", len(cuts)-1, len(splits))
	}
	for i, s := range splits {
		expected := Split[float64]{Feature: "X_3", Min: cuts[i], Max: cuts[i+1]}
		if s != expected {
			t.Errorf("split %d: expected %v but got %v", i, expected, s)
		}
	}
}

func TestSelectSplitsTieBreak(t *testing.T) {
	// Identical structure on two features gives identical scores.
	forest := MustForest(
		tree("b", []float64{1}, leaf(1), leaf(2)),
		tree("a", []float64{1}, leaf(1), leaf(2)),
	)
	for i := 0; i < 10; i++ {
		splits := SelectSplits(WeightedSplits[float64](forest))
		if len(splits) != 2 || splits[0].Feature != "a" {
			t.Fatalf("expected splits on a but got %v", splits)
		}
	}
}

func TestSelectSplitsEmpty(t *testing.T) {
	if splits := SelectSplits[float64](nil); splits != nil {
		t.Fatalf("expected no splits but got %v", splits)
	}
}
