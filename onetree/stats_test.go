package onetree

import (
	"reflect"
	"testing"
)

func TestStats(t *testing.T) {
	forest := sampleForest()
	if n := NumLeaves[float64](forest.Trees[2]); n != 3 {
		t.Errorf("expected 3 leaves but got %d", n)
	}
	if n := NumNodes[float64](forest.Trees[2]); n != 5 {
		t.Errorf("expected 5 nodes but got %d", n)
	}
	if d := Depth[float64](forest); d != 4 {
		t.Errorf("expected depth 4 but got %d", d)
	}
	if d := Depth(leaf(1)); d != 0 {
		t.Errorf("expected depth 0 but got %d", d)
	}
	features := Features[float64](forest)
	if !reflect.DeepEqual(features, []string{"X_1", "X_2", "X_3"}) {
		t.Errorf("unexpected features: %v", features)
	}
	if features := Features(leaf(1)); len(features) != 0 {
		t.Errorf("unexpected features: %v", features)
	}
}
