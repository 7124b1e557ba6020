package onetree

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestEvaluateLeaf(t *testing.T) {
	mustEvaluate(t, 0.45, leaf(0.45), map[string]float64{"X_1": 7})
	mustEvaluate(t, 0.45, leaf(0.45), nil)
}

func TestEvaluateTree(t *testing.T) {
	tree1 := tree("X_1", []float64{0.5}, leaf(0.25), leaf(0.75))
	mustEvaluate(t, 0.25, tree1, map[string]float64{"X_1": -10})
	mustEvaluate(t, 0.25, tree1, map[string]float64{"X_1": 0.5})
	mustEvaluate(t, 0.75, tree1, map[string]float64{"X_1": 7})

	tree2 := tree("X_1", []float64{0.5},
		leaf(0.25),
		tree("X_2", []float64{0.9}, leaf(0.35), leaf(0.85)),
	)
	mustEvaluate(t, 0.25, tree2, map[string]float64{"X_1": -10})
	mustEvaluate(t, 0.25, tree2, map[string]float64{"X_1": 0.5})
	mustEvaluate(t, 0.35, tree2, map[string]float64{"X_1": 7, "X_2": 0.1})
	mustEvaluate(t, 0.35, tree2, map[string]float64{"X_1": 7, "X_2": 0.9})
	mustEvaluate(t, 0.85, tree2, map[string]float64{"X_1": 7, "X_2": 77})

	ternary := tree("X_3", []float64{0.4, 0.6}, leaf(0.1), leaf(0.2), leaf(0.3))
	mustEvaluate(t, 0.1, ternary, map[string]float64{"X_3": -1})
	mustEvaluate(t, 0.2, ternary, map[string]float64{"X_3": 0.5})
	mustEvaluate(t, 0.3, ternary, map[string]float64{"X_3": 1.0})
	mustEvaluate(t, 0.3, ternary, map[string]float64{"X_3": math.Inf(1)})
}

func TestEvaluateMissingFeature(t *testing.T) {
	tree1 := tree("X_1", []float64{0.5}, leaf(0.25), leaf(0.75))
	_, err := Evaluate(tree1, map[string]float64{"X_2": 0.5})
	if !errors.Is(err, ErrMissingFeature) {
		t.Fatalf("expected ErrMissingFeature but got %v", err)
	}

	// X_2 is only needed on the right branch.
	tree2 := tree("X_1", []float64{0.5},
		leaf(0.25),
		tree("X_2", []float64{0.9}, leaf(0.35), leaf(0.85)),
	)
	mustEvaluate(t, 0.25, tree2, map[string]float64{"X_1": 0})
	_, err = Evaluate(tree2, map[string]float64{"X_1": 5})
	if !errors.Is(err, ErrMissingFeature) {
		t.Fatalf("expected ErrMissingFeature but got %v", err)
	}
}

func TestEvaluateForest(t *testing.T) {
	memberValues := []float64{0.25, 0.3, 0.45, 0.45, 0.3, 0.3, 0.25, 0.25, 0.1}
	assignment := map[string]float64{"X_1": 0, "X_2": 1, "X_3": 0}

	forest := sampleForest()
	var expected float64
	for i, member := range forest.Trees {
		mustEvaluate(t, memberValues[i], member, assignment)
		expected += memberValues[i]
	}
	expected /= float64(len(memberValues))

	actual, err := Evaluate[float64](forest, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(actual-expected) > 1e-12 {
		t.Fatalf("expected %f but got %f", expected, actual)
	}
}

func TestEvaluateNaN(t *testing.T) {
	tree1 := tree("X_1", []float64{0.5}, leaf(0.25), leaf(0.75))
	_, err := Evaluate(tree1, map[string]float64{"X_1": math.NaN()})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation but got %v", err)
	}
}

func mustEvaluate(t *testing.T, expected float64, n testNode, assignment map[string]float64) {
	actual, err := Evaluate(n, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if actual != expected {
		t.Fatalf("expected %v but got %v for %v", expected, actual, assignment)
	}
}
