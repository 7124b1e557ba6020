package onetree

import (
	"math"
	"testing"
)

type testNode = Node[float64]

func leaf(x float64) testNode {
	return &Leaf[float64]{Value: x}
}

func tree(feature string, cuts []float64, children ...testNode) testNode {
	return MustTree(feature, cuts, children...)
}

// sampleForest is roughly the result of fitting a forest to Y = X_1.
func sampleForest() *Forest[float64] {
	tree1 := tree("X_1", []float64{0.5}, leaf(0.25), leaf(0.75))
	tree2 := tree("X_1", []float64{0.5}, leaf(0.30), leaf(0.90))
	tree3 := tree("X_2", []float64{0.5},
		tree("X_3", []float64{0.5}, leaf(0.35), leaf(0.75)),
		leaf(0.45),
	)
	tree4 := leaf(0.45)
	tree5 := tree("X_3", []float64{0.5}, leaf(0.30), leaf(0.90))
	tree6 := tree("X_3", []float64{0.4, 0.6}, tree1, tree2, tree3)
	tree7 := tree("X_3", []float64{0.4, 0.6}, tree6, tree1, tree6)
	return MustForest(
		tree1,
		tree2,
		tree3,
		tree4,
		tree5,
		tree5,
		tree6,
		tree7,
		tree("X_1", []float64{0.2, 0.3}, leaf(0.1), leaf(0.25), leaf(0.65)),
	)
}

// stratifiedGrid covers every branch of sampleForest().
func stratifiedGrid() []map[string]float64 {
	stratified := []float64{-1, -0.5, 0, 0.21, 0.5, 0.51, 0.76, 1.0}
	var res []map[string]float64
	for _, x1 := range stratified {
		for _, x2 := range stratified {
			for _, x3 := range stratified {
				res = append(res, map[string]float64{"X_1": x1, "X_2": x2, "X_3": x3})
			}
		}
	}
	return res
}

func checkEqualCalculations(t *testing.T, n1, n2 testNode, assignments []map[string]float64) {
	for _, assignment := range assignments {
		x1, err := Evaluate(n1, assignment)
		if err != nil {
			t.Fatal(err)
		}
		x2, err := Evaluate(n2, assignment)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(x1-x2) > DefaultTolerance {
			t.Fatalf("assignment %v: expected %f but got %f", assignment, x1, x2)
		}
	}
}

func checkValid(t *testing.T, n testNode) {
	if err := Validate(n); err != nil {
		t.Fatal(err)
	}
}
