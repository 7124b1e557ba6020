package onetree

import (
	"math"
	"math/rand"
	"testing"
)

func TestMergeBucketsIdentity(t *testing.T) {
	n := MustTree("X", []float64{1, 2}, leaf(1), leaf(1), leaf(1))
	splits, children := MergeBuckets(n.Splits, n.Children, nil)
	if len(splits) != 3 || len(children) != 3 {
		t.Fatalf("expected unchanged branch but got %d splits", len(splits))
	}
}

func TestMergeBucketsLeaves(t *testing.T) {
	n := MustTree("X", []float64{1, 2, 3, 4},
		leaf(0.11), leaf(0.19), leaf(0.25), leaf(0.11), leaf(0.12))
	splits, children := MergeBuckets(n.Splits, n.Children, BucketSize(0.1))
	expectedSplits := []Split[float64]{
		{Feature: "X", Min: math.Inf(-1), Max: 2},
		{Feature: "X", Min: 2, Max: 3},
		{Feature: "X", Min: 3, Max: math.Inf(1)},
	}
	expectedValues := []float64{0.1, 0.2, 0.1}
	if len(splits) != len(expectedSplits) || len(children) != len(expectedSplits) {
		t.Fatalf("expected %d entries but got %d splits and %d children",
			len(expectedSplits), len(splits), len(children))
	}
	for i, s := range expectedSplits {
		if splits[i] != s {
			t.Errorf("split %d: expected %v but got %v", i, s, splits[i])
		}
		value := children[i].(*Leaf[float64]).Value
		if math.Abs(value-expectedValues[i]) > 1e-12 {
			t.Errorf("child %d: expected %f but got %f", i, expectedValues[i], value)
		}
	}

	// The inputs are never modified.
	if len(n.Splits) != 5 || n.Splits[0].Max != 1 || n.Children[0].(*Leaf[float64]).Value != 0.11 {
		t.Fatal("input was modified")
	}
}

func TestMergeBucketsSubtrees(t *testing.T) {
	sub := func() testNode {
		return tree("Y", []float64{0.5}, leaf(0.3), leaf(0.7))
	}
	n := MustTree("X", []float64{1, 2}, sub(), sub(), leaf(0.3))
	splits, children := MergeBuckets(n.Splits, n.Children, func(x float64) float64 {
		return x
	})
	if len(splits) != 2 || len(children) != 2 {
		t.Fatalf("expected 2 entries but got %d", len(splits))
	}
	if splits[0].Max != 2 || !Equal(children[0], sub()) {
		t.Fatalf("unexpected first entry %v -> %v", splits[0], children[0])
	}
}

func TestMergeBucketsRandom(t *testing.T) {
	gen := rand.New(rand.NewSource(1337))
	for trial := 0; trial < 100; trial++ {
		numChildren := gen.Intn(10) + 1
		cuts := make([]float64, numChildren-1)
		for i := range cuts {
			cuts[i] = float64(i)
		}
		children := make([]testNode, numChildren)
		for i := range children {
			children[i] = leaf(float64(gen.Intn(3)))
		}
		n := MustTree("X", cuts, children...)
		splits, merged := MergeBuckets(n.Splits, n.Children, func(x float64) float64 {
			return x
		})
		if len(splits) == 0 || len(splits) != len(merged) || len(splits) > numChildren {
			t.Fatalf("bad result lengths %d and %d for %d inputs", len(splits), len(merged),
				numChildren)
		}
		res, err := NewTreeSplits("X", splits, merged)
		if err != nil {
			t.Fatal(err)
		}
		for i := -1; i < numChildren; i++ {
			assignment := map[string]float64{"X": float64(i)}
			checkEqualCalculations(t, n, res, []map[string]float64{assignment})
		}
		for i := 1; i < len(merged); i++ {
			if Equal(merged[i-1], merged[i]) {
				t.Fatal("adjacent children were not merged")
			}
		}
	}
}

func TestBucketSize(t *testing.T) {
	b := BucketSize(0.1)
	cases := [][2]float64{
		{0.25, 0.2},
		{0.3, 0.2},
		{0.35, 0.30000000000000004},
		{0.05, 0},
		{-0.15, -0.1},
		{1e30, 1e30},
		{-1e30, -1e30},
		{1e18, 1e18},
		{math.Inf(1), math.Inf(1)},
		{math.Inf(-1), math.Inf(-1)},
	}
	for _, c := range cases {
		if actual := b(c[0]); actual != c[1] {
			t.Errorf("bucket of %v: expected %v but got %v", c[0], c[1], actual)
		}
	}
}

func TestSimplifyBucketsLargeLeaves(t *testing.T) {
	forest := MustForest(
		tree("X", []float64{0.5}, leaf(1e30), leaf(2e30)),
		tree("X", []float64{0.5}, leaf(1e30), leaf(2e30)),
	)
	res, err := Simplify[float64](forest, BucketSize(0.1))
	if err != nil {
		t.Fatal(err)
	}
	for x, expected := range map[float64]float64{0: 1e30, 1: 2e30} {
		actual := MustEvaluate(res, map[string]float64{"X": x})
		if math.Abs(actual-expected) > expected*1e-12 {
			t.Errorf("X=%v: expected %v but got %v", x, expected, actual)
		}
	}
}
