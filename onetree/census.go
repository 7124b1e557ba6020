package onetree

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// A WeightedSplit is a split together with the expected number of times it is
// checked when a single item is evaluated.
type WeightedSplit[F constraints.Float] struct {
	Weight float64
	Split  Split[F]
}

// IterWeightedSplits visits the weighted splits of a node in depth-first
// order. Iteration stops early if f returns false.
//
// Each branch of a tree is assumed to receive an equal share of the items
// reaching the tree. Every member of a forest receives every item, so the
// weight does not shrink across forest members.
func IterWeightedSplits[F constraints.Float](n Node[F], f func(WeightedSplit[F]) bool) {
	iterWeightedSplits(n, 1, f)
}

func iterWeightedSplits[F constraints.Float](n Node[F], weight float64,
	f func(WeightedSplit[F]) bool) bool {
	switch n := n.(type) {
	case *Leaf[F]:
		return true
	case *Tree[F]:
		for _, s := range n.Splits {
			if !f(WeightedSplit[F]{Weight: weight, Split: s}) {
				return false
			}
		}
		childWeight := weight / float64(len(n.Children))
		for _, child := range n.Children {
			if !iterWeightedSplits(child, childWeight, f) {
				return false
			}
		}
		return true
	case *Forest[F]:
		for _, t := range n.Trees {
			if !iterWeightedSplits(t, weight, f) {
				return false
			}
		}
		return true
	default:
		panic(unknownNode(n))
	}
}

// WeightedSplits collects all of the weighted splits of a node.
func WeightedSplits[F constraints.Float](n Node[F]) []WeightedSplit[F] {
	var res []WeightedSplit[F]
	IterWeightedSplits(n, func(ws WeightedSplit[F]) bool {
		res = append(res, ws)
		return true
	})
	return res
}

// HasSplits checks if any tree remains anywhere in the node.
func HasSplits[F constraints.Float](n Node[F]) bool {
	var found bool
	IterWeightedSplits(n, func(WeightedSplit[F]) bool {
		found = true
		return false
	})
	return found
}

// CollapseLeaves folds a node made only of leaves and forests into a single
// leaf holding the (nested) mean of the leaf values.
func CollapseLeaves[F constraints.Float](n Node[F]) (*Leaf[F], error) {
	value, err := collapseValue(n)
	if err != nil {
		return nil, err
	}
	if l, ok := n.(*Leaf[F]); ok {
		return l, nil
	}
	return &Leaf[F]{Value: value}, nil
}

func collapseValue[F constraints.Float](n Node[F]) (F, error) {
	switch n := n.(type) {
	case *Leaf[F]:
		return n.Value, nil
	case *Tree[F]:
		return 0, errors.Wrapf(ErrInvariantViolation, "collapse: unresolved tree on %q",
			n.Feature)
	case *Forest[F]:
		var sum F
		for _, t := range n.Trees {
			x, err := collapseValue(t)
			if err != nil {
				return 0, err
			}
			sum += x
		}
		return sum / F(len(n.Trees)), nil
	default:
		panic(unknownNode(n))
	}
}
