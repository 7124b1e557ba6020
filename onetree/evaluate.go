package onetree

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Evaluate computes the prediction of a node for an assignment of feature
// values.
//
// Only the features on the traversed path need to be present. A tree whose
// feature is missing results in an ErrMissingFeature.
func Evaluate[F constraints.Float](n Node[F], assignment map[string]F) (F, error) {
	switch n := n.(type) {
	case *Leaf[F]:
		return n.Value, nil
	case *Tree[F]:
		x, ok := assignment[n.Feature]
		if !ok {
			return 0, errors.Wrapf(ErrMissingFeature, "evaluate %q", n.Feature)
		}
		for i, s := range n.Splits {
			if s.Contains(x) {
				return Evaluate(n.Children[i], assignment)
			}
		}
		// Only reachable for NaN or malformed trees.
		return 0, errors.Wrapf(ErrInvariantViolation, "value %v of %q outside of all splits",
			x, n.Feature)
	case *Forest[F]:
		var sum F
		for _, t := range n.Trees {
			x, err := Evaluate(t, assignment)
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

// MustEvaluate is like Evaluate, but panics on failure.
func MustEvaluate[F constraints.Float](n Node[F], assignment map[string]F) F {
	x, err := Evaluate(n, assignment)
	if err != nil {
		panic(err)
	}
	return x
}
