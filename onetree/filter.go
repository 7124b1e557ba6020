package onetree

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Filter resolves every tree on split.Feature in a node, keeping only the
// branch consistent with the split.
//
// The kept branch is filtered as well, so the result never checks
// split.Feature again.
//
// The split must lie inside one interval of every tree on its feature, which
// always holds for splits from SelectSplits. Otherwise an
// ErrInvariantViolation is returned.
func Filter[F constraints.Float](n Node[F], split Split[F]) (Node[F], error) {
	switch n := n.(type) {
	case *Leaf[F]:
		return n, nil
	case *Tree[F]:
		if n.Feature == split.Feature {
			for i, s := range n.Splits {
				if s.Covers(split) {
					return Filter(n.Children[i], split)
				}
			}
			return nil, errors.Wrapf(ErrInvariantViolation,
				"filter: split (%v, %v] on %q straddles tree intervals",
				split.Min, split.Max, split.Feature)
		}
		children, err := filterAll(n.Children, split)
		if err != nil {
			return nil, err
		}
		return &Tree[F]{Feature: n.Feature, Splits: n.Splits, Children: children}, nil
	case *Forest[F]:
		trees, err := filterAll(n.Trees, split)
		if err != nil {
			return nil, err
		}
		return &Forest[F]{Trees: trees}, nil
	default:
		panic(unknownNode(n))
	}
}

func filterAll[F constraints.Float](nodes []Node[F], split Split[F]) ([]Node[F], error) {
	res := make([]Node[F], len(nodes))
	for i, n := range nodes {
		var err error
		res[i], err = Filter(n, split)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
