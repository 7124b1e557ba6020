package onetree

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// A Node is one of *Leaf, *Tree, or *Forest.
//
// Nodes are never modified after construction. Every transformation in this
// package builds new nodes and leaves its inputs untouched.
type Node[F constraints.Float] interface {
	isNode()
}

// A Leaf is a terminal prediction.
type Leaf[F constraints.Float] struct {
	Value F
}

func (l *Leaf[F]) isNode() {}

// A Split is the interval (Min, Max] of a feature's domain.
type Split[F constraints.Float] struct {
	Feature string
	Min     F
	Max     F
}

// Contains checks if Min < x <= Max.
func (s Split[F]) Contains(x F) bool {
	return s.Min < x && x <= s.Max
}

// Covers checks if the interval of other lies inside the interval of s.
func (s Split[F]) Covers(other Split[F]) bool {
	return s.Min <= other.Min && s.Max >= other.Max
}

// WithMax returns a copy of s with a different upper bound.
func (s Split[F]) WithMax(max F) Split[F] {
	s.Max = max
	return s
}

// A Tree branches on a single feature.
//
// The Splits are sorted, contiguous, and cover the whole real line, and there
// is exactly one child per split.
// Trees should be created with NewTree or NewTreeSplits, which check these
// invariants.
type Tree[F constraints.Float] struct {
	Feature  string
	Splits   []Split[F]
	Children []Node[F]
}

func (t *Tree[F]) isNode() {}

// NewTree creates a tree from the interior cut points of a feature.
//
// There must be exactly one more child than there are cut points, and the cut
// points must be strictly increasing.
func NewTree[F constraints.Float](feature string, cuts []F, children []Node[F]) (*Tree[F], error) {
	splits := make([]Split[F], 0, len(cuts)+1)
	prev := negInf[F]()
	for _, cut := range cuts {
		splits = append(splits, Split[F]{Feature: feature, Min: prev, Max: cut})
		prev = cut
	}
	splits = append(splits, Split[F]{Feature: feature, Min: prev, Max: posInf[F]()})
	return NewTreeSplits(feature, splits, children)
}

// NewTreeSplits creates a tree from an explicit list of splits.
func NewTreeSplits[F constraints.Float](feature string, splits []Split[F],
	children []Node[F]) (*Tree[F], error) {
	if err := checkTree(feature, splits, children); err != nil {
		return nil, errors.Wrap(err, "new tree")
	}
	return &Tree[F]{
		Feature:  feature,
		Splits:   append([]Split[F]{}, splits...),
		Children: append([]Node[F]{}, children...),
	}, nil
}

// MustTree is like NewTree, but panics on malformed input.
func MustTree[F constraints.Float](feature string, cuts []F, children ...Node[F]) *Tree[F] {
	t, err := NewTree(feature, cuts, children)
	if err != nil {
		panic(err)
	}
	return t
}

// A Forest averages the predictions of its members.
type Forest[F constraints.Float] struct {
	Trees []Node[F]
}

func (f *Forest[F]) isNode() {}

// NewForest creates a forest with at least one member.
func NewForest[F constraints.Float](trees ...Node[F]) (*Forest[F], error) {
	if len(trees) == 0 {
		return nil, errors.Wrap(ErrMalformed, "new forest: no members")
	}
	for i, t := range trees {
		if t == nil {
			return nil, errors.Wrapf(ErrMalformed, "new forest: member %d is nil", i)
		}
	}
	return &Forest[F]{Trees: append([]Node[F]{}, trees...)}, nil
}

// MustForest is like NewForest, but panics on malformed input.
func MustForest[F constraints.Float](trees ...Node[F]) *Forest[F] {
	f, err := NewForest(trees...)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate recursively checks the structural invariants of a node.
func Validate[F constraints.Float](n Node[F]) error {
	switch n := n.(type) {
	case *Leaf[F]:
		return nil
	case *Tree[F]:
		if err := checkTree(n.Feature, n.Splits, n.Children); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil
	case *Forest[F]:
		if len(n.Trees) == 0 {
			return errors.Wrap(ErrMalformed, "forest has no members")
		}
		for i, member := range n.Trees {
			if member == nil {
				return errors.Wrapf(ErrMalformed, "forest member %d is nil", i)
			}
			if err := Validate(member); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return errors.Wrap(ErrMalformed, "nil node")
	default:
		panic(unknownNode(n))
	}
}

func checkTree[F constraints.Float](feature string, splits []Split[F], children []Node[F]) error {
	if len(splits) == 0 {
		return errors.Wrapf(ErrMalformed, "tree on %q has no splits", feature)
	}
	if len(splits) != len(children) {
		return errors.Wrapf(ErrMalformed, "tree on %q has %d splits but %d children",
			feature, len(splits), len(children))
	}
	if !math.IsInf(float64(splits[0].Min), -1) {
		return errors.Wrapf(ErrMalformed, "tree on %q starts at %v instead of -inf",
			feature, splits[0].Min)
	}
	if last := splits[len(splits)-1]; !math.IsInf(float64(last.Max), 1) {
		return errors.Wrapf(ErrMalformed, "tree on %q ends at %v instead of +inf",
			feature, last.Max)
	}
	for i, s := range splits {
		if s.Feature != feature {
			return errors.Wrapf(ErrMalformed, "tree on %q has split on %q", feature, s.Feature)
		}
		if !(s.Min < s.Max) {
			return errors.Wrapf(ErrMalformed, "tree on %q has empty interval (%v, %v]",
				feature, s.Min, s.Max)
		}
		if i > 0 && splits[i-1].Max != s.Min {
			return errors.Wrapf(ErrMalformed, "tree on %q has gap between %v and %v",
				feature, splits[i-1].Max, s.Min)
		}
		if children[i] == nil {
			return errors.Wrapf(ErrMalformed, "tree on %q has nil child %d", feature, i)
		}
	}
	return nil
}

// Equal checks if two nodes are structurally identical.
func Equal[F constraints.Float](a, b Node[F]) bool {
	switch a := a.(type) {
	case *Leaf[F]:
		b, ok := b.(*Leaf[F])
		return ok && a.Value == b.Value
	case *Tree[F]:
		b, ok := b.(*Tree[F])
		if !ok || a.Feature != b.Feature || len(a.Splits) != len(b.Splits) ||
			len(a.Children) != len(b.Children) {
			return false
		}
		for i, s := range a.Splits {
			if s != b.Splits[i] {
				return false
			}
		}
		return equalAll(a.Children, b.Children)
	case *Forest[F]:
		b, ok := b.(*Forest[F])
		return ok && len(a.Trees) == len(b.Trees) && equalAll(a.Trees, b.Trees)
	default:
		panic(unknownNode(a))
	}
}

func equalAll[F constraints.Float](a, b []Node[F]) bool {
	for i, x := range a {
		if !Equal(x, b[i]) {
			return false
		}
	}
	return true
}

func negInf[F constraints.Float]() F {
	return F(math.Inf(-1))
}

func posInf[F constraints.Float]() F {
	return F(math.Inf(1))
}
