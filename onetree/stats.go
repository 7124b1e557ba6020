package onetree

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NumLeaves counts the leaves of a node.
func NumLeaves[F constraints.Float](n Node[F]) int {
	var count int
	walk(n, func(n Node[F]) {
		if _, ok := n.(*Leaf[F]); ok {
			count++
		}
	})
	return count
}

// NumNodes counts the leaves, trees, and forests of a node.
func NumNodes[F constraints.Float](n Node[F]) int {
	var count int
	walk(n, func(Node[F]) {
		count++
	})
	return count
}

// Depth is the maximum number of trees on a path from the node to a leaf.
// Forests do not add to the depth.
func Depth[F constraints.Float](n Node[F]) int {
	switch n := n.(type) {
	case *Leaf[F]:
		return 0
	case *Tree[F]:
		return 1 + maxDepth(n.Children)
	case *Forest[F]:
		return maxDepth(n.Trees)
	default:
		panic(unknownNode(n))
	}
}

func maxDepth[F constraints.Float](nodes []Node[F]) int {
	var res int
	for _, n := range nodes {
		if d := Depth(n); d > res {
			res = d
		}
	}
	return res
}

// Features returns the sorted names of all features used in a node.
func Features[F constraints.Float](n Node[F]) []string {
	set := map[string]struct{}{}
	walk(n, func(n Node[F]) {
		if t, ok := n.(*Tree[F]); ok {
			set[t.Feature] = struct{}{}
		}
	})
	res := maps.Keys(set)
	slices.Sort(res)
	return res
}

func walk[F constraints.Float](n Node[F], f func(Node[F])) {
	f(n)
	switch n := n.(type) {
	case *Leaf[F]:
	case *Tree[F]:
		for _, child := range n.Children {
			walk(child, f)
		}
	case *Forest[F]:
		for _, t := range n.Trees {
			walk(t, f)
		}
	default:
		panic(unknownNode(n))
	}
}
