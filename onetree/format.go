package onetree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"github.com/xlab/treeprint"
	"golang.org/x/exp/constraints"
)

// Lines renders a node as indented text, one branch per line.
//
// Each branch of a tree is shown by its upper bound, as in "(X <= 0.5)",
// followed by the leaf value when the child is a leaf.
func Lines[F constraints.Float](n Node[F]) []string {
	switch n := n.(type) {
	case *Leaf[F]:
		return []string{"-> " + FormatValue(n.Value)}
	case *Tree[F]:
		var res []string
		for i, s := range n.Splits {
			cond := fmt.Sprintf("(%s <= %s)", s.Feature, FormatValue(s.Max))
			if leaf, ok := n.Children[i].(*Leaf[F]); ok {
				res = append(res, cond+" -> "+FormatValue(leaf.Value))
			} else {
				res = append(res, cond)
				res = append(res, indentLines(Lines(n.Children[i]))...)
			}
		}
		return res
	case *Forest[F]:
		var res []string
		for i, t := range n.Trees {
			res = append(res, fmt.Sprintf("# Tree %d / %d", i, len(n.Trees)))
			res = append(res, indentLines(Lines(t))...)
		}
		return res
	default:
		panic(unknownNode(n))
	}
}

func (l *Leaf[F]) String() string {
	return strings.Join(Lines[F](l), "\n")
}

func (t *Tree[F]) String() string {
	return strings.Join(Lines[F](t), "\n")
}

func (f *Forest[F]) String() string {
	return strings.Join(Lines[F](f), "\n")
}

func indentLines(lines []string) []string {
	for i, x := range lines {
		lines[i] = "  " + x
	}
	return lines
}

// TreePrint renders a node as a box-drawing tree.
func TreePrint[F constraints.Float](n Node[F]) string {
	root := treeprint.NewWithRoot(nodeLabel(n))
	addTreePrint(root, n)
	return root.String()
}

func addTreePrint[F constraints.Float](branch treeprint.Tree, n Node[F]) {
	switch n := n.(type) {
	case *Leaf[F]:
	case *Tree[F]:
		for i, s := range n.Splits {
			addTreePrintChild(branch, FormatSplit(s), n.Children[i])
		}
	case *Forest[F]:
		for i, t := range n.Trees {
			addTreePrintChild(branch, fmt.Sprintf("tree %d / %d", i, len(n.Trees)), t)
		}
	default:
		panic(unknownNode(n))
	}
}

func addTreePrintChild[F constraints.Float](branch treeprint.Tree, label string, child Node[F]) {
	if leaf, ok := child.(*Leaf[F]); ok {
		branch.AddNode(label + " -> " + FormatValue(leaf.Value))
	} else {
		addTreePrint(branch.AddBranch(label+": "+nodeLabel(child)), child)
	}
}

func nodeLabel[F constraints.Float](n Node[F]) string {
	switch n := n.(type) {
	case *Leaf[F]:
		return "leaf " + FormatValue(n.Value)
	case *Tree[F]:
		return fmt.Sprintf("tree on %s", n.Feature)
	case *Forest[F]:
		return fmt.Sprintf("forest of %d", len(n.Trees))
	default:
		panic(unknownNode(n))
	}
}

// FormatSplit renders a split as "X in (min, max]".
func FormatSplit[F constraints.Float](s Split[F]) string {
	return fmt.Sprintf("%s in (%s, %s]", s.Feature, FormatValue(s.Min), FormatValue(s.Max))
}

// FormatValue renders a number with the shortest representation that parses
// back to the same value, and infinities as "inf" and "-inf".
func FormatValue[F constraints.Float](x F) string {
	f := float64(x)
	if math.IsInf(f, 1) {
		return "inf"
	} else if math.IsInf(f, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize[F]())
}

func bitSize[F constraints.Float]() int {
	var zero F
	return int(unsafe.Sizeof(zero)) * 8
}
