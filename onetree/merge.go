package onetree

import (
	"math"

	"golang.org/x/exp/constraints"
)

// A Bucketizer maps a leaf value to a coarser key. Adjacent branches whose
// children are equal after bucketizing are merged.
type Bucketizer[F constraints.Float] func(F) F

// BucketSize creates a Bucketizer which truncates values toward zero to a
// multiple of size. Infinite values are kept as they are.
func BucketSize[F constraints.Float](size F) Bucketizer[F] {
	return func(x F) F {
		return F(math.Trunc(float64(x/size))) * size
	}
}

// MergeBuckets coalesces adjacent entries of a branch whose children are equal.
//
// Leaf children are replaced by their bucketized values, and the replaced
// leaves are part of the result. If bucketize is nil, the inputs are returned
// unchanged.
//
// The input slices are never modified. The result is never shorter than one
// entry as long as the input is not empty.
func MergeBuckets[F constraints.Float](splits []Split[F], children []Node[F],
	bucketize Bucketizer[F]) ([]Split[F], []Node[F]) {
	if bucketize == nil {
		return splits, children
	}
	if len(splits) != len(children) {
		panic("splits and children must have same length")
	}

	var resSplits []Split[F]
	var resChildren []Node[F]
	for i, split := range splits {
		child := children[i]
		if leaf, ok := child.(*Leaf[F]); ok {
			child = &Leaf[F]{Value: bucketize(leaf.Value)}
		}
		last := len(resChildren) - 1
		if last >= 0 && Equal(resChildren[last], child) {
			resSplits[last] = resSplits[last].WithMax(split.Max)
		} else {
			resSplits = append(resSplits, split)
			resChildren = append(resChildren, child)
		}
	}
	return resSplits, resChildren
}
