package onetree

import (
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FeatureScore summarizes the census entries for one feature.
type FeatureScore[F constraints.Float] struct {
	Feature string

	// Weight is the expected number of checks on the feature per item.
	Weight float64

	// Cuts is the sorted set of every split boundary on the feature,
	// including the infinite outer bounds.
	Cuts []F
}

// Score is the expected number of checks saved per item by resolving the
// feature once, minus the cost of a binary search among its cut points.
func (f *FeatureScore[F]) Score() float64 {
	return f.Weight - math.Log2(float64(len(f.Cuts)))
}

// Splits pairs up adjacent cut points into contiguous splits.
func (f *FeatureScore[F]) Splits() []Split[F] {
	res := make([]Split[F], 0, len(f.Cuts)-1)
	for i := 1; i < len(f.Cuts); i++ {
		res = append(res, Split[F]{Feature: f.Feature, Min: f.Cuts[i-1], Max: f.Cuts[i]})
	}
	return res
}

// ScoreFeatures aggregates a census into per-feature scores, sorted by
// feature name.
func ScoreFeatures[F constraints.Float](census []WeightedSplit[F]) []*FeatureScore[F] {
	weights := map[string]float64{}
	cuts := map[string]map[F]struct{}{}
	for _, ws := range census {
		feature := ws.Split.Feature
		weights[feature] += ws.Weight
		set, ok := cuts[feature]
		if !ok {
			set = map[F]struct{}{}
			cuts[feature] = set
		}
		set[ws.Split.Min] = struct{}{}
		set[ws.Split.Max] = struct{}{}
	}

	features := maps.Keys(weights)
	slices.Sort(features)

	res := make([]*FeatureScore[F], len(features))
	for i, feature := range features {
		sorted := maps.Keys(cuts[feature])
		slices.Sort(sorted)
		res[i] = &FeatureScore[F]{
			Feature: feature,
			Weight:  weights[feature],
			Cuts:    sorted,
		}
	}
	return res
}

// SelectSplits chooses the feature to resolve first and returns the splits
// on its cut points.
//
// The feature with the highest score wins, and ties go to the lowest feature
// name. Returns nil for an empty census.
func SelectSplits[F constraints.Float](census []WeightedSplit[F]) []Split[F] {
	var best *FeatureScore[F]
	for _, fs := range ScoreFeatures(census) {
		if best == nil || fs.Score() > best.Score() {
			best = fs
		}
	}
	if best == nil {
		return nil
	}
	return best.Splits()
}
