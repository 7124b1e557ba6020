package onetree

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultTolerance is the largest difference between two predictions which
// CheckEquivalent treats as equal.
const DefaultTolerance = 1e-5

// ErrNotEquivalent is returned by CheckEquivalent when two nodes disagree.
var ErrNotEquivalent = errors.New("nodes are not equivalent")

// ProbeValues finds, for every feature used by the nodes, a set of values
// that reaches every branch: each cut point, the midpoint between adjacent
// cut points, and one value beyond each extreme.
func ProbeValues[F constraints.Float](nodes ...Node[F]) map[string][]F {
	cuts := map[string]map[F]struct{}{}
	for _, n := range nodes {
		IterWeightedSplits(n, func(ws WeightedSplit[F]) bool {
			s := ws.Split
			set, ok := cuts[s.Feature]
			if !ok {
				set = map[F]struct{}{}
				cuts[s.Feature] = set
			}
			for _, x := range []F{s.Min, s.Max} {
				if !math.IsInf(float64(x), 0) {
					set[x] = struct{}{}
				}
			}
			return true
		})
	}

	res := map[string][]F{}
	for feature, set := range cuts {
		sorted := maps.Keys(set)
		slices.Sort(sorted)
		if len(sorted) == 0 {
			// Only a single branch, so any value works.
			res[feature] = []F{0}
			continue
		}
		probes := []F{stepOutside(sorted[0], -1)}
		for i, x := range sorted {
			if i > 0 {
				prev := sorted[i-1]
				if mid := prev + (x-prev)/2; prev < mid && mid < x {
					probes = append(probes, mid)
				}
			}
			probes = append(probes, x)
		}
		probes = append(probes, stepOutside(sorted[len(sorted)-1], 1))
		res[feature] = probes
	}
	return res
}

// stepOutside moves x by one in the direction of sign, or by the smallest
// representable amount when adding one is lost to rounding.
func stepOutside[F constraints.Float](x F, sign int) F {
	if y := x + F(sign); y != x {
		return y
	}
	if bitSize[F]() == 32 {
		return F(math.Nextafter32(float32(x), float32(math.Inf(sign))))
	}
	return F(math.Nextafter(float64(x), math.Inf(sign)))
}

// Grid enumerates every combination of the probe values.
func Grid[F constraints.Float](probes map[string][]F) []map[string]F {
	features := maps.Keys(probes)
	slices.Sort(features)
	res := []map[string]F{{}}
	for _, feature := range features {
		next := make([]map[string]F, 0, len(res)*len(probes[feature]))
		for _, partial := range res {
			for _, x := range probes[feature] {
				assignment := maps.Clone(partial)
				assignment[feature] = x
				next = append(next, assignment)
			}
		}
		res = next
	}
	return res
}

// SampleAssignments draws random combinations of the probe values.
func SampleAssignments[F constraints.Float](gen *rand.Rand, probes map[string][]F,
	count int) []map[string]F {
	features := maps.Keys(probes)
	slices.Sort(features)
	res := make([]map[string]F, count)
	for i := range res {
		assignment := make(map[string]F, len(features))
		for _, feature := range features {
			values := probes[feature]
			assignment[feature] = values[gen.Intn(len(values))]
		}
		res[i] = assignment
	}
	return res
}

// CheckEquivalent evaluates two nodes on every assignment and returns an
// error for the first assignment where the predictions differ by more than
// tol.
func CheckEquivalent[F constraints.Float](a, b Node[F], assignments []map[string]F,
	tol float64) error {
	errs := make([]error, len(assignments))
	essentials.ConcurrentMap(0, len(assignments), func(i int) {
		assignment := assignments[i]
		x, err := Evaluate(a, assignment)
		if err != nil {
			errs[i] = err
			return
		}
		y, err := Evaluate(b, assignment)
		if err != nil {
			errs[i] = err
			return
		}
		if diff := math.Abs(float64(x) - float64(y)); !(diff <= tol) {
			errs[i] = errors.Wrapf(ErrNotEquivalent, "assignment %v: %v != %v", assignment, x, y)
		}
	})
	for _, err := range errs {
		if err != nil {
			return errors.Wrap(err, "check equivalent")
		}
	}
	return nil
}
