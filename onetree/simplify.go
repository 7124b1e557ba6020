package onetree

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

const verboseMaxDepth = 6

// Simplify converts a forest (or any node) into a single equivalent tree
// using a single Goroutine and no budgets.
//
// The bucketize argument may be nil to disable merging of adjacent branches.
func Simplify[F constraints.Float](n Node[F], bucketize Bucketizer[F]) (Node[F], error) {
	s := &Simplifier[F]{Bucketize: bucketize, Concurrency: 1}
	return s.Simplify(n)
}

// A Simplifier converts forests into single trees by repeatedly resolving the
// feature which is checked most often across the members of the forest.
//
// The output may be exponentially larger than the input, since every
// combination of cut points along a path can end up with its own branch.
// The budgets can be used to give up early on such inputs.
type Simplifier[F constraints.Float] struct {
	// Bucketize, if non-nil, is used to merge adjacent branches whose leaves
	// fall in the same bucket. This changes the leaf values of the result.
	Bucketize Bucketizer[F]

	// MaxDepth, if non-zero, limits the number of nested branches.
	MaxDepth int

	// MaxNodes, if non-zero, limits the number of trees and leaves built.
	MaxNodes int

	// Timeout, if non-zero, limits the total running time.
	Timeout time.Duration

	// Concurrency is the maximum number of Goroutines used to simplify
	// sibling branches. If 0 or negative, GOMAXPROCS is used.
	Concurrency int

	// Verbose, if true, logs the chosen splits near the root.
	Verbose bool
}

// Simplify converts a node into a tree which evaluates to the same value for
// every assignment.
//
// Budget violations result in an ErrResourceExhausted.
func (s *Simplifier[F]) Simplify(n Node[F]) (Node[F], error) {
	if err := Validate(n); err != nil {
		return nil, errors.Wrap(err, "simplify")
	}
	run := &simplifyRun[F]{
		Simplifier: s,
		Queue:      newForkQueue[Node[F]](s.Concurrency),
	}
	if s.Timeout != 0 {
		run.Deadline = time.Now().Add(s.Timeout)
	}
	res := run.Queue.Run(func() Node[F] {
		return run.simplify(n, 0)
	})
	if err := run.Err(); err != nil {
		return nil, errors.Wrap(err, "simplify")
	}
	return res, nil
}

type simplifyRun[F constraints.Float] struct {
	*Simplifier[F]

	Queue    *forkQueue[Node[F]]
	Deadline time.Time

	numNodes int64
	failed   int32
	errLock  sync.Mutex
	err      error
}

// simplify returns nil after recording an error with fail().
func (s *simplifyRun[F]) simplify(n Node[F], depth int) Node[F] {
	if atomic.LoadInt32(&s.failed) != 0 {
		return nil
	}
	if !s.Deadline.IsZero() && !time.Now().Before(s.Deadline) {
		s.fail(errors.Wrapf(ErrResourceExhausted, "timeout of %v exceeded", s.Timeout))
		return nil
	}

	census := WeightedSplits(n)
	if len(census) == 0 {
		leaf, err := CollapseLeaves(n)
		if err != nil {
			s.fail(err)
			return nil
		}
		if !s.addNodes(1) {
			return nil
		}
		return leaf
	}

	if s.MaxDepth != 0 && depth >= s.MaxDepth {
		s.fail(errors.Wrapf(ErrResourceExhausted, "maximum depth %d exceeded", s.MaxDepth))
		return nil
	}

	splits := SelectSplits(census)
	if s.Verbose && depth < verboseMaxDepth {
		log.Printf("depth=%d weighted_splits=%d feature=%s splits=%d",
			depth, len(census), splits[0].Feature, len(splits))
	}

	tasks := make([]func() Node[F], len(splits))
	for i, split := range splits {
		split := split
		tasks[i] = func() Node[F] {
			sub, err := Filter(n, split)
			if err != nil {
				s.fail(err)
				return nil
			}
			return s.simplify(sub, depth+1)
		}
	}
	children := s.Queue.ForkAll(tasks)
	for _, child := range children {
		if child == nil {
			return nil
		}
	}

	splits, children = MergeBuckets(splits, children, s.Bucketize)
	if len(children) == 1 {
		return children[0]
	}
	if !s.addNodes(1) {
		return nil
	}
	return &Tree[F]{
		Feature:  splits[0].Feature,
		Splits:   splits,
		Children: children,
	}
}

func (s *simplifyRun[F]) addNodes(n int64) bool {
	total := atomic.AddInt64(&s.numNodes, n)
	if s.MaxNodes != 0 && total > int64(s.MaxNodes) {
		s.fail(errors.Wrapf(ErrResourceExhausted, "maximum node count %d exceeded", s.MaxNodes))
		return false
	}
	return true
}

func (s *simplifyRun[F]) fail(err error) {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	if s.err == nil {
		s.err = err
		atomic.StoreInt32(&s.failed, 1)
	}
}

func (s *simplifyRun[F]) Err() error {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	return s.err
}
