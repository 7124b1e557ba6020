package onetree

import (
	"runtime"
	"sync/atomic"
)

type forkQueueTask[T any] struct {
	claimed int32
	fn      func() T
	done    chan T
}

func newForkQueueTask[T any](fn func() T) *forkQueueTask[T] {
	return &forkQueueTask[T]{fn: fn, done: make(chan T, 1)}
}

// Claim marks the task as started and reports whether the caller is the
// first to do so.
func (f *forkQueueTask[T]) Claim() bool {
	return atomic.SwapInt32(&f.claimed, 1) == 0
}

// A forkQueue runs a recursive computation on a bounded pool of Goroutines.
// The root task is started with Run(), and any task may call ForkAll() to
// split into sub-tasks which idle workers can pick up.
//
// A nil *forkQueue runs everything on the calling Goroutine.
type forkQueue[T any] struct {
	queue chan *forkQueueTask[T]
}

func newForkQueue[T any](numWorkers int) *forkQueue[T] {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers == 1 {
		return nil
	}
	res := &forkQueue[T]{
		queue: make(chan *forkQueueTask[T], numWorkers*1000),
	}
	for i := 0; i < numWorkers; i++ {
		go res.worker()
	}
	return res
}

// Run executes the root task and then stops the workers.
func (f *forkQueue[T]) Run(fn func() T) T {
	if f == nil {
		return fn()
	}
	defer close(f.queue)
	task := newForkQueueTask(fn)
	f.queue <- task
	return <-task.done
}

// ForkAll runs every function and returns the results in order.
//
// The first function always runs on the calling Goroutine. Afterwards, the
// caller runs any sub-task that no worker has claimed yet.
func (f *forkQueue[T]) ForkAll(fns []func() T) []T {
	results := make([]T, len(fns))
	if f == nil || len(fns) < 2 {
		for i, fn := range fns {
			results[i] = fn()
		}
		return results
	}

	pending := make([]*forkQueueTask[T], 0, len(fns)-1)
	for _, fn := range fns[1:] {
		task := newForkQueueTask(fn)
		select {
		case f.queue <- task:
		default:
			// The queue is full, so the work stays here.
			task.Claim()
			task.done <- fn()
		}
		pending = append(pending, task)
	}

	results[0] = fns[0]()
	for i, task := range pending {
		if task.Claim() {
			results[i+1] = task.fn()
		} else {
			results[i+1] = <-task.done
		}
	}
	return results
}

func (f *forkQueue[T]) worker() {
	for task := range f.queue {
		if task.Claim() {
			task.done <- task.fn()
		}
	}
}
