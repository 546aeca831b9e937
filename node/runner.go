package node

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/arkavo-org/iroh-go/errors"
)

// runnerWorkers is the number of task goroutines owned by each node.
const runnerWorkers = 4

// runner is a node's private task execution context. Tasks submitted
// after close are rejected; tasks already picked up run to completion.
type runner struct {
	tasks chan func()
	quit  chan struct{}
	wg    conc.WaitGroup
	once  sync.Once
}

func newRunner() *runner {
	r := &runner{
		tasks: make(chan func(), 64),
		quit:  make(chan struct{}),
	}
	for i := 0; i < runnerWorkers; i++ {
		r.wg.Go(r.work)
	}
	return r
}

func (r *runner) work() {
	for {
		select {
		case <-r.quit:
			return
		case task := <-r.tasks:
			task()
		}
	}
}

func (r *runner) submit(task func()) error {
	select {
	case <-r.quit:
		return errors.Closed(errors.PhaseRuntime, "node runner")
	case r.tasks <- task:
		return nil
	}
}

// stream runs task on its own runner-tracked goroutine. For long-lived
// loops that would otherwise occupy a worker; close waits for the task
// to return.
func (r *runner) stream(task func()) error {
	select {
	case <-r.quit:
		return errors.Closed(errors.PhaseRuntime, "node runner")
	default:
	}
	r.wg.Go(task)
	return nil
}

// close stops the workers. In-flight tasks finish; queued tasks that no
// worker picked up are dropped.
func (r *runner) close() {
	r.once.Do(func() {
		close(r.quit)
	})
	r.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// run executes fn on the runner and blocks the caller until it finishes.
func run[T any](r *runner, fn func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	if err := r.submit(func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}); err != nil {
		var zero T
		return zero, err
	}
	res := <-ch
	return res.value, res.err
}

// runTimeout is run racing a timer. On timeout the task is abandoned:
// it still runs, its result is discarded, and the caller gets a timeout
// error.
func runTimeout[T any](r *runner, d time.Duration, op string, fn func() (T, error)) (T, error) {
	if d <= 0 {
		return run(r, fn)
	}

	ch := make(chan result[T], 1)
	if err := r.submit(func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}); err != nil {
		var zero T
		return zero, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.value, res.err
	case <-timer.C:
		Logger().Warn("operation timed out, abandoning task",
			zap.String("op", op), zap.Duration("timeout", d))
		var zero T
		return zero, errors.Timeout(op, uint64(d/time.Millisecond))
	}
}
