package tracker

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/felipepimentel/pepperpy-go/runtime/atomics"
)

// A Scheduler is a handle to the cooperative scheduling domain, a single
// goroutine that asynchronous cleanup actions must run on. The eviction loop
// and other plain goroutines never call asynchronous actions directly, they
// submit them to a Scheduler and block on the result.
//
// Submit must run fn on the scheduler's goroutine and return its error, or
// return early with ctx.Err() if the context expires before fn completes.
// Submit must be safe to call concurrently.
type Scheduler interface {
	Submit(ctx context.Context, fn func(ctx context.Context) error) error
}

type schedulerJob struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// RunLoop is a Scheduler backed by a dedicated goroutine that executes
// submitted functions one at a time. Jobs are handed over a channel and the
// submitter blocks on a reply channel, so the two concurrency domains only
// ever interact through message passing.
type RunLoop struct {
	jobs    chan *schedulerJob
	stopped atomics.Once
}

// NewRunLoop creates a RunLoop and starts its goroutine.
func NewRunLoop() *RunLoop {
	l := &RunLoop{
		jobs: make(chan *schedulerJob),
	}
	go l.run()
	return l
}

func (l *RunLoop) run() {
	for {
		select {
		case j := <-l.jobs:
			j.result <- runJob(j)
		case <-l.stopped.Done():
			return
		}
	}
}

// runJob invokes the job function, converting a panic into an error so a
// broken cleanup action cannot take down the run-loop.
func runJob(j *schedulerJob) (err error) {
	defer func() {
		if crash := recover(); crash != nil {
			err = fmt.Errorf("job panicked: %v", crash)
		}
	}()
	return j.fn(j.ctx)
}

// Submit runs fn on the run-loop goroutine and waits for it to finish.
// Returns the error from fn, or ctx.Err() if ctx expires first, in which case
// fn may still be running: it is expected to honor ctx and abort.
func (l *RunLoop) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	j := &schedulerJob{
		ctx: ctx,
		fn:  fn,
		// Buffered so the run-loop never blocks on a submitter that gave up
		result: make(chan error, 1),
	}

	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timed out submitting job to run-loop")
	case <-l.stopped.Done():
		return ErrSchedulerStopped
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timed out waiting for job result")
	}
}

// Stop causes the run-loop goroutine to exit once the job in progress, if
// any, has finished. Submit calls after Stop return ErrSchedulerStopped.
// Stop is idempotent.
func (l *RunLoop) Stop() {
	l.stopped.Do(nil)
}
