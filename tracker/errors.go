package tracker

import "errors"

var (
	// ErrNoScheduler is returned from cleanup of an asynchronous resource when
	// no Scheduler has been registered with SetScheduler. This is a
	// configuration error, the resource is marked StateError and retained.
	ErrNoScheduler = errors.New("no scheduler registered for asynchronous cleanup")

	// ErrTrackerClosed is returned from Track and TrackAsync after Close has
	// been called on the tracker.
	ErrTrackerClosed = errors.New("tracker has been closed")

	// ErrSchedulerStopped is returned from RunLoop.Submit after the run-loop
	// has been stopped.
	ErrSchedulerStopped = errors.New("scheduler run-loop has been stopped")
)
