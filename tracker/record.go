package tracker

import (
	"context"
	"time"
)

// A CleanupFunc releases the underlying resource. It is invoked directly from
// whatever goroutine triggers the cleanup.
type CleanupFunc func(resource interface{}) error

// An AsyncCleanupFunc releases the underlying resource from the cooperative
// scheduling domain. It is never called directly, instead it is submitted to
// the Scheduler registered with SetScheduler and awaited with a bounded
// timeout. The given context carries that deadline and implementations should
// respect it.
type AsyncCleanupFunc func(ctx context.Context, resource interface{}) error

// record is the tracker's internal bookkeeping entry for one resource.
// All fields are guarded by the tracker's lock.
type record struct {
	id           string
	resource     interface{}
	resourceType ResourceType
	state        State

	cleanup      CleanupFunc
	asyncCleanup AsyncCleanupFunc

	// Zero means no limit for the given dimension.
	idleTimeout time.Duration
	maxAge      time.Duration

	createdAt  time.Time
	lastUsed   time.Time
	errorCount int
	metadata   map[string]string
}

// age of the record relative to now
func (r *record) age(now time.Time) time.Duration {
	return now.Sub(r.createdAt)
}

// idleTime since the record was last used, relative to now
func (r *record) idleTime(now time.Time) time.Duration {
	return now.Sub(r.lastUsed)
}
