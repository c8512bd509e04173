package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/felipepimentel/pepperpy-go/runtime"
	"github.com/felipepimentel/pepperpy-go/runtime/atomics"
)

// Tracker is a registry of live resources with policy-driven reclamation.
//
// A single mutual-exclusion lock guards the record table and the aggregate
// counters. The lock is held for map mutation and predicate evaluation only,
// never for the cleanup action itself, so a slow cleanup doesn't block
// unrelated Track and Mark calls.
//
// The host application owns the Tracker's lifetime and is expected to call
// Close() at shutdown. There is deliberately no process-exit hook, keep one
// Tracker per process as a convention, not a hidden global.
type Tracker struct {
	m       sync.Mutex
	monitor runtime.Monitor
	clock   clock.Clock

	records   map[string]*record
	scheduler Scheduler
	inFlight  atomics.Counter

	interval time.Duration
	timeout  time.Duration

	// Counters, tracked and cleanedUp are cumulative for the lifetime of the
	// tracker, errorCount counts individual cleanup failures.
	tracked    int
	cleanedUp  int
	errorCount int

	loopRunning bool
	stopLoop    chan struct{}
	kick        chan struct{}
	closed      bool
}

// New creates a Tracker from the given Config. The background eviction loop
// is not started until the first resource is tracked.
func New(config Config) *Tracker {
	if config.Monitor == nil {
		config.Monitor = runtime.NewLoggingMonitor("warn", nil)
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = defaultCleanupInterval
	}
	if config.CleanupInterval < minCleanupInterval {
		config.CleanupInterval = minCleanupInterval
	}
	if config.CleanupTimeout <= 0 {
		config.CleanupTimeout = defaultCleanupTimeout
	}

	t := &Tracker{
		monitor:  config.Monitor.WithPrefix("tracker"),
		clock:    config.Clock,
		records:  make(map[string]*record),
		interval: config.CleanupInterval,
		timeout:  config.CleanupTimeout,
		kick:     make(chan struct{}, 1),
	}
	if config.Registerer != nil {
		config.Registerer.MustRegister(newStatsCollector(t))
	}
	return t
}

// Track registers a resource with a synchronous cleanup action and returns
// its identity. The background eviction loop is started if it isn't running.
//
// Registering an Options.ID that is already present is non-fatal, the
// existing identity is returned and a warning is logged.
func (t *Tracker) Track(resource interface{}, cleanup CleanupFunc, opts Options) (string, error) {
	return t.track(resource, cleanup, nil, opts)
}

// TrackAsync registers a resource whose cleanup action belongs to the
// cooperative scheduling domain. The action is never invoked directly, it is
// submitted to the Scheduler registered with SetScheduler and awaited with a
// bounded timeout. Cleanup fails with ErrNoScheduler if no scheduler has been
// registered by the time it runs.
func (t *Tracker) TrackAsync(resource interface{}, cleanup AsyncCleanupFunc, opts Options) (string, error) {
	return t.track(resource, nil, cleanup, opts)
}

func (t *Tracker) track(resource interface{}, cleanup CleanupFunc, asyncCleanup AsyncCleanupFunc, opts Options) (string, error) {
	t.m.Lock()
	defer t.m.Unlock()

	if t.closed {
		return "", ErrTrackerClosed
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewRandom().String()
	} else if existing, ok := t.records[id]; ok {
		t.monitor.Warnf("duplicate registration of resource %s (type: %s), returning existing identity", id, existing.resourceType)
		return id, nil
	}

	metadata := make(map[string]string, len(opts.Metadata))
	for k, v := range opts.Metadata {
		metadata[k] = v
	}

	now := t.clock.Now()
	t.records[id] = &record{
		id:           id,
		resource:     resource,
		resourceType: opts.Type,
		state:        StateCreated,
		cleanup:      cleanup,
		asyncCleanup: asyncCleanup,
		idleTimeout:  opts.IdleTimeout,
		maxAge:       opts.MaxAge,
		createdAt:    now,
		lastUsed:     now,
		metadata:     metadata,
	}
	t.tracked++
	t.monitor.Count("tracked", 1)
	t.startEvictionLoop()

	debug("tracking %s resource %s (idleTimeout: %s, maxAge: %s)", opts.Type, id, opts.IdleTimeout, opts.MaxAge)
	return id, nil
}

// Untrack removes the record for id without invoking its cleanup action.
// This is intended for resources whose lifetime is externally managed after
// hand-off. Returns false if the identity is unknown.
func (t *Tracker) Untrack(id string) bool {
	t.m.Lock()
	defer t.m.Unlock()

	if _, ok := t.records[id]; !ok {
		t.monitor.Warnf("cannot untrack unknown resource %s", id)
		return false
	}
	delete(t.records, id)
	debug("untracked resource %s without cleanup", id)
	return true
}

// MarkActive marks the resource as in active use and refreshes its last-used
// timestamp. No-op if the identity is unknown or the resource is being
// cleaned up.
func (t *Tracker) MarkActive(id string) {
	t.mark(id, StateActive)
}

// MarkIdle marks the resource as no-longer in active use. This does not clean
// it up, reclamation is deferred to the idle-timeout policy or an explicit
// Cleanup call.
func (t *Tracker) MarkIdle(id string) {
	t.mark(id, StateIdle)
}

func (t *Tracker) mark(id string, state State) {
	t.m.Lock()
	defer t.m.Unlock()

	r, ok := t.records[id]
	if !ok {
		t.monitor.Warnf("cannot mark unknown resource %s as %s", id, state)
		return
	}
	if !r.state.canTransition(state) {
		debug("ignoring transition %s -> %s for resource %s", r.state, state, id)
		return
	}
	r.state = state
	r.lastUsed = t.clock.Now()
}

// Cleanup transitions the resource to StateClosing, invokes its cleanup
// action and removes the record. Returns true if the resource was cleaned up
// and removed.
//
// On failure (action error, panic, submission timeout or missing scheduler)
// the resource is marked StateError, its error count is incremented and the
// record is retained for retry or forced eviction. Returns false if the
// identity is unknown or another cleanup for it is already in flight, only
// one of two overlapping Cleanup calls proceeds past the closing check.
func (t *Tracker) Cleanup(id string) bool {
	t.m.Lock()
	_, ok := t.records[id]
	t.m.Unlock()
	if !ok {
		t.monitor.Warnf("cannot cleanup unknown resource %s", id)
		return false
	}

	cleaned, _ := t.cleanupRecord(id)
	return cleaned
}

// cleanupRecord attempts cleanup of id. Returns (true, nil) if the resource
// was cleaned up and its record removed, (false, nil) if there was nothing to
// do (unknown identity or cleanup already in flight) and (false, err) if the
// cleanup action failed.
func (t *Tracker) cleanupRecord(id string) (bool, error) {
	t.m.Lock()
	r, ok := t.records[id]
	if !ok {
		t.m.Unlock()
		debug("skipping cleanup of unknown resource %s", id)
		return false, nil
	}
	if r.state.terminal() {
		t.m.Unlock()
		debug("cleanup of resource %s already in flight", id)
		return false, nil
	}
	r.state = StateClosing
	t.inFlight.Add(1)
	defer t.inFlight.Add(-1)
	syncCleanup := r.cleanup
	asyncCleanup := r.asyncCleanup
	resource := r.resource
	scheduler := t.scheduler
	timeout := t.timeout
	t.m.Unlock()

	// Run the action outside the lock
	var err error
	sw := atomics.StopWatch{}
	sw.Start()
	if asyncCleanup != nil {
		err = t.submitCleanup(scheduler, asyncCleanup, resource, timeout)
	} else {
		err = runCleanup(syncCleanup, resource)
	}
	t.monitor.Measure("cleanup-duration", sw.Reset().Seconds()*1000)

	t.m.Lock()
	defer t.m.Unlock()

	if err != nil {
		r.state = StateError
		r.errorCount++
		t.errorCount++
		t.monitor.Count("cleanup-errors", 1)
		t.monitor.WithTags(r.metadata).WithTag("resourceId", id).ReportWarning(err, "failed to cleanup resource")
		return false, err
	}

	r.state = StateClosed
	delete(t.records, id)
	t.cleanedUp++
	t.monitor.Count("cleaned-up", 1)
	debug("cleaned up %s resource %s", r.resourceType, id)
	return true, nil
}

// submitCleanup hands an asynchronous cleanup action over to the cooperative
// scheduling domain and blocks on the result with a bounded timeout. Absence
// of a registered scheduler is itself a cleanup failure.
func (t *Tracker) submitCleanup(scheduler Scheduler, cleanup AsyncCleanupFunc, resource interface{}, timeout time.Duration) error {
	if scheduler == nil {
		return ErrNoScheduler
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return scheduler.Submit(ctx, func(ctx context.Context) error {
		return cleanup(ctx, resource)
	})
}

// runCleanup invokes a synchronous cleanup action, converting a panic into an
// error so a broken action is counted as a cleanup failure instead of taking
// down the caller.
func runCleanup(cleanup CleanupFunc, resource interface{}) (err error) {
	defer func() {
		if crash := recover(); crash != nil {
			err = errors.Errorf("cleanup action panicked: %v", crash)
		}
	}()
	if cleanup == nil {
		return nil
	}
	return cleanup(resource)
}

// CleanupByType cleans up every tracked resource of the given type. Returns
// the number of resources cleaned up and the number of cleanup failures.
// Individual failures don't stop the batch.
func (t *Tracker) CleanupByType(resourceType ResourceType) (int, int) {
	t.m.Lock()
	var ids []string
	for id, r := range t.records {
		if r.resourceType == resourceType && !r.state.terminal() {
			ids = append(ids, id)
		}
	}
	t.m.Unlock()

	return t.cleanupBatch(ids, "cleanup-by-type")
}

// CleanupIdle cleans up every idle resource whose idle time exceeds maxIdle,
// or its own idle-timeout if maxIdle is zero. Resources with neither limit
// are not selected. Returns (cleaned, failures).
func (t *Tracker) CleanupIdle(maxIdle time.Duration) (int, int) {
	now := t.clock.Now()

	t.m.Lock()
	var ids []string
	for id, r := range t.records {
		if r.state != StateIdle {
			continue
		}
		limit := r.idleTimeout
		if maxIdle > 0 {
			limit = maxIdle
		}
		if limit > 0 && r.idleTime(now) > limit {
			ids = append(ids, id)
		}
	}
	t.m.Unlock()

	return t.cleanupBatch(ids, "cleanup-idle")
}

// CleanupAll stops the eviction loop, then cleans up every remaining
// resource regardless of state. Intended for process shutdown. Returns
// (cleaned, failures), resources that fail cleanup remain in the registry in
// StateError.
func (t *Tracker) CleanupAll() (int, int) {
	t.stopEvictionLoop()

	t.m.Lock()
	ids := make([]string, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	t.m.Unlock()

	return t.cleanupBatch(ids, "cleanup-all")
}

func (t *Tracker) cleanupBatch(ids []string, op string) (int, int) {
	var cleaned, failed int
	var merr error
	for _, id := range ids {
		done, err := t.cleanupRecord(id)
		if err != nil {
			failed++
			merr = multierr.Append(merr, errors.Wrapf(err, "resource %s", id))
			continue
		}
		if done {
			cleaned++
		}
	}
	if merr != nil {
		t.monitor.ReportWarning(merr, op, " completed with ", failed, " failures")
	}
	debug("%s cleaned up %d resources, %d failures", op, cleaned, failed)
	return cleaned, failed
}

// SetScheduler registers the handle to the cooperative scheduling domain that
// asynchronous cleanup actions are submitted to.
//
// Replacing the scheduler while asynchronous cleanups are in flight is safe:
// in-flight submissions complete on the scheduler they were submitted to, the
// tracker reads the handle under its lock once per cleanup call.
func (t *Tracker) SetScheduler(scheduler Scheduler) {
	t.m.Lock()
	defer t.m.Unlock()

	if t.scheduler != nil && t.scheduler != scheduler {
		debug("replacing registered scheduler")
	}
	t.scheduler = scheduler
}

// SetCleanupInterval changes the wake-up interval of the eviction loop.
// Values below 1s are clamped to 1s. Takes effect immediately, the loop is
// nudged to restart its wait.
func (t *Tracker) SetCleanupInterval(interval time.Duration) {
	if interval < minCleanupInterval {
		interval = minCleanupInterval
	}

	t.m.Lock()
	t.interval = interval
	t.m.Unlock()

	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// Close stops the eviction loop, cleans up all remaining resources and
// rejects further registrations. Blocks until cleanups in flight on other
// goroutines have finished. Idempotent. The host application is expected to
// call this at shutdown, there is no implicit process-exit hook.
func (t *Tracker) Close() error {
	t.m.Lock()
	alreadyClosed := t.closed
	t.closed = true
	t.m.Unlock()

	if alreadyClosed {
		return nil
	}

	cleaned, failed := t.CleanupAll()
	t.inFlight.WaitForZero()
	debug("closed tracker, cleaned up %d resources, %d failures", cleaned, failed)
	if failed > 0 {
		return errors.Errorf("failed to cleanup %d resources at shutdown", failed)
	}
	return nil
}
