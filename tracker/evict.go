package tracker

import (
	"time"

	"github.com/felipepimentel/pepperpy-go/runtime/atomics"
)

// startEvictionLoop spawns the background eviction goroutine if it isn't
// running. Caller must hold t.m.
func (t *Tracker) startEvictionLoop() {
	if t.loopRunning || t.closed {
		return
	}
	t.loopRunning = true
	t.stopLoop = make(chan struct{})
	go t.runEvictionLoop(t.stopLoop)
}

// stopEvictionLoop signals the eviction goroutine to exit. The goroutine
// exits promptly, independent of the scan interval. Tracking a new resource
// afterwards starts a fresh loop.
func (t *Tracker) stopEvictionLoop() {
	t.m.Lock()
	defer t.m.Unlock()

	if t.loopRunning {
		close(t.stopLoop)
		t.loopRunning = false
	}
}

func (t *Tracker) runEvictionLoop(stop <-chan struct{}) {
	debug("eviction loop started")
	for {
		t.m.Lock()
		interval := t.interval
		t.m.Unlock()

		timer := t.clock.Timer(interval)
		select {
		case <-timer.C:
			t.scan()
		case <-t.kick:
			// Interval changed, restart the wait
			timer.Stop()
		case <-stop:
			timer.Stop()
			debug("eviction loop stopped")
			return
		}
	}
}

// scan snapshots the record table under the lock, evaluates the eviction
// predicate for every record and cleans up matches outside the lock. A
// failure on one record doesn't block others in the same pass, and there is
// no ordering guarantee across records.
func (t *Tracker) scan() {
	sw := atomics.StopWatch{}
	sw.Start()
	now := t.clock.Now()

	t.m.Lock()
	var victims []string
	for id, r := range t.records {
		if t.shouldCleanup(r, now) {
			victims = append(victims, id)
		}
	}
	t.m.Unlock()

	for _, id := range victims {
		t.cleanupRecord(id)
	}

	t.monitor.Measure("scan-duration", sw.Reset().Seconds()*1000)
	if len(victims) > 0 {
		debug("eviction scan selected %d resources", len(victims))
	}
}

// shouldCleanup is the eviction predicate, evaluated for every record on
// each scan. Caller must hold t.m.
func (t *Tracker) shouldCleanup(r *record, now time.Time) bool {
	// Terminal records are already in-flight or done
	if r.state.terminal() {
		return false
	}
	// Bounded-retry escalation, persistent failures eventually force a
	// cleanup attempt regardless of other policy
	if r.state == StateError && r.errorCount > maxCleanupRetries {
		return true
	}
	// Max-age applies regardless of state
	if r.maxAge > 0 && r.age(now) > r.maxAge {
		return true
	}
	// Idle-timeout applies to idle resources only
	if r.state == StateIdle && r.idleTimeout > 0 && r.idleTime(now) > r.idleTimeout {
		return true
	}
	return false
}
