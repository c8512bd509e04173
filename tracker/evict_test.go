package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanEvictsIdleResources(t *testing.T) {
	tr, mock, _ := newTestTracker(t)

	id, err := tr.Track("r", nil, Options{IdleTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	tr.MarkIdle(id)

	// Not yet expired, never evicted before the timeout
	mock.Add(50 * time.Millisecond)
	tr.scan()
	assert.Equal(t, 1, tr.Stats().Current)

	mock.Add(150 * time.Millisecond)
	tr.scan()
	assert.Equal(t, 0, tr.Stats().Current)
	assert.Equal(t, 1, tr.Stats().CleanedUp)
}

func TestScanIgnoresActiveIdleTimeout(t *testing.T) {
	tr, mock, _ := newTestTracker(t)

	id, err := tr.Track("r", nil, Options{IdleTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	tr.MarkActive(id)

	mock.Add(time.Hour)
	tr.scan()
	assert.Equal(t, 1, tr.Stats().Current)
}

func TestScanEvictsByMaxAgeRegardlessOfState(t *testing.T) {
	tr, mock, _ := newTestTracker(t)

	id, err := tr.Track("r", nil, Options{MaxAge: time.Minute})
	require.NoError(t, err)
	tr.MarkActive(id)

	mock.Add(30 * time.Second)
	tr.scan()
	assert.Equal(t, 1, tr.Stats().Current)

	mock.Add(31 * time.Second)
	tr.scan()
	assert.Equal(t, 0, tr.Stats().Current)
}

func TestScanActivityRefreshResetsIdleClock(t *testing.T) {
	tr, mock, _ := newTestTracker(t)

	id, err := tr.Track("r", nil, Options{IdleTimeout: time.Second})
	require.NoError(t, err)
	tr.MarkIdle(id)

	mock.Add(900 * time.Millisecond)
	tr.MarkActive(id)
	tr.MarkIdle(id)

	mock.Add(900 * time.Millisecond)
	tr.scan()
	assert.Equal(t, 1, tr.Stats().Current)

	mock.Add(200 * time.Millisecond)
	tr.scan()
	assert.Equal(t, 0, tr.Stats().Current)
}

func TestScanEscalatesRepeatedFailures(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	failures := 0
	id, err := tr.Track("r", func(interface{}) error {
		if failures < 4 {
			failures++
			return assert.AnError
		}
		return nil
	}, Options{})
	require.NoError(t, err)

	// Fail 4 times, pushing errorCount past the retry threshold
	for i := 0; i < 4; i++ {
		assert.False(t, tr.Cleanup(id))
	}

	// No idle/age policy on this record, yet the scan must now select it
	tr.scan()
	assert.Equal(t, 0, tr.Stats().Current)
	assert.Equal(t, 1, tr.Stats().CleanedUp)
}

func TestScanLeavesFailuresBelowThreshold(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	id, err := tr.Track("r", func(interface{}) error {
		return assert.AnError
	}, Options{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.False(t, tr.Cleanup(id))
	}

	tr.scan()
	assert.Equal(t, 1, tr.Stats().Current)
	assert.Equal(t, 3, tr.Stats().Errors)
}

func TestEvictionLoopRunsInBackground(t *testing.T) {
	tr, mock, _ := newTestTracker(t)

	id, err := tr.Track("r", nil, Options{IdleTimeout: time.Second})
	require.NoError(t, err)
	tr.MarkIdle(id)

	tr.m.Lock()
	running := tr.loopRunning
	tr.m.Unlock()
	require.True(t, running, "tracking a resource should start the eviction loop")

	// Give the loop goroutine a chance to arm its timer before advancing
	time.Sleep(20 * time.Millisecond)
	mock.Add(defaultCleanupInterval + time.Second)

	assert.Eventually(t, func() bool {
		return tr.Stats().Current == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEvictionLoopStopsPromptly(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	_, err := tr.Track("r", nil, Options{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		tr.stopEvictionLoop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stopping the eviction loop should not wait for the scan interval")
	}
}

func TestTrackingRestartsEvictionLoop(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	_, err := tr.Track("r1", nil, Options{})
	require.NoError(t, err)
	tr.CleanupAll()

	tr.m.Lock()
	running := tr.loopRunning
	tr.m.Unlock()
	require.False(t, running)

	_, err = tr.Track("r2", nil, Options{})
	require.NoError(t, err)

	tr.m.Lock()
	running = tr.loopRunning
	tr.m.Unlock()
	assert.True(t, running)
}

func TestShouldCleanupSkipsTerminalStates(t *testing.T) {
	tr, mock, _ := newTestTracker(t)
	now := mock.Now()

	r := &record{state: StateClosing, maxAge: time.Nanosecond, createdAt: now.Add(-time.Hour)}
	assert.False(t, tr.shouldCleanup(r, now))

	r.state = StateClosed
	assert.False(t, tr.shouldCleanup(r, now))

	r.state = StateError
	assert.True(t, tr.shouldCleanup(r, now), "max-age applies to resources in error state")
}
