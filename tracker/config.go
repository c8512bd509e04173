package tracker

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/felipepimentel/pepperpy-go/runtime"
)

const (
	defaultCleanupInterval = 60 * time.Second
	minCleanupInterval     = 1 * time.Second
	defaultCleanupTimeout  = 5 * time.Second

	// maxCleanupRetries is the number of failed cleanup attempts after which
	// a resource is force-evicted on the next scan regardless of idle/age
	// policy, bounding retries so broken resources don't accumulate forever.
	maxCleanupRetries = 3
)

// Config holds options for New. The zero value is valid, all fields have
// sensible defaults.
type Config struct {
	// CleanupInterval is the wake-up interval of the background eviction
	// loop. Defaults to 60s, values below 1s are clamped to 1s.
	CleanupInterval time.Duration

	// CleanupTimeout bounds how long a cleanup submitted to the Scheduler may
	// take before the resource is marked StateError. Defaults to 5s.
	CleanupTimeout time.Duration

	// Monitor used for logging, metrics and error reports. Defaults to a
	// logging monitor at warn level.
	Monitor runtime.Monitor

	// Clock to use for timestamps and timers, defaults to the wall clock.
	// Tests inject clock.NewMock() for deterministic eviction.
	Clock clock.Clock

	// Registerer, if non-nil, gets a prometheus collector exposing the
	// tracker's aggregate statistics.
	Registerer prometheus.Registerer
}

// Options are per-resource options for Track and TrackAsync.
type Options struct {
	// ID is a stable handle distinguishing this resource from every other
	// live resource. If empty a random identity is generated. Tracking an ID
	// that is already present is non-fatal: the existing identity is returned
	// and a duplicate-registration warning is logged.
	ID string

	// Type classifies the resource, defaults to TypeCustom.
	Type ResourceType

	// IdleTimeout is the maximum time the resource may remain idle before it
	// becomes eligible for eviction. Zero means no idle limit.
	IdleTimeout time.Duration

	// MaxAge is the maximum total lifetime of the resource, enforced
	// regardless of activity. Zero means no age limit.
	MaxAge time.Duration

	// Metadata is copied at registration and carried as tags on cleanup
	// failure reports.
	Metadata map[string]string
}
