package managed

import (
	"context"
	"time"

	"github.com/felipepimentel/pepperpy-go/tracker"
)

// An AsyncManager creates and destroys resources that live in the
// cooperative scheduling domain. CleanupResource is registered via
// TrackAsync, so it runs on the tracker's Scheduler, never on the goroutine
// that triggers eviction.
type AsyncManager interface {
	// CreateResource creates a new instance of the managed resource. The
	// context belongs to the acquiring caller.
	CreateResource(ctx context.Context) (interface{}, error)
	// CleanupResource releases the given resource. It is submitted to the
	// tracker's registered Scheduler with a bounded timeout carried in ctx.
	CleanupResource(ctx context.Context, resource interface{}) error
}

// AsyncResourceManager is the asynchronous counterpart of ResourceManager.
type AsyncResourceManager struct {
	manager      AsyncManager
	tracker      *tracker.Tracker
	name         string
	resourceType tracker.ResourceType
	idleTimeout  time.Duration
	maxAge       time.Duration
}

// NewAsyncResourceManager wraps manager so that resources it creates are
// tracked with asynchronous cleanup actions.
func NewAsyncResourceManager(manager AsyncManager, t *tracker.Tracker, name string, resourceType tracker.ResourceType, idleTimeout, maxAge time.Duration) *AsyncResourceManager {
	return &AsyncResourceManager{
		manager:      manager,
		tracker:      t,
		name:         name,
		resourceType: resourceType,
		idleTimeout:  idleTimeout,
		maxAge:       maxAge,
	}
}

// Acquire creates a resource, registers it with the tracker and marks it
// active. Returns the resource and the identity to use with Release.
func (m *AsyncResourceManager) Acquire(ctx context.Context) (interface{}, string, error) {
	resource, err := m.manager.CreateResource(ctx)
	if err != nil {
		return nil, "", err
	}

	id, err := m.tracker.TrackAsync(resource, m.manager.CleanupResource, tracker.Options{
		Type:        m.resourceType,
		IdleTimeout: m.idleTimeout,
		MaxAge:      m.maxAge,
		Metadata:    map[string]string{"manager": m.name},
	})
	if err != nil {
		// Tracker is closed, don't leak the resource we just created
		m.manager.CleanupResource(ctx, resource)
		return nil, "", err
	}

	m.tracker.MarkActive(id)
	debug("manager %s acquired resource %s", m.name, id)
	return resource, id, nil
}

// Release marks the resource idle, leaving reclamation to the tracker.
func (m *AsyncResourceManager) Release(id string) {
	m.tracker.MarkIdle(id)
	debug("manager %s released resource %s", m.name, id)
}
