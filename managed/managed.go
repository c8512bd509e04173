// Package managed provides a scoped-acquisition abstraction on top of the
// tracker package. Application code implements a small Manager interface,
// resource creation and resource cleanup, and gets automatic tracking of the
// resources it creates.
//
// Release marks a resource idle rather than destroying it. The caller
// signals "no longer in active use" and the tracker decides when reclamation
// actually happens, driven by the manager's idle-timeout and max-age policy.
package managed

import (
	"time"

	"github.com/felipepimentel/pepperpy-go/runtime"
	"github.com/felipepimentel/pepperpy-go/tracker"
)

var debug = runtime.Debug("managed")

// A Manager creates and destroys resources of one kind. Implementations are
// handed to NewResourceManager, which wires CleanupResource in as the
// tracked cleanup action.
type Manager interface {
	// CreateResource creates a new instance of the managed resource.
	CreateResource() (interface{}, error)
	// CleanupResource releases the given resource. Called at most once per
	// resource while a cleanup is in flight, and never concurrently for the
	// same resource.
	CleanupResource(resource interface{}) error
}

// ResourceManager tracks resources produced by a Manager.
type ResourceManager struct {
	manager      Manager
	tracker      *tracker.Tracker
	name         string
	resourceType tracker.ResourceType
	idleTimeout  time.Duration
	maxAge       time.Duration
}

// NewResourceManager wraps manager so that resources it creates are tracked
// with the given type and idle-timeout/max-age policy. The name is carried
// in record metadata to identify the owning manager in logs and stats.
func NewResourceManager(manager Manager, t *tracker.Tracker, name string, resourceType tracker.ResourceType, idleTimeout, maxAge time.Duration) *ResourceManager {
	return &ResourceManager{
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
func (m *ResourceManager) Acquire() (interface{}, string, error) {
	resource, err := m.manager.CreateResource()
	if err != nil {
		return nil, "", err
	}

	id, err := m.tracker.Track(resource, m.manager.CleanupResource, tracker.Options{
		Type:        m.resourceType,
		IdleTimeout: m.idleTimeout,
		MaxAge:      m.maxAge,
		Metadata:    map[string]string{"manager": m.name},
	})
	if err != nil {
		// Tracker is closed, don't leak the resource we just created
		m.manager.CleanupResource(resource)
		return nil, "", err
	}

	m.tracker.MarkActive(id)
	debug("manager %s acquired resource %s", m.name, id)
	return resource, id, nil
}

// Release marks the resource idle. It does not clean it up, eviction is left
// to the tracker's policy or an explicit tracker.Cleanup call.
func (m *ResourceManager) Release(id string) {
	m.tracker.MarkIdle(id)
	debug("manager %s released resource %s", m.name, id)
}
