// Package tracker implements a process-wide registry of live resources such
// as connections, file handles, in-memory indices and pooled objects.
//
// Resources are registered with Track() along with a cleanup action and an
// optional idle-timeout and max-age policy. A background eviction loop
// periodically scans all records and reclaims resources that have been idle
// too long, lived too long, or whose cleanup has failed repeatedly. Callers
// signal activity with MarkActive() and MarkIdle(); marking a resource idle
// does not destroy it, reclamation is deferred to policy or to an explicit
// Cleanup() call.
//
// Cleanup actions come in two flavors. Synchronous actions are invoked
// directly from whatever goroutine triggers the cleanup. Asynchronous actions
// belong to a cooperative single-goroutine scheduling domain, and are handed
// over to a registered Scheduler and awaited with a bounded timeout. See the
// Scheduler interface and RunLoop implementation.
package tracker

import "github.com/felipepimentel/pepperpy-go/runtime"

var debug = runtime.Debug("tracker")
