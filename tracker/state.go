package tracker

// State is the lifecycle phase of a tracked resource.
//
// Legal transitions are:
//
//	CREATED -> ACTIVE <-> IDLE -> CLOSING -> CLOSED
//
// with ERROR reachable from any state but CLOSED, including CLOSING when a
// cleanup action fails. CLOSED is terminal. A resource in ERROR remains
// tracked and may be retried or force-evicted.
type State int

// Resource lifecycle states.
const (
	StateCreated State = iota
	StateActive
	StateIdle
	StateClosing
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	}
	return "unknown"
}

// terminal returns true if no cleanup should be attempted in this state,
// either because cleanup is already in-flight or because it has completed.
func (s State) terminal() bool {
	return s == StateClosing || s == StateClosed
}

// canTransition returns true if moving from s to the given state is legal.
func (s State) canTransition(to State) bool {
	switch to {
	case StateActive:
		return s == StateCreated || s == StateActive || s == StateIdle
	case StateIdle:
		return s == StateCreated || s == StateActive || s == StateIdle
	case StateClosing:
		return !s.terminal()
	case StateClosed:
		return s == StateClosing
	case StateError:
		return s != StateClosed
	}
	return false
}
