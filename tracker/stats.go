package tracker

// Stats is a point-in-time snapshot of the tracker's aggregate counters.
type Stats struct {
	// Tracked is the total number of resources ever registered
	Tracked int
	// CleanedUp is the total number of successful cleanups
	CleanedUp int
	// Errors is the total number of cleanup failures
	Errors int
	// Current is the number of resources currently in the registry
	Current int
	// ByType counts current resources by resource type
	ByType map[ResourceType]int
	// ByState counts current resources by lifecycle state
	ByState map[State]int
}

// Stats returns a snapshot of the tracker's counters. Read-only, no side
// effects.
func (t *Tracker) Stats() Stats {
	t.m.Lock()
	defer t.m.Unlock()

	s := Stats{
		Tracked:   t.tracked,
		CleanedUp: t.cleanedUp,
		Errors:    t.errorCount,
		Current:   len(t.records),
		ByType:    make(map[ResourceType]int),
		ByState:   make(map[State]int),
	}
	for _, r := range t.records {
		s.ByType[r.resourceType]++
		s.ByState[r.state]++
	}
	return s
}
