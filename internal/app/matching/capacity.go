package matching

// CapacityTracker holds run-scoped ACTIVE match counts per buddy against a
// fixed ceiling. It is not safe for concurrent use; a run owns its tracker.
type CapacityTracker struct {
	ceiling int
	counts  map[string]int
}

// NewCapacityTracker seeds a tracker with the persisted ACTIVE counts
func NewCapacityTracker(ceiling int, initial map[string]int) *CapacityTracker {
	counts := make(map[string]int, len(initial))
	for id, n := range initial {
		counts[id] = n
	}
	return &CapacityTracker{ceiling: ceiling, counts: counts}
}

// HasCapacity reports whether buddyID is below the ceiling
func (t *CapacityTracker) HasCapacity(buddyID string) bool {
	return t.counts[buddyID] < t.ceiling
}

// Increment records one more ACTIVE match for buddyID
func (t *CapacityTracker) Increment(buddyID string) {
	t.counts[buddyID]++
}

// Count returns the tracked ACTIVE count for buddyID
func (t *CapacityTracker) Count(buddyID string) int {
	return t.counts[buddyID]
}
