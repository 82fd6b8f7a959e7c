package canvas

// HistoryCapacity bounds the undo stack; the oldest snapshot is dropped
// once the limit is reached.
const HistoryCapacity = 50

// history is a bounded stack of deep state snapshots. A snapshot is
// pushed before every mutating command, so undo replaces the whole state.
type history struct {
	snapshots []State
	capacity  int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &history{
		snapshots: make([]State, 0, capacity),
		capacity:  capacity,
	}
}

// Push stores a deep copy of the state, discarding the oldest snapshot
// when full.
func (h *history) Push(s State) {
	if len(h.snapshots) >= h.capacity {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
	}
	h.snapshots = append(h.snapshots, s.Clone())
}

// Pop removes and returns the most recent snapshot. The second return is
// false when the stack is empty.
func (h *history) Pop() (State, bool) {
	if len(h.snapshots) == 0 {
		return State{}, false
	}
	s := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return s, true
}

// Len returns the number of stored snapshots.
func (h *history) Len() int {
	return len(h.snapshots)
}

// Clear drops all snapshots.
func (h *history) Clear() {
	h.snapshots = h.snapshots[:0]
}
