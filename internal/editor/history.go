package editor

// History holds the ordered snapshot sequence with a cursor. The active state
// is always the snapshot at the cursor. It owns one arena reference per layer
// per retained snapshot, released when a snapshot is evicted.
type History struct {
	arena     *Arena
	snapshots []Snapshot
	cursor    int
}

func NewHistory(arena *Arena) *History {
	return &History{arena: arena, cursor: -1}
}

// Commit truncates any redo tail past the cursor, appends the snapshot and
// advances the cursor. The snapshot must not be mutated afterwards.
func (h *History) Commit(snap Snapshot) {
	for _, evicted := range h.snapshots[h.cursor+1:] {
		h.releaseSnapshot(evicted)
	}
	h.snapshots = h.snapshots[:h.cursor+1]

	for _, layer := range snap.Layers {
		h.arena.Retain(layer.Handle)
	}
	h.snapshots = append(h.snapshots, snap)
	h.cursor++
}

// Undo moves the cursor back one snapshot and returns it. It is a no-op at
// the start of history.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return h.snapshots[h.cursor], true
}

// Redo is symmetric to Undo at the tail end.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return h.snapshots[h.cursor], true
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.snapshots[h.cursor], true
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.snapshots)-1
}

func (h *History) Len() int {
	return len(h.snapshots)
}

func (h *History) Cursor() int {
	return h.cursor
}

// Reset evicts every snapshot and returns history to the empty state.
func (h *History) Reset() {
	for _, snap := range h.snapshots {
		h.releaseSnapshot(snap)
	}
	h.snapshots = nil
	h.cursor = -1
}

func (h *History) releaseSnapshot(snap Snapshot) {
	for _, layer := range snap.Layers {
		h.arena.Release(layer.Handle)
	}
}
