package editor

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/raster"
	"studio/internal/transform"
)

// Session is one editing document: the active layer set, its history, the
// decoded-pixel arena and the transient inputs that have not been committed
// yet (hotspot, secondary reference image, scale). All mutation goes through
// the session mutex; while a transform is in flight the busy flag rejects
// every mutating call, so the layer set and cursor are never touched
// concurrently.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
	busy     bool

	arena   *Arena
	history *History

	// layers mirrors the snapshot at the history cursor and is the only
	// mutable copy; opacity drags scrub it without committing.
	layers   []Layer
	activeID string

	hotspot      *transform.Hotspot
	reference    *raster.Asset
	scalePercent int
}

// State is a read-only view of a session for presentation.
type State struct {
	ID           string
	Layers       []Layer
	ActiveID     string
	Cursor       int
	HistoryLen   int
	CanUndo      bool
	CanRedo      bool
	Busy         bool
	Hotspot      *transform.Hotspot
	HasReference bool
	ScalePercent int
}

func NewSession() *Session {
	arena := NewArena()
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		lastUsed:     now,
		arena:        arena,
		history:      NewHistory(arena),
		scalePercent: 100,
	}
}

// LoadImage resets the session around a freshly uploaded image, which becomes
// the single "Background" layer and the first history snapshot.
func (s *Session) LoadImage(asset raster.Asset) (Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return Layer{}, ErrBusy
	}
	s.resetLocked()

	handle, err := s.arena.Acquire(asset)
	if err != nil {
		return Layer{}, err
	}
	layer := newLayer("Background", asset, handle)
	s.layers = []Layer{layer}
	s.activeID = layer.ID
	s.commitLocked()
	s.arena.Release(handle)
	return layer, nil
}

// AddLayer appends a new topmost layer and commits.
func (s *Session) AddLayer(name string, asset raster.Asset) (Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return Layer{}, ErrBusy
	}
	if len(s.layers) == 0 {
		return Layer{}, validationf("load an image before adding layers")
	}
	handle, err := s.arena.Acquire(asset)
	if err != nil {
		return Layer{}, err
	}
	if name == "" {
		name = "Layer"
	}
	layer := newLayer(name, asset, handle)
	s.layers = append(s.layers, layer)
	s.activeID = layer.ID
	s.commitLocked()
	s.arena.Release(handle)
	return layer, nil
}

// RemoveLayer deletes a layer and commits. Removing the last remaining layer
// resets the whole session: layers, history and the active-layer reference
// all become empty at once.
func (s *Session) RemoveLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNoSuchLayer
	}
	if len(s.layers) == 1 {
		s.resetLocked()
		return nil
	}
	s.layers = append(s.layers[:idx], s.layers[idx+1:]...)
	if s.activeID == id {
		// Topmost remaining layer becomes active.
		s.activeID = s.layers[len(s.layers)-1].ID
	}
	s.commitLocked()
	return nil
}

// Reorder restacks the layer set to match ids, which must be a permutation of
// the current layer IDs, and commits.
func (s *Session) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if len(ids) != len(s.layers) {
		return validationf("layer order must name every layer exactly once")
	}
	next := make([]Layer, 0, len(s.layers))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return validationf("layer order must name every layer exactly once")
		}
		seen[id] = true
		idx := s.indexOfLocked(id)
		if idx < 0 {
			return ErrNoSuchLayer
		}
		next = append(next, s.layers[idx])
	}
	s.layers = next
	s.commitLocked()
	return nil
}

// SetOpacity scrubs a layer's opacity without committing, so a live slider
// drag does not flood the undo stack.
func (s *Session) SetOpacity(id string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNoSuchLayer
	}
	if value < 0 {
		value = 0
	} else if value > 100 {
		value = 100
	}
	s.layers[idx].Opacity = value
	return nil
}

// CommitOpacity records the current layer set, called on slider release.
func (s *Session) CommitOpacity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if len(s.layers) == 0 {
		return validationf("no image loaded")
	}
	s.commitLocked()
	return nil
}

// SetVisibility toggles a layer and commits immediately.
func (s *Session) SetVisibility(id string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNoSuchLayer
	}
	s.layers[idx].Visible = visible
	s.commitLocked()
	return nil
}

// SelectLayer changes the active layer and clears the hotspot, which is only
// meaningful relative to the layer it was picked on.
func (s *Session) SelectLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if s.indexOfLocked(id) < 0 {
		return ErrNoSuchLayer
	}
	if s.activeID != id {
		s.activeID = id
		s.hotspot = nil
	}
	return nil
}

// SetHotspot records the retouch target in native pixel coordinates.
func (s *Session) SetHotspot(h transform.Hotspot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	layer, ok := s.activeLayerLocked()
	if !ok {
		return validationf("no image loaded")
	}
	if h.X < 0 || h.Y < 0 || h.X >= layer.Asset.Width || h.Y >= layer.Asset.Height {
		return validationf("hotspot (%d, %d) is outside the image", h.X, h.Y)
	}
	s.hotspot = &h
	return nil
}

func (s *Session) ClearHotspot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotspot = nil
}

// SetReference stores the secondary image used by face swap and
// reference-guided adjustments.
func (s *Session) SetReference(asset raster.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.reference = &asset
	return nil
}

func (s *Session) ClearReference() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reference = nil
}

// SetScale stores the retouch subject scale percentage.
func (s *Session) SetScale(percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if percent < 10 || percent > 400 {
		return validationf("scale must be between 10 and 400 percent")
	}
	s.scalePercent = percent
	return nil
}

// Undo republishes the previous snapshot as current. No-op at the start of
// history.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restoreLocked(snap)
	return true
}

// Redo is symmetric to Undo at the tail end.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restoreLocked(snap)
	return true
}

// Flatten composites the current layer set.
func (s *Session) Flatten() (*image.RGBA, error) {
	s.mu.Lock()
	layers := cloneLayers(s.layers)
	s.mu.Unlock()
	return Flatten(s.arena, layers)
}

// Layers returns a copy of the current layer set, bottom to top.
func (s *Session) Layers() []Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLayers(s.layers)
}

// ActiveLayer returns the currently selected layer.
func (s *Session) ActiveLayer() (Layer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLayerLocked()
}

// Snapshot of presentation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hotspot *transform.Hotspot
	if s.hotspot != nil {
		h := *s.hotspot
		hotspot = &h
	}
	return State{
		ID:           s.ID,
		Layers:       cloneLayers(s.layers),
		ActiveID:     s.activeID,
		Cursor:       s.history.Cursor(),
		HistoryLen:   s.history.Len(),
		CanUndo:      s.history.CanUndo(),
		CanRedo:      s.history.CanRedo(),
		Busy:         s.busy,
		Hotspot:      hotspot,
		HasReference: s.reference != nil,
		ScalePercent: s.scalePercent,
	}
}

// Busy reports whether a transform is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Empty reports whether the session has no layers loaded.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers) == 0
}

// RetainedImages reports how many decoded images history currently pins.
func (s *Session) RetainedImages() int {
	return s.arena.Len()
}

// Touch marks the session as recently used for TTL sweeping.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// LastUsed returns the last activity time.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) activeLayerLocked() (Layer, bool) {
	idx := s.indexOfLocked(s.activeID)
	if idx < 0 {
		return Layer{}, false
	}
	return s.layers[idx], true
}

func (s *Session) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, layer := range s.layers {
		if layer.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked records the working set as a new snapshot and clears the
// transient editing state, per the history contract.
func (s *Session) commitLocked() {
	s.history.Commit(Snapshot{Layers: cloneLayers(s.layers)})
	s.clearTransientLocked()
}

func (s *Session) restoreLocked(snap Snapshot) {
	s.layers = cloneLayers(snap.Layers)
	if s.indexOfLocked(s.activeID) < 0 {
		if len(s.layers) > 0 {
			s.activeID = s.layers[len(s.layers)-1].ID
		} else {
			s.activeID = ""
		}
	}
	s.clearTransientLocked()
}

func (s *Session) resetLocked() {
	s.history.Reset()
	s.layers = nil
	s.activeID = ""
	s.clearTransientLocked()
}

func (s *Session) clearTransientLocked() {
	s.hotspot = nil
	s.reference = nil
	s.scalePercent = 100
}
