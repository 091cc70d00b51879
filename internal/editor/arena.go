package editor

import (
	"crypto/sha256"
	"encoding/hex"
	"image"
	"sync"

	"studio/internal/raster"
)

// Arena reference-counts decoded pixel buffers keyed by image content. A
// handle stays alive exactly as long as something retains it, which in
// practice is the set of history snapshots referencing that image plus at
// most one pending acquisition during an edit. Releasing the last reference
// evicts the pixels.
type Arena struct {
	mu      sync.Mutex
	entries map[string]*arenaEntry
}

type arenaEntry struct {
	img  image.Image
	refs int
}

func NewArena() *Arena {
	return &Arena{entries: make(map[string]*arenaEntry)}
}

// Acquire decodes the asset (or reuses cached pixels for identical content)
// and returns its handle holding one reference, which the caller must release
// once the handle has been handed over to a snapshot.
func (a *Arena) Acquire(asset raster.Asset) (string, error) {
	key := handleKey(asset.Data)

	a.mu.Lock()
	if entry, ok := a.entries[key]; ok {
		entry.refs++
		a.mu.Unlock()
		return key, nil
	}
	a.mu.Unlock()

	// Decode outside the lock; edits on other sessions should not stall
	// behind a large decode.
	img, err := asset.Decode()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if entry, ok := a.entries[key]; ok {
		entry.refs++
		return key, nil
	}
	a.entries[key] = &arenaEntry{img: img, refs: 1}
	return key, nil
}

// Retain adds a reference to an existing handle. Unknown handles are ignored;
// the compositor falls back to decoding from the asset if pixels are gone.
func (a *Arena) Retain(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if entry, ok := a.entries[key]; ok {
		entry.refs++
	}
}

// Release drops a reference, evicting the pixels when none remain.
func (a *Arena) Release(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(a.entries, key)
	}
}

// Image returns the decoded pixels for a handle, if retained.
func (a *Arena) Image(key string) (image.Image, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[key]
	if !ok {
		return nil, false
	}
	return entry.img, true
}

// Len reports how many distinct images are currently retained.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func handleKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
