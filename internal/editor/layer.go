package editor

import (
	"github.com/google/uuid"

	"studio/internal/raster"
)

// Layer is one named, orderable, opacity- and visibility-controlled image
// contributing to the composite. The ID is immutable and unique within a
// layer set. Handle references the decoded pixels in the session arena and is
// regenerated whenever Asset changes.
type Layer struct {
	ID      string
	Name    string
	Opacity int // 0-100
	Visible bool
	Asset   raster.Asset
	Handle  string
}

func newLayer(name string, asset raster.Asset, handle string) Layer {
	return Layer{
		ID:      uuid.NewString(),
		Name:    name,
		Opacity: 100,
		Visible: true,
		Asset:   asset,
		Handle:  handle,
	}
}

// Snapshot is an immutable recorded state of the full layer set at one point
// in edit history.
type Snapshot struct {
	Layers []Layer
}

func cloneLayers(layers []Layer) []Layer {
	if layers == nil {
		return nil
	}
	out := make([]Layer, len(layers))
	copy(out, layers)
	return out
}
