package transform

import (
	"context"

	"studio/internal/raster"
)

// Hotspot is a pixel coordinate in the source image's native resolution that
// localizes a retouch instruction.
type Hotspot struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Request carries one normalized editing call. Not every field applies to
// every operation; validation of required fields happens in the editor before
// a request is built.
type Request struct {
	// Image is the layer being edited.
	Image raster.Asset
	// Instruction is the user's free-text description of the edit. For
	// Filter it names the style to apply.
	Instruction string
	// Hotspot localizes a retouch edit. Nil for other operations.
	Hotspot *Hotspot
	// Reference is the secondary image for face swaps and reference-guided
	// adjustments. Nil when absent.
	Reference *raster.Asset
	// Auxiliary is an extra instruction appended verbatim to the prompt.
	Auxiliary string
	// Transparent requests a transparent background in the output.
	Transparent bool
	// ScalePercent scales the affected region of a hotspot edit (100 = the
	// source's own scale). Zero means unspecified.
	ScalePercent int
}

// Service is the external generative collaborator performing all AI-driven
// edits. Every method returns exactly one edited image or an error; callers
// treat any failure uniformly.
type Service interface {
	EditByHotspot(ctx context.Context, req Request) (raster.Asset, error)
	Filter(ctx context.Context, req Request) (raster.Asset, error)
	Adjust(ctx context.Context, req Request) (raster.Asset, error)
	FaceSwap(ctx context.Context, req Request) (raster.Asset, error)
	RemoveBackground(ctx context.Context, req Request) (raster.Asset, error)
}
