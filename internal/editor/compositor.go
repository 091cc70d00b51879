package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"studio/internal/raster"
)

// Flatten renders all visible layers, bottom to top in stored order, into one
// raster image. Layer opacity acts as a linear alpha multiplier; invisible
// layers contribute nothing. The canvas takes the first visible layer's
// native resolution and later layers are stretched to match. Returns nil when
// no layer is visible.
//
// Given the same layer set (content, opacity, visibility, order) the output
// is bit-for-bit reproducible.
func Flatten(arena *Arena, layers []Layer) (*image.RGBA, error) {
	var canvas *image.RGBA

	for _, layer := range layers {
		if !layer.Visible {
			continue
		}
		src, err := layerImage(arena, layer)
		if err != nil {
			return nil, fmt.Errorf("flatten layer %q: %w", layer.Name, err)
		}

		if canvas == nil {
			canvas = image.NewRGBA(image.Rect(0, 0, layer.Asset.Width, layer.Asset.Height))
		}

		bounds := canvas.Bounds()
		if src.Bounds().Dx() != bounds.Dx() || src.Bounds().Dy() != bounds.Dy() {
			src = raster.Scale(src, bounds.Dx(), bounds.Dy())
		}

		opacity := layer.Opacity
		if opacity < 0 {
			opacity = 0
		} else if opacity > 100 {
			opacity = 100
		}
		alpha := uint8(opacity * 255 / 100)
		if alpha == 255 {
			draw.Draw(canvas, bounds, src, src.Bounds().Min, draw.Over)
			continue
		}
		mask := image.NewUniform(color.Alpha{A: alpha})
		draw.DrawMask(canvas, bounds, src, src.Bounds().Min, mask, image.Point{}, draw.Over)
	}

	return canvas, nil
}

func layerImage(arena *Arena, layer Layer) (image.Image, error) {
	if arena != nil {
		if img, ok := arena.Image(layer.Handle); ok {
			return img, nil
		}
	}
	// Handle evicted or never acquired; decode straight from the asset.
	return layer.Asset.Decode()
}
