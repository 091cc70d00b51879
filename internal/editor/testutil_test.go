package editor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"studio/internal/raster"
)

func solidAsset(t *testing.T, width, height int, c color.RGBA) raster.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	data, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	asset, err := raster.NewAsset(data)
	if err != nil {
		t.Fatalf("build test asset: %v", err)
	}
	return asset
}

func loadedSession(t *testing.T, asset raster.Asset) *Session {
	t.Helper()
	s := NewSession()
	if _, err := s.LoadImage(asset); err != nil {
		t.Fatalf("load image: %v", err)
	}
	return s
}
