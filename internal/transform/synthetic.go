package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"studio/internal/raster"
)

// syntheticEdit applies a deterministic local edit in place of the remote
// call. The output depends only on the source pixels, the operation and the
// prompt, so undo/redo and compositing behavior can be verified end-to-end
// without network access.
func syntheticEdit(op, prompt string, req Request) (raster.Asset, error) {
	src, err := req.Image.Decode()
	if err != nil {
		return raster.Asset{}, err
	}

	bounds := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), src, bounds.Min, draw.Src)

	switch op {
	case "background-remove":
		punchBackground(out)
	default:
		tint := colorFromSeed(deterministicSeed(op, prompt), 0)
		tint.A = 96
		draw.Draw(out, out.Bounds(), &image.Uniform{tint}, image.Point{}, draw.Over)
		if req.Hotspot != nil {
			markHotspot(out, req.Hotspot)
		}
		if req.Transparent {
			punchBackground(out)
		}
	}

	data, err := raster.EncodePNG(out)
	if err != nil {
		return raster.Asset{}, err
	}
	return raster.NewAsset(data)
}

// punchBackground clears everything outside a centered region, standing in
// for a real subject cutout.
func punchBackground(img *image.RGBA) {
	b := img.Bounds()
	insetX, insetY := b.Dx()/6, b.Dy()/6
	keep := image.Rect(b.Min.X+insetX, b.Min.Y+insetY, b.Max.X-insetX, b.Max.Y-insetY)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !image.Pt(x, y).In(keep) {
				img.SetRGBA(x, y, color.RGBA{})
			}
		}
	}
}

// markHotspot stamps a small accent square at the hotspot so localized edits
// are visually and byte-wise distinguishable from global ones.
func markHotspot(img *image.RGBA, spot *Hotspot) {
	b := img.Bounds()
	const r = 4
	accent := color.RGBA{R: 255, A: 255}
	for y := spot.Y - r; y <= spot.Y+r; y++ {
		for x := spot.X - r; x <= spot.X+r; x++ {
			if image.Pt(x, y).In(b) {
				img.SetRGBA(x, y, accent)
			}
		}
	}
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	r := mustParseHexByte(segment[0:2])
	g := mustParseHexByte(segment[2:4])
	b := mustParseHexByte(segment[4:6])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func mustParseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
