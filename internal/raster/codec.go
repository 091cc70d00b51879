package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"

	// DefaultJPEGQuality is used when a caller does not specify one.
	DefaultJPEGQuality = 90
)

// Asset is an encoded image plus the metadata the editor needs without
// decoding it again: MIME type and native resolution.
type Asset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// NewAsset sniffs the MIME type and reads the image header. It fails on
// anything the codec cannot decode so malformed uploads are rejected at the
// boundary instead of during compositing.
func NewAsset(data []byte) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, errors.New("raster: empty image data")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("raster: decode header: %w", err)
	}
	return Asset{
		Data:   data,
		MIME:   sniffMIME(data),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Decode returns the full pixel buffer for the asset.
func (a Asset) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("raster: decode image: %w", err)
	}
	return img, nil
}

// EncodePNG serializes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG serializes img as JPEG bytes with the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("raster: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode serializes img using the requested MIME type, defaulting to PNG for
// anything unrecognized, and returns the bytes plus the MIME actually used.
func Encode(img image.Image, mime string, quality int) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case MIMEJPEG, "image/jpg", "jpeg", "jpg":
		data, err := EncodeJPEG(img, quality)
		return data, MIMEJPEG, err
	default:
		data, err := EncodePNG(img)
		return data, MIMEPNG, err
	}
}

// Scale resamples img to width x height using bilinear interpolation. The
// same scaler is used everywhere so flattened output stays reproducible.
func Scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

func sniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return MIMEPNG
	}
	return mime
}
