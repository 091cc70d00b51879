package editor

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"
	"time"

	"studio/internal/infra"
	"studio/internal/raster"
	"studio/internal/transform"
)

// Dispatcher runs the edit operations. Every remote operation follows the
// same shape: validate preconditions under the session lock, mark the session
// busy, invoke the transform service without holding the lock, then either
// commit the edited image as a new snapshot or surface an operation-named
// failure with the prior state intact.
type Dispatcher struct {
	svc    transform.Service
	logger infra.Logger
}

func NewDispatcher(svc transform.Service, logger infra.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, logger: logger}
}

// Retouch applies a localized edit at the selected hotspot.
func (d *Dispatcher) Retouch(ctx context.Context, s *Session, instruction, auxiliary string, transparent bool) error {
	return d.dispatch(ctx, s, "retouch", func(s *Session, layer Layer) (transform.Request, error) {
		if strings.TrimSpace(instruction) == "" {
			return transform.Request{}, validationf("describe the edit to make")
		}
		if s.hotspot == nil {
			return transform.Request{}, validationf("select an area on the image first")
		}
		hotspot := *s.hotspot
		return transform.Request{
			Image:        layer.Asset,
			Instruction:  instruction,
			Hotspot:      &hotspot,
			Auxiliary:    auxiliary,
			Transparent:  transparent,
			ScalePercent: s.scalePercent,
		}, nil
	}, d.svc.EditByHotspot)
}

// Filter applies a whole-image stylistic filter.
func (d *Dispatcher) Filter(ctx context.Context, s *Session, style, auxiliary string, transparent bool) error {
	return d.dispatch(ctx, s, "filter", func(s *Session, layer Layer) (transform.Request, error) {
		if strings.TrimSpace(style) == "" {
			return transform.Request{}, validationf("choose a filter style")
		}
		return transform.Request{
			Image:       layer.Asset,
			Instruction: style,
			Auxiliary:   auxiliary,
			Transparent: transparent,
		}, nil
	}, d.svc.Filter)
}

// Adjust applies a global adjustment, optionally guided by the session's
// secondary reference image.
func (d *Dispatcher) Adjust(ctx context.Context, s *Session, instruction, auxiliary string, transparent bool) error {
	return d.dispatch(ctx, s, "adjustment", func(s *Session, layer Layer) (transform.Request, error) {
		if strings.TrimSpace(instruction) == "" {
			return transform.Request{}, validationf("describe the adjustment to apply")
		}
		return transform.Request{
			Image:       layer.Asset,
			Instruction: instruction,
			Reference:   s.reference,
			Auxiliary:   auxiliary,
			Transparent: transparent,
		}, nil
	}, d.svc.Adjust)
}

// FaceSwap replaces the active layer subject's face with the one from the
// session's reference image.
func (d *Dispatcher) FaceSwap(ctx context.Context, s *Session, auxiliary string, transparent bool) error {
	return d.dispatch(ctx, s, "face swap", func(s *Session, layer Layer) (transform.Request, error) {
		if s.reference == nil {
			return transform.Request{}, validationf("upload a reference face image first")
		}
		return transform.Request{
			Image:       layer.Asset,
			Reference:   s.reference,
			Auxiliary:   auxiliary,
			Transparent: transparent,
		}, nil
	}, d.svc.FaceSwap)
}

// RemoveBackground cuts the active layer's subject out of its background.
func (d *Dispatcher) RemoveBackground(ctx context.Context, s *Session, auxiliary string, transparent bool) error {
	return d.dispatch(ctx, s, "background removal", func(s *Session, layer Layer) (transform.Request, error) {
		return transform.Request{
			Image:       layer.Asset,
			Auxiliary:   auxiliary,
			Transparent: transparent,
		}, nil
	}, d.svc.RemoveBackground)
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	s *Session,
	op string,
	build func(*Session, Layer) (transform.Request, error),
	call func(context.Context, transform.Request) (raster.Asset, error),
) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	layer, ok := s.activeLayerLocked()
	if !ok {
		s.mu.Unlock()
		return validationf("no image loaded")
	}
	req, err := build(s, layer)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	s.mu.Unlock()

	started := time.Now()
	asset, err := call(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("op", op).
			Str("session_id", s.ID).
			Dur("elapsed", time.Since(started)).
			Msg("edit failed")
		return &OpError{Op: op, Err: err}
	}

	if err := s.replaceImageLocked(layer.ID, asset); err != nil {
		return &OpError{Op: op, Err: err}
	}

	d.logger.Info().
		Str("op", op).
		Str("session_id", s.ID).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Dur("elapsed", time.Since(started)).
		Msg("edit committed")
	return nil
}

// Crop is computed entirely locally: it rasterizes the flattened composite,
// cuts out the selection, discards all other layers and commits a single new
// layer named "Cropped Image". Rect is in composite pixels; when displayWidth
// is non-zero the rect is scaled up from that display width to the native
// resolution first.
func (d *Dispatcher) Crop(s *Session, rect image.Rectangle, displayWidth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if len(s.layers) == 0 {
		return validationf("no image loaded")
	}
	rect = rect.Canon()
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return validationf("crop selection has no area")
	}

	flat, err := Flatten(s.arena, s.layers)
	if err != nil {
		return &OpError{Op: "crop", Err: err}
	}
	if flat == nil {
		return validationf("nothing visible to crop")
	}

	if displayWidth > 0 && displayWidth != flat.Bounds().Dx() {
		factor := float64(flat.Bounds().Dx()) / float64(displayWidth)
		rect = scaleRect(rect, factor)
	}
	rect = rect.Intersect(flat.Bounds())
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return validationf("crop selection is outside the image")
	}

	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(cropped, cropped.Bounds(), flat, rect.Min, draw.Src)
	data, err := raster.EncodePNG(cropped)
	if err != nil {
		return &OpError{Op: "crop", Err: err}
	}
	asset, err := raster.NewAsset(data)
	if err != nil {
		return &OpError{Op: "crop", Err: err}
	}
	handle, err := s.arena.Acquire(asset)
	if err != nil {
		return &OpError{Op: "crop", Err: fmt.Errorf("decode cropped image: %w", err)}
	}

	layer := newLayer("Cropped Image", asset, handle)
	s.layers = []Layer{layer}
	s.activeID = layer.ID
	s.commitLocked()
	s.arena.Release(handle)

	d.logger.Info().
		Str("op", "crop").
		Str("session_id", s.ID).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Msg("edit committed")
	return nil
}

func (s *Session) replaceImageLocked(layerID string, asset raster.Asset) error {
	idx := s.indexOfLocked(layerID)
	if idx < 0 {
		return ErrNoSuchLayer
	}
	handle, err := s.arena.Acquire(asset)
	if err != nil {
		return fmt.Errorf("decode edited image: %w", err)
	}
	s.layers[idx].Asset = asset
	s.layers[idx].Handle = handle
	s.commitLocked()
	s.arena.Release(handle)
	return nil
}

func scaleRect(r image.Rectangle, factor float64) image.Rectangle {
	return image.Rect(
		int(math.Round(float64(r.Min.X)*factor)),
		int(math.Round(float64(r.Min.Y)*factor)),
		int(math.Round(float64(r.Max.X)*factor)),
		int(math.Round(float64(r.Max.Y)*factor)),
	)
}
