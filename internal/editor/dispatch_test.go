package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/raster"
	"studio/internal/transform"
)

// fakeService answers every operation with a fixed asset or error and records
// the last request it saw.
type fakeService struct {
	result  raster.Asset
	err     error
	lastOp  string
	lastReq transform.Request

	// block, when set, holds the call open until released so tests can
	// observe the busy window.
	block chan struct{}
}

func (f *fakeService) answer(op string, req transform.Request) (raster.Asset, error) {
	f.lastOp = op
	f.lastReq = req
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return raster.Asset{}, f.err
	}
	return f.result, nil
}

func (f *fakeService) EditByHotspot(_ context.Context, req transform.Request) (raster.Asset, error) {
	return f.answer("retouch", req)
}

func (f *fakeService) Filter(_ context.Context, req transform.Request) (raster.Asset, error) {
	return f.answer("filter", req)
}

func (f *fakeService) Adjust(_ context.Context, req transform.Request) (raster.Asset, error) {
	return f.answer("adjust", req)
}

func (f *fakeService) FaceSwap(_ context.Context, req transform.Request) (raster.Asset, error) {
	return f.answer("face-swap", req)
}

func (f *fakeService) RemoveBackground(_ context.Context, req transform.Request) (raster.Asset, error) {
	return f.answer("background-remove", req)
}

func newTestDispatcher(svc transform.Service) *Dispatcher {
	return NewDispatcher(svc, zerolog.Nop())
}

func TestRetouchCommitsEditedImage(t *testing.T) {
	original := solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255})
	edited := solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})
	svc := &fakeService{result: edited}
	d := newTestDispatcher(svc)
	s := loadedSession(t, original)

	if err := s.SetHotspot(transform.Hotspot{X: 2, Y: 3}); err != nil {
		t.Fatalf("set hotspot: %v", err)
	}
	if err := d.Retouch(context.Background(), s, "remove the blemish", "", false); err != nil {
		t.Fatalf("retouch: %v", err)
	}

	state := s.State()
	if !bytes.Equal(state.Layers[0].Asset.Data, edited.Data) {
		t.Fatalf("active layer should carry the edited image")
	}
	if state.HistoryLen != 2 || !state.CanUndo {
		t.Fatalf("successful edit must commit a snapshot")
	}
	if state.Hotspot != nil {
		t.Fatalf("commit must clear the hotspot")
	}
	if svc.lastReq.Hotspot == nil || svc.lastReq.Hotspot.X != 2 || svc.lastReq.Hotspot.Y != 3 {
		t.Fatalf("hotspot not forwarded: %+v", svc.lastReq.Hotspot)
	}
	if svc.lastReq.Instruction != "remove the blemish" {
		t.Fatalf("instruction not forwarded: %q", svc.lastReq.Instruction)
	}
}

func TestRetouchValidation(t *testing.T) {
	svc := &fakeService{result: solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})}
	d := newTestDispatcher(svc)
	s := loadedSession(t, solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255}))

	if err := d.Retouch(context.Background(), s, "   ", "", false); !IsValidation(err) {
		t.Fatalf("blank instruction: got %v, want validation error", err)
	}
	if err := d.Retouch(context.Background(), s, "fix it", "", false); !IsValidation(err) {
		t.Fatalf("missing hotspot: got %v, want validation error", err)
	}
	if svc.lastOp != "" {
		t.Fatalf("service must not be called when validation fails")
	}
}

func TestEditWithoutImage(t *testing.T) {
	d := newTestDispatcher(&fakeService{})
	s := NewSession()
	if err := d.Filter(context.Background(), s, "anime", "", false); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestFailedEditPreservesState(t *testing.T) {
	original := solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255})
	svc := &fakeService{err: errors.New("model overloaded")}
	d := newTestDispatcher(svc)
	s := loadedSession(t, original)

	err := d.Filter(context.Background(), s, "noir", "", false)
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("got %v, want *OpError", err)
	}
	if opErr.Op != "filter" {
		t.Fatalf("op = %q, want filter", opErr.Op)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("cause missing from %q", err.Error())
	}

	state := s.State()
	if !bytes.Equal(state.Layers[0].Asset.Data, original.Data) {
		t.Fatalf("failed edit must leave the layer untouched")
	}
	if state.HistoryLen != 1 {
		t.Fatalf("failed edit must not commit, history len = %d", state.HistoryLen)
	}
	if state.Busy {
		t.Fatalf("busy flag must be cleared after a failure")
	}
}

func TestConcurrentEditRejectedWhileBusy(t *testing.T) {
	original := solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255})
	svc := &fakeService{
		result: solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255}),
		block:  make(chan struct{}),
	}
	d := newTestDispatcher(svc)
	s := loadedSession(t, original)

	done := make(chan error, 1)
	go func() {
		done <- d.Filter(context.Background(), s, "noir", "", false)
	}()

	// Wait until the in-flight call marks the session busy.
	for !s.Busy() {
		runtime.Gosched()
	}

	if err := d.Filter(context.Background(), s, "sepia", "", false); !errors.Is(err, ErrBusy) {
		t.Fatalf("second edit: got %v, want ErrBusy", err)
	}
	if _, err := s.AddLayer("Overlay", original); !errors.Is(err, ErrBusy) {
		t.Fatalf("mutation while busy: got %v, want ErrBusy", err)
	}
	if s.Undo() {
		t.Fatalf("undo while busy must be a no-op")
	}

	close(svc.block)
	if err := <-done; err != nil {
		t.Fatalf("first edit: %v", err)
	}
	if s.Busy() {
		t.Fatalf("busy flag must clear after completion")
	}
}

func TestAdjustForwardsReference(t *testing.T) {
	svc := &fakeService{result: solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})}
	d := newTestDispatcher(svc)
	s := loadedSession(t, solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255}))

	ref := solidAsset(t, 4, 4, color.RGBA{B: 255, A: 255})
	if err := s.SetReference(ref); err != nil {
		t.Fatalf("set reference: %v", err)
	}
	if err := d.Adjust(context.Background(), s, "warm up the tones", "", false); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if svc.lastReq.Reference == nil || !bytes.Equal(svc.lastReq.Reference.Data, ref.Data) {
		t.Fatalf("reference not forwarded")
	}
	if s.State().HasReference {
		t.Fatalf("commit must clear the reference")
	}
}

func TestFaceSwapRequiresReference(t *testing.T) {
	svc := &fakeService{result: solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})}
	d := newTestDispatcher(svc)
	s := loadedSession(t, solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255}))

	if err := d.FaceSwap(context.Background(), s, "", false); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	if err := s.SetReference(solidAsset(t, 4, 4, color.RGBA{B: 255, A: 255})); err != nil {
		t.Fatalf("set reference: %v", err)
	}
	if err := d.FaceSwap(context.Background(), s, "", false); err != nil {
		t.Fatalf("face swap: %v", err)
	}
}

func TestTransparentPreferenceForwarded(t *testing.T) {
	svc := &fakeService{result: solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})}
	d := newTestDispatcher(svc)
	s := loadedSession(t, solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255}))

	if err := d.RemoveBackground(context.Background(), s, "", true); err != nil {
		t.Fatalf("remove background: %v", err)
	}
	if !svc.lastReq.Transparent {
		t.Fatalf("transparent flag not forwarded")
	}
}

func TestUndoAfterEditRestoresOriginal(t *testing.T) {
	original := solidAsset(t, 8, 8, color.RGBA{R: 255, A: 255})
	edited := solidAsset(t, 8, 8, color.RGBA{G: 255, A: 255})
	svc := &fakeService{result: edited}
	d := newTestDispatcher(svc)
	s := loadedSession(t, original)

	if err := d.Filter(context.Background(), s, "noir", "", false); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if !bytes.Equal(s.State().Layers[0].Asset.Data, original.Data) {
		t.Fatalf("undo must restore the pre-edit image")
	}
	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	if !bytes.Equal(s.State().Layers[0].Asset.Data, edited.Data) {
		t.Fatalf("redo must restore the edited image")
	}
}

func TestCropReplacesDocument(t *testing.T) {
	d := newTestDispatcher(&fakeService{})
	s := loadedSession(t, solidAsset(t, 16, 16, color.RGBA{R: 255, A: 255}))
	if _, err := s.AddLayer("Overlay", solidAsset(t, 16, 16, color.RGBA{G: 255, A: 255})); err != nil {
		t.Fatalf("add layer: %v", err)
	}

	if err := d.Crop(s, image.Rect(2, 2, 10, 8), 0); err != nil {
		t.Fatalf("crop: %v", err)
	}

	state := s.State()
	if len(state.Layers) != 1 {
		t.Fatalf("crop must flatten to a single layer, got %d", len(state.Layers))
	}
	if state.Layers[0].Name != "Cropped Image" {
		t.Fatalf("layer name = %q, want Cropped Image", state.Layers[0].Name)
	}
	if state.Layers[0].Asset.Width != 8 || state.Layers[0].Asset.Height != 6 {
		t.Fatalf("cropped size = %dx%d, want 8x6",
			state.Layers[0].Asset.Width, state.Layers[0].Asset.Height)
	}
	if state.HistoryLen != 3 {
		t.Fatalf("crop must commit, history len = %d", state.HistoryLen)
	}
}

func TestCropScalesDisplayCoordinates(t *testing.T) {
	d := newTestDispatcher(&fakeService{})
	s := loadedSession(t, solidAsset(t, 100, 100, color.RGBA{R: 255, A: 255}))

	// Selection made on a 50px-wide preview of a 100px-wide image.
	if err := d.Crop(s, image.Rect(10, 10, 30, 30), 50); err != nil {
		t.Fatalf("crop: %v", err)
	}
	layer := s.State().Layers[0]
	if layer.Asset.Width != 40 || layer.Asset.Height != 40 {
		t.Fatalf("cropped size = %dx%d, want 40x40", layer.Asset.Width, layer.Asset.Height)
	}
}

func TestCropRejectsEmptySelection(t *testing.T) {
	d := newTestDispatcher(&fakeService{})
	s := loadedSession(t, solidAsset(t, 16, 16, color.RGBA{R: 255, A: 255}))

	if err := d.Crop(s, image.Rect(5, 5, 5, 9), 0); !IsValidation(err) {
		t.Fatalf("zero-width rect: got %v, want validation error", err)
	}
	if err := d.Crop(s, image.Rect(20, 20, 30, 30), 0); !IsValidation(err) {
		t.Fatalf("rect outside image: got %v, want validation error", err)
	}
}

func TestCropNothingVisible(t *testing.T) {
	d := newTestDispatcher(&fakeService{})
	s := loadedSession(t, solidAsset(t, 16, 16, color.RGBA{R: 255, A: 255}))
	layer := s.State().Layers[0]
	if err := s.SetVisibility(layer.ID, false); err != nil {
		t.Fatalf("set visibility: %v", err)
	}

	if err := d.Crop(s, image.Rect(0, 0, 8, 8), 0); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}
