package handlers

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/audit"
	"studio/internal/editor"
	"studio/internal/prefs"
)

type editRequest struct {
	Instruction  string `json:"instruction"`
	Auxiliary    string `json:"auxiliary"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	DisplayWidth int    `json:"display_width"`
}

// EditRetouch applies a localized edit at the selected hotspot.
func (a *App) EditRetouch(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "retouch", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		return a.Dispatcher.Retouch(ctx, s, req.Instruction, req.Auxiliary, transparent)
	})
}

// EditFilter applies a whole-image stylistic filter.
func (a *App) EditFilter(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "filter", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		return a.Dispatcher.Filter(ctx, s, req.Instruction, req.Auxiliary, transparent)
	})
}

// EditAdjust applies a global adjustment.
func (a *App) EditAdjust(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "adjustment", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		return a.Dispatcher.Adjust(ctx, s, req.Instruction, req.Auxiliary, transparent)
	})
}

// EditFaceSwap swaps the subject's face with the session reference image.
func (a *App) EditFaceSwap(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "face swap", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		return a.Dispatcher.FaceSwap(ctx, s, req.Auxiliary, transparent)
	})
}

// EditBackgroundRemove cuts the subject out of its background.
func (a *App) EditBackgroundRemove(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "background removal", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		return a.Dispatcher.RemoveBackground(ctx, s, req.Auxiliary, transparent)
	})
}

// EditCrop rasterizes the composite into the selected region, replacing the
// layer stack with a single "Cropped Image" layer. Computed locally.
func (a *App) EditCrop(w http.ResponseWriter, r *http.Request) {
	a.runEdit(w, r, "crop", func(ctx context.Context, s *editor.Session, req editRequest, transparent bool) error {
		rect := image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)
		return a.Dispatcher.Crop(s, rect, req.DisplayWidth)
	})
}

// runEdit is the shared shape of every edit endpoint: resolve the session,
// decode the request, read the transparency preference, dispatch, audit the
// outcome and return the refreshed state.
func (a *App) runEdit(w http.ResponseWriter, r *http.Request, op string, run func(context.Context, *editor.Session, editRequest, bool) error) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var req editRequest
	if r.Body != nil {
		// An empty body is fine for operations with no parameters.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	transparent, err := a.Prefs.TransparentBackground(r.Context(), prefs.DefaultOwner)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("preferences unavailable; assuming opaque background")
		transparent = false
	}

	started := time.Now()
	err = run(r.Context(), s, req, transparent)

	entry := audit.Entry{
		SessionID: s.ID,
		Op:        op,
		OK:        err == nil,
		Elapsed:   time.Since(started),
	}
	if err != nil {
		entry.Message = err.Error()
	}
	a.Audit.Record(r.Context(), entry)

	if err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}
