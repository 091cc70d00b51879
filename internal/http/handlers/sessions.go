package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/editor"
	"studio/internal/transform"
)

type layerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Opacity int    `json:"opacity"`
	Visible bool   `json:"visible"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	MIME    string `json:"mime"`
}

type stateResponse struct {
	SessionID    string             `json:"session_id"`
	Layers       []layerResponse    `json:"layers"`
	ActiveID     string             `json:"active_layer_id,omitempty"`
	Cursor       int                `json:"cursor"`
	HistoryLen   int                `json:"history_len"`
	CanUndo      bool               `json:"can_undo"`
	CanRedo      bool               `json:"can_redo"`
	Busy         bool               `json:"busy"`
	Hotspot      *transform.Hotspot `json:"hotspot,omitempty"`
	HasReference bool               `json:"has_reference"`
	ScalePercent int                `json:"scale_percent"`
}

func stateOf(s *editor.Session) stateResponse {
	state := s.State()
	layers := make([]layerResponse, 0, len(state.Layers))
	for _, layer := range state.Layers {
		layers = append(layers, layerResponse{
			ID:      layer.ID,
			Name:    layer.Name,
			Opacity: layer.Opacity,
			Visible: layer.Visible,
			Width:   layer.Asset.Width,
			Height:  layer.Asset.Height,
			MIME:    layer.Asset.MIME,
		})
	}
	return stateResponse{
		SessionID:    state.ID,
		Layers:       layers,
		ActiveID:     state.ActiveID,
		Cursor:       state.Cursor,
		HistoryLen:   state.HistoryLen,
		CanUndo:      state.CanUndo,
		CanRedo:      state.CanRedo,
		Busy:         state.Busy,
		Hotspot:      state.Hotspot,
		HasReference: state.HasReference,
		ScalePercent: state.ScalePercent,
	}
}

// SessionCreate starts a new editing session around an uploaded image, which
// becomes the "Background" layer and the first history snapshot.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	asset, err := a.readImage(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s := a.Sessions.Create()
	if _, err := s.LoadImage(asset); err != nil {
		a.Sessions.Delete(s.ID)
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusCreated, stateOf(s))
}

// SessionState returns the current editing state.
func (a *App) SessionState(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// SessionDelete discards a session and all retained history.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	if _, ok := a.session(w, id); !ok {
		return
	}
	a.Sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
