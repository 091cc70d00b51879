package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/transform"
)

// HotspotSet records the retouch target in native pixel coordinates.
func (a *App) HotspotSet(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload transform.Hotspot
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.SetHotspot(payload); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// HotspotClear drops the retouch target.
func (a *App) HotspotClear(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	s.ClearHotspot()
	a.json(w, http.StatusOK, stateOf(s))
}

// ReferenceSet uploads the secondary image used by face swap and
// reference-guided adjustments.
func (a *App) ReferenceSet(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	asset, err := a.readImage(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := s.SetReference(asset); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// ReferenceClear drops the secondary image.
func (a *App) ReferenceClear(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	s.ClearReference()
	a.json(w, http.StatusOK, stateOf(s))
}

// ScaleSet stores the retouch subject scale percentage.
func (a *App) ScaleSet(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload struct {
		Percent int `json:"percent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.SetScale(payload.Percent); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}
