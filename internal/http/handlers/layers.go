package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// LayerAdd appends a new topmost layer from an uploaded image.
func (a *App) LayerAdd(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	asset, err := a.readImage(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	name := r.URL.Query().Get("name")
	if _, err := s.AddLayer(name, asset); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusCreated, stateOf(s))
}

// LayerRemove deletes a layer. Deleting the last one empties the session.
func (a *App) LayerRemove(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	if err := s.RemoveLayer(chi.URLParam(r, "layer_id")); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// LayerOrder restacks the layer set; the body must list every layer ID.
func (a *App) LayerOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload struct {
		Order []string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.Reorder(payload.Order); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// LayerOpacity scrubs a layer's opacity. With commit=true the change is
// recorded in history (slider release); otherwise it is a live drag.
func (a *App) LayerOpacity(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload struct {
		Value  int  `json:"value"`
		Commit bool `json:"commit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.SetOpacity(chi.URLParam(r, "layer_id"), payload.Value); err != nil {
		a.editError(w, err)
		return
	}
	if payload.Commit {
		if err := s.CommitOpacity(); err != nil {
			a.editError(w, err)
			return
		}
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// LayerVisibility toggles a layer and commits immediately.
func (a *App) LayerVisibility(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload struct {
		Visible bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.SetVisibility(chi.URLParam(r, "layer_id"), payload.Visible); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}

// LayerSelect changes the active layer.
func (a *App) LayerSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	var payload struct {
		LayerID string `json:"layer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := s.SelectLayer(payload.LayerID); err != nil {
		a.editError(w, err)
		return
	}
	a.json(w, http.StatusOK, stateOf(s))
}
