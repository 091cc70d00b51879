package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/prefs"
)

type preferencesResponse struct {
	TransparentBackground bool `json:"transparent_background"`
}

// PreferencesGet returns the persisted editing preferences, read at client
// startup.
func (a *App) PreferencesGet(w http.ResponseWriter, r *http.Request) {
	value, err := a.Prefs.TransparentBackground(r.Context(), prefs.DefaultOwner)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}
	a.json(w, http.StatusOK, preferencesResponse{TransparentBackground: value})
}

// PreferencesPut persists the transparency toggle.
func (a *App) PreferencesPut(w http.ResponseWriter, r *http.Request) {
	var payload preferencesResponse
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Prefs.SetTransparentBackground(r.Context(), prefs.DefaultOwner, payload.TransparentBackground); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save preferences")
		return
	}
	a.json(w, http.StatusOK, payload)
}
