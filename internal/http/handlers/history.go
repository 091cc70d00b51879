package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HistoryUndo republishes the previous snapshot. A no-op at the start of
// history still returns the current state.
func (a *App) HistoryUndo(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	s.Undo()
	a.json(w, http.StatusOK, stateOf(s))
}

// HistoryRedo is symmetric to HistoryUndo at the tail end.
func (a *App) HistoryRedo(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	s.Redo()
	a.json(w, http.StatusOK, stateOf(s))
}
