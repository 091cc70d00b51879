package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"studio/internal/audit"
	"studio/internal/editor"
	"studio/internal/infra"
	"studio/internal/prefs"
	"studio/internal/raster"
	"studio/internal/session"
)

// App is the handler container wiring the editing core to the HTTP surface.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Sessions   *session.Manager
	Dispatcher *editor.Dispatcher
	Prefs      prefs.Store
	Audit      *audit.Recorder
}

func NewApp(cfg *infra.Config, logger infra.Logger, sessions *session.Manager, dispatcher *editor.Dispatcher, store prefs.Store, recorder *audit.Recorder) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Prefs:      store,
		Audit:      recorder,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": code, "message": message})
}

// editError translates editing-core failures into the API error taxonomy:
// validation → 422, busy → 409, unknown layer → 404, transform failure → 502.
func (a *App) editError(w http.ResponseWriter, err error) {
	switch {
	case editor.IsValidation(err):
		a.error(w, http.StatusUnprocessableEntity, "validation", err.Error())
	case errors.Is(err, editor.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "another operation is in progress")
	case errors.Is(err, editor.ErrNoSuchLayer):
		a.error(w, http.StatusNotFound, "not_found", "layer not found")
	default:
		var opErr *editor.OpError
		if errors.As(err, &opErr) {
			a.error(w, http.StatusBadGateway, "transform_failed", opErr.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

func (a *App) session(w http.ResponseWriter, id string) (*editor.Session, bool) {
	s, err := a.Sessions.Get(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return s, true
}

// readImage accepts either a multipart upload with an "image" file field or a
// JSON body carrying base64 image data (raw or data-URL).
func (a *App) readImage(r *http.Request) (raster.Asset, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, a.Config.MaxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
			return raster.Asset{}, errors.New("invalid multipart payload")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return raster.Asset{}, errors.New("image file field is required")
		}
		defer file.Close()
		data := make([]byte, 0, 1<<20)
		buf := make([]byte, 32*1024)
		for {
			n, err := file.Read(buf)
			data = append(data, buf[:n]...)
			if err != nil {
				break
			}
		}
		return raster.NewAsset(data)
	}

	var payload struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return raster.Asset{}, errors.New("invalid payload")
	}
	encoded := payload.ImageBase64
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return raster.Asset{}, errors.New("image_base64 is not valid base64")
	}
	return raster.NewAsset(data)
}
