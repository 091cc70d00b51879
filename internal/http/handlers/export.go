package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studio/internal/raster"
	"studio/pkg/zip"
)

// Composite flattens the visible layers and streams the encoded result.
// Supported query parameters: format=png|jpeg and quality (JPEG only).
func (a *App) Composite(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	flat, err := s.Flatten()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to flatten layers")
		return
	}
	if flat == nil {
		a.error(w, http.StatusUnprocessableEntity, "validation", "no visible layers to export")
		return
	}

	quality := raster.DefaultJPEGQuality
	if q := r.URL.Query().Get("quality"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			quality = v
		}
	}
	data, mime, err := raster.Encode(flat, r.URL.Query().Get("format"), quality)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode composite")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// LayerArchive bundles every layer's image into a zip download.
func (a *App) LayerArchive(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, chi.URLParam(r, "session_id"))
	if !ok {
		return
	}
	layers := s.Layers()
	if len(layers) == 0 {
		a.error(w, http.StatusUnprocessableEntity, "validation", "no layers to export")
		return
	}
	assets := make([]zip.Asset, 0, len(layers))
	for i, layer := range layers {
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%02d-%s", i+1, layer.Name),
			MIME:     layer.Asset.MIME,
			Data:     layer.Asset.Data,
		})
	}
	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.zip", s.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
