package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
)

// NewRouter builds the HTTP surface for the editor.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Get("/v1/preferences", app.PreferencesGet)
	r.Put("/v1/preferences", app.PreferencesPut)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", app.SessionState)
			r.Delete("/", app.SessionDelete)

			r.Post("/layers", app.LayerAdd)
			r.Put("/layers/order", app.LayerOrder)
			r.Delete("/layers/{layer_id}", app.LayerRemove)
			r.Put("/layers/{layer_id}/opacity", app.LayerOpacity)
			r.Put("/layers/{layer_id}/visibility", app.LayerVisibility)
			r.Post("/select", app.LayerSelect)

			r.Put("/hotspot", app.HotspotSet)
			r.Delete("/hotspot", app.HotspotClear)
			r.Put("/reference", app.ReferenceSet)
			r.Delete("/reference", app.ReferenceClear)
			r.Put("/scale", app.ScaleSet)

			r.Post("/edits/retouch", app.EditRetouch)
			r.Post("/edits/filter", app.EditFilter)
			r.Post("/edits/adjust", app.EditAdjust)
			r.Post("/edits/face-swap", app.EditFaceSwap)
			r.Post("/edits/background-remove", app.EditBackgroundRemove)
			r.Post("/edits/crop", app.EditCrop)

			r.Post("/history/undo", app.HistoryUndo)
			r.Post("/history/redo", app.HistoryRedo)

			r.Get("/composite", app.Composite)
			r.Get("/layers/archive", app.LayerArchive)
		})
	})

	return r
}
