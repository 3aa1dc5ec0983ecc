// Package api exposes a preset.Store over HTTP: REST for reads and edits, and
// a WebSocket that streams the rendered rows whenever the backend changes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reply-presets/logging"
	"reply-presets/preset"
)

var alog = logging.For("api")

func RegisterRoutes(store *preset.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{store: store}

	r.Get("/api/presets", h.getPresets)
	r.Get("/api/presets/ws", h.handleWS)
	r.Put("/api/presets/{id}", h.putPreset)
	r.Delete("/api/presets/{id}", h.deletePreset)

	return r
}

type handler struct {
	store *preset.Store
}
