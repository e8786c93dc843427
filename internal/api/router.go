// Package api provides the REST API for the call recorder
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the API router
func NewRouter(deps *Dependencies) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Initialize handlers
	recordingHandler := NewRecordingHandler(deps)

	// Health endpoints
	healthHandler := NewHealthHandler("1.0.0", deps.DB.Conn())
	r.Get("/health", healthHandler.Health)
	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/ready", healthHandler.Ready)
	r.Get("/api/live", healthHandler.Live)

	r.Route("/api", func(r chi.Router) {
		// Call recordings
		r.Route("/recordings", func(r chi.Router) {
			r.Get("/", recordingHandler.List)
			r.Get("/{id}", recordingHandler.Get)
			r.Get("/{id}/audio", recordingHandler.Audio)
		})
	})

	return r
}
