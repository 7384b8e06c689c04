package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Health and token issuance are public; weather routes require a bearer token.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if h.dev {
		r.Use(h.LogRequests)
	}
	r.Use(h.Recoverer)

	// Registered before any sub-router so they inherit both handlers.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/", h.Root)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/auth/token", h.handle(h.IssueToken))

		r.Group(func(r chi.Router) {
			r.Use(h.RequireToken)
			r.Get("/weather/{city}", h.handle(h.GetWeather))
			r.Post("/weather/multiple", h.handle(h.GetMultipleWeather))
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
