package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/auth"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

func NewRouter(h *HTTPHandler, tm *auth.TokenManager, l logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Registrant-facing
		r.Post("/events/{eventId}/registrations", h.Register)

		// Scanning stations
		r.Group(func(r chi.Router) {
			r.Use(OperatorAuth(tm, l))
			r.Post("/events/{eventId}/checkin", h.CheckIn)
			r.Get("/events/{eventId}/checkin/history", h.History)
		})
	})

	return r
}
