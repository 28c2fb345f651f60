// Package router assembles the HTTP surface of the engine.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicdesk/clinic-ops-platform/internal/http/handlers"
	httpmiddleware "github.com/clinicdesk/clinic-ops-platform/internal/http/middleware"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Agenda             *handlers.AgendaHandler
	Appointments       *handlers.AppointmentsHandler
	Commissions        *handlers.CommissionsHandler
	StaffAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSecond of zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Dashboard API, behind staff auth.
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))

		if cfg.Agenda != nil {
			api.Get("/agenda/events", cfg.Agenda.ListEvents)
		}
		if cfg.Appointments != nil {
			api.Post("/appointments/link", cfg.Appointments.Link)
			api.Post("/appointments/{id}/complete", cfg.Appointments.Complete)
			api.Post("/appointments/{id}/no-show", cfg.Appointments.NoShow)
			api.Get("/appointments/{id}", cfg.Appointments.Get)
		}
		if cfg.Commissions != nil {
			api.Put("/commissions/{professionalID}/{procedureID}", cfg.Commissions.UpsertOverride)
		}
	})

	return r
}
