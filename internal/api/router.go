package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/auth"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/identity"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

type RouterConfig struct {
	Identity     *identity.Service
	Directory    *directory.Service
	Appointments *appointment.Service
	Tokens       *auth.TokenIssuer
	Metrics      *metrics.Metrics
	Health       *HealthHandler
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(MetricsMiddleware(cfg.Metrics))

	// Health endpoints
	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	// Registration and login
	r.With(OptionalAuth(cfg.Tokens)).Post("/users", registerHandler(cfg.Identity, log))
	r.Post("/login", loginHandler(cfg.Identity, cfg.Tokens, log))

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Tokens))

		r.Get("/users/{id}", getUserHandler(cfg.Identity, log))

		// Appointment endpoints
		r.Post("/appointments", createAppointmentHandler(cfg.Appointments, log))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments, log))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments, log))
		r.With(RequireStaff).Put("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Appointments, log))

		r.Get("/doctors", listDoctorsHandler(cfg.Directory, log))

		r.Group(func(r chi.Router) {
			r.Use(RequireStaff)

			r.Get("/doctors/{id}", getDoctorHandler(cfg.Directory, log))
			r.Post("/doctors", createDoctorHandler(cfg.Directory, log))
			r.Put("/doctors/{id}", updateDoctorHandler(cfg.Directory, log))
			r.Delete("/doctors/{id}", deleteDoctorHandler(cfg.Directory, log))

			r.Get("/patients", listPatientsHandler(cfg.Identity, log))
			r.Post("/patients", createPatientHandler(cfg.Identity, log))
			r.Get("/patients/{id}", getPatientHandler(cfg.Identity, log))
			r.Put("/patients/{id}", updatePatientHandler(cfg.Identity, log))
			r.Delete("/patients/{id}", deletePatientHandler(cfg.Identity, log))
		})
	})

	return r
}
