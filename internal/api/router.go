package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-scheduling/internal/hospital"
)

type RouterConfig struct {
	Hospital *hospital.Hospital
	Events   EventSource // optional
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Logger   *logrus.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	h := cfg.Hospital

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/patients", func(r chi.Router) {
		r.Post("/", createPatientHandler(h))
		r.Get("/", listPatientsHandler(h))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getPatientHandler(h))
			r.Delete("/", removePatientHandler(h))
			r.Get("/appointments", patientAppointmentsHandler(h))
			r.Post("/activate", setPatientActiveHandler(h, true))
			r.Post("/deactivate", setPatientActiveHandler(h, false))
			r.Post("/history", updateHistoryHandler(h))
			r.Post("/prescriptions", addPrescriptionHandler(h))
		})
	})

	r.Route("/doctors", func(r chi.Router) {
		r.Post("/", createDoctorHandler(h))
		r.Get("/", listDoctorsHandler(h))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getDoctorHandler(h))
			r.Delete("/", removeDoctorHandler(h))
			r.Get("/appointments", doctorAppointmentsHandler(h))
			r.Post("/activate", setDoctorActiveHandler(h, true))
			r.Post("/deactivate", setDoctorActiveHandler(h, false))
			r.Put("/fee", setFeeHandler(h))

			r.Post("/slots", addSlotHandler(h))
			r.Get("/slots", scheduleHandler(h))
			r.Get("/slots/available", availableSlotsHandler(h))
			r.Delete("/slots/{date}/{slotID}", removeSlotHandler(h))
			r.Post("/slots/{date}/{slotID}/book", slotPatientHandler(h, true))
			r.Post("/slots/{date}/{slotID}/cancel", slotPatientHandler(h, false))
		})
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(h))
		r.Get("/", listAppointmentsHandler(h))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getAppointmentHandler(h))
			r.Post("/confirm", transitionHandler(h.ConfirmAppointment))
			r.Post("/start", transitionHandler(h.StartAppointment))
			r.Post("/complete", transitionHandler(h.CompleteAppointment))
			r.Post("/cancel", noteTransitionHandler(h.CancelAppointment))
			r.Post("/no-show", noteTransitionHandler(h.MarkNoShow))
			r.Post("/reschedule", rescheduleHandler(h))
			r.Put("/status", updateStatusHandler(h))
			r.Put("/diagnosis", textUpdateHandler(h.AttachDiagnosis))
			r.Put("/prescription", textUpdateHandler(h.AttachPrescription))
			r.Put("/follow-up", textUpdateHandler(h.SetFollowUpDate))
			r.Put("/cost", setCostHandler(h))
		})
	})

	r.Get("/stats", statisticsHandler(h))

	if cfg.Events != nil {
		r.Get("/events", listEventsHandler(cfg.Events))
	}

	return r
}
