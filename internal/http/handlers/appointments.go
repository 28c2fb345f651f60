package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-ops-platform/internal/appointments"
	"github.com/clinicdesk/clinic-ops-platform/internal/attribution"
	"github.com/clinicdesk/clinic-ops-platform/internal/calendar"
	"github.com/clinicdesk/clinic-ops-platform/internal/completion"
	"github.com/clinicdesk/clinic-ops-platform/internal/http/middleware"
	"github.com/clinicdesk/clinic-ops-platform/internal/procedures"
	"github.com/clinicdesk/clinic-ops-platform/internal/reconcile"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// EventLinker binds external events to appointment records.
type EventLinker interface {
	LinkEvent(ctx context.Context, in reconcile.LinkInput) (*appointments.Appointment, bool, error)
}

// CompletionRunner drives the terminal appointment transitions.
type CompletionRunner interface {
	Complete(ctx context.Context, in completion.CompleteInput) (*appointments.Appointment, error)
	MarkNoShow(ctx context.Context, ownerID string, id uuid.UUID, eventTitle string) (*appointments.Appointment, error)
}

// AppointmentReader reads single appointment records.
type AppointmentReader interface {
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*appointments.Appointment, error)
}

// Alerter notifies the clinic owner about calendars nobody is bound to.
type Alerter interface {
	UnmappedCalendar(ctx context.Context, ownerID, calendarID string) error
}

// AppointmentsHandler serves the link/complete/no-show API.
type AppointmentsHandler struct {
	linker     EventLinker
	completion CompletionRunner
	reader     AppointmentReader
	alerts     Alerter
	logger     *logging.Logger
}

// NewAppointmentsHandler creates the handler. The alerter is optional.
func NewAppointmentsHandler(linker EventLinker, completion CompletionRunner, reader AppointmentReader, alerts Alerter, logger *logging.Logger) *AppointmentsHandler {
	if linker == nil {
		panic("handlers: event linker required")
	}
	if completion == nil {
		panic("handlers: completion runner required")
	}
	if reader == nil {
		panic("handlers: appointment reader required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{
		linker:     linker,
		completion: completion,
		reader:     reader,
		alerts:     alerts,
		logger:     logger,
	}
}

// LinkRequest is the body of POST /api/appointments/link.
type LinkRequest struct {
	Event struct {
		ID         string    `json:"id"`
		CalendarID string    `json:"calendar_id"`
		Title      string    `json:"title"`
		Start      time.Time `json:"start"`
		End        time.Time `json:"end"`
		AllDay     bool      `json:"all_day"`
	} `json:"event"`
	PatientID   string  `json:"patient_id"`
	ProcedureID *string `json:"procedure_id,omitempty"`
}

// LinkResponse wraps the appointment bound to the event.
type LinkResponse struct {
	Appointment *appointments.Appointment `json:"appointment"`
	Created     bool                      `json:"created"`
}

// Link handles POST /api/appointments/link. Repeat submissions for the same
// event return the existing record with 200 instead of 201.
func (h *AppointmentsHandler) Link(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req LinkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, created, err := h.linker.LinkEvent(r.Context(), reconcile.LinkInput{
		OwnerID: session.OwnerID,
		Event: calendar.Event{
			ID:         req.Event.ID,
			CalendarID: req.Event.CalendarID,
			Title:      req.Event.Title,
			Start:      req.Event.Start,
			End:        req.Event.End,
			AllDay:     req.Event.AllDay,
		},
		PatientID:   req.PatientID,
		ProcedureID: req.ProcedureID,
		User:        session.User,
	})
	if err != nil {
		var rejected *attribution.RejectedError
		switch {
		case errors.As(err, &rejected):
			h.alertUnmapped(r.Context(), session.OwnerID, rejected.CalendarID)
			respondError(w, http.StatusUnprocessableEntity, rejected.Error())
		case errors.Is(err, reconcile.ErrInvalidEvent):
			respondError(w, http.StatusBadRequest, "event id and calendar id are required")
		case errors.Is(err, reconcile.ErrPatientRequired):
			respondError(w, http.StatusUnprocessableEntity, "patient_id is required to register this event")
		default:
			h.logger.Error("link event failed", "calendar_id", req.Event.CalendarID, "event_id", req.Event.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to link event")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, LinkResponse{Appointment: appt, Created: created})
}

// CompleteRequest is the body of POST /api/appointments/{id}/complete.
type CompleteRequest struct {
	ProcedureID          string `json:"procedure_id"`
	ChargedAmountCents   int64  `json:"charged_amount_cents"`
	PaymentMethod        string `json:"payment_method"`
	Complaint            string `json:"complaint"`
	ProgressNotes        string `json:"progress_notes"`
	PrescribedMedication string `json:"prescribed_medication"`
	EventTitle           string `json:"event_title"`
}

// Complete handles POST /api/appointments/{id}/complete.
func (h *AppointmentsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "appointment id must be a UUID")
		return
	}

	var req CompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.completion.Complete(r.Context(), completion.CompleteInput{
		OwnerID:              session.OwnerID,
		AppointmentID:        id,
		ProcedureID:          req.ProcedureID,
		ChargedAmountCents:   req.ChargedAmountCents,
		PaymentMethod:        req.PaymentMethod,
		Complaint:            req.Complaint,
		ProgressNotes:        req.ProgressNotes,
		PrescribedMedication: req.PrescribedMedication,
		EventTitle:           req.EventTitle,
	})
	if err != nil {
		h.respondTransitionError(w, err, id)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

// NoShowRequest is the body of POST /api/appointments/{id}/no-show.
type NoShowRequest struct {
	EventTitle string `json:"event_title"`
}

// NoShow handles POST /api/appointments/{id}/no-show.
func (h *AppointmentsHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "appointment id must be a UUID")
		return
	}

	var req NoShowRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	appt, err := h.completion.MarkNoShow(r.Context(), session.OwnerID, id, req.EventTitle)
	if err != nil {
		h.respondTransitionError(w, err, id)
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

// Get handles GET /api/appointments/{id}.
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "appointment id must be a UUID")
		return
	}

	appt, err := h.reader.GetByID(r.Context(), session.OwnerID, id)
	if errors.Is(err, appointments.ErrNotFound) {
		respondError(w, http.StatusNotFound, "appointment not found")
		return
	}
	if err != nil {
		h.logger.Error("get appointment failed", "appointment_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	respondJSON(w, http.StatusOK, appt)
}

func (h *AppointmentsHandler) respondTransitionError(w http.ResponseWriter, err error, id uuid.UUID) {
	switch {
	case errors.Is(err, completion.ErrProcedureRequired):
		respondError(w, http.StatusBadRequest, "procedure_id is required")
	case errors.Is(err, procedures.ErrProcedureNotFound):
		respondError(w, http.StatusUnprocessableEntity, "procedure not found")
	case errors.Is(err, appointments.ErrNotFound):
		respondError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, appointments.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "appointment already finalized")
	default:
		h.logger.Error("appointment transition failed", "appointment_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update appointment")
	}
}

func (h *AppointmentsHandler) alertUnmapped(ctx context.Context, ownerID, calendarID string) {
	if h.alerts == nil {
		return
	}
	if err := h.alerts.UnmappedCalendar(ctx, ownerID, calendarID); err != nil {
		h.logger.Warn("unmapped calendar alert failed", "calendar_id", calendarID, "error", err)
	}
}
