// Package reconcile binds external calendar events to appointment records.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicdesk/clinic-ops-platform/internal/appointments"
	"github.com/clinicdesk/clinic-ops-platform/internal/attribution"
	"github.com/clinicdesk/clinic-ops-platform/internal/calendar"
	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/internal/observability/metrics"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

var reconcileTracer = otel.Tracer("clinicops.internal.reconcile")

var (
	// ErrPatientRequired means the caller omitted the mandatory patient.
	ErrPatientRequired = errors.New("reconcile: patient is required")
	// ErrInvalidEvent means the event lacks a provider id or calendar id.
	ErrInvalidEvent = errors.New("reconcile: event id and calendar id are required")
)

// AppointmentStore is the persistence slice the controller needs.
type AppointmentStore interface {
	GetByExternalEvent(ctx context.Context, ownerID, calendarID, eventID string) (*appointments.Appointment, error)
	CreateScheduled(ctx context.Context, p appointments.CreateParams) (*appointments.Appointment, error)
}

// ProfessionalResolver decides event attribution.
type ProfessionalResolver interface {
	Resolve(ctx context.Context, calendarID string, user attribution.ActingUser, settings *clinic.Settings) (string, error)
}

// SettingsReader loads tenant operating settings.
type SettingsReader interface {
	Get(ctx context.Context, ownerID string) (*clinic.Settings, error)
}

// Controller orchestrates event linking.
type Controller struct {
	store    AppointmentStore
	resolver ProfessionalResolver
	settings SettingsReader
	metrics  *metrics.EngineMetrics
	logger   *logging.Logger
}

// NewController creates a reconciliation controller.
func NewController(store AppointmentStore, resolver ProfessionalResolver, settings SettingsReader, m *metrics.EngineMetrics, logger *logging.Logger) *Controller {
	if store == nil {
		panic("reconcile: appointment store required")
	}
	if resolver == nil {
		panic("reconcile: professional resolver required")
	}
	if settings == nil {
		panic("reconcile: settings reader required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{store: store, resolver: resolver, settings: settings, metrics: m, logger: logger}
}

// LinkInput carries one link request.
type LinkInput struct {
	OwnerID     string
	Event       calendar.Event
	PatientID   string
	ProcedureID *string
	User        attribution.ActingUser
}

// LinkEvent returns the appointment bound to the event, creating it when
// none exists. The second return reports whether a record was created; a
// repeat call is an idempotent lookup, which is also how already-linked
// events are inspected.
func (c *Controller) LinkEvent(ctx context.Context, in LinkInput) (*appointments.Appointment, bool, error) {
	ctx, span := reconcileTracer.Start(ctx, "reconcile.link_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicops.calendar_id", in.Event.CalendarID),
		attribute.String("clinicops.event_id", in.Event.ID),
	)

	if in.Event.ID == "" || in.Event.CalendarID == "" {
		return nil, false, ErrInvalidEvent
	}

	existing, err := c.store.GetByExternalEvent(ctx, in.OwnerID, in.Event.CalendarID, in.Event.ID)
	if err == nil {
		c.metrics.ObserveLink("existing")
		return existing, false, nil
	}
	if !errors.Is(err, appointments.ErrNotFound) {
		span.RecordError(err)
		return nil, false, fmt.Errorf("reconcile: lookup linked appointment: %w", err)
	}

	if in.PatientID == "" {
		return nil, false, ErrPatientRequired
	}

	settings, err := c.settings.Get(ctx, in.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("reconcile: load clinic settings: %w", err)
	}

	professionalID, err := c.resolver.Resolve(ctx, in.Event.CalendarID, in.User, settings)
	if err != nil {
		var rejected *attribution.RejectedError
		if errors.As(err, &rejected) {
			c.metrics.ObserveLink("rejected")
			c.metrics.ObserveAttributionRejection()
		}
		span.RecordError(err)
		return nil, false, err
	}

	appt, err := c.store.CreateScheduled(ctx, appointments.CreateParams{
		OwnerID:         in.OwnerID,
		ProfessionalID:  professionalID,
		PatientID:       in.PatientID,
		ProcedureID:     in.ProcedureID,
		ScheduledAt:     in.Event.Start,
		CalendarID:      in.Event.CalendarID,
		ExternalEventID: in.Event.ID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	c.metrics.ObserveLink("created")
	c.logger.Info("event linked to appointment",
		"appointment_id", appt.ID, "calendar_id", in.Event.CalendarID,
		"event_id", in.Event.ID, "professional_id", professionalID)
	return appt, true, nil
}
