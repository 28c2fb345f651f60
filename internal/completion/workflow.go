// Package completion drives the appointment state machine:
// scheduled → completed and scheduled → no_show, both terminal here.
package completion

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicdesk/clinic-ops-platform/internal/appointments"
	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/internal/observability/metrics"
	"github.com/clinicdesk/clinic-ops-platform/internal/procedures"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

var completionTracer = otel.Tracer("clinicops.internal.completion")

// ErrProcedureRequired means a completion was submitted without a procedure.
var ErrProcedureRequired = errors.New("completion: procedure is required")

// Store is the persistence slice the workflow needs. Both transitions are
// conditional updates: the store only touches rows still in scheduled state.
type Store interface {
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*appointments.Appointment, error)
	CompleteScheduled(ctx context.Context, p appointments.CompleteParams) (*appointments.Appointment, error)
	MarkNoShowScheduled(ctx context.Context, ownerID string, id uuid.UUID) (*appointments.Appointment, error)
}

// CommissionResolver computes the recorded commission in cents.
type CommissionResolver interface {
	Resolve(ctx context.Context, ownerID, professionalID, procedureID string, chargedAmountCents int64) (int64, error)
}

// Catalog reads procedure entries for the name/price snapshot.
type Catalog interface {
	GetProcedure(ctx context.Context, ownerID, id string) (*procedures.Procedure, error)
}

// PatientTracker updates the patient's last attending professional pointer.
type PatientTracker interface {
	SetLastAttended(ctx context.Context, ownerID, patientID, professionalID string) error
}

// StatusWriter tags the external event after a transition commits.
type StatusWriter interface {
	Confirmed(ctx context.Context, calendarID, eventID, currentTitle string) error
	Missed(ctx context.Context, calendarID, eventID, currentTitle string) error
}

// SettingsReader loads tenant operating settings.
type SettingsReader interface {
	Get(ctx context.Context, ownerID string) (*clinic.Settings, error)
}

// Workflow owns the two terminal transitions.
type Workflow struct {
	store      Store
	commission CommissionResolver
	catalog    Catalog
	patients   PatientTracker
	writer     StatusWriter
	settings   SettingsReader
	metrics    *metrics.EngineMetrics
	logger     *logging.Logger
}

// NewWorkflow creates a completion workflow. The patient tracker, status
// writer and settings reader are optional; the store, commission resolver and
// catalog are not.
func NewWorkflow(store Store, commission CommissionResolver, catalog Catalog, patients PatientTracker, writer StatusWriter, settings SettingsReader, m *metrics.EngineMetrics, logger *logging.Logger) *Workflow {
	if store == nil {
		panic("completion: store required")
	}
	if commission == nil {
		panic("completion: commission resolver required")
	}
	if catalog == nil {
		panic("completion: catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Workflow{
		store:      store,
		commission: commission,
		catalog:    catalog,
		patients:   patients,
		writer:     writer,
		settings:   settings,
		metrics:    m,
		logger:     logger,
	}
}

// CompleteInput carries one completion submission.
type CompleteInput struct {
	OwnerID       string
	AppointmentID uuid.UUID
	ProcedureID   string
	// ChargedAmountCents of zero means "use the procedure's default price".
	ChargedAmountCents   int64
	PaymentMethod        string
	Complaint            string
	ProgressNotes        string
	PrescribedMedication string
	// EventTitle is the current external title, used for the writeback tag.
	EventTitle string
}

// Complete transitions scheduled → completed. The financial write commits
// before any calendar writeback; a second submission fails with
// ErrInvalidTransition and records nothing.
func (w *Workflow) Complete(ctx context.Context, in CompleteInput) (*appointments.Appointment, error) {
	ctx, span := completionTracer.Start(ctx, "completion.complete")
	defer span.End()
	span.SetAttributes(attribute.String("clinicops.appointment_id", in.AppointmentID.String()))

	if in.ProcedureID == "" {
		return nil, ErrProcedureRequired
	}

	current, err := w.store.GetByID(ctx, in.OwnerID, in.AppointmentID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	proc, err := w.catalog.GetProcedure(ctx, in.OwnerID, in.ProcedureID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	charged := in.ChargedAmountCents
	if charged <= 0 {
		charged = proc.PriceCents
	}

	recorded, err := w.commission.Resolve(ctx, in.OwnerID, current.ProfessionalID, in.ProcedureID, charged)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	procedureID := in.ProcedureID
	appt, err := w.store.CompleteScheduled(ctx, appointments.CompleteParams{
		OwnerID:                 in.OwnerID,
		ID:                      in.AppointmentID,
		ProcedureID:             &procedureID,
		ProcedureName:           proc.Name,
		ChargedAmountCents:      charged,
		PaymentMethod:           in.PaymentMethod,
		RecordedCommissionCents: recorded,
		Complaint:               in.Complaint,
		ProgressNotes:           in.ProgressNotes,
		PrescribedMedication:    in.PrescribedMedication,
	})
	if err != nil {
		if errors.Is(err, appointments.ErrInvalidTransition) {
			w.metrics.ObserveTransition("completed", "invalid")
		} else {
			w.metrics.ObserveTransition("completed", "error")
		}
		span.RecordError(err)
		return nil, err
	}
	w.metrics.ObserveTransition("completed", "ok")
	w.logger.Info("appointment completed",
		"appointment_id", appt.ID, "professional_id", appt.ProfessionalID,
		"charged_cents", charged, "commission_cents", recorded)

	if w.patients != nil {
		if err := w.patients.SetLastAttended(ctx, in.OwnerID, appt.PatientID, appt.ProfessionalID); err != nil {
			w.logger.Warn("last attended update failed", "patient_id", appt.PatientID, "error", err)
		}
	}

	w.tagEvent(ctx, appt, in.EventTitle, true)
	return appt, nil
}

// MarkNoShow transitions scheduled → no_show with zero commission.
func (w *Workflow) MarkNoShow(ctx context.Context, ownerID string, id uuid.UUID, eventTitle string) (*appointments.Appointment, error) {
	ctx, span := completionTracer.Start(ctx, "completion.mark_no_show")
	defer span.End()
	span.SetAttributes(attribute.String("clinicops.appointment_id", id.String()))

	appt, err := w.store.MarkNoShowScheduled(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, appointments.ErrInvalidTransition) {
			w.metrics.ObserveTransition("no_show", "invalid")
		} else {
			w.metrics.ObserveTransition("no_show", "error")
		}
		span.RecordError(err)
		return nil, err
	}
	w.metrics.ObserveTransition("no_show", "ok")
	w.logger.Info("appointment marked no-show", "appointment_id", appt.ID)

	w.tagEvent(ctx, appt, eventTitle, false)
	return appt, nil
}

// tagEvent runs the best-effort calendar writeback. By the time it runs the
// transition is durable; failures are counted and logged, never surfaced.
func (w *Workflow) tagEvent(ctx context.Context, appt *appointments.Appointment, eventTitle string, confirmed bool) {
	if w.writer == nil || appt.CalendarID == nil || appt.ExternalEventID == nil {
		return
	}
	if w.settings != nil {
		settings, err := w.settings.Get(ctx, appt.OwnerID)
		if err != nil {
			w.logger.Warn("settings load failed before writeback", "owner_id", appt.OwnerID, "error", err)
		} else if !settings.WritebackEnabled {
			return
		}
	}

	var err error
	if confirmed {
		err = w.writer.Confirmed(ctx, *appt.CalendarID, *appt.ExternalEventID, eventTitle)
	} else {
		err = w.writer.Missed(ctx, *appt.CalendarID, *appt.ExternalEventID, eventTitle)
	}
	if err != nil {
		// The sync already logged the failure; just count it.
		w.metrics.ObserveWritebackFailure()
	}
}
