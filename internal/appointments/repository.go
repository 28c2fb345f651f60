package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, owner_id, professional_id, patient_id, procedure_id, procedure_name,
	scheduled_at, calendar_id, external_event_id, status, charged_amount_cents, payment_method,
	recorded_commission_cents, complaint, progress_notes, prescribed_medication, created_at, updated_at`

// appointmentDB defines the database interface needed by Repository
type appointmentDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointments.
type Repository struct {
	db appointmentDB
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db appointmentDB) *Repository {
	return &Repository{db: db}
}

// CreateParams carries the fields for a newly linked appointment.
type CreateParams struct {
	OwnerID         string
	ProfessionalID  string
	PatientID       string
	ProcedureID     *string
	ScheduledAt     time.Time
	CalendarID      string
	ExternalEventID string
}

// CreateScheduled inserts a new appointment in the scheduled state.
func (r *Repository) CreateScheduled(ctx context.Context, p CreateParams) (*Appointment, error) {
	query := `INSERT INTO appointments
		(id, owner_id, professional_id, patient_id, procedure_id, scheduled_at, calendar_id, external_event_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'scheduled')
		RETURNING ` + appointmentColumns
	row := r.db.QueryRow(ctx, query,
		uuid.New(), p.OwnerID, p.ProfessionalID, p.PatientID, p.ProcedureID, p.ScheduledAt, p.CalendarID, p.ExternalEventID)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert scheduled: %w", err)
	}
	return appt, nil
}

// GetByID returns an appointment scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND owner_id = $2`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load by id: %w", err)
	}
	return appt, nil
}

// GetByExternalEvent returns the appointment linked to a provider event.
// The (calendar_id, external_event_id) pair is unique per tenant.
func (r *Repository) GetByExternalEvent(ctx context.Context, ownerID, calendarID, eventID string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE owner_id = $1 AND calendar_id = $2 AND external_event_id = $3`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, ownerID, calendarID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load by external event: %w", err)
	}
	return appt, nil
}

// CompleteParams carries the durable fields of a completion.
type CompleteParams struct {
	OwnerID                 string
	ID                      uuid.UUID
	ProcedureID             *string
	ProcedureName           string
	ChargedAmountCents      int64
	PaymentMethod           string
	RecordedCommissionCents int64
	Complaint               string
	ProgressNotes           string
	PrescribedMedication    string
}

// CompleteScheduled transitions scheduled → completed, persisting the clinical
// and financial fields in one conditional update. Rows that already left the
// scheduled state are never touched; the caller gets ErrInvalidTransition so a
// double submission cannot record commission twice.
func (r *Repository) CompleteScheduled(ctx context.Context, p CompleteParams) (*Appointment, error) {
	query := `UPDATE appointments SET
			status = 'completed',
			procedure_id = $3,
			procedure_name = $4,
			charged_amount_cents = $5,
			payment_method = $6,
			recorded_commission_cents = $7,
			complaint = $8,
			progress_notes = $9,
			prescribed_medication = $10,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND status = 'scheduled'
		RETURNING ` + appointmentColumns
	row := r.db.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.ProcedureID, p.ProcedureName, p.ChargedAmountCents, p.PaymentMethod,
		p.RecordedCommissionCents, p.Complaint, p.ProgressNotes, p.PrescribedMedication)
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.transitionConflict(ctx, p.OwnerID, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: complete: %w", err)
	}
	return appt, nil
}

// MarkNoShowScheduled transitions scheduled → no_show with zero commission.
func (r *Repository) MarkNoShowScheduled(ctx context.Context, ownerID string, id uuid.UUID) (*Appointment, error) {
	query := `UPDATE appointments SET
			status = 'no_show',
			recorded_commission_cents = 0,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND status = 'scheduled'
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.transitionConflict(ctx, ownerID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: mark no-show: %w", err)
	}
	return appt, nil
}

// transitionConflict distinguishes "row gone" from "row already terminal"
// after a conditional update matched nothing.
func (r *Repository) transitionConflict(ctx context.Context, ownerID string, id uuid.UUID) error {
	var status Status
	err := r.db.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1 AND owner_id = $2`, id, ownerID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("appointments: read status after conflict: %w", err)
	}
	return fmt.Errorf("appointments: current status %q: %w", status, ErrInvalidTransition)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.ProfessionalID, &a.PatientID, &a.ProcedureID, &a.ProcedureName,
		&a.ScheduledAt, &a.CalendarID, &a.ExternalEventID, &a.Status, &a.ChargedAmountCents, &a.PaymentMethod,
		&a.RecordedCommissionCents, &a.Complaint, &a.ProgressNotes, &a.PrescribedMedication, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
