// Package appointments persists the clinical booking records of the engine.
package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the engine allows further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusNoShow || s == StatusCancelled
}

// Appointment is the system of record for a clinical booking. Money fields
// are integer cents.
type Appointment struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        string    `json:"owner_id"`
	ProfessionalID string    `json:"professional_id"`
	PatientID      string    `json:"patient_id"`
	ProcedureID    *string   `json:"procedure_id,omitempty"`
	// ProcedureName is snapshotted at completion so renaming a procedure
	// later does not alter historical records.
	ProcedureName           string     `json:"procedure_name,omitempty"`
	ScheduledAt             time.Time  `json:"scheduled_at"`
	CalendarID              *string    `json:"calendar_id,omitempty"`
	ExternalEventID         *string    `json:"external_event_id,omitempty"`
	Status                  Status     `json:"status"`
	ChargedAmountCents      int64      `json:"charged_amount_cents"`
	PaymentMethod           string     `json:"payment_method,omitempty"`
	RecordedCommissionCents int64      `json:"recorded_commission_cents"`
	Complaint               string     `json:"complaint,omitempty"`
	ProgressNotes           string     `json:"progress_notes,omitempty"`
	PrescribedMedication    string     `json:"prescribed_medication,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}
