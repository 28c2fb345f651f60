// Package attribution decides which professional owns a calendar event.
package attribution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/internal/team"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// Role is the acting user's role within the clinic.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleProfessional Role = "professional"
	RoleStaff        Role = "staff"
)

// ActingUser identifies who is performing the link operation.
type ActingUser struct {
	ID   string
	Role Role
}

// RejectedError means no trustworthy professional could be resolved. The
// caller must not attribute the appointment to anyone; surfacing the calendar
// id lets the operator fix the mapping.
type RejectedError struct {
	CalendarID string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("attribution: calendar %q is not linked to any professional; link it under team settings before booking", e.CalendarID)
}

// MappingLookup resolves a calendar id to its mapped professional.
type MappingLookup interface {
	ProfessionalForCalendar(ctx context.Context, ownerID, calendarID string) (string, error)
}

// Resolver applies the attribution policy.
type Resolver struct {
	mappings MappingLookup
	logger   *logging.Logger
}

// NewResolver creates an attribution resolver.
func NewResolver(mappings MappingLookup, logger *logging.Logger) *Resolver {
	if mappings == nil {
		panic("attribution: mapping lookup required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{mappings: mappings, logger: logger}
}

// Resolve determines the professional an event on calendarID must be
// attributed to. In strict order:
//
//  1. An explicit calendar mapping wins regardless of mode or role.
//  2. In single-professional clinics everything belongs to the owner.
//  3. Professionals and owners fall back to themselves.
//  4. Administrative staff in a multi-professional clinic get a rejection:
//     silently guessing would misattribute revenue and commission.
func (r *Resolver) Resolve(ctx context.Context, calendarID string, user ActingUser, settings *clinic.Settings) (string, error) {
	if settings == nil {
		return "", fmt.Errorf("attribution: clinic settings required")
	}
	calendarID = strings.TrimSpace(calendarID)

	professionalID, err := r.mappings.ProfessionalForCalendar(ctx, settings.OwnerID, calendarID)
	if err == nil {
		return professionalID, nil
	}
	if !errors.Is(err, team.ErrMappingNotFound) {
		return "", fmt.Errorf("attribution: mapping lookup: %w", err)
	}

	if settings.IsSingleProfessional() {
		if settings.OwnerProfessionalID != "" {
			return settings.OwnerProfessionalID, nil
		}
		return settings.OwnerID, nil
	}

	if user.Role == RoleProfessional || user.Role == RoleOwner {
		r.logger.Debug("attribution self-binding fallback", "calendar_id", calendarID, "user_id", user.ID, "role", user.Role)
		return user.ID, nil
	}

	r.logger.Warn("attribution rejected for unmapped calendar", "calendar_id", calendarID, "user_id", user.ID, "role", user.Role)
	return "", &RejectedError{CalendarID: calendarID}
}
