package attribution

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/internal/team"
)

type fakeMappings struct {
	byCalendar map[string]string
	err        error
}

func (f *fakeMappings) ProfessionalForCalendar(_ context.Context, _, calendarID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if id, ok := f.byCalendar[strings.TrimSpace(calendarID)]; ok {
		return id, nil
	}
	return "", team.ErrMappingNotFound
}

func multiClinic() *clinic.Settings {
	return &clinic.Settings{OwnerID: "owner-1", Mode: clinic.ModeMulti, OwnerProfessionalID: "owner-1"}
}

func singleClinic() *clinic.Settings {
	return &clinic.Settings{OwnerID: "owner-1", Mode: clinic.ModeSingle, OwnerProfessionalID: "prof-owner"}
}

func TestResolveMappedCalendarWinsAlways(t *testing.T) {
	resolver := NewResolver(&fakeMappings{byCalendar: map[string]string{"cal-A": "prof-1"}}, nil)

	users := []ActingUser{
		{ID: "owner-1", Role: RoleOwner},
		{ID: "prof-2", Role: RoleProfessional},
		{ID: "staff-1", Role: RoleStaff},
	}
	for _, settings := range []*clinic.Settings{singleClinic(), multiClinic()} {
		for _, user := range users {
			got, err := resolver.Resolve(context.Background(), " cal-A ", user, settings)
			require.NoError(t, err)
			assert.Equal(t, "prof-1", got, "mapping must win for role %s mode %s", user.Role, settings.Mode)
		}
	}
}

func TestResolveSingleModeFallsBackToOwner(t *testing.T) {
	resolver := NewResolver(&fakeMappings{}, nil)

	got, err := resolver.Resolve(context.Background(), "cal-unmapped", ActingUser{ID: "staff-1", Role: RoleStaff}, singleClinic())
	require.NoError(t, err)
	assert.Equal(t, "prof-owner", got)
}

func TestResolveSelfBindingFallback(t *testing.T) {
	resolver := NewResolver(&fakeMappings{}, nil)

	for _, user := range []ActingUser{
		{ID: "prof-2", Role: RoleProfessional},
		{ID: "owner-1", Role: RoleOwner},
	} {
		got, err := resolver.Resolve(context.Background(), "cal-unmapped", user, multiClinic())
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	}
}

func TestResolveRejectsAdministrativeStaff(t *testing.T) {
	resolver := NewResolver(&fakeMappings{}, nil)

	_, err := resolver.Resolve(context.Background(), "cal-unmapped", ActingUser{ID: "staff-1", Role: RoleStaff}, multiClinic())
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "cal-unmapped", rejected.CalendarID)
	assert.Contains(t, rejected.Error(), "cal-unmapped")
}

func TestResolvePropagatesLookupFailure(t *testing.T) {
	resolver := NewResolver(&fakeMappings{err: errors.New("db down")}, nil)

	_, err := resolver.Resolve(context.Background(), "cal-A", ActingUser{ID: "owner-1", Role: RoleOwner}, multiClinic())
	require.Error(t, err)
	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected), "infrastructure failure must not look like a rejection")
}
