package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
)

type capturingSender struct {
	sent []EmailMessage
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

type staticSettings struct {
	email string
}

func (s *staticSettings) Get(_ context.Context, ownerID string) (*clinic.Settings, error) {
	out := clinic.DefaultSettings(ownerID)
	out.Name = "Clinic One"
	out.OwnerEmail = s.email
	return out, nil
}

func TestUnmappedCalendarSendsToOwner(t *testing.T) {
	sender := &capturingSender{}
	alerts := NewAlerts(sender, &staticSettings{email: "owner@clinic.test"}, time.Hour, nil)

	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-front-desk"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@clinic.test", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "cal-front-desk")
	assert.Contains(t, sender.sent[0].Body, "no professional is bound")
}

func TestUnmappedCalendarCooldown(t *testing.T) {
	sender := &capturingSender{}
	alerts := NewAlerts(sender, &staticSettings{email: "owner@clinic.test"}, time.Hour, nil)

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	alerts.now = func() time.Time { return base }

	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-A"))
	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-A"))
	assert.Len(t, sender.sent, 1, "second alert within cooldown is suppressed")

	// A different calendar is a different key.
	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-B"))
	assert.Len(t, sender.sent, 2)

	alerts.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-A"))
	assert.Len(t, sender.sent, 3, "alert fires again after the cooldown")
}

func TestUnmappedCalendarSkipsWithoutOwnerEmail(t *testing.T) {
	sender := &capturingSender{}
	alerts := NewAlerts(sender, &staticSettings{email: ""}, time.Hour, nil)

	require.NoError(t, alerts.UnmappedCalendar(context.Background(), "owner-1", "cal-A"))
	assert.Empty(t, sender.sent)
}

func TestNewSendGridSenderNilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "test@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSenderDefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "k", FromEmail: "test@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "ClinicDesk", sender.fromName)
}
