// Package notify emails clinic operators about conditions that need a
// human decision, such as calendars no professional is bound to.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clinicdesk/clinic-ops-platform/internal/clinic"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// SettingsReader loads tenant operating settings.
type SettingsReader interface {
	Get(ctx context.Context, ownerID string) (*clinic.Settings, error)
}

// Alerts sends operator alerts with a per-key cooldown so a busy agenda
// does not flood the owner's inbox with the same problem.
type Alerts struct {
	email    EmailSender
	settings SettingsReader
	cooldown time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// NewAlerts creates an alert service. A nil email sender disables alerts.
func NewAlerts(email EmailSender, settings SettingsReader, cooldown time.Duration, logger *logging.Logger) *Alerts {
	if cooldown <= 0 {
		cooldown = 6 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Alerts{
		email:    email,
		settings: settings,
		cooldown: cooldown,
		logger:   logger,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// UnmappedCalendar tells the clinic owner that a staff member tried to link
// an event from a calendar with no professional binding. Throttled per
// owner+calendar pair.
func (a *Alerts) UnmappedCalendar(ctx context.Context, ownerID, calendarID string) error {
	if a.email == nil || a.settings == nil {
		return nil
	}

	key := ownerID + ":" + calendarID
	a.mu.Lock()
	if last, ok := a.lastSent[key]; ok && a.now().Sub(last) < a.cooldown {
		a.mu.Unlock()
		return nil
	}
	a.lastSent[key] = a.now()
	a.mu.Unlock()

	settings, err := a.settings.Get(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("notify: get settings: %w", err)
	}
	if settings.OwnerEmail == "" {
		a.logger.Debug("no owner email configured, skipping alert", "owner_id", ownerID)
		return nil
	}

	msg := EmailMessage{
		To:      settings.OwnerEmail,
		ToName:  settings.Name,
		Subject: fmt.Sprintf("Calendar %s needs a professional binding", calendarID),
		Body: fmt.Sprintf(
			"A staff member tried to register an appointment from calendar %q, "+
				"but no professional is bound to it. Bind a professional to this "+
				"calendar in your team settings so appointments can be attributed.",
			calendarID),
	}
	if err := a.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: unmapped calendar alert: %w", err)
	}
	a.logger.Info("unmapped calendar alert sent", "owner_id", ownerID, "calendar_id", calendarID)
	return nil
}
