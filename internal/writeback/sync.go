// Package writeback propagates appointment status to the external calendar.
// Everything here is best-effort: the clinical and financial record is already
// durable before any of this runs, so failures degrade to logged warnings.
package writeback

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// Status tags prepended to the event title.
const (
	TagConfirmed = "CONFIRMED"
	TagMissed    = "MISSED"
)

// leadingTag matches an existing bracketed status prefix so repeated tagging
// replaces instead of accumulating.
var leadingTag = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

// EventTagger is the write capability of the calendar adapter.
type EventTagger interface {
	UpdateEventTag(ctx context.Context, calendarID, eventID, newTitle, colorToken string) error
}

// Sync tags external events with the appointment outcome.
type Sync struct {
	tagger         EventTagger
	confirmedColor string
	missedColor    string
	logger         *logging.Logger
}

// NewSync creates a writeback sync. Color tokens are provider color ids.
func NewSync(tagger EventTagger, confirmedColor, missedColor string, logger *logging.Logger) *Sync {
	if tagger == nil {
		panic("writeback: event tagger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sync{
		tagger:         tagger,
		confirmedColor: confirmedColor,
		missedColor:    missedColor,
		logger:         logger,
	}
}

// TagEvent rewrites the event title to carry exactly one status tag and sets
// the color. The returned error is for the caller's log line only; callers
// must not fail their own operation on it.
func (s *Sync) TagEvent(ctx context.Context, calendarID, eventID, currentTitle, tag, colorToken string) error {
	title := RetagTitle(currentTitle, tag)
	if err := s.tagger.UpdateEventTag(ctx, calendarID, eventID, title, colorToken); err != nil {
		s.logger.Warn("calendar writeback failed",
			"calendar_id", calendarID, "event_id", eventID, "tag", tag, "error", err)
		return fmt.Errorf("writeback: tag event: %w", err)
	}
	return nil
}

// Confirmed tags an event as completed with the positive color.
func (s *Sync) Confirmed(ctx context.Context, calendarID, eventID, currentTitle string) error {
	return s.TagEvent(ctx, calendarID, eventID, currentTitle, TagConfirmed, s.confirmedColor)
}

// Missed tags an event as a no-show with the negative color.
func (s *Sync) Missed(ctx context.Context, calendarID, eventID, currentTitle string) error {
	return s.TagEvent(ctx, calendarID, eventID, currentTitle, TagMissed, s.missedColor)
}

// RetagTitle strips any leading bracketed tag and prepends the new one.
func RetagTitle(currentTitle, tag string) string {
	base := strings.TrimSpace(leadingTag.ReplaceAllString(currentTitle, ""))
	if base == "" {
		return fmt.Sprintf("[%s]", tag)
	}
	return fmt.Sprintf("[%s] %s", tag, base)
}
