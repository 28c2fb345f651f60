package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleClient wraps the Google Calendar v3 API for event reads and the
// restricted writes (summary and color) this system performs.
type GoogleClient struct {
	svc      *gcal.Service
	pageSize int64
}

// NewGoogleClient builds a client authenticated with the given token source.
func NewGoogleClient(ctx context.Context, ts oauth2.TokenSource, pageSize int64) (*GoogleClient, error) {
	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 2500
	}
	return &GoogleClient{svc: svc, pageSize: pageSize}, nil
}

// NewGoogleClientWithToken builds a client from a static bearer token.
func NewGoogleClientWithToken(ctx context.Context, accessToken string, pageSize int64) (*GoogleClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("calendar: access token required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return NewGoogleClient(ctx, ts, pageSize)
}

// ListEvents fetches all single events for one calendar inside the window,
// following pagination. Recurring events are expanded by the provider.
func (c *GoogleClient) ListEvents(ctx context.Context, calendarID string, window Window) ([]Event, error) {
	var out []Event
	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(window.Start.Format(time.RFC3339)).
			TimeMax(window.End.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			ShowDeleted(false).
			MaxResults(c.pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("calendar: list events for %s: %w", calendarID, err)
		}
		for _, item := range res.Items {
			evt, ok := normalizeEvent(calendarID, item)
			if !ok {
				continue
			}
			out = append(out, evt)
		}
		if res.NextPageToken == "" {
			return out, nil
		}
		pageToken = res.NextPageToken
	}
}

// PatchEvent updates only the summary and color of a single event.
func (c *GoogleClient) PatchEvent(ctx context.Context, calendarID, eventID, summary, colorToken string) error {
	patch := &gcal.Event{Summary: summary}
	if colorToken != "" {
		patch.ColorId = colorToken
	}
	if _, err := c.svc.Events.Patch(calendarID, eventID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: patch event %s on %s: %w", eventID, calendarID, err)
	}
	return nil
}

func normalizeEvent(calendarID string, item *gcal.Event) (Event, bool) {
	if item == nil || item.Id == "" || item.Start == nil || item.End == nil {
		return Event{}, false
	}
	start, allDay, ok := parseEventTime(item.Start)
	if !ok {
		return Event{}, false
	}
	end, _, ok := parseEventTime(item.End)
	if !ok {
		return Event{}, false
	}
	return Event{
		ID:         item.Id,
		CalendarID: calendarID,
		Title:      item.Summary,
		Start:      start,
		End:        end,
		AllDay:     allDay,
		ColorToken: item.ColorId,
	}, true
}

// parseEventTime handles both timed (dateTime) and all-day (date) entries.
func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool, bool) {
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, false, true
	}
	if edt.Date != "" {
		t, err := time.Parse("2006-01-02", edt.Date)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	return time.Time{}, false, false
}
