package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-ops-platform/internal/calendar"
)

type fakeLister struct {
	events       []calendar.Event
	gotCalendars []string
	gotWindow    calendar.Window
}

func (f *fakeLister) ListEvents(_ context.Context, calendarIDs []string, window calendar.Window) []calendar.Event {
	f.gotCalendars = calendarIDs
	f.gotWindow = window
	return f.events
}

type fakeDirectory struct {
	calendars []string
	err       error
}

func (f *fakeDirectory) CalendarsForOwner(context.Context, string) ([]string, error) {
	return f.calendars, f.err
}

func TestAgendaListsAllOwnerCalendars(t *testing.T) {
	lister := &fakeLister{events: []calendar.Event{
		{ID: "e1", CalendarID: "cal-A", Title: "Cleaning"},
		{ID: "e2", CalendarID: "cal-B", Title: "Whitening"},
	}}
	h := NewAgendaHandler(lister, &fakeDirectory{calendars: []string{"cal-A", "cal-B"}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/agenda/events?start=2024-03-10T00:00:00Z&end=2024-03-11T00:00:00Z", nil)
	rec := serveWithSession(http.HandlerFunc(h.ListEvents), req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AgendaResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Events, 2)
	assert.Equal(t, []string{"cal-A", "cal-B"}, lister.gotCalendars)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), lister.gotWindow.Start)
}

func TestAgendaCalendarFilter(t *testing.T) {
	lister := &fakeLister{}
	h := NewAgendaHandler(lister, &fakeDirectory{calendars: []string{"cal-A", "cal-B"}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/agenda/events?start=2024-03-10T00:00:00Z&end=2024-03-11T00:00:00Z&calendar_id=cal-B", nil)
	rec := serveWithSession(http.HandlerFunc(h.ListEvents), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cal-B"}, lister.gotCalendars)
}

func TestAgendaEmptyWindowIsEmptyArray(t *testing.T) {
	h := NewAgendaHandler(&fakeLister{}, &fakeDirectory{}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/agenda/events?start=2024-03-10T00:00:00Z&end=2024-03-11T00:00:00Z", nil)
	rec := serveWithSession(http.HandlerFunc(h.ListEvents), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
}

func TestAgendaRejectsBadWindow(t *testing.T) {
	h := NewAgendaHandler(&fakeLister{}, &fakeDirectory{}, nil)

	for _, query := range []string{
		"start=bogus&end=2024-03-11T00:00:00Z",
		"start=2024-03-10T00:00:00Z&end=bogus",
		"start=2024-03-11T00:00:00Z&end=2024-03-10T00:00:00Z",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/agenda/events?"+query, nil)
		rec := serveWithSession(http.HandlerFunc(h.ListEvents), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}
