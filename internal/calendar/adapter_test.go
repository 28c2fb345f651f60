package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	events  map[string][]Event
	fail    map[string]error
	patches []patchCall
}

type patchCall struct {
	calendarID string
	eventID    string
	summary    string
	colorToken string
}

func (f *fakeProvider) ListEvents(_ context.Context, calendarID string, _ Window) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[calendarID]; err != nil {
		return nil, err
	}
	return f.events[calendarID], nil
}

func (f *fakeProvider) PatchEvent(_ context.Context, calendarID, eventID, summary, colorToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patchCall{calendarID, eventID, summary, colorToken})
	return nil
}

func testWindow() Window {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func TestListEventsMergesAcrossCalendars(t *testing.T) {
	provider := &fakeProvider{events: map[string][]Event{
		"cal-A": {{ID: "e1", CalendarID: "cal-A", ColorToken: "10"}},
		"cal-B": {{ID: "e2", CalendarID: "cal-B"}, {ID: "e3", CalendarID: "cal-B", ColorToken: "99"}},
	}}
	adapter := NewAdapter(provider, NewPalette("#default"), nil)

	merged := adapter.ListEvents(context.Background(), []string{"cal-A", "cal-B"}, testWindow())

	require.Len(t, merged, 3)
	byID := map[string]Event{}
	for _, e := range merged {
		byID[e.ID] = e
	}
	assert.Equal(t, "#51b749", byID["e1"].Color)
	assert.Equal(t, "#default", byID["e2"].Color)
	assert.Equal(t, "#default", byID["e3"].Color, "unknown token falls back to default")
}

func TestListEventsPartialFailure(t *testing.T) {
	provider := &fakeProvider{
		events: map[string][]Event{"cal-ok": {{ID: "e1", CalendarID: "cal-ok"}}},
		fail:   map[string]error{"cal-broken": errors.New("boom")},
	}
	adapter := NewAdapter(provider, NewPalette(""), nil)

	merged := adapter.ListEvents(context.Background(), []string{"cal-ok", "cal-broken"}, testWindow())

	require.Len(t, merged, 1)
	assert.Equal(t, "e1", merged[0].ID)
}

func TestUpdateEventTag(t *testing.T) {
	provider := &fakeProvider{}
	adapter := NewAdapter(provider, NewPalette(""), nil)

	err := adapter.UpdateEventTag(context.Background(), "cal-A", "e1", "[CONFIRMED] Cleaning", "10")
	require.NoError(t, err)
	require.Len(t, provider.patches, 1)
	assert.Equal(t, patchCall{"cal-A", "e1", "[CONFIRMED] Cleaning", "10"}, provider.patches[0])
}

func TestPaletteDisplay(t *testing.T) {
	p := NewPalette("")
	assert.Equal(t, "#dc2127", p.Display("11"))
	assert.Equal(t, "#3174ad", p.Display(""))
	assert.Equal(t, "#3174ad", p.Display("nope"))
}
