package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

const defaultFetchTimeout = 20 * time.Second

// Provider is the slice of the Google client the adapter needs. Tests inject
// fakes; production wires *GoogleClient.
type Provider interface {
	ListEvents(ctx context.Context, calendarID string, window Window) ([]Event, error)
	PatchEvent(ctx context.Context, calendarID, eventID, summary, colorToken string) error
}

// Adapter merges events across calendars and applies the display palette.
type Adapter struct {
	provider     Provider
	palette      Palette
	fetchTimeout time.Duration
	logger       *logging.Logger
}

// NewAdapter creates a calendar source adapter with the default fetch timeout.
func NewAdapter(provider Provider, palette Palette, logger *logging.Logger) *Adapter {
	return NewAdapterWithTimeout(provider, palette, defaultFetchTimeout, logger)
}

// NewAdapterWithTimeout creates an adapter that bounds each multi-calendar
// fetch with the given timeout.
func NewAdapterWithTimeout(provider Provider, palette Palette, fetchTimeout time.Duration, logger *logging.Logger) *Adapter {
	if provider == nil {
		panic("calendar: provider required")
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{provider: provider, palette: palette, fetchTimeout: fetchTimeout, logger: logger}
}

// ListEvents fetches the window from every calendar concurrently and merges
// the results. A calendar that fails to load contributes zero events and a
// logged warning; the fetch as a whole still succeeds. Merge order is
// unspecified.
func (a *Adapter) ListEvents(ctx context.Context, calendarIDs []string, window Window) []Event {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []Event
	)
	for _, id := range calendarIDs {
		wg.Add(1)
		go func(calendarID string) {
			defer wg.Done()
			events, err := a.provider.ListEvents(ctx, calendarID, window)
			if err != nil {
				a.logger.Warn("calendar fetch failed", "calendar_id", calendarID, "error", err)
				return
			}
			for i := range events {
				events[i].Color = a.palette.Display(events[i].ColorToken)
			}
			mu.Lock()
			merged = append(merged, events...)
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return merged
}

// UpdateEventTag rewrites an event's title and color. Errors are returned for
// the caller to decide on; nothing here retries.
func (a *Adapter) UpdateEventTag(ctx context.Context, calendarID, eventID, newTitle, colorToken string) error {
	return a.provider.PatchEvent(ctx, calendarID, eventID, newTitle, colorToken)
}
