// Package calendar fetches and updates external Google Calendar events.
package calendar

import "time"

// Event is the normalized shape of a provider-side calendar entry.
// It is an ephemeral read model; the appointment record is the system of record.
type Event struct {
	ID         string    `json:"id"`
	CalendarID string    `json:"calendar_id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"all_day"`
	// ColorToken is the provider's color id ("1".."11"), empty when unset.
	ColorToken string `json:"color_token,omitempty"`
	// Color is the display hex resolved through the palette.
	Color string `json:"color"`
}

// Window bounds an event fetch in time.
type Window struct {
	Start time.Time
	End   time.Time
}
