package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/clinicdesk/clinic-ops-platform/internal/calendar"
	"github.com/clinicdesk/clinic-ops-platform/internal/http/middleware"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// EventLister merges events from external calendars over a window.
type EventLister interface {
	ListEvents(ctx context.Context, calendarIDs []string, window calendar.Window) []calendar.Event
}

// CalendarDirectory lists the calendars bound to a tenant's professionals.
type CalendarDirectory interface {
	CalendarsForOwner(ctx context.Context, ownerID string) ([]string, error)
}

// AgendaHandler serves the dashboard agenda: the merged event window across
// the clinic's calendars.
type AgendaHandler struct {
	lister    EventLister
	directory CalendarDirectory
	logger    *logging.Logger
}

func NewAgendaHandler(lister EventLister, directory CalendarDirectory, logger *logging.Logger) *AgendaHandler {
	if lister == nil {
		panic("handlers: event lister required")
	}
	if directory == nil {
		panic("handlers: calendar directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AgendaHandler{lister: lister, directory: directory, logger: logger}
}

// AgendaResponse is the agenda listing payload.
type AgendaResponse struct {
	Events []calendar.Event `json:"events"`
}

// ListEvents handles GET /api/agenda/events?start=&end=&calendar_id=...
// start and end are RFC 3339; calendar_id may repeat to narrow the listing,
// otherwise every calendar bound to the clinic is queried.
func (h *AgendaHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be RFC 3339")
		return
	}
	if !end.After(start) {
		respondError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	calendarIDs := q["calendar_id"]
	if len(calendarIDs) == 0 {
		calendarIDs, err = h.directory.CalendarsForOwner(r.Context(), session.OwnerID)
		if err != nil {
			h.logger.Error("agenda calendar listing failed", "owner_id", session.OwnerID, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to list calendars")
			return
		}
	}

	events := h.lister.ListEvents(r.Context(), calendarIDs, calendar.Window{Start: start, End: end})
	if events == nil {
		events = []calendar.Event{}
	}
	respondJSON(w, http.StatusOK, AgendaResponse{Events: events})
}
