package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinic-ops-platform/internal/attribution"
	"github.com/clinicdesk/clinic-ops-platform/internal/http/middleware"
	"github.com/clinicdesk/clinic-ops-platform/internal/procedures"
	"github.com/clinicdesk/clinic-ops-platform/pkg/logging"
)

// OverrideWriter upserts commission override rules.
type OverrideWriter interface {
	UpsertOverride(ctx context.Context, rule procedures.OverrideRule) (*procedures.OverrideRule, error)
}

// CommissionsHandler administers per-professional commission overrides.
type CommissionsHandler struct {
	overrides OverrideWriter
	logger    *logging.Logger
}

func NewCommissionsHandler(overrides OverrideWriter, logger *logging.Logger) *CommissionsHandler {
	if overrides == nil {
		panic("handlers: override writer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CommissionsHandler{overrides: overrides, logger: logger}
}

// UpsertOverrideRequest is the body of PUT /api/commissions/{professionalID}/{procedureID}.
type UpsertOverrideRequest struct {
	Percentage float64 `json:"percentage"`
	Active     bool    `json:"active"`
}

// UpsertOverride handles PUT /api/commissions/{professionalID}/{procedureID}.
// Owner-only: professionals must not edit their own commission terms.
func (h *CommissionsHandler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}
	if session.User.Role != attribution.RoleOwner {
		respondError(w, http.StatusForbidden, "only the clinic owner can edit commission rules")
		return
	}

	professionalID := strings.TrimSpace(chi.URLParam(r, "professionalID"))
	procedureID := strings.TrimSpace(chi.URLParam(r, "procedureID"))
	if professionalID == "" || procedureID == "" {
		respondError(w, http.StatusBadRequest, "missing professional or procedure id")
		return
	}

	var req UpsertOverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Percentage < 0 || req.Percentage > 100 {
		respondError(w, http.StatusBadRequest, "percentage must be between 0 and 100")
		return
	}

	rule, err := h.overrides.UpsertOverride(r.Context(), procedures.OverrideRule{
		OwnerID:        session.OwnerID,
		ProfessionalID: professionalID,
		ProcedureID:    procedureID,
		Percentage:     req.Percentage,
		Active:         req.Active,
	})
	if err != nil {
		h.logger.Error("override upsert failed", "professional_id", professionalID, "procedure_id", procedureID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save commission rule")
		return
	}
	respondJSON(w, http.StatusOK, rule)
}
