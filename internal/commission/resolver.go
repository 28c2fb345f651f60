// Package commission computes the professional's cut of a completed
// appointment.
package commission

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/clinicdesk/clinic-ops-platform/internal/procedures"
)

// CatalogReader is the slice of the procedure repository the resolver needs.
type CatalogReader interface {
	GetProcedure(ctx context.Context, ownerID, id string) (*procedures.Procedure, error)
	GetOverride(ctx context.Context, ownerID, professionalID, procedureID string) (*procedures.OverrideRule, error)
}

// Resolver applies the layered commission policy: an active per-professional
// override supersedes the procedure default; commission is a percentage of
// profit (charge minus lab cost) and never negative.
type Resolver struct {
	catalog CatalogReader
}

// NewResolver creates a commission resolver.
func NewResolver(catalog CatalogReader) *Resolver {
	if catalog == nil {
		panic("commission: catalog reader required")
	}
	return &Resolver{catalog: catalog}
}

// Resolve returns the commission in cents for a completed appointment.
// Rounding happens here, half-up to the cent, and nowhere else: this is the
// value that gets persisted.
func (r *Resolver) Resolve(ctx context.Context, ownerID, professionalID, procedureID string, chargedAmountCents int64) (int64, error) {
	proc, err := r.catalog.GetProcedure(ctx, ownerID, procedureID)
	if err != nil {
		return 0, fmt.Errorf("commission: %w", err)
	}

	percentage := proc.DefaultCommissionPercent
	rule, err := r.catalog.GetOverride(ctx, ownerID, professionalID, procedureID)
	switch {
	case err == nil:
		if rule.Active {
			percentage = rule.Percentage
		}
	case errors.Is(err, procedures.ErrOverrideNotFound):
		// No override, the procedure default applies.
	default:
		return 0, fmt.Errorf("commission: %w", err)
	}

	profitCents := chargedAmountCents - proc.LabCostCents
	if profitCents <= 0 || percentage <= 0 {
		return 0, nil
	}
	return roundHalfUp(float64(profitCents) * percentage / 100), nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
