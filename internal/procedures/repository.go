// Package procedures reads the procedure catalog and commission override rules.
package procedures

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrProcedureNotFound means the procedure id is unknown to the tenant.
	ErrProcedureNotFound = errors.New("procedures: not found")
	// ErrOverrideNotFound means no override row exists for the pair.
	ErrOverrideNotFound = errors.New("procedures: commission override not found")
)

// Procedure is a catalog entry. Price and lab cost are integer cents.
type Procedure struct {
	ID                       string  `json:"id"`
	OwnerID                  string  `json:"owner_id"`
	Name                     string  `json:"name"`
	PriceCents               int64   `json:"price_cents"`
	LabCostCents             int64   `json:"lab_cost_cents"`
	DefaultCommissionPercent float64 `json:"default_commission_percent"`
}

// OverrideRule is a per-professional commission percentage for one procedure.
// At most one row exists per (professional, procedure) pair.
type OverrideRule struct {
	OwnerID        string  `json:"owner_id"`
	ProfessionalID string  `json:"professional_id"`
	ProcedureID    string  `json:"procedure_id"`
	Percentage     float64 `json:"percentage"`
	Active         bool    `json:"active"`
}

// procedureDB defines the database interface needed by Repository
type procedureDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides reads for procedures and reads/upserts for overrides.
type Repository struct {
	db procedureDB
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("procedures: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db procedureDB) *Repository {
	return &Repository{db: db}
}

// GetProcedure loads one catalog entry scoped to the tenant.
func (r *Repository) GetProcedure(ctx context.Context, ownerID, id string) (*Procedure, error) {
	var p Procedure
	query := `SELECT id, owner_id, name, price_cents, lab_cost_cents, default_commission_percent
		FROM procedures WHERE id = $1 AND owner_id = $2`
	err := r.db.QueryRow(ctx, query, id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.PriceCents, &p.LabCostCents, &p.DefaultCommissionPercent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProcedureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("procedures: load procedure: %w", err)
	}
	return &p, nil
}

// GetOverride loads the override row for a (professional, procedure) pair,
// active or not. Callers decide whether an inactive row counts.
func (r *Repository) GetOverride(ctx context.Context, ownerID, professionalID, procedureID string) (*OverrideRule, error) {
	var rule OverrideRule
	query := `SELECT owner_id, professional_id, procedure_id, percentage, active
		FROM commission_overrides WHERE owner_id = $1 AND professional_id = $2 AND procedure_id = $3`
	err := r.db.QueryRow(ctx, query, ownerID, professionalID, procedureID).
		Scan(&rule.OwnerID, &rule.ProfessionalID, &rule.ProcedureID, &rule.Percentage, &rule.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("procedures: load override: %w", err)
	}
	return &rule, nil
}

// UpsertOverride creates or replaces the override row for the pair.
func (r *Repository) UpsertOverride(ctx context.Context, rule OverrideRule) (*OverrideRule, error) {
	query := `INSERT INTO commission_overrides (owner_id, professional_id, procedure_id, percentage, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, professional_id, procedure_id)
		DO UPDATE SET percentage = EXCLUDED.percentage, active = EXCLUDED.active, updated_at = now()
		RETURNING owner_id, professional_id, procedure_id, percentage, active`
	var out OverrideRule
	err := r.db.QueryRow(ctx, query, rule.OwnerID, rule.ProfessionalID, rule.ProcedureID, rule.Percentage, rule.Active).
		Scan(&out.OwnerID, &out.ProfessionalID, &out.ProcedureID, &out.Percentage, &out.Active)
	if err != nil {
		return nil, fmt.Errorf("procedures: upsert override: %w", err)
	}
	return &out, nil
}
