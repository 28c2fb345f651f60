// Package patients holds the small slice of patient data this engine touches.
package patients

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// patientDB defines the database interface needed by Repository
type patientDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository updates patient display pointers. Patient record CRUD proper is
// a collaborator concern.
type Repository struct {
	db patientDB
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db patientDB) *Repository {
	return &Repository{db: db}
}

// SetLastAttended records the professional who last completed an appointment
// for the patient. Display metadata only; a missing patient row is not an
// error worth failing a completion over, so zero rows updated is fine.
func (r *Repository) SetLastAttended(ctx context.Context, ownerID, patientID, professionalID string) error {
	query := `UPDATE patients SET last_professional_id = $3, updated_at = now() WHERE id = $1 AND owner_id = $2`
	if _, err := r.db.Exec(ctx, query, patientID, ownerID, professionalID); err != nil {
		return fmt.Errorf("patients: set last attended: %w", err)
	}
	return nil
}
