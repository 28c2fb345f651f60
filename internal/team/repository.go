// Package team reads the professional roster data maintained by the team
// management flows: which external calendar belongs to which professional.
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMappingNotFound means no professional is linked to the calendar id.
var ErrMappingNotFound = errors.New("team: no professional mapped to calendar")

// mappingDB defines the database interface needed by MappingRepository
type mappingDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// MappingRepository looks up professional↔calendar associations. The rows are
// written by the team management collaborator; this engine only reads them.
type MappingRepository struct {
	db mappingDB
}

// NewMappingRepository creates a repository backed by pgx pool.
func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	if pool == nil {
		panic("team: pgx pool required")
	}
	return &MappingRepository{db: pool}
}

// NewMappingRepositoryWithDB allows injecting a mock database for testing.
func NewMappingRepositoryWithDB(db mappingDB) *MappingRepository {
	return &MappingRepository{db: db}
}

// ProfessionalForCalendar returns the professional owning the calendar id
// within the tenant. The id is trimmed before comparison; matching is
// case-sensitive, mirroring how the provider treats calendar identifiers.
func (r *MappingRepository) ProfessionalForCalendar(ctx context.Context, ownerID, calendarID string) (string, error) {
	calendarID = strings.TrimSpace(calendarID)
	if calendarID == "" {
		return "", ErrMappingNotFound
	}

	var professionalID string
	query := `SELECT professional_id FROM professional_calendar_mappings WHERE owner_id = $1 AND calendar_id = $2`
	err := r.db.QueryRow(ctx, query, ownerID, calendarID).Scan(&professionalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrMappingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("team: lookup calendar mapping: %w", err)
	}
	return professionalID, nil
}

// CalendarsForOwner returns every calendar id bound to a professional of the
// tenant, in insertion order. An owner with no bindings gets an empty slice.
func (r *MappingRepository) CalendarsForOwner(ctx context.Context, ownerID string) ([]string, error) {
	query := `SELECT calendar_id FROM professional_calendar_mappings WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("team: list calendars: %w", err)
	}
	defer rows.Close()

	var calendars []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("team: scan calendar id: %w", err)
		}
		calendars = append(calendars, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team: list calendars: %w", err)
	}
	return calendars, nil
}
