package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/isa-florenville/focustime-api/internal/models"
)

// RegistrationRepository handles persistence of choice records. The backing
// table depends on the deployment variant (remediation or workshop
// campaign).
type RegistrationRepository struct {
	db    *sqlx.DB
	table string
}

// NewRegistrationRepository constructs the repository for the given choice
// table.
func NewRegistrationRepository(db *sqlx.DB, table string) *RegistrationRepository {
	return &RegistrationRepository{db: db, table: table}
}

// ListAll returns every stored registration in insertion order. Callers
// re-read on every interaction; no caching happens here.
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]models.Registration, error) {
	query := fmt.Sprintf(`SELECT id, email, name, choice, period, degree, created_at FROM %s ORDER BY created_at, id`, r.table)
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// ListByEmail returns the registrations held by one student, matched
// case-insensitively.
func (r *RegistrationRepository) ListByEmail(ctx context.Context, email string) ([]models.Registration, error) {
	query := fmt.Sprintf(`SELECT id, email, name, choice, period, degree, created_at FROM %s WHERE LOWER(email) = LOWER($1) ORDER BY created_at, id`, r.table)
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, email); err != nil {
		return nil, fmt.Errorf("list registrations for %s: %w", email, err)
	}
	return registrations, nil
}

// Insert persists a new registration record unconditionally.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *models.Registration) error {
	prepareRecord(reg)
	query := fmt.Sprintf(`INSERT INTO %s (id, email, name, choice, period, degree, created_at)
        VALUES (:id, :email, :name, :choice, :period, :degree, :created_at)`, r.table)
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// InsertWithinCapacity persists the record only while the occupancy across
// the given scope degrees is still below capacity, re-checking the count in
// the same statement. Returns false when the seat was gone at commit time.
func (r *RegistrationRepository) InsertWithinCapacity(ctx context.Context, reg *models.Registration, scopeDegrees []models.Degree, capacity int) (bool, error) {
	prepareRecord(reg)

	degrees := make([]int64, len(scopeDegrees))
	for i, d := range scopeDegrees {
		degrees[i] = int64(d)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, email, name, choice, period, degree, created_at)
        SELECT $1, $2, $3, $4, $5, $6, $7
        WHERE (SELECT COUNT(*) FROM %s WHERE choice = $4 AND period = $5 AND degree = ANY($8)) < $9`,
		r.table, r.table)

	result, err := r.db.ExecContext(ctx, query,
		reg.ID, reg.Email, reg.Name, reg.Choice, int(reg.Period), int(reg.Degree), reg.CreatedAt,
		pq.Array(degrees), capacity)
	if err != nil {
		return false, fmt.Errorf("insert registration within capacity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert registration within capacity: %w", err)
	}
	return affected == 1, nil
}

func prepareRecord(reg *models.Registration) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
}
