package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/isa-florenville/focustime-api/internal/models"
)

// StudentDirectoryRepository reads the student directory mapping emails to
// degrees. The directory is maintained elsewhere; this API only reads it.
type StudentDirectoryRepository struct {
	db *sqlx.DB
}

// NewStudentDirectoryRepository constructs the repository.
func NewStudentDirectoryRepository(db *sqlx.DB) *StudentDirectoryRepository {
	return &StudentDirectoryRepository{db: db}
}

// FindByEmail returns the directory entry for an email, matched
// case-insensitively. sql.ErrNoRows passes through for absent entries.
func (r *StudentDirectoryRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	const query = `SELECT email, name, degree FROM students WHERE LOWER(email) = LOWER($1)`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListEmails returns every directory email, lowercased and sorted, for the
// manual enrollment picker.
func (r *StudentDirectoryRepository) ListEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT LOWER(email) FROM students ORDER BY LOWER(email)`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query); err != nil {
		return nil, fmt.Errorf("list directory emails: %w", err)
	}
	return emails, nil
}
