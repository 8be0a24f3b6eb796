package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/isa-florenville/focustime-api/internal/models"
)

func TestStudentDirectoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"email", "name", "degree"}).
		AddRow("jean.dupont@school.example", "Jean Dupont", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, name, degree FROM students WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Jean.Dupont@school.example").
		WillReturnRows(rows)

	student, err := repo.FindByEmail(context.Background(), "Jean.Dupont@school.example")
	require.NoError(t, err)
	require.Equal(t, models.DegreeTwo, student.Degree)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDirectoryFindByEmailAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, name, degree FROM students WHERE LOWER(email) = LOWER($1)")).
		WithArgs("ghost@school.example").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@school.example")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDirectoryListEmails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"lower"}).
		AddRow("a@school.example").
		AddRow("b@school.example")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT LOWER(email) FROM students ORDER BY LOWER(email)")).
		WillReturnRows(rows)

	emails, err := repo.ListEmails(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a@school.example", "b@school.example"}, emails)
	require.NoError(t, mock.ExpectationsWereMet())
}
