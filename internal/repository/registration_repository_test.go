package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/isa-florenville/focustime-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRegistrationRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db, "remediation_choices")

	rows := sqlmock.NewRows([]string{"id", "email", "name", "choice", "period", "degree", "created_at"}).
		AddRow("reg-1", "a@school.example", "A", "Math", 9, 1, time.Now()).
		AddRow("reg-2", "b@school.example", "B", "Latin", 10, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, choice, period, degree, created_at FROM remediation_choices ORDER BY created_at, id")).
		WillReturnRows(rows)

	registrations, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, registrations, 2)
	require.Equal(t, models.PeriodNine, registrations[0].Period)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db, "workshop_choices")

	rows := sqlmock.NewRows([]string{"id", "email", "name", "choice", "period", "degree", "created_at"}).
		AddRow("reg-1", "Jean.Dupont@school.example", "Jean Dupont", "Theatre", 910, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, choice, period, degree, created_at FROM workshop_choices WHERE LOWER(email) = LOWER($1) ORDER BY created_at, id")).
		WithArgs("jean.dupont@school.example").
		WillReturnRows(rows)

	registrations, err := repo.ListByEmail(context.Background(), "jean.dupont@school.example")
	require.NoError(t, err)
	require.Len(t, registrations, 1)
	require.Equal(t, models.PeriodCombined, registrations[0].Period)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryInsertWithinCapacity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db, "remediation_choices")

	reg := &models.Registration{
		Email:  "jean.dupont@school.example",
		Name:   "Jean Dupont",
		Choice: "Math",
		Period: models.PeriodNine,
		Degree: models.DegreeTwo,
	}

	mock.ExpectExec("INSERT INTO remediation_choices .+ WHERE \\(SELECT COUNT\\(\\*\\) FROM remediation_choices WHERE choice = \\$4 AND period = \\$5 AND degree = ANY\\(\\$8\\)\\) < \\$9").
		WithArgs(sqlmock.AnyArg(), reg.Email, reg.Name, reg.Choice, 9, 2, sqlmock.AnyArg(), pq.Array([]int64{2, 3}), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertWithinCapacity(context.Background(), reg,
		[]models.Degree{models.DegreeTwo, models.DegreeThree}, 5)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotEmpty(t, reg.ID)
	require.False(t, reg.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryInsertWithinCapacityFull(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db, "remediation_choices")

	reg := &models.Registration{
		Email:  "b@school.example",
		Name:   "B",
		Choice: "Latin",
		Period: models.PeriodTen,
		Degree: models.DegreeOne,
	}

	mock.ExpectExec("INSERT INTO remediation_choices").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertWithinCapacity(context.Background(), reg,
		[]models.Degree{models.DegreeOne}, 3)
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
