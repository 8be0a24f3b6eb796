package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isa-florenville/focustime-api/internal/models"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
)

type writerStub struct {
	inserted     []models.Registration
	scopeDegrees [][]models.Degree
	capacities   []int
	reject       bool
	err          error
}

func (s *writerStub) InsertWithinCapacity(ctx context.Context, reg *models.Registration, scopeDegrees []models.Degree, capacity int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.reject {
		return false, nil
	}
	s.inserted = append(s.inserted, *reg)
	s.scopeDegrees = append(s.scopeDegrees, scopeDegrees)
	s.capacities = append(s.capacities, capacity)
	return true, nil
}

type catalogStub struct {
	singles  []models.Activity
	combined []models.Activity
	window   models.Window
}

func (s catalogStub) ActivitiesFor(period models.Period) []models.Activity {
	if period == models.PeriodCombined {
		return s.combined
	}
	return s.singles
}

func (s catalogStub) WindowFor(period models.Period) models.Window {
	return s.window
}

type directoryStub struct {
	students map[string]models.Student
}

func (s directoryStub) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, ok := s.students[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

type invalidatorStub struct {
	calls int
}

func (s *invalidatorStub) Invalidate(ctx context.Context) {
	s.calls++
}

var (
	openClock   = func() time.Time { return time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC) }
	closedClock = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
)

func newTestRegistrationService(t *testing.T, records []models.Registration, cat catalogStub, dir directoryStub, writer *writerStub) (*RegistrationService, *invalidatorStub) {
	t.Helper()
	ledger := NewLedgerService(&listerStub{records: records}, nil, nil, 1, 0)
	invalidator := &invalidatorStub{}
	svc := NewRegistrationService(ledger, writer, cat, dir, invalidator, nil, nil, nil).WithClock(openClock)
	return svc, invalidator
}

func studentIdentity() models.Identity {
	return models.Identity{Email: "jean.dupont@school.be", Name: "Jean Dupont", Degree: models.DegreeOne, Role: models.RoleStudent}
}

func defaultCatalog() catalogStub {
	return catalogStub{
		singles: []models.Activity{
			{Name: "Maths D1", Scope: models.ScopeFor(models.DegreeOne), Capacity: 3},
			{Name: "Sciences", Scope: models.SharedScope, Capacity: 5},
		},
		combined: []models.Activity{
			{Name: "Etude longue", Scope: models.ScopeFor(models.DegreeOne), Capacity: 2, Combined: true},
		},
		window: testWindow(),
	}
}

func TestSelfRegisterCommits(t *testing.T) {
	writer := &writerStub{}
	svc, invalidator := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, writer)

	reg, err := svc.SelfRegister(context.Background(), studentIdentity(), SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	require.NoError(t, err)

	assert.Equal(t, "jean.dupont@school.be", reg.Email)
	assert.Equal(t, "Maths D1", reg.Choice)
	assert.Equal(t, models.PeriodNine, reg.Period)
	assert.Equal(t, models.DegreeOne, reg.Degree)

	require.Len(t, writer.inserted, 1)
	assert.Equal(t, []models.Degree{models.DegreeOne}, writer.scopeDegrees[0])
	assert.Equal(t, 3, writer.capacities[0])
	assert.Equal(t, 1, invalidator.calls)
}

func TestSelfRegisterRejectedBeforeWindowOpens(t *testing.T) {
	writer := &writerStub{}
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, writer)
	svc.WithClock(closedClock)

	_, err := svc.SelfRegister(context.Background(), studentIdentity(), SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrWindowClosed))
	assert.Empty(t, writer.inserted)
}

func TestSelfRegisterRejectsStaff(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, &writerStub{})
	staff := models.Identity{Email: "prof@school.be", Degree: models.DegreeStaff, Role: models.RoleStaff}

	_, err := svc.SelfRegister(context.Background(), staff, SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestSelfRegisterRejectsUnresolvedDegree(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, &writerStub{})
	unknown := models.Identity{Email: "ghost@school.be", Degree: models.DegreeUnresolved, Role: models.RoleStudent}

	_, err := svc.SelfRegister(context.Background(), unknown, SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentUnresolved))
}

func TestSelfRegisterRejectsTakenPeriod(t *testing.T) {
	existing := []models.Registration{
		{Email: "jean.dupont@school.be", Choice: "Etude longue", Period: models.PeriodCombined, Degree: models.DegreeOne},
	}
	writer := &writerStub{}
	svc, _ := newTestRegistrationService(t, existing, defaultCatalog(), directoryStub{}, writer)

	_, err := svc.SelfRegister(context.Background(), studentIdentity(), SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrPeriodTaken))
	assert.Empty(t, writer.inserted)
}

func TestSelfRegisterRejectsFullGroup(t *testing.T) {
	existing := []models.Registration{
		{Email: "a@school.be", Choice: "Maths D1", Period: models.PeriodNine, Degree: models.DegreeOne},
		{Email: "b@school.be", Choice: "Maths D1", Period: models.PeriodNine, Degree: models.DegreeOne},
		{Email: "c@school.be", Choice: "Maths D1", Period: models.PeriodNine, Degree: models.DegreeOne},
	}
	svc, _ := newTestRegistrationService(t, existing, defaultCatalog(), directoryStub{}, &writerStub{})

	_, err := svc.SelfRegister(context.Background(), studentIdentity(), SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrSeatsFull))
}

func TestSelfRegisterSharedPoolCountsBothTiers(t *testing.T) {
	existing := []models.Registration{
		{Email: "a@school.be", Choice: "Sciences", Period: models.PeriodNine, Degree: models.DegreeTwo},
		{Email: "b@school.be", Choice: "Sciences", Period: models.PeriodNine, Degree: models.DegreeTwo},
		{Email: "c@school.be", Choice: "Sciences", Period: models.PeriodNine, Degree: models.DegreeThree},
		{Email: "d@school.be", Choice: "Sciences", Period: models.PeriodNine, Degree: models.DegreeThree},
		{Email: "e@school.be", Choice: "Sciences", Period: models.PeriodNine, Degree: models.DegreeTwo},
	}
	writer := &writerStub{}
	svc, _ := newTestRegistrationService(t, existing, defaultCatalog(), directoryStub{}, writer)
	identity := models.Identity{Email: "f@school.be", Name: "F", Degree: models.DegreeTwo, Role: models.RoleStudent}

	_, err := svc.SelfRegister(context.Background(), identity, SelfRegisterRequest{Choice: "Sciences", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrSeatsFull))
	assert.Empty(t, writer.inserted)
}

func TestSelfRegisterLosesCommitRace(t *testing.T) {
	writer := &writerStub{reject: true}
	svc, invalidator := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, writer)

	_, err := svc.SelfRegister(context.Background(), studentIdentity(), SelfRegisterRequest{Choice: "Maths D1", Period: 9})
	assert.True(t, appErrors.Is(err, appErrors.ErrSeatsFull))
	assert.Zero(t, invalidator.calls)
}

func staffIdentity() models.Identity {
	return models.Identity{Email: "prof@school.be", Name: "Prof", Degree: models.DegreeStaff, Role: models.RoleStaff}
}

func TestTeacherEnrollIgnoresWindow(t *testing.T) {
	writer := &writerStub{}
	dir := directoryStub{students: map[string]models.Student{
		"jean.dupont@school.be": {Email: "jean.dupont@school.be", Name: "Jean Dupont", Degree: models.DegreeOne},
	}}
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), dir, writer)
	svc.WithClock(closedClock)

	outcomes, err := svc.TeacherEnroll(context.Background(), staffIdentity(), TeacherEnrollRequest{
		Email: "jean.dupont@school.be",
		Pairs: []EnrollmentPair{{Choice: "Maths D1", Period: 9}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeCommitted, outcomes[0].Status)
	require.Len(t, writer.inserted, 1)
}

func TestTeacherEnrollRequiresStaffRole(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, &writerStub{})

	_, err := svc.TeacherEnroll(context.Background(), studentIdentity(), TeacherEnrollRequest{
		Email: "jean.dupont@school.be",
		Pairs: []EnrollmentPair{{Choice: "Maths D1", Period: 9}},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestTeacherEnrollPairsAreIndependent(t *testing.T) {
	writer := &writerStub{}
	dir := directoryStub{students: map[string]models.Student{
		"jean.dupont@school.be": {Email: "jean.dupont@school.be", Name: "Jean Dupont", Degree: models.DegreeOne},
	}}
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), dir, writer)

	outcomes, err := svc.TeacherEnroll(context.Background(), staffIdentity(), TeacherEnrollRequest{
		Email: "jean.dupont@school.be",
		Pairs: []EnrollmentPair{
			{Choice: "Maths D1", Period: 9},
			{Choice: "Maths D1", Period: 9},
			{Choice: "Maths D1", Period: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, OutcomeCommitted, outcomes[0].Status)
	assert.Equal(t, OutcomeRejected, outcomes[1].Status)
	require.NotNil(t, outcomes[1].Error)
	assert.Equal(t, appErrors.ErrPeriodTaken.Code, outcomes[1].Error.Code)
	assert.Equal(t, OutcomeCommitted, outcomes[2].Status)

	assert.Len(t, writer.inserted, 2)
}

func TestTeacherEnrollSingleScopeFixesDegree(t *testing.T) {
	writer := &writerStub{}
	// No directory entry for the target student.
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, writer)

	outcomes, err := svc.TeacherEnroll(context.Background(), staffIdentity(), TeacherEnrollRequest{
		Email: "marie.curie@school.be",
		Pairs: []EnrollmentPair{{Choice: "Maths D1", Period: 9}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, OutcomeCommitted, outcomes[0].Status)

	record := writer.inserted[0]
	assert.Equal(t, models.DegreeOne, record.Degree)
	assert.Equal(t, "Marie Curie", record.Name)
}

func TestTeacherEnrollSharedScopeNeedsResolvedDegree(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), directoryStub{}, &writerStub{})

	outcomes, err := svc.TeacherEnroll(context.Background(), staffIdentity(), TeacherEnrollRequest{
		Email: "ghost@school.be",
		Pairs: []EnrollmentPair{{Choice: "Sciences", Period: 9}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeRejected, outcomes[0].Status)
	require.NotNil(t, outcomes[0].Error)
	assert.Equal(t, appErrors.ErrStudentUnresolved.Code, outcomes[0].Error.Code)
}

func TestTeacherEnrollSharedScopeChecksPool(t *testing.T) {
	dir := directoryStub{students: map[string]models.Student{
		"petit@school.be": {Email: "petit@school.be", Name: "Petit", Degree: models.DegreeOne},
	}}
	svc, _ := newTestRegistrationService(t, nil, defaultCatalog(), dir, &writerStub{})

	outcomes, err := svc.TeacherEnroll(context.Background(), staffIdentity(), TeacherEnrollRequest{
		Email: "petit@school.be",
		Pairs: []EnrollmentPair{{Choice: "Sciences", Period: 9}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeRejected, outcomes[0].Status)
	require.NotNil(t, outcomes[0].Error)
	assert.Equal(t, appErrors.ErrValidation.Code, outcomes[0].Error.Code)
}

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jean.dupont@school.be", "Jean Dupont"},
		{"marie.claire.fontaine@school.be", "Marie Claire Fontaine"},
		{"admin@school.be", "Admin"},
		{"JEAN.DUPONT@school.be", "Jean Dupont"},
		{"solo", "Solo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveDisplayName(tt.email), tt.email)
	}
}
