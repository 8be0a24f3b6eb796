package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isa-florenville/focustime-api/internal/models"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
)

type listerStub struct {
	records  []models.Registration
	failures int
	calls    int
}

func (s *listerStub) ListAll(ctx context.Context) ([]models.Registration, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("connection reset")
	}
	return s.records, nil
}

func TestLedgerLoadAllRetriesTransientFailures(t *testing.T) {
	stub := &listerStub{
		records:  []models.Registration{{Email: "a@school.be", Choice: "Maths", Period: models.PeriodNine}},
		failures: 2,
	}
	svc := NewLedgerService(stub, nil, nil, 3, time.Millisecond)

	records, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 3, stub.calls)
}

func TestLedgerLoadAllExhaustsRetries(t *testing.T) {
	stub := &listerStub{failures: 5}
	svc := NewLedgerService(stub, nil, nil, 3, time.Millisecond)

	_, err := svc.LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, 3, stub.calls)
}

func TestBuildOccupancyDeterministic(t *testing.T) {
	records := []models.Registration{
		{Email: "a@school.be", Choice: "Maths", Period: models.PeriodNine, Degree: models.DegreeOne},
		{Email: "b@school.be", Choice: "Maths", Period: models.PeriodNine, Degree: models.DegreeOne},
		{Email: "c@school.be", Choice: "Maths", Period: models.PeriodTen, Degree: models.DegreeOne},
	}

	first := BuildOccupancy(records)
	second := BuildOccupancy(records)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Count(models.OccupancyKey{Choice: "Maths", Period: models.PeriodNine, Degree: models.DegreeOne}))
	assert.Equal(t, 1, first.Count(models.OccupancyKey{Choice: "Maths", Period: models.PeriodTen, Degree: models.DegreeOne}))
}

func TestFilterByStudentCaseInsensitive(t *testing.T) {
	records := []models.Registration{
		{Email: "Jean.Dupont@school.be", Choice: "Maths", Period: models.PeriodNine},
		{Email: "marie.curie@school.be", Choice: "Sciences", Period: models.PeriodNine},
		{Email: "jean.dupont@school.be", Choice: "Etude", Period: models.PeriodTen},
	}

	mine := FilterByStudent(records, "JEAN.DUPONT@school.be")
	require.Len(t, mine, 2)
	assert.Equal(t, "Maths", mine[0].Choice)
	assert.Equal(t, "Etude", mine[1].Choice)
}
