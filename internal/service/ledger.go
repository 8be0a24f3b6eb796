package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/isa-florenville/focustime-api/internal/models"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
)

type registrationLister interface {
	ListAll(ctx context.Context) ([]models.Registration, error)
}

// LedgerService reads the registration ledger. Every interaction performs a
// full fresh read: seats can be taken by concurrent sessions at any moment,
// so derived state is never cached across requests.
type LedgerService struct {
	repo    registrationLister
	logger  *zap.Logger
	metrics *MetricsService
	retries int
	backoff time.Duration
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(repo registrationLister, metrics *MetricsService, logger *zap.Logger, retries int, backoff time.Duration) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries < 1 {
		retries = 1
	}
	return &LedgerService{repo: repo, logger: logger, metrics: metrics, retries: retries, backoff: backoff}
}

// LoadAll returns the full ledger. Transient read failures are retried with
// a short backoff before the error surfaces; the caller then aborts the
// interaction cycle rather than showing a raw store error.
func (s *LedgerService) LoadAll(ctx context.Context) ([]models.Registration, error) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		records, err := s.repo.ListAll(ctx)
		if err == nil {
			s.metrics.ObserveLedgerRead(time.Since(start))
			return records, nil
		}
		lastErr = err
		s.logger.Warn("ledger read failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < s.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff):
			}
		}
	}
	return nil, appErrors.Wrap(lastErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read registration ledger")
}

// BuildOccupancy folds registrations into occupancy counts. The fold is
// order-independent and deterministic: re-running it over the same records
// yields an identical map.
func BuildOccupancy(records []models.Registration) models.Occupancy {
	occupancy := make(models.Occupancy, len(records))
	for _, record := range records {
		key := models.OccupancyKey{Choice: record.Choice, Period: record.Period, Degree: record.Degree}
		occupancy[key]++
	}
	return occupancy
}

// FilterByStudent returns the records held by one student, matched
// case-insensitively, preserving order.
func FilterByStudent(records []models.Registration, email string) []models.Registration {
	var mine []models.Registration
	for _, record := range records {
		if strings.EqualFold(record.Email, email) {
			mine = append(mine, record)
		}
	}
	return mine
}
