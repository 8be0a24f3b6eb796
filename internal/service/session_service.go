package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/isa-florenville/focustime-api/internal/dto"
	"github.com/isa-florenville/focustime-api/internal/models"
	"github.com/isa-florenville/focustime-api/pkg/config"
)

// SessionService assembles the per-caller views: session descriptor,
// activity sections with live seat counts, and the caller's own
// registrations. Every call reads the ledger fresh.
type SessionService struct {
	ledger  *LedgerService
	catalog activityCatalog
	mode    string
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(ledger *LedgerService, catalog activityCatalog, cfg config.RegistrationConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		ledger:  ledger,
		catalog: catalog,
		mode:    cfg.Mode,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Describe maps an identity onto the session view.
func (s *SessionService) Describe(identity models.Identity) dto.SessionView {
	view := dto.SessionView{
		Email:    identity.Email,
		Name:     identity.Name,
		Role:     string(identity.Role),
		Mode:     s.mode,
		Resolved: identity.Degree.Resolved(),
	}
	if identity.Degree.Resolved() {
		view.Degree = identity.Degree.String()
	}
	return view
}

// Detail bundles the session descriptor with the per-period window states
// and the caller's existing registrations.
func (s *SessionService) Detail(ctx context.Context, identity models.Identity) (dto.SessionDetail, error) {
	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return dto.SessionDetail{}, err
	}
	mine := FilterByStudent(records, identity.Email)
	now := s.now()

	detail := dto.SessionDetail{Session: s.Describe(identity)}
	for _, period := range sessionPeriods {
		status := WindowStatusAt(now, s.catalog.WindowFor(period))
		detail.Windows = append(detail.Windows, dto.WindowView{
			Period:      int(period),
			PeriodLabel: period.String(),
			State:       string(status.State),
			Label:       status.Label,
			Advisory:    status.Advisory,
		})
	}
	detail.Registrations = make([]dto.RegistrationView, 0, len(mine))
	for _, record := range mine {
		detail.Registrations = append(detail.Registrations, dto.NewRegistrationView(record))
	}
	return detail, nil
}

// Sections builds the activity sections for a student, one per period, with
// window state and seat availability computed against a fresh ledger read.
// Staff see the full catalog of every period with aggregate occupancy.
func (s *SessionService) Sections(ctx context.Context, identity models.Identity) ([]dto.SectionView, error) {
	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	occupancy := BuildOccupancy(records)
	mine := FilterByStudent(records, identity.Email)
	now := s.now()

	sections := make([]dto.SectionView, 0, len(sessionPeriods))
	for _, period := range sessionPeriods {
		status := WindowStatusAt(now, s.catalog.WindowFor(period))
		taken := AlreadyRegisteredPeriod(mine, period)

		section := dto.SectionView{
			Period:            int(period),
			PeriodLabel:       period.String(),
			WindowState:       string(status.State),
			WindowLabel:       status.Label,
			Advisory:          status.Advisory,
			AlreadyRegistered: taken,
		}

		offered := s.catalog.ActivitiesFor(period)
		if identity.Role != models.RoleStaff {
			offered = VisibleActivities(identity.Degree, offered)
		}
		for _, activity := range offered {
			remaining := RemainingSeats(activity, period, occupancy)
			section.Activities = append(section.Activities, dto.ActivityView{
				Name:        activity.Name,
				Capacity:    activity.Capacity,
				Remaining:   remaining,
				SeatLabel:   string(LabelFor(remaining)),
				SeatMessage: SeatMessage(remaining),
				Registrable: identity.Role != models.RoleStaff && remaining > 0 && !taken && status.State == models.WindowOpen,
			})
		}

		sections = append(sections, section)
	}

	return sections, nil
}

var sessionPeriods = []models.Period{models.PeriodNine, models.PeriodTen, models.PeriodCombined}

// OwnRegistrations returns the caller's ledger records as views, in
// registration order.
func (s *SessionService) OwnRegistrations(ctx context.Context, identity models.Identity) ([]dto.RegistrationView, error) {
	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	mine := FilterByStudent(records, identity.Email)
	views := make([]dto.RegistrationView, 0, len(mine))
	for _, record := range mine {
		views = append(views, dto.NewRegistrationView(record))
	}
	return views, nil
}
