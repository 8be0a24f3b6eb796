package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/isa-florenville/focustime-api/internal/models"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
)

// Metric origin labels for committed registrations.
const (
	originSelf    = "self"
	originTeacher = "teacher"
)

type registrationWriter interface {
	InsertWithinCapacity(ctx context.Context, reg *models.Registration, scopeDegrees []models.Degree, capacity int) (bool, error)
}

type activityCatalog interface {
	ActivitiesFor(period models.Period) []models.Activity
	WindowFor(period models.Period) models.Window
}

type rosterInvalidator interface {
	Invalidate(ctx context.Context)
}

// SelfRegisterRequest is a student's own registration submission.
type SelfRegisterRequest struct {
	Choice string `json:"choice" validate:"required"`
	Period int    `json:"period" validate:"required"`
}

// EnrollmentPair is one activity/period selection in a manual enrollment.
type EnrollmentPair struct {
	Choice string `json:"choice" validate:"required"`
	Period int    `json:"period" validate:"required"`
}

// TeacherEnrollRequest is a staff-submitted manual enrollment for one
// student. Each pair is validated and committed independently.
type TeacherEnrollRequest struct {
	Email string           `json:"email" validate:"required,email"`
	Pairs []EnrollmentPair `json:"pairs" validate:"required,min=1,dive"`
}

// Pair outcome statuses.
const (
	OutcomeCommitted = "COMMITTED"
	OutcomeRejected  = "REJECTED"
)

// EnrollmentOutcome reports the result for one submitted pair.
type EnrollmentOutcome struct {
	Choice       string               `json:"choice"`
	Period       models.Period        `json:"period"`
	Status       string               `json:"status"`
	Error        *appErrors.Error     `json:"error,omitempty"`
	Registration *models.Registration `json:"registration,omitempty"`
}

// RegistrationService is the enrollment command handler: it validates a
// submission against a fresh ledger snapshot and commits it with a
// capacity-guarded insert. Submissions are terminal; a rejection requires a
// fresh user action against refreshed state.
type RegistrationService struct {
	ledger    *LedgerService
	store     registrationWriter
	catalog   activityCatalog
	directory directoryReader
	rosters   rosterInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(ledger *LedgerService, store registrationWriter, catalog activityCatalog, directory directoryReader, rosters rosterInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		ledger:    ledger,
		store:     store,
		catalog:   catalog,
		directory: directory,
		rosters:   rosters,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// SelfRegister handles the student self-service path. Preconditions: the
// window for the period is open, the student's degree is resolved, the
// activity is visible to that degree, seats remain and no existing
// registration covers the period. No write happens on any failure.
func (s *RegistrationService) SelfRegister(ctx context.Context, identity models.Identity, req SelfRegisterRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period")
	}
	if identity.Role == models.RoleStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "staff accounts use manual enrollment")
	}
	if !identity.Degree.Resolved() {
		s.metrics.RecordRejected(appErrors.ErrStudentUnresolved.Code)
		return nil, appErrors.ErrStudentUnresolved
	}

	if state := WindowStateAt(s.now(), s.catalog.WindowFor(period)); state != models.WindowOpen {
		s.metrics.RecordRejected(appErrors.ErrWindowClosed.Code)
		return nil, appErrors.ErrWindowClosed
	}

	activity, ok := FindActivity(identity.Degree, s.catalog.ActivitiesFor(period), req.Choice)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found for this degree")
	}

	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	occupancy := BuildOccupancy(records)
	mine := FilterByStudent(records, identity.Email)

	if AlreadyRegisteredPeriod(mine, period) {
		s.metrics.RecordRejected(appErrors.ErrPeriodTaken.Code)
		return nil, appErrors.ErrPeriodTaken
	}
	if RemainingSeats(activity, period, occupancy) <= 0 {
		s.metrics.RecordRejected(appErrors.ErrSeatsFull.Code)
		return nil, appErrors.ErrSeatsFull
	}

	registration := &models.Registration{
		Email:  identity.Email,
		Name:   identity.Name,
		Choice: activity.Name,
		Period: period,
		Degree: identity.Degree,
	}

	return s.commit(ctx, registration, activity, originSelf)
}

// TeacherEnroll handles staff manual enrollment. The registration window
// does not gate this path: staff may enroll students at any time. Each pair
// is its own sub-submission; one rejection never blocks the others.
func (s *RegistrationService) TeacherEnroll(ctx context.Context, identity models.Identity, req TeacherEnrollRequest) ([]EnrollmentOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if identity.Role != models.RoleStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "manual enrollment requires a staff account")
	}

	student, err := s.lookupStudent(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	occupancy := BuildOccupancy(records)
	existing := FilterByStudent(records, req.Email)

	outcomes := make([]EnrollmentOutcome, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		outcome := s.enrollPair(ctx, student, pair, occupancy, existing)
		if outcome.Status == OutcomeCommitted {
			// Later pairs in the batch must see this commit.
			existing = append(existing, *outcome.Registration)
			key := models.OccupancyKey{Choice: outcome.Registration.Choice, Period: outcome.Registration.Period, Degree: outcome.Registration.Degree}
			occupancy[key]++
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (s *RegistrationService) enrollPair(ctx context.Context, student models.Student, pair EnrollmentPair, occupancy models.Occupancy, existing []models.Registration) EnrollmentOutcome {
	outcome := EnrollmentOutcome{Choice: pair.Choice, Status: OutcomeRejected}

	period, err := models.ParsePeriod(pair.Period)
	if err != nil {
		outcome.Error = appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period")
		return outcome
	}
	outcome.Period = period

	degree, appErr := enrollmentDegree(student)
	activity, ok := findAnyActivity(s.catalog.ActivitiesFor(period), pair.Choice)
	if !ok {
		outcome.Error = appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		return outcome
	}
	if activity.Scope.Shared {
		if appErr != nil {
			outcome.Error = appErr
			s.metrics.RecordRejected(appErr.Code)
			return outcome
		}
		if !activity.Scope.Covers(degree) {
			outcome.Error = appErrors.Clone(appErrors.ErrValidation, "student degree outside the shared pool")
			return outcome
		}
	} else {
		// A single-scope choice fixes the recorded degree, matching how the
		// roster reads the group.
		degree = activity.Scope.Degree
	}

	if AlreadyRegisteredPeriod(existing, period) {
		outcome.Error = appErrors.ErrPeriodTaken
		s.metrics.RecordRejected(appErrors.ErrPeriodTaken.Code)
		return outcome
	}
	if RemainingSeats(activity, period, occupancy) <= 0 {
		outcome.Error = appErrors.ErrSeatsFull
		s.metrics.RecordRejected(appErrors.ErrSeatsFull.Code)
		return outcome
	}

	registration := &models.Registration{
		Email:  student.Email,
		Name:   student.Name,
		Choice: activity.Name,
		Period: period,
		Degree: degree,
	}

	committed, err := s.commit(ctx, registration, activity, originTeacher)
	if err != nil {
		outcome.Error = appErrors.FromError(err)
		return outcome
	}
	outcome.Status = OutcomeCommitted
	outcome.Registration = committed
	return outcome
}

// commit writes the record with the in-statement capacity re-check. A
// concurrent session may have taken the last seat since the snapshot was
// read; the conditional insert turns that race into a clean rejection.
func (s *RegistrationService) commit(ctx context.Context, registration *models.Registration, activity models.Activity, origin string) (*models.Registration, error) {
	inserted, err := s.store.InsertWithinCapacity(ctx, registration, activity.Scope.SubDegrees(), activity.Capacity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist registration")
	}
	if !inserted {
		s.metrics.RecordRejected(appErrors.ErrSeatsFull.Code)
		return nil, appErrors.ErrSeatsFull
	}

	s.metrics.RecordAccepted(registration.Period.String(), origin)
	if s.rosters != nil {
		s.rosters.Invalidate(ctx)
	}
	s.logger.Info("registration committed",
		zap.String("email", registration.Email),
		zap.String("choice", registration.Choice),
		zap.String("period", registration.Period.String()),
		zap.String("origin", origin),
	)
	return registration, nil
}

// lookupStudent resolves the enrollment target. Directory absence is not
// fatal for single-scope choices; the record then falls back to a derived
// display name and the choice's scope degree.
func (s *RegistrationService) lookupStudent(ctx context.Context, email string) (models.Student, error) {
	entry, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Student{Email: email, Name: DeriveDisplayName(email), Degree: models.DegreeUnresolved}, nil
		}
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read student directory")
	}
	student := *entry
	student.Email = email
	if student.Name == "" {
		student.Name = DeriveDisplayName(email)
	}
	return student, nil
}

func enrollmentDegree(student models.Student) (models.Degree, *appErrors.Error) {
	if !student.Degree.Resolved() {
		return models.DegreeUnresolved, appErrors.ErrStudentUnresolved
	}
	return student.Degree, nil
}

func findAnyActivity(activities []models.Activity, name string) (models.Activity, bool) {
	for _, activity := range activities {
		if activity.Name == name {
			return activity, true
		}
	}
	return models.Activity{}, false
}

// DeriveDisplayName builds a display name from an email local part: split
// on dots, title-case each segment, join with spaces.
func DeriveDisplayName(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	segments := strings.Split(local, ".")
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		parts = append(parts, capitalize(segment))
	}
	if len(parts) == 0 {
		return email
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
