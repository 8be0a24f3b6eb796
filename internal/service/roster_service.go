package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/isa-florenville/focustime-api/internal/dto"
	"github.com/isa-florenville/focustime-api/internal/models"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/export"
)

const rosterCacheKey = "rosters:grouped"

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type emailLister interface {
	ListEmails(ctx context.Context) ([]string, error)
}

// RosterService builds the staff-facing roster views. The grouped view is
// cached briefly in Redis; exports always read the ledger fresh so a printed
// list is never stale.
type RosterService struct {
	ledger    *LedgerService
	directory emailLister
	cache     rosterCache
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRosterService constructs RosterService.
func NewRosterService(ledger *LedgerService, directory emailLister, cache rosterCache, csv *export.CSVExporter, pdf *export.PDFExporter, ttl time.Duration, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		ledger:    ledger,
		directory: directory,
		cache:     cache,
		csv:       csv,
		pdf:       pdf,
		ttl:       ttl,
		logger:    logger,
	}
}

// GroupedRosters returns every registration grouped by activity and period.
func (s *RosterService) GroupedRosters(ctx context.Context) ([]dto.RosterGroup, error) {
	if s.cache != nil {
		var cached []dto.RosterGroup
		if err := s.cache.Get(ctx, rosterCacheKey, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache read failed", zap.Error(err))
		}
	}

	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := GroupRosters(records)

	if s.cache != nil {
		if err := s.cache.Set(ctx, rosterCacheKey, groups, s.ttl); err != nil {
			s.logger.Warn("roster cache write failed", zap.Error(err))
		}
	}
	return groups, nil
}

// Invalidate drops the cached roster view after a registration commits.
func (s *RosterService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, rosterCacheKey); err != nil {
		s.logger.Warn("roster cache invalidation failed", zap.Error(err))
	}
}

// ExportCSV renders the full roster set as CSV, one block per group.
func (s *RosterService) ExportCSV(ctx context.Context) ([]byte, error) {
	groups, err := s.freshGroups(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(rosterTables(groups))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return data, nil
}

// ExportPDF renders the full roster set as a printable PDF.
func (s *RosterService) ExportPDF(ctx context.Context, title string) ([]byte, error) {
	groups, err := s.freshGroups(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(rosterTables(groups), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
	}
	return data, nil
}

// StudentEmails lists the directory emails offered in the manual enrollment
// picker.
func (s *RosterService) StudentEmails(ctx context.Context) ([]string, error) {
	emails, err := s.directory.ListEmails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list directory emails")
	}
	return emails, nil
}

func (s *RosterService) freshGroups(ctx context.Context) ([]dto.RosterGroup, error) {
	records, err := s.ledger.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := GroupRosters(records)
	if len(groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no registrations to export")
	}
	return groups, nil
}

// GroupRosters folds ledger records into per-activity groups. Groups are
// ordered by period then activity name; entries keep ledger order, which is
// registration order.
func GroupRosters(records []models.Registration) []dto.RosterGroup {
	type key struct {
		choice string
		period models.Period
	}

	index := make(map[key]int)
	var groups []dto.RosterGroup
	for _, record := range records {
		k := key{choice: record.Choice, period: record.Period}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, dto.RosterGroup{
				Choice:      record.Choice,
				Period:      int(record.Period),
				PeriodLabel: record.Period.String(),
			})
		}
		groups[i].Entries = append(groups[i].Entries, dto.RosterEntry{
			Name:      record.Name,
			Email:     strings.ToLower(record.Email),
			Degree:    record.Degree.String(),
			CreatedAt: record.CreatedAt,
		})
		groups[i].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Period != groups[j].Period {
			return groups[i].Period < groups[j].Period
		}
		return groups[i].Choice < groups[j].Choice
	})
	return groups
}

func rosterTables(groups []dto.RosterGroup) []export.Table {
	tables := make([]export.Table, 0, len(groups))
	for _, group := range groups {
		rows := make([][]string, 0, len(group.Entries))
		for _, entry := range group.Entries {
			rows = append(rows, []string{entry.Name, entry.Email, entry.Degree})
		}
		tables = append(tables, export.Table{
			Title:   fmt.Sprintf("%s (%s) - %d inscrits", group.Choice, group.PeriodLabel, group.Count),
			Headers: []string{"Nom", "Email", "Degré"},
			Rows:    rows,
		})
	}
	return tables
}
