// Package catalog loads the static configuration documents driving the
// registration engine: the activity catalogs per period class and the
// registration windows. Configuration problems are fatal; the caller is
// expected to abort startup rather than run degraded.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/isa-florenville/focustime-api/internal/models"
	"github.com/isa-florenville/focustime-api/pkg/config"
)

// Catalog exposes the loaded activity definitions and registration windows.
type Catalog struct {
	singles  []models.Activity
	combined []models.Activity

	singleWindow   models.Window
	combinedWindow models.Window
}

// scopeDoc mirrors the on-disk catalog shape: degree scope key → activity
// name → capacity.
type scopeDoc map[string]map[string]int

// windowDoc mirrors the on-disk registration window shape.
type windowDoc struct {
	From     string `json:"from"`
	FromHour string `json:"from_hour"`
	For      string `json:"for"`
	Label    string `json:"label"`
}

// windowFile is either a single shared window or one window per period
// class under "single"/"combined" keys.
type windowFile struct {
	windowDoc
	Single   *windowDoc `json:"single"`
	Combined *windowDoc `json:"combined"`
}

const (
	dateLayout = "02/01/2006"
	hourLayout = "15h04"
)

// Load reads and validates all catalog documents.
func Load(cfg config.RegistrationConfig) (*Catalog, error) {
	singles, err := loadActivities(cfg.OptionsPath, false)
	if err != nil {
		return nil, fmt.Errorf("activity catalog %s: %w", cfg.OptionsPath, err)
	}
	combined, err := loadActivities(cfg.OptionsP910Path, true)
	if err != nil {
		return nil, fmt.Errorf("activity catalog %s: %w", cfg.OptionsP910Path, err)
	}

	singleWin, combinedWin, err := loadWindows(cfg.WindowPath, cfg.UTCOffsetHours)
	if err != nil {
		return nil, fmt.Errorf("registration window %s: %w", cfg.WindowPath, err)
	}

	return &Catalog{
		singles:        singles,
		combined:       combined,
		singleWindow:   singleWin,
		combinedWindow: combinedWin,
	}, nil
}

// ActivitiesFor returns the activities offered in the given period, in a
// stable order. Periods 9 and 10 share one catalog; the combined slot has
// its own.
func (c *Catalog) ActivitiesFor(period models.Period) []models.Activity {
	if period == models.PeriodCombined {
		return c.combined
	}
	return c.singles
}

// WindowFor returns the registration window gating the given period.
func (c *Catalog) WindowFor(period models.Period) models.Window {
	if period == models.PeriodCombined {
		return c.combinedWindow
	}
	return c.singleWindow
}

func loadActivities(path string, combined bool) ([]models.Activity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc scopeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	activities := make([]models.Activity, 0, len(doc))
	for scopeKey, entries := range doc {
		scope, err := models.ParseDegreeScope(scopeKey)
		if err != nil {
			return nil, err
		}
		for name, capacity := range entries {
			if name == "" {
				return nil, fmt.Errorf("scope %s: empty activity name", scopeKey)
			}
			if capacity < 0 {
				return nil, fmt.Errorf("activity %q: negative capacity %d", name, capacity)
			}
			activities = append(activities, models.Activity{
				Name:     name,
				Scope:    scope,
				Capacity: capacity,
				Combined: combined,
			})
		}
	}

	// JSON objects carry no order; sort for a stable catalog. Single-degree
	// scopes come before the shared pool, matching how forms are presented.
	sort.Slice(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.Scope.Shared != b.Scope.Shared {
			return !a.Scope.Shared
		}
		if a.Scope.Degree != b.Scope.Degree {
			return a.Scope.Degree < b.Scope.Degree
		}
		return a.Name < b.Name
	})

	return activities, nil
}

func loadWindows(path string, utcOffsetHours int) (models.Window, models.Window, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Window{}, models.Window{}, err
	}

	var file windowFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return models.Window{}, models.Window{}, fmt.Errorf("decode: %w", err)
	}

	if file.Single != nil || file.Combined != nil {
		if file.Single == nil || file.Combined == nil {
			return models.Window{}, models.Window{}, fmt.Errorf("per-class windows require both single and combined entries")
		}
		single, err := buildWindow(*file.Single, utcOffsetHours)
		if err != nil {
			return models.Window{}, models.Window{}, err
		}
		combined, err := buildWindow(*file.Combined, utcOffsetHours)
		if err != nil {
			return models.Window{}, models.Window{}, err
		}
		return single, combined, nil
	}

	shared, err := buildWindow(file.windowDoc, utcOffsetHours)
	if err != nil {
		return models.Window{}, models.Window{}, err
	}
	return shared, shared, nil
}

func buildWindow(doc windowDoc, utcOffsetHours int) (models.Window, error) {
	if doc.From == "" || doc.FromHour == "" || doc.For == "" {
		return models.Window{}, fmt.Errorf("window document requires from, from_hour and for fields")
	}

	opensLocal, err := time.Parse(dateLayout+" "+hourLayout, doc.From+" "+doc.FromHour)
	if err != nil {
		return models.Window{}, fmt.Errorf("parse open instant: %w", err)
	}
	deadline, err := time.Parse(dateLayout, doc.For)
	if err != nil {
		return models.Window{}, fmt.Errorf("parse deadline: %w", err)
	}

	label := doc.Label
	if label == "" {
		label = doc.For
	}

	// The document states the opening in school local time; subtracting the
	// configured offset normalizes it to the reference clock.
	opensAt := opensLocal.Add(-time.Duration(utcOffsetHours) * time.Hour)

	return models.Window{
		OpensAt:         opensAt,
		Deadline:        deadline,
		Label:           label,
		OpenDateDisplay: doc.From,
		OpenHourDisplay: doc.FromHour,
	}, nil
}
