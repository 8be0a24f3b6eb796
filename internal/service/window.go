package service

import (
	"fmt"
	"time"

	"github.com/isa-florenville/focustime-api/internal/models"
)

// advisoryMaxDays bounds how far ahead the upcoming-opening advisory is
// shown.
const advisoryMaxDays = 3

// WindowStatus combines the computed state with presentation hints.
type WindowStatus struct {
	State    models.WindowState `json:"state"`
	Label    string             `json:"label"`
	Advisory string             `json:"advisory,omitempty"`
}

// WindowStateAt derives the registration window state from the clock. Pure:
// the same now and window always produce the same state.
func WindowStateAt(now time.Time, window models.Window) models.WindowState {
	if now.Before(window.OpensAt) {
		return models.WindowNotYetOpen
	}
	if !dateOf(now).Before(dateOf(window.Deadline)) {
		return models.WindowPastDeadline
	}
	return models.WindowOpen
}

// WindowStatusAt computes the state plus the upcoming-opening advisory.
// The advisory appears only while the window has not yet opened and the
// opening lies within the next three calendar days; it is informational and
// never affects gating.
func WindowStatusAt(now time.Time, window models.Window) WindowStatus {
	status := WindowStatus{
		State: WindowStateAt(now, window),
		Label: window.Label,
	}

	if status.State == models.WindowNotYetOpen {
		days := int(dateOf(window.OpensAt).Sub(dateOf(now)).Hours() / 24)
		if days >= 0 && days <= advisoryMaxDays {
			status.Advisory = fmt.Sprintf("Prochaine inscription le %s à %s", window.OpenDateDisplay, window.OpenHourDisplay)
		}
	}

	return status
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
