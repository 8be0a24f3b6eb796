// Package dto defines the request and response shapes exchanged with API
// clients.
package dto

import (
	"time"

	"github.com/isa-florenville/focustime-api/internal/models"
)

// SessionView describes the authenticated caller and what the current
// campaign offers them.
type SessionView struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Degree   string `json:"degree,omitempty"`
	Role     string `json:"role"`
	Mode     string `json:"mode"`
	Resolved bool   `json:"resolved"`
}

// WindowView is the registration window status for one period.
type WindowView struct {
	Period      int    `json:"period"`
	PeriodLabel string `json:"period_label"`
	State       string `json:"state"`
	Label       string `json:"label"`
	Advisory    string `json:"advisory,omitempty"`
}

// SessionDetail bundles the session descriptor with the window states and
// the caller's existing registrations.
type SessionDetail struct {
	Session       SessionView        `json:"session"`
	Windows       []WindowView       `json:"windows"`
	Registrations []RegistrationView `json:"registrations"`
}

// ActivityView is one selectable activity with live seat information.
type ActivityView struct {
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Remaining   int    `json:"remaining"`
	SeatLabel   string `json:"seat_label"`
	SeatMessage string `json:"seat_message"`
	Registrable bool   `json:"registrable"`
}

// SectionView groups the activities of one period together with the window
// gating it and the caller's standing in that period.
type SectionView struct {
	Period            int            `json:"period"`
	PeriodLabel       string         `json:"period_label"`
	WindowState       string         `json:"window_state"`
	WindowLabel       string         `json:"window_label"`
	Advisory          string         `json:"advisory,omitempty"`
	AlreadyRegistered bool           `json:"already_registered"`
	Activities        []ActivityView `json:"activities"`
}

// RegistrationView is one ledger record as shown to its owner.
type RegistrationView struct {
	Choice      string    `json:"choice"`
	Period      int       `json:"period"`
	PeriodLabel string    `json:"period_label"`
	CreatedAt   time.Time `json:"created_at"`
}

// RosterEntry is one registered student inside a roster group.
type RosterEntry struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Degree    string    `json:"degree"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterGroup collects everyone registered to one activity in one period.
type RosterGroup struct {
	Choice      string        `json:"choice"`
	Period      int           `json:"period"`
	PeriodLabel string        `json:"period_label"`
	Count       int           `json:"count"`
	Entries     []RosterEntry `json:"entries"`
}

// NewRegistrationView maps a ledger record for its owner.
func NewRegistrationView(record models.Registration) RegistrationView {
	return RegistrationView{
		Choice:      record.Choice,
		Period:      int(record.Period),
		PeriodLabel: record.Period.String(),
		CreatedAt:   record.CreatedAt,
	}
}
