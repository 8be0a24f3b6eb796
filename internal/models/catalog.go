package models

import "time"

// Activity is one catalog entry: an offered remediation or workshop group.
// Activities are defined entirely by configuration and never change during
// a run.
type Activity struct {
	Name     string      `json:"name"`
	Scope    DegreeScope `json:"scope"`
	Capacity int         `json:"capacity"`
	Combined bool        `json:"combined"`
}

// Window is a registration time window for one period class. OpensAt is
// already normalized to the reference clock; Deadline is a bare date.
type Window struct {
	OpensAt  time.Time `json:"opens_at"`
	Deadline time.Time `json:"deadline"`
	Label    string    `json:"label"`

	// Raw configured values, kept for the opening advisory message.
	OpenDateDisplay string `json:"open_date_display"`
	OpenHourDisplay string `json:"open_hour_display"`
}

// WindowState is the registration window position relative to the clock.
type WindowState string

const (
	WindowNotYetOpen   WindowState = "NOT_YET_OPEN"
	WindowOpen         WindowState = "OPEN"
	WindowPastDeadline WindowState = "PAST_DEADLINE"
)
