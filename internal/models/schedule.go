package models

import "time"

// LeadSource records whether the lead time came from the user's own words or
// from their configured default. It drives the display policy: only an
// explicit lead time makes the notify moment the primary display.
type LeadSource string

const (
	LeadExplicit LeadSource = "explicit"
	LeadDefault  LeadSource = "default"
)

// ReminderSchedule is the resolved timing of one reminder.
//
// DueAt is always the semantic target moment the user asked about.
// LeadTimeMinutes is a non-negative offset. NotifyAt is derived, exactly
// once, as DueAt minus the lead time; no other component may compute it.
type ReminderSchedule struct {
	DueAt           time.Time  `json:"due_at"`
	LeadTimeMinutes int        `json:"lead_time_minutes"`
	NotifyAt        time.Time  `json:"notify_at"`
	LeadSource      LeadSource `json:"lead_source"`
	Immediate       bool       `json:"immediate,omitempty"`
}

// PrimaryDisplay returns the moment a user-facing message should lead with.
func (s ReminderSchedule) PrimaryDisplay() time.Time {
	if s.LeadSource == LeadExplicit {
		return s.NotifyAt
	}
	return s.DueAt
}
