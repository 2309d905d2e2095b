package models

import "time"

// Event is a persisted calendar entry created from pipeline output.
type Event struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"user_id"`
	Title        string          `json:"title"`
	StartsAt     time.Time       `json:"starts_at"`
	Location     string          `json:"location,omitempty"`
	Participants []string        `json:"participants,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Priority     Priority        `json:"priority"`
	Recurrence   *RecurrenceRule `json:"recurrence,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Reminder is a persisted reminder with its resolved schedule.
type Reminder struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	DueAt     time.Time `json:"due_at"`
	NotifyAt  time.Time `json:"notify_at"`
	LeadMin   int       `json:"lead_minutes"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReferencedEvent is the slim view of a recently created event kept in the
// per-conversation context so a follow-up like "remind me a day before" can
// anchor on it.
type ReferencedEvent struct {
	Title string    `json:"title"`
	DueAt time.Time `json:"due_at"`
}
