package models

import "time"

// Priority of an extracted event or reminder.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// TemporalKind says which parsing rule produced a resolved timestamp.
type TemporalKind string

const (
	TemporalRelativeDay     TemporalKind = "relative_day"
	TemporalWeekdayName     TemporalKind = "weekday_name"
	TemporalAbsoluteDate    TemporalKind = "absolute_date"
	TemporalClockTime       TemporalKind = "clock_time"
	TemporalNaturalTimeWord TemporalKind = "natural_time_word"
	TemporalRelativeOffset  TemporalKind = "relative_offset"
)

// TemporalExpression is a date/time phrase resolved against a "now" instant
// and an explicit IANA timezone.
type TemporalExpression struct {
	Kind     TemporalKind `json:"kind"`
	Text     string       `json:"text"`
	Resolved time.Time    `json:"resolved"`
}

// Frequency of a recurrence rule.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// RecurrenceRule describes a repeating schedule detected in the message.
type RecurrenceRule struct {
	Frequency Frequency     `json:"frequency"`
	Interval  int           `json:"interval"`
	ByWeekday *time.Weekday `json:"by_weekday,omitempty"`
}

// ExtractedEntities holds everything pulled out of a single message. The
// pipeline threads a value through its phases; each phase returns a new value
// and only fills fields the previous phases left empty (AI extraction wins
// field-by-field over the regex fallback).
type ExtractedEntities struct {
	Title           string          `json:"title,omitempty"`
	DateText        string          `json:"date_text,omitempty"`
	ResolvedDate    *time.Time      `json:"resolved_date,omitempty"`
	TimeText        string          `json:"time_text,omitempty"`
	Location        string          `json:"location,omitempty"`
	Participants    []string        `json:"participants,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Priority        Priority        `json:"priority,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	LeadTimeMinutes *int            `json:"lead_time_minutes,omitempty"`
	Recurrence      *RecurrenceRule `json:"recurrence,omitempty"`
}

// Merge returns a copy of e with empty fields filled from other. Fields
// already populated are never overwritten; this is the only sanctioned way a
// later phase combines its output with an earlier one.
func (e ExtractedEntities) Merge(other ExtractedEntities) ExtractedEntities {
	out := e
	if out.Title == "" {
		out.Title = other.Title
	}
	if out.DateText == "" {
		out.DateText = other.DateText
	}
	if out.ResolvedDate == nil {
		out.ResolvedDate = other.ResolvedDate
	}
	if out.TimeText == "" {
		out.TimeText = other.TimeText
	}
	if out.Location == "" {
		out.Location = other.Location
	}
	if len(out.Participants) == 0 {
		out.Participants = other.Participants
	}
	if out.DurationMinutes == 0 {
		out.DurationMinutes = other.DurationMinutes
	}
	if out.Priority == "" {
		out.Priority = other.Priority
	}
	if out.Notes == "" {
		out.Notes = other.Notes
	}
	if out.LeadTimeMinutes == nil {
		out.LeadTimeMinutes = other.LeadTimeMinutes
	}
	if out.Recurrence == nil {
		out.Recurrence = other.Recurrence
	}
	return out
}
