// Package schedule turns extracted entities into a reminder schedule. It is
// the only place in the system where a lead time is subtracted from a due
// moment; the long history of double-subtraction bugs is why this lives
// behind a single function.
package schedule

import (
	"errors"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

// ErrNoDueDate means the entities carried no resolvable due moment.
var ErrNoDueDate = errors.New("no due date to schedule")

// ErrPastSchedule means the notify moment is further in the past than the
// grace window allows; the schedule is unschedulable, not silently dropped.
var ErrPastSchedule = errors.New("notify time is in the past")

// Resolver applies a user's default lead time and the past-schedule grace
// window.
type Resolver struct {
	graceWindow time.Duration
}

func NewResolver(graceWindow time.Duration) *Resolver {
	if graceWindow <= 0 {
		graceWindow = 5 * time.Minute
	}
	return &Resolver{graceWindow: graceWindow}
}

// Resolve builds the schedule for one reminder.
//
// DueAt is always the user's target moment, taken verbatim from the
// entities. The lead time is the user's explicit phrase when present,
// otherwise the supplied default; notifyAt = dueAt - lead, computed here and
// nowhere else. A notify moment inside the grace window is promoted to
// immediate delivery; beyond it, ErrPastSchedule.
func (r *Resolver) Resolve(e models.ExtractedEntities, defaultLeadMinutes int, now time.Time) (models.ReminderSchedule, error) {
	if e.ResolvedDate == nil {
		return models.ReminderSchedule{}, ErrNoDueDate
	}
	dueAt := *e.ResolvedDate

	lead := defaultLeadMinutes
	source := models.LeadDefault
	if e.LeadTimeMinutes != nil {
		lead = *e.LeadTimeMinutes
		source = models.LeadExplicit
	}
	if lead < 0 {
		lead = 0
	}

	notifyAt := dueAt.Add(-time.Duration(lead) * time.Minute)

	s := models.ReminderSchedule{
		DueAt:           dueAt,
		LeadTimeMinutes: lead,
		NotifyAt:        notifyAt,
		LeadSource:      source,
	}

	if notifyAt.Before(now) {
		if now.Sub(notifyAt) > r.graceWindow {
			return models.ReminderSchedule{}, ErrPastSchedule
		}
		s.NotifyAt = now
		s.Immediate = true
	}
	return s, nil
}
