package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygellis/luach-bot/internal/models"
)

func loc(t *testing.T) *time.Location {
	t.Helper()
	l, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	return l
}

func TestResolveDefaultLead(t *testing.T) {
	l := loc(t)
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, l)
	due := time.Date(2025, 11, 9, 14, 0, 0, 0, l)

	r := NewResolver(5 * time.Minute)
	s, err := r.Resolve(models.ExtractedEntities{ResolvedDate: &due}, 10, now)
	require.NoError(t, err)

	assert.True(t, due.Equal(s.DueAt))
	assert.Equal(t, 10, s.LeadTimeMinutes)
	assert.True(t, s.NotifyAt.Equal(due.Add(-10*time.Minute)))
	assert.Equal(t, models.LeadDefault, s.LeadSource)
	// Implicit default lead: the user sees the due moment, not internal
	// scheduling.
	assert.True(t, s.PrimaryDisplay().Equal(due))
}

func TestResolveExplicitLead(t *testing.T) {
	l := loc(t)
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, l)
	// Referenced event at 2025-11-07 13:00, "remind me one day before".
	due := time.Date(2025, 11, 7, 13, 0, 0, 0, l)
	lead := 1440

	r := NewResolver(5 * time.Minute)
	s, err := r.Resolve(models.ExtractedEntities{ResolvedDate: &due, LeadTimeMinutes: &lead}, 10, now)
	require.NoError(t, err)

	assert.True(t, due.Equal(s.DueAt))
	assert.Equal(t, 1440, s.LeadTimeMinutes)
	assert.True(t, s.NotifyAt.Equal(time.Date(2025, 11, 6, 13, 0, 0, 0, l)))
	assert.Equal(t, models.LeadExplicit, s.LeadSource)
	// Explicit lead: the notify moment is the primary display.
	assert.True(t, s.PrimaryDisplay().Equal(s.NotifyAt))
}

// notifyAt must always equal dueAt minus the lead; dueAt is never itself the
// result of a subtraction. Guards against the historical double-subtraction.
func TestResolveSubtractionHappensExactlyOnce(t *testing.T) {
	l := loc(t)
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, l)
	due := time.Date(2025, 11, 7, 13, 0, 0, 0, l)
	lead := 60

	r := NewResolver(5 * time.Minute)
	s, err := r.Resolve(models.ExtractedEntities{ResolvedDate: &due, LeadTimeMinutes: &lead}, 0, now)
	require.NoError(t, err)

	assert.True(t, s.DueAt.Equal(due), "dueAt must stay the target moment")
	assert.Equal(t, time.Duration(s.LeadTimeMinutes)*time.Minute, s.DueAt.Sub(s.NotifyAt))
}

func TestResolveGraceWindow(t *testing.T) {
	l := loc(t)
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, l)
	r := NewResolver(5 * time.Minute)

	t.Run("inside grace window goes immediate", func(t *testing.T) {
		due := now.Add(2 * time.Minute)
		lead := 5 // notify would be 3 minutes ago
		s, err := r.Resolve(models.ExtractedEntities{ResolvedDate: &due, LeadTimeMinutes: &lead}, 0, now)
		require.NoError(t, err)
		assert.True(t, s.Immediate)
		assert.True(t, s.NotifyAt.Equal(now))
	})

	t.Run("beyond grace window is rejected", func(t *testing.T) {
		due := now.Add(-2 * time.Hour)
		s, err := r.Resolve(models.ExtractedEntities{ResolvedDate: &due}, 0, now)
		assert.ErrorIs(t, err, ErrPastSchedule)
		assert.Zero(t, s)
	})
}

func TestResolveNoDueDate(t *testing.T) {
	l := loc(t)
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, l)
	r := NewResolver(5 * time.Minute)

	_, err := r.Resolve(models.ExtractedEntities{}, 10, now)
	assert.ErrorIs(t, err, ErrNoDueDate)
}
