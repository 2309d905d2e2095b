package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygellis/luach-bot/internal/models"
)

func saveEvent(t *testing.T, s *MemoryStorage, id string, userID int64, title string, startsAt time.Time) {
	t.Helper()
	require.NoError(t, s.SaveEvent(context.Background(), &models.Event{
		ID:       id,
		UserID:   userID,
		Title:    title,
		StartsAt: startsAt,
		Priority: models.PriorityNormal,
	}))
}

func TestMemoryStorageListUpcoming(t *testing.T) {
	s := NewMemoryStorage()
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)

	saveEvent(t, s, "a", 1, "רופא שיניים", now.AddDate(0, 0, 3))
	saveEvent(t, s, "b", 1, "פגישה עם דנה", now.AddDate(0, 0, 1))
	saveEvent(t, s, "c", 1, "ישיבה ישנה", now.AddDate(0, 0, -1))
	saveEvent(t, s, "d", 2, "של משתמש אחר", now.AddDate(0, 0, 2))

	events, err := s.ListUpcomingEvents(context.Background(), 1, now, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "פגישה עם דנה", events[0].Title)
	assert.Equal(t, "רופא שיניים", events[1].Title)

	capped, err := s.ListUpcomingEvents(context.Background(), 1, now, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "b", capped[0].ID)
}

func TestMemoryStorageSearch(t *testing.T) {
	s := NewMemoryStorage()
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)

	saveEvent(t, s, "a", 1, "פגישה עם דנה", now.AddDate(0, 0, 2))
	saveEvent(t, s, "b", 1, "פגישה עם יוסי", now.AddDate(0, 0, 1))
	saveEvent(t, s, "c", 1, "חוג יוגה", now.AddDate(0, 0, 3))

	events, err := s.SearchEvents(context.Background(), 1, "פגישה")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "a", events[1].ID)
}

func TestMemoryStorageDeleteAndUpdate(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)

	saveEvent(t, s, "a", 1, "תור לרופא", now.AddDate(0, 0, 1))

	// Another user's id never touches this user's rows.
	assert.ErrorIs(t, s.DeleteEvent(ctx, 2, "a"), ErrNotFound)
	assert.ErrorIs(t, s.UpdateEventTime(ctx, 2, "a", now), ErrNotFound)

	moved := now.AddDate(0, 0, 5)
	require.NoError(t, s.UpdateEventTime(ctx, 1, "a", moved))
	events, err := s.ListUpcomingEvents(ctx, 1, now, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].StartsAt.Equal(moved))

	require.NoError(t, s.DeleteEvent(ctx, 1, "a"))
	assert.ErrorIs(t, s.DeleteEvent(ctx, 1, "a"), ErrNotFound)
}

func TestMemoryStorageAddEventNote(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	now := time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)

	saveEvent(t, s, "a", 1, "פגישה עם דנה", now.AddDate(0, 0, 1))

	require.NoError(t, s.AddEventNote(ctx, 1, "a", "להביא מסמכים"))
	require.NoError(t, s.AddEventNote(ctx, 1, "a", "דנה מאחרת ברבע שעה"))

	events, err := s.SearchEvents(ctx, 1, "דנה")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "להביא מסמכים\nדנה מאחרת ברבע שעה", events[0].Notes)

	assert.ErrorIs(t, s.AddEventNote(ctx, 1, "missing", "x"), ErrNotFound)
}

func TestMemoryStorageSaveReminder(t *testing.T) {
	s := NewMemoryStorage()
	due := time.Date(2025, 11, 9, 14, 0, 0, 0, time.UTC)

	r := &models.Reminder{
		ID:       "r1",
		UserID:   1,
		Title:    "להתקשר לאמא",
		DueAt:    due,
		NotifyAt: due.Add(-10 * time.Minute),
		LeadMin:  10,
	}
	require.NoError(t, s.SaveReminder(context.Background(), r))
	assert.False(t, r.CreatedAt.IsZero())
}
