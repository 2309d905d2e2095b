package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/classifier"
	"github.com/ygellis/luach-bot/internal/extractor"
	"github.com/ygellis/luach-bot/internal/models"
	"github.com/ygellis/luach-bot/internal/schedule"
	"github.com/ygellis/luach-bot/internal/session"
)

var testLoc = time.FixedZone("IST", 2*60*60)

// Saturday morning.
var testNow = time.Date(2025, 11, 8, 10, 0, 0, 0, testLoc)

func newTestPipeline(t *testing.T) (*Pipeline, *session.MemoryStore) {
	t.Helper()
	logger := zap.NewNop()
	ens := classifier.NewEnsemble(classifier.NewRegistry(classifier.NewKeywordBackend()), classifier.DefaultTiers(), logger)
	ext := extractor.New(nil, "", time.Second, logger)
	resolver := schedule.NewResolver(2 * time.Minute)
	store := session.NewMemoryStore(30*time.Minute, 10)

	p := New(ens, ext, resolver, store, testLoc, 10*time.Second, logger)
	p.now = func() time.Time { return testNow }
	return p, store
}

func TestRunCreateReminderTomorrow(t *testing.T) {
	p, _ := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{
		Text:           "תזכיר לי מחר בשעה 14:00 להתקשר לאמא",
		ConversationID: "chat-1",
		UserID:         7,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentCreateReminder, res.Intent)
	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Schedule)

	wantDue := time.Date(2025, 11, 9, 14, 0, 0, 0, testLoc)
	assert.True(t, res.Schedule.DueAt.Equal(wantDue), "due at %v", res.Schedule.DueAt)
	assert.Equal(t, models.LeadDefault, res.Schedule.LeadSource)
	assert.Equal(t, 10, res.Schedule.LeadTimeMinutes)
	assert.True(t, res.Schedule.NotifyAt.Equal(wantDue.Add(-10*time.Minute)))
	// Default lead: the message leads with the event time, not the notify time.
	assert.True(t, res.Schedule.PrimaryDisplay().Equal(wantDue))
	assert.Equal(t, "להתקשר לאמא", res.Entities.Title)
}

func TestRunLeadTimeReferencesRecentEvent(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	eventAt := time.Date(2025, 11, 12, 13, 0, 0, 0, testLoc)
	require.NoError(t, store.RememberEvent(ctx, "chat-1", models.ReferencedEvent{
		Title: "פגישה עם דנה",
		DueAt: eventAt,
	}))

	res, err := p.Run(ctx, Request{Text: "תזכיר לי יום לפני", ConversationID: "chat-1", UserID: 7})
	require.NoError(t, err)

	assert.Equal(t, models.IntentCreateReminder, res.Intent)
	require.NotNil(t, res.Schedule)
	// Due stays the event's own moment; the lead only moves the notification.
	assert.True(t, res.Schedule.DueAt.Equal(eventAt))
	assert.Equal(t, 1440, res.Schedule.LeadTimeMinutes)
	assert.Equal(t, models.LeadExplicit, res.Schedule.LeadSource)
	assert.True(t, res.Schedule.NotifyAt.Equal(eventAt.AddDate(0, 0, -1)))
	assert.True(t, res.Schedule.PrimaryDisplay().Equal(res.Schedule.NotifyAt))
	assert.Equal(t, "פגישה עם דנה", res.Entities.Title)
}

func TestRunLeadTimeWithoutContextAsksForDate(t *testing.T) {
	p, _ := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{Text: "תזכיר לי שעה לפני", ConversationID: "chat-9", UserID: 7})
	require.NoError(t, err)

	assert.Equal(t, models.IntentCreateReminder, res.Intent)
	assert.Nil(t, res.Schedule)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.WarnAmbiguousInput, res.Warnings[0].Kind)
}

func TestRunUnknownIntentShortCircuits(t *testing.T) {
	p, _ := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{Text: "מה נשמע", ConversationID: "chat-1", UserID: 7})
	require.NoError(t, err)

	assert.Equal(t, models.IntentUnknown, res.Intent)
	assert.True(t, res.NeedsClarification)
	assert.Nil(t, res.Schedule)
	assert.Empty(t, res.Entities.Title)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.WarnAmbiguousInput, res.Warnings[0].Kind)
}

func TestRunPastScheduleWarns(t *testing.T) {
	p, _ := newTestPipeline(t)

	// 09:00 today is already an hour behind the fixed test clock.
	res, err := p.Run(context.Background(), Request{
		Text:           "תזכיר לי היום בשעה 9:00 לקחת תרופה",
		ConversationID: "chat-1",
		UserID:         7,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentCreateReminder, res.Intent)
	assert.Nil(t, res.Schedule)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.WarnPastSchedule, res.Warnings[0].Kind)
}

func TestRunDetectsWeeklyRecurrence(t *testing.T) {
	p, _ := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{
		Text:           "תזכיר לי כל יום רביעי בשעה 18:00 חוג יוגה",
		ConversationID: "chat-1",
		UserID:         7,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Entities.Recurrence)
	assert.Equal(t, models.FreqWeekly, res.Entities.Recurrence.Frequency)
	require.NotNil(t, res.Entities.Recurrence.ByWeekday)
	assert.Equal(t, time.Wednesday, *res.Entities.Recurrence.ByWeekday)

	require.NotNil(t, res.Schedule)
	// First occurrence: the Wednesday after the Saturday test clock.
	wantDue := time.Date(2025, 11, 12, 18, 0, 0, 0, testLoc)
	assert.True(t, res.Schedule.DueAt.Equal(wantDue), "due at %v", res.Schedule.DueAt)
}
