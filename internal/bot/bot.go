// Package bot is the Telegram front end. It turns updates into pipeline
// requests and pipeline results into Hebrew replies; it holds no language
// logic of its own.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
	"github.com/ygellis/luach-bot/internal/pipeline"
	"github.com/ygellis/luach-bot/internal/session"
	"github.com/ygellis/luach-bot/internal/storage"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	pipeline  *pipeline.Pipeline
	storage   storage.Storage
	sessions  session.Store
	logger    *zap.Logger
	loc       *time.Location
	listLimit int
	dispatch  *dispatcher
	pending   *pendingConfirm
}

func New(token string, p *pipeline.Pipeline, store storage.Storage, sessions session.Store, loc *time.Location, listLimit int, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if listLimit <= 0 {
		listLimit = 10
	}

	b := &Bot{
		api:       api,
		pipeline:  p,
		storage:   store,
		sessions:  sessions,
		logger:    logger,
		loc:       loc,
		listLimit: listLimit,
	}
	b.dispatch = newDispatcher(b.handleMessage)
	b.pending = newPendingConfirm()
	return b, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		// Per-chat ordering: a message must be fully resolved before the
		// next one in the same conversation can reference its results.
		b.dispatch.enqueue(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	// A pending draft is consumed by whatever comes next: "כן" commits it,
	// anything else abandons it and is handled on its own.
	if run := b.pending.take(message.Chat.ID); run != nil && isConfirmation(text) {
		run(ctx)
		return
	}

	res, err := b.pipeline.Run(ctx, pipeline.Request{
		Text:           text,
		ConversationID: strconv.FormatInt(message.Chat.ID, 10),
		UserID:         message.From.ID,
	})
	if err != nil {
		b.logger.Error("pipeline failed",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "משהו השתבש, נסו שוב בעוד רגע")
		return
	}

	b.logger.Info("message resolved",
		zap.Int64("user_id", message.From.ID),
		zap.String("intent", string(res.Intent)),
		zap.Float64("confidence", res.Confidence))

	if res.NeedsClarification {
		b.sendWarnings(message.Chat.ID, res.Warnings)
		return
	}

	switch res.Intent {
	case models.IntentCreateEvent:
		b.handleCreateEvent(ctx, message, res)
	case models.IntentCreateReminder:
		b.handleCreateReminder(ctx, message, res)
	case models.IntentListEvents:
		b.handleList(ctx, message)
	case models.IntentSearchEvent:
		b.handleSearch(ctx, message, res)
	case models.IntentDeleteEvent:
		b.handleDelete(ctx, message, res)
	case models.IntentUpdateEvent:
		b.handleUpdate(ctx, message, res)
	case models.IntentAddComment:
		b.handleAddComment(ctx, message, res)
	default:
		b.sendWarnings(message.Chat.ID, res.Warnings)
	}
}

func (b *Bot) handleCreateEvent(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	if res.Schedule == nil {
		b.sendWarnings(message.Chat.ID, res.Warnings)
		return
	}

	ev := &models.Event{
		ID:           uuid.New().String(),
		UserID:       message.From.ID,
		Title:        res.Entities.Title,
		StartsAt:     res.Schedule.DueAt,
		Location:     res.Entities.Location,
		Participants: res.Entities.Participants,
		Notes:        res.Entities.Notes,
		Priority:     res.Entities.Priority,
		Recurrence:   res.Entities.Recurrence,
	}
	if ev.Title == "" {
		ev.Title = "אירוע"
	}

	mismatch, rest := splitMismatch(res.Warnings)
	if mismatch != nil {
		// The named weekday and the computed date disagree: nothing is
		// written until the user confirms.
		b.pending.set(message.Chat.ID, func(ctx context.Context) {
			b.persistEvent(ctx, message, ev, rest)
		})
		b.sendMessage(message.Chat.ID, mismatch.Message)
		return
	}
	b.persistEvent(ctx, message, ev, rest)
}

func (b *Bot) persistEvent(ctx context.Context, message *tgbotapi.Message, ev *models.Event, warnings []models.Warning) {
	if err := b.storage.SaveEvent(ctx, ev); err != nil {
		b.logger.Error("failed to save event",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "לא הצלחתי לשמור את האירוע, נסו שוב")
		return
	}

	b.rememberEvent(ctx, message.Chat.ID, ev.Title, ev.StartsAt)

	reply := fmt.Sprintf("נקבע: %s\n%s", ev.Title, formatTime(ev.StartsAt, b.loc))
	if ev.Location != "" {
		reply += "\nמיקום: " + ev.Location
	}
	if len(ev.Participants) > 0 {
		reply += "\nמשתתפים: " + strings.Join(ev.Participants, ", ")
	}
	if ev.Recurrence != nil {
		reply += "\n" + formatRecurrence(ev.Recurrence)
	}
	b.sendWithWarnings(message.Chat.ID, reply, warnings)
}

func (b *Bot) handleCreateReminder(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	if res.Schedule == nil {
		b.sendWarnings(message.Chat.ID, res.Warnings)
		return
	}

	r := &models.Reminder{
		ID:       uuid.New().String(),
		UserID:   message.From.ID,
		Title:    res.Entities.Title,
		DueAt:    res.Schedule.DueAt,
		NotifyAt: res.Schedule.NotifyAt,
		LeadMin:  res.Schedule.LeadTimeMinutes,
		Notes:    res.Entities.Notes,
	}
	if r.Title == "" {
		r.Title = "תזכורת"
	}

	sched := res.Schedule
	mismatch, rest := splitMismatch(res.Warnings)
	if mismatch != nil {
		b.pending.set(message.Chat.ID, func(ctx context.Context) {
			b.persistReminder(ctx, message, r, sched, rest)
		})
		b.sendMessage(message.Chat.ID, mismatch.Message)
		return
	}
	b.persistReminder(ctx, message, r, sched, rest)
}

func (b *Bot) persistReminder(ctx context.Context, message *tgbotapi.Message, r *models.Reminder, sched *models.ReminderSchedule, warnings []models.Warning) {
	if err := b.storage.SaveReminder(ctx, r); err != nil {
		b.logger.Error("failed to save reminder",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "לא הצלחתי לשמור את התזכורת, נסו שוב")
		return
	}

	b.rememberEvent(ctx, message.Chat.ID, r.Title, r.DueAt)
	b.sendWithWarnings(message.Chat.ID, formatReminderReply(r, sched, b.loc), warnings)
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message) {
	events, err := b.storage.ListUpcomingEvents(ctx, message.From.ID, time.Now().In(b.loc), b.listLimit)
	if err != nil {
		b.logger.Error("failed to list events",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "לא הצלחתי לשלוף את האירועים, נסו שוב")
		return
	}

	if len(events) == 0 {
		b.sendMessage(message.Chat.ID, "אין אירועים קרובים ביומן")
		return
	}

	var sb strings.Builder
	sb.WriteString("האירועים הקרובים:\n")
	for _, ev := range events {
		fmt.Fprintf(&sb, "• %s - %s\n", ev.Title, formatTime(ev.StartsAt, b.loc))
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleSearch(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	query := res.Entities.Title
	if query == "" {
		b.handleList(ctx, message)
		return
	}

	events, err := b.storage.SearchEvents(ctx, message.From.ID, query)
	if err != nil {
		b.logger.Error("failed to search events",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "החיפוש נכשל, נסו שוב")
		return
	}

	if len(events) == 0 {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("לא מצאתי אירועים שמתאימים ל\"%s\"", query))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "מצאתי %d:\n", len(events))
	for _, ev := range events {
		fmt.Fprintf(&sb, "• %s - %s\n", ev.Title, formatTime(ev.StartsAt, b.loc))
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleDelete(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	match, ok := b.findSingleEvent(ctx, message, res.Entities.Title)
	if !ok {
		return
	}

	if err := b.storage.DeleteEvent(ctx, message.From.ID, match.ID); err != nil {
		b.logger.Error("failed to delete event",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.String("event_id", match.ID))
		b.sendMessage(message.Chat.ID, "המחיקה נכשלה, נסו שוב")
		return
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("מחקתי את \"%s\" (%s)", match.Title, formatTime(match.StartsAt, b.loc)))
}

func (b *Bot) handleUpdate(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	if res.Entities.ResolvedDate == nil {
		b.sendMessage(message.Chat.ID, "לאיזה זמן להזיז את האירוע?")
		return
	}

	match, ok := b.findSingleEvent(ctx, message, res.Entities.Title)
	if !ok {
		return
	}

	newTime := *res.Entities.ResolvedDate
	if err := b.storage.UpdateEventTime(ctx, message.From.ID, match.ID, newTime); err != nil {
		b.logger.Error("failed to update event",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.String("event_id", match.ID))
		b.sendMessage(message.Chat.ID, "העדכון נכשל, נסו שוב")
		return
	}
	b.rememberEvent(ctx, message.Chat.ID, match.Title, newTime)
	b.sendMessage(message.Chat.ID, fmt.Sprintf("הזזתי את \"%s\" ל%s", match.Title, formatTime(newTime, b.loc)))
}

func (b *Bot) handleAddComment(ctx context.Context, message *tgbotapi.Message, res pipeline.Result) {
	note := res.Entities.Notes
	if note == "" {
		b.sendMessage(message.Chat.ID, "מה ההערה שלהוסיף? אפשר למשל: תוסיף הערה לפגישה - להביא מסמכים")
		return
	}

	match, ok := b.findSingleEvent(ctx, message, res.Entities.Title)
	if !ok {
		return
	}

	if err := b.storage.AddEventNote(ctx, message.From.ID, match.ID, note); err != nil {
		b.logger.Error("failed to add note",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.String("event_id", match.ID))
		b.sendMessage(message.Chat.ID, "לא הצלחתי להוסיף את ההערה, נסו שוב")
		return
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("הוספתי הערה ל\"%s\"", match.Title))
}

// findSingleEvent resolves a destructive or mutating target by title. Zero or
// multiple matches stop the flow with a question instead of guessing.
func (b *Bot) findSingleEvent(ctx context.Context, message *tgbotapi.Message, title string) (models.Event, bool) {
	if title == "" {
		b.sendMessage(message.Chat.ID, "על איזה אירוע מדובר?")
		return models.Event{}, false
	}

	events, err := b.storage.SearchEvents(ctx, message.From.ID, title)
	if err != nil {
		b.logger.Error("failed to search events",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "החיפוש נכשל, נסו שוב")
		return models.Event{}, false
	}

	switch len(events) {
	case 0:
		b.sendMessage(message.Chat.ID, fmt.Sprintf("לא מצאתי אירוע בשם \"%s\"", title))
		return models.Event{}, false
	case 1:
		return events[0], true
	default:
		var sb strings.Builder
		sb.WriteString("מצאתי כמה אירועים כאלה, איזה מהם?\n")
		for _, ev := range events {
			fmt.Fprintf(&sb, "• %s - %s\n", ev.Title, formatTime(ev.StartsAt, b.loc))
		}
		b.sendMessage(message.Chat.ID, sb.String())
		return models.Event{}, false
	}
}

func (b *Bot) rememberEvent(ctx context.Context, chatID int64, title string, dueAt time.Time) {
	err := b.sessions.RememberEvent(ctx, strconv.FormatInt(chatID, 10), models.ReferencedEvent{
		Title: title,
		DueAt: dueAt,
	})
	if err != nil {
		b.logger.Warn("failed to remember event", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendWithWarnings(chatID int64, reply string, warnings []models.Warning) {
	for _, w := range warnings {
		if w.Message != "" {
			reply = w.Message + "\n\n" + reply
		}
	}
	b.sendMessage(chatID, reply)
}

func (b *Bot) sendWarnings(chatID int64, warnings []models.Warning) {
	var parts []string
	for _, w := range warnings {
		if w.Message != "" {
			parts = append(parts, w.Message)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "לא הבנתי, אפשר לנסח מחדש?")
	}
	b.sendMessage(chatID, strings.Join(parts, "\n"))
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
