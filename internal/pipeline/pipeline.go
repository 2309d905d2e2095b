// Package pipeline sequences classification, extraction, recurrence
// detection, and temporal resolution over one message. Each stage consumes
// the previous stage's value and produces a new one; nothing is patched in
// place across stage boundaries.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
	"github.com/ygellis/luach-bot/internal/recurrence"
	"github.com/ygellis/luach-bot/internal/schedule"
	"github.com/ygellis/luach-bot/internal/session"
)

// Classifier is the ensemble seen by the pipeline.
type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

// EntityExtractor is the combined AI+rules extractor seen by the pipeline.
type EntityExtractor interface {
	Extract(ctx context.Context, text string, intent models.Intent, loc *time.Location, now time.Time) (models.ExtractedEntities, []models.Warning)
}

// Request is one incoming message with its conversation identity.
type Request struct {
	Text           string
	ConversationID string
	UserID         int64
}

// Result is the single structured product handed to the conversation layer.
// NeedsClarification means classification stopped short of acting: Entities
// and Schedule are empty and Warnings carries the question to ask.
type Result struct {
	Intent             models.Intent
	Confidence         float64
	NeedsClarification bool
	Entities           models.ExtractedEntities
	Schedule           *models.ReminderSchedule
	Warnings           []models.Warning
}

type Pipeline struct {
	classifier Classifier
	extractor  EntityExtractor
	resolver   *schedule.Resolver
	sessions   session.Store
	loc        *time.Location
	timeout    time.Duration
	logger     *zap.Logger

	// now is swappable for tests; production uses time.Now.
	now func() time.Time
}

func New(classifier Classifier, extractor EntityExtractor, resolver *schedule.Resolver, sessions session.Store, loc *time.Location, timeout time.Duration, logger *zap.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		classifier: classifier,
		extractor:  extractor,
		resolver:   resolver,
		sessions:   sessions,
		loc:        loc,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Run resolves one message end to end. If the per-message timeout expires
// mid-classification, the votes collected so far form a partial result
// rather than blocking.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	now := p.now().In(p.loc)

	cls := p.classifier.Classify(ctx, req.Text)
	res := Result{Intent: cls.Intent, Confidence: cls.Confidence}

	if cls.Intent == models.IntentUnknown || cls.NeedsClarification {
		res.NeedsClarification = true
		res.Warnings = append(res.Warnings, models.Warning{
			Kind:    models.WarnAmbiguousInput,
			Message: "לא הצלחתי להבין מה רצית - אפשר לנסח מחדש?",
		})
		return res, nil
	}

	entities, warns := p.extractor.Extract(ctx, req.Text, cls.Intent, p.loc, now)
	res.Warnings = append(res.Warnings, warns...)

	if entities.Recurrence == nil {
		if rule := recurrence.Detect(req.Text); rule != nil {
			next := entities
			next.Recurrence = rule
			entities = next
		}
	}

	// A lead time with no date of its own references a prior event: the due
	// moment is the event's own time, never event-time-minus-lead.
	if entities.ResolvedDate == nil && entities.LeadTimeMinutes != nil {
		entities = p.anchorOnReferencedEvent(ctx, req.ConversationID, entities)
	}

	if cls.Intent == models.IntentCreateReminder || cls.Intent == models.IntentCreateEvent {
		sched, warn := p.resolveSchedule(ctx, req.UserID, entities, now)
		res.Schedule = sched
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
		}
	}

	res.Entities = entities
	return res, nil
}

func (p *Pipeline) anchorOnReferencedEvent(ctx context.Context, conversationID string, entities models.ExtractedEntities) models.ExtractedEntities {
	events, err := p.sessions.GetRecentReferencedEvents(ctx, conversationID)
	if err != nil {
		p.logger.Warn("conversation context lookup failed", zap.Error(err))
		return entities
	}
	if len(events) == 0 {
		return entities
	}

	ref := events[0]
	next := entities
	due := ref.DueAt
	next.ResolvedDate = &due
	if next.Title == "" {
		next.Title = ref.Title
	}
	return next
}

func (p *Pipeline) resolveSchedule(ctx context.Context, userID int64, entities models.ExtractedEntities, now time.Time) (*models.ReminderSchedule, *models.Warning) {
	defaultLead, err := p.sessions.GetDefaultLeadTimeMinutes(ctx, userID)
	if err != nil {
		p.logger.Warn("default lead time lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		defaultLead = 0
	}

	sched, err := p.resolver.Resolve(entities, defaultLead, now)
	switch {
	case errors.Is(err, schedule.ErrNoDueDate):
		return nil, &models.Warning{
			Kind:    models.WarnAmbiguousInput,
			Message: "לא מצאתי תאריך או שעה - מתי זה אמור לקרות?",
		}
	case errors.Is(err, schedule.ErrPastSchedule):
		return nil, &models.Warning{
			Kind:    models.WarnPastSchedule,
			Message: "הזמן שביקשת כבר עבר - אפשר לבחור זמן חדש?",
		}
	case err != nil:
		p.logger.Error("schedule resolution failed", zap.Error(err))
		return nil, &models.Warning{Kind: models.WarnAmbiguousInput, Message: "לא הצלחתי לקבוע זמן"}
	}
	return &sched, nil
}
