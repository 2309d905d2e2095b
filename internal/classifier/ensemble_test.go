package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
)

// stubBackend votes a fixed intent, or fails, or blocks until cancelled.
type stubBackend struct {
	id     string
	intent models.Intent
	fail   bool
	block  bool
}

func (s *stubBackend) ID() string { return s.id }

func (s *stubBackend) Classify(ctx context.Context, _ string) (models.ClassificationVote, error) {
	if s.block {
		<-ctx.Done()
		return models.ClassificationVote{}, ctx.Err()
	}
	if s.fail {
		return models.ClassificationVote{}, errors.New("backend down")
	}
	return models.ClassificationVote{ModelID: s.id, Intent: s.intent, Confidence: 0.9}, nil
}

func newTestEnsemble(backends ...Backend) *Ensemble {
	tiers := DefaultTiers()
	tiers.PerBackendTimeout = 100 * time.Millisecond
	return NewEnsemble(NewRegistry(backends...), tiers, zap.NewNop())
}

func TestEnsembleUnanimous(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentCreateEvent},
		&stubBackend{id: "b", intent: models.IntentCreateEvent},
		&stubBackend{id: "c", intent: models.IntentCreateEvent},
	)

	res := e.Classify(context.Background(), "פגישה עם דנה מחר בארבע")
	assert.Equal(t, models.IntentCreateEvent, res.Intent)
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, 3, res.AgreementCount)
	assert.False(t, res.NeedsClarification)
}

func TestEnsembleMajority(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentListEvents},
		&stubBackend{id: "b", intent: models.IntentListEvents},
		&stubBackend{id: "c", intent: models.IntentSearchEvent},
	)

	res := e.Classify(context.Background(), "מה יש לי השבוע")
	assert.Equal(t, models.IntentListEvents, res.Intent)
	assert.Equal(t, 0.85, res.Confidence)
	assert.False(t, res.NeedsClarification)
}

func TestEnsemblePluralityOfFiveIsMajority(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentCreateEvent},
		&stubBackend{id: "b", intent: models.IntentCreateEvent},
		&stubBackend{id: "c", intent: models.IntentListEvents},
		&stubBackend{id: "d", intent: models.IntentSearchEvent},
		&stubBackend{id: "e", intent: models.IntentAddComment},
	)

	// Two concurring votes out of five responders still clear the majority
	// tier; the scattered remainder does not demote them to a split.
	res := e.Classify(context.Background(), "פגישה עם דנה מחר")
	assert.Equal(t, models.IntentCreateEvent, res.Intent)
	assert.GreaterOrEqual(t, res.Confidence, 0.85)
	assert.Equal(t, 2, res.AgreementCount)
	assert.False(t, res.NeedsClarification)
}

func TestEnsembleSoloBackendActsOnAdditiveIntent(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentCreateEvent},
	)

	// A single responding backend (keyword-only operation) clears the
	// additive bar on its own.
	res := e.Classify(context.Background(), "פגישה עם דנה מחר")
	assert.Equal(t, models.IntentCreateEvent, res.Intent)
	assert.Equal(t, 0.65, res.Confidence)
	assert.False(t, res.NeedsClarification)
}

func TestEnsembleNoAgreement(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentListEvents},
		&stubBackend{id: "b", intent: models.IntentCreateEvent},
		&stubBackend{id: "c", intent: models.IntentSearchEvent},
	)

	res := e.Classify(context.Background(), "העניין ההוא")
	assert.Equal(t, 0.60, res.Confidence)
	assert.True(t, res.NeedsClarification)
}

func TestEnsembleFailureIsolation(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentCreateEvent},
		&stubBackend{id: "b", fail: true},
		&stubBackend{id: "c", intent: models.IntentCreateEvent},
	)

	res := e.Classify(context.Background(), "פגישה עם דנה מחר")
	assert.Equal(t, models.IntentCreateEvent, res.Intent)
	// Two responding backends in full agreement: unanimous over responders.
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, 2, res.AgreementCount)
}

func TestEnsembleTimedOutBackendContributesNoVote(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentCreateEvent},
		&stubBackend{id: "b", block: true},
		&stubBackend{id: "c", intent: models.IntentCreateEvent},
	)

	res := e.Classify(context.Background(), "פגישה מחר")
	assert.Equal(t, models.IntentCreateEvent, res.Intent)
	assert.Equal(t, 2, res.AgreementCount)
}

func TestEnsembleTotalOutage(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", fail: true},
		&stubBackend{id: "b", fail: true},
	)

	res := e.Classify(context.Background(), "פגישה מחר")
	assert.Equal(t, models.IntentUnknown, res.Intent)
	assert.Equal(t, 0.0, res.Confidence)
	assert.True(t, res.NeedsClarification)
}

// An explicit reminder keyword as a standalone token forces create_reminder
// even when every responding backend voted unknown.
func TestEnsembleReminderKeywordOverride(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentUnknown},
		&stubBackend{id: "b", intent: models.IntentUnknown},
	)

	res := e.Classify(context.Background(), "תזכורת לקנות חלב")
	assert.Equal(t, models.IntentCreateReminder, res.Intent)
	assert.False(t, res.NeedsClarification)
}

// The keyword must be a standalone token: a substring inside a longer word
// does not trigger the override.
func TestEnsembleReminderKeywordMidWordDoesNotOverride(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentListEvents},
		&stubBackend{id: "b", intent: models.IntentListEvents},
	)

	res := e.Classify(context.Background(), "מה יש לי בתזכורות השבוע")
	// תזכורות is the generic plural, not the reminder keyword.
	assert.Equal(t, models.IntentListEvents, res.Intent)
}

func TestEnsembleDestructiveNeedsHigherConfidence(t *testing.T) {
	e := newTestEnsemble(
		&stubBackend{id: "a", intent: models.IntentDeleteEvent},
	)

	// One vote lands on the solo tier of 0.65, below the destructive bar
	// of 0.7: a sole backend may create, never delete.
	res := e.Classify(context.Background(), "מחק את הפגישה")
	assert.Equal(t, models.IntentDeleteEvent, res.Intent)
	assert.True(t, res.NeedsClarification)
}
