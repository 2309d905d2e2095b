package classifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygellis/luach-bot/internal/hebrew"
	"github.com/ygellis/luach-bot/internal/models"
)

// Tiers are the agreement-tier confidences and per-intent acceptance
// thresholds. The values are empirically tuned, not derived; they live in
// config so they can move without a release.
type Tiers struct {
	Unanimous         float64
	Majority          float64
	Solo              float64
	Split             float64
	ReminderAccept    float64
	AdditiveAccept    float64
	DestructiveAccept float64
	PerBackendTimeout time.Duration
}

// DefaultTiers are the production-tuned constants. Solo sits between the
// additive and destructive bars on purpose: a sole responding backend is
// enough evidence to create or list, never enough to delete or move.
func DefaultTiers() Tiers {
	return Tiers{
		Unanimous:         0.95,
		Majority:          0.85,
		Solo:              0.65,
		Split:             0.60,
		ReminderAccept:    0.4,
		AdditiveAccept:    0.5,
		DestructiveAccept: 0.7,
		PerBackendTimeout: 6 * time.Second,
	}
}

// Ensemble dispatches one message to every registered backend concurrently
// and aggregates the votes into a single decision.
type Ensemble struct {
	registry *Registry
	tiers    Tiers
	logger   *zap.Logger
}

func NewEnsemble(registry *Registry, tiers Tiers, logger *zap.Logger) *Ensemble {
	return &Ensemble{registry: registry, tiers: tiers, logger: logger}
}

// Classify runs all backends with per-backend failure isolation. A backend
// that errors or times out contributes no vote; aggregation proceeds once
// every call has settled and runs single-threaded over the collected votes.
// If ctx expires mid-flight, the in-flight calls fail fast and the votes
// already collected form a partial result.
func (e *Ensemble) Classify(ctx context.Context, text string) models.ClassificationResult {
	var (
		mu    sync.Mutex
		votes []models.ClassificationVote
	)

	g := new(errgroup.Group)
	for _, b := range e.registry.Backends() {
		b := b
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, e.tiers.PerBackendTimeout)
			defer cancel()

			v, err := b.Classify(cctx, text)
			if err != nil {
				e.logger.Warn("classifier backend unavailable",
					zap.String("backend", b.ID()),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			votes = append(votes, v)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return e.aggregate(text, votes)
}

func (e *Ensemble) aggregate(text string, votes []models.ClassificationVote) models.ClassificationResult {
	// Total outage degrades to unknown plus a clarification request.
	if len(votes) == 0 {
		return models.ClassificationResult{
			Intent:             models.IntentUnknown,
			Confidence:         0,
			NeedsClarification: true,
		}
	}

	tally := make(map[models.Intent]int, len(votes))
	sums := make(map[models.Intent]float64, len(votes))
	for _, v := range votes {
		tally[v.Intent]++
		sums[v.Intent] += v.Confidence
	}

	top := models.IntentUnknown
	best := -1
	for intent, n := range tally {
		if n > best || (n == best && sums[intent] > sums[top]) {
			top = intent
			best = n
		}
	}

	overridden := false
	if hebrew.HasReminderKeyword(text) {
		// The shortest, most common utterances are exactly where backends
		// are least reliable; an explicit standalone reminder keyword
		// outranks the vote.
		top = models.IntentCreateReminder
		overridden = true
	}

	agreement := tally[top]
	confidence := e.tiers.Split
	agreed := false
	switch {
	case agreement == len(votes) && len(votes) >= 2:
		confidence = e.tiers.Unanimous
		agreed = true
	case agreement >= 2:
		// Two concurring backends are agreement even when the rest of the
		// field scatters; a plurality never falls to the split tier.
		confidence = e.tiers.Majority
		agreed = true
	case agreement == 1 && len(votes) == 1:
		// Sole responder, e.g. keyword-only operation with no API key.
		confidence = e.tiers.Solo
		agreed = true
	}

	required := e.acceptThreshold(top, overridden)
	needs := confidence < required
	if !agreed && !overridden {
		// No agreement at all: always ask.
		needs = true
	}

	return models.ClassificationResult{
		Intent:             top,
		Confidence:         confidence,
		AgreementCount:     agreement,
		NeedsClarification: needs || top == models.IntentUnknown,
	}
}

// acceptThreshold is intent-dependent: destructive intents need more
// confidence than additive ones, and an explicit reminder keyword relaxes
// the bar because the override already carries the user's meaning.
func (e *Ensemble) acceptThreshold(intent models.Intent, overridden bool) float64 {
	switch {
	case overridden && intent == models.IntentCreateReminder:
		return e.tiers.ReminderAccept
	case intent.Destructive():
		return e.tiers.DestructiveAccept
	default:
		return e.tiers.AdditiveAccept
	}
}
