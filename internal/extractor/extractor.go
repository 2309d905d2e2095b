// Package extractor pulls structured entities out of a classified message.
// Two strategies combine: schema-constrained AI extraction and a
// deterministic regex fallback. AI output wins field-by-field; the fallback
// only fills what the AI left empty, and the two never run concurrently.
package extractor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/hebrew"
	"github.com/ygellis/luach-bot/internal/models"
)

type Extractor struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an Extractor. A nil client disables the AI strategy and leaves
// extraction fully deterministic.
func New(client ChatCompleter, model string, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Extractor{client: client, model: model, timeout: timeout, logger: logger}
}

// Extract returns the entities of one message. The AI pass runs first; the
// regex fallback fills only the fields it left empty. Any date text is then
// resolved once, against the caller's now and timezone.
//
// Extract never computes a due date by subtracting a lead time: the lead
// time rides along as minutes, and the subtraction happens exactly once, in
// the schedule resolver.
func (x *Extractor) Extract(ctx context.Context, text string, intent models.Intent, loc *time.Location, now time.Time) (models.ExtractedEntities, []models.Warning) {
	var warnings []models.Warning

	ai, warn := extractAI(ctx, x.client, x.model, text, intent, x.timeout, x.logger)
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	rules := extractRules(text, intent, loc, now)
	merged := ai.Merge(rules)

	if merged.ResolvedDate == nil && merged.DateText != "" {
		dateText := merged.DateText
		if merged.TimeText != "" && !strings.Contains(dateText, merged.TimeText) {
			dateText = dateText + " " + merged.TimeText
		}
		if res, err := hebrew.Parse(dateText, loc, now); err == nil {
			resolved := res.Time
			merged.ResolvedDate = &resolved
		} else {
			x.logger.Debug("date text did not resolve",
				zap.String("date_text", dateText),
				zap.Error(err))
		}
	}

	if merged.Priority == "" {
		merged.Priority = models.PriorityNormal
	}
	if merged.ResolvedDate != nil {
		if w := hebrew.ValidateDayName(text, *merged.ResolvedDate); w != nil {
			warnings = append(warnings, *w)
		}
	}
	return merged, warnings
}
