package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
)

// ChatCompleter is the slice of the OpenAI client the extractor needs;
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// aiEntities is the schema the model must return. Field names are part of
// the prompt contract below.
type aiEntities struct {
	Title           string   `json:"title"`
	DateText        string   `json:"date_text"`
	TimeText        string   `json:"time_text"`
	Location        string   `json:"location"`
	Participants    []string `json:"participants"`
	DurationMinutes int      `json:"duration_minutes"`
	Priority        string   `json:"priority"`
	Notes           string   `json:"notes"`
	LeadTimeMinutes *int     `json:"lead_time_minutes"`
}

const extractPrompt = `Extract structured fields from a colloquial Hebrew calendar/reminder
message. The message intent is: %s.

Return ONLY a JSON object with exactly these keys (empty string / null / []
for anything absent):
{"title": "", "date_text": "", "time_text": "", "location": "",
 "participants": [], "duration_minutes": 0, "priority": "normal|high|urgent",
 "notes": "", "lead_time_minutes": null}

Rules, with worked edge cases:
- title is what the user wants to do, without date words, trigger verbs, or
  the notes segment.
- "For someone" phrasing stays in the title: "תזכיר לי לקנות מתנה לאמא" ->
  title "לקנות מתנה לאמא". Never strip the beneficiary.
- Bare plurals like תזכורות/פגישות/אירועים are the user's whole collection,
  not a title: "מה יש לי בתזכורות" -> title "".
- A weekday used for listing is a date filter: "מה יש לי ביום שלישי" ->
  title "", date_text "יום שלישי".
- date_text is the user's own words, never a computed date. CRITICAL: never
  subtract a lead time from the date. "תזכיר לי יום לפני הפגישה" ->
  lead_time_minutes 1440 and date_text of the meeting itself.
- participants: "עם דני ויהודית" -> ["דני","יהודית"], but "עם יהודית" ->
  ["יהודית"] (the letter vav inside a name is not a connector).
- "11 בערב" means 23:00, "11 בבוקר" means 11:00; keep the user's words in
  time_text.
- Trailing " - something" or ": something" is notes: "פגישה עם רופא - לא
  לשכוח מסמכים" -> notes "לא לשכוח מסמכים".

Message: %s`

// extractAI runs the schema-constrained AI strategy. A timeout, API error,
// or schema violation yields zero entities and lets the regex fallback fill
// everything; extraction never blocks the pipeline on AI health.
func extractAI(ctx context.Context, client ChatCompleter, model string, text string, intent models.Intent, timeout time.Duration, logger *zap.Logger) (models.ExtractedEntities, *models.Warning) {
	if client == nil {
		return models.ExtractedEntities{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(extractPrompt, intent, text)},
		},
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("AI extraction failed", zap.Error(err))
		return models.ExtractedEntities{}, &models.Warning{
			Kind:    models.WarnMalformedExtraction,
			Message: "ai extraction unavailable, regex fallback used",
		}
	}
	if len(resp.Choices) == 0 {
		return models.ExtractedEntities{}, &models.Warning{
			Kind:    models.WarnMalformedExtraction,
			Message: "empty ai extraction response",
		}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "` \n")

	var ae aiEntities
	if err := json.Unmarshal([]byte(raw), &ae); err != nil {
		logger.Warn("AI extraction violated schema",
			zap.String("response", raw),
			zap.Error(err))
		return models.ExtractedEntities{}, &models.Warning{
			Kind:    models.WarnMalformedExtraction,
			Message: "ai extraction violated schema, regex fallback used",
		}
	}

	e := models.ExtractedEntities{
		Title:           strings.TrimSpace(ae.Title),
		DateText:        strings.TrimSpace(ae.DateText),
		TimeText:        strings.TrimSpace(ae.TimeText),
		Location:        strings.TrimSpace(ae.Location),
		Participants:    ae.Participants,
		DurationMinutes: ae.DurationMinutes,
		Notes:           strings.TrimSpace(ae.Notes),
	}
	switch models.Priority(ae.Priority) {
	case models.PriorityHigh, models.PriorityUrgent:
		e.Priority = models.Priority(ae.Priority)
	}
	if ae.LeadTimeMinutes != nil && *ae.LeadTimeMinutes >= 0 {
		e.LeadTimeMinutes = ae.LeadTimeMinutes
	}
	return e, nil
}
