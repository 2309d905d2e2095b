package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
)

// openAIVote is the JSON object the model is asked to return.
type openAIVote struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// OpenAIBackend classifies via a chat-completion model. Several instances
// with different models form independent ensemble members on one vendor.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIBackend(client *openai.Client, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIBackend {
	return &OpenAIBackend{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (b *OpenAIBackend) ID() string {
	return "openai:" + b.model
}

const intentPrompt = `You classify Hebrew (possibly mixed-language, possibly voice-transcribed)
chat messages for a calendar/reminder assistant.

Return ONLY a JSON object:
{"intent": "<label>", "confidence": <0..1>}

Labels: create_event, create_reminder, list_events, delete_event,
update_event, search_event, add_comment, unknown.

Rules:
- "תזכיר לי" / "תזכורת" phrasing is create_reminder.
- Setting up a meeting with a time is create_event.
- "מה יש לי" / "מתי" questions are list_events or search_event.
- When unsure, answer unknown with low confidence. Never invent labels.

Message: %s`

func (b *OpenAIBackend) Classify(ctx context.Context, text string) (models.ClassificationVote, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(intentPrompt, text)},
		},
		MaxTokens:   b.maxTokens,
		Temperature: float32(b.temperature),
	})
	if err != nil {
		return models.ClassificationVote{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.ClassificationVote{}, fmt.Errorf("empty completion from %s", b.model)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "` \n")

	var v openAIVote
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		b.logger.Warn("unparseable classification response",
			zap.String("model", b.model),
			zap.String("response", raw),
			zap.Error(err))
		return models.ClassificationVote{}, fmt.Errorf("parse vote: %w", err)
	}

	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return models.ClassificationVote{
		ModelID:    b.ID(),
		Intent:     models.ParseIntent(v.Intent),
		Confidence: v.Confidence,
	}, nil
}
