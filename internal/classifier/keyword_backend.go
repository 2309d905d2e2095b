package classifier

import (
	"context"
	"regexp"

	"github.com/ygellis/luach-bot/internal/models"
)

// intentPattern couples an intent with the phrasing that indicates it and a
// confidence reflecting how unambiguous that phrasing is.
type intentPattern struct {
	intent     models.Intent
	patterns   []*regexp.Regexp
	confidence float64
}

// Ordered by specificity: destructive and explicit phrasings are checked
// before the broader create/list patterns.
var keywordPatterns = []intentPattern{
	{
		intent: models.IntentDeleteEvent,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(מחק|תמחק|בטל|תבטל|הסר|תסיר)`),
		},
		confidence: 0.85,
	},
	{
		intent: models.IntentUpdateEvent,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(שנה|תשנה|עדכן|תעדכן|דחה|תדחה|הזז|תזיז)`),
			regexp.MustCompile(`תעביר את ה?(פגישה|תזכורת|אירוע)`),
		},
		confidence: 0.8,
	},
	{
		intent: models.IntentAddComment,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(הוסף|תוסיף) הערה`),
		},
		confidence: 0.85,
	},
	{
		intent: models.IntentCreateReminder,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`תזכ(יר|ירי|ורת)`),
			regexp.MustCompile(`להזכיר`),
		},
		confidence: 0.9,
	},
	{
		intent: models.IntentSearchEvent,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(חפש|תחפש|מתי ה)`),
		},
		confidence: 0.75,
	},
	{
		intent: models.IntentListEvents,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`מה יש לי`),
			regexp.MustCompile(`(הצג|תציג|תראה לי|רשימת) `),
			regexp.MustCompile(`איזה (פגישות|תזכורות|אירועים)`),
		},
		confidence: 0.8,
	},
	{
		intent: models.IntentCreateEvent,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(קבע|תקבע|לקבוע) `),
			regexp.MustCompile(`פגישה (עם|ב)`),
		},
		confidence: 0.75,
	},
}

// KeywordBackend is the deterministic ensemble member: pure rule matching,
// zero latency, no external dependency. It keeps the ensemble functional when
// every remote backend is down.
type KeywordBackend struct{}

func NewKeywordBackend() *KeywordBackend {
	return &KeywordBackend{}
}

func (b *KeywordBackend) ID() string {
	return "rules:keyword"
}

func (b *KeywordBackend) Classify(_ context.Context, text string) (models.ClassificationVote, error) {
	for _, ip := range keywordPatterns {
		for _, re := range ip.patterns {
			if re.MatchString(text) {
				return models.ClassificationVote{
					ModelID:    b.ID(),
					Intent:     ip.intent,
					Confidence: ip.confidence,
				}, nil
			}
		}
	}
	return models.ClassificationVote{
		ModelID:    b.ID(),
		Intent:     models.IntentUnknown,
		Confidence: 0.3,
	}, nil
}
