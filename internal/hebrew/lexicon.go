// Package hebrew resolves colloquial Hebrew date/time phrasing into absolute
// timestamps. All arithmetic is done against an explicit *time.Location and a
// caller-supplied "now"; the server's local timezone never participates.
package hebrew

import (
	"strings"
	"time"
	"unicode"
)

// dayKeywords maps exact relative-day phrases to an offset in days from now.
// Longest phrases are matched first (dayKeywordOrder), so מחרתיים is never
// swallowed by its prefix מחר.
//
// Phrases with a dual reading elsewhere in a sentence (יום לפני, שעה לפני —
// date or lead-time offset) are deliberately absent: they parse only as lead
// times, so the offset can never be applied twice.
var dayKeywords = map[string]int{
	"היום":      0,
	"מחר":       1,
	"מחרתיים":   2,
	"השבוע":     0,
	"שבוע הבא":  7,
	"בשבוע הבא": 7,
}

var dayKeywordOrder = []string{
	"בשבוע הבא", "שבוע הבא", "מחרתיים", "מחר", "השבוע", "היום",
}

// weekdayNames maps full weekday names to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"ראשון": time.Sunday,
	"שני":   time.Monday,
	"שלישי": time.Tuesday,
	"רביעי": time.Wednesday,
	"חמישי": time.Thursday,
	"שישי":  time.Friday,
	"שבת":   time.Saturday,
}

// weekdayAbbrevs maps the single-letter forms (א׳ through ו׳) to weekdays.
// Saturday intentionally has no letter form: שבת is matched by full name only,
// because a bare shin-with-geresh collides with common time words.
var weekdayAbbrevs = map[string]time.Weekday{
	"א": time.Sunday,
	"ב": time.Monday,
	"ג": time.Tuesday,
	"ד": time.Wednesday,
	"ה": time.Thursday,
	"ו": time.Friday,
}

// WeekdayName returns the Hebrew name for a weekday, for user-facing
// messages.
func WeekdayName(d time.Weekday) string {
	for name, wd := range weekdayNames {
		if wd == d {
			return name
		}
	}
	return d.String()
}

// periodInfo describes a period-of-day word: its default hour when no number
// accompanies it, and whether a leading 1–11 converts to the PM range.
type periodInfo struct {
	defaultHour int
	addTwelve   bool
}

var periods = map[string]periodInfo{
	"בוקר":         {defaultHour: 9, addTwelve: false},
	"צהריים":       {defaultHour: 12, addTwelve: true},
	"אחר הצהריים":  {defaultHour: 15, addTwelve: true},
	"אחרי הצהריים": {defaultHour: 15, addTwelve: true},
	"אחה\"צ":       {defaultHour: 15, addTwelve: true},
	"ערב":          {defaultHour: 19, addTwelve: true},
	"לילה":         {defaultHour: 21, addTwelve: true},
}

var periodOrder = []string{
	"אחרי הצהריים", "אחר הצהריים", "אחה\"צ", "צהריים", "בוקר", "ערב", "לילה",
}

// reminderKeywords force intent=create_reminder when present as standalone
// tokens. Classifier backends are empirically unreliable on exactly these
// short utterances.
var reminderKeywords = []string{
	"תזכורת", "תזכיר", "תזכירי", "להזכיר",
}

// genericCategoryWords are bare plural nouns users say reflexively ("show me
// my reminders"). They are recognized via this closed lookup and must never be
// captured as a specific-item title filter.
var genericCategoryWords = map[string]struct{}{
	"תזכורות": {},
	"אירועים": {},
	"פגישות":  {},
	"משימות":  {},
}

// HasReminderKeyword reports whether text contains an explicit reminder
// keyword as a standalone token. Substring hits inside longer words do not
// count; Hebrew word boundaries cannot be left to \b, which only understands
// ASCII word characters.
func HasReminderKeyword(text string) bool {
	for _, kw := range reminderKeywords {
		if containsToken(text, kw) {
			return true
		}
	}
	return false
}

// IsGenericCategory reports whether word is a reflexive category plural.
func IsGenericCategory(word string) bool {
	_, ok := genericCategoryWords[strings.TrimSpace(word)]
	return ok
}

// WeekdayFromToken resolves a full weekday name or a single-letter
// abbreviation (with geresh or apostrophe) to a weekday.
func WeekdayFromToken(tok string) (time.Weekday, bool) {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimPrefix(tok, "יום ")
	// Abbreviations first: the ב' form would otherwise lose its letter to
	// preposition stripping.
	trimmed := strings.TrimRight(tok, "'׳")
	if trimmed != tok {
		if wd, ok := weekdayAbbrevs[trimmed]; ok {
			return wd, true
		}
	}
	if wd, ok := weekdayNames[tok]; ok {
		return wd, true
	}
	if stripped := strings.TrimPrefix(tok, "ב"); stripped != tok {
		if wd, ok := weekdayNames[stripped]; ok {
			return wd, true
		}
	}
	return 0, false
}

func isHebrewLetter(r rune) bool {
	return unicode.Is(unicode.Hebrew, r) && unicode.IsLetter(r)
}

// containsToken reports whether token occurs in text delimited by
// non-Hebrew-letter runes on both sides.
func containsToken(text, token string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], token)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(token)
		before := rune(0)
		if start > 0 {
			runes := []rune(text[:start])
			before = runes[len(runes)-1]
		}
		after := rune(0)
		if end < len(text) {
			after = []rune(text[end:])[0]
		}
		if !isHebrewLetter(before) && !isHebrewLetter(after) {
			return true
		}
		from = end
	}
}

// normalize collapses whitespace and unifies the punctuation variants voice
// transcription tends to produce.
func normalize(text string) string {
	r := strings.NewReplacer(
		"׳", "'",
		"״", "\"",
		"־", "-",
		"?", " ",
		"!", " ",
		",", " ",
	)
	return strings.Join(strings.Fields(r.Replace(text)), " ")
}
