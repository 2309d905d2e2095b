package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ygellis/luach-bot/internal/hebrew"
	"github.com/ygellis/luach-bot/internal/models"
)

// Deterministic fallback extraction. Runs synchronously after the AI pass and
// only ever fills fields the AI left empty.

var (
	leadNumericRe = regexp.MustCompile(`(\d+)\s+(דקות|שעות|ימים)\s+לפני`)

	leadFixed = []struct {
		phrase  string
		minutes int
	}{
		{"רבע שעה לפני", 15},
		{"חצי שעה לפני", 30},
		{"שעה וחצי לפני", 90},
		{"שעתיים לפני", 120},
		{"שעה לפני", 60},
		{"יומיים לפני", 2880},
		{"יום לפני", 1440},
	}

	notesRe     = regexp.MustCompile(`\s[-–]\s+(.+)$|:\s+(.+)$`)
	digitNoteRe = regexp.MustCompile(`^\d{2}`)

	durationRe = regexp.MustCompile(`למשך\s+(חצי שעה|שעה וחצי|שעתיים|שעה|\d+\s+דקות|\d+\s+שעות)`)

	locationRe = regexp.MustCompile(`\sב(משרד|בית קפה|בית|זום|טלפון|מסעד[הת]|קליניקה|מרפאה|חדר ישיבות|עבודה)`)
	atPersonRe = regexp.MustCompile(`אצל\s+([א-ת]+)`)

	withRe = regexp.MustCompile(`עם\s+(.+)$`)

	// Leading trigger phrases that belong to the command, not the title.
	triggerPrefixes = []string{
		"תזכירי לי", "תזכיר לי", "תזכורת", "להזכיר לי", "תזכירי", "תזכיר",
		"תקבע לי", "קבע לי", "תקבעי", "תקבע", "קבע", "לקבוע",
		"אני צריך", "אני צריכה", "צריך", "צריכה",
		"מחק את", "בטל את", "עדכן את", "דחה את",
		"חפש", "הצג", "תציג", "תראה לי", "מה יש לי",
	}
)

// extractRules is the regex strategy: strictly ordered strips, each removing
// its phrase from the working text so later rules never re-read it.
func extractRules(text string, intent models.Intent, loc *time.Location, now time.Time) models.ExtractedEntities {
	var e models.ExtractedEntities
	t := strings.Join(strings.Fields(text), " ")

	// Lead time before anything temporal: "יום לפני" must be consumed as an
	// offset so the date rules can never read it as a date (and the offset
	// can never be applied twice).
	t, e.LeadTimeMinutes = stripLeadTime(t)

	// Explicitly marked notes segment is its own field, never part of the
	// title and never dropped.
	if m := notesRe.FindStringSubmatch(t); m != nil {
		note := m[1]
		if note == "" {
			note = m[2]
		}
		// A colon inside a clock time is not a notes marker.
		if !digitNoteRe.MatchString(note) {
			e.Notes = strings.TrimSpace(note)
			t = strings.TrimSpace(strings.Replace(t, m[0], "", 1))
		}
	}

	if m := durationRe.FindStringSubmatch(t); m != nil {
		e.DurationMinutes = durationMinutes(m[1])
		t = strings.Replace(t, m[0], " ", 1)
	}

	switch {
	case strings.Contains(t, "דחוף"):
		e.Priority = models.PriorityUrgent
		t = strings.Replace(t, "דחוף", " ", 1)
	case strings.Contains(t, "חשוב"):
		e.Priority = models.PriorityHigh
		t = strings.Replace(t, "חשוב", " ", 1)
	}

	if m := locationRe.FindStringSubmatch(t); m != nil {
		e.Location = m[1]
		t = strings.Replace(t, m[0], " ", 1)
	} else if m := atPersonRe.FindStringSubmatch(t); m != nil {
		e.Location = "אצל " + m[1]
		t = strings.Replace(t, m[0], " ", 1)
	}

	rem, dateText := hebrew.StripTemporal(t)
	e.DateText = dateText
	t = rem

	if m := withRe.FindStringSubmatch(t); m != nil {
		e.Participants = splitParticipants(m[1])
		t = strings.TrimSpace(strings.Replace(t, m[0], "", 1))
	}

	e.Title = cleanTitle(t, intent)

	if e.DateText != "" {
		if res, err := hebrew.Parse(e.DateText, loc, now); err == nil {
			resolved := res.Time
			e.ResolvedDate = &resolved
		}
	}
	return e
}

func stripLeadTime(t string) (string, *int) {
	if m := leadNumericRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "שעות":
			n *= 60
		case "ימים":
			n *= 24 * 60
		}
		return strings.Replace(t, m[0], " ", 1), &n
	}
	for _, lf := range leadFixed {
		if strings.Contains(t, lf.phrase) {
			minutes := lf.minutes
			return strings.Replace(t, lf.phrase, " ", 1), &minutes
		}
	}
	return t, nil
}

func durationMinutes(phrase string) int {
	switch phrase {
	case "חצי שעה":
		return 30
	case "שעה":
		return 60
	case "שעה וחצי":
		return 90
	case "שעתיים":
		return 120
	}
	fields := strings.Fields(phrase)
	if len(fields) == 2 {
		n, _ := strconv.Atoi(fields[0])
		if fields[1] == "שעות" {
			return n * 60
		}
		return n
	}
	return 0
}

// splitParticipants splits a names clause on the conjunction connector only
// when the vav starts a token: "דני ויהודית" is two people, while the vav
// inside יהודית never splits the name.
func splitParticipants(clause string) []string {
	fields := strings.Fields(strings.TrimSpace(clause))
	var out []string
	var cur []string
	for i, f := range fields {
		if i > 0 && strings.HasPrefix(f, "ו") && len([]rune(f)) > 2 {
			out = append(out, strings.Join(cur, " "))
			cur = []string{strings.TrimPrefix(f, "ו")}
			continue
		}
		cur = append(cur, f)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// cleanTitle strips command-trigger phrasing and rejects reflexive category
// plurals, which are filters rather than titles.
func cleanTitle(t string, intent models.Intent) string {
	t = strings.TrimSpace(t)
	for _, p := range triggerPrefixes {
		if strings.HasPrefix(t, p) {
			t = strings.TrimSpace(strings.TrimPrefix(t, p))
		}
	}
	t = strings.TrimPrefix(t, "את ")
	t = strings.TrimSpace(strings.Trim(t, "-:"))

	// Generic plurals used reflexively ("my reminders") are never a
	// specific-item filter, for any listing or searching intent. The closed
	// lookup also has to see through the ב/ה prepositions.
	if intent == models.IntentListEvents || intent == models.IntentSearchEvent || intent == models.IntentDeleteEvent {
		cand := strings.TrimSpace(strings.TrimPrefix(t, "את "))
		for _, c := range []string{cand, strings.TrimPrefix(cand, "ב"), strings.TrimPrefix(cand, "ה"), strings.TrimPrefix(strings.TrimPrefix(cand, "ב"), "ה")} {
			if hebrew.IsGenericCategory(c) {
				return ""
			}
		}
	}
	return strings.TrimSpace(t)
}
