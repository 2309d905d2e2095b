package hebrew

import (
	"fmt"
	"strings"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

// ValidateDayName checks a user-declared weekday name against the date that
// was actually resolved. A mismatch is surfaced as a confirmation-required
// warning; neither reading is silently preferred.
func ValidateDayName(text string, resolved time.Time) *models.Warning {
	wd, _, ok := findWeekday(normalize(text))
	if !ok {
		return nil
	}
	if resolved.Weekday() == wd {
		return nil
	}
	return &models.Warning{
		Kind: models.WarnDayNameDateMismatch,
		Message: fmt.Sprintf(
			"ציינת יום %s אבל התאריך שחושב יוצא ביום %s (%s) - לאשר?",
			WeekdayName(wd),
			WeekdayName(resolved.Weekday()),
			resolved.Format("02.01.2006"),
		),
	}
}

// StripTemporal removes every recognizable temporal phrase from text and
// returns the remainder alongside the collected date text. The extractor uses
// it to keep titles free of date words without re-implementing the rule set.
func StripTemporal(text string) (remainder, dateText string) {
	t := normalize(text)
	var parts []string
	take := func(phrase string) {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			return
		}
		parts = append(parts, phrase)
		t = strings.Join(strings.Fields(strings.Replace(t, phrase, " ", 1)), " ")
	}

	for _, sp := range offsetSpecials {
		if strings.Contains(t, sp.phrase) {
			take(sp.phrase)
			break
		}
	}
	if m := offsetRe.FindString(t); m != "" {
		take(m)
	}
	for _, kw := range dayKeywordOrder {
		if containsToken(t, kw) {
			take(kw)
			break
		}
	}
	if m := clockRe.FindString(t); m != "" {
		take(m)
	}
	if _, phrase, ok := findPeriod(t); ok {
		take(phrase)
	}
	if m := numDateRe.FindString(t); m != "" {
		take(m)
	}
	if m := markerHourRe.FindString(t); m != "" {
		take(m)
	}
	if _, phrase, ok := findWeekday(t); ok {
		take(phrase)
	}

	// A consumed clock time can leave its marker word dangling.
	t = strings.Join(strings.Fields(strings.ReplaceAll(" "+t+" ", " בשעה ", " ")), " ")

	return t, strings.Join(parts, " ")
}
