// Package recurrence detects explicit and implicit recurring phrasing in
// Hebrew messages and emits a recurrence rule.
package recurrence

import (
	"regexp"
	"time"

	"github.com/ygellis/luach-bot/internal/hebrew"
	"github.com/ygellis/luach-bot/internal/models"
)

var (
	// Weekly-with-explicit-weekday must be checked before the bare daily
	// pattern: "כל יום רביעי" is weekly on Wednesday, never daily.
	weeklyDayRe  = regexp.MustCompile(`כל (?:יום )?(ראשון|שני|שלישי|רביעי|חמישי|שישי|שבת)`)
	weeklyAbbrRe = regexp.MustCompile(`כל (?:יום )?([אבגדהו])['׳]`)

	everyTwoWeeksRe = regexp.MustCompile(`כל שבועיים`)
	weeklyRe        = regexp.MustCompile(`כל שבוע`)
	everyTwoDaysRe  = regexp.MustCompile(`כל יומיים`)
	dailyRe         = regexp.MustCompile(`כל (יום|בוקר|ערב)`)
	monthlyRe       = regexp.MustCompile(`כל חודש`)
	yearlyRe        = regexp.MustCompile(`כל שנה`)

	// Recurring-activity nouns followed by a weekday imply weekly recurrence
	// even without an explicit "every" marker.
	activityDayRe = regexp.MustCompile(`(חוג|שיעור|אימון|קורס)\s+.*?(?:ב?יום )?(ראשון|שני|שלישי|רביעי|חמישי|שישי|שבת)`)
)

// Detect returns the recurrence rule a message implies, or nil when the
// phrasing is one-off.
func Detect(text string) *models.RecurrenceRule {
	if m := weeklyDayRe.FindStringSubmatch(text); m != nil {
		if wd, ok := hebrew.WeekdayFromToken(m[1]); ok {
			return weeklyOn(wd, 1)
		}
	}
	if m := weeklyAbbrRe.FindStringSubmatch(text); m != nil {
		if wd, ok := hebrew.WeekdayFromToken(m[1] + "'"); ok {
			return weeklyOn(wd, 1)
		}
	}
	if everyTwoWeeksRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 2}
	}
	if weeklyRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 1}
	}
	if everyTwoDaysRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 2}
	}
	if dailyRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1}
	}
	if monthlyRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqMonthly, Interval: 1}
	}
	if yearlyRe.MatchString(text) {
		return &models.RecurrenceRule{Frequency: models.FreqYearly, Interval: 1}
	}
	if m := activityDayRe.FindStringSubmatch(text); m != nil {
		if wd, ok := hebrew.WeekdayFromToken(m[2]); ok {
			return weeklyOn(wd, 1)
		}
	}
	return nil
}

func weeklyOn(wd time.Weekday, interval int) *models.RecurrenceRule {
	return &models.RecurrenceRule{
		Frequency: models.FreqWeekly,
		Interval:  interval,
		ByWeekday: &wd,
	}
}
