package hebrew

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

// Resolution is a successfully parsed temporal phrase.
type Resolution struct {
	Time    time.Time
	Kind    models.TemporalKind
	Matched string
}

// FormatError is the structured failure returned when no rule matched or the
// input was ambiguous. It is a value, never a panic, and always carries the
// accepted formats so the conversation layer can show them.
type FormatError struct {
	Reason    string
	Ambiguous bool
	Accepted  []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unparseable date/time: %s", e.Reason)
}

// AcceptedFormats is what the bot shows a user after a parse failure.
var AcceptedFormats = []string{
	"היום / מחר / מחרתיים",
	"יום ראשון ... שבת, או א'-ו'",
	"14:30",
	"בשעה 9, או שעה מעל 12",
	"5 בערב / 11 בבוקר / צהריים",
	"15.3 או 15.3.2026",
	"בעוד 20 דקות / שעתיים / 3 ימים",
}

const defaultDateHour = 9

// Upper bounds for relative offsets; anything larger is almost certainly a
// transcription artifact.
const (
	maxOffsetMinutes = 7 * 24 * 60
	maxOffsetHours   = 720
	maxOffsetDays    = 365
)

var (
	clockRe      = regexp.MustCompile(`(^|\s)ב?-?(\d{1,2}):(\d{2})(\s|$)`)
	numDateRe    = regexp.MustCompile(`(^|\s)ב?-?(\d{1,2})[./](\d{1,2})(?:[./](\d{2,4}))?(\s|$)`)
	offsetRe     = regexp.MustCompile(`בעוד (\d+) (דקות|דקה|שעות|שעה|ימים|יום)`)
	markerHourRe = regexp.MustCompile(`(^|\s)(?:בשעה\s+|ב-?)(\d{1,2})(\s|$)`)
	bareHourRe   = regexp.MustCompile(`(^|\s)(\d{1,2})(\s|$)`)
	abbrevDayRe  = regexp.MustCompile(`(^|\s)(?:ב?יום\s+)?([אבגדהו])'(\s|$)`)
)

// offsetSpecials are fixed colloquial offsets that carry no digit.
var offsetSpecials = []struct {
	phrase string
	d      time.Duration
}{
	{"בעוד רבע שעה", 15 * time.Minute},
	{"בעוד חצי שעה", 30 * time.Minute},
	{"בעוד שעתיים", 2 * time.Hour},
	{"בעוד שעה וחצי", 90 * time.Minute},
	{"בעוד שעה", time.Hour},
	{"בעוד יומיים", 48 * time.Hour},
}

// Parse resolves a Hebrew date/time phrase against now in the given location.
// Rules are applied in a fixed priority order; the order changes the output
// and is part of the contract. Parse never panics and never guesses: input
// that stays ambiguous after every rule comes back as a *FormatError.
func Parse(text string, loc *time.Location, now time.Time) (Resolution, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	t := normalize(text)
	if t == "" {
		return Resolution{}, &FormatError{Reason: "empty input", Accepted: AcceptedFormats}
	}

	var matchedParts []string
	consume := func(s, phrase string) string {
		matchedParts = append(matchedParts, strings.TrimSpace(phrase))
		return strings.Join(strings.Fields(strings.Replace(s, strings.TrimSpace(phrase), " ", 1)), " ")
	}

	// Relative offsets resolve to a complete instant on their own, computed
	// from the precise current moment.
	if res, ok, err := parseOffset(t, now); ok {
		return res, err
	}

	// Rule 1: exact keyword lookup.
	dayOffset := -1
	dateKind := models.TemporalKind("")
	for _, kw := range dayKeywordOrder {
		if containsToken(t, kw) {
			dayOffset = dayKeywords[kw]
			dateKind = models.TemporalRelativeDay
			t = consume(t, kw)
			break
		}
	}

	// Rule 2: explicit clock time with separator always wins over later
	// time rules.
	hour, minute := -1, 0
	timeKind := models.TemporalKind("")
	if m := clockRe.FindStringSubmatch(t); m != nil {
		h, _ := strconv.Atoi(m[2])
		mi, _ := strconv.Atoi(m[3])
		if h <= 23 && mi <= 59 {
			hour, minute = h, mi
			timeKind = models.TemporalClockTime
			t = consume(t, m[0])
		}
	}

	// Rule 4: period-of-day words, with an optional leading number. Checked
	// before the bare-hour rule so the number adjacent to the period word is
	// converted by the period, never judged as a lone ambiguous hour.
	if hour < 0 {
		if h, phrase, ok := findPeriod(t); ok {
			hour, minute = h, 0
			timeKind = models.TemporalNaturalTimeWord
			t = consume(t, phrase)
		}
	}

	// Rule 6: numeric date, optional year. Checked before the bare-hour rule
	// so "15.3" is never split into stray numbers.
	var numDate *time.Time
	if m := numDateRe.FindStringSubmatch(t); m != nil {
		day, _ := strconv.Atoi(m[2])
		month, _ := strconv.Atoi(m[3])
		d, err := resolveNumericDate(day, month, m[4], now, loc)
		if err != nil {
			return Resolution{}, err
		}
		numDate = &d
		dateKind = models.TemporalAbsoluteDate
		t = consume(t, m[0])
	}

	// Rule 3: bare hour. Accepted only with an explicit "at" marker, or when
	// the value exceeds 12 and is therefore unambiguous.
	if hour < 0 {
		if m := markerHourRe.FindStringSubmatch(t); m != nil {
			h, _ := strconv.Atoi(m[2])
			if h <= 23 {
				hour = h
				timeKind = models.TemporalClockTime
				t = consume(t, m[0])
			}
		} else if m := bareHourRe.FindStringSubmatch(t); m != nil {
			h, _ := strconv.Atoi(m[2])
			switch {
			case h >= 13 && h <= 23:
				hour = h
				timeKind = models.TemporalClockTime
				t = consume(t, m[0])
			case dayOffset < 0 && numDate == nil:
				// 1-12 with no marker and no date is ambiguous; surfaced,
				// never guessed.
				return Resolution{}, &FormatError{
					Reason:    fmt.Sprintf("שעה %d לא חד-משמעית", h),
					Ambiguous: true,
					Accepted:  AcceptedFormats,
				}
			}
		}
	}

	// Rule 5: weekday name, full or single-letter.
	var weekday *time.Weekday
	if dayOffset < 0 && numDate == nil {
		if wd, phrase, ok := findWeekday(t); ok {
			weekday = &wd
			dateKind = models.TemporalWeekdayName
			t = consume(t, phrase)
		}
	}

	matched := strings.Join(matchedParts, " ")

	switch {
	case numDate != nil:
		d := *numDate
		h, mi := hour, minute
		if h < 0 {
			h, mi = defaultDateHour, 0
		}
		return Resolution{
			Time:    time.Date(d.Year(), d.Month(), d.Day(), h, mi, 0, 0, loc),
			Kind:    dateKind,
			Matched: matched,
		}, nil

	case weekday != nil:
		target := nextWeekday(now, *weekday, hour, minute, loc)
		return Resolution{Time: target, Kind: dateKind, Matched: matched}, nil

	case dayOffset >= 0:
		base := now.AddDate(0, 0, dayOffset)
		h, mi := hour, minute
		if h < 0 {
			h, mi = defaultDateHour, 0
			if dayOffset == 0 {
				// "today" with no time and the default hour already behind
				// us: next round hour instead of an instant in the past.
				if cand := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, loc); !cand.After(now) {
					h, mi = now.Hour()+1, 0
				}
			}
		}
		return Resolution{
			Time:    time.Date(base.Year(), base.Month(), base.Day(), h, mi, 0, 0, loc),
			Kind:    dateKind,
			Matched: matched,
		}, nil

	case hour >= 0:
		// Time with no date: today at that hour, rolling to tomorrow if the
		// moment already passed.
		cand := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if !cand.After(now) {
			cand = cand.AddDate(0, 0, 1)
		}
		return Resolution{Time: cand, Kind: timeKind, Matched: matched}, nil
	}

	return Resolution{}, &FormatError{Reason: "no recognizable date or time", Accepted: AcceptedFormats}
}

func parseOffset(t string, now time.Time) (Resolution, bool, error) {
	for _, sp := range offsetSpecials {
		if strings.Contains(t, sp.phrase) {
			return Resolution{Time: now.Add(sp.d), Kind: models.TemporalRelativeOffset, Matched: sp.phrase}, true, nil
		}
	}
	m := offsetRe.FindStringSubmatch(t)
	if m == nil {
		return Resolution{}, false, nil
	}
	n, _ := strconv.Atoi(m[1])
	var d time.Duration
	switch m[2] {
	case "דקה", "דקות":
		if n > maxOffsetMinutes {
			return Resolution{}, true, &FormatError{Reason: "offset too large", Accepted: AcceptedFormats}
		}
		d = time.Duration(n) * time.Minute
	case "שעה", "שעות":
		if n > maxOffsetHours {
			return Resolution{}, true, &FormatError{Reason: "offset too large", Accepted: AcceptedFormats}
		}
		d = time.Duration(n) * time.Hour
	case "יום", "ימים":
		if n > maxOffsetDays {
			return Resolution{}, true, &FormatError{Reason: "offset too large", Accepted: AcceptedFormats}
		}
		d = time.Duration(n) * 24 * time.Hour
	}
	return Resolution{Time: now.Add(d), Kind: models.TemporalRelativeOffset, Matched: m[0]}, true, nil
}

// findPeriod matches a period-of-day word with an optional leading number.
// Number present: evening/afternoon/night add 12 to 1-11; morning keeps the
// value as-is. Number absent: the period's fixed default hour.
func findPeriod(t string) (hour int, phrase string, ok bool) {
	for _, w := range periodOrder {
		re := regexp.MustCompile(`(^|\s)(?:(\d{1,2})\s+)?[בה]?` + regexp.QuoteMeta(w) + `(\s|$)`)
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		info := periods[w]
		h := info.defaultHour
		if m[2] != "" {
			n, _ := strconv.Atoi(m[2])
			if n < 1 || n > 23 {
				continue
			}
			if info.addTwelve && n >= 1 && n <= 11 {
				n += 12
			}
			h = n
		}
		return h, m[0], true
	}
	return 0, "", false
}

// findWeekday matches a full weekday name (optional יום/ב prefixes) or a
// single-letter abbreviation. שני alone collides with the numeral "two", so
// it requires the יום prefix; every other name also matches bare.
func findWeekday(t string) (time.Weekday, string, bool) {
	if m := abbrevDayRe.FindStringSubmatch(t); m != nil {
		if wd, ok := weekdayAbbrevs[m[2]]; ok {
			return wd, m[0], true
		}
	}
	for name, wd := range weekdayNames {
		for _, variant := range []string{"ביום " + name, "יום " + name, "ב" + name} {
			if containsToken(t, variant) {
				return wd, variant, true
			}
		}
		if name != "שני" && containsToken(t, name) {
			return wd, name, true
		}
	}
	return 0, "", false
}

// nextWeekday returns the next future occurrence of wd. A same-day mention
// stays today only while the requested time is still ahead; otherwise it
// means next week.
func nextWeekday(now time.Time, wd time.Weekday, hour, minute int, loc *time.Location) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	h, mi := hour, minute
	if h < 0 {
		h, mi = defaultDateHour, 0
	}
	cand := now.AddDate(0, 0, delta)
	cand = time.Date(cand.Year(), cand.Month(), cand.Day(), h, mi, 0, 0, loc)
	if delta == 0 && !cand.After(now) {
		cand = cand.AddDate(0, 0, 7)
	}
	return cand
}

// resolveNumericDate validates day/month and applies the year-rollover rule:
// a bare day+month whose current-year reading is already past rolls forward
// to next year instead of being rejected.
func resolveNumericDate(day, month int, yearStr string, now time.Time, loc *time.Location) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, &FormatError{Reason: "invalid day or month", Accepted: AcceptedFormats}
	}
	year := now.Year()
	explicitYear := false
	if yearStr != "" {
		y, _ := strconv.Atoi(yearStr)
		if y < 100 {
			y += 2000
		}
		year = y
		explicitYear = true
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, &FormatError{Reason: "no such calendar date", Accepted: AcceptedFormats}
	}
	if !explicitYear {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if d.Before(today) {
			d = time.Date(year+1, time.Month(month), day, 0, 0, 0, 0, loc)
		}
	}
	return d, nil
}
