package bot

import (
	"fmt"
	"time"

	"github.com/ygellis/luach-bot/internal/hebrew"
	"github.com/ygellis/luach-bot/internal/models"
)

// formatTime renders a timestamp the way the bot always shows one: Hebrew
// weekday, date, clock time.
func formatTime(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("יום %s %s בשעה %s",
		hebrew.WeekdayName(t.Weekday()),
		t.Format("02.01"),
		t.Format("15:04"))
}

// formatReminderReply leads with the moment the user actually asked about:
// the notification time when they spelled out a lead, the due time otherwise.
func formatReminderReply(r *models.Reminder, sched *models.ReminderSchedule, loc *time.Location) string {
	if sched.Immediate {
		return fmt.Sprintf("הזמן כבר קרוב, אז אני מזכיר עכשיו: %s", r.Title)
	}

	if sched.LeadSource == models.LeadExplicit {
		reply := fmt.Sprintf("אזכיר לך: %s\nב%s", r.Title, formatTime(sched.NotifyAt, loc))
		if !sched.NotifyAt.Equal(sched.DueAt) {
			reply += fmt.Sprintf("\n(%s ב%s)", r.Title, formatTime(sched.DueAt, loc))
		}
		return reply
	}

	reply := fmt.Sprintf("נקבעה תזכורת: %s\nב%s", r.Title, formatTime(sched.DueAt, loc))
	if r.LeadMin > 0 {
		reply += fmt.Sprintf("\nאזכיר %d דקות לפני", r.LeadMin)
	}
	return reply
}

func formatRecurrence(rule *models.RecurrenceRule) string {
	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}
	switch rule.Frequency {
	case models.FreqDaily:
		if interval == 2 {
			return "חוזר כל יומיים"
		}
		return "חוזר כל יום"
	case models.FreqWeekly:
		day := ""
		if rule.ByWeekday != nil {
			day = " ביום " + hebrew.WeekdayName(*rule.ByWeekday)
		}
		if interval == 2 {
			return "חוזר כל שבועיים" + day
		}
		return "חוזר כל שבוע" + day
	case models.FreqMonthly:
		return "חוזר כל חודש"
	case models.FreqYearly:
		return "חוזר כל שנה"
	}
	return ""
}
