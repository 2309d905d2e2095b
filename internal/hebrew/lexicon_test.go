package hebrew

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasReminderKeyword(t *testing.T) {
	assert.True(t, HasReminderKeyword("תזכורת לקנות חלב"))
	assert.True(t, HasReminderKeyword("תזכיר לי מחר"))
	assert.True(t, HasReminderKeyword("אפשר להזכיר לי בערב"))

	// Substring inside a longer word is not a standalone token: the plural
	// תזכורות is category phrasing, not a creation keyword.
	assert.False(t, HasReminderKeyword("מה יש לי בתזכורות"))
	assert.False(t, HasReminderKeyword("תזכורות"))
	assert.False(t, HasReminderKeyword("פגישה מחר בבוקר"))
}

func TestIsGenericCategory(t *testing.T) {
	assert.True(t, IsGenericCategory("תזכורות"))
	assert.True(t, IsGenericCategory("פגישות"))
	assert.True(t, IsGenericCategory("אירועים"))
	assert.False(t, IsGenericCategory("פגישה עם דני"))
	assert.False(t, IsGenericCategory("רופא שיניים"))
}

func TestWeekdayFromToken(t *testing.T) {
	tests := []struct {
		tok  string
		want time.Weekday
		ok   bool
	}{
		{"ראשון", time.Sunday, true},
		{"יום שני", time.Monday, true},
		{"בשלישי", time.Tuesday, true},
		{"ד'", time.Wednesday, true},
		{"ה׳", time.Thursday, true},
		{"שבת", time.Saturday, true},
		{"שלום", 0, false},
	}
	for _, tt := range tests {
		got, ok := WeekdayFromToken(tt.tok)
		assert.Equal(t, tt.ok, ok, tt.tok)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.tok)
		}
	}
}

func TestStripTemporal(t *testing.T) {
	rem, date := StripTemporal("פגישה עם דני מחר בשעה 14:00")
	assert.NotContains(t, rem, "מחר")
	assert.NotContains(t, rem, "14:00")
	assert.Contains(t, date, "מחר")
	assert.Contains(t, date, "14:00")
	assert.Contains(t, rem, "פגישה עם דני")
}
