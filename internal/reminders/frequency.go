package reminders

import (
	"strings"
	"time"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// FrequencyFromText maps free-text prescription frequency onto a reminder
// schedule. The first matching rule wins, so "once ... after meals" is once
// daily. Anything unrecognised becomes once daily.
func FrequencyFromText(text string) enums.ReminderFrequency {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "once") || strings.Contains(t, "1"):
		return enums.ReminderFrequencyOnceDaily
	case strings.Contains(t, "twice") || strings.Contains(t, "2"):
		return enums.ReminderFrequencyTwiceDaily
	case strings.Contains(t, "thrice") || strings.Contains(t, "3"):
		return enums.ReminderFrequencyThriceDaily
	case strings.Contains(t, "before"):
		return enums.ReminderFrequencyBeforeMeals
	case strings.Contains(t, "after"):
		return enums.ReminderFrequencyAfterMeals
	default:
		return enums.ReminderFrequencyOnceDaily
	}
}

// Interval is the minimum gap between two reminders of the given schedule.
func Interval(f enums.ReminderFrequency) time.Duration {
	switch f {
	case enums.ReminderFrequencyTwiceDaily:
		return 12 * time.Hour
	case enums.ReminderFrequencyThriceDaily, enums.ReminderFrequencyBeforeMeals, enums.ReminderFrequencyAfterMeals:
		return 8 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// shortestInterval bounds the due query before the per-row check.
const shortestInterval = 8 * time.Hour
