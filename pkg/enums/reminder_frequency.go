package enums

import "fmt"

type ReminderFrequency string

const (
	ReminderFrequencyOnceDaily   ReminderFrequency = "once_daily"
	ReminderFrequencyTwiceDaily  ReminderFrequency = "twice_daily"
	ReminderFrequencyThriceDaily ReminderFrequency = "thrice_daily"
	ReminderFrequencyBeforeMeals ReminderFrequency = "before_meals"
	ReminderFrequencyAfterMeals  ReminderFrequency = "after_meals"
)

var validReminderFrequencies = []ReminderFrequency{
	ReminderFrequencyOnceDaily,
	ReminderFrequencyTwiceDaily,
	ReminderFrequencyThriceDaily,
	ReminderFrequencyBeforeMeals,
	ReminderFrequencyAfterMeals,
}

// String implements fmt.Stringer.
func (r ReminderFrequency) String() string {
	return string(r)
}

// Label returns the schedule as reminder emails print it.
func (r ReminderFrequency) Label() string {
	return statusLabel(string(r))
}

// IsValid reports whether the value is a known ReminderFrequency.
func (r ReminderFrequency) IsValid() bool {
	for _, candidate := range validReminderFrequencies {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReminderFrequency converts raw input into a ReminderFrequency.
func ParseReminderFrequency(value string) (ReminderFrequency, error) {
	for _, candidate := range validReminderFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder frequency %q", value)
}
