package triage

import (
	"time"

	"support-intake-go/internal/types"
)

// Assess maps a 5-point sentiment label to a callback priority and the
// number of days until the callback. Unknown labels fall back to Low.
func Assess(label string) (types.Priority, int) {
	switch label {
	case "1 star", "2 stars":
		return types.PriorityHigh, 1
	case "3 stars":
		return types.PriorityMedium, 2
	default:
		return types.PriorityLow, 3
	}
}

// CallbackDate returns the callback date for label relative to now.
func CallbackDate(now time.Time, label string) string {
	_, days := Assess(label)
	return now.AddDate(0, 0, days).Format(types.DateLayout)
}
