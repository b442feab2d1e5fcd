// Package triage decides whether a message asks for a human callback and how
// urgently that callback should happen.
package triage

import "strings"

// Keywords that mark a message as a callback request. Matching is
// case-insensitive containment; false positives are accepted.
var Keywords = []string{
	"schedule", "callback", "call me", "contact me", "talk to agent",
	"speak to someone", "speak to a representative", "talk to a human",
	"need help", "customer service", "support", "call back",
}

// ShouldSchedule reports whether text contains any callback keyword.
func ShouldSchedule(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
