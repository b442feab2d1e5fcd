// Package faq holds the ordered question->answer mapping and the lookup
// used to short-circuit intake requests.
package faq

import (
	"strings"

	"support-intake-go/internal/types"
)

// Match returns the answer of the first entry, in insertion order, whose
// question contains query as a case-insensitive substring. The query is not
// trimmed. An empty query never matches.
func Match(query string, entries []types.FAQEntry) (string, bool) {
	q := strings.ToLower(query)
	if q == "" {
		return "", false
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Question), q) {
			return e.Answer, true
		}
	}
	return "", false
}
