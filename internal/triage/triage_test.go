package triage

import (
	"testing"
	"time"

	"support-intake-go/internal/types"
)

func TestShouldSchedule(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Please schedule a call", true},
		{"CALL ME tomorrow", true},
		{"I need to speak to a representative about billing", true},
		{"can I talk to a human", true},
		{"Where is customer service?", true},
		{"tech SUPPORT please", true},
		{"I want a callback", true},
		{"What are your business hours?", false},
		{"thanks, all good", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ShouldSchedule(tt.text); got != tt.want {
			t.Errorf("ShouldSchedule(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		label    string
		priority types.Priority
		days     int
	}{
		{"1 star", types.PriorityHigh, 1},
		{"2 stars", types.PriorityHigh, 1},
		{"3 stars", types.PriorityMedium, 2},
		{"4 stars", types.PriorityLow, 3},
		{"5 stars", types.PriorityLow, 3},
		{"POSITIVE", types.PriorityLow, 3},
		{"", types.PriorityLow, 3},
		{"1 Star", types.PriorityLow, 3},
	}
	for _, tt := range tests {
		p, d := Assess(tt.label)
		if p != tt.priority || d != tt.days {
			t.Errorf("Assess(%q) = %s, %d; want %s, %d", tt.label, p, d, tt.priority, tt.days)
		}
	}
}

func TestCallbackDate(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	tests := map[string]string{
		"2 stars": "2026-01-01",
		"3 stars": "2026-01-02",
		"5 stars": "2026-01-03",
	}
	for label, want := range tests {
		if got := CallbackDate(now, label); got != want {
			t.Errorf("CallbackDate(%q) = %s, want %s", label, got, want)
		}
	}
}
