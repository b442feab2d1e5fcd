package aggregator

import "support-intake-go/internal/types"

// Insight summarizes the schedule backlog for the dashboard.
type Insight struct {
	Total       int            `json:"total"`
	Pending     int            `json:"pending"`
	ByPriority  map[string]int `json:"by_priority"`
	ByStatus    map[string]int `json:"by_status"`
	BySentiment map[string]int `json:"by_sentiment"`
	// PendingHigh counts open High-priority callbacks.
	PendingHigh int `json:"pending_high"`
}

func Aggregate(records []types.Schedule) Insight {
	ins := Insight{
		ByPriority: map[string]int{
			string(types.PriorityHigh):   0,
			string(types.PriorityMedium): 0,
			string(types.PriorityLow):    0,
		},
		ByStatus:    map[string]int{},
		BySentiment: map[string]int{},
	}
	for _, r := range records {
		ins.Total++
		ins.ByPriority[string(r.Priority)]++
		if r.Status != "" {
			ins.ByStatus[r.Status]++
		}
		if r.Sentiment != "" {
			ins.BySentiment[r.Sentiment]++
		}
		if r.Status == types.StatusPending {
			ins.Pending++
			if r.Priority == types.PriorityHigh {
				ins.PendingHigh++
			}
		}
	}
	return ins
}
