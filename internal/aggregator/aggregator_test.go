package aggregator

import (
	"testing"

	"support-intake-go/internal/types"
)

func TestAggregate(t *testing.T) {
	records := []types.Schedule{
		{ID: "1", Priority: types.PriorityHigh, Status: "Pending", Sentiment: "1 star"},
		{ID: "2", Priority: types.PriorityHigh, Status: "Completed", Sentiment: "2 stars"},
		{ID: "3", Priority: types.PriorityMedium, Status: "Pending", Sentiment: "3 stars"},
		{ID: "4", Priority: types.PriorityLow, Status: "Scheduled", Sentiment: "5 stars"},
	}
	ins := Aggregate(records)
	if ins.Total != 4 || ins.Pending != 2 || ins.PendingHigh != 1 {
		t.Errorf("totals = %+v", ins)
	}
	if ins.ByPriority["High"] != 2 || ins.ByPriority["Medium"] != 1 || ins.ByPriority["Low"] != 1 {
		t.Errorf("ByPriority = %v", ins.ByPriority)
	}
	if ins.ByStatus["Pending"] != 2 || ins.ByStatus["Completed"] != 1 || ins.ByStatus["Scheduled"] != 1 {
		t.Errorf("ByStatus = %v", ins.ByStatus)
	}
	if ins.BySentiment["1 star"] != 1 {
		t.Errorf("BySentiment = %v", ins.BySentiment)
	}
}

func TestAggregate_Empty(t *testing.T) {
	ins := Aggregate(nil)
	if ins.Total != 0 || ins.Pending != 0 {
		t.Errorf("ins = %+v", ins)
	}
	if len(ins.ByPriority) != 3 {
		t.Errorf("ByPriority should list all tiers, got %v", ins.ByPriority)
	}
}
