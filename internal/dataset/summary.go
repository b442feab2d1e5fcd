package dataset

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"support-intake-go/internal/aggregator"
	"support-intake-go/internal/types"
)

const (
	schedulesSheet = "Schedules"
	summarySheet   = "Summary"
)

var scheduleHeader = []interface{}{
	"ID", "Query", "Date", "Time", "Priority", "Status", "Created At", "Sentiment", "Notes", "Updated At",
}

// ExportSchedules writes an xlsx workbook with one row per schedule and a
// summary sheet of backlog counts.
func ExportSchedules(w io.Writer, records []types.Schedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", schedulesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}

	if err := f.SetSheetRow(schedulesSheet, "A1", &scheduleHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.ID, r.Query, r.Date, r.Time, string(r.Priority), r.Status, r.CreatedAt, r.Sentiment, r.Notes, r.UpdatedAt}
		if err := f.SetSheetRow(schedulesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_ = f.SetRowStyle(schedulesSheet, 1, 1, bold)
	_ = f.SetColWidth(schedulesSheet, "B", "B", 60)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	ins := aggregator.Aggregate(records)
	summary := [][]interface{}{
		{"Metric", "Count"},
		{"Total", ins.Total},
		{"Pending", ins.Pending},
		{"Pending High", ins.PendingHigh},
	}
	for _, p := range []types.Priority{types.PriorityHigh, types.PriorityMedium, types.PriorityLow} {
		summary = append(summary, []interface{}{"Priority " + string(p), ins.ByPriority[string(p)]})
	}
	statuses := make([]string, 0, len(ins.ByStatus))
	for s := range ins.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		summary = append(summary, []interface{}{"Status " + s, ins.ByStatus[s]})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := row
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	_ = f.SetRowStyle(summarySheet, 1, 1, bold)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
