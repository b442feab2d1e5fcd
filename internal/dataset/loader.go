package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"support-intake-go/internal/faq"
)

// LoadFAQ reads question/answer pairs from the first sheet of an xlsx
// workbook. Columns are detected from the header row ("question"/"q",
// "answer"/"a"); without a recognizable header the first two columns are
// used. Rows with an empty question or answer are skipped.
func LoadFAQ(path string) (faq.List, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	qIdx, aIdx := -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case qIdx == -1 && (strings.Contains(l, "question") || l == "q"):
			qIdx = i
		case aIdx == -1 && (strings.Contains(l, "answer") || l == "a"):
			aIdx = i
		}
	}
	start := 1
	// fallback: no header row, first two columns
	if qIdx == -1 || aIdx == -1 {
		qIdx, aIdx, start = 0, 1, 0
	}

	out := faq.List{}
	for _, r := range rows[start:] {
		if qIdx >= len(r) || aIdx >= len(r) {
			continue
		}
		q := strings.TrimSpace(r[qIdx])
		a := strings.TrimSpace(r[aIdx])
		if q == "" || a == "" {
			continue
		}
		out = out.Set(q, a)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no faq rows in %s", path)
	}
	return out, nil
}
