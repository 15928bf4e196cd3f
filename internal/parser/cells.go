package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/table"
)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"01-02-06", "1/2/06", "1/2/06 15:04", "2-Jan-06", "02-Jan-2006", "Jan 2, 2006",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cellValue maps a formatted cell to the table's tagged value:
// blank -> Null, date-like -> Date, anything else -> String (untouched).
func cellValue(raw string) table.Value {
	v := strings.TrimSpace(raw)
	if v == "" {
		return table.Null()
	}
	if t, ok := parseTimeMaybe(v); ok {
		return table.Date(t)
	}
	return table.String(raw)
}

// headerNames trims header cells, names blank ones __EMPTY, __EMPTY_1, ...
// and suffixes duplicates with the lowest free _1, _2, ... so every column key is unique.
func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	taken := make(map[string]bool, len(cells))
	next := map[string]int{}
	empty := 0
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			name = "__EMPTY"
			if empty > 0 {
				name = fmt.Sprintf("__EMPTY_%d", empty)
			}
			empty++
		}
		if taken[name] {
			base := name
			for taken[name] {
				next[base]++
				name = fmt.Sprintf("%s_%d", base, next[base])
			}
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// buildTable turns a header plus raw records into rows over every header column.
// Records shorter than the header get Null cells; fully blank records are skipped.
func buildTable(header []string, records [][]string) table.Table {
	cols := headerNames(header)
	t := make(table.Table, 0, len(records))
	for _, rec := range records {
		vals := make([]table.Value, len(cols))
		blank := true
		for j := range cols {
			if j < len(rec) {
				vals[j] = cellValue(rec[j])
			}
			if !vals[j].IsNull() {
				blank = false
			}
		}
		if blank {
			continue
		}
		t = append(t, table.NewRow(cols, vals))
	}
	return t
}
