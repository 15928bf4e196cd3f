package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Parse reads the selected sheet: SheetName wins, then the 1-based SheetIndex,
// otherwise the first sheet. Cells are read as displayed; date-formatted serials
// are resolved to dates.
func (xlsxParser) Parse(r io.Reader, opt Options) (table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.Table{}, nil
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	dates := newDateCells(f, sheet)
	for i := 1; i < len(rows) && i < len(raw); i++ {
		for j, shown := range rows[i] {
			if j >= len(raw[i]) || raw[i][j] == shown {
				continue
			}
			if iso, ok := dates.resolve(i, j, raw[i][j]); ok {
				rows[i][j] = iso
			}
		}
	}
	return buildTable(rows[0], rows[1:]), nil
}

// dateCells recognizes serial numbers displayed through a date or time format,
// whatever layout the format code produces.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	d := &dateCells{f: f, sheet: sheet, styles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// resolve returns the RFC3339 form of the cell at the 0-based row and col when
// its style is a date format.
func (d *dateCells) resolve(row, col int, raw string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", false
	}
	id, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil {
		return "", false
	}
	isDate, seen := d.styles[id]
	if !seen {
		style, err := d.f.GetStyle(id)
		isDate = err == nil && isDateStyle(style)
		d.styles[id] = isDate
	}
	if !isDate {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	return t.Format(time.RFC3339), true
}

func isDateStyle(s *excelize.Style) bool {
	if s.CustomNumFmt != nil {
		return isDateFormatCode(*s.CustomNumFmt)
	}
	switch {
	case s.NumFmt >= 14 && s.NumFmt <= 22, s.NumFmt >= 45 && s.NumFmt <= 47:
		return true
	}
	return false
}

// isDateFormatCode reports whether a number format code renders a date or time.
// Quoted literals, escaped characters and bracketed sections such as [Red] or
// [$-409] are ignored; elapsed-time brackets like [h] count.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case c == '"':
			inQuote = true
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			switch code[i+1 : i+end] {
			case "h", "hh", "m", "mm", "s", "ss":
				return true
			}
			i += end
		case c == 'd' || c == 'y' || c == 'h' || c == 's':
			return true
		}
	}
	return false
}

func pickSheet(sheets []string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found. Available sheets: %s", opt.SheetName, strings.Join(sheets, ", "))
	}
	if opt.SheetIndex > 0 {
		if opt.SheetIndex > len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", opt.SheetIndex, len(sheets))
		}
		return sheets[opt.SheetIndex-1], nil
	}
	return sheets[0], nil
}
