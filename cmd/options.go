package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/parser"
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/spf13/cobra"
)

// inputFlags are the decoding and number-format flags shared by analyze and chart.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (default '.')")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (default none)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) parserOptions() (parser.Options, error) {
	opt := parser.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *inputFlags) coercer() (table.Coercer, error) {
	var c table.Coercer
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		c.DecimalSeparator = ','
	case ".", "dot", "":
	default:
		return c, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(f.thousands) {
	case ",":
		c.ThousandsSeparator = ','
	case ".":
		c.ThousandsSeparator = '.'
	case "space", " ":
		c.ThousandsSeparator = ' '
	case "":
	default:
		return c, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if c.ThousandsSeparator != 0 && c.ThousandsSeparator == c.DecimalSeparator {
		return c, fmt.Errorf("--decimal and --thousands must differ")
	}
	return c, nil
}
