package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
)

// Title is the heading shown above a chart, e.g. "BAR Chart: Region vs Revenue".
func Title(s chart.Series) string {
	return fmt.Sprintf("%s Chart: %s vs %s", strings.ToUpper(string(s.Kind)), s.XTitle, s.YTitle)
}

// Placeholder is the text shown in place of a chart that cannot be drawn.
func Placeholder(err error) string {
	var ce *chart.ConfigError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chart.ErrAxisNotSelected):
		return "Please select X and Y axes"
	case errors.As(err, &ce) && errors.Is(err, chart.ErrUnknownKind):
		return fmt.Sprintf("Unknown chart type %q. Choose one of: %s", ce.Value, kindList())
	case errors.Is(err, ErrEmptySeries):
		return "No numeric values to plot for the selected Y axis"
	case errors.Is(err, ErrUnsupportedKind):
		return "This chart type is only available in the interactive dashboard"
	}
	return err.Error()
}

func kindList() string {
	names := make([]string, len(chart.Kinds))
	for i, k := range chart.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
