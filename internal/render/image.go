package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrUnsupportedKind = errors.New("chart type cannot be rendered as an image")
	ErrEmptySeries     = errors.New("series has no points")
)

// Format is an image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts png or svg, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, SVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q (want png or svg)", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// paletteColors mirrors Palette for go-chart fills.
var paletteColors = []drawing.Color{
	{R: 75, G: 192, B: 192, A: 153},
	{R: 255, G: 99, B: 132, A: 153},
	{R: 54, G: 162, B: 235, A: 153},
	{R: 255, G: 206, B: 86, A: 153},
	{R: 153, G: 102, B: 255, A: 153},
}

var borderColor = drawing.Color{R: 0, G: 0, B: 0, A: 26}

// maxTicks caps x-axis labels on line and scatter charts.
const maxTicks = 20

// Image draws s as a static picture of w by h pixels. Radar has no image
// renderer; pie and doughnut drop non-positive slices.
func Image(s chart.Series, format Format, w, h int, out io.Writer) error {
	if len(s.Points) == 0 {
		return ErrEmptySeries
	}
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 400
	}
	title := Title(s)
	var err error
	switch s.Kind {
	case chart.Bar:
		err = barChart(s, title, w, h).Render(format.provider(), out)
	case chart.Pie:
		vals := slices(s)
		if len(vals) == 0 {
			return ErrEmptySeries
		}
		pc := gochart.PieChart{Title: title, Width: w, Height: h, Values: vals}
		err = pc.Render(format.provider(), out)
	case chart.Doughnut:
		vals := slices(s)
		if len(vals) == 0 {
			return ErrEmptySeries
		}
		dc := gochart.DonutChart{Title: title, Width: w, Height: h, Values: vals}
		err = dc.Render(format.provider(), out)
	case chart.Line, chart.Scatter:
		err = xyChart(s, title, w, h).Render(format.provider(), out)
	case chart.Radar:
		return fmt.Errorf("%s: %w", s.Kind, ErrUnsupportedKind)
	default:
		return &chart.ConfigError{Field: "chartType", Value: string(s.Kind), Err: chart.ErrUnknownKind}
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", s.Kind, err)
	}
	return nil
}

func barChart(s chart.Series, title string, w, h int) gochart.BarChart {
	labels := s.Labels()
	bars := make([]gochart.Value, len(s.Points))
	for i, p := range s.Points {
		bars[i] = gochart.Value{
			Label: labels[i],
			Value: p.Value,
			Style: gochart.Style{
				FillColor:   paletteColors[i%len(paletteColors)],
				StrokeColor: borderColor,
				StrokeWidth: 1,
			},
		}
	}
	lo, hi := yRange(s.Values())
	bw := (w - 120) / len(bars)
	if bw > 60 {
		bw = 60
	}
	if bw < 4 {
		bw = 4
	}
	return gochart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		BarWidth:   bw,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{TextRotationDegrees: rotation(len(bars))},
		YAxis: gochart.YAxis{
			Name:  s.YTitle,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
}

func slices(s chart.Series) []gochart.Value {
	labels := s.Labels()
	var vals []gochart.Value
	for i, p := range s.Points {
		if p.Value <= 0 {
			continue
		}
		vals = append(vals, gochart.Value{
			Label: labels[i],
			Value: p.Value,
			Style: gochart.Style{FillColor: paletteColors[len(vals)%len(paletteColors)]},
		})
	}
	return vals
}

// xyChart plots values against row ordinals and labels the ticks with the x cells.
func xyChart(s chart.Series, title string, w, h int) gochart.Chart {
	n := len(s.Points)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	style := gochart.Style{
		StrokeColor: paletteColors[0],
		StrokeWidth: 2,
	}
	switch {
	case s.Kind == chart.Scatter:
		style = gochart.Style{StrokeWidth: 0, StrokeColor: drawing.ColorTransparent, DotWidth: 4, DotColor: paletteColors[2]}
	case n == 1:
		style.DotWidth = 4
		style.DotColor = paletteColors[0]
	}
	labels := s.Labels()
	stride := 1
	if n > maxTicks {
		stride = (n + maxTicks - 1) / maxTicks
	}
	// go-chart derives the x range from the tick extremes; the blank end ticks
	// hold it at the padded ordinal range.
	ticks := make([]gochart.Tick, 0, n/stride+3)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i := 0; i < n; i += stride {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: labels[i]})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})
	lo, hi := yRange(s.Values())
	return gochart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  s.XTitle,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
			Style: gochart.Style{TextRotationDegrees: rotation(len(ticks) - 2)},
		},
		YAxis: gochart.YAxis{
			Name:  s.YTitle,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: s.YTitle, XValues: xs, YValues: s.Values(), Style: style},
		},
	}
}

// yRange starts at zero like the interactive charts and never collapses to a zero-width range.
func yRange(vals []float64) (lo, hi float64) {
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

func rotation(n int) float64 {
	if n > 8 {
		return 45
	}
	return 0
}
