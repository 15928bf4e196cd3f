package chart

import (
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
)

// Point is one labelled value. Label is the x cell exactly as decoded.
type Point struct {
	Label table.Value `json:"label"`
	Value float64     `json:"value"`
}

// Series is the shaped data for one chart.
type Series struct {
	Kind   Kind    `json:"kind"`
	XTitle string  `json:"xTitle"`
	YTitle string  `json:"yTitle"`
	Points []Point `json:"points"`
}

// Labels returns the display text of every point label.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label.String()
	}
	return out
}

// Values returns the y values in point order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Categorical reports whether the series is drawn on category/value axes.
func (s Series) Categorical() bool { return s.Kind.Categorical() }

// Validate checks that cfg can be shaped: both axes selected and a known kind.
func Validate(cfg Config) error {
	if !cfg.Kind.Valid() {
		return &ConfigError{Field: "chartType", Value: string(cfg.Kind), Err: ErrUnknownKind}
	}
	if cfg.XAxis == "" {
		return &ConfigError{Field: "xAxis", Err: ErrAxisNotSelected}
	}
	if cfg.YAxis == "" {
		return &ConfigError{Field: "yAxis", Err: ErrAxisNotSelected}
	}
	return nil
}

// Shape builds the series for cfg over t. Rows whose y cell does not coerce to a
// number are dropped; the rest keep their order. Columns absent from t simply
// produce fewer (or no) points.
func Shape(t table.Table, cfg Config, c table.Coercer) (Series, error) {
	if err := Validate(cfg); err != nil {
		return Series{}, err
	}
	s := Series{Kind: cfg.Kind, XTitle: cfg.XAxis, YTitle: cfg.YAxis, Points: []Point{}}
	for _, row := range t {
		y, ok := c.ToNumber(row.Get(cfg.YAxis))
		if !ok {
			continue
		}
		s.Points = append(s.Points, Point{Label: row.Get(cfg.XAxis), Value: y})
	}
	return s, nil
}
