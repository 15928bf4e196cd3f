package render

import (
	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
)

// Palette is the dataset background colour cycle.
var Palette = []string{
	"rgba(75, 192, 192, 0.6)",
	"rgba(255, 99, 132, 0.6)",
	"rgba(54, 162, 235, 0.6)",
	"rgba(255, 206, 86, 0.6)",
	"rgba(153, 102, 255, 0.6)",
}

// ChartJSConfig is a Chart.js configuration object ready to hand to `new Chart(ctx, cfg)`.
type ChartJSConfig struct {
	Type    string         `json:"type"`
	Data    ChartJSData    `json:"data"`
	Options ChartJSOptions `json:"options"`
}

type ChartJSData struct {
	Labels   []any            `json:"labels"`
	Datasets []ChartJSDataset `json:"datasets"`
}

type ChartJSDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

type ChartJSOptions struct {
	Responsive          bool                    `json:"responsive"`
	MaintainAspectRatio bool                    `json:"maintainAspectRatio"`
	Scales              map[string]ChartJSScale `json:"scales"`
}

type ChartJSScale struct {
	Type        string       `json:"type,omitempty"`
	BeginAtZero bool         `json:"beginAtZero,omitempty"`
	Title       ChartJSTitle `json:"title"`
}

type ChartJSTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// ChartJS converts a shaped series into a Chart.js config. Pie and doughnut
// charts get no scales; every other kind gets a category x axis and a y axis from zero.
func ChartJS(s chart.Series) ChartJSConfig {
	cfg := ChartJSConfig{
		Type: string(s.Kind),
		Data: ChartJSData{
			Labels: rawLabels(s),
			Datasets: []ChartJSDataset{{
				Label:           s.YTitle,
				Data:            s.Values(),
				BackgroundColor: append([]string(nil), Palette...),
				BorderColor:     "rgba(0,0,0,0.1)",
				BorderWidth:     1,
			}},
		},
		Options: ChartJSOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales:              map[string]ChartJSScale{},
		},
	}
	if s.Categorical() {
		cfg.Options.Scales["x"] = ChartJSScale{Type: "category", Title: ChartJSTitle{Display: true, Text: s.XTitle}}
		cfg.Options.Scales["y"] = ChartJSScale{BeginAtZero: true, Title: ChartJSTitle{Display: true, Text: s.YTitle}}
	}
	return cfg
}
