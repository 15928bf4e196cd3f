package render

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/vmihailenco/msgpack/v5"
)

// Payload is the wire form of a series: parallel labels and values plus the
// kind tag and axis titles a renderer needs.
type Payload struct {
	Kind   string    `json:"kind" msgpack:"kind"`
	XTitle string    `json:"xTitle" msgpack:"xTitle"`
	YTitle string    `json:"yTitle" msgpack:"yTitle"`
	Labels []any     `json:"labels" msgpack:"labels"`
	Values []float64 `json:"values" msgpack:"values"`
}

// NewPayload flattens s into its wire form.
func NewPayload(s chart.Series) Payload {
	return Payload{
		Kind:   string(s.Kind),
		XTitle: s.XTitle,
		YTitle: s.YTitle,
		Labels: rawLabels(s),
		Values: s.Values(),
	}
}

// JSON encodes s as a Payload.
func JSON(s chart.Series) ([]byte, error) {
	b, err := json.Marshal(NewPayload(s))
	if err != nil {
		return nil, fmt.Errorf("encode series json: %w", err)
	}
	return b, nil
}

// Msgpack encodes s as a Payload.
func Msgpack(s chart.Series) ([]byte, error) {
	b, err := msgpack.Marshal(NewPayload(s))
	if err != nil {
		return nil, fmt.Errorf("encode series msgpack: %w", err)
	}
	return b, nil
}

// DecodeMsgpack reads a Payload written by Msgpack.
func DecodeMsgpack(b []byte) (Payload, error) {
	var p Payload
	if err := msgpack.Unmarshal(b, &p); err != nil {
		return Payload{}, fmt.Errorf("decode series msgpack: %w", err)
	}
	return p, nil
}

// rawLabels keeps each label's type: null, number or text. Dates become their display text.
func rawLabels(s chart.Series) []any {
	out := make([]any, len(s.Points))
	for i, p := range s.Points {
		switch p.Label.Kind() {
		case table.KindNull:
			out[i] = nil
		case table.KindNumber:
			if f, _ := p.Label.Float(); !math.IsNaN(f) && !math.IsInf(f, 0) {
				out[i] = f
			}
		default:
			out[i] = p.Label.String()
		}
	}
	return out
}
