package table

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single spreadsheet cell as handed over by a decoder.
// The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	f    float64
	t    time.Time
}

// Null returns the absent-cell value.
func Null() Value { return Value{} }

// String wraps text exactly as the decoder produced it.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps an already numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, f: f} }

// Date wraps a cell the decoder resolved to a calendar date.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the raw string of a String value.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindString }

// Float returns the payload of a Number value.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindNumber }

// Time returns the payload of a Date value.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDate }

// String renders the value for display, e.g. as a chart label.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal reports whether two values carry the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// MarshalJSON encodes Null as null, numbers as JSON numbers and dates as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindNumber:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindDate:
		return json.Marshal(v.t.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}
