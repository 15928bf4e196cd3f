package table

import (
	"math"
	"strconv"
	"strings"
)

// Coercer converts cell values to numbers.
//
// The zero Coercer applies the standard decimal parse. Setting DecimalSeparator
// and/or ThousandsSeparator rewrites localized text ("1.234,5") before parsing.
type Coercer struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// ToNumber coerces v to a finite float64. The boolean is false when coercion fails:
// Null, Date, unparsable text and non-finite results all fail.
func (c Coercer) ToNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.f, finite(v.f)
	case KindString:
		return c.parse(v.s)
	default:
		return 0, false
	}
}

// IsNumeric is shorthand for a successful ToNumber.
func (c Coercer) IsNumeric(v Value) bool {
	_, ok := c.ToNumber(v)
	return ok
}

func (c Coercer) parse(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	dec, thou := c.DecimalSeparator, c.ThousandsSeparator
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != 0 && dec != '.' {
		if strings.ContainsRune(raw, '.') && thou != '.' {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
