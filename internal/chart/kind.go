package chart

import "strings"

// Kind is the chart kind tag handed to renderers.
type Kind string

const (
	Bar      Kind = "bar"
	Line     Kind = "line"
	Pie      Kind = "pie"
	Scatter  Kind = "scatter"
	Radar    Kind = "radar"
	Doughnut Kind = "doughnut"
)

// Kinds lists every supported kind in menu order.
var Kinds = []Kind{Bar, Line, Pie, Scatter, Radar, Doughnut}

// ParseKind resolves s case-insensitively. Unknown names are a *ConfigError.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &ConfigError{Field: "chartType", Value: s, Err: ErrUnknownKind}
	}
	return k, nil
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// Categorical reports whether the kind draws category/value axes.
func (k Kind) Categorical() bool { return k != Pie && k != Doughnut }

func (k Kind) String() string { return string(k) }
