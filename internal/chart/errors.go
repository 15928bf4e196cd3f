package chart

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind     = errors.New("unknown chart type")
	ErrAxisNotSelected = errors.New("axis not selected")
	ErrIndexOutOfRange = errors.New("chart index out of range")
)

// ConfigError is a chart configuration rejected before any shaping or rendering.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
