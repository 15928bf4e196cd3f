package chart

import (
	"fmt"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/google/uuid"
)

// Config selects the columns and kind of one chart. An empty axis means not selected.
type Config struct {
	ID    string `json:"id"`
	XAxis string `json:"xAxis"`
	YAxis string `json:"yAxis"`
	Kind  Kind   `json:"chartType"`
}

// Patch carries a partial update; nil fields are left alone.
type Patch struct {
	XAxis *string `json:"xAxis,omitempty"`
	YAxis *string `json:"yAxis,omitempty"`
	Kind  *string `json:"chartType,omitempty"`
}

// Apply merges p into c. An unknown kind is rejected and c is returned unchanged.
func (p Patch) Apply(c Config) (Config, error) {
	if p.Kind != nil {
		k, err := ParseKind(*p.Kind)
		if err != nil {
			return c, err
		}
		c.Kind = k
	}
	if p.XAxis != nil {
		c.XAxis = *p.XAxis
	}
	if p.YAxis != nil {
		c.YAxis = *p.YAxis
	}
	return c, nil
}

// Defaults builds the config a new chart starts with: the first column as x,
// the first numeric column as y, and kind (bar when empty or invalid).
func Defaults(res *analysis.Result, kind Kind) Config {
	if !kind.Valid() {
		kind = Bar
	}
	c := Config{ID: uuid.NewString(), Kind: kind}
	if res != nil {
		if len(res.Columns) > 0 {
			c.XAxis = res.Columns[0]
		}
		if len(res.NumericColumns) > 0 {
			c.YAxis = res.NumericColumns[0]
		}
	}
	return c
}

// Set is an ordered collection of chart configs. Every mutation returns a new
// Set; the receiver is never modified, so a Set can be shared freely.
type Set struct {
	configs []Config
}

// NewSet returns a Set holding copies of cfgs.
func NewSet(cfgs ...Config) Set {
	return Set{configs: append([]Config(nil), cfgs...)}
}

// Len returns the number of configs.
func (s Set) Len() int { return len(s.configs) }

// Configs returns a copy of the configs in order.
func (s Set) Configs() []Config {
	out := make([]Config, len(s.configs))
	copy(out, s.configs)
	return out
}

// At returns the config at index i.
func (s Set) At(i int) (Config, error) {
	if err := s.check(i); err != nil {
		return Config{}, err
	}
	return s.configs[i], nil
}

// Add appends cfg, assigning an ID when it has none.
func (s Set) Add(cfg Config) Set {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	out := make([]Config, len(s.configs), len(s.configs)+1)
	copy(out, s.configs)
	return Set{configs: append(out, cfg)}
}

// Update applies p to the config at index i.
func (s Set) Update(i int, p Patch) (Set, error) {
	if err := s.check(i); err != nil {
		return s, err
	}
	next, err := p.Apply(s.configs[i])
	if err != nil {
		return s, err
	}
	out := s.Configs()
	out[i] = next
	return Set{configs: out}, nil
}

// Remove drops the config at index i; later configs shift down by one.
func (s Set) Remove(i int) (Set, error) {
	if err := s.check(i); err != nil {
		return s, err
	}
	out := make([]Config, 0, len(s.configs)-1)
	out = append(out, s.configs[:i]...)
	out = append(out, s.configs[i+1:]...)
	return Set{configs: out}, nil
}

func (s Set) check(i int) error {
	if i < 0 || i >= len(s.configs) {
		return fmt.Errorf("index %d of %d: %w", i, len(s.configs), ErrIndexOutOfRange)
	}
	return nil
}
