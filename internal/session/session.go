package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/table"
)

// Options configures how a session analyzes tables and seeds charts.
type Options struct {
	Analysis    analysis.Options
	DefaultKind chart.Kind
}

// Session is one dashboard: the loaded table, its analysis and the chart configs.
// All methods are safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	opt Options

	mu     sync.RWMutex
	name   string
	tbl    table.Table
	res    *analysis.Result
	charts chart.Set
}

// View is a point-in-time copy of a session for display.
type View struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Created  time.Time        `json:"created"`
	Analysis *analysis.Result `json:"analysis"`
	Charts   []chart.Config   `json:"charts"`
}

// New returns an empty session. Load must be called before charts are useful.
func New(id string, opt Options) *Session {
	if !opt.DefaultKind.Valid() {
		opt.DefaultKind = chart.Bar
	}
	s := &Session{ID: id, Created: time.Now(), opt: opt}
	s.res = analysis.Analyze(nil, opt.Analysis)
	return s
}

// Load replaces the table, re-runs analysis and resets the charts to a single default.
func (s *Session) Load(name string, t table.Table) *analysis.Result {
	res := analysis.Analyze(t, s.opt.Analysis)
	res.Name = name
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.tbl = t
	s.res = res
	s.charts = chart.NewSet(chart.Defaults(res, s.opt.DefaultKind))
	return res
}

// Name returns the source name of the loaded table.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Table returns the loaded table. Callers must not modify it.
func (s *Session) Table() table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tbl
}

// Analysis returns the analysis of the loaded table.
func (s *Session) Analysis() *analysis.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res
}

// Charts returns a copy of the chart configs.
func (s *Session) Charts() []chart.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charts.Configs()
}

// AddChart appends a default chart and returns it.
func (s *Session) AddChart() chart.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := chart.Defaults(s.res, s.opt.DefaultKind)
	s.charts = s.charts.Add(cfg)
	return cfg
}

// UpdateChart applies p to chart i and returns the result.
func (s *Session) UpdateChart(i int, p chart.Patch) (chart.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.charts.Update(i, p)
	if err != nil {
		return chart.Config{}, err
	}
	s.charts = next
	return next.At(i)
}

// RemoveChart drops chart i.
func (s *Session) RemoveChart(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.charts.Remove(i)
	if err != nil {
		return err
	}
	s.charts = next
	return nil
}

// Series shapes chart i against the loaded table.
func (s *Session) Series(i int) (chart.Series, error) {
	s.mu.RLock()
	cfg, err := s.charts.At(i)
	tbl := s.tbl
	s.mu.RUnlock()
	if err != nil {
		return chart.Series{}, err
	}
	series, err := chart.Shape(tbl, cfg, s.opt.Analysis.Coercer)
	if err != nil {
		return chart.Series{}, fmt.Errorf("chart %d: %w", i, err)
	}
	return series, nil
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{ID: s.ID, Name: s.name, Created: s.Created, Analysis: s.res, Charts: s.charts.Configs()}
}
