package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/table"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// Coercer decides which cells count as numbers.
	Coercer table.Coercer
	// TopValues caps the most-frequent list kept for non-numeric columns.
	TopValues int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		TopValues:        8,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Column kinds reported in ColumnSummary.Kind.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindEmpty       = "empty"
)

// Result is the outcome of analyzing one uploaded table.
type Result struct {
	Name           string                   `json:"name,omitempty"`
	TotalRows      int                      `json:"totalRows"`
	Columns        []string                 `json:"columns"`
	NumericColumns []string                 `json:"numericColumns"`
	SummaryStats   map[string]ColumnSummary `json:"summaryStats"`
	Corr           *CorrMatrix              `json:"correlations,omitempty"`
	Samples        [][]string               `json:"samples,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred kind and descriptive statistics per column.
// Numeric metrics are nil when the column has no numeric values.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Count   int    `json:"count"`
	NonNull int    `json:"nonNull"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`

	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
	Sum    *float64 `json:"sum"`
	Q1     *float64 `json:"q1"`
	Q3     *float64 `json:"q3"`

	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliersCount,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliersMaxAbsZ,omitempty"`
	OutlierThreshold float64 `json:"outlierThreshold,omitempty"`

	TopValues []CategoryCount `json:"topValues,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// IsNumeric reports whether col is one of the result's numeric columns.
func (r *Result) IsNumeric(col string) bool {
	for _, c := range r.NumericColumns {
		if c == col {
			return true
		}
	}
	return false
}

// HasColumn reports whether col is in the column inventory.
func (r *Result) HasColumn(col string) bool {
	for _, c := range r.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Analyze derives the column inventory, numeric columns and per-column statistics of t.
// It never mutates t and is safe for concurrent use.
func Analyze(t table.Table, opt Options) *Result {
	cols := t.Columns()
	res := &Result{
		TotalRows:      len(t),
		Columns:        cols,
		NumericColumns: []string{},
		SummaryStats:   make(map[string]ColumnSummary, len(cols)),
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}

	numeric := make(map[string][]float64, len(cols))
	for _, col := range cols {
		s, nums := summarize(t, col, opt, topN)
		res.SummaryStats[col] = s
		if len(nums) > 0 {
			res.NumericColumns = append(res.NumericColumns, col)
			numeric[col] = nums
		}
	}

	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for i := 0; i < len(t) && i < sampleRows; i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = t[i].Get(col).String()
		}
		res.Samples = append(res.Samples, row)
	}

	if extra := countForeignRows(t, cols); extra > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d row(s) carry columns not present in the first row; those cells are ignored", extra))
	}

	if opt.Correlations && len(res.NumericColumns) >= 2 {
		res.Corr = correlations(t, res.NumericColumns, opt.Coercer)
	}
	return res
}

func summarize(t table.Table, col string, opt Options, topN int) (ColumnSummary, []float64) {
	s := ColumnSummary{Name: col}
	var nums []float64
	var dtCnt, txtCnt int
	cats := map[string]int{}
	distinct := map[string]struct{}{}

	for _, row := range t {
		v := row.Get(col)
		if isBlank(v) {
			s.Missing++
			continue
		}
		s.NonNull++
		distinct[v.String()] = struct{}{}
		if x, ok := opt.Coercer.ToNumber(v); ok {
			nums = append(nums, x)
			continue
		}
		if v.Kind() == table.KindDate {
			dtCnt++
			continue
		}
		txtCnt++
		if text := v.String(); len(text) <= 64 && len(cats) <= 10000 {
			cats[text]++
		}
	}
	s.Count = len(nums)
	s.Unique = len(distinct)

	numCnt := len(nums)
	switch {
	case s.NonNull == 0:
		s.Kind = KindEmpty
	case numCnt >= dtCnt && numCnt >= txtCnt && numCnt > 0:
		s.Kind = KindNumeric
	case dtCnt >= txtCnt && dtCnt > 0:
		s.Kind = KindDatetime
	case len(cats) > 0:
		s.Kind = KindCategorical
	default:
		s.Kind = KindText
	}

	data := stats.Float64Data(nums)
	s.Min = metric(data.Min)
	s.Max = metric(data.Max)
	s.Mean = metric(data.Mean)
	s.Median = metric(data.Median)
	s.Sum = metric(data.Sum)
	// Spread needs two values: a single value has a median but no std or quartiles.
	if len(nums) >= 2 {
		s.Std = metric(data.StandardDeviationSample)
		if q, err := stats.Quartile(data); err == nil {
			s.Q1 = defined(q.Q1)
			s.Q3 = defined(q.Q3)
		}
	}
	if opt.Outliers && len(nums) >= 8 {
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(data, thr)
		s.OutlierThreshold = thr
	}
	s.TopValues = topValues(cats, topN)
	return s, nums
}

// metric resolves an empty or undefined statistic to nil rather than a fabricated number.
func metric(f func() (float64, error)) *float64 {
	v, err := f()
	if err != nil {
		return nil
	}
	return defined(v)
}

func defined(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func isBlank(v table.Value) bool {
	if v.IsNull() {
		return true
	}
	if s, ok := v.Text(); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

func robustOutliers(data stats.Float64Data, thr float64) (count int, maxAbsZ float64) {
	median, err := data.Median()
	if err != nil {
		return 0, 0
	}
	mad, err := data.MedianAbsoluteDeviationPopulation()
	if err != nil || mad == 0 {
		return 0, 0
	}
	for _, v := range data {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

func topValues(cats map[string]int, n int) []CategoryCount {
	if len(cats) == 0 {
		return nil
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// correlations uses pairwise-complete rows for every pair of numeric columns.
func correlations(t table.Table, names []string, c table.Coercer) *CorrMatrix {
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys []float64
			for _, row := range t {
				x, okx := c.ToNumber(row.Get(names[a]))
				y, oky := c.ToNumber(row.Get(names[b]))
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	cols := make([]string, n)
	copy(cols, names)
	return &CorrMatrix{Columns: cols, Values: mat}
}

func countForeignRows(t table.Table, cols []string) int {
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}
	n := 0
	for _, row := range t {
		for _, k := range row.Keys() {
			if _, ok := known[k]; !ok {
				n++
				break
			}
		}
	}
	return n
}
