// Package analysis summarizes tables: per-column kinds, missing counts and
// statistics, a Pearson correlation matrix and a preview of leading rows.
package analysis

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
	"github.com/KaramelBytes/synthtab-cli/internal/export"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// SampleRows is how many leading rows the report previews.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// CategoricalMax is the largest distinct-value count still treated as categorical.
	CategoricalMax int
	// TopValues caps the frequency list reported per categorical column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// Delimiter for delimited text files. If 0, it is chosen from the file extension.
	Delimiter rune
	// Sheet selects the XLSX worksheet; empty means the first one.
	Sheet string
}

// DefaultOptions previews 20 rows and includes the correlation matrix.
func DefaultOptions() Options {
	return Options{
		SampleRows:       20,
		Correlations:     true,
		CategoricalMax:   20,
		TopValues:        8,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name     string
	Rows     int
	Missing  int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical|text|empty
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// AnalyzeFile loads a CSV, TSV or XLSX file and analyzes it.
func AnalyzeFile(path string, opt Options) (*Report, error) {
	var (
		t   *dataset.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		t, err = export.ReadXLSXFile(path, opt.Sheet)
	case ".csv", ".tsv", ".txt":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		defer f.Close()
		delim := opt.Delimiter
		if delim == 0 {
			delim = sniffDelimiter(path)
		}
		t, err = export.ReadDelimited(f, delim)
	default:
		return nil, fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	rep := AnalyzeTable(t, opt)
	rep.Name = filepath.Base(path)
	return rep, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// pairAcc accumulates pairwise-complete sums for one column pair.
type pairAcc struct {
	n, sumX, sumY, sumXX, sumYY, sumXY float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

// r returns the Pearson coefficient, or NaN when it is undefined.
func (p *pairAcc) r() float64 {
	if p.n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	return math.Max(-1, math.Min(1, r))
}

// AnalyzeTable summarizes every column of t, previews its first rows and,
// when enabled, computes pairwise-complete correlations of numeric columns.
func AnalyzeTable(t *dataset.Table, opt Options) *Report {
	rep := &Report{Rows: t.Rows, Missing: t.MissingCount()}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	head := t.Head(sampleRows)
	for i := 0; i < head.Rows; i++ {
		rep.Samples = append(rep.Samples, head.Record(i))
	}

	var numeric []int
	for j := range t.Columns {
		c := &t.Columns[j]
		var s ColumnSummary
		if c.Kind == dataset.KindNumeric {
			s = summarizeNumeric(c, opt)
			if s.NonNull > 0 {
				numeric = append(numeric, j)
			}
		} else {
			s = summarizeText(c, opt)
		}
		rep.Cols = append(rep.Cols, s)
	}

	if opt.Correlations && len(numeric) >= 2 {
		rep.Corr = correlate(t, numeric)
		for a := range rep.Corr.Columns {
			for b := a + 1; b < len(rep.Corr.Columns); b++ {
				if math.IsNaN(rep.Corr.Values[a][b]) {
					rep.Warnings = append(rep.Warnings, fmt.Sprintf("correlation of %s and %s is undefined (constant or too few paired values)",
						rep.Corr.Columns[a], rep.Corr.Columns[b]))
				}
			}
		}
	}
	if t.Rows > len(rep.Samples) && len(rep.Samples) > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("showing first %d of %d rows", len(rep.Samples), t.Rows))
	}
	return rep
}

func summarizeNumeric(c *dataset.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: "numeric", Min: math.Inf(1), Max: math.Inf(-1)}
	var mean, m2 float64
	distinct := map[float64]struct{}{}
	vals := make([]float64, 0, len(c.Numbers))
	for i, x := range c.Numbers {
		if c.IsNull(i) || math.IsNaN(x) {
			s.Missing++
			continue
		}
		s.NonNull++
		distinct[x] = struct{}{}
		vals = append(vals, x)
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
		delta := x - mean
		mean += delta / float64(s.NonNull)
		m2 += delta * (x - mean)
	}
	s.Unique = len(distinct)
	if s.NonNull == 0 {
		s.Kind = "empty"
		s.Min, s.Max = 0, 0
		return s
	}
	s.Mean = mean
	if s.NonNull > 1 {
		s.Std = math.Sqrt(m2 / float64(s.NonNull-1))
	}
	if opt.Outliers && len(vals) >= 8 {
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		s.OutlierThreshold = thr
		median, mad := medianMAD(vals)
		if mad > 0 {
			for _, v := range vals {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					s.OutliersCount++
				}
				s.OutliersMaxAbsZ = math.Max(s.OutliersMaxAbsZ, az)
			}
		}
	}
	return s
}

func summarizeText(c *dataset.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name}
	cats := map[string]int{}
	for i, v := range c.Text {
		if c.IsNull(i) {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v]++
		if len(s.ExampleTexts) < 3 {
			s.ExampleTexts = append(s.ExampleTexts, v)
		}
	}
	s.Unique = len(cats)
	catMax := opt.CategoricalMax
	if catMax <= 0 {
		catMax = 20
	}
	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case s.Unique <= catMax && s.Unique < s.NonNull:
		s.Kind = "categorical"
		s.ExampleTexts = nil
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
		limit := opt.TopValues
		if limit <= 0 {
			limit = 8
		}
		if len(tops) > limit {
			tops = tops[:limit]
		}
		s.TopValues = tops
	default:
		s.Kind = "text"
	}
	return s
}

func correlate(t *dataset.Table, idx []int) *CorrMatrix {
	n := len(idx)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for a, j := range idx {
		m.Columns[a] = t.Columns[j].Name
		m.Values[a] = make([]float64, n)
		m.Values[a][a] = 1
	}
	for a := 0; a < n; a++ {
		ca := &t.Columns[idx[a]]
		for b := a + 1; b < n; b++ {
			cb := &t.Columns[idx[b]]
			var p pairAcc
			for i := 0; i < t.Rows; i++ {
				if ca.IsNull(i) || cb.IsNull(i) {
					continue
				}
				x, y := ca.Numbers[i], cb.Numbers[i]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				p.add(x, y)
			}
			r := p.r()
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
