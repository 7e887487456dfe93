// Package synth builds synthetic tables: personal-information text columns,
// numeric columns from fixed distributions with optional uniform pairwise
// correlation, categorical columns, and injected missing cells.
package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
	"github.com/KaramelBytes/synthtab-cli/internal/fields"
	"github.com/google/uuid"
)

// Reporter receives non-fatal conditions while a table is generated.
type Reporter interface {
	Warn(msg string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(string)

func (f ReporterFunc) Warn(msg string) { f(msg) }

// Summary holds the counts shown after generation.
type Summary struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Missing int `json:"missing"`
}

// Result is one generated dataset plus what happened while building it.
type Result struct {
	ID          string            `json:"id"`
	Seed        uint64            `json:"seed"`
	CreatedAt   time.Time         `json:"created_at"`
	Request     Request           `json:"request"`
	Summary     Summary           `json:"summary"`
	Correlation CorrelationStatus `json:"correlation"`
	Warnings    []string          `json:"warnings,omitempty"`
	Table       *dataset.Table    `json:"-"`
}

// Generator assembles tables. The zero value is usable: it draws a fresh seed
// per call and uses the built-in Faker for personal-information fields.
type Generator struct {
	// Seed makes output reproducible when non-zero.
	Seed uint64
	// Fields overrides the personal-information value source.
	Fields fields.Source
	// Reporter, if set, is told about every warning as it happens.
	Reporter Reporter
}

// Generate validates req and builds the table. Invalid requests fail before
// any work is done; correlation infeasibility only adds a warning.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	streams := NewStreams(g.Seed)
	res := &Result{
		ID:          uuid.NewString(),
		Seed:        streams.Seed(),
		CreatedAt:   time.Now(),
		Request:     req,
		Correlation: CorrelationOff,
	}
	tbl := dataset.New(req.Rows)

	// Personal-information fields, in request order.
	src := g.Fields
	if src == nil {
		src = fields.NewFaker(streams.For("fields"))
	}
	for _, k := range req.Fields {
		if err := tbl.Append(dataset.NewTextColumn(string(k), fields.Column(src, k, req.Rows))); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Numeric block: all columns are drawn before correlation is induced.
	numeric := make([][]float64, req.NumericColumns)
	for i, d := range req.Distributions {
		numeric[i] = Sample(streams.For(numericName(i)), d, req.Rows)
	}
	if req.correlates() {
		in := Induce(numeric, req.Correlation)
		res.Correlation = in.Status()
		if in.Err != nil {
			g.warn(res, fmt.Sprintf("could not apply correlation %.2f across %d numeric columns; generated uncorrelated data (%v)",
				req.Correlation, req.NumericColumns, in.Err))
		}
		numeric = in.Columns
	}
	for i, col := range numeric {
		if err := tbl.Append(dataset.NewNumericColumn(numericName(i), col)); err != nil {
			return nil, fmt.Errorf("numeric column %d: %w", i+1, err)
		}
	}

	for i := 0; i < req.CategoricalColumns; i++ {
		name := fmt.Sprintf("category_%d", i+1)
		if err := tbl.Append(dataset.NewTextColumn(name, SampleLabels(streams.For(name), DefaultLabels, req.Rows))); err != nil {
			return nil, fmt.Errorf("categorical column %d: %w", i+1, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	InjectMissing(streams.For("missing"), tbl, req.MissingRate)

	res.Table = tbl
	res.Summary = Summarize(tbl)
	return res, nil
}

func (g *Generator) warn(res *Result, msg string) {
	res.Warnings = append(res.Warnings, msg)
	if g.Reporter != nil {
		g.Reporter.Warn(msg)
	}
}

// Summarize counts rows, columns and missing cells of t.
func Summarize(t *dataset.Table) Summary {
	rows, cols := t.Shape()
	return Summary{Rows: rows, Columns: cols, Missing: t.MissingCount()}
}

func numericName(i int) string {
	return fmt.Sprintf("numeric_%d", i+1)
}
