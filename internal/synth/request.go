package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/fields"
)

const (
	// MaxRows caps the row count of a single generation.
	MaxRows = 100000
	// MaxColumns caps the numeric and the categorical column counts.
	MaxColumns = 20
	// MaxMissingRate caps the per-cell missing probability.
	MaxMissingRate = 0.5
)

// ErrInvalidRequest is matched by every RequestError.
var ErrInvalidRequest = errors.New("invalid generation request")

// RequestError lists every problem found in a Request.
type RequestError struct {
	Problems []string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRequest.Error(), strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match ErrInvalidRequest.
func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

// Request describes one dataset to generate.
type Request struct {
	Rows               int            `json:"rows" yaml:"rows"`
	NumericColumns     int            `json:"numeric_columns" yaml:"numeric_columns"`
	CategoricalColumns int            `json:"categorical_columns" yaml:"categorical_columns"`
	Fields             []fields.Kind  `json:"fields" yaml:"fields"`
	MissingRate        float64        `json:"missing_rate" yaml:"missing_rate"`
	Correlate          bool           `json:"correlate" yaml:"correlate"`
	Correlation        float64        `json:"correlation" yaml:"correlation"`
	Distributions      []Distribution `json:"distributions" yaml:"distributions"`
}

// DefaultRequest returns 1000 rows with name and email, three normal numeric
// columns correlated at 0.7, two categorical columns and 5% missing cells.
func DefaultRequest() Request {
	return Request{
		Rows:               1000,
		NumericColumns:     3,
		CategoricalColumns: 2,
		Fields:             []fields.Kind{fields.Name, fields.Email},
		MissingRate:        0.05,
		Correlate:          true,
		Correlation:        0.7,
	}
}

// Normalize fills an empty distribution list with Normal for every numeric column.
func (r *Request) Normalize() {
	if len(r.Distributions) == 0 && r.NumericColumns > 0 {
		r.Distributions = make([]Distribution, r.NumericColumns)
		for i := range r.Distributions {
			r.Distributions[i] = Normal
		}
	}
}

// Validate reports every bound violation at once. It does not modify r.
func (r Request) Validate() error {
	var problems []string
	if r.Rows < 1 || r.Rows > MaxRows {
		problems = append(problems, fmt.Sprintf("rows must be in [1, %d], got %d", MaxRows, r.Rows))
	}
	if r.NumericColumns < 0 || r.NumericColumns > MaxColumns {
		problems = append(problems, fmt.Sprintf("numeric columns must be in [0, %d], got %d", MaxColumns, r.NumericColumns))
	}
	if r.CategoricalColumns < 0 || r.CategoricalColumns > MaxColumns {
		problems = append(problems, fmt.Sprintf("categorical columns must be in [0, %d], got %d", MaxColumns, r.CategoricalColumns))
	}
	if !(r.MissingRate >= 0 && r.MissingRate <= MaxMissingRate) {
		problems = append(problems, fmt.Sprintf("missing rate must be in [0, %.1f], got %v", MaxMissingRate, r.MissingRate))
	}
	if !(r.Correlation >= -1 && r.Correlation <= 1) {
		problems = append(problems, fmt.Sprintf("correlation must be in [-1, 1], got %v", r.Correlation))
	}
	if len(r.Distributions) != 0 && len(r.Distributions) != r.NumericColumns {
		problems = append(problems, fmt.Sprintf("got %d distributions for %d numeric columns", len(r.Distributions), r.NumericColumns))
	}
	for i, d := range r.Distributions {
		if !d.valid() {
			problems = append(problems, fmt.Sprintf("distribution %d: unknown family %q", i+1, d))
		}
	}
	seen := map[fields.Kind]bool{}
	for _, k := range r.Fields {
		if pk, err := fields.ParseKind(string(k)); err != nil || pk != k {
			problems = append(problems, fmt.Sprintf("unknown field %q", k))
			continue
		}
		if seen[k] {
			problems = append(problems, fmt.Sprintf("field %q requested twice", k))
		}
		seen[k] = true
	}
	if len(problems) > 0 {
		return &RequestError{Problems: problems}
	}
	return nil
}

// ColumnCount is the width of the table this request produces.
func (r Request) ColumnCount() int {
	return len(r.Fields) + r.NumericColumns + r.CategoricalColumns
}

// correlates reports whether the numeric block goes through Induce.
func (r Request) correlates() bool {
	return r.Correlate && r.NumericColumns > 1
}
