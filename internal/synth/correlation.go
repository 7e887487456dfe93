package synth

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/synthtab-cli/internal/linalg"
)

// ErrCorrelationInfeasible means the requested uniform correlation matrix has
// no Cholesky factor (not positive definite), so columns were left as drawn.
var ErrCorrelationInfeasible = errors.New("correlation matrix is not positive definite")

// CorrelationStatus records what happened to the numeric block.
type CorrelationStatus string

const (
	CorrelationOff        CorrelationStatus = "off"
	CorrelationApplied    CorrelationStatus = "applied"
	CorrelationInfeasible CorrelationStatus = "infeasible"
)

// factorTolerance bounds max|C·Cᵀ - M| for an accepted factor.
const factorTolerance = 1e-9

// Induction is the outcome of Induce. Columns is always usable: either the
// correlated output or the untouched input. Err is non-nil whenever the
// input was returned untouched for n > 1. It wraps ErrCorrelationInfeasible
// when the matrix has no usable factor and linalg.ErrDimensionMismatch for
// ragged columns.
type Induction struct {
	Columns [][]float64
	Applied bool
	Err     error
}

// Status maps the induction outcome to a CorrelationStatus.
func (in Induction) Status() CorrelationStatus {
	switch {
	case in.Applied:
		return CorrelationApplied
	case errors.Is(in.Err, ErrCorrelationInfeasible):
		return CorrelationInfeasible
	default:
		return CorrelationOff
	}
}

// Induce mixes n equal-length independent columns so that every pair has
// correlation r. With M the uniform correlation matrix and C its lower
// Cholesky factor, each output row is x·Cᵀ. The result is exact in
// expectation only for standard Gaussian inputs.
//
// n <= 1 is a no-op. The input slices are never modified.
func Induce(columns [][]float64, r float64) Induction {
	n := len(columns)
	if n <= 1 {
		return Induction{Columns: columns}
	}
	rows := len(columns[0])
	for i, c := range columns {
		if len(c) != rows {
			return Induction{Columns: columns, Err: fmt.Errorf("%w: column %d has %d rows, want %d", linalg.ErrDimensionMismatch, i, len(c), rows)}
		}
	}

	m, err := linalg.UniformCorrelation(n, r)
	if err != nil {
		return Induction{Columns: columns, Err: fmt.Errorf("%w: %w", ErrCorrelationInfeasible, err)}
	}
	chol, err := linalg.Cholesky(m)
	if err != nil {
		return Induction{Columns: columns, Err: fmt.Errorf("%w: %w", ErrCorrelationInfeasible, err)}
	}
	if d, err := chol.MulTranspose().MaxAbsDiff(m); err != nil || d > factorTolerance {
		return Induction{Columns: columns, Err: fmt.Errorf("%w: factor reconstructs with error %.3g", ErrCorrelationInfeasible, d)}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, rows)
	}
	x := make([]float64, n)
	y := make([]float64, n)
	for row := 0; row < rows; row++ {
		for k := 0; k < n; k++ {
			x[k] = columns[k][row]
		}
		if err := chol.ApplyRowTransposed(x, y); err != nil {
			return Induction{Columns: columns, Err: err}
		}
		for i := 0; i < n; i++ {
			out[i][row] = y[i]
		}
	}
	return Induction{Columns: out, Applied: true}
}
