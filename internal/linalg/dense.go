// Package linalg holds the small dense-matrix kernels used by the synthesis
// pipeline: a row-major Dense type, a uniform correlation-matrix builder and a
// Cholesky factorization with an explicit feasibility result.
//
// Matrices here are tiny (one row/column per numeric output column); the
// kernels are unblocked and unpivoted.
package linalg

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("linalg: dimensions must be > 0")

	// ErrIndexOutOfBounds indicates that a row or column index is outside valid range.
	ErrIndexOutOfBounds = errors.New("linalg: index out of bounds")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("linalg: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric is not.
	ErrAsymmetry = errors.New("linalg: matrix is not symmetric within eps")

	// ErrNotPositiveDefinite is returned by Cholesky when a pivot is not
	// strictly positive (indefinite or rank-deficient input).
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

	// ErrDimensionMismatch indicates incompatible operand shapes.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")
)

// Dense is a row-major matrix of float64 values.
type Dense struct {
	r, c int
	data []float64
}

// NewDense creates an r×c Dense matrix initialized to zeros.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, ErrIndexOutOfBounds)
	}
	return row*m.c + col, nil
}

// at returns the element at (row, col).
func (m *Dense) at(row, col int) (float64, error) {
	idx, err := m.indexOf("at", row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// set assigns v at (row, col).
func (m *Dense) set(row, col int, v float64) error {
	idx, err := m.indexOf("set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// MulTranspose returns m·mᵀ.
func (m *Dense) MulTranspose() *Dense {
	out := &Dense{r: m.r, c: m.r, data: make([]float64, m.r*m.r)}
	for i := 0; i < m.r; i++ {
		for j := 0; j < m.r; j++ {
			var sum float64
			for k := 0; k < m.c; k++ {
				sum += m.data[i*m.c+k] * m.data[j*m.c+k]
			}
			out.data[i*m.r+j] = sum
		}
	}
	return out
}

// MaxAbsDiff returns the largest elementwise |m - o|.
func (m *Dense) MaxAbsDiff(o *Dense) (float64, error) {
	if m.r != o.r || m.c != o.c {
		return 0, fmt.Errorf("MaxAbsDiff: %w: %dx%d vs %dx%d", ErrDimensionMismatch, m.r, m.c, o.r, o.c)
	}
	var d float64
	for i, v := range m.data {
		if a := math.Abs(v - o.data[i]); a > d || math.IsNaN(a) {
			d = a
		}
	}
	return d, nil
}

// ApplyRowTransposed computes out = x·mᵀ for a single row vector x, i.e.
// out[i] = Σ_k m[i][k]·x[k]. len(x) and len(out) must equal m.Cols() and m.Rows().
func (m *Dense) ApplyRowTransposed(x, out []float64) error {
	if len(x) != m.c || len(out) != m.r {
		return fmt.Errorf("ApplyRowTransposed: %w: x=%d out=%d matrix=%dx%d", ErrDimensionMismatch, len(x), len(out), m.r, m.c)
	}
	for i := 0; i < m.r; i++ {
		var sum float64
		base := i * m.c
		for k := 0; k < m.c; k++ {
			sum += m.data[base+k] * x[k]
		}
		out[i] = sum
	}
	return nil
}
