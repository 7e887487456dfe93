package linalg

import (
	"fmt"
	"math"
)

// pivotFloor is the smallest diagonal pivot accepted by Cholesky. Pivots at or
// below it mean the input is indefinite or numerically rank-deficient.
const pivotFloor = 1e-12

// symmetryEps bounds |a[i][j]-a[j][i]| for inputs to Cholesky.
const symmetryEps = 1e-12

// UniformCorrelation builds an n×n correlation matrix with ones on the
// diagonal and r in every off-diagonal cell.
func UniformCorrelation(n int, r float64) (*Dense, error) {
	m, err := Identity(n)
	if err != nil {
		return nil, fmt.Errorf("UniformCorrelation: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.data[i*n+j] = r
			}
		}
	}
	return m, nil
}

// Cholesky returns the lower-triangular factor L with L·Lᵀ = a.
//
// The decomposition is the plain Cholesky–Banachiewicz recurrence with no
// pivoting, so results are deterministic for a given input. It fails with
// ErrNotPositiveDefinite as soon as a diagonal pivot is not strictly positive,
// which covers both indefinite matrices and singular PSD matrices such as a
// uniform correlation of exactly ±1.
//
// Errors:
//   - ErrNonSquare, ErrAsymmetry for malformed input.
//   - ErrNotPositiveDefinite when factorization is infeasible.
//
// Complexity: O(n³) time, O(n²) space.
func Cholesky(a *Dense) (*Dense, error) {
	if a.r != a.c {
		return nil, fmt.Errorf("Cholesky: %w", ErrNonSquare)
	}
	n := a.r
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(a.data[i*n+j]-a.data[j*n+i]) > symmetryEps {
				return nil, fmt.Errorf("Cholesky: %w at (%d,%d)", ErrAsymmetry, i, j)
			}
		}
	}

	l := &Dense{r: n, c: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a.data[i*n+j]
			for k := 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if sum <= pivotFloor || math.IsNaN(sum) {
					return nil, fmt.Errorf("Cholesky: %w (pivot %d = %.3g)", ErrNotPositiveDefinite, i, sum)
				}
				l.data[i*n+i] = math.Sqrt(sum)
				continue
			}
			l.data[i*n+j] = sum / l.data[j*n+j]
		}
	}
	return l, nil
}
