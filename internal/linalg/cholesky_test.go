package linalg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformCorrelationShape(t *testing.T) {
	m, err := UniformCorrelation(3, 0.4)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := m.at(i, j)
			require.NoError(t, err)
			if i == j {
				require.Equal(t, 1.0, v)
			} else {
				require.Equal(t, 0.4, v)
			}
		}
	}
	_, err = UniformCorrelation(0, 0.4)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestCholeskyReconstructs(t *testing.T) {
	for _, tc := range []struct {
		n int
		r float64
	}{
		{2, 0.7}, {2, -0.7}, {3, 0.9}, {5, 0.3}, {4, -0.3}, {20, 0.5},
	} {
		t.Run(fmt.Sprintf("n=%d,r=%.1f", tc.n, tc.r), func(t *testing.T) {
			m, err := UniformCorrelation(tc.n, tc.r)
			require.NoError(t, err)
			l, err := Cholesky(m)
			require.NoError(t, err)
			back := l.MulTranspose()
			d, err := back.MaxAbsDiff(m)
			require.NoError(t, err)
			require.Less(t, d, 1e-9)
			for i := 0; i < tc.n; i++ {
				for j := 0; j < tc.n; j++ {
					want, _ := m.at(i, j)
					got, _ := back.at(i, j)
					require.InDelta(t, want, got, 1e-9)
					if j > i {
						upper, _ := l.at(i, j)
						require.Zero(t, upper, "factor must be lower triangular")
					}
				}
			}
		})
	}
}

func TestCholeskyRejectsInfeasible(t *testing.T) {
	for _, tc := range []struct {
		n int
		r float64
	}{
		{4, -0.9}, {3, -0.5}, {3, 1}, {3, -1}, {2, 1},
	} {
		m, err := UniformCorrelation(tc.n, tc.r)
		require.NoError(t, err)
		_, err = Cholesky(m)
		require.ErrorIs(t, err, ErrNotPositiveDefinite, "n=%d r=%v", tc.n, tc.r)
	}
}

func TestCholeskyValidatesInput(t *testing.T) {
	rect, err := NewDense(2, 3)
	require.NoError(t, err)
	_, err = Cholesky(rect)
	require.ErrorIs(t, err, ErrNonSquare)

	asym, err := Identity(2)
	require.NoError(t, err)
	require.NoError(t, asym.set(0, 1, 0.5))
	_, err = Cholesky(asym)
	require.ErrorIs(t, err, ErrAsymmetry)
}

func TestApplyRowTransposed(t *testing.T) {
	m, err := NewDense(2, 2)
	require.NoError(t, err)
	require.NoError(t, m.set(0, 0, 1))
	require.NoError(t, m.set(1, 0, 2))
	require.NoError(t, m.set(1, 1, 3))
	out := make([]float64, 2)
	require.NoError(t, m.ApplyRowTransposed([]float64{1, 1}, out))
	require.Equal(t, []float64{1, 5}, out)
	require.ErrorIs(t, m.ApplyRowTransposed([]float64{1}, out), ErrDimensionMismatch)
}

func TestMaxAbsDiff(t *testing.T) {
	a, err := Identity(2)
	require.NoError(t, err)
	b, err := Identity(2)
	require.NoError(t, err)
	require.NoError(t, b.set(1, 0, -0.25))
	d, err := a.MaxAbsDiff(b)
	require.NoError(t, err)
	require.Equal(t, 0.25, d)

	rect, err := NewDense(2, 3)
	require.NoError(t, err)
	_, err = a.MaxAbsDiff(rect)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = a.at(2, 0)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}
