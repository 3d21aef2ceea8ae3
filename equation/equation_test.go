package equation

import (
	"errors"
	"testing"

	"github.com/finitevolume/ibflow/ibrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveDiagonalSystemConvergesToExactAnswer(t *testing.T) {
	eq := New(3)
	eq.Add(0, 0, 2)
	eq.AddSource(0, 4) // x0 = 2
	eq.Add(1, 1, 4)
	eq.AddSource(1, 8) // x1 = 2
	eq.Add(2, 2, 1)
	eq.AddSource(2, -3) // x2 = -3

	x := make([]float64, 3)
	iters, resid, err := eq.Solve(x, 1.0, 1e-10, 100)
	require.NoError(t, err)
	assert.Less(t, iters, 5)
	assert.Less(t, resid, 1e-8)
	assert.InDelta(t, 2, x[0], 1e-8)
	assert.InDelta(t, 2, x[1], 1e-8)
	assert.InDelta(t, -3, x[2], 1e-8)
}

func TestSolveTridiagonalPoissonLike(t *testing.T) {
	// -x_{i-1} + 2x_i - x_{i+1} = 1, x0 = x4 = 0 pinned via identity rows
	n := 5
	eq := New(n)
	eq.SetIdentityRow(0, 0)
	eq.SetIdentityRow(n-1, 0)
	for i := 1; i < n-1; i++ {
		eq.Add(i, i, 2)
		eq.Add(i, i-1, -1)
		eq.Add(i, i+1, -1)
		eq.AddSource(i, 1)
	}
	x := make([]float64, n)
	_, _, err := eq.Solve(x, 1.5, 1e-10, 500)
	require.NoError(t, err)
	assert.InDelta(t, 0, x[0], 1e-8)
	assert.InDelta(t, 0, x[n-1], 1e-8)
	assert.Greater(t, x[2], x[1]) // parabolic bump, peak in the middle
	assert.Greater(t, x[2], x[3])
}

func TestSolveAcceleratedMatchesRowMapResidual(t *testing.T) {
	build := func() *Equation {
		eq := New(3)
		eq.Add(0, 0, 2)
		eq.AddSource(0, 4)
		eq.Add(1, 1, 4)
		eq.AddSource(1, 8)
		eq.Add(2, 2, 1)
		eq.AddSource(2, -3)
		return eq
	}

	plain := build()
	xPlain := make([]float64, 3)
	_, residPlain, err := plain.Solve(xPlain, 1.0, 1e-10, 100)
	require.NoError(t, err)

	accel := build()
	accel.SetAccelerated(true)
	xAccel := make([]float64, 3)
	_, residAccel, err := accel.Solve(xAccel, 1.0, 1e-10, 100)
	require.NoError(t, err)

	assert.InDelta(t, residPlain, residAccel, 1e-12)
	assert.InDelta(t, xPlain[0], xAccel[0], 1e-10)
	assert.InDelta(t, xPlain[1], xAccel[1], 1e-10)
	assert.InDelta(t, xPlain[2], xAccel[2], 1e-10)
}

func TestSolveReportsDivergence(t *testing.T) {
	// Strongly non-diagonally-dominant system diverges under Gauss-Seidel.
	eq := New(2)
	eq.Add(0, 0, 1)
	eq.Add(0, 1, 5)
	eq.AddSource(0, 1)
	eq.Add(1, 1, 1)
	eq.Add(1, 0, 5)
	eq.AddSource(1, 1)

	x := []float64{10, 10}
	_, _, err := eq.Solve(x, 1.0, 1e-12, 200)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ibrun.ErrLinearSolveDiverged))
}
