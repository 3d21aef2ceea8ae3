// Package equation accumulates the sparse linear systems assembled by
// the momentum and pressure-Poisson equations and solves them by
// Gauss-Seidel/SOR iteration over james-bowman/sparse.DOK storage; see
// SPEC_FULL.md for why no direct or Krylov solver is wired in instead.
package equation

import (
	"fmt"
	"math"

	"github.com/finitevolume/ibflow/ibrun"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Equation is a row-accumulated sparse linear system Ax = b, built one
// coefficient at a time the way fv::ddt/fv::div/fv::laplacian assemble
// terms into uEqn_/pEqn_ in the original solver.
type Equation struct {
	n int
	dok *sparse.DOK
	rows []map[int]float64
	b *mat.VecDense

	accelerated bool
	dense *mat.Dense
}

func New(n int) *Equation {
	rows := make([]map[int]float64, n)
	for i := range rows {
		rows[i] = make(map[int]float64)
	}
	return &Equation{
		n: n,
		dok: sparse.NewDOK(n, n),
		rows: rows,
		b: mat.NewVecDense(n, nil),
	}
}

func (e *Equation) N() int { return e.n }

// SetAccelerated toggles whether Solve computes its residual through a
// dense blas64 matrix-vector multiply instead of walking the row maps.
// blas64 dispatches to whatever gonum/blas/blas64.Implementation is
// registered process-wide, so building with the cgo tag (pulling in
// blas_cgo.go's init, which registers netlib's OpenBLAS binding) makes
// every accelerated Equation's residual pass run through native BLAS
// with no further code change, the same on/off dial
// FractionalStep::solve's useNativeBLAS run option exposes in the
// original.
func (e *Equation) SetAccelerated(on bool) { e.accelerated = on }

// Add accumulates coeff into A[row][col], matching how successive
// += fv::laplacian/fv::div terms combine into one coefficient per
// stencil entry.
func (e *Equation) Add(row, col int, coeff float64) {
	e.rows[row][col] += coeff
	e.dok.Set(row, col, e.rows[row][col])
}

// AddSource accumulates a right-hand-side contribution for row.
func (e *Equation) AddSource(row int, value float64) {
	e.b.SetVec(row, e.b.AtVec(row)+value)
}

// SetIdentityRow overwrites row so that x[row] = value, used to pin
// down cells fully inside a solid body.
func (e *Equation) SetIdentityRow(row int, value float64) {
	for col := range e.rows[row] {
		delete(e.rows[row], col)
		e.dok.Set(row, col, 0)
	}
	e.rows[row][row] = 1
	e.dok.Set(row, row, 1)
	e.b.SetVec(row, value)
}

// Matrix exposes the assembled system as a gonum mat.Matrix, e.g. for
// diagnostics or export.
func (e *Equation) Matrix() mat.Matrix { return e.dok }

func (e *Equation) RHS() *mat.VecDense { return e.b }

// Rows exposes the row-major coefficient maps directly, used by
// Registry to fold several bodies' equations into one shared system
// the way ImmersedBoundary::velocityBcs sums per-object equations with
// operator+=.
func (e *Equation) Rows() []map[int]float64 { return e.rows }

// SourceVector returns the assembled right-hand side as a plain slice.
func (e *Equation) SourceVector() []float64 {
	out := make([]float64, e.n)
	for i := range out {
		out[i] = e.b.AtVec(i)
	}
	return out
}

// residual computes b - A*x using the row-major mirror kept for fast
// iteration, and reports its 2-norm via gonum/floats.
func (e *Equation) residual(x []float64) ([]float64, float64) {
	r := make([]float64, e.n)
	for i := 0; i < e.n; i++ {
		var sum float64
		for col, coeff := range e.rows[i] {
			sum += coeff * x[col]
		}
		r[i] = e.b.AtVec(i) - sum
	}
	return r, floats.Norm(r, 2)
}

// denseMatrix materializes the row maps into a gonum mat.Dense once per
// Equation, lazily, for residualBLAS. Assembly (Add/AddSource) always
// runs to completion before Solve is called, so the cache never goes
// stale within an Equation's lifetime.
func (e *Equation) denseMatrix() *mat.Dense {
	if e.dense == nil {
		e.dense = mat.NewDense(e.n, e.n, nil)
		for row, cols := range e.rows {
			for col, coeff := range cols {
				e.dense.Set(row, col, coeff)
			}
		}
	}
	return e.dense
}

// residualBLAS computes b - A*x the same as residual but through
// mat.VecDense.MulVec, which dispatches the dense matrix-vector
// multiply through blas64.Implementation.
func (e *Equation) residualBLAS(x []float64) ([]float64, float64) {
	xv := mat.NewVecDense(e.n, x)
	ax := mat.NewVecDense(e.n, nil)
	ax.MulVec(e.denseMatrix(), xv)
	r := make([]float64, e.n)
	for i := 0; i < e.n; i++ {
		r[i] = e.b.AtVec(i) - ax.AtVec(i)
	}
	return r, floats.Norm(r, 2)
}

// Solve runs Gauss-Seidel/SOR (omega=1 recovers plain Gauss-Seidel) in
// place on x, iterating until the residual 2-norm falls below tol or
// maxIter sweeps elapse. It returns ibrun.ErrLinearSolveDiverged if the
// residual norm turns non-finite, or if after more than 11 sweeps it
// exceeds 100 times the residual norm of the starting guess, matching
// the policy that the caller may retry once with a halved time
// step.
func (e *Equation) Solve(x []float64, omega, tol float64, maxIter int) (iters int, residualNorm float64, err error) {
	computeResidual := e.residual
	if e.accelerated {
		computeResidual = e.residualBLAS
	}
	_, startNorm := computeResidual(x)
	for iters = 0; iters < maxIter; iters++ {
		for row := 0; row < e.n; row++ {
			diag, ok := e.rows[row][row]
			if !ok || diag == 0 {
				continue
			}
			var sum float64
			for col, coeff := range e.rows[row] {
				if col == row {
					continue
				}
				sum += coeff * x[col]
			}
			gs := (e.b.AtVec(row) - sum) / diag
			x[row] += omega * (gs - x[row])
		}
		_, residualNorm = computeResidual(x)
		if math.IsNaN(residualNorm) || math.IsInf(residualNorm, 0) {
			return iters + 1, residualNorm, fmt.Errorf("%w: residual norm %v after %d iterations", ibrun.ErrLinearSolveDiverged, residualNorm, iters+1)
		}
		if residualNorm < tol {
			return iters + 1, residualNorm, nil
		}
		if iters > 10 && residualNorm > 100*startNorm {
			return iters + 1, residualNorm, fmt.Errorf("%w: residual norm grew from %v to %v", ibrun.ErrLinearSolveDiverged, startNorm, residualNorm)
		}
	}
	return iters, residualNorm, nil
}
