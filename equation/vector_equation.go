package equation

import "github.com/finitevolume/ibflow/geometry2d"

// VectorEquation is two scalar Equations sharing row indices, the
// component-wise analogue of assembling a single Equation<Vector2D> in
// the original solver's fv::ddt/fv::div machinery.
type VectorEquation struct {
	X, Y *Equation
}

func NewVectorEquation(n int) *VectorEquation {
	return &VectorEquation{X: New(n), Y: New(n)}
}

// SetAccelerated toggles the blas64-backed residual path on both
// components; see Equation.SetAccelerated.
func (v *VectorEquation) SetAccelerated(on bool) {
	v.X.SetAccelerated(on)
	v.Y.SetAccelerated(on)
}

func (v *VectorEquation) Add(row, col int, coeff float64) {
	v.X.Add(row, col, coeff)
	v.Y.Add(row, col, coeff)
}

func (v *VectorEquation) AddSource(row int, value geometry2d.Point) {
	v.X.AddSource(row, value.X)
	v.Y.AddSource(row, value.Y)
}

func (v *VectorEquation) SetIdentityRow(row int, value geometry2d.Point) {
	v.X.SetIdentityRow(row, value.X)
	v.Y.SetIdentityRow(row, value.Y)
}

// Solve runs Gauss-Seidel/SOR independently on each component in
// place, returning the worse of the two residual norms.
func (v *VectorEquation) Solve(x, y []float64, omega, tol float64, maxIter int) (iters int, residualNorm float64, err error) {
	ix, rx, errx := v.X.Solve(x, omega, tol, maxIter)
	iy, ry, erry := v.Y.Solve(y, omega, tol, maxIter)
	iters = ix
	if iy > iters {
		iters = iy
	}
	residualNorm = rx
	if ry > residualNorm {
		residualNorm = ry
	}
	if errx != nil {
		return iters, residualNorm, errx
	}
	return iters, residualNorm, erry
}
