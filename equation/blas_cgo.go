//go:build cgo
// +build cgo

package equation

/*
#cgo CFLAGS: -march=native -mavx -mavx2
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// init registers netlib's OpenBLAS binding as the process-wide
// blas64.Implementation; Equation.SetAccelerated (driven by
// config.RunParameters.UseNativeBLAS) is what actually routes a
// solve's residual norm through it via mat.VecDense.MulVec.
func init() {
	blas64.Use(netblas.Implementation{})
	fmt.Println("Using netlib to accelerate BLAS")
}
