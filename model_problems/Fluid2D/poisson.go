package Fluid2D

import (
	"math"

	"github.com/james-bowman/sparse"

	"github.com/notargets/stablefluids/types"
	"github.com/notargets/stablefluids/utils"
)

/*
NewPoissonOperator assembles the linear system whose fixed point the Jacobi
sweeps in PressureSolve approach, over all Nx*Ny cells:

	ring cells:     p = 0
	interior cells: (4 - nSolid)*p - sum(p over fluid neighbors) = -dx*dy*div

The right hand side is built by PoissonRHS.
*/
func NewPoissonOperator(g Grid, bound types.Bound) (A *sparse.CSR) {
	var (
		Nx, Ny = g.Nx, g.Ny
		N      = Nx * Ny
		dok    = sparse.NewDOK(N, N)
	)
	for x := 0; x < Nx; x++ {
		for y := 0; y < Ny; y++ {
			idx := y + x*Ny
			if x == 0 || y == 0 || x == Nx-1 || y == Ny-1 {
				dok.Set(idx, idx, 1)
				continue
			}
			diag := 4.
			for _, nbr := range [4]int{idx - 1, idx + 1, idx - Ny, idx + Ny} {
				if bound.Cells[nbr] != 0 {
					diag--
					continue
				}
				dok.Set(idx, nbr, -1)
			}
			if diag != 0 {
				dok.Set(idx, idx, diag)
			}
		}
	}
	A = dok.ToCSR()
	return
}

func PoissonRHS(g Grid, div utils.ScalarField) (b []float64) {
	var (
		Nx, Ny = g.Nx, g.Ny
		h2     = g.Dx * g.Dy
	)
	b = make([]float64, Nx*Ny)
	for x := 1; x < Nx-1; x++ {
		for y := 1; y < Ny-1; y++ {
			idx := y + x*Ny
			b[idx] = -h2 * div.DataP[idx]
		}
	}
	return
}

// PoissonResidual returns ||A*p - b||
func PoissonResidual(A *sparse.CSR, p utils.ScalarField, b []float64) float64 {
	var (
		r = make([]float64, len(b))
	)
	A.DoNonZero(func(i, j int, v float64) {
		r[i] += v * p.DataP[j]
	})
	var sum float64
	for i := range r {
		d := r[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// PressureResidual measures how well the current pressure solves the system
// for the current divergence
func (c *Fluid) PressureResidual() float64 {
	A := NewPoissonOperator(c.Grid, c.Bound)
	return PoissonResidual(A, c.P, PoissonRHS(c.Grid, c.Div))
}
