package Fluid2D

import (
	"fmt"

	"github.com/notargets/stablefluids/utils"
)

// PressureBuffers is the Jacobi ping-pong pair. Iteration k reads slot k%2 and
// writes slot 1-k%2, so after an even number of sweeps the result is in slot 0.
type PressureBuffers [2]utils.ScalarField

func checkPressureIterations(n int) (err error) {
	if n <= 0 || n%2 != 0 {
		err = fmt.Errorf("pressure iterations must be a positive even number, have %d", n)
	}
	return
}

/*
PressureSolve relaxes the pressure in pb[0] toward the solution of the
discrete Poisson problem lap(p) = div with a fixed number of Jacobi sweeps.

Pressure inside solids is first damped by SolidPressureDecay. Each sweep zeroes
the outer ring of the write buffer, then sets every interior cell to the mean
of its four neighbors less dx*dy*div/4, using the cell's own value in place of
any solid neighbor. There is no convergence test.

Must be called by every member of the team, each sweep ends with a barrier.
*/
func (c *Fluid) PressureSolve(w *utils.Worker, pb PressureBuffers, div utils.ScalarField) {
	var (
		Nx, Ny = c.Nx, c.Ny
		bound  = c.Bound.Cells
		p0     = pb[0].DataP
		divD   = div.DataP
		h2     = c.Dx * c.Dy
	)
	w.For(0, Nx, func(x int) {
		for y := 0; y < Ny; y++ {
			idx := y + x*Ny
			if bound[idx] != 0 {
				p0[idx] *= SolidPressureDecay
			}
		}
	})
	for k := 0; k < c.PressureIterations; k++ {
		var (
			p   = pb[k%2].DataP
			buf = pb[1-k%2].DataP
		)
		w.For(0, Nx, func(x int) {
			col := x * Ny
			if x == 0 || x == Nx-1 {
				for y := 0; y < Ny; y++ {
					buf[col+y] = 0
				}
				return
			}
			buf[col] = 0
			buf[col+Ny-1] = 0
			for y := 1; y < Ny-1; y++ {
				idx := y + col
				pc := p[idx]
				var sum float64
				if bound[idx-1] != 0 {
					sum += pc
				} else {
					sum += p[idx-1]
				}
				if bound[idx+1] != 0 {
					sum += pc
				} else {
					sum += p[idx+1]
				}
				if bound[idx-Ny] != 0 {
					sum += pc
				} else {
					sum += p[idx-Ny]
				}
				if bound[idx+Ny] != 0 {
					sum += pc
				} else {
					sum += p[idx+Ny]
				}
				buf[idx] = 0.25 * (sum - h2*divD[idx])
			}
		})
	}
}
