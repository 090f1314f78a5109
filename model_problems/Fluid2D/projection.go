package Fluid2D

import (
	"github.com/notargets/stablefluids/utils"
)

/*
Divergence writes the central difference divergence of v into div for the
interior cells. A solid neighbor contributes zero velocity. The outer ring of
div is not touched.
*/
func (c *Fluid) Divergence(w *utils.Worker, div utils.ScalarField, v utils.VectorField) {
	var (
		Nx, Ny = c.Nx, c.Ny
		N      = Nx * Ny
		bound  = c.Bound.Cells
		divD   = div.DataP
		vD     = v.DataP
		rdx    = 1 / (2 * c.Dx)
		rdy    = 1 / (2 * c.Dy)
	)
	w.For(1, Nx-1, func(x int) {
		for y := 1; y < Ny-1; y++ {
			idx := y + x*Ny
			var d float64
			if bound[idx+Ny] == 0 {
				d += vD[idx+Ny] * rdx
			}
			if bound[idx-Ny] == 0 {
				d -= vD[idx-Ny] * rdx
			}
			if bound[idx+1] == 0 {
				d += vD[N+idx+1] * rdy
			}
			if bound[idx-1] == 0 {
				d -= vD[N+idx-1] * rdy
			}
			divD[idx] = d
		}
	})
}

// SubGradient sets v = v0 - grad(p) on interior fluid cells, solid cells get
// v0 unchanged. The outer ring of v is not touched.
func (c *Fluid) SubGradient(w *utils.Worker, v, v0 utils.VectorField, p utils.ScalarField) {
	var (
		Nx, Ny  = c.Nx, c.Ny
		N       = Nx * Ny
		bound   = c.Bound.Cells
		vD, v0D = v.DataP, v0.DataP
		pD      = p.DataP
		rdx     = 1 / (2 * c.Dx)
		rdy     = 1 / (2 * c.Dy)
	)
	w.For(1, Nx-1, func(x int) {
		for y := 1; y < Ny-1; y++ {
			idx := y + x*Ny
			if bound[idx] != 0 {
				vD[idx] = v0D[idx]
				vD[N+idx] = v0D[N+idx]
				continue
			}
			vD[idx] = v0D[idx] - rdx*(pD[idx+Ny]-pD[idx-Ny])
			vD[N+idx] = v0D[N+idx] - rdy*(pD[idx+1]-pD[idx-1])
		}
	})
}

/*
EnforceSlip approximates a free slip wall. For an interior fluid cell beside
a solid, the x velocity is copied from the solid x neighbor (x+1 first, then
x-1) and the y velocity from the solid y neighbor (y+1 first, then y-1).

Only solid cells are read across a partition edge and solid cells are never
written here, so the update is safe in place.
*/
func (c *Fluid) EnforceSlip(w *utils.Worker, v utils.VectorField) {
	var (
		Nx, Ny = c.Nx, c.Ny
		N      = Nx * Ny
		bound  = c.Bound.Cells
		vD     = v.DataP
	)
	w.For(1, Nx-1, func(x int) {
		for y := 1; y < Ny-1; y++ {
			idx := y + x*Ny
			if bound[idx] != 0 {
				continue
			}
			switch {
			case bound[idx+Ny] != 0:
				vD[idx] = vD[idx+Ny]
			case bound[idx-Ny] != 0:
				vD[idx] = vD[idx-Ny]
			}
			switch {
			case bound[idx+1] != 0:
				vD[N+idx] = vD[N+idx+1]
			case bound[idx-1] != 0:
				vD[N+idx] = vD[N+idx-1]
			}
		}
	})
}
