package Fluid2D

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/stablefluids/utils"
)

// DivergenceNorm is the interior L2 norm of the divergence left in Div by the
// last sub-step, i.e. before that sub-step's projection
func (c *Fluid) DivergenceNorm() float64 {
	return c.Div.InteriorL2Norm()
}

// VelocityDivergence computes the divergence of the current velocity into dst,
// with the outer ring of dst set to zero
func (c *Fluid) VelocityDivergence(dst utils.ScalarField) utils.ScalarField {
	c.Team.Parallel(func(w *utils.Worker) {
		c.Divergence(w, dst, c.V)
		w.For(0, c.Nx, func(x int) {
			col := dst.Column(x)
			if x == 0 || x == c.Nx-1 {
				clear(col)
				return
			}
			col[0], col[c.Ny-1] = 0, 0
		})
	})
	return dst
}

func (c *Fluid) KineticEnergy() float64 {
	var (
		vx = c.V.Component(utils.CompX).DataP
		vy = c.V.Component(utils.CompY).DataP
	)
	return 0.5 * (floats.Dot(vx, vx) + floats.Dot(vy, vy)) * math.Abs(c.Dx*c.Dy)
}

func (c *Fluid) MaxSpeed() (maxSpeed float64) {
	var (
		vx = c.V.Component(utils.CompX).DataP
		vy = c.V.Component(utils.CompY).DataP
	)
	for i := range vx {
		if s := math.Hypot(vx[i], vy[i]); s > maxSpeed {
			maxSpeed = s
		}
	}
	return
}

func (c *Fluid) TotalDensity(n int) float64 {
	return c.Densities[n].Sum() * math.Abs(c.Dx*c.Dy)
}

// CFL is the largest number of cells any fluid parcel crosses in dt
func (c *Fluid) CFL(dt float64) float64 {
	return c.MaxSpeed() * math.Abs(dt) / math.Min(math.Abs(c.Dx), math.Abs(c.Dy))
}
