package Fluid2D

import (
	"github.com/notargets/stablefluids/utils"
)

/*
AdvectionCache holds, for every cell, the truncated backward-traced cell
(xi, yi) and the fractional offsets (s, t) of the trace. Both slices stack an
x plane over a y plane like a VectorField, so each is 2*Nx*Ny long.
*/
type AdvectionCache struct {
	Indexes []int32
	Lerps   []float64
}

func NewAdvectionCache(Nx, Ny int) (ac AdvectionCache) {
	ac = AdvectionCache{
		Indexes: make([]int32, 2*Nx*Ny),
		Lerps:   make([]float64, 2*Nx*Ny),
	}
	return
}

// AdvectionTrace is the result of one AdvectVelocity call. It is only valid
// until the next AdvectVelocity call on the same Fluid overwrites the cache.
type AdvectionTrace struct {
	Nx, Ny  int
	Indexes []int32
	Lerps   []float64
}

// Source returns the flat index of the lower corner of the sampled 2x2 block
// and the interpolation fractions for destination cell idx
func (tr AdvectionTrace) Source(idx int) (iidx int, s, t float64) {
	var (
		N = tr.Nx * tr.Ny
	)
	iidx = int(tr.Indexes[N+idx]) + int(tr.Indexes[idx])*tr.Ny
	s, t = tr.Lerps[idx], tr.Lerps[N+idx]
	return
}

/*
AdvectSample is the bilinear interpolation of the 2x2 block whose lower
corner is v[0]:

	v[0]  = (xi, yi)    v[1]    = (xi, yi+1)
	v[Ny] = (xi+1, yi)  v[Ny+1] = (xi+1, yi+1)
*/
func AdvectSample(v []float64, Ny int, s, t float64) float64 {
	return (1-s)*((1-t)*v[0]+t*v[1]) +
		s*((1-t)*v[Ny]+t*v[Ny+1])
}

// TraceLimits are the largest traced coordinates that keep the 2x2 sample
// block inside the grid after truncation
func (g Grid) TraceLimits() (xMax, yMax float64) {
	return float64(g.Nx) - ClampMargin, float64(g.Ny) - ClampMargin
}

// Trace follows the cell (x, y) backward through velocity (vx, vy) by dt
func (g Grid) Trace(x, y int, vx, vy, dt float64) (xa, ya float64) {
	xMax, yMax := g.TraceLimits()
	xa = utils.Clamp(float64(x)-dt*vx/g.Dx, 0, xMax)
	ya = utils.Clamp(float64(y)-dt*vy/g.Dy, 0, yMax)
	return
}

/*
AdvectVelocity writes into v the field v0 carried along itself for dt. Solid
cells keep their v0 value. The trace of every cell is recorded in the
advection cache and returned so density fields can be carried along the same
paths without retracing.

Must be called by every member of the team, it ends with a barrier.
*/
func (c *Fluid) AdvectVelocity(w *utils.Worker, v, v0 utils.VectorField, dt float64) (tr AdvectionTrace) {
	var (
		Nx, Ny  = c.Nx, c.Ny
		N       = Nx * Ny
		bound   = c.Bound.Cells
		indexes = c.Cache.Indexes
		lerps   = c.Cache.Lerps
		vD, v0D = v.DataP, v0.DataP
	)
	w.For(0, Nx, func(x int) {
		for y := 0; y < Ny; y++ {
			idx := y + x*Ny
			xa, ya := c.Trace(x, y, v0D[idx], v0D[N+idx], dt)
			xi, yi := int(xa), int(ya)
			s, t := xa-float64(xi), ya-float64(yi)
			indexes[idx], indexes[N+idx] = int32(xi), int32(yi)
			lerps[idx], lerps[N+idx] = s, t
			if bound[idx] == 0 {
				iidx := yi + xi*Ny
				vD[idx] = AdvectSample(v0D[iidx:], Ny, s, t)
				vD[N+idx] = AdvectSample(v0D[N+iidx:], Ny, s, t)
			} else {
				vD[idx] = v0D[idx]
				vD[N+idx] = v0D[N+idx]
			}
		}
	})
	tr = AdvectionTrace{
		Nx:      Nx,
		Ny:      Ny,
		Indexes: indexes,
		Lerps:   lerps,
	}
	return
}

// BFECCCorrect forms the error compensated field vc = 1.5*v - 0.5*vBack,
// where vBack is v carried forward then back again
func (c *Fluid) BFECCCorrect(w *utils.Worker, vc, v, vBack utils.VectorField) {
	var (
		Nx, Ny       = c.Nx, c.Ny
		N            = Nx * Ny
		vcD, vD, vbD = vc.DataP, v.DataP, vBack.DataP
	)
	w.For(0, Nx, func(x int) {
		for y := 0; y < Ny; y++ {
			idx := y + x*Ny
			vcD[idx] = 1.5*vD[idx] - 0.5*vbD[idx]
			vcD[N+idx] = 1.5*vD[N+idx] - 0.5*vbD[N+idx]
		}
	})
}

// AdvectVelocityBFECC runs the forward, backward, correct, forward sequence.
// Scratch fields tmp and tmp2 are overwritten, the result lands in dst.
func (c *Fluid) AdvectVelocityBFECC(w *utils.Worker, dst, tmp2, v utils.VectorField, dt float64) (tr AdvectionTrace) {
	c.AdvectVelocity(w, tmp2, v, dt)
	c.AdvectVelocity(w, dst, tmp2, -dt)
	c.BFECCCorrect(w, tmp2, v, dst)
	tr = c.AdvectVelocity(w, dst, tmp2, dt)
	return
}

/*
ApplyAdvection carries the scalar d0 along the paths recorded in tr and writes
the result into d. Solid cells are not advected, instead whatever d holds
there decays by SolidDensityDecay.
*/
func (c *Fluid) ApplyAdvection(w *utils.Worker, tr AdvectionTrace, d, d0 utils.ScalarField) {
	var (
		Nx, Ny  = tr.Nx, tr.Ny
		bound   = c.Bound.Cells
		dD, d0D = d.DataP, d0.DataP
	)
	w.For(0, Nx, func(x int) {
		for y := 0; y < Ny; y++ {
			idx := y + x*Ny
			if bound[idx] == 0 {
				iidx, s, t := tr.Source(idx)
				dD[idx] = AdvectSample(d0D[iidx:], Ny, s, t)
			} else {
				dD[idx] *= SolidDensityDecay
			}
		}
	})
}

// CopyField copies src into dst, partitioned by column
func (c *Fluid) CopyField(w *utils.Worker, dst, src utils.ScalarField) {
	w.For(0, c.Nx, func(x int) {
		copy(dst.Column(x), src.Column(x))
	})
}
