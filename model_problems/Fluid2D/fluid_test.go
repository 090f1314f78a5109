package Fluid2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/stablefluids/types"
	"github.com/notargets/stablefluids/utils"
)

func newTestFluid(t *testing.T, Nx, Ny, numDensity, ProcLimit int) (c *Fluid) {
	var err error
	c, err = NewFluid(Grid{Nx: Nx, Ny: Ny, Dx: 1, Dy: 1}, numDensity, ProcLimit)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return
}

// Smooth field with no symmetry, used wherever a non trivial input is needed
func wavy(x, y int, phase float64) float64 {
	return math.Sin(0.7*float64(x)+phase) * math.Cos(0.45*float64(y)-0.3*phase)
}

func TestSampler(t *testing.T) {
	{ // Corners and weights
		v := []float64{1, 2, 3, 4} // (0,0) (0,1) (1,0) (1,1) with Ny = 2
		assert.Equal(t, 1., AdvectSample(v, 2, 0, 0))
		assert.Equal(t, 2., AdvectSample(v, 2, 0, 1))
		assert.Equal(t, 3., AdvectSample(v, 2, 1, 0))
		assert.Equal(t, 4., AdvectSample(v, 2, 1, 1))
		assert.InDelta(t, 2.5, AdvectSample(v, 2, 0.5, 0.5), 1.e-14)
	}
	{ // Linear fields are reproduced exactly
		v := []float64{0, 3, 2, 5} // f = 2x + 3y
		assert.InDelta(t, 2.0, AdvectSample(v, 2, 0.25, 0.5), 1.e-14)
		assert.InDelta(t, 2*0.8+3*0.1, AdvectSample(v, 2, 0.8, 0.1), 1.e-14)
	}
	{ // Stride follows Ny
		v := []float64{1, 5, 0, 7, 6, 0}
		assert.InDelta(t, 0.5*(1+7), AdvectSample(v, 3, 0.5, 0), 1.e-14)
	}
}

func TestTrace(t *testing.T) {
	g := Grid{Nx: 8, Ny: 6, Dx: 1, Dy: 1}
	xMax, yMax := g.TraceLimits()
	assert.InDelta(t, 6.99, xMax, 1.e-14)
	assert.InDelta(t, 4.99, yMax, 1.e-14)
	{ // Interior trace
		xa, ya := g.Trace(3, 2, 1, 0.5, 1)
		assert.InDelta(t, 2., xa, 1.e-14)
		assert.InDelta(t, 1.5, ya, 1.e-14)
	}
	{ // Clamped to the grid, the 2x2 block always fits
		xa, ya := g.Trace(0, 0, 100, 100, 1)
		assert.Equal(t, 0., xa)
		assert.Equal(t, 0., ya)
		xa, ya = g.Trace(7, 5, -100, -100, 1)
		assert.Equal(t, xMax, xa)
		assert.Equal(t, yMax, ya)
		assert.Less(t, int(xa)+1, g.Nx)
		assert.Less(t, int(ya)+1, g.Ny)
	}
	{ // Spacing scales the trace
		g2 := Grid{Nx: 8, Ny: 6, Dx: 0.5, Dy: 2}
		xa, ya := g2.Trace(3, 3, 0.5, 2, 1)
		assert.InDelta(t, 2., xa, 1.e-14)
		assert.InDelta(t, 2., ya, 1.e-14)
	}
}

func TestNewFluid(t *testing.T) {
	{
		_, err := NewFluid(Grid{Nx: 2, Ny: 8, Dx: 1, Dy: 1}, 0, 1)
		assert.Error(t, err)
		_, err = NewFluid(Grid{Nx: 8, Ny: 8, Dx: 0, Dy: 1}, 0, 1)
		assert.Error(t, err)
		_, err = NewFluid(Grid{Nx: 8, Ny: 8, Dx: 1, Dy: 1}, -1, 1)
		assert.Error(t, err)
	}
	{
		c := newTestFluid(t, 8, 6, 2, 4)
		assert.Equal(t, 2*8*6, len(c.V.DataP))
		assert.Equal(t, 8*6, len(c.P.DataP))
		assert.Equal(t, 2, len(c.Densities))
		assert.Equal(t, 2*8*6, len(c.Cache.Indexes))
		assert.Equal(t, NumLoops, c.NumLoops)
		assert.Equal(t, PressureSolveSteps, c.PressureIterations)
		assert.Equal(t, types.ACCURACY_BFECC, c.AccuracyMode)
		assert.Equal(t, 4, c.Team.ParallelDegree)
		assert.Error(t, c.SetPressureIterations(3))
		assert.Error(t, c.SetPressureIterations(0))
		assert.NoError(t, c.SetPressureIterations(4))
		assert.Equal(t, 4, c.PressureIterations)
		assert.Error(t, c.SetNumLoops(0))
		assert.NoError(t, c.SetNumLoops(1))
	}
}

func TestNewFluidFromBuffers(t *testing.T) {
	var (
		g    = Grid{Nx: 5, Ny: 4, Dx: 1, Dy: 1}
		N    = g.Nx * g.Ny
		team = utils.NewTeam(2, g.Nx)
	)
	defer team.Close()
	newBuffers := func() Buffers {
		return Buffers{
			V:             make([]float64, 2*N),
			Vtmp:          make([]float64, 2*N),
			Vtmp2:         make([]float64, 2*N),
			P:             make([]float64, N),
			Div:           make([]float64, N),
			DensityArrays: make([]float64, 3*N),
			Bound:         make([]uint8, N),
			AdvectIndexes: make([]int32, 2*N),
			AdvectLerps:   make([]float64, 2*N),
		}
	}
	{ // Storage is wrapped, not copied
		b := newBuffers()
		c, err := NewFluidFromBuffers(g, b, team)
		require.NoError(t, err)
		assert.Equal(t, 3, len(c.Densities))
		b.V[N+3] = 7
		_, vy := c.V.At(0, 3)
		assert.Equal(t, 7., vy)
		b.DensityArrays[2*N+1] = 4
		assert.Equal(t, 4., c.Densities[2].At(0, 1))
		b.Bound[6] = 1
		assert.True(t, c.Bound.IsSolid(1, 2))
		c.Close() // Borrowed team stays usable
		team.Parallel(func(w *utils.Worker) {})
	}
	{ // Every size is checked
		for _, mangle := range []func(b *Buffers){
			func(b *Buffers) { b.V = b.V[:N] },
			func(b *Buffers) { b.Vtmp2 = nil },
			func(b *Buffers) { b.P = b.P[:N-1] },
			func(b *Buffers) { b.Div = make([]float64, N+1) },
			func(b *Buffers) { b.DensityArrays = b.DensityArrays[:N+1] },
			func(b *Buffers) { b.Bound = b.Bound[:N-1] },
			func(b *Buffers) { b.AdvectIndexes = b.AdvectIndexes[:N] },
			func(b *Buffers) { b.AdvectLerps = nil },
		} {
			b := newBuffers()
			mangle(&b)
			_, err := NewFluidFromBuffers(g, b, team)
			assert.Error(t, err)
		}
		_, err := NewFluidFromBuffers(g, newBuffers(), nil)
		assert.Error(t, err)
	}
}

func TestAdvection(t *testing.T) {
	{ // A zero time step leaves the field alone away from the clamped edge
		c := newTestFluid(t, 9, 7, 0, 3)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				c.V.Set(x, y, wavy(x, y, 0), wavy(x, y, 1))
			}
		}
		for _, mode := range []types.AccuracyMode{types.ACCURACY_Standard, types.ACCURACY_BFECC} {
			c.Team.Parallel(func(w *utils.Worker) {
				if mode == types.ACCURACY_BFECC {
					c.AdvectVelocityBFECC(w, c.Vtmp, c.Vtmp2, c.V, 0)
				} else {
					c.AdvectVelocity(w, c.Vtmp, c.V, 0)
				}
			})
			for x := 0; x < c.Nx-1; x++ {
				for y := 0; y < c.Ny-1; y++ {
					vx, vy := c.V.At(x, y)
					ax, ay := c.Vtmp.At(x, y)
					assert.InDeltaf(t, vx, ax, 1.e-12, "%s (%d,%d)", mode, x, y)
					assert.InDeltaf(t, vy, ay, 1.e-12, "%s (%d,%d)", mode, x, y)
				}
			}
		}
	}
	{ // Uniform flow by a whole cell shifts the field downstream
		c := newTestFluid(t, 8, 5, 1, 2)
		c.V.Fill(1, 0)
		d := c.Densities[0]
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				d.Set(x, y, float64(x*x+y))
			}
		}
		d0 := d.Copy()
		c.Team.Parallel(func(w *utils.Worker) {
			tr := c.AdvectVelocity(w, c.Vtmp, c.V, 1)
			c.ApplyAdvection(w, tr, d, d0)
		})
		for x := 1; x < c.Nx; x++ {
			for y := 0; y < c.Ny-1; y++ {
				assert.InDeltaf(t, d0.At(x-1, y), d.At(x, y), 1.e-12, "(%d,%d)", x, y)
			}
		}
		for y := 0; y < c.Ny-1; y++ {
			assert.Equal(t, d0.At(0, y), d.At(0, y))
		}
		// Uniform velocity is carried unchanged
		for i, val := range c.Vtmp.Component(utils.CompX).DataP {
			assert.InDelta(t, 1., val, 1.e-12, i)
		}
	}
	{ // Solid cells keep their velocity
		c := newTestFluid(t, 6, 6, 0, 2)
		c.V.Fill(0.5, -0.25)
		c.Bound.SetFlag(3, 3, types.CELL_Solid)
		c.V.Set(3, 3, 9, 8)
		c.Team.Parallel(func(w *utils.Worker) {
			c.AdvectVelocityBFECC(w, c.Vtmp, c.Vtmp2, c.V, 0.7)
		})
		vx, vy := c.Vtmp.At(3, 3)
		assert.Equal(t, 9., vx)
		assert.Equal(t, 8., vy)
	}
}

func TestDensityDecay(t *testing.T) {
	for _, numLoops := range []int{1, NumLoops} {
		c := newTestFluid(t, 5, 5, 1, 2)
		require.NoError(t, c.SetNumLoops(numLoops))
		c.Bound.SetFlag(2, 2, types.CELL_Solid)
		c.Densities[0].Fill(1)
		c.Step(0.1)
		d := c.Densities[0]
		assert.InDelta(t, math.Pow(SolidDensityDecay, float64(numLoops)), d.At(2, 2), 1.e-14)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				if x == 2 && y == 2 {
					continue
				}
				assert.InDeltaf(t, 1., d.At(x, y), 1.e-12, "(%d,%d)", x, y)
			}
		}
	}
}

func serialJacobi(c *Fluid, p, div utils.ScalarField, iterations int) utils.ScalarField {
	var (
		Nx, Ny = c.Nx, c.Ny
		bound  = c.Bound
		cur    = p.Copy()
		next   = utils.NewScalarField(Nx, Ny)
	)
	for x := 0; x < Nx; x++ {
		for y := 0; y < Ny; y++ {
			if bound.IsSolid(x, y) {
				cur.Set(x, y, cur.At(x, y)*SolidPressureDecay)
			}
		}
	}
	nbr := func(x, y, xn, yn int) float64 {
		if bound.IsSolid(xn, yn) {
			return cur.At(x, y)
		}
		return cur.At(xn, yn)
	}
	for k := 0; k < iterations; k++ {
		next.Fill(0)
		for x := 1; x < Nx-1; x++ {
			for y := 1; y < Ny-1; y++ {
				sum := nbr(x, y, x, y-1) + nbr(x, y, x, y+1) + nbr(x, y, x-1, y) + nbr(x, y, x+1, y)
				next.Set(x, y, 0.25*(sum-c.Dx*c.Dy*div.At(x, y)))
			}
		}
		cur, next = next, cur
	}
	return cur
}

func TestPressureSolve(t *testing.T) {
	{ // Zero divergence and zero pressure is a fixed point
		c := newTestFluid(t, 7, 6, 0, 3)
		c.Bound.SetFlag(3, 3, types.CELL_Solid)
		c.Team.Parallel(func(w *utils.Worker) {
			c.PressureSolve(w, c.pressureBuffers(), c.Div)
		})
		for _, val := range c.P.DataP {
			assert.Equal(t, 0., val)
		}
	}
	{ // Matches a serial sweep, result lands back in P
		c := newTestFluid(t, 11, 9, 0, 4)
		c.Bound.SetFlag(4, 4, types.CELL_Solid)
		c.Bound.SetFlag(5, 4, types.CELL_Solid)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				c.Div.Set(x, y, wavy(x, y, 0.2))
				c.P.Set(x, y, 0.1*wavy(y, x, 0.5))
			}
		}
		for _, iterations := range []int{2, 20} {
			p0 := c.P.Copy()
			ref := serialJacobi(c, p0, c.Div, iterations)
			require.NoError(t, c.SetPressureIterations(iterations))
			c.Team.Parallel(func(w *utils.Worker) {
				c.PressureSolve(w, c.pressureBuffers(), c.Div)
			})
			for i := range ref.DataP {
				assert.InDelta(t, ref.DataP[i], c.P.DataP[i], 1.e-13, i)
			}
			c.P.CopyFrom(p0)
		}
	}
	{ // More sweeps, smaller residual
		c := newTestFluid(t, 12, 12, 0, 3)
		for x := 1; x < c.Nx-1; x++ {
			for y := 1; y < c.Ny-1; y++ {
				c.Div.Set(x, y, wavy(x, y, 1.3))
			}
		}
		var residuals []float64
		for _, iterations := range []int{2, 20, 200} {
			c.P.Fill(0)
			require.NoError(t, c.SetPressureIterations(iterations))
			c.Team.Parallel(func(w *utils.Worker) {
				c.PressureSolve(w, c.pressureBuffers(), c.Div)
			})
			residuals = append(residuals, c.PressureResidual())
		}
		assert.Greater(t, residuals[0], residuals[1])
		assert.Greater(t, residuals[1], residuals[2])
	}
}

func TestPoissonOperator(t *testing.T) {
	g := Grid{Nx: 5, Ny: 5, Dx: 1, Dy: 1}
	b := types.NewBound(g.Nx, g.Ny)
	b.SetFlag(2, 3, types.CELL_Solid)
	A := NewPoissonOperator(g, b)
	r, cols := A.Dims()
	assert.Equal(t, 25, r)
	assert.Equal(t, 25, cols)
	idx := func(x, y int) int { return y + x*g.Ny }
	assert.Equal(t, 1., A.At(idx(0, 2), idx(0, 2)))
	assert.Equal(t, 0., A.At(idx(0, 2), idx(1, 2)))
	assert.Equal(t, 4., A.At(idx(1, 1), idx(1, 1)))
	assert.Equal(t, -1., A.At(idx(1, 1), idx(0, 1)))
	assert.Equal(t, -1., A.At(idx(1, 1), idx(1, 2)))
	// (2,2) has the solid (2,3) above it
	assert.Equal(t, 3., A.At(idx(2, 2), idx(2, 2)))
	assert.Equal(t, 0., A.At(idx(2, 2), idx(2, 3)))
	assert.Equal(t, -1., A.At(idx(2, 2), idx(2, 1)))
}

func TestDivergenceAndProjection(t *testing.T) {
	{ // Central differences, solids contribute nothing
		c := newTestFluid(t, 6, 6, 0, 2)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				c.V.Set(x, y, float64(x*x), float64(3*y))
			}
		}
		c.Team.Parallel(func(w *utils.Worker) {
			c.Divergence(w, c.Div, c.V)
		})
		// d(x^2)/dx = 2x, d(3y)/dy = 3
		assert.InDelta(t, 2*2+3., c.Div.At(2, 3), 1.e-14)
		assert.Equal(t, 0., c.Div.At(0, 3))
		c.Bound.SetFlag(3, 3, types.CELL_Solid)
		c.Team.Parallel(func(w *utils.Worker) {
			c.Divergence(w, c.Div, c.V)
		})
		assert.InDelta(t, -0.5*1+3., c.Div.At(2, 3), 1.e-14)
	}
	{ // Subtracting the gradient
		c := newTestFluid(t, 6, 6, 0, 3)
		c.Vtmp.Fill(1, 2)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				c.P.Set(x, y, float64(2*x+5*y))
			}
		}
		c.Bound.SetFlag(3, 3, types.CELL_Solid)
		c.Team.Parallel(func(w *utils.Worker) {
			c.SubGradient(w, c.V, c.Vtmp, c.P)
		})
		vx, vy := c.V.At(2, 2)
		assert.InDelta(t, 1.-2, vx, 1.e-14)
		assert.InDelta(t, 2.-5, vy, 1.e-14)
		vx, vy = c.V.At(3, 3)
		assert.Equal(t, 1., vx)
		assert.Equal(t, 2., vy)
		vx, vy = c.V.At(0, 2)
		assert.Equal(t, 0., vx)
		assert.Equal(t, 0., vy)
	}
}

func TestEnforceSlip(t *testing.T) {
	c := newTestFluid(t, 5, 5, 0, 2)
	c.V.Fill(7, 7)
	c.Bound.SetFlag(3, 2, types.CELL_Solid)
	c.V.Set(3, 2, 2, 5)
	c.Team.Parallel(func(w *utils.Worker) {
		c.EnforceSlip(w, c.V)
	})
	vx, vy := c.V.At(2, 2) // Solid on the +x side
	assert.Equal(t, 2., vx)
	assert.Equal(t, 7., vy)
	vx, vy = c.V.At(3, 3) // Solid on the -y side
	assert.Equal(t, 7., vx)
	assert.Equal(t, 5., vy)
	vx, vy = c.V.At(3, 1) // Solid on the +y side
	assert.Equal(t, 7., vx)
	assert.Equal(t, 5., vy)
	vx, vy = c.V.At(3, 2) // The solid itself
	assert.Equal(t, 2., vx)
	assert.Equal(t, 5., vy)
	vx, vy = c.V.At(1, 1)
	assert.Equal(t, 7., vx)
	assert.Equal(t, 7., vy)
	vx, vy = c.V.At(4, 2) // Outer ring is left alone
	assert.Equal(t, 7., vx)
	assert.Equal(t, 7., vy)
}

func TestStep(t *testing.T) {
	{ // Uniform flow with a zero time step
		for _, mode := range []types.AccuracyMode{types.ACCURACY_Standard, types.ACCURACY_BFECC} {
			c := newTestFluid(t, 4, 4, 1, 2)
			c.AccuracyMode = mode
			c.V.Fill(1, 0)
			c.Densities[0].Fill(1)
			c.Step(0)
			for x := 1; x < c.Nx-1; x++ {
				for y := 1; y < c.Ny-1; y++ {
					assert.InDelta(t, 0., c.Div.At(x, y), 1.e-14)
				}
			}
			for _, val := range c.P.DataP {
				assert.InDelta(t, 0., val, 1.e-14)
			}
			for x := 0; x < c.Nx; x++ {
				for y := 0; y < c.Ny; y++ {
					vx, vy := c.V.At(x, y)
					assert.InDelta(t, 1., vx, 1.e-12)
					assert.InDelta(t, 0., vy, 1.e-12)
					assert.InDelta(t, 1., c.Densities[0].At(x, y), 1.e-12)
				}
			}
		}
	}
	{ // Projection reduces the divergence of a smooth source
		c := newTestFluid(t, 32, 32, 0, 4)
		require.NoError(t, c.SetNumLoops(1))
		var (
			xc, yc = 15.5, 15.5
			sig2   = 9.
		)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				dx, dy := float64(x)-xc, float64(y)-yc
				phi := math.Exp(-(dx*dx + dy*dy) / (2 * sig2))
				c.V.Set(x, y, -dx/sig2*phi, -dy/sig2*phi)
			}
		}
		div := utils.NewScalarField(c.Nx, c.Ny)
		before := c.VelocityDivergence(div).InteriorL2Norm()
		c.Step(0)
		after := c.VelocityDivergence(div).InteriorL2Norm()
		assert.Greater(t, before, 0.)
		assert.Less(t, after, before)
	}
}

func TestDeterminism(t *testing.T) {
	run := func(ProcLimit int) (c *Fluid) {
		c = newTestFluid(t, 24, 17, 2, ProcLimit)
		c.SetWalls()
		c.AddCircle(8, 8, 2.5)
		c.InitializeVelocity(VORTEX, 0.3, 0)
		for x := 0; x < c.Nx; x++ {
			for y := 0; y < c.Ny; y++ {
				c.Densities[0].Set(x, y, wavy(x, y, 0))
				c.Densities[1].Set(x, y, float64(x%3))
			}
		}
		for i := 0; i < 5; i++ {
			c.Step(0.4)
		}
		return
	}
	ref := run(1)
	assert.False(t, utils.IsNan(ref.V))
	for _, np := range []int{2, 3, 7} {
		c := run(np)
		assert.Equal(t, ref.V.DataP, c.V.DataP)
		assert.Equal(t, ref.P.DataP, c.P.DataP)
		assert.Equal(t, ref.Densities[0].DataP, c.Densities[0].DataP)
		assert.Equal(t, ref.Densities[1].DataP, c.Densities[1].DataP)
	}
	{ // Repeated runs agree too
		c := run(3)
		assert.Equal(t, ref.V.DataP, c.V.DataP)
	}
}

func BenchmarkStep(b *testing.B) {
	for _, mode := range []types.AccuracyMode{types.ACCURACY_Standard, types.ACCURACY_BFECC} {
		b.Run(mode.String(), func(b *testing.B) {
			c, err := NewFluid(Grid{Nx: 256, Ny: 256, Dx: 1, Dy: 1}, 1, 0)
			if err != nil {
				b.Fatal(err)
			}
			defer c.Close()
			c.AccuracyMode = mode
			c.SetWalls()
			c.InitializeVelocity(VORTEX, 0.05, 0)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Step(0.5)
			}
		})
	}
}
