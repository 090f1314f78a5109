package Fluid2D

import (
	"fmt"

	"github.com/notargets/stablefluids/types"
	"github.com/notargets/stablefluids/utils"
)

const (
	NumLoops           = 3  // Sub-steps per call to Step
	PressureSolveSteps = 20 // Jacobi sweeps per sub-step, must be even
	SolidPressureDecay = 0.9
	SolidDensityDecay  = 0.9
	ClampMargin        = 1.01
)

// Fails to compile if PressureSolveSteps is odd
var _ = [1]struct{}{}[PressureSolveSteps%2]

type Grid struct {
	Nx, Ny int     // Cells in x and y, including the outer ring
	Dx, Dy float64 // Cell spacing
}

func (g Grid) Validate() (err error) {
	switch {
	case g.Nx < 3 || g.Ny < 3:
		err = fmt.Errorf("grid must be at least 3 x 3 to have an interior, have %d x %d", g.Nx, g.Ny)
	case g.Dx == 0 || g.Dy == 0:
		err = fmt.Errorf("cell spacing must be nonzero, have dx = %v, dy = %v", g.Dx, g.Dy)
	}
	return
}

/*
Fluid is a stable fluids solver on a rectangular grid with an embedded solid
mask. All fields share the grid layout idx = y + x*Ny. The buffers are either
allocated by NewFluid or wrapped from caller storage by NewFluidFromBuffers;
Step never allocates.
*/
type Fluid struct {
	Grid
	AccuracyMode       types.AccuracyMode
	NumLoops           int // Sub-steps per Step
	PressureIterations int // Jacobi sweeps, always even
	Bound              types.Bound
	V                  utils.VectorField   // Velocity, updated in place by Step
	Vtmp, Vtmp2        utils.VectorField   // Scratch, no meaning between steps
	P                  utils.ScalarField   // Pressure, carried between steps as the initial guess
	Div                utils.ScalarField   // Divergence of the advected velocity
	Densities          []utils.ScalarField // Passive scalars carried by the flow
	Cache              AdvectionCache
	Team               *utils.Team
	ownTeam            bool

	// Host loop state, see Solve
	Dt, FinalTime float64
	MaxIterations int
	Time          float64
	Steps         int
	Inflow        *Inflow
	verbose       bool
}

// NewFluid allocates every buffer for grid g with numDensity passive scalars
// and starts a worker team of ProcLimit goroutines (0 = one per CPU)
func NewFluid(g Grid, numDensity, ProcLimit int) (c *Fluid, err error) {
	if err = g.Validate(); err != nil {
		return
	}
	if numDensity < 0 {
		err = fmt.Errorf("number of density fields must not be negative, have %d", numDensity)
		return
	}
	c = &Fluid{
		Grid:               g,
		AccuracyMode:       types.ACCURACY_BFECC,
		NumLoops:           NumLoops,
		PressureIterations: PressureSolveSteps,
		Bound:              types.NewBound(g.Nx, g.Ny),
		V:                  utils.NewVectorField(g.Nx, g.Ny),
		Vtmp:               utils.NewVectorField(g.Nx, g.Ny),
		Vtmp2:              utils.NewVectorField(g.Nx, g.Ny),
		P:                  utils.NewScalarField(g.Nx, g.Ny),
		Div:                utils.NewScalarField(g.Nx, g.Ny),
		Densities:          make([]utils.ScalarField, numDensity),
		Cache:              NewAdvectionCache(g.Nx, g.Ny),
		Team:               utils.NewTeam(ProcLimit, g.Nx),
		ownTeam:            true,
	}
	for n := range c.Densities {
		c.Densities[n] = utils.NewScalarField(g.Nx, g.Ny)
	}
	return
}

/*
Buffers is caller owned storage for a Fluid. Vector buffers are 2*Nx*Ny long,
scalar buffers Nx*Ny, and DensityArrays holds the density planes back to back.
*/
type Buffers struct {
	V, Vtmp, Vtmp2 []float64
	P, Div         []float64
	DensityArrays  []float64
	Bound          []uint8
	AdvectIndexes  []int32
	AdvectLerps    []float64
}

// NewFluidFromBuffers wraps caller storage without copying. Every size is
// checked here once; the kernels trust them afterward. The team is borrowed
// and is not closed by Close.
func NewFluidFromBuffers(g Grid, b Buffers, team *utils.Team) (c *Fluid, err error) {
	var (
		N = g.Nx * g.Ny
	)
	if err = g.Validate(); err != nil {
		return
	}
	if team == nil {
		err = fmt.Errorf("a worker team is required")
		return
	}
	c = &Fluid{
		Grid:               g,
		AccuracyMode:       types.ACCURACY_BFECC,
		NumLoops:           NumLoops,
		PressureIterations: PressureSolveSteps,
		Team:               team,
	}
	if c.Bound, err = types.NewBoundFrom(g.Nx, g.Ny, b.Bound); err != nil {
		return nil, err
	}
	for _, vb := range []struct {
		dst *utils.VectorField
		src []float64
	}{{&c.V, b.V}, {&c.Vtmp, b.Vtmp}, {&c.Vtmp2, b.Vtmp2}} {
		if *vb.dst, err = utils.NewVectorFieldFrom(g.Nx, g.Ny, vb.src); err != nil {
			return nil, err
		}
	}
	if c.P, err = utils.NewScalarFieldFrom(g.Nx, g.Ny, b.P); err != nil {
		return nil, err
	}
	if c.Div, err = utils.NewScalarFieldFrom(g.Nx, g.Ny, b.Div); err != nil {
		return nil, err
	}
	if len(b.DensityArrays)%N != 0 {
		err = fmt.Errorf("density arrays hold %d values, not a multiple of %d", len(b.DensityArrays), N)
		return nil, err
	}
	c.Densities = make([]utils.ScalarField, len(b.DensityArrays)/N)
	for n := range c.Densities {
		c.Densities[n] = utils.ScalarField{
			Nx:    g.Nx,
			Ny:    g.Ny,
			DataP: b.DensityArrays[n*N : (n+1)*N : (n+1)*N],
		}
	}
	if len(b.AdvectIndexes) != 2*N || len(b.AdvectLerps) != 2*N {
		err = fmt.Errorf("advection cache needs %d entries, have %d indexes and %d lerps",
			2*N, len(b.AdvectIndexes), len(b.AdvectLerps))
		return nil, err
	}
	c.Cache = AdvectionCache{Indexes: b.AdvectIndexes, Lerps: b.AdvectLerps}
	return
}

func (c *Fluid) SetPressureIterations(n int) (err error) {
	if err = checkPressureIterations(n); err != nil {
		return
	}
	c.PressureIterations = n
	return
}

func (c *Fluid) SetNumLoops(n int) (err error) {
	if n < 1 {
		err = fmt.Errorf("number of sub-steps must be at least 1, have %d", n)
		return
	}
	c.NumLoops = n
	return
}

func (c *Fluid) SetVerbose(verbose bool) { c.verbose = verbose }

// Close stops the worker team if the Fluid started it
func (c *Fluid) Close() {
	if c.ownTeam && c.Team != nil {
		c.Team.Close()
	}
}

// The x plane of Vtmp2 doubles as the pressure scratch buffer. BFECC is done
// with Vtmp2 before the pressure solve starts each sub-step.
func (c *Fluid) pressureBuffers() PressureBuffers {
	return PressureBuffers{c.P, c.Vtmp2.Component(utils.CompX)}
}

/*
Step advances velocity and all densities by dt0, split into NumLoops equal
sub-steps. The whole step is one parallel region on the team; each sub-step
runs, in order and separated by team barriers:

	advect velocity (BFECC or single pass) -> divergence -> pressure solve
	-> subtract pressure gradient -> slip at solids -> advect each density
*/
func (c *Fluid) Step(dt0 float64) {
	var (
		dt = dt0 / float64(c.NumLoops)
	)
	c.Team.Parallel(func(w *utils.Worker) {
		for i := 0; i < c.NumLoops; i++ {
			var tr AdvectionTrace
			switch c.AccuracyMode {
			case types.ACCURACY_BFECC:
				tr = c.AdvectVelocityBFECC(w, c.Vtmp, c.Vtmp2, c.V, dt)
			default:
				tr = c.AdvectVelocity(w, c.Vtmp, c.V, dt)
			}
			c.Divergence(w, c.Div, c.Vtmp)
			c.PressureSolve(w, c.pressureBuffers(), c.Div)
			c.SubGradient(w, c.V, c.Vtmp, c.P)
			c.EnforceSlip(w, c.V)
			scratch := c.Vtmp.Component(utils.CompX)
			for _, d := range c.Densities {
				c.CopyField(w, scratch, d)
				c.ApplyAdvection(w, tr, d, scratch)
			}
		}
	})
}
