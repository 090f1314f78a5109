package Fluid2D

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/stablefluids/InputParameters"
	"github.com/notargets/stablefluids/types"
	"github.com/notargets/stablefluids/utils"
)

type InitType uint

const (
	STILL InitType = iota
	UNIFORM
	VORTEX
	JET
)

var (
	InitNames = map[string]InitType{
		"still":   STILL,
		"uniform": UNIFORM,
		"vortex":  VORTEX,
		"jet":     JET,
	}
	InitPrintNames = []string{"Fluid at rest", "Uniform flow", "Solid body rotation", "Inflow jet"}
)

func NewInitType(label string) (it InitType) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		err = fmt.Errorf("empty init type, must be one of %v", InitNames)
		panic(err)
	}
	label = strings.ToLower(label)
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
		panic(err)
	}
	return
}

func (it InitType) Print() string { return InitPrintNames[it] }

// Inflow pins velocity and densities on a block of cells before each step
type Inflow struct {
	XMin, XMax, YMin, YMax int
	U, V                   float64
	Density                []float64
}

/*
NewFluidFromInput builds a solver from parsed input: grid, solver options,
walls and obstacles, the initial velocity and an optional inflow.
*/
func NewFluidFromInput(ip *InputParameters.InputParameters2D, ProcLimit int, verbose bool) (c *Fluid, err error) {
	var (
		am types.AccuracyMode
		it InitType
		ok bool
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if am, err = types.NewAccuracyMode(ip.AccuracyMode); err != nil {
		return
	}
	if it, ok = InitNames[strings.ToLower(ip.InitType)]; !ok {
		err = fmt.Errorf("unknown init type %q", ip.InitType)
		return
	}
	if ProcLimit == 0 {
		ProcLimit = ip.ProcLimit
	}
	g := Grid{Nx: ip.Nx, Ny: ip.Ny, Dx: ip.Dx, Dy: ip.Dy}
	if c, err = NewFluid(g, ip.Densities, ProcLimit); err != nil {
		return
	}
	c.AccuracyMode = am
	c.Dt, c.FinalTime, c.MaxIterations = ip.Dt, ip.FinalTime, ip.MaxIterations
	c.verbose = verbose
	if err = c.SetNumLoops(ip.NumLoops); err != nil {
		c.Close()
		return nil, err
	}
	if err = c.SetPressureIterations(ip.PressureIterations); err != nil {
		c.Close()
		return nil, err
	}
	if ip.Walls {
		c.SetWalls()
	}
	for _, ob := range ip.Obstacles {
		switch strings.ToLower(ob.Shape) {
		case "circle":
			c.AddCircle(ob.Center[0], ob.Center[1], ob.Radius)
		case "rectangle":
			hw, hh := 0.5*ob.Width, 0.5*ob.Height
			c.AddRectangle(ob.Center[0]-hw, ob.Center[1]-hh, ob.Center[0]+hw, ob.Center[1]+hh)
		}
	}
	c.InitializeVelocity(it, ip.Velocity[0], ip.Velocity[1])
	if ip.Inflow != nil {
		c.Inflow = &Inflow{
			XMin:    ip.Inflow.XMin,
			XMax:    ip.Inflow.XMax,
			YMin:    ip.Inflow.YMin,
			YMax:    ip.Inflow.YMax,
			U:       ip.Inflow.U,
			V:       ip.Inflow.V,
			Density: ip.Inflow.Density,
		}
		c.ApplyInflow()
	}
	if verbose {
		fmt.Printf("Stable Fluids in 2 Dimensions\n")
		pm := utils.NewPartitionMap(c.Team.ParallelDegree, c.Nx)
		minCols, maxCols := c.Nx, 0
		for np := 0; np < pm.ParallelDegree; np++ {
			minCols = min(minCols, pm.GetBucketDimension(np))
			maxCols = max(maxCols, pm.GetBucketDimension(np))
		}
		fmt.Printf("Using %d go routines in parallel, %d to %d columns each\n",
			pm.ParallelDegree, minCols, maxCols)
		fmt.Printf("Solving %s\n", it.Print())
		fmt.Printf("Advection: %s, %d sub-steps, %d pressure iterations\n",
			c.AccuracyMode, c.NumLoops, c.PressureIterations)
		fmt.Printf("Grid %d x %d, Dx = %8.4f, Dy = %8.4f, Solid cells = %d\n\n",
			c.Nx, c.Ny, c.Dx, c.Dy, c.Bound.NumSolid())
	}
	return
}

// SetWalls makes the outermost ring of cells solid
func (c *Fluid) SetWalls() {
	for x := 0; x < c.Nx; x++ {
		c.Bound.SetFlag(x, 0, types.CELL_Solid)
		c.Bound.SetFlag(x, c.Ny-1, types.CELL_Solid)
	}
	for y := 0; y < c.Ny; y++ {
		c.Bound.SetFlag(0, y, types.CELL_Solid)
		c.Bound.SetFlag(c.Nx-1, y, types.CELL_Solid)
	}
}

// CellCenter is the physical position of cell (x, y)
func (c *Fluid) CellCenter(x, y int) (px, py float64) {
	return float64(x) * c.Dx, float64(y) * c.Dy
}

// AddCircle makes solid every cell whose center is within r of (cx, cy)
func (c *Fluid) AddCircle(cx, cy, r float64) {
	for x := 0; x < c.Nx; x++ {
		for y := 0; y < c.Ny; y++ {
			px, py := c.CellCenter(x, y)
			if math.Hypot(px-cx, py-cy) <= r {
				c.setSolid(x, y)
			}
		}
	}
}

// AddRectangle makes solid every cell whose center is in [x0,x1] x [y0,y1]
func (c *Fluid) AddRectangle(x0, y0, x1, y1 float64) {
	for x := 0; x < c.Nx; x++ {
		for y := 0; y < c.Ny; y++ {
			px, py := c.CellCenter(x, y)
			if px >= x0 && px <= x1 && py >= y0 && py <= y1 {
				c.setSolid(x, y)
			}
		}
	}
}

// Solid cells hold no flow
func (c *Fluid) setSolid(x, y int) {
	c.Bound.SetFlag(x, y, types.CELL_Solid)
	c.V.Set(x, y, 0, 0)
}

/*
InitializeVelocity sets the velocity of every fluid cell:

	STILL, JET: zero, a jet is driven by its inflow
	UNIFORM:    (u, v)
	VORTEX:     rotation about the grid center at angular speed u
*/
func (c *Fluid) InitializeVelocity(it InitType, u, v float64) {
	var (
		xc, yc = c.CellCenter(c.Nx-1, c.Ny-1)
	)
	xc, yc = 0.5*xc, 0.5*yc
	for x := 0; x < c.Nx; x++ {
		for y := 0; y < c.Ny; y++ {
			if c.Bound.IsSolid(x, y) {
				continue
			}
			switch it {
			case UNIFORM:
				c.V.Set(x, y, u, v)
			case VORTEX:
				px, py := c.CellCenter(x, y)
				c.V.Set(x, y, -u*(py-yc), u*(px-xc))
			default:
				c.V.Set(x, y, 0, 0)
			}
		}
	}
}

// ApplyInflow writes the inflow velocity and densities over its cell block,
// skipping solids and anything outside the grid
func (c *Fluid) ApplyInflow() {
	in := c.Inflow
	if in == nil {
		return
	}
	for x := max(in.XMin, 0); x <= min(in.XMax, c.Nx-1); x++ {
		for y := max(in.YMin, 0); y <= min(in.YMax, c.Ny-1); y++ {
			if c.Bound.IsSolid(x, y) {
				continue
			}
			c.V.Set(x, y, in.U, in.V)
			for n, d := range in.Density {
				if n < len(c.Densities) {
					c.Densities[n].Set(x, y, d)
				}
			}
		}
	}
}
