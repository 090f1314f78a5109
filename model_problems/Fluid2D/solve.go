package Fluid2D

import (
	"fmt"
	"time"

	"github.com/notargets/stablefluids/utils"
)

/*
Solve runs Step with the configured Dt until FinalTime or MaxIterations is
reached, reapplying the inflow before each step. Progress is printed every
pm.StepsBeforePlot steps and a frame is saved at the same cadence when
plotting is on.
*/
func (c *Fluid) Solve(pm *PlotMeta) (err error) {
	var (
		finished bool
		elapsed  time.Duration
		start    time.Time
	)
	if pm == nil {
		pm = &PlotMeta{}
	}
	if pm.StepsBeforePlot < 1 {
		pm.StepsBeforePlot = 1
	}
	if c.verbose {
		c.PrintInitialization()
	}
	for !finished {
		start = time.Now()
		c.ApplyInflow()
		c.Step(c.Dt)
		elapsed += time.Since(start)
		c.Steps++
		c.Time += c.Dt
		if utils.IsNan(c.V) || utils.IsNan(c.Densities) {
			err = fmt.Errorf("non finite values in solution at step %d, time %8.5f", c.Steps, c.Time)
			return
		}
		finished = c.CheckIfFinished()
		if finished || c.Steps%pm.StepsBeforePlot == 0 || c.Steps == 1 {
			if c.verbose {
				c.PrintUpdate()
			}
			if pm.Plot {
				if err = c.SavePlot(pm); err != nil {
					return
				}
			}
		}
	}
	if c.verbose {
		c.PrintFinal(elapsed)
	}
	return
}

func (c *Fluid) CheckIfFinished() (finished bool) {
	if c.FinalTime > 0 && c.Time >= c.FinalTime {
		finished = true
	}
	if c.MaxIterations > 0 && c.Steps >= c.MaxIterations {
		finished = true
	}
	return
}

func (c *Fluid) PrintInitialization() {
	if c.FinalTime > 0 {
		fmt.Printf("Solving until finaltime = %8.5f\n", c.FinalTime)
	} else {
		fmt.Printf("Solving until Max Iterations = %d\n", c.MaxIterations)
	}
	fmt.Printf("    iter    time      dt")
	fmt.Printf("     Div L2   P Resid         KE   MaxSpeed")
	if len(c.Densities) != 0 {
		fmt.Printf("    Density")
	}
	fmt.Printf("\n")
}

func (c *Fluid) PrintUpdate() {
	format := "%11.4e"
	fmt.Printf("%8d%8.5f%8.5f", c.Steps, c.Time, c.Dt)
	fmt.Printf(format, c.DivergenceNorm())
	fmt.Printf(format, c.PressureResidual())
	fmt.Printf(format, c.KineticEnergy())
	fmt.Printf(format, c.MaxSpeed())
	if len(c.Densities) != 0 {
		fmt.Printf(format, c.TotalDensity(0))
	}
	fmt.Printf("\n")
}

func (c *Fluid) PrintFinal(elapsed time.Duration) {
	if c.Steps == 0 {
		return
	}
	rate := float64(elapsed.Microseconds()) / float64(c.Nx*c.Ny*c.Steps)
	fmt.Printf("\nRate of execution = %8.5f us/(cell*iteration) over %d iterations\n", rate, c.Steps)
	fmt.Printf("%s\n", utils.GetMemUsage())
}
