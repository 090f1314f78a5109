package Fluid2D

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/notargets/stablefluids/utils"
)

type PlotField uint8

const (
	DENSITY PlotField = iota
	SPEED
	DIVERGENCE
	PRESSURE
)

var PlotFieldNames = []string{"Density", "Speed", "Divergence", "Pressure"}

func (pf PlotField) String() string {
	if int(pf) < len(PlotFieldNames) {
		return PlotFieldNames[pf]
	}
	return fmt.Sprintf("PlotField(%d)", pf)
}

type PlotMeta struct {
	Plot            bool
	Field           PlotField
	DensityIndex    int
	StepsBeforePlot int
	FileName        string // Frame file name, "%d" is replaced by the step number
	Width, Height   vg.Length
}

// fieldGrid presents a ScalarField as a plotter.GridXYZ in physical units
type fieldGrid struct {
	f      utils.ScalarField
	dx, dy float64
}

func (g fieldGrid) Dims() (c, r int)   { return g.f.Nx, g.f.Ny }
func (g fieldGrid) Z(c, r int) float64 { return g.f.At(c, r) }
func (g fieldGrid) X(c int) float64    { return float64(c) * g.dx }
func (g fieldGrid) Y(r int) float64    { return float64(r) * g.dy }

// PlotData returns the field selected by pm, computed into scratch storage
// where needed. It must not be called while a Step is running.
func (c *Fluid) PlotData(pm *PlotMeta) (f utils.ScalarField, err error) {
	switch pm.Field {
	case DENSITY:
		if pm.DensityIndex < 0 || pm.DensityIndex >= len(c.Densities) {
			err = fmt.Errorf("density index %d out of range, have %d density fields",
				pm.DensityIndex, len(c.Densities))
			return
		}
		f = c.Densities[pm.DensityIndex]
	case SPEED:
		f = c.V.Magnitude(c.Vtmp.Component(utils.CompX))
	case DIVERGENCE:
		f = c.VelocityDivergence(c.Vtmp.Component(utils.CompX))
	case PRESSURE:
		f = c.P
	default:
		err = fmt.Errorf("unknown plot field %d", pm.Field)
	}
	return
}

func (pm *PlotMeta) frameName(step int) string {
	name := pm.FileName
	if len(name) == 0 {
		name = "frame_%d.png"
	}
	if strings.Contains(name, "%d") {
		name = fmt.Sprintf(name, step)
	}
	return name
}

// SavePlot saves a heat map of the selected field as an image, the format
// follows the file extension
func (c *Fluid) SavePlot(pm *PlotMeta) (err error) {
	var (
		f      utils.ScalarField
		width  = pm.Width
		height = pm.Height
	)
	if f, err = c.PlotData(pm); err != nil {
		return
	}
	if width == 0 {
		width = 6 * vg.Inch
	}
	if height == 0 {
		height = width * vg.Length(float64(c.Ny)*c.Dy/(float64(c.Nx)*c.Dx))
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, t = %8.5f", pm.Field, c.Time)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	hm := plotter.NewHeatMap(fieldGrid{f: f, dx: c.Dx, dy: c.Dy}, palette.Heat(12, 1))
	hm.Min, hm.Max = f.Min(), f.Max()
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)
	if err = p.Save(width, height, pm.frameName(c.Steps)); err != nil {
		err = fmt.Errorf("unable to save plot: %w", err)
	}
	return
}
