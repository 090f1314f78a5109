package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Obstacle is a solid shape placed by its center in physical units. A bare
// Y key reads as a boolean in YAML 1.1, so the center is given as a pair.
type Obstacle struct {
	Shape  string     `yaml:"Shape"` // "Circle" or "Rectangle"
	Center [2]float64 `yaml:"Center"`
	Radius float64    `yaml:"Radius"`
	Width  float64    `yaml:"Width"`
	Height float64    `yaml:"Height"`
}

// Inflow holds velocity and densities fixed on a block of cells, reapplied
// before every step. Cell ranges are inclusive.
type Inflow struct {
	XMin    int       `yaml:"XMin"`
	XMax    int       `yaml:"XMax"`
	YMin    int       `yaml:"YMin"`
	YMax    int       `yaml:"YMax"`
	U       float64   `yaml:"U"`
	V       float64   `yaml:"V"`
	Density []float64 `yaml:"Density"` // One value per density field
}

// Parameters obtained from the YAML input file
type InputParameters2D struct {
	Title              string     `yaml:"Title"`
	Nx                 int        `yaml:"Nx"`
	Ny                 int        `yaml:"Ny"`
	Dx                 float64    `yaml:"Dx"`
	Dy                 float64    `yaml:"Dy"`
	Dt                 float64    `yaml:"Dt"`
	FinalTime          float64    `yaml:"FinalTime"`
	MaxIterations      int        `yaml:"MaxIterations"`
	AccuracyMode       string     `yaml:"AccuracyMode"`
	NumLoops           int        `yaml:"NumLoops"`
	PressureIterations int        `yaml:"PressureIterations"`
	InitType           string     `yaml:"InitType"`
	Velocity           [2]float64 `yaml:"Velocity"`
	Densities          int        `yaml:"Densities"`
	Walls              bool       `yaml:"Walls"`
	Obstacles          []Obstacle `yaml:"Obstacles"`
	Inflow             *Inflow    `yaml:"Inflow"`
	ProcLimit          int        `yaml:"ProcLimit"`
}

func (ip *InputParameters2D) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.SetDefaults()
	return
}

func (ip *InputParameters2D) SetDefaults() {
	if ip.Dx == 0 {
		ip.Dx = 1
	}
	if ip.Dy == 0 {
		ip.Dy = 1
	}
	if ip.Dt == 0 {
		ip.Dt = 0.1
	}
	if ip.NumLoops == 0 {
		ip.NumLoops = 3
	}
	if ip.PressureIterations == 0 {
		ip.PressureIterations = 20
	}
	if len(ip.AccuracyMode) == 0 {
		ip.AccuracyMode = "BFECC"
	}
	if len(ip.InitType) == 0 {
		ip.InitType = "Still"
	}
	if ip.MaxIterations == 0 && ip.FinalTime > 0 {
		ip.MaxIterations = 1 << 30
	}
	if ip.Inflow != nil && ip.Densities < len(ip.Inflow.Density) {
		ip.Densities = len(ip.Inflow.Density)
	}
}

func (ip *InputParameters2D) Validate() (err error) {
	switch {
	case ip.Nx < 3 || ip.Ny < 3:
		err = fmt.Errorf("grid must be at least 3 x 3, have Nx = %d, Ny = %d", ip.Nx, ip.Ny)
	case ip.Dx <= 0 || ip.Dy <= 0:
		err = fmt.Errorf("cell spacing must be positive, have Dx = %v, Dy = %v", ip.Dx, ip.Dy)
	case ip.Dt <= 0:
		err = fmt.Errorf("time step must be positive, have Dt = %v", ip.Dt)
	case ip.FinalTime <= 0 && ip.MaxIterations <= 0:
		err = fmt.Errorf("one of FinalTime or MaxIterations must be positive")
	case ip.PressureIterations%2 != 0:
		err = fmt.Errorf("PressureIterations must be even, have %d", ip.PressureIterations)
	}
	if err != nil {
		return
	}
	for i, ob := range ip.Obstacles {
		switch ob.Shape {
		case "Circle", "circle":
			if ob.Radius <= 0 {
				err = fmt.Errorf("obstacle %d: circle radius must be positive", i)
			}
		case "Rectangle", "rectangle":
			if ob.Width <= 0 || ob.Height <= 0 {
				err = fmt.Errorf("obstacle %d: rectangle width and height must be positive", i)
			}
		default:
			err = fmt.Errorf("obstacle %d: unknown shape %q", i, ob.Shape)
		}
		if err != nil {
			return
		}
	}
	return
}

func (ip *InputParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t= Grid Nx x Ny\n", ip.Nx, ip.Ny)
	fmt.Printf("[%8.5f, %8.5f]\t= Dx, Dy\n", ip.Dx, ip.Dy)
	fmt.Printf("%8.5f\t\t= Dt\n", ip.Dt)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%s]\t\t\t= Accuracy Mode\n", ip.AccuracyMode)
	fmt.Printf("[%d]\t\t\t\t= Sub-steps per step\n", ip.NumLoops)
	fmt.Printf("[%d]\t\t\t\t= Pressure Iterations\n", ip.PressureIterations)
	fmt.Printf("[%s]\t\t\t= InitType\n", ip.InitType)
	fmt.Printf("%v\t\t\t= Velocity\n", ip.Velocity)
	fmt.Printf("[%d]\t\t\t\t= Density fields\n", ip.Densities)
	fmt.Printf("[%v]\t\t\t= Walls\n", ip.Walls)
	for i, ob := range ip.Obstacles {
		fmt.Printf("Obstacles[%d] = %+v\n", i, ob)
	}
	if ip.Inflow != nil {
		fmt.Printf("Inflow = %+v\n", *ip.Inflow)
	}
}
