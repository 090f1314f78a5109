/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/stablefluids/InputParameters"
	"github.com/notargets/stablefluids/model_problems/Fluid2D"
)

type Model2D struct {
	ICFile     string
	Graph      bool
	GraphField int
	PlotSteps  int
	PlotFile   string
	ProcLimit  int
	Quiet      bool
}

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Two dimensional stable fluids solver",
	Long: `Two dimensional stable fluids solver, reads a YAML input file describing
the grid, obstacles and initial flow, then steps the solution to completion`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		m2d := &Model2D{}
		if m2d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			logrus.Fatal(err)
		}
		m2d.Graph, _ = cmd.Flags().GetBool("graph")
		m2d.GraphField, _ = cmd.Flags().GetInt("graphField")
		m2d.PlotSteps, _ = cmd.Flags().GetInt("plotSteps")
		m2d.PlotFile, _ = cmd.Flags().GetString("plotFile")
		m2d.Quiet, _ = cmd.Flags().GetBool("quiet")
		m2d.ProcLimit = viper.GetInt("procLimit")
		ip, err := processInput(m2d)
		if err != nil {
			logrus.Fatal(err)
		}
		if err = Run2D(m2d, ip); err != nil {
			logrus.Fatal(err)
		}
	},
}

const exampleFile = `
########################################
Title: "Jet past a cylinder"
Nx: 128
Ny: 64
Dt: 0.5
FinalTime: 200
AccuracyMode: BFECC # Can be "Standard"
InitType: Jet # Can be "Still", "Uniform" or "Vortex"
Walls: true
Obstacles:
  - Shape: Circle
    Center: [32, 32]
    Radius: 6
Inflow:
  XMin: 1
  XMax: 3
  YMin: 26
  YMax: 38
  U: 1
  Density: [1]
########################################
`

func processInput(m2d *Model2D) (ip *InputParameters.InputParameters2D, err error) {
	var (
		data []byte
	)
	if len(m2d.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	if data, err = os.ReadFile(m2d.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters2D{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("unable to parse %s: %w", m2d.ICFile, err)
		return
	}
	if err = ip.Validate(); err != nil {
		err = fmt.Errorf("invalid input in %s: %w", m2d.ICFile, err)
		return
	}
	return
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Nx, Ny\n\t- FinalTime\n\t- Obstacles")
	TwoDCmd.Flags().BoolP("graph", "g", false, "save an image of the solution while computing")
	TwoDCmd.Flags().IntP("plotSteps", "s", 10, "number of steps before plotting each frame")
	TwoDCmd.Flags().IntP("graphField", "q", 0, "which field should be displayed - 0=density, 1=speed, 2=divergence, 3=pressure")
	TwoDCmd.Flags().StringP("plotFile", "o", "frame_%d.png", "image file name, %d is replaced by the step number")
	TwoDCmd.Flags().IntP("procLimit", "p", 0, "maximum number of go routines used for the solution, 0 = one per CPU")
	TwoDCmd.Flags().Bool("quiet", false, "suppress the progress table")
	_ = viper.BindPFlag("procLimit", TwoDCmd.Flags().Lookup("procLimit"))
}

func Run2D(m2d *Model2D, ip *InputParameters.InputParameters2D) (err error) {
	var (
		c *Fluid2D.Fluid
	)
	if !m2d.Quiet {
		ip.Print()
	}
	if c, err = Fluid2D.NewFluidFromInput(ip, m2d.ProcLimit, !m2d.Quiet); err != nil {
		return
	}
	defer c.Close()
	pm := &Fluid2D.PlotMeta{
		Plot:            m2d.Graph,
		Field:           Fluid2D.PlotField(m2d.GraphField),
		StepsBeforePlot: m2d.PlotSteps,
		FileName:        m2d.PlotFile,
	}
	logrus.Debugf("plotting %s every %d steps", pm.Field, pm.StepsBeforePlot)
	return c.Solve(pm)
}
