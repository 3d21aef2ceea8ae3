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
	"image/color"
	"io/ioutil"
	"os"

	"github.com/notargets/avs/chart2d"
	"github.com/spf13/cobra"

	"github.com/finitevolume/ibflow/config"
	"github.com/finitevolume/ibflow/field"
	"github.com/finitevolume/ibflow/fracstep"
	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/persist"
	"github.com/finitevolume/ibflow/visualize"
)

var trajectoryColors = []color.RGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
}

// RunCmd drives one fractional-step simulation from a YAML run file,
// the immersed-boundary analog of cmd/2D.go's grid-file-plus-input-file
// invocation for the DG Euler solver.
var RunCmd = &cobra.Command{
	Use: "run",
	Short: "Run an immersed-boundary fractional-step simulation",
	Long: `Run an immersed-boundary fractional-step simulation from a YAML run file.`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("inputFile")
		graph, _ := cmd.Flags().GetBool("graph")

		if inputFile == "" {
			fmt.Println("error: must supply a run file (-i, --inputFile)")
			os.Exit(1)
		}

		data, err := ioutil.ReadFile(inputFile)
		if err != nil {
			panic(err)
		}

		if err := runSimulation(data, graph); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputFile", "i", "", "YAML file describing run parameters and immersed boundaries")
	RunCmd.Flags().BoolP("graph", "g", false, "display a live cell-status graph while computing")
}

func runSimulation(data []byte, graph bool) error {
	var p config.RunParameters
	if err := p.Parse(data); err != nil {
		return err
	}
	p.Print()

	tree, err := config.LoadTree(data)
	if err != nil {
		return err
	}

	grid := gridmesh.NewStructuredChannelMesh(p.Nx, p.Ny, p.Lx, p.Ly)

	reg, err := tree.BuildRegistry(grid)
	if err != nil {
		return err
	}
	if err := reg.InitCellZones(); err != nil {
		return err
	}

	gravity := geometry2d.Point{X: p.GravityX, Y: p.GravityY}
	driver := fracstep.NewDriver(grid, reg, p.Rho, p.Mu, gravity, p.MaxTimeStep)
	driver.AccelerateLinearSolve = p.UseNativeBLAS
	driver.U.SetFixedValue("inlet", geometry2d.Point{X: p.InletVelocityX, Y: p.InletVelocityY})
	driver.U.SetBoundaryType("outlet", field.NormalGradient)
	driver.P.SetFixedValue("outlet", 0)
	driver.Initialize()

	var chart *chart2d.Chart2D
	trajectories := make(map[string][]geometry2d.Point)
	if graph {
		chart, err = visualize.CellStatusChart(grid, p.Nx, p.Ny, 1024, 1024)
		if err != nil {
			return err
		}
	}

	var forceLog *persist.ForceLog
	if p.ForceLogPath != "" {
		forceLog, err = persist.NewForceLog(p.ForceLogPath)
		if err != nil {
			return err
		}
		defer forceLog.Close()
	}

	dt := p.InitialStep
	if dt <= 0 {
		dt = p.MaxTimeStep
	}

	step := 0
	for driver.Time < p.FinalTime {
		maxDiv, maxCo, err := driver.Step(dt)
		if err != nil {
			return err
		}
		step++
		if p.OutputInterval == 0 || step%p.OutputInterval == 0 {
			fmt.Printf("step %d\tt=%.6f\tdt=%.6g\tmaxDiv=%.3g\tmaxCo=%.3g\n", step, driver.Time, dt, maxDiv, maxCo)
			if forceLog != nil {
				if err := forceLog.Write(driver.Time, reg.Bodies); err != nil {
					return err
				}
			}
			if chart != nil {
				for i, b := range reg.Bodies {
					trajectories[b.Name] = append(trajectories[b.Name], b.Centroid())
					col := trajectoryColors[i%len(trajectoryColors)]
					if err := visualize.PlotTrajectory(chart, b.Name+" trajectory", trajectories[b.Name], col); err != nil {
						return err
					}
				}
			}
		}
		dt = driver.ComputeMaxTimeStep(p.CFLMax, dt)
	}
	return nil
}
