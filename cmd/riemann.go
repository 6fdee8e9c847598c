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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofluids/InputParameters"
	"github.com/notargets/gofluids/fluids"
	"github.com/notargets/gofluids/riemann"
	"github.com/notargets/gofluids/utils"
)

const exampleFile = `
########################################
Title: "Sod Shock Tube"
Model: hydro         # hydro, passive or gravity
EOS: gamma-law       # gamma-law or stiffened
Gamma: 1.4
Solver: exact        # exact, hll or hllc
Estimate: einfeldt   # einfeldt, davis or pressure, for hll and hllc
Dim: 0
Left:  [1.0,   1.0, 0, 0, 0]
Right: [0.125, 0.1, 0, 0, 0]
XiMin: -2
XiMax: 2
NPoints: 101
########################################
`

// RiemannCmd represents the riemann command
var RiemannCmd = &cobra.Command{
	Use:   "riemann",
	Short: "Sample the solution of a Riemann problem along x/t",
	Long: `
Reads a Riemann problem from a YAML input file and prints the solution
sampled along the ray xi = x/t as columns: xi rho p vx vy vz
Without an input file the Sod shock tube is solved. An example input file:
` + exampleFile,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			icFile string
			data   []byte
			rp     = InputParameters.NewRiemannParameters()
		)
		if icFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		if len(icFile) != 0 {
			if data, err = os.ReadFile(icFile); err != nil {
				return
			}
			if err = rp.Parse(data); err != nil {
				return
			}
		}
		applyOverrides(rp)
		if viper.GetBool("verbose") {
			rp.Print()
		}
		return RunRiemann(cmd.OutOrStdout(), rp)
	},
}

func init() {
	rootCmd.AddCommand(RiemannCmd)
	RiemannCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the left and right states")
	RiemannCmd.Flags().StringP("solver", "s", "", "override the input file solver: exact, hll or hllc")
	RiemannCmd.Flags().StringP("estimate", "e", "", "override the wave speed estimate: einfeldt, davis or pressure")
	RiemannCmd.Flags().IntP("npoints", "n", 0, "override the number of sample points")
	_ = viper.BindPFlag("solver", RiemannCmd.Flags().Lookup("solver"))
	_ = viper.BindPFlag("estimate", RiemannCmd.Flags().Lookup("estimate"))
	_ = viper.BindPFlag("npoints", RiemannCmd.Flags().Lookup("npoints"))
}

// applyOverrides takes flags, then GOFLUIDS_* environment variables, then
// the config file over the input deck.
func applyOverrides(rp *InputParameters.RiemannParameters) {
	if s := viper.GetString("solver"); len(s) != 0 {
		rp.Solver = s
	}
	if s := viper.GetString("estimate"); len(s) != 0 {
		rp.Estimate = s
	}
	if n := viper.GetInt("npoints"); n > 1 {
		rp.NPoints = n
	}
}

// RunRiemann solves the problem in rp and writes the sampled table to w.
func RunRiemann(w io.Writer, rp *InputParameters.RiemannParameters) (err error) {
	var (
		rs *riemann.RiemannSolver
		st *fluids.FluidState
	)
	if rs, err = rp.Build(); err != nil {
		return
	}
	if warn := rs.Warning(); warn != nil {
		fmt.Fprintf(w, "# warning: %s\n", warn)
	}
	if rs.Solver == riemann.Exact {
		pStar, uStar, _ := rs.StarState()
		fmt.Fprintf(w, "# %s, p* = %.8g, u* = %.8g\n", rp.Title, pStar, uStar)
	} else {
		sL, sStar, sR, _ := rs.WaveSpeeds()
		fmt.Fprintf(w, "# %s, %s, SL = %.8g, S* = %.8g, SR = %.8g\n", rp.Title, rs.Solver, sL, sStar, sR)
	}
	fmt.Fprintf(w, "%14s %14s %14s %14s %14s %14s\n", "xi", "rho", "p", "vx", "vy", "vz")
	for _, xi := range utils.Linspace(rp.XiMin, rp.XiMax, rp.NPoints) {
		if st, err = rs.Sample(xi); err != nil {
			return fmt.Errorf("xi = %v: %w", xi, err)
		}
		fmt.Fprintf(w, "%14.6e %14.6e %14.6e %14.6e %14.6e %14.6e\n", xi,
			st.Density(), st.Pressure(), st.Velocity(0), st.Velocity(1), st.Velocity(2))
	}
	return
}
