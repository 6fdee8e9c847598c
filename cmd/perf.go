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
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gofluids/fluids"
	"github.com/notargets/gofluids/utils"
)

type PerfRun struct {
	Size           int // Grid is Size^3
	Iterations     int
	ParallelDegree int // 0 is the CPU count
}

// PerfCmd represents the perf command
var PerfCmd = &cobra.Command{
	Use:   "perf",
	Short: "Time bulk primitive and conserved conversions on a 3D grid",
	Long: `
Fills a Size^3 grid of states, then repeatedly converts it to conserved
variables and back. Optionally records a CPU or memory profile in the
current directory.

gofluids perf -n 32 -i 10 --profile cpu`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			pr   = &PerfRun{}
			prof string
		)
		pr.Size, _ = cmd.Flags().GetInt("size")
		pr.Iterations, _ = cmd.Flags().GetInt("iterations")
		pr.ParallelDegree, _ = cmd.Flags().GetInt("parallel")
		prof, _ = cmd.Flags().GetString("profile")
		switch prof {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			return fmt.Errorf("unknown profile %q, use cpu or mem: %w", prof, fluids.ErrConfiguration)
		}
		return RunPerf(cmd.OutOrStdout(), pr)
	},
}

func init() {
	rootCmd.AddCommand(PerfCmd)
	PerfCmd.Flags().IntP("size", "n", 32, "grid points along each of the three axes")
	PerfCmd.Flags().IntP("iterations", "i", 10, "number of conversion round trips")
	PerfCmd.Flags().IntP("parallel", "p", 0, "goroutines per bulk operation, 0 for the CPU count")
	PerfCmd.Flags().String("profile", "", "record a profile: cpu or mem")
}

func RunPerf(w io.Writer, pr *PerfRun) (err error) {
	var (
		fv    *fluids.FluidStateVector
		U     []float64
		n     = pr.Size
		shape = []int{n, n, n}
	)
	if fv, err = fluids.NewFluidStateVector(shape, fluids.NewDefaultDescriptor()); err != nil {
		return
	}
	fv.SetParallelDegree(pr.ParallelDegree)
	// Density varies along x so every element differs
	P := make([]float64, n*5)
	for i, x := range utils.Linspace(0, 1, n) {
		copy(P[i*5:], []float64{1 + x, 1, 0.1, 0.2, 0.3})
	}
	before := utils.GetMemUsage()
	start := time.Now()
	for it := 0; it < pr.Iterations; it++ {
		if err = fv.SetPrimitive(P, n, 1, 1, 5); err != nil {
			return
		}
		if U, err = fv.Conserved(); err != nil {
			return
		}
		if err = fv.FromConserved(U); err != nil {
			return
		}
	}
	elapsed := time.Since(start)
	perState := elapsed / time.Duration(max(1, pr.Iterations*fv.Len()))
	fmt.Fprintf(w, "%d states, %d iterations: %v total, %v per state round trip\n",
		fv.Len(), pr.Iterations, elapsed, perState)
	fmt.Fprintf(w, "Memory before: %s\nMemory after:  %s\n", before, utils.GetMemUsage())
	return
}
