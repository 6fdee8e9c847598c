package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofluids/fluids"
	"github.com/notargets/gofluids/riemann"
)

// Parameters obtained from the YAML input file. Left and Right are primitive
// states: rho, p, vx, vy, vz followed by any extra fields of the model.
type RiemannParameters struct {
	Title         string    `yaml:"Title"`
	Model         string    `yaml:"Model"`
	EOS           string    `yaml:"EOS"`
	Gamma         float64   `yaml:"Gamma"`
	PInf          float64   `yaml:"PInf"`
	NumPassive    int       `yaml:"NumPassive"`
	Solver        string    `yaml:"Solver"`
	Estimate      string    `yaml:"Estimate"`
	Dim           int       `yaml:"Dim"`
	Tolerance     float64   `yaml:"Tolerance"`
	MaxIterations int       `yaml:"MaxIterations"`
	Left          []float64 `yaml:"Left"`
	Right         []float64 `yaml:"Right"`
	XiMin         float64   `yaml:"XiMin"`
	XiMax         float64   `yaml:"XiMax"`
	NPoints       int       `yaml:"NPoints"`
}

// NewRiemannParameters returns the Sod problem along x, sampled with the
// exact solver.
func NewRiemannParameters() (rp *RiemannParameters) {
	rp = &RiemannParameters{
		Title:         "Sod Shock Tube",
		Model:         "hydro",
		EOS:           "gamma-law",
		Gamma:         fluids.DefaultGamma,
		Solver:        "exact",
		Estimate:      "einfeldt",
		Tolerance:     riemann.DefaultTolerance,
		MaxIterations: riemann.DefaultMaxIterations,
		Left:          []float64{1, 1, 0, 0, 0},
		Right:         []float64{0.125, 0.1, 0, 0, 0},
		XiMin:         -2,
		XiMax:         2,
		NPoints:       101,
	}
	return
}

// Parse overlays the YAML in data onto the current values.
func (rp *RiemannParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, rp); err != nil {
		return
	}
	if rp.NPoints < 2 {
		err = fmt.Errorf("NPoints must be at least 2, have %d: %w", rp.NPoints, fluids.ErrConfiguration)
		return
	}
	if rp.XiMax <= rp.XiMin {
		err = fmt.Errorf("XiMax = %v must exceed XiMin = %v: %w", rp.XiMax, rp.XiMin, fluids.ErrConfiguration)
	}
	return
}

// Build constructs the descriptor, the initial states and a configured
// solver from the parameters.
func (rp *RiemannParameters) Build() (rs *riemann.RiemannSolver, err error) {
	var (
		fd   *fluids.FluidDescriptor
		L, R *fluids.FluidState
		st   riemann.SolverType
	)
	if fd, err = fluids.NewFluidDescriptorByName(rp.Model, rp.EOS, rp.Gamma, rp.PInf, rp.NumPassive); err != nil {
		return
	}
	if L, err = fluids.NewFluidStateP(fd, rp.Left); err != nil {
		err = fmt.Errorf("left state: %w", err)
		return
	}
	if R, err = fluids.NewFluidStateP(fd, rp.Right); err != nil {
		err = fmt.Errorf("right state: %w", err)
		return
	}
	if st, err = riemann.NewSolverType(rp.Solver); err != nil {
		return
	}
	rs = riemann.NewRiemannSolver(st)
	rs.Dim = rp.Dim
	rs.Tolerance = rp.Tolerance
	rs.MaxIterations = rp.MaxIterations
	if len(rp.Estimate) != 0 {
		if rs.Estimate, err = riemann.NewWaveSpeedEstimate(rp.Estimate); err != nil {
			return
		}
	}
	if err = rs.SetStates(L, R); err != nil {
		rs = nil
	}
	return
}

func (rp *RiemannParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%s]\t\t\t= Model\n", rp.Model)
	fmt.Printf("[%s]\t\t= EOS\n", rp.EOS)
	fmt.Printf("%8.5f\t\t= Gamma\n", rp.Gamma)
	if rp.PInf != 0 {
		fmt.Printf("%8.5f\t\t= PInf\n", rp.PInf)
	}
	if rp.NumPassive != 0 {
		fmt.Printf("[%d]\t\t\t\t= Passive Scalars\n", rp.NumPassive)
	}
	fmt.Printf("[%s]\t\t\t= Solver\n", rp.Solver)
	fmt.Printf("[%s]\t\t= Wave Speed Estimate\n", rp.Estimate)
	fmt.Printf("[%d]\t\t\t\t= Normal Axis\n", rp.Dim)
	fmt.Printf("Left  = %v\n", rp.Left)
	fmt.Printf("Right = %v\n", rp.Right)
	fmt.Printf("[%8.5f, %8.5f] x %d\t= Sampling Range\n", rp.XiMin, rp.XiMax, rp.NPoints)
}
