package riemann

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/notargets/gofluids/fluids"
)

type SolverType uint8

const (
	Exact SolverType = iota
	HLL
	HLLC
)

var (
	SolverNames = map[string]SolverType{
		"exact": Exact,
		"hll":   HLL,
		"hllc":  HLLC,
	}
	SolverPrintNames = []string{"Exact", "HLL", "HLLC"}
)

func (st SolverType) String() string {
	return SolverPrintNames[st]
}

func NewSolverType(label string) (st SolverType, err error) {
	var ok bool
	label = strings.ToLower(label)
	if st, ok = SolverNames[label]; !ok {
		err = fmt.Errorf("unable to use Riemann solver named %s", label)
	}
	return
}

const (
	DefaultTolerance     = 1.e-14
	DefaultMaxIterations = 100
)

// RiemannSolver samples the self-similar solution of the Riemann problem
// between two constant states along the ray s = x/t, x measured along Dim.
//
// The configuration fields are read by SetStates; changes take effect on the
// next call to SetStates.
type RiemannSolver struct {
	Solver        SolverType
	Dim           int               // Normal axis of the interface
	Estimate      WaveSpeedEstimate // Wave speed estimate for HLL and HLLC
	Tolerance     float64           // Relative pressure change for the exact solver
	MaxIterations int               // Newton iteration cap for the exact solver
	Logger        *slog.Logger

	left, right *fluids.FluidState
	pattern     wavePattern
	warning     *ConvergenceWarning
}

// wavePattern is the solution structure computed once per left/right pair.
type wavePattern interface {
	sample(s float64) (P []float64, err error)
	flux(s float64) (F []float64, err error)
	waveSpeeds() (sL, sStar, sR float64)
}

func NewRiemannSolver(st SolverType) (rs *RiemannSolver) {
	rs = &RiemannSolver{
		Solver:        st,
		Estimate:      Estimate_Einfeldt,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Logger:        slog.Default(),
	}
	return
}

// ConvergenceWarning reports that the exact solver hit its iteration cap. The
// sampled solution uses the best iterate and remains usable.
type ConvergenceWarning struct {
	Iterations int
	Change     float64 // relative pressure change of the last Newton step
	Pressure   float64 // best star pressure
}

func (cw *ConvergenceWarning) Error() string {
	return fmt.Sprintf("exact Riemann solver did not converge in %d iterations, change = %v, p* = %v",
		cw.Iterations, cw.Change, cw.Pressure)
}

// SetStates binds the left and right states, copying both, and computes the
// wave pattern. It may be called repeatedly; a failed call leaves the solver
// unconfigured.
func (rs *RiemannSolver) SetStates(L, R *fluids.FluidState) (err error) {
	var (
		sL, sR  *side
		pattern wavePattern
	)
	rs.left, rs.right, rs.pattern, rs.warning = nil, nil, nil, nil
	if L == nil || R == nil {
		return fmt.Errorf("nil state: %w", fluids.ErrConfiguration)
	}
	if !L.Descriptor.Compatible(R.Descriptor) {
		return fmt.Errorf("left %s, right %s: %w",
			L.Descriptor.Print(), R.Descriptor.Print(), fluids.ErrDescriptorMismatch)
	}
	if sL, err = newSide(L, rs.Dim); err != nil {
		return
	}
	if sR, err = newSide(R, rs.Dim); err != nil {
		return
	}
	switch rs.Solver {
	case Exact:
		var ep *exactPattern
		if ep, err = newExactPattern(L.Descriptor, sL, sR, rs.Dim); err != nil {
			return
		}
		if rs.warning = ep.solve(rs.tolerance(), rs.maxIterations()); rs.warning != nil {
			rs.logger().Warn("exact Riemann solver hit iteration cap, using best iterate",
				"iterations", rs.warning.Iterations,
				"change", rs.warning.Change,
				"p_star", rs.warning.Pressure)
		}
		pattern = ep
	case HLL, HLLC:
		var sMin, sMax float64
		if sMin, sMax, err = estimateWaveSpeeds(rs.Estimate, L.Descriptor, sL, sR); err != nil {
			return
		}
		if rs.Solver == HLL {
			pattern = newHLLPattern(L.Descriptor, sL, sR, sMin, sMax)
		} else {
			pattern = newHLLCPattern(L.Descriptor, sL, sR, sMin, sMax, rs.Dim)
		}
	default:
		return fmt.Errorf("unknown solver type %d: %w", rs.Solver, fluids.ErrConfiguration)
	}
	rs.left, rs.right, rs.pattern = L.Copy(), R.Copy(), pattern
	return
}

func (rs *RiemannSolver) Configured() bool { return rs.pattern != nil }

// Sample returns a new state holding the solution at ray position s = x/t.
func (rs *RiemannSolver) Sample(s float64) (st *fluids.FluidState, err error) {
	var P []float64
	if rs.pattern == nil {
		return nil, fmt.Errorf("Sample called before SetStates: %w", fluids.ErrConfiguration)
	}
	if P, err = rs.pattern.sample(s); err != nil {
		return
	}
	return fluids.NewFluidStateP(rs.left.Descriptor, P)
}

// Flux returns the flux along Dim of the solution at ray position s; s = 0
// is the Godunov flux across a stationary interface.
func (rs *RiemannSolver) Flux(s float64) (F []float64, err error) {
	if rs.pattern == nil {
		return nil, fmt.Errorf("Flux called before SetStates: %w", fluids.ErrConfiguration)
	}
	return rs.pattern.flux(s)
}

// WaveSpeeds returns the left, contact and right signal speeds. For the exact
// solver the outer speeds are the fastest left and right moving wave fronts.
func (rs *RiemannSolver) WaveSpeeds() (sL, sStar, sR float64, err error) {
	if rs.pattern == nil {
		err = fmt.Errorf("WaveSpeeds called before SetStates: %w", fluids.ErrConfiguration)
		return
	}
	sL, sStar, sR = rs.pattern.waveSpeeds()
	return
}

// StarState returns the exact solver's pressure and normal velocity between
// the outer waves.
func (rs *RiemannSolver) StarState() (pStar, uStar float64, err error) {
	ep, ok := rs.pattern.(*exactPattern)
	if !ok {
		err = fmt.Errorf("star state requires a configured exact solver: %w", fluids.ErrConfiguration)
		return
	}
	pStar, uStar = ep.pStar-ep.pInf, ep.uStar
	return
}

// Warning is non-nil when the exact solver exhausted its iteration cap for
// the current states.
func (rs *RiemannSolver) Warning() *ConvergenceWarning { return rs.warning }

func (rs *RiemannSolver) Left() *fluids.FluidState  { return rs.left }
func (rs *RiemannSolver) Right() *fluids.FluidState { return rs.right }

func (rs *RiemannSolver) tolerance() float64 {
	if rs.Tolerance <= 0 {
		return DefaultTolerance
	}
	return rs.Tolerance
}

func (rs *RiemannSolver) maxIterations() int {
	if rs.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return rs.MaxIterations
}

func (rs *RiemannSolver) logger() *slog.Logger {
	if rs.Logger == nil {
		return slog.Default()
	}
	return rs.Logger
}

// side is one constant initial state seen along the normal axis.
type side struct {
	P         []float64
	rho, p, u float64
	c         float64
	U, F      []float64 // conserved and normal flux
}

func newSide(s *fluids.FluidState, dim int) (sd *side, err error) {
	sd = &side{P: s.Primitive()}
	if sd.U, err = s.Conserved(); err != nil {
		return
	}
	if sd.F, err = s.Flux(dim); err != nil {
		return
	}
	if sd.c, err = s.SoundSpeed(); err != nil {
		return
	}
	sd.rho, sd.p, sd.u = s.Density(), s.Pressure(), s.Velocity(dim)
	return
}
