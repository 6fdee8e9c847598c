package riemann

import (
	"fmt"

	"github.com/notargets/gofluids/fluids"
)

// hllPattern is a single intermediate state between the extreme signal
// speeds sL and sR.
type hllPattern struct {
	fd       *fluids.FluidDescriptor
	L, R     *side
	sL, sR   float64
	U, F     []float64 // intermediate state and flux
	P        []float64
	stateErr error // set when U does not invert to a valid state
}

func newHLLPattern(fd *fluids.FluidDescriptor, L, R *side, sL, sR float64) (hp *hllPattern) {
	var (
		N    = fd.NumFields()
		oodS = 1. / (sR - sL)
	)
	hp = &hllPattern{
		fd: fd, L: L, R: R, sL: sL, sR: sR,
		U: make([]float64, N),
		F: make([]float64, N),
	}
	for n := 0; n < N; n++ {
		hp.U[n] = (sR*R.U[n] - sL*L.U[n] + L.F[n] - R.F[n]) * oodS
		hp.F[n] = (sR*L.F[n] - sL*R.F[n] + sL*sR*(R.U[n]-L.U[n])) * oodS
	}
	var st *fluids.FluidState
	if st, hp.stateErr = fluids.NewFluidStateU(fd, hp.U); hp.stateErr == nil {
		hp.P = st.Primitive()
	}
	return
}

func (hp *hllPattern) sample(s float64) (P []float64, err error) {
	switch {
	case s <= hp.sL:
		return copyOf(hp.L.P), nil
	case s >= hp.sR:
		return copyOf(hp.R.P), nil
	}
	if hp.stateErr != nil {
		return nil, fmt.Errorf("HLL intermediate state: %w", hp.stateErr)
	}
	return copyOf(hp.P), nil
}

func (hp *hllPattern) flux(s float64) (F []float64, err error) {
	switch {
	case s <= hp.sL:
		return copyOf(hp.L.F), nil
	case s >= hp.sR:
		return copyOf(hp.R.F), nil
	}
	return copyOf(hp.F), nil
}

func (hp *hllPattern) waveSpeeds() (sL, sStar, sR float64) {
	// The HLL fan has no contact; report the speed of its mass-weighted center
	sStar = hp.F[fluids.RHO] / hp.U[fluids.RHO]
	return hp.sL, sStar, hp.sR
}

// hllcPattern restores the contact wave with left and right star states.
type hllcPattern struct {
	L, R           *side
	sL, sStar, sR  float64
	UStarL, UStarR []float64
	FStarL, FStarR []float64
	PStarL, PStarR []float64
	errL, errR     error
}

func newHLLCPattern(fd *fluids.FluidDescriptor, L, R *side, sL, sR float64, dim int) (hp *hllcPattern) {
	hp = &hllcPattern{L: L, R: R, sL: sL, sR: sR}
	hp.sStar = contactSpeed(L, R, sL, sR)
	hp.UStarL, hp.FStarL = starState(fd, L, sL, hp.sStar, dim)
	hp.UStarR, hp.FStarR = starState(fd, R, sR, hp.sStar, dim)
	var st *fluids.FluidState
	if st, hp.errL = fluids.NewFluidStateU(fd, hp.UStarL); hp.errL == nil {
		hp.PStarL = st.Primitive()
	}
	if st, hp.errR = fluids.NewFluidStateU(fd, hp.UStarR); hp.errR == nil {
		hp.PStarR = st.Primitive()
	}
	return
}

// starState is the HLLC star region state next to side K and its flux from
// the Rankine-Hugoniot condition across the sK wave.
func starState(fd *fluids.FluidDescriptor, K *side, sK, sStar float64, dim int) (U, F []float64) {
	var (
		N      = fd.NumFields()
		factor = K.rho * (sK - K.u) / (sK - sStar)
		E      = K.U[fluids.NRG]
	)
	U = make([]float64, N)
	F = make([]float64, N)
	U[fluids.RHO] = factor
	for d := 0; d < fluids.SpatialRank; d++ {
		U[fluids.MX+d] = factor * K.P[fluids.VX+d]
	}
	U[fluids.MX+dim] = factor * sStar
	U[fluids.NRG] = factor * (E/K.rho + (sStar-K.u)*(sStar+K.p/(K.rho*(sK-K.u))))
	for n := fluids.NumHydro; n < N; n++ {
		if !fd.Advected(n) {
			// Static field, no flux across any wave
			U[n] = K.U[n]
			continue
		}
		U[n] = factor * K.P[n]
	}
	for n := 0; n < N; n++ {
		F[n] = K.F[n] + sK*(U[n]-K.U[n])
	}
	return
}

func (hp *hllcPattern) sample(s float64) (P []float64, err error) {
	switch {
	case s <= hp.sL:
		return copyOf(hp.L.P), nil
	case s <= hp.sStar:
		if hp.errL != nil {
			return nil, fmt.Errorf("HLLC left star state: %w", hp.errL)
		}
		return copyOf(hp.PStarL), nil
	case s < hp.sR:
		if hp.errR != nil {
			return nil, fmt.Errorf("HLLC right star state: %w", hp.errR)
		}
		return copyOf(hp.PStarR), nil
	}
	return copyOf(hp.R.P), nil
}

func (hp *hllcPattern) flux(s float64) (F []float64, err error) {
	switch {
	case s <= hp.sL:
		return copyOf(hp.L.F), nil
	case s <= hp.sStar:
		return copyOf(hp.FStarL), nil
	case s < hp.sR:
		return copyOf(hp.FStarR), nil
	}
	return copyOf(hp.R.F), nil
}

func (hp *hllcPattern) waveSpeeds() (sL, sStar, sR float64) {
	return hp.sL, hp.sStar, hp.sR
}

func copyOf(a []float64) (b []float64) {
	b = make([]float64, len(a))
	copy(b, a)
	return
}
