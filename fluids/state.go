package fluids

import (
	"fmt"
	"math"

	"github.com/notargets/gofluids/utils"
)

// FluidState is one point's primitive variables, the canonical representation.
// Conserved variables, flux, Jacobian and eigensystem are derived on demand
// and optionally memoized.
//
// Primitive layout: rho, p, vx, vy, vz, extras...
// Conserved layout: rho, E, mx, my, mz, extras...
type FluidState struct {
	Descriptor *FluidDescriptor
	prim       []float64 // may alias a FluidStateVector backing store
	gen        *uint64   // bumped by every mutation, shared with an owning vector
	cache      *stateCache
}

func NewFluidState(fd *FluidDescriptor) (s *FluidState) {
	s = &FluidState{
		Descriptor: fd,
		prim:       make([]float64, fd.NumFields()),
		gen:        new(uint64),
	}
	return
}

func NewFluidStateP(fd *FluidDescriptor, P []float64) (s *FluidState, err error) {
	s = NewFluidState(fd)
	if err = s.SetPrimitive(P); err != nil {
		s = nil
	}
	return
}

func NewFluidStateU(fd *FluidDescriptor, U []float64) (s *FluidState, err error) {
	s = NewFluidState(fd)
	if err = s.SetConserved(U); err != nil {
		s = nil
	}
	return
}

func (s *FluidState) NumFields() int { return len(s.prim) }

// Primitive returns a copy of the primitive vector.
func (s *FluidState) Primitive() (P []float64) {
	P = make([]float64, len(s.prim))
	copy(P, s.prim)
	return
}

func (s *FluidState) Density() float64         { return s.prim[RHO] }
func (s *FluidState) Pressure() float64        { return s.prim[PRE] }
func (s *FluidState) Velocity(dim int) float64 { return s.prim[VX+dim] }

// SetPrimitive stores P after validation. A rejected P leaves the state intact.
func (s *FluidState) SetPrimitive(P []float64) (err error) {
	if err = validatePrimitive(s.Descriptor, P); err != nil {
		return
	}
	copy(s.prim, P)
	s.touch()
	return
}

// SetConserved inverts U into primitive variables and stores them.
func (s *FluidState) SetConserved(U []float64) (err error) {
	var P = make([]float64, len(s.prim))
	if err = consToPrim(s.Descriptor, U, P); err != nil {
		return
	}
	copy(s.prim, P)
	s.touch()
	return
}

func (s *FluidState) FromConserved(U []float64) error { return s.SetConserved(U) }

func (s *FluidState) Conserved() (U []float64, err error) {
	if c := s.validCache(); c != nil && c.conserved != nil {
		return copyOf(c.conserved), nil
	}
	U = make([]float64, len(s.prim))
	if err = primToCons(s.Descriptor, s.prim, U); err != nil {
		return nil, err
	}
	if c := s.validCache(); c != nil {
		c.conserved = copyOf(U)
	}
	return
}

// Flux is the physical flux of the conservation law along axis dim.
func (s *FluidState) Flux(dim int) (F []float64, err error) {
	if err = checkDim(dim); err != nil {
		return
	}
	if c := s.validCache(); c != nil && c.flux[dim] != nil {
		return copyOf(c.flux[dim]), nil
	}
	F = make([]float64, len(s.prim))
	if err = flux(s.Descriptor, s.prim, dim, F); err != nil {
		return nil, err
	}
	if c := s.validCache(); c != nil {
		c.flux[dim] = copyOf(F)
	}
	return
}

func (s *FluidState) SoundSpeed() (c float64, err error) {
	if err = validatePrimitive(s.Descriptor, s.prim); err != nil {
		return
	}
	return s.Descriptor.eos.SoundSpeed(s.prim[RHO], s.prim[PRE])
}

// MaxWaveSpeed is |v_dim| + c, the fastest characteristic along dim.
func (s *FluidState) MaxWaveSpeed(dim int) (a float64, err error) {
	var c float64
	if err = checkDim(dim); err != nil {
		return
	}
	if c, err = s.SoundSpeed(); err != nil {
		return
	}
	a = math.Abs(s.prim[VX+dim]) + c
	return
}

// SourceTerms returns the conserved-variable source due to the gravitational
// field carried by the HydroGravity model, zero for the other models.
func (s *FluidState) SourceTerms() (S []float64, err error) {
	var (
		fd  = s.Descriptor
		rho = s.prim[RHO]
	)
	if err = validatePrimitive(fd, s.prim); err != nil {
		return
	}
	S = make([]float64, len(s.prim))
	if fd.model != HydroGravity {
		return
	}
	// Extras are phi, gx, gy, gz with g the gradient of phi
	g := s.prim[NumHydro+1 : NumHydro+4]
	for d := 0; d < SpatialRank; d++ {
		v := s.prim[VX+d]
		S[MX+d] = -rho * g[d]
		S[NRG] -= rho * v * g[d]
	}
	return
}

// Copy returns an independent state with the same descriptor and values. The
// copy does not alias any vector storage and starts with caching disabled.
func (s *FluidState) Copy() (sc *FluidState) {
	sc = NewFluidState(s.Descriptor)
	copy(sc.prim, s.prim)
	return
}

func (s *FluidState) Print() (o string) {
	o = fmt.Sprintf("Rho = %v, P = %v, V = %v", s.prim[RHO], s.prim[PRE], s.prim[VX:VX+SpatialRank])
	if len(s.prim) > NumHydro {
		o += fmt.Sprintf(", Extras = %v", s.prim[NumHydro:])
	}
	return
}

func (s *FluidState) touch() { *s.gen++ }

func checkDim(dim int) (err error) {
	if dim < 0 || dim >= SpatialRank {
		err = fmt.Errorf("axis %d not in [0,%d): %w", dim, SpatialRank, ErrDimension)
	}
	return
}

func copyOf(a []float64) (b []float64) {
	b = make([]float64, len(a))
	copy(b, a)
	return
}

func validatePrimitive(fd *FluidDescriptor, P []float64) (err error) {
	if len(P) != fd.NumFields() {
		return fmt.Errorf("primitive length %d, model needs %d: %w", len(P), fd.NumFields(), ErrShape)
	}
	if utils.IsNan(P) || utils.IsInf(P) {
		return fmt.Errorf("non-finite primitive %v: %w", P, ErrInvalidState)
	}
	if !(P[RHO] > 0) || !(P[PRE] > 0) {
		return fmt.Errorf("rho = %v, p = %v: %w", P[RHO], P[PRE], ErrInvalidState)
	}
	return
}

func primToCons(fd *FluidDescriptor, P, U []float64) (err error) {
	var (
		rho, p = P[RHO], P[PRE]
		e, q2  float64
	)
	if err = validatePrimitive(fd, P); err != nil {
		return
	}
	if e, err = fd.eos.SpecificInternalEnergy(rho, p); err != nil {
		return
	}
	for d := 0; d < SpatialRank; d++ {
		v := P[VX+d]
		q2 += v * v
		U[MX+d] = rho * v
	}
	U[RHO] = rho
	U[NRG] = rho*e + 0.5*rho*q2
	for k, kind := range fd.extras {
		switch kind {
		case passiveField:
			U[NumHydro+k] = rho * P[NumHydro+k]
		case staticField:
			U[NumHydro+k] = P[NumHydro+k]
		}
	}
	return
}

// consToPrim writes the primitive inversion of U into P. P is only usable
// when err is nil.
func consToPrim(fd *FluidDescriptor, U, P []float64) (err error) {
	var (
		rho   float64
		q2, e float64
		p     float64
	)
	if len(U) != fd.NumFields() || len(P) != fd.NumFields() {
		return fmt.Errorf("conserved length %d, model needs %d: %w", len(U), fd.NumFields(), ErrShape)
	}
	rho = U[RHO]
	if !(rho > 0) || math.IsInf(rho, 0) {
		return fmt.Errorf("conserved density %v: %w", rho, ErrInvalidState)
	}
	for d := 0; d < SpatialRank; d++ {
		v := U[MX+d] / rho
		P[VX+d] = v
		q2 += v * v
	}
	e = (U[NRG] - 0.5*rho*q2) / rho
	if p, err = fd.eos.Pressure(rho, e); err != nil {
		return
	}
	P[RHO], P[PRE] = rho, p
	for k, kind := range fd.extras {
		switch kind {
		case passiveField:
			P[NumHydro+k] = U[NumHydro+k] / rho
		case staticField:
			P[NumHydro+k] = U[NumHydro+k]
		}
	}
	return validatePrimitive(fd, P)
}

func flux(fd *FluidDescriptor, P []float64, dim int, F []float64) (err error) {
	var (
		rho, p = P[RHO], P[PRE]
		vd     = P[VX+dim]
		e, q2  float64
	)
	if err = validatePrimitive(fd, P); err != nil {
		return
	}
	if e, err = fd.eos.SpecificInternalEnergy(rho, p); err != nil {
		return
	}
	for d := 0; d < SpatialRank; d++ {
		v := P[VX+d]
		q2 += v * v
		F[MX+d] = rho * v * vd
	}
	F[MX+dim] += p
	F[RHO] = rho * vd
	F[NRG] = (rho*e + 0.5*rho*q2 + p) * vd
	for k, kind := range fd.extras {
		switch kind {
		case passiveField:
			F[NumHydro+k] = rho * P[NumHydro+k] * vd
		case staticField:
			F[NumHydro+k] = 0
		}
	}
	return
}
