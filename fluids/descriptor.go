package fluids

import (
	"fmt"
	"strings"
)

type FluidModel uint8

const (
	Hydro        FluidModel = iota // Non-relativistic hydrodynamics, 5 fields
	HydroPassive                   // Hydro plus advected passive scalars
	HydroGravity                   // Hydro plus static potential and gradient
)

var (
	ModelNames = map[string]FluidModel{
		"hydro":   Hydro,
		"nrhyd":   Hydro,
		"passive": HydroPassive,
		"gravity": HydroGravity,
	}
	ModelPrintNames = []string{"Hydro", "Hydro + Passive Scalars", "Hydro + Gravity"}
)

func (fm FluidModel) String() string {
	return ModelPrintNames[fm]
}

func NewFluidModel(label string) (fm FluidModel, err error) {
	var ok bool
	label = strings.ToLower(label)
	if fm, ok = ModelNames[label]; !ok {
		err = fmt.Errorf("unable to use fluid model named %s", label)
	}
	return
}

// Index layout shared by every model. Extra fields follow the hydro block.
const (
	RHO = 0 // primitive density / conserved density
	PRE = 1 // primitive pressure
	VX  = 2 // primitive velocity, VX+d for axis d
	NRG = 1 // conserved total energy
	MX  = 2 // conserved momentum, MX+d for axis d

	NumHydro     = 5
	SpatialRank  = 3
	NumGravity   = 4
	DefaultGamma = 1.4
)

type fieldKind uint8

const (
	passiveField fieldKind = iota // advected with the flow, conserved as rho*s
	staticField                   // carried, never advected
)

type modelSpec struct {
	extras func(numPassive int) (kinds []fieldKind, err error)
}

var modelTable = map[FluidModel]modelSpec{
	Hydro: {
		extras: func(numPassive int) (kinds []fieldKind, err error) {
			if numPassive != 0 {
				err = fmt.Errorf("hydro model carries no passive scalars, have %d: %w", numPassive, ErrShape)
			}
			return
		},
	},
	HydroPassive: {
		extras: func(numPassive int) (kinds []fieldKind, err error) {
			if numPassive < 1 {
				err = fmt.Errorf("passive model needs at least one scalar, have %d: %w", numPassive, ErrShape)
				return
			}
			kinds = make([]fieldKind, numPassive)
			for i := range kinds {
				kinds[i] = passiveField
			}
			return
		},
	},
	HydroGravity: {
		extras: func(numPassive int) (kinds []fieldKind, err error) {
			if numPassive != 0 {
				err = fmt.Errorf("gravity model carries no passive scalars, have %d: %w", numPassive, ErrShape)
				return
			}
			kinds = make([]fieldKind, NumGravity)
			for i := range kinds {
				kinds[i] = staticField
			}
			return
		},
	},
}

// FluidDescriptor identifies the physical model and equation of state. It is
// immutable after construction and shared by pointer among states.
type FluidDescriptor struct {
	model      FluidModel
	eos        EquationOfState
	numPassive int
	extras     []fieldKind
}

func NewFluidDescriptor(model FluidModel, eos EquationOfState, numPassive int) (fd *FluidDescriptor, err error) {
	var (
		spec   modelSpec
		ok     bool
		extras []fieldKind
	)
	if spec, ok = modelTable[model]; !ok {
		err = fmt.Errorf("unknown fluid model %d", model)
		return
	}
	if eos == nil {
		err = fmt.Errorf("nil equation of state: %w", ErrConfiguration)
		return
	}
	if extras, err = spec.extras(numPassive); err != nil {
		return
	}
	fd = &FluidDescriptor{
		model:      model,
		eos:        eos,
		numPassive: numPassive,
		extras:     extras,
	}
	return
}

// NewDefaultDescriptor is the hydro model with a gamma = 1.4 gamma law.
func NewDefaultDescriptor() (fd *FluidDescriptor) {
	fd, _ = NewFluidDescriptor(Hydro, &GammaLaw{Gamma: DefaultGamma}, 0)
	return
}

// NewFluidDescriptorByName builds a descriptor from configuration labels.
// pInf is only used by the stiffened gas equation of state.
func NewFluidDescriptorByName(model, eos string, gamma, pInf float64, numPassive int) (fd *FluidDescriptor, err error) {
	var (
		fm FluidModel
		ek EOSKind
		e  EquationOfState
	)
	if fm, err = NewFluidModel(model); err != nil {
		return
	}
	if ek, err = NewEOSKind(eos); err != nil {
		return
	}
	switch ek {
	case EOS_GammaLaw:
		e, err = NewGammaLaw(gamma)
	case EOS_StiffenedGas:
		e, err = NewStiffenedGas(gamma, pInf)
	}
	if err != nil {
		return
	}
	return NewFluidDescriptor(fm, e, numPassive)
}

func (fd *FluidDescriptor) Model() FluidModel    { return fd.model }
func (fd *FluidDescriptor) EOS() EquationOfState { return fd.eos }
func (fd *FluidDescriptor) NumPassive() int      { return fd.numPassive }

// NumFields is the length of the primitive and conserved vectors.
func (fd *FluidDescriptor) NumFields() int { return NumHydro + len(fd.extras) }

// Advected reports whether field n moves with the flow. Hydro fields and
// passive scalars do, static fields do not.
func (fd *FluidDescriptor) Advected(n int) bool {
	if n < NumHydro {
		return true
	}
	return fd.extras[n-NumHydro] == passiveField
}

// Compatible reports whether states built from fd and other can be mixed.
func (fd *FluidDescriptor) Compatible(other *FluidDescriptor) bool {
	if fd == other {
		return true
	}
	if fd == nil || other == nil {
		return false
	}
	if fd.model != other.model || fd.numPassive != other.numPassive || fd.eos.Kind() != other.eos.Kind() {
		return false
	}
	switch a := fd.eos.(type) {
	case IdealGas:
		b, ok := other.eos.(IdealGas)
		return ok && a.AdiabaticIndex() == b.AdiabaticIndex() &&
			a.StiffeningPressure() == b.StiffeningPressure()
	}
	return fd.eos == other.eos
}

func (fd *FluidDescriptor) Print() (txt string) {
	txt = fmt.Sprintf("Model = %s, EOS = %s, NumFields = %d", fd.model, fd.eos.Kind(), fd.NumFields())
	if ig, ok := fd.eos.(IdealGas); ok {
		txt += fmt.Sprintf(", Gamma = %v", ig.AdiabaticIndex())
	}
	return
}
