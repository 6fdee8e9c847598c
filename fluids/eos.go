package fluids

import (
	"fmt"
	"math"
	"strings"
)

type EOSKind uint8

const (
	EOS_GammaLaw EOSKind = iota
	EOS_StiffenedGas
)

var (
	EOSNames = map[string]EOSKind{
		"gamma-law": EOS_GammaLaw,
		"gammalaw":  EOS_GammaLaw,
		"stiffened": EOS_StiffenedGas,
	}
	EOSPrintNames = []string{"Gamma Law", "Stiffened Gas"}
)

func (ek EOSKind) String() string {
	return EOSPrintNames[ek]
}

func NewEOSKind(label string) (ek EOSKind, err error) {
	var ok bool
	label = strings.ToLower(label)
	if ek, ok = EOSNames[label]; !ok {
		err = fmt.Errorf("unable to use equation of state named %s", label)
	}
	return
}

// EquationOfState closes the system by relating pressure, density and
// specific internal energy. All state and solver physics route through it.
type EquationOfState interface {
	Kind() EOSKind
	SoundSpeed(rho, p float64) (c float64, err error)
	SpecificInternalEnergy(rho, p float64) (e float64, err error)
	Pressure(rho, e float64) (p float64, err error)
	// PressureDerivatives returns chi = dp/drho at constant rho*e and
	// kappa = dp/d(rho*e) at constant rho.
	PressureDerivatives(rho, p float64) (chi, kappa float64)
}

// IdealGas is implemented by equations of state of the form
// p = (Gamma-1) rho e - Gamma PInf, which admit the closed form shock and
// rarefaction relations used by the exact Riemann solver.
type IdealGas interface {
	AdiabaticIndex() float64
	StiffeningPressure() float64
}

type GammaLaw struct {
	Gamma float64
}

func NewGammaLaw(gamma float64) (gl *GammaLaw, err error) {
	if !(gamma > 1) {
		err = fmt.Errorf("adiabatic index must exceed 1, have %v: %w", gamma, ErrDomain)
		return
	}
	gl = &GammaLaw{Gamma: gamma}
	return
}

func (gl *GammaLaw) Kind() EOSKind               { return EOS_GammaLaw }
func (gl *GammaLaw) AdiabaticIndex() float64     { return gl.Gamma }
func (gl *GammaLaw) StiffeningPressure() float64 { return 0 }

func (gl *GammaLaw) SoundSpeed(rho, p float64) (c float64, err error) {
	if err = checkRhoP(rho, p); err != nil {
		return
	}
	c = math.Sqrt(gl.Gamma * p / rho)
	return
}

func (gl *GammaLaw) SpecificInternalEnergy(rho, p float64) (e float64, err error) {
	if err = checkRhoP(rho, p); err != nil {
		return
	}
	e = p / ((gl.Gamma - 1) * rho)
	return
}

func (gl *GammaLaw) Pressure(rho, e float64) (p float64, err error) {
	if !(rho > 0) {
		err = fmt.Errorf("density %v: %w", rho, ErrDomain)
		return
	}
	p = (gl.Gamma - 1) * rho * e
	return
}

func (gl *GammaLaw) PressureDerivatives(rho, p float64) (chi, kappa float64) {
	return 0, gl.Gamma - 1
}

// StiffenedGas is p = (Gamma-1) rho e - Gamma PInf, a gamma law shifted by
// the stiffening pressure PInf. PInf = 0 recovers GammaLaw.
type StiffenedGas struct {
	Gamma, PInf float64
}

func NewStiffenedGas(gamma, pInf float64) (sg *StiffenedGas, err error) {
	if !(gamma > 1) || pInf < 0 {
		err = fmt.Errorf("stiffened gas gamma = %v, pInf = %v: %w", gamma, pInf, ErrDomain)
		return
	}
	sg = &StiffenedGas{Gamma: gamma, PInf: pInf}
	return
}

func (sg *StiffenedGas) Kind() EOSKind               { return EOS_StiffenedGas }
func (sg *StiffenedGas) AdiabaticIndex() float64     { return sg.Gamma }
func (sg *StiffenedGas) StiffeningPressure() float64 { return sg.PInf }

func (sg *StiffenedGas) SoundSpeed(rho, p float64) (c float64, err error) {
	if err = checkRhoP(rho, p); err != nil {
		return
	}
	c = math.Sqrt(sg.Gamma * (p + sg.PInf) / rho)
	return
}

func (sg *StiffenedGas) SpecificInternalEnergy(rho, p float64) (e float64, err error) {
	if err = checkRhoP(rho, p); err != nil {
		return
	}
	e = (p + sg.Gamma*sg.PInf) / ((sg.Gamma - 1) * rho)
	return
}

func (sg *StiffenedGas) Pressure(rho, e float64) (p float64, err error) {
	if !(rho > 0) {
		err = fmt.Errorf("density %v: %w", rho, ErrDomain)
		return
	}
	p = (sg.Gamma-1)*rho*e - sg.Gamma*sg.PInf
	return
}

func (sg *StiffenedGas) PressureDerivatives(rho, p float64) (chi, kappa float64) {
	return 0, sg.Gamma - 1
}

func checkRhoP(rho, p float64) (err error) {
	if !(rho > 0) || !(p > 0) || math.IsInf(rho, 0) || math.IsInf(p, 0) {
		err = fmt.Errorf("rho = %v, p = %v: %w", rho, p, ErrDomain)
	}
	return
}
