package sod_shock_tube

import (
	"fmt"
	"math"

	"github.com/notargets/gofluids/utils"
)

// SodProblem is the closed form solution of the Sod shock tube for a gamma
// law gas, left (rho, p, u) = (1, 1, 0), right = (0.125, 0.1, 0). The wave
// pattern is a left rarefaction, a contact and a right shock.
type SodProblem struct {
	Gamma                float64
	RhoL, PL, UL         float64
	RhoR, PR, UR         float64
	CL, CR               float64
	PPost, VPost         float64 // pressure and velocity between the rarefaction and the shock
	RhoMiddle, RhoPost   float64 // density left and right of the contact
	VShock, VHead, VTail float64
	mu2                  float64
}

func NewSodProblem(gamma float64) (sp *SodProblem) {
	sp = &SodProblem{
		Gamma: gamma,
		RhoL:  1, PL: 1, UL: 0,
		RhoR: 0.125, PR: 0.1, UR: 0,
		mu2: (gamma - 1) / (gamma + 1),
	}
	sp.CL = math.Sqrt(gamma * sp.PL / sp.RhoL)
	sp.CR = math.Sqrt(gamma * sp.PR / sp.RhoR)
	sp.PPost = fzero(sp.pressureResidual, 0.5*(sp.PL+sp.PR))
	sp.VPost = sp.rarefactionVelocity(sp.PPost)
	sp.RhoPost = sp.RhoR * ((sp.PPost/sp.PR + sp.mu2) / (1 + sp.mu2*(sp.PPost/sp.PR)))
	sp.RhoMiddle = sp.RhoL * math.Pow(sp.PPost/sp.PL, 1/gamma)
	sp.VShock = sp.VPost * (sp.RhoPost / sp.RhoR) / ((sp.RhoPost / sp.RhoR) - 1)
	sp.VHead = sp.UL - sp.CL
	sp.VTail = sp.VPost - (sp.CL - 0.5*(gamma-1)*sp.VPost)
	return
}

// rarefactionVelocity is the flow speed behind the left rarefaction at p.
func (sp *SodProblem) rarefactionVelocity(p float64) float64 {
	g := sp.Gamma
	return sp.UL + 2*sp.CL/(g-1)*(1-math.Pow(p/sp.PL, (g-1)/(2*g)))
}

// pressureResidual is zero where the velocity behind the right shock matches
// the velocity behind the left rarefaction.
func (sp *SodProblem) pressureResidual(p float64) (y float64) {
	var (
		A = 2 / ((sp.Gamma + 1) * sp.RhoR)
		B = sp.mu2 * sp.PR
	)
	y = (p-sp.PR)*math.Sqrt(A/(p+B)) + sp.UR - sp.rarefactionVelocity(p)
	return
}

// Sample returns density, pressure and velocity at xi = (x - x0)/t.
func (sp *SodProblem) Sample(xi float64) (rho, p, u float64) {
	switch {
	case xi < sp.VHead:
		return sp.RhoL, sp.PL, sp.UL
	case xi <= sp.VTail:
		c := sp.mu2*(sp.UL-xi) + (1-sp.mu2)*sp.CL
		rho = sp.RhoL * math.Pow(c/sp.CL, 2/(sp.Gamma-1))
		p = sp.PL * math.Pow(rho/sp.RhoL, sp.Gamma)
		u = (1 - sp.mu2) * (xi + sp.CL)
		return
	case xi <= sp.VPost:
		return sp.RhoMiddle, sp.PPost, sp.VPost
	case xi <= sp.VShock:
		return sp.RhoPost, sp.PPost, sp.VPost
	}
	return sp.RhoR, sp.PR, sp.UR
}

// SOD_calc returns the solution at time t on [0, 1] with the diaphragm at
// 0.5, sampled on either side of each wave edge. E is the specific internal
// energy.
func SOD_calc(t float64) (X, Rho, P, U, E []float64) {
	var (
		x_min, x_max = 0., 1.
		x0           = 0.5 * (x_max + x_min)
		sp           = NewSodProblem(1.4)
		tol          = 1.e-8
	)
	fmt.Printf("Sod P_post = %v, residual(P_post) = %v\n", sp.PPost, sp.pressureResidual(sp.PPost))
	X = []float64{x_min}
	for _, s := range []float64{sp.VHead, sp.VTail, sp.VPost, sp.VShock} {
		x := x0 + s*t
		X = append(X, x-tol, x+tol)
	}
	X = append(X, x_max)
	Rho = make([]float64, len(X))
	P = make([]float64, len(X))
	U = make([]float64, len(X))
	E = make([]float64, len(X))
	for i, x := range X {
		Rho[i], P[i], U[i] = sp.Sample((x - x0) / t)
		E[i] = P[i] / ((sp.Gamma - 1) * Rho[i])
	}
	return
}

// fzero finds a root of f by the secant method starting from start and
// start/2.
func fzero(f func(P float64) (y float64), start float64) float64 {
	var (
		tol       = 1.e-14
		start_old = 0.5 * start
		res       = f(start_old)
	)
	for iter := 0; iter < 100; iter++ {
		resNew := f(start)
		if math.Abs(resNew) <= tol || resNew == res {
			break
		}
		start_new := start - resNew*(start-start_old)/(resNew-res)
		start_old, res = start, resNew
		start = math.Abs(start_new)
	}
	if utils.IsNan(start) {
		panic("unable to find Sod post shock pressure")
	}
	return start
}
