package riemann

import (
	"fmt"
	"math"

	"github.com/notargets/gofluids/fluids"
)

/*
Exact solution of the Riemann problem for an ideal or stiffened gas,
following Toro, "Riemann Solvers and Numerical Methods for Fluid Dynamics",
chapter 4. Pressures are shifted by the stiffening pressure pInf so the gamma
law relations apply unchanged; pInf = 0 for a gamma law gas.

The star pressure solves f(p) = fL(p) + fR(p) + (uR - uL) = 0 by Newton
iteration, where fK is the shock (p > pK) or rarefaction (p <= pK) relation.
*/
type exactPattern struct {
	fd           *fluids.FluidDescriptor
	L, R         *side
	dim          int
	gamma, pInf  float64
	pL, pR       float64 // shifted pressures
	pStar, uStar float64 // shifted star pressure, contact speed
	g            [7]float64
}

func newExactPattern(fd *fluids.FluidDescriptor, L, R *side, dim int) (ep *exactPattern, err error) {
	ig, ok := fd.EOS().(fluids.IdealGas)
	if !ok {
		err = fmt.Errorf("exact solver needs an ideal gas EOS, have %s: %w", fd.EOS().Kind(), fluids.ErrConfiguration)
		return
	}
	ep = &exactPattern{
		fd:    fd,
		L:     L,
		R:     R,
		dim:   dim,
		gamma: ig.AdiabaticIndex(),
		pInf:  ig.StiffeningPressure(),
	}
	ep.pL, ep.pR = L.p+ep.pInf, R.p+ep.pInf
	gam := ep.gamma
	ep.g = [7]float64{
		(gam - 1) / (2 * gam), // 0
		(gam + 1) / (2 * gam), // 1
		2 * gam / (gam - 1),   // 2
		2 / (gam - 1),         // 3
		2 / (gam + 1),         // 4
		(gam - 1) / (gam + 1), // 5
		(gam - 1) / 2,         // 6
	}
	// Pressure positivity: the rarefactions must not separate into vacuum
	if ep.g[3]*(L.c+R.c) <= R.u-L.u {
		err = fmt.Errorf("initial states generate vacuum, du = %v, critical du = %v: %w",
			R.u-L.u, ep.g[3]*(L.c+R.c), fluids.ErrDomain)
		return
	}
	return
}

// pressureFunction returns fK and dfK/dp for side K.
func (ep *exactPattern) pressureFunction(p float64, K *side, pK float64) (f, fd float64) {
	if p > pK {
		// Shock
		var (
			A = ep.g[4] / K.rho
			B = ep.g[5] * pK
			q = math.Sqrt(A / (B + p))
		)
		f = (p - pK) * q
		fd = (1 - 0.5*(p-pK)/(B+p)) * q
		return
	}
	// Rarefaction
	ratio := p / pK
	f = ep.g[3] * K.c * (math.Pow(ratio, ep.g[0]) - 1)
	fd = math.Pow(ratio, -ep.g[1]) / (K.rho * K.c)
	return
}

// guessPressure picks the primitive variable, two rarefaction or two shock
// approximation, whichever fits the data.
func (ep *exactPattern) guessPressure() (p float64) {
	var (
		L, R       = ep.L, ep.R
		pL, pR     = ep.pL, ep.pR
		du         = R.u - L.u
		pPV        = 0.5*(pL+pR) - 0.125*du*(L.rho+R.rho)*(L.c+R.c)
		pMin, pMax = math.Min(pL, pR), math.Max(pL, pR)
	)
	pPV = math.Max(pPV, 0)
	switch {
	case pMax/pMin <= 2 && pMin <= pPV && pPV <= pMax:
		p = pPV
	case pPV < pMin:
		num := L.c + R.c - ep.g[6]*du
		den := L.c/math.Pow(pL, ep.g[0]) + R.c/math.Pow(pR, ep.g[0])
		p = math.Pow(num/den, ep.g[2])
	default:
		gL := math.Sqrt((ep.g[4] / L.rho) / (ep.g[5]*pL + pPV))
		gR := math.Sqrt((ep.g[4] / R.rho) / (ep.g[5]*pR + pPV))
		p = (gL*pL + gR*pR - du) / (gL + gR)
	}
	if !(p > 0) {
		p = 0.5 * pMin
	}
	return
}

// solve finds the star pressure. It returns a warning when the iteration cap
// is reached, in which case the iterate with the smallest residual is kept.
func (ep *exactPattern) solve(tol float64, maxIter int) (cw *ConvergenceWarning) {
	var (
		du            = ep.R.u - ep.L.u
		p             = ep.guessPressure()
		pBest         = p
		resBest       = math.Inf(1)
		change        float64
		fL, fR, dL, d float64
	)
	for iter := 1; iter <= maxIter; iter++ {
		fL, dL = ep.pressureFunction(p, ep.L, ep.pL)
		fR, d = ep.pressureFunction(p, ep.R, ep.pR)
		res := fL + fR + du
		if math.Abs(res) < resBest {
			pBest, resBest = p, math.Abs(res)
		}
		if res == 0 {
			change = 0
			break
		}
		pNew := p - res/(dL+d)
		if !(pNew > 0) {
			pNew = 0.5 * p
		}
		change = 2 * math.Abs(pNew-p) / (pNew + p)
		p = pNew
		if change <= tol {
			pBest = p
			break
		}
		if iter == maxIter {
			cw = &ConvergenceWarning{Iterations: iter, Change: change, Pressure: pBest - ep.pInf}
		}
	}
	ep.pStar = pBest
	fL, _ = ep.pressureFunction(ep.pStar, ep.L, ep.pL)
	fR, _ = ep.pressureFunction(ep.pStar, ep.R, ep.pR)
	ep.uStar = 0.5*(ep.L.u+ep.R.u) + 0.5*(fR-fL)
	return
}

// sample returns the primitive state at s. Transverse velocity and extra
// fields are those of the side of the contact that s lies on.
func (ep *exactPattern) sample(s float64) (P []float64, err error) {
	var (
		rho, u, p float64
		g         = ep.g
		gam       = ep.gamma
		pStar     = ep.pStar
	)
	if s <= ep.uStar {
		L, pL := ep.L, ep.pL
		if pStar > pL {
			// Left shock
			sL := L.u - L.c*math.Sqrt(g[1]*pStar/pL+g[0])
			if s <= sL {
				return copyOf(L.P), nil
			}
			rho = L.rho * (pStar/pL + g[5]) / (pStar*g[5]/pL + 1)
			u, p = ep.uStar, pStar
		} else {
			// Left rarefaction
			sHL := L.u - L.c
			if s <= sHL {
				return copyOf(L.P), nil
			}
			cStar := L.c * math.Pow(pStar/pL, g[0])
			if s > ep.uStar-cStar {
				rho = L.rho * math.Pow(pStar/pL, 1/gam)
				u, p = ep.uStar, pStar
			} else {
				// Inside the fan
				u = g[4] * (L.c + g[6]*L.u + s)
				c := g[4] * (L.c + g[6]*(L.u-s))
				rho = L.rho * math.Pow(c/L.c, g[3])
				p = pL * math.Pow(c/L.c, g[2])
			}
		}
		P = copyOf(L.P)
	} else {
		R, pR := ep.R, ep.pR
		if pStar > pR {
			// Right shock
			sR := R.u + R.c*math.Sqrt(g[1]*pStar/pR+g[0])
			if s >= sR {
				return copyOf(R.P), nil
			}
			rho = R.rho * (pStar/pR + g[5]) / (pStar*g[5]/pR + 1)
			u, p = ep.uStar, pStar
		} else {
			// Right rarefaction
			sHR := R.u + R.c
			if s >= sHR {
				return copyOf(R.P), nil
			}
			cStar := R.c * math.Pow(pStar/pR, g[0])
			if s < ep.uStar+cStar {
				rho = R.rho * math.Pow(pStar/pR, 1/gam)
				u, p = ep.uStar, pStar
			} else {
				u = g[4] * (-R.c + g[6]*R.u + s)
				c := g[4] * (R.c - g[6]*(R.u-s))
				rho = R.rho * math.Pow(c/R.c, g[3])
				p = pR * math.Pow(c/R.c, g[2])
			}
		}
		P = copyOf(R.P)
	}
	P[fluids.RHO], P[fluids.PRE], P[fluids.VX+ep.dim] = rho, p-ep.pInf, u
	return
}

func (ep *exactPattern) flux(s float64) (F []float64, err error) {
	var (
		P  []float64
		st *fluids.FluidState
	)
	if P, err = ep.sample(s); err != nil {
		return
	}
	if st, err = fluids.NewFluidStateP(ep.fd, P); err != nil {
		return
	}
	return st.Flux(ep.dim)
}

// waveSpeeds returns the fastest left and right moving fronts and the contact.
func (ep *exactPattern) waveSpeeds() (sL, sStar, sR float64) {
	var g = ep.g
	if ep.pStar > ep.pL {
		sL = ep.L.u - ep.L.c*math.Sqrt(g[1]*ep.pStar/ep.pL+g[0])
	} else {
		sL = ep.L.u - ep.L.c
	}
	if ep.pStar > ep.pR {
		sR = ep.R.u + ep.R.c*math.Sqrt(g[1]*ep.pStar/ep.pR+g[0])
	} else {
		sR = ep.R.u + ep.R.c
	}
	return sL, ep.uStar, sR
}
