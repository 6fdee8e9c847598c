package riemann

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofluids/fluids"
)

type WaveSpeedEstimate uint8

const (
	Estimate_Einfeldt WaveSpeedEstimate = iota // Roe averaged, positively conservative
	Estimate_Davis                             // min/max of u -+ c
	Estimate_Pressure                          // pressure based, needs an ideal gas EOS
)

var (
	EstimateNames = map[string]WaveSpeedEstimate{
		"einfeldt": Estimate_Einfeldt,
		"davis":    Estimate_Davis,
		"pressure": Estimate_Pressure,
	}
	EstimatePrintNames = []string{"Einfeldt", "Davis", "Pressure Based"}
)

func (we WaveSpeedEstimate) String() string {
	return EstimatePrintNames[we]
}

func NewWaveSpeedEstimate(label string) (we WaveSpeedEstimate, err error) {
	var ok bool
	label = strings.ToLower(label)
	if we, ok = EstimateNames[label]; !ok {
		err = fmt.Errorf("unable to use wave speed estimate named %s", label)
	}
	return
}

func estimateWaveSpeeds(we WaveSpeedEstimate, fd *fluids.FluidDescriptor, L, R *side) (sL, sR float64, err error) {
	switch we {
	case Estimate_Davis:
		sL = math.Min(L.u-L.c, R.u-R.c)
		sR = math.Max(L.u+L.c, R.u+R.c)
	case Estimate_Einfeldt:
		// Roe averages, as in the Roe flux
		var (
			rhoLs, rhoRs = math.Sqrt(L.rho), math.Sqrt(R.rho)
			rhoLsRs      = rhoLs + rhoRs
			u            = (rhoLs*L.u + rhoRs*R.u) / rhoLsRs
			eta2         = 0.5 * rhoLs * rhoRs / (rhoLsRs * rhoLsRs)
			d2           = (rhoLs*L.c*L.c+rhoRs*R.c*R.c)/rhoLsRs + eta2*(R.u-L.u)*(R.u-L.u)
			d            = math.Sqrt(d2)
		)
		sL = math.Min(L.u-L.c, u-d)
		sR = math.Max(R.u+R.c, u+d)
	case Estimate_Pressure:
		ig, ok := fd.EOS().(fluids.IdealGas)
		if !ok {
			err = fmt.Errorf("pressure based wave speeds need an ideal gas EOS, have %s: %w",
				fd.EOS().Kind(), fluids.ErrConfiguration)
			return
		}
		var (
			gamma      = ig.AdiabaticIndex()
			pInf       = ig.StiffeningPressure()
			pL, pR     = L.p + pInf, R.p + pInf
			rhoA, cA   = 0.5 * (L.rho + R.rho), 0.5 * (L.c + R.c)
			pStar      = math.Max(0, 0.5*(pL+pR)-0.5*(R.u-L.u)*rhoA*cA)
			gp1o2gamma = (gamma + 1) / (2 * gamma)
		)
		q := func(pK float64) float64 {
			if pStar <= pK {
				return 1
			}
			return math.Sqrt(1 + gp1o2gamma*(pStar/pK-1))
		}
		sL = L.u - L.c*q(pL)
		sR = R.u + R.c*q(pR)
	default:
		err = fmt.Errorf("unknown wave speed estimate %d: %w", we, fluids.ErrConfiguration)
	}
	return
}

// contactSpeed is the HLLC middle wave speed consistent with sL and sR.
func contactSpeed(L, R *side, sL, sR float64) float64 {
	var (
		mL = L.rho * (sL - L.u)
		mR = R.rho * (sR - R.u)
	)
	return (R.p - L.p + mL*L.u - mR*R.u) / (mL - mR)
}
