package fluids

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/*
Characteristic decomposition of the flux Jacobian along axis d.

Canonical wave order, shared by eigenvalues, rows of L and columns of R:

	0: v_d - c   acoustic minus
	1: v_d       entropy
	2: v_d       shear along (d+1)%3
	3: v_d       shear along (d+2)%3
	4: v_d + c   acoustic plus
	5..: extras  passive scalars move at v_d, static fields at 0

The pressure derivatives chi = dp/drho|rho*e and kappa = dp/d(rho*e)|rho come
from the equation of state, with c^2 = chi + kappa*h, h = (rho*e + p)/rho.
*/
type eigenSystem struct {
	lambda []float64
	L, R   *mat.Dense
}

type charVars struct {
	rho, p, c, c2 float64
	H, q2         float64 // total specific enthalpy, |v|^2
	chi, kappa    float64
	v             [SpatialRank]float64
	d, t1, t2     int
}

func characteristics(fd *FluidDescriptor, P []float64, dim int) (cv charVars, err error) {
	var e float64
	if err = checkDim(dim); err != nil {
		return
	}
	if err = validatePrimitive(fd, P); err != nil {
		return
	}
	cv.rho, cv.p = P[RHO], P[PRE]
	if cv.c, err = fd.eos.SoundSpeed(cv.rho, cv.p); err != nil {
		return
	}
	if !(cv.c > 0) {
		err = fmt.Errorf("sound speed %v: %w", cv.c, ErrDomain)
		return
	}
	if e, err = fd.eos.SpecificInternalEnergy(cv.rho, cv.p); err != nil {
		return
	}
	for i := 0; i < SpatialRank; i++ {
		cv.v[i] = P[VX+i]
		cv.q2 += cv.v[i] * cv.v[i]
	}
	cv.c2 = cv.c * cv.c
	cv.H = e + cv.p/cv.rho + 0.5*cv.q2
	cv.chi, cv.kappa = fd.eos.PressureDerivatives(cv.rho, cv.p)
	cv.d, cv.t1, cv.t2 = dim, (dim+1)%SpatialRank, (dim+2)%SpatialRank
	return
}

// Jacobian returns dF/dU along axis dim.
func (s *FluidState) Jacobian(dim int) (A *mat.Dense, err error) {
	if c := s.validCache(); c != nil && dim >= 0 && dim < SpatialRank && c.jacobian[dim] != nil {
		return mat.DenseCopyOf(c.jacobian[dim]), nil
	}
	if A, err = jacobian(s.Descriptor, s.prim, dim); err != nil {
		return
	}
	if c := s.validCache(); c != nil {
		c.jacobian[dim] = mat.DenseCopyOf(A)
	}
	return
}

func (s *FluidState) Eigenvalues(dim int) (lambda []float64, err error) {
	var es *eigenSystem
	if es, err = s.eigenSystem(dim); err != nil {
		return
	}
	return copyOf(es.lambda), nil
}

// LeftEigenvectors returns L with the left eigenvectors as rows.
func (s *FluidState) LeftEigenvectors(dim int) (L *mat.Dense, err error) {
	var es *eigenSystem
	if es, err = s.eigenSystem(dim); err != nil {
		return
	}
	return mat.DenseCopyOf(es.L), nil
}

// RightEigenvectors returns R with the right eigenvectors as columns.
func (s *FluidState) RightEigenvectors(dim int) (R *mat.Dense, err error) {
	var es *eigenSystem
	if es, err = s.eigenSystem(dim); err != nil {
		return
	}
	return mat.DenseCopyOf(es.R), nil
}

func (s *FluidState) eigenSystem(dim int) (es *eigenSystem, err error) {
	if c := s.validCache(); c != nil && dim >= 0 && dim < SpatialRank && c.eigen[dim] != nil {
		return c.eigen[dim], nil
	}
	if es, err = eigenDecompose(s.Descriptor, s.prim, dim); err != nil {
		return
	}
	if c := s.validCache(); c != nil {
		c.eigen[dim] = es
	}
	return
}

func jacobian(fd *FluidDescriptor, P []float64, dim int) (A *mat.Dense, err error) {
	var (
		cv charVars
		N  = fd.NumFields()
	)
	if cv, err = characteristics(fd, P, dim); err != nil {
		return
	}
	var (
		d     = cv.d
		vd    = cv.v[d]
		piRho = cv.chi + 0.5*cv.kappa*cv.q2 // dp/drho
		piE   = cv.kappa                    // dp/dE
	)
	piM := func(j int) float64 { return -cv.kappa * cv.v[j] } // dp/dm_j
	A = mat.NewDense(N, N, nil)
	// Mass
	A.Set(RHO, MX+d, 1)
	// Momentum, F_i = m_i m_d / rho + p delta_id
	for i := 0; i < SpatialRank; i++ {
		row := MX + i
		A.Set(row, RHO, -cv.v[i]*vd)
		A.Set(row, MX+i, vd)
		A.Set(row, MX+d, A.At(row, MX+d)+cv.v[i])
		if i == d {
			A.Set(row, RHO, A.At(row, RHO)+piRho)
			for j := 0; j < SpatialRank; j++ {
				A.Set(row, MX+j, A.At(row, MX+j)+piM(j))
			}
			A.Set(row, NRG, piE)
		}
	}
	// Energy, F = (E + p) v_d
	A.Set(NRG, RHO, vd*(piRho-cv.H))
	for j := 0; j < SpatialRank; j++ {
		A.Set(NRG, MX+j, vd*piM(j))
	}
	A.Set(NRG, MX+d, A.At(NRG, MX+d)+cv.H)
	A.Set(NRG, NRG, vd*(1+piE))
	// Passive scalars, F = (rho s) m_d / rho
	for k, kind := range fd.extras {
		if kind != passiveField {
			continue
		}
		row, sk := NumHydro+k, P[NumHydro+k]
		A.Set(row, RHO, -sk*vd)
		A.Set(row, MX+d, sk)
		A.Set(row, row, vd)
	}
	return
}

func eigenDecompose(fd *FluidDescriptor, P []float64, dim int) (es *eigenSystem, err error) {
	var (
		cv charVars
		N  = fd.NumFields()
	)
	if cv, err = characteristics(fd, P, dim); err != nil {
		return
	}
	var (
		d, t1, t2 = cv.d, cv.t1, cv.t2
		vd, c, c2 = cv.v[d], cv.c, cv.c2
		kappa     = cv.kappa
		piRho     = cv.chi + 0.5*kappa*cv.q2
		oo2c2     = 0.5 / c2
		L         = mat.NewDense(N, N, nil)
		R         = mat.NewDense(N, N, nil)
		lambda    = make([]float64, N)
	)
	lambda[0], lambda[1], lambda[2], lambda[3], lambda[4] = vd-c, vd, vd, vd, vd+c

	// Right eigenvectors, columns
	for i := 0; i < SpatialRank; i++ {
		R.Set(MX+i, 0, cv.v[i])
		R.Set(MX+i, 1, cv.v[i])
		R.Set(MX+i, 4, cv.v[i])
	}
	R.Set(RHO, 0, 1)
	R.Set(MX+d, 0, vd-c)
	R.Set(NRG, 0, cv.H-vd*c)

	R.Set(RHO, 1, 1)
	R.Set(NRG, 1, 0.5*cv.q2-cv.chi/kappa)

	R.Set(MX+t1, 2, 1)
	R.Set(NRG, 2, cv.v[t1])

	R.Set(MX+t2, 3, 1)
	R.Set(NRG, 3, cv.v[t2])

	R.Set(RHO, 4, 1)
	R.Set(MX+d, 4, vd+c)
	R.Set(NRG, 4, cv.H+vd*c)

	// Left eigenvectors, rows
	L.Set(0, RHO, oo2c2*(piRho+c*vd))
	L.Set(4, RHO, oo2c2*(piRho-c*vd))
	L.Set(1, RHO, 1-piRho/c2)
	for i := 0; i < SpatialRank; i++ {
		L.Set(0, MX+i, -oo2c2*kappa*cv.v[i])
		L.Set(4, MX+i, -oo2c2*kappa*cv.v[i])
		L.Set(1, MX+i, kappa*cv.v[i]/c2)
	}
	L.Set(0, MX+d, L.At(0, MX+d)-oo2c2*c)
	L.Set(4, MX+d, L.At(4, MX+d)+oo2c2*c)
	L.Set(0, NRG, oo2c2*kappa)
	L.Set(4, NRG, oo2c2*kappa)
	L.Set(1, NRG, -kappa/c2)

	L.Set(2, RHO, -cv.v[t1])
	L.Set(2, MX+t1, 1)
	L.Set(3, RHO, -cv.v[t2])
	L.Set(3, MX+t2, 1)

	for k, kind := range fd.extras {
		ind := NumHydro + k
		R.Set(ind, ind, 1)
		L.Set(ind, ind, 1)
		switch kind {
		case passiveField:
			sk := P[ind]
			lambda[ind] = vd
			// Acoustic and entropy waves carry rho perturbations, hence rho*s
			R.Set(ind, 0, sk)
			R.Set(ind, 1, sk)
			R.Set(ind, 4, sk)
			L.Set(ind, RHO, -sk)
		case staticField:
			lambda[ind] = 0
		}
	}
	es = &eigenSystem{lambda: lambda, L: L, R: R}
	return
}
