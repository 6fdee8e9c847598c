package fluids

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func testDescriptors(t *testing.T) (fds []*FluidDescriptor) {
	var (
		err error
		fd  *FluidDescriptor
	)
	add := func(model FluidModel, eos EquationOfState, numPassive int) {
		fd, err = NewFluidDescriptor(model, eos, numPassive)
		require.NoError(t, err)
		fds = append(fds, fd)
	}
	add(Hydro, &GammaLaw{Gamma: 1.4}, 0)
	add(HydroPassive, &GammaLaw{Gamma: 5. / 3.}, 2)
	add(HydroGravity, &GammaLaw{Gamma: 1.4}, 0)
	add(Hydro, &StiffenedGas{Gamma: 4.4, PInf: 0.5}, 0)
	add(HydroPassive, &StiffenedGas{Gamma: 2.1, PInf: 1.5}, 1)
	return
}

func randomPrimitive(rng *rand.Rand, fd *FluidDescriptor) (P []float64) {
	P = make([]float64, fd.NumFields())
	P[RHO] = 0.5 + 2*rng.Float64()
	P[PRE] = 0.5 + 2*rng.Float64()
	for d := 0; d < SpatialRank; d++ {
		P[VX+d] = 2*rng.Float64() - 1
	}
	for n := NumHydro; n < len(P); n++ {
		if fd.Advected(n) {
			P[n] = rng.Float64()
		} else {
			P[n] = 2*rng.Float64() - 1
		}
	}
	return
}

func TestFluidState_FixedPoint(t *testing.T) {
	fd := NewDefaultDescriptor()
	s, err := NewFluidStateP(fd, []float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	U, err := s.Conserved()
	require.NoError(t, err)
	assert.True(t, nearVec([]float64{1, 4, 1, 1, 1}, U, 1.e-14))
	c, err := s.SoundSpeed()
	require.NoError(t, err)
	assert.InDelta(t, 1.18321595662, c, 1.e-11)
	a, err := s.MaxWaveSpeed(1)
	require.NoError(t, err)
	assert.InDelta(t, 1+1.18321595662, a, 1.e-11)
	F, err := s.Flux(0)
	require.NoError(t, err)
	// rho u, (E+p) u, rho u u + p, rho v u, rho w u
	assert.True(t, nearVec([]float64{1, 5, 2, 1, 1}, F, 1.e-14))
	lambda, err := s.Eigenvalues(2)
	require.NoError(t, err)
	assert.True(t, nearVec([]float64{1 - c, 1, 1, 1, 1 + c}, lambda, 1.e-14))
}

func TestFluidState_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, fd := range testDescriptors(t) {
		for i := 0; i < 100; i++ {
			P := randomPrimitive(rng, fd)
			s, err := NewFluidStateP(fd, P)
			require.NoError(t, err)
			U, err := s.Conserved()
			require.NoError(t, err)
			s2, err := NewFluidStateU(fd, U)
			require.NoError(t, err, fd.Print())
			assert.True(t, nearVec(P, s2.Primitive(), 1.e-13), fd.Print())
		}
	}
	{ // Test conserved layout of extra fields
		fds := testDescriptors(t)
		P := []float64{2, 1, 0, 0, 0, 0.25, 0.5}
		s, err := NewFluidStateP(fds[1], P)
		require.NoError(t, err)
		U, _ := s.Conserved()
		assert.Equal(t, []float64{0.5, 1}, U[NumHydro:])
		P = []float64{2, 1, 0, 0, 0, -1, 0.1, 0.2, 0.3}
		s, err = NewFluidStateP(fds[2], P)
		require.NoError(t, err)
		U, _ = s.Conserved()
		assert.Equal(t, P[NumHydro:], U[NumHydro:])
		F, _ := s.Flux(1)
		assert.Equal(t, []float64{0, 0, 0, 0}, F[NumHydro:])
	}
}

func TestFluidState_Eigensystem(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, fd := range testDescriptors(t) {
		N := fd.NumFields()
		for i := 0; i < 20; i++ {
			s, err := NewFluidStateP(fd, randomPrimitive(rng, fd))
			require.NoError(t, err)
			for dim := 0; dim < SpatialRank; dim++ {
				var (
					A, L, R     *mat.Dense
					lambda      []float64
					LR, LA, LAR mat.Dense
					msg         = fmt.Sprintf("%s dim %d", fd.Print(), dim)
				)
				A, err = s.Jacobian(dim)
				require.NoError(t, err)
				L, err = s.LeftEigenvectors(dim)
				require.NoError(t, err)
				R, err = s.RightEigenvectors(dim)
				require.NoError(t, err)
				lambda, err = s.Eigenvalues(dim)
				require.NoError(t, err)
				LR.Mul(L, R)
				assert.True(t, mat.EqualApprox(&LR, eye(N), 1.e-13), msg)
				LA.Mul(L, A)
				LAR.Mul(&LA, R)
				assert.True(t, mat.EqualApprox(&LAR, mat.NewDiagDense(N, lambda), 1.e-12), msg)
				// Canonical order
				c, _ := s.SoundSpeed()
				vd := s.Velocity(dim)
				assert.True(t, nearVec([]float64{vd - c, vd, vd, vd, vd + c}, lambda[:NumHydro], 1.e-14), msg)
				for n := NumHydro; n < N; n++ {
					if fd.Advected(n) {
						assert.Equal(t, vd, lambda[n])
					} else {
						assert.Equal(t, 0., lambda[n])
					}
				}
			}
		}
	}
}

func TestFluidState_FluxSensitivity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, fd := range testDescriptors(t) {
		N := fd.NumFields()
		s, err := NewFluidStateP(fd, randomPrimitive(rng, fd))
		require.NoError(t, err)
		U, _ := s.Conserved()
		for dim := 0; dim < SpatialRank; dim++ {
			A, err := s.Jacobian(dim)
			require.NoError(t, err)
			for j := 0; j < N; j++ {
				var (
					h        = 1.e-6
					Up, Um   = copyOf(U), copyOf(U)
					sp, sm   *FluidState
					Fp, Fm   []float64
					dF       = make([]float64, N)
					jacobCol = mat.Col(nil, j, A)
				)
				Up[j] += h
				Um[j] -= h
				sp, err = NewFluidStateU(fd, Up)
				require.NoError(t, err)
				sm, err = NewFluidStateU(fd, Um)
				require.NoError(t, err)
				Fp, _ = sp.Flux(dim)
				Fm, _ = sm.Flux(dim)
				floats.SubTo(dF, Fp, Fm)
				floats.Scale(1/(2*h), dF)
				assert.True(t, floats.EqualApprox(dF, jacobCol, 1.e-6),
					"%s dim %d column %d: %v != %v", fd.Print(), dim, j, dF, jacobCol)
			}
		}
	}
}

func TestFluidState_Cache(t *testing.T) {
	var (
		fd  = testDescriptors(t)[1]
		rng = rand.New(rand.NewSource(4))
		P   = randomPrimitive(rng, fd)
	)
	cached, err := NewFluidStateP(fd, P)
	require.NoError(t, err)
	plain, err := NewFluidStateP(fd, P)
	require.NoError(t, err)
	cached.EnableCache()
	assert.True(t, cached.CacheEnabled())
	assert.False(t, plain.CacheEnabled())
	check := func() {
		for pass := 0; pass < 2; pass++ {
			U1, _ := cached.Conserved()
			U2, _ := plain.Conserved()
			assert.Equal(t, U2, U1)
			for dim := 0; dim < SpatialRank; dim++ {
				F1, _ := cached.Flux(dim)
				F2, _ := plain.Flux(dim)
				assert.Equal(t, F2, F1)
				A1, _ := cached.Jacobian(dim)
				A2, _ := plain.Jacobian(dim)
				assert.True(t, mat.Equal(A1, A2))
				L1, _ := cached.LeftEigenvectors(dim)
				L2, _ := plain.LeftEigenvectors(dim)
				assert.True(t, mat.Equal(L1, L2))
				R1, _ := cached.RightEigenvectors(dim)
				R2, _ := plain.RightEigenvectors(dim)
				assert.True(t, mat.Equal(R1, R2))
				e1, _ := cached.Eigenvalues(dim)
				e2, _ := plain.Eigenvalues(dim)
				assert.Equal(t, e2, e1)
			}
		}
	}
	check()
	{ // Test returned values are copies
		U, _ := cached.Conserved()
		U[RHO] = -1
		A, _ := cached.Jacobian(0)
		A.Set(0, 0, 99)
		lambda, _ := cached.Eigenvalues(0)
		lambda[0] = 99
		check()
	}
	{ // Test mutation invalidates the cache
		P2 := randomPrimitive(rng, fd)
		require.NoError(t, cached.SetPrimitive(P2))
		require.NoError(t, plain.SetPrimitive(P2))
		check()
		U, _ := plain.Conserved()
		U[NRG] *= 1.1
		require.NoError(t, cached.SetConserved(U))
		require.NoError(t, plain.SetConserved(U))
		check()
	}
	{ // Test erase and disable
		cached.EraseCache()
		assert.True(t, cached.CacheEnabled())
		check()
		cached.DisableCache()
		assert.False(t, cached.CacheEnabled())
		check()
	}
}

func TestFluidState_Errors(t *testing.T) {
	fd := NewDefaultDescriptor()
	{ // Test invalid primitive input
		var err error
		_, err = NewFluidStateP(fd, []float64{1, 1, 0, 0})
		assert.True(t, errors.Is(err, ErrShape))
		_, err = NewFluidStateP(fd, []float64{0, 1, 0, 0, 0})
		assert.True(t, errors.Is(err, ErrInvalidState))
		_, err = NewFluidStateP(fd, []float64{1, -1, 0, 0, 0})
		assert.True(t, errors.Is(err, ErrInvalidState))
		_, err = NewFluidStateP(fd, []float64{1, 1, math.NaN(), 0, 0})
		assert.True(t, errors.Is(err, ErrInvalidState))
		_, err = NewFluidStateP(fd, []float64{1, 1, 0, math.Inf(1), 0})
		assert.True(t, errors.Is(err, ErrInvalidState))
	}
	{ // Test rejected writes leave the state intact
		P := []float64{1, 2, 3, 4, 5}
		s, err := NewFluidStateP(fd, P)
		require.NoError(t, err)
		assert.True(t, errors.Is(s.SetPrimitive([]float64{-1, 2, 3, 4, 5}), ErrInvalidState))
		assert.Equal(t, P, s.Primitive())
		// Kinetic energy exceeds total energy
		assert.True(t, errors.Is(s.SetConserved([]float64{1, 0.1, 1, 1, 1}), ErrInvalidState))
		assert.True(t, errors.Is(s.FromConserved([]float64{1, 0.1, 1}), ErrShape))
		assert.Equal(t, P, s.Primitive())
	}
	{ // Test axis range
		s, _ := NewFluidStateP(fd, []float64{1, 1, 0, 0, 0})
		var err error
		_, err = s.Flux(SpatialRank)
		assert.True(t, errors.Is(err, ErrDimension))
		_, err = s.Jacobian(-1)
		assert.True(t, errors.Is(err, ErrDimension))
		_, err = s.Eigenvalues(3)
		assert.True(t, errors.Is(err, ErrDimension))
		_, err = s.MaxWaveSpeed(7)
		assert.True(t, errors.Is(err, ErrDimension))
	}
	{ // Test a zero state is not a valid state
		s := NewFluidState(fd)
		_, err := s.Conserved()
		assert.True(t, errors.Is(err, ErrInvalidState))
		_, err = s.SoundSpeed()
		assert.True(t, errors.Is(err, ErrInvalidState))
	}
}

func TestFluidState_Gravity(t *testing.T) {
	fd, err := NewFluidDescriptorByName("gravity", "gamma-law", 1.4, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NumHydro+NumGravity, fd.NumFields())
	s, err := NewFluidStateP(fd, []float64{2, 1, 0.5, 0, 0, -1, 0.1, 0.2, 0.3})
	require.NoError(t, err)
	S, err := s.SourceTerms()
	require.NoError(t, err)
	assert.True(t, nearVec([]float64{0, -0.1, -0.2, -0.4, -0.6, 0, 0, 0, 0}, S, 1.e-15))
	// No source without a gravitational field
	s, err = NewFluidStateP(NewDefaultDescriptor(), []float64{2, 1, 0.5, 0, 0})
	require.NoError(t, err)
	S, err = s.SourceTerms()
	require.NoError(t, err)
	assert.Equal(t, make([]float64, NumHydro), S)
}

func TestFluidState_Copy(t *testing.T) {
	fv, err := NewFluidStateVector([]int{2}, NewDefaultDescriptor())
	require.NoError(t, err)
	require.NoError(t, fv.SetPrimitive([]float64{1, 1, 0, 0, 0}, 5))
	view, err := fv.State(1)
	require.NoError(t, err)
	sc := view.Copy()
	require.NoError(t, sc.SetPrimitive([]float64{2, 2, 0, 0, 0}))
	assert.Equal(t, []float64{1, 1, 0, 0, 0}, view.Primitive())
	assert.Equal(t, []float64{2, 2, 0, 0, 0}, sc.Primitive())
	assert.Equal(t, view.Descriptor, sc.Descriptor)
}

func TestDescriptor(t *testing.T) {
	{ // Test construction errors
		var err error
		_, err = NewFluidDescriptor(Hydro, &GammaLaw{Gamma: 1.4}, 1)
		assert.True(t, errors.Is(err, ErrShape))
		_, err = NewFluidDescriptor(HydroPassive, &GammaLaw{Gamma: 1.4}, 0)
		assert.True(t, errors.Is(err, ErrShape))
		_, err = NewFluidDescriptor(Hydro, nil, 0)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = NewFluidDescriptorByName("relativistic", "gamma-law", 1.4, 0, 0)
		assert.Error(t, err)
		_, err = NewFluidDescriptorByName("hydro", "gamma-law", 1, 0, 0)
		assert.True(t, errors.Is(err, ErrDomain))
		_, err = NewFluidDescriptorByName("hydro", "stiffened", 1.4, -1, 0)
		assert.True(t, errors.Is(err, ErrDomain))
	}
	{ // Test compatibility
		a, _ := NewFluidDescriptorByName("hydro", "gamma-law", 1.4, 0, 0)
		b, _ := NewFluidDescriptorByName("NRHYD", "GammaLaw", 1.4, 0, 0)
		c, _ := NewFluidDescriptorByName("hydro", "gamma-law", 5./3., 0, 0)
		d, _ := NewFluidDescriptorByName("passive", "gamma-law", 1.4, 0, 1)
		e, _ := NewFluidDescriptorByName("hydro", "stiffened", 1.4, 0, 0)
		assert.True(t, a.Compatible(b))
		assert.False(t, a.Compatible(c))
		assert.False(t, a.Compatible(d))
		assert.False(t, a.Compatible(e))
		assert.False(t, a.Compatible(nil))
		assert.Equal(t, 6, d.NumFields())
		assert.True(t, d.Advected(5))
		assert.Equal(t, "Model = Hydro, EOS = Gamma Law, NumFields = 5, Gamma = 1.4", a.Print())
	}
}

func TestStiffenedGas(t *testing.T) {
	sg, err := NewStiffenedGas(4.4, 6.e3)
	require.NoError(t, err)
	var (
		rho, p = 1000., 1.
		e, _   = sg.SpecificInternalEnergy(rho, p)
		c, _   = sg.SoundSpeed(rho, p)
	)
	p2, err := sg.Pressure(rho, e)
	require.NoError(t, err)
	assert.True(t, near(p, p2, 1.e-9))
	assert.True(t, near(math.Sqrt(4.4*(p+6.e3)/rho), c, 1.e-14))
	// Reduces to the gamma law without stiffening
	sg0, _ := NewStiffenedGas(1.4, 0)
	gl, _ := NewGammaLaw(1.4)
	c1, _ := sg0.SoundSpeed(1, 1)
	c2, _ := gl.SoundSpeed(1, 1)
	assert.Equal(t, c2, c1)
	_, err = gl.SoundSpeed(-1, 1)
	assert.True(t, errors.Is(err, ErrDomain))
}

func eye(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}

func nearVec(a, b []float64, tol float64) (l bool) {
	if len(a) != len(b) {
		return false
	}
	for i, val := range a {
		if !near(b[i], val, tol) {
			fmt.Printf("Diff = %v, Left[%d] = %v, Right[%d] = %v\n", math.Abs(val-b[i]), i, val, i, b[i])
			return false
		}
	}
	return true
}

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}
