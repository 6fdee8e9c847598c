package fluids

import "gonum.org/v1/gonum/mat"

// stateCache memoizes derived quantities. Entries are trusted only while the
// cache generation equals the state's generation counter; every mutator bumps
// the counter, so a stale cache is dropped on the next read.
type stateCache struct {
	gen       uint64
	valid     bool
	conserved []float64
	flux      [SpatialRank][]float64
	jacobian  [SpatialRank]*mat.Dense
	eigen     [SpatialRank]*eigenSystem
}

func (s *FluidState) EnableCache() {
	if s.cache == nil {
		s.cache = &stateCache{}
	}
}

func (s *FluidState) DisableCache() { s.cache = nil }

func (s *FluidState) CacheEnabled() bool { return s.cache != nil }

// EraseCache drops memoized values; caching stays enabled.
func (s *FluidState) EraseCache() {
	if s.cache != nil {
		*s.cache = stateCache{}
	}
}

// validCache returns the cache synchronized to the current generation, or nil
// when caching is off.
func (s *FluidState) validCache() (c *stateCache) {
	if c = s.cache; c == nil {
		return
	}
	if !c.valid || c.gen != *s.gen {
		*c = stateCache{gen: *s.gen, valid: true}
	}
	return
}
