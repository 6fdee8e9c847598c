package fluids

import (
	"fmt"

	"github.com/notargets/gofluids/utils"
)

// FluidStateVector is a grid of states over one contiguous primitive buffer
// of shape grid + [N]. Element views returned by State alias the buffer, so
// bulk and per-element access always agree.
//
// A new vector is zero filled and therefore not yet a valid set of states.
type FluidStateVector struct {
	Descriptor *FluidDescriptor
	grid       utils.Shape
	data       []float64
	gen        *uint64
	partitions *utils.PartitionMap
}

func NewFluidStateVector(shape []int, fd *FluidDescriptor) (fv *FluidStateVector, err error) {
	var grid utils.Shape
	if grid, err = utils.NewShape(shape...); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrShape)
		return
	}
	fv = &FluidStateVector{
		Descriptor: fd,
		grid:       grid,
		data:       make([]float64, grid.Size()*fd.NumFields()),
		gen:        new(uint64),
	}
	return
}

// Shape is the grid shape with the variable axis appended.
func (fv *FluidStateVector) Shape() utils.Shape { return fv.grid.Append(fv.Descriptor.NumFields()) }

func (fv *FluidStateVector) GridShape() utils.Shape { return append(utils.Shape{}, fv.grid...) }

// Len is the number of states.
func (fv *FluidStateVector) Len() int { return fv.grid.Size() }

// Data is the backing primitive buffer, not a copy. Writes through it skip
// validation and must be followed by Invalidate.
func (fv *FluidStateVector) Data() []float64 { return fv.data }

// Invalidate marks every element view's cached quantities stale.
func (fv *FluidStateVector) Invalidate() { *fv.gen++ }

// SetParallelDegree sets the number of goroutines used by bulk operations,
// 0 selects the CPU count.
func (fv *FluidStateVector) SetParallelDegree(np int) {
	if np == 0 {
		np = utils.DefaultParallelDegree(fv.Len())
	}
	if np > fv.Len() {
		np = fv.Len()
	}
	fv.partitions = utils.NewPartitionMap(np, fv.Len())
}

func (fv *FluidStateVector) forEach(f func(k int) error) error {
	if fv.partitions == nil {
		fv.SetParallelDegree(0)
	}
	return fv.partitions.ParallelFor(f)
}

func (fv *FluidStateVector) element(buf []float64, k int) []float64 {
	N := fv.Descriptor.NumFields()
	return buf[k*N : (k+1)*N : (k+1)*N]
}

// Primitive returns a copy of the primitive buffer, shaped as Shape().
func (fv *FluidStateVector) Primitive() (P []float64) {
	P = make([]float64, len(fv.data))
	copy(P, fv.data)
	return
}

// SetPrimitive broadcasts src with shape srcShape over the vector. An empty
// srcShape means src is a flat array of the vector's full shape when it has
// that many values, or a scalar when it holds one value.
func (fv *FluidStateVector) SetPrimitive(src []float64, srcShape ...int) (err error) {
	var scratch []float64
	if scratch, err = fv.broadcast(src, srcShape); err != nil {
		return
	}
	if err = fv.forEach(func(k int) error {
		if e := validatePrimitive(fv.Descriptor, fv.element(scratch, k)); e != nil {
			return fmt.Errorf("element %d: %w", k, e)
		}
		return nil
	}); err != nil {
		return
	}
	copy(fv.data, scratch)
	fv.Invalidate()
	return
}

func (fv *FluidStateVector) Conserved() (U []float64, err error) {
	U = make([]float64, len(fv.data))
	if err = fv.forEach(func(k int) error {
		if e := primToCons(fv.Descriptor, fv.element(fv.data, k), fv.element(U, k)); e != nil {
			return fmt.Errorf("element %d: %w", k, e)
		}
		return nil
	}); err != nil {
		U = nil
	}
	return
}

// SetConserved inverts src, broadcast like SetPrimitive, into the primitive
// buffer. Nothing is written unless every element inverts to a valid state.
func (fv *FluidStateVector) SetConserved(src []float64, srcShape ...int) (err error) {
	var (
		U []float64
		P = make([]float64, len(fv.data))
	)
	if U, err = fv.broadcast(src, srcShape); err != nil {
		return
	}
	if err = fv.forEach(func(k int) error {
		if e := consToPrim(fv.Descriptor, fv.element(U, k), fv.element(P, k)); e != nil {
			return fmt.Errorf("element %d: %w", k, e)
		}
		return nil
	}); err != nil {
		return
	}
	copy(fv.data, P)
	fv.Invalidate()
	return
}

func (fv *FluidStateVector) FromConserved(src []float64, srcShape ...int) error {
	return fv.SetConserved(src, srcShape...)
}

// Flux returns the element-wise flux along dim, shaped as Shape().
func (fv *FluidStateVector) Flux(dim int) (F []float64, err error) {
	if err = checkDim(dim); err != nil {
		return
	}
	F = make([]float64, len(fv.data))
	if err = fv.forEach(func(k int) error {
		if e := flux(fv.Descriptor, fv.element(fv.data, k), dim, fv.element(F, k)); e != nil {
			return fmt.Errorf("element %d: %w", k, e)
		}
		return nil
	}); err != nil {
		F = nil
	}
	return
}

// SoundSpeed is shaped as GridShape().
func (fv *FluidStateVector) SoundSpeed() (C []float64, err error) {
	C = make([]float64, fv.Len())
	if err = fv.forEach(func(k int) (e error) {
		P := fv.element(fv.data, k)
		if e = validatePrimitive(fv.Descriptor, P); e == nil {
			C[k], e = fv.Descriptor.eos.SoundSpeed(P[RHO], P[PRE])
		}
		if e != nil {
			return fmt.Errorf("element %d: %w", k, e)
		}
		return nil
	}); err != nil {
		C = nil
	}
	return
}

// State returns a view of the element at a full grid index. The view shares
// the backing buffer: its mutations are visible in bulk and vice versa.
func (fv *FluidStateVector) State(index ...int) (s *FluidState, err error) {
	var off int
	if len(index) != len(fv.grid) {
		err = fmt.Errorf("index %v does not address an element of grid %v: %w", index, fv.grid, ErrShape)
		return
	}
	if off, _, err = fv.grid.Offset(index...); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrShape)
		return
	}
	s = fv.view(off)
	return
}

// States returns one view per element in row-major grid order.
func (fv *FluidStateVector) States() (states []*FluidState) {
	states = make([]*FluidState, fv.Len())
	for k := range states {
		states[k] = fv.view(k)
	}
	return
}

func (fv *FluidStateVector) view(k int) *FluidState {
	return &FluidState{
		Descriptor: fv.Descriptor,
		prim:       fv.element(fv.data, k),
		gen:        fv.gen,
	}
}

// Sub returns the block selected by a leading grid index as a vector view
// sharing this vector's buffer, e.g. one row of a 2D grid.
func (fv *FluidStateVector) Sub(index ...int) (sub *FluidStateVector, err error) {
	var (
		off  int
		grid utils.Shape
		N    = fv.Descriptor.NumFields()
	)
	if off, grid, err = fv.grid.Offset(index...); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrShape)
		return
	}
	sub = &FluidStateVector{
		Descriptor: fv.Descriptor,
		grid:       grid,
		data:       fv.data[off*N : (off+grid.Size())*N : (off+grid.Size())*N],
		gen:        fv.gen,
	}
	return
}

func (fv *FluidStateVector) broadcast(src []float64, srcShape []int) (scratch []float64, err error) {
	var (
		dstShape = fv.Shape()
		shape    = utils.Shape(srcShape)
	)
	if len(shape) == 0 && len(src) != 1 {
		// Flat data covering the whole vector
		shape = dstShape
	}
	if len(shape) == len(dstShape) && !shape.Equal(dstShape) {
		err = fmt.Errorf("full rank assignment of shape %v to %v: %w", shape, dstShape, ErrShape)
		return
	}
	scratch = make([]float64, len(fv.data))
	if err = utils.BroadcastTo(scratch, dstShape, src, shape); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrShape)
		scratch = nil
	}
	return
}
