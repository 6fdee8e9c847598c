package utils

import (
	"errors"
	"fmt"
)

var ErrBroadcast = errors.New("shapes cannot be broadcast")

// Shape is a row-major array shape, the last axis varying fastest.
type Shape []int

func NewShape(dims ...int) (s Shape, err error) {
	for i, n := range dims {
		if n <= 0 {
			err = fmt.Errorf("dimension %d of shape %v is not positive: %w", i, dims, ErrBroadcast)
			return
		}
	}
	s = append(Shape{}, dims...)
	return
}

func (s Shape) Size() (n int) {
	n = 1
	for _, d := range s {
		n *= d
	}
	return
}

func (s Shape) Strides() (st []int) {
	st = make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		st[i] = stride
		stride *= s[i]
	}
	return
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Append returns a new shape with dims added as trailing axes.
func (s Shape) Append(dims ...int) (r Shape) {
	r = make(Shape, 0, len(s)+len(dims))
	r = append(r, s...)
	return append(r, dims...)
}

// Offset returns the flat offset of a leading (prefix) index, along with the
// shape of the block it selects. A full index selects a single element.
func (s Shape) Offset(index ...int) (off int, sub Shape, err error) {
	if len(index) > len(s) {
		err = fmt.Errorf("index %v has more axes than shape %v: %w", index, s, ErrBroadcast)
		return
	}
	st := s.Strides()
	for i, ind := range index {
		if ind < 0 || ind >= s[i] {
			err = fmt.Errorf("index %v out of range for shape %v: %w", index, s, ErrBroadcast)
			return
		}
		off += ind * st[i]
	}
	sub = append(Shape{}, s[len(index):]...)
	return
}

// BroadcastTo fills dst (shape dstShape) from src (shape srcShape) using
// NumPy broadcasting: shapes are right aligned and every src axis must equal
// the dst axis or be 1. An empty srcShape is a scalar.
func BroadcastTo(dst []float64, dstShape Shape, src []float64, srcShape Shape) (err error) {
	var (
		nd     = len(dstShape)
		ns     = len(srcShape)
		stSrc  []int
		stDst  = dstShape.Strides()
		mapped = make([]int, nd) // src stride per dst axis, 0 when broadcast
	)
	if len(dst) != dstShape.Size() || len(src) != srcShape.Size() {
		return fmt.Errorf("data lengths %d, %d do not match shapes %v, %v: %w",
			len(dst), len(src), dstShape, srcShape, ErrBroadcast)
	}
	if ns > nd {
		return fmt.Errorf("cannot broadcast %v to %v: %w", srcShape, dstShape, ErrBroadcast)
	}
	stSrc = srcShape.Strides()
	for i := 0; i < ns; i++ {
		di := nd - ns + i
		switch srcShape[i] {
		case dstShape[di]:
			mapped[di] = stSrc[i]
		case 1:
			mapped[di] = 0
		default:
			return fmt.Errorf("cannot broadcast %v to %v: %w", srcShape, dstShape, ErrBroadcast)
		}
	}
	if ns == nd && srcShape.Equal(dstShape) {
		copy(dst, src)
		return
	}
	for i := range dst {
		var (
			rem = i
			j   int
		)
		for ax := 0; ax < nd; ax++ {
			ind := rem / stDst[ax]
			rem -= ind * stDst[ax]
			j += ind * mapped[ax]
		}
		dst[i] = src[j]
	}
	return
}
