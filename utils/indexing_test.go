package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s, err := NewShape(2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 24, s.Size())
	assert.Equal(t, []int{12, 4, 1}, s.Strides())
	assert.Equal(t, Shape{2, 3, 4, 5}, s.Append(5))
	assert.Equal(t, Shape{2, 3, 4}, s)
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	assert.Equal(t, 1, Shape{}.Size())

	off, sub, err := s.Offset(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, off)
	assert.Equal(t, Shape{4}, sub)
	off, sub, err = s.Offset(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 23, off)
	assert.Equal(t, 1, sub.Size())
	_, _, err = s.Offset(2)
	assert.True(t, errors.Is(err, ErrBroadcast))
	_, _, err = s.Offset(0, 0, 0, 0)
	assert.True(t, errors.Is(err, ErrBroadcast))

	_, err = NewShape(3, 0)
	assert.True(t, errors.Is(err, ErrBroadcast))
}

func TestBroadcastTo(t *testing.T) {
	dstShape := Shape{2, 3}
	{ // Test scalar
		dst := make([]float64, 6)
		require.NoError(t, BroadcastTo(dst, dstShape, []float64{7}, nil))
		assert.Equal(t, ConstArray(6, 7), dst)
	}
	{ // Test trailing axis
		dst := make([]float64, 6)
		require.NoError(t, BroadcastTo(dst, dstShape, []float64{1, 2, 3}, Shape{3}))
		assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, dst)
	}
	{ // Test unit axes
		dst := make([]float64, 6)
		require.NoError(t, BroadcastTo(dst, dstShape, []float64{1, 2}, Shape{2, 1}))
		assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, dst)
		require.NoError(t, BroadcastTo(dst, dstShape, []float64{4, 5, 6}, Shape{1, 3}))
		assert.Equal(t, []float64{4, 5, 6, 4, 5, 6}, dst)
	}
	{ // Test mismatches leave dst alone
		dst := ConstArray(6, -1)
		assert.True(t, errors.Is(BroadcastTo(dst, dstShape, []float64{1, 2}, Shape{2}), ErrBroadcast))
		assert.True(t, errors.Is(BroadcastTo(dst, dstShape, []float64{1, 2, 3}, Shape{2}), ErrBroadcast))
		assert.True(t, errors.Is(BroadcastTo(dst, dstShape, make([]float64, 6), Shape{1, 2, 3}), ErrBroadcast))
		assert.Equal(t, ConstArray(6, -1), dst)
	}
}
