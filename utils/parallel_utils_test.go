package utils

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			// for n := 64; n < 10000; n++ {
			// n := 64
			// {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			// fmt.Printf("keys = %v, histo[%d] = %v\n", keys, n, histo)
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Test inverted bucket probe - find bucket that contains index (efficiently)
		for maxIndex := 10; maxIndex < 1000; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
	}
}

func TestParallelFor(t *testing.T) {
	{ // Test every index is visited exactly once
		for _, np := range []int{0, 1, 3, 8, 64} {
			var (
				pm     = NewPartitionMap(np, 50)
				visits = make([]int32, 50)
			)
			if pm.ParallelDegree > pm.MaxIndex {
				pm = NewPartitionMap(pm.MaxIndex, pm.MaxIndex)
			}
			assert.NoError(t, pm.ParallelFor(func(k int) error {
				atomic.AddInt32(&visits[k], 1)
				return nil
			}))
			for k := range visits {
				assert.Equal(t, int32(1), visits[k])
			}
		}
	}
	{ // Test the error of the lowest failing index is returned
		errBad := errors.New("bad index")
		for _, np := range []int{1, 4, 10} {
			pm := NewPartitionMap(np, 100)
			err := pm.ParallelFor(func(k int) error {
				if k == 37 || k == 81 || k == 99 {
					return fmt.Errorf("index %d: %w", k, errBad)
				}
				return nil
			})
			assert.True(t, errors.Is(err, errBad))
			assert.Equal(t, "index 37: bad index", err.Error())
		}
	}
	{ // Test default degree
		assert.Equal(t, 1, DefaultParallelDegree(0))
		assert.True(t, DefaultParallelDegree(1<<20) >= 1)
	}
}
