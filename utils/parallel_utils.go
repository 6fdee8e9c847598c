package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// DefaultParallelDegree is the CPU count, reduced to 1 when there are fewer
// items than CPUs.
func DefaultParallelDegree(maxIndex int) (np int) {
	np = runtime.NumCPU()
	if np > maxIndex {
		np = 1
	}
	return
}

func (pm *PartitionMap) GetBucket(kDim int) (bucketNum, min, max int) {
	_, bucketNum, min, max = pm.getBucketWithTryCount(kDim)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(kDim int) (tryCount, bucketNum, min, max int) {
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*kDim) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= kDim && pm.Partitions[bucketNum][1] > kDim) {
		if pm.Partitions[bucketNum][0] > kDim {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into pm.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// ParallelFor calls f(k) for every k in [0, MaxIndex), one goroutine per
// bucket. Each bucket stops at its first error; the error of the lowest
// failing index across buckets is returned so the result does not depend on
// scheduling.
func (pm *PartitionMap) ParallelFor(f func(k int) error) (err error) {
	var (
		g    errgroup.Group
		errs = make([]error, pm.ParallelDegree)
	)
	if pm.ParallelDegree == 1 {
		for k := 0; k < pm.MaxIndex; k++ {
			if err = f(k); err != nil {
				return
			}
		}
		return
	}
	for np := 0; np < pm.ParallelDegree; np++ {
		np := np
		g.Go(func() error {
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				if e := f(k); e != nil {
					errs[np] = e
					return e
				}
			}
			return nil
		})
	}
	if g.Wait() == nil {
		return
	}
	// Buckets are ordered by index, the first failing bucket holds the lowest k
	for np := 0; np < pm.ParallelDegree; np++ {
		if errs[np] != nil {
			return errs[np]
		}
	}
	return
}
