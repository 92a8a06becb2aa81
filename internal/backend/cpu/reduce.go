package cpu

import "github.com/splinedrive/BinaryBrain/internal/backend"

// meanVar computes a node's batch mean and variance across frames in one
// compensated pass over sum and sum-of-squares. The variance is not yet
// floored; callers clamp before the inverse square root.
func meanVar(xs []float32) (mean, variance float32) {
	var sum, sumsq backend.Accumulator
	for _, v := range xs {
		sum.Add(v)
		sumsq.Add(v * v)
	}
	n := float32(len(xs))
	mean = sum.Sum() / n
	variance = sumsq.Sum()/n - mean*mean
	if variance < 0 {
		variance = 0 // rounding can push a constant input slightly negative
	}
	return mean, variance
}
