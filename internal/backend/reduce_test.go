package backend

import (
	"math"
	"testing"
)

// TestAccumulator_Compensation sums many small values onto a large one,
// where naive float32 accumulation loses every addend.
func TestAccumulator_Compensation(t *testing.T) {
	const n = 1 << 20
	var acc Accumulator
	acc.Add(1 << 24)
	for i := 0; i < n; i++ {
		acc.Add(0.5)
	}
	want := float64(1<<24) + float64(n)*0.5
	if got := float64(acc.Sum()); math.Abs(got-want)/want > 1e-7 {
		t.Errorf("compensated sum = %v, want %v", got, want)
	}
}
