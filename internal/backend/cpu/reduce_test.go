package cpu

import (
	"math"
	"testing"
)

func TestMeanVar(t *testing.T) {
	mean, variance := meanVar([]float32{1, 2, 3, 4})
	if math.Abs(float64(mean-2.5)) > 1e-6 {
		t.Errorf("mean = %v, want 2.5", mean)
	}
	if math.Abs(float64(variance-1.25)) > 1e-6 {
		t.Errorf("variance = %v, want 1.25", variance)
	}

	// Constant input must not go negative from rounding.
	_, v := meanVar([]float32{7, 7, 7, 7, 7})
	if v != 0 {
		t.Errorf("constant input variance = %v, want 0", v)
	}
}
