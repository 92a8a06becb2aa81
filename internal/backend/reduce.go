package backend

// Accumulator is a Kahan-compensated single-precision accumulator, the
// building block of every cross-frame reduction. The compensation term
// tracks the rounding error of each addition so long summations do not
// drift.
type Accumulator struct {
	sum float32
	c   float32
}

// Add folds v into the accumulator.
func (a *Accumulator) Add(v float32) {
	y := v - a.c
	t := a.sum + y
	a.c = (t - a.sum) - y
	a.sum = t
}

// Sum returns the accumulated total.
func (a *Accumulator) Sum() float32 { return a.sum }
