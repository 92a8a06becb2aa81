// Package simd implements the vectorized backend on go-highway portable
// SIMD. Frames are processed in lane-width chunks (8-wide float32 on AVX2)
// with vector Kahan accumulators; the reduction formula is the same as the
// scalar backend's, so the two agree within rounding.
package simd

import (
	"github.com/ajroetker/go-highway/hwy"

	"github.com/splinedrive/BinaryBrain/internal/backend"
)

// Backend implements backend.Kernels with vector loops.
type Backend struct{}

// New creates a vectorized backend. Always available: go-highway falls
// back to scalar lanes when the host has no SIMD.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string { return "simd" }

// Kind returns the capability class.
func (b *Backend) Kind() backend.Kind { return backend.Vector }

// vecAccumulator is the lane-wise counterpart of backend.Accumulator: one
// compensated partial sum per lane, folded into a scalar accumulator at
// the end of the loop.
type vecAccumulator struct {
	sum hwy.Vec[float32]
	c   hwy.Vec[float32]
}

func newVecAccumulator() vecAccumulator {
	return vecAccumulator{
		sum: hwy.Zero[float32](),
		c:   hwy.Zero[float32](),
	}
}

// Add folds one vector of values into the lane partials.
func (a *vecAccumulator) Add(v hwy.Vec[float32]) {
	y := hwy.Sub(v, a.c)
	t := hwy.Add(a.sum, y)
	a.c = hwy.Sub(hwy.Sub(t, a.sum), y)
	a.sum = t
}

// Fold combines the lane partials (and their residual compensation) into a
// scalar accumulator. scratch must hold at least MaxLanes elements.
func (a *vecAccumulator) Fold(into *backend.Accumulator, scratch []float32) {
	hwy.Store(a.sum, scratch)
	for _, v := range scratch {
		into.Add(v)
	}
	hwy.Store(a.c, scratch)
	for _, v := range scratch {
		into.Add(-v)
	}
}
