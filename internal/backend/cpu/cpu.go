// Package cpu implements the portable scalar backend. Per-node work is
// independent and distributed across a fixed worker pool; every reduction
// uses compensated summation so large frame counts stay accurate in
// single precision.
package cpu

import (
	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"github.com/splinedrive/BinaryBrain/internal/backend"
)

// Backend implements backend.Kernels with scalar loops.
type Backend struct {
	pool *workerpool.Pool
}

// New creates a scalar backend with a worker pool sized to GOMAXPROCS.
func New() *Backend {
	return &Backend{
		pool: workerpool.New(0),
	}
}

// Close shuts down the worker pool.
func (b *Backend) Close() {
	b.pool.Close()
}

// Name returns the backend name.
func (b *Backend) Name() string { return "cpu" }

// Kind returns the capability class.
func (b *Backend) Kind() backend.Kind { return backend.Scalar }
