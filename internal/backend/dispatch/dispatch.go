// Package dispatch selects the kernel implementation for a requested
// backend kind, falling back from parallel to vector to scalar when a
// tier is unavailable.
package dispatch

import (
	"sync"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/backend/cpu"
	"github.com/splinedrive/BinaryBrain/internal/backend/simd"
	"github.com/splinedrive/BinaryBrain/internal/backend/webgpu"
)

var (
	mu sync.Mutex

	scalarKernels backend.Kernels
	vectorKernels backend.Kernels

	gpuKernels backend.Kernels
	gpuTried   bool
)

// Select returns kernels for the requested kind. The parallel tier is
// probed once per process; if the GPU is unavailable the request falls
// back to vector, which always succeeds. Instances are cached, so
// repeated calls return the same backend.
func Select(kind backend.Kind) backend.Kernels {
	mu.Lock()
	defer mu.Unlock()

	if kind == backend.Parallel {
		if !gpuTried {
			gpuTried = true
			if b, err := webgpu.New(); err == nil {
				gpuKernels = b
			}
		}
		if gpuKernels != nil {
			return gpuKernels
		}
		kind = backend.Vector
	}

	if kind == backend.Vector {
		if vectorKernels == nil {
			vectorKernels = simd.New()
		}
		return vectorKernels
	}

	if scalarKernels == nil {
		scalarKernels = cpu.New()
	}
	return scalarKernels
}
