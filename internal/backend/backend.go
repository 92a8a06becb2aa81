// Package backend defines the execution-backend contract for the batch
// statistics pipeline: a small capability enum, the kernel interface each
// backend implements, and the per-node normalization state the kernels
// operate on.
//
// Implementations:
//   - cpu: portable scalar loops, node-parallel over a worker pool
//   - simd: vectorized loops via go-highway
//   - webgpu: block-parallel GPU reduction via WGSL compute shaders
package backend

import (
	"fmt"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Kind identifies a backend capability class. Dispatch falls back
// Parallel → Vector → Scalar when the preferred class is unavailable.
type Kind int

// Backend capability classes.
const (
	Scalar Kind = iota
	Vector
	Parallel
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Kernels is the interface all execution backends implement. Every call is
// synchronous: results are complete when the call returns, and the three
// implementations must agree within floating-point rounding tolerance for
// identical inputs.
type Kernels interface {
	// NormForward computes y = gamma*(x-mean)*rstd + beta per (frame,
	// node). In training mode the batch mean/variance are computed from
	// x, the running statistics receive an exponential-decay update, and
	// mean/rstd are persisted in st for the paired backward call. In
	// inference mode the running statistics are used and st is not
	// mutated.
	NormForward(x, y *tensor.FrameBuffer, st *NormState, training bool) error

	// NormBackward propagates the upstream gradient dy through the
	// normalization, writing dx and overwriting st.DGamma/st.DBeta. It
	// consumes the mean/rstd persisted by the previous training-mode
	// NormForward.
	NormBackward(x, dy, dx *tensor.FrameBuffer, st *NormState) error

	// Name returns the backend name.
	Name() string

	// Kind returns the capability class.
	Kind() Kind
}

// CheckNorm validates a buffer pair against the normalization state. All
// kernel implementations share these preconditions.
func CheckNorm(x, y *tensor.FrameBuffer, st *NormState) error {
	if x.Empty() {
		return fmt.Errorf("norm: empty input buffer")
	}
	if x.DType() != tensor.Float32 || y.DType() != tensor.Float32 {
		return fmt.Errorf("norm: buffers must be float32, got %s and %s", x.DType(), y.DType())
	}
	if x.NumFrames() != y.NumFrames() || x.NumNodes() != y.NumNodes() {
		return fmt.Errorf("norm: buffer extent mismatch %d×%d vs %d×%d",
			x.NumFrames(), x.NumNodes(), y.NumFrames(), y.NumNodes())
	}
	if x.NumNodes() != st.Nodes() {
		return fmt.Errorf("norm: state holds %d nodes, buffer has %d", st.Nodes(), x.NumNodes())
	}
	return nil
}
