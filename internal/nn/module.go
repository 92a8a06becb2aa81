// Package nn implements neural network building blocks on top of the
// frame-buffer data model.
//
// This package provides:
//   - Module interface: the base contract for all layers
//   - Variables: the flat parameter/gradient export boundary
//   - BatchNorm: streaming batch normalization over frames
//   - Sparse: sparse-connectivity base for fan-in limited layers
//   - Sequential: container for stacking layers
//   - ReLU: elementwise rectifier
//
// Modules propagate shapes explicitly: SetInputShape binds a module to
// an input shape and reports the output shape, so containers can chain
// layers before any data flows.
package nn

import (
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Module is the base interface for all network layers.
//
// A module's lifecycle is: SetInputShape binds it to an input shape
// (re-binding is allowed and reinitializes internal state), Forward
// computes outputs for a batch of frames, Backward consumes the
// upstream gradient from the most recent training Forward.
type Module interface {
	// SetInputShape binds the module to an input shape and returns
	// the resulting output shape. Calling it again rebinds the
	// module and discards accumulated state.
	SetInputShape(shape tensor.Shape) (tensor.Shape, error)

	// Forward computes the module output for every frame of x.
	// Training mode may update internal statistics and saves what
	// the paired Backward needs.
	Forward(x *tensor.FrameBuffer, training bool) (*tensor.FrameBuffer, error)

	// Backward propagates the upstream gradient dy through the
	// module and returns the gradient with respect to the module
	// input.
	Backward(dy *tensor.FrameBuffer) (*tensor.FrameBuffer, error)

	// Parameters returns the module's trainable variables. Modules
	// without parameters return an empty collection.
	Parameters() *Variables

	// Gradients returns the gradient slices matching Parameters
	// entry for entry.
	Gradients() *Variables
}

// Variables is an ordered collection of named float32 slices. It is
// the export boundary between layers and optimizers: slices are
// aliased, not copied, so an optimizer update writes straight into
// the layer.
type Variables struct {
	names []string
	data  [][]float32
}

// NewVariables returns an empty collection.
func NewVariables() *Variables {
	return &Variables{}
}

// Append adds a named slice. The slice is aliased, not copied.
func (v *Variables) Append(name string, data []float32) {
	v.names = append(v.names, name)
	v.data = append(v.data, data)
}

// Extend appends every entry of other, preserving order.
func (v *Variables) Extend(other *Variables) {
	v.names = append(v.names, other.names...)
	v.data = append(v.data, other.data...)
}

// Len returns the number of entries.
func (v *Variables) Len() int { return len(v.data) }

// Name returns the name of entry i.
func (v *Variables) Name(i int) string { return v.names[i] }

// At returns the slice of entry i.
func (v *Variables) At(i int) []float32 { return v.data[i] }
