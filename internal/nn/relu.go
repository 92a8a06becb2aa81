package nn

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// ReLU is the stateless rectifier: forward clamps negatives to zero,
// backward passes the gradient only where the forward input was
// positive.
type ReLU struct {
	shape tensor.Shape
	input *tensor.FrameBuffer
}

// NewReLU creates an unbound ReLU layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// SetInputShape binds the layer. Output shape equals input shape.
func (l *ReLU) SetInputShape(shape tensor.Shape) (tensor.Shape, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("relu: %w", err)
	}
	l.shape = shape.Clone()
	if l.input != nil {
		l.input.Release()
		l.input = nil
	}
	return l.shape.Clone(), nil
}

// Forward computes max(x, 0) per element. Training retains the input
// for the backward gate.
func (l *ReLU) Forward(x *tensor.FrameBuffer, training bool) (*tensor.FrameBuffer, error) {
	if l.shape == nil {
		return nil, fmt.Errorf("relu: SetInputShape must be called before Forward")
	}
	y, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), x.DType(), x.Device())
	if err != nil {
		return nil, err
	}

	xs := x.AsFloat32()
	ys := y.AsFloat32()
	lanes := hwy.MaxLanes[float32]()
	i := 0
	for ; i+lanes <= len(xs); i += lanes {
		hwy.Store(hwy.ZeroIfNegative(hwy.Load(xs[i:i+lanes])), ys[i:i+lanes])
	}
	for ; i < len(xs); i++ {
		if xs[i] > 0 {
			ys[i] = xs[i]
		}
	}

	if training {
		if l.input != nil {
			l.input.Release()
		}
		l.input = x.Clone()
	}
	return y, nil
}

// Backward gates the upstream gradient on the sign of the forward
// input.
func (l *ReLU) Backward(dy *tensor.FrameBuffer) (*tensor.FrameBuffer, error) {
	if l.input == nil {
		return nil, fmt.Errorf("relu: Backward requires a prior training Forward")
	}
	if dy.NumFrames() != l.input.NumFrames() || dy.NumNodes() != l.input.NumNodes() {
		return nil, fmt.Errorf("relu: gradient extent %dx%d does not match forward input %dx%d",
			dy.NumFrames(), dy.NumNodes(), l.input.NumFrames(), l.input.NumNodes())
	}
	dx, err := tensor.NewFrameBuffer(dy.NumFrames(), dy.NumNodes(), dy.DType(), dy.Device())
	if err != nil {
		return nil, err
	}

	xs := l.input.AsFloat32()
	dys := dy.AsFloat32()
	dxs := dx.AsFloat32()
	lanes := hwy.MaxLanes[float32]()
	zero := hwy.Zero[float32]()
	i := 0
	for ; i+lanes <= len(xs); i += lanes {
		mask := hwy.GreaterThan(hwy.Load(xs[i:i+lanes]), zero)
		hwy.Store(hwy.IfThenElseZero(mask, hwy.Load(dys[i:i+lanes])), dxs[i:i+lanes])
	}
	for ; i < len(xs); i++ {
		if xs[i] > 0 {
			dxs[i] = dys[i]
		}
	}
	return dx, nil
}

// Parameters returns an empty collection; ReLU has no parameters.
func (l *ReLU) Parameters() *Variables { return NewVariables() }

// Gradients returns an empty collection.
func (l *ReLU) Gradients() *Variables { return NewVariables() }
