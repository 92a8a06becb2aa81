package nn

import (
	"fmt"
	"math"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/backend/dispatch"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// BatchNormConfig configures a BatchNorm layer. The zero value selects
// the defaults: momentum 0.9, eps 1e-7, gamma 1, beta 0, scalar
// kernels.
type BatchNormConfig struct {
	// Momentum weights the previous running statistics in the
	// exponential moving average. Zero or negative selects the
	// default 0.9; use ExactMomentum for a literal zero.
	Momentum float32

	// ExactMomentum takes Momentum at face value, including zero.
	ExactMomentum bool

	// Eps floors the batch variance before the reciprocal square
	// root. Zero selects the default 1e-7.
	Eps float32

	// GammaInit and BetaInit seed the scale and shift parameters
	// when the layer binds to a shape. UseInit makes zero values
	// literal; otherwise gamma defaults to 1.
	GammaInit float32
	BetaInit  float32
	UseInit   bool

	// Backend picks the kernel tier. Unavailable tiers fall back
	// toward scalar.
	Backend backend.Kind
}

func (c BatchNormConfig) withDefaults() BatchNormConfig {
	if c.Momentum <= 0 && !c.ExactMomentum {
		c.Momentum = backend.DefaultMomentum
	}
	if c.Eps <= 0 {
		c.Eps = backend.DefaultEps
	}
	if !c.UseInit {
		c.GammaInit = 1
		c.BetaInit = 0
	}
	return c
}

// BatchNorm normalizes each node over the frame axis.
//
// Training forward computes per-node batch mean and variance, folds
// them into the running averages, normalizes with the batch
// statistics, and saves mean and rstd for the paired Backward.
// Inference forward normalizes against the running averages and
// mutates nothing.
//
// The layer is a state machine: it must be bound to a shape before
// Forward, and Backward is only valid after a training Forward.
// Re-binding resets all statistics and parameters.
type BatchNorm struct {
	cfg   BatchNormConfig
	shape tensor.Shape
	st    *backend.NormState

	// saved by the last training forward
	input       *tensor.FrameBuffer
	forwardDone bool
}

// NewBatchNorm creates an unbound BatchNorm layer.
func NewBatchNorm(cfg BatchNormConfig) *BatchNorm {
	return &BatchNorm{cfg: cfg.withDefaults()}
}

// SetInputShape binds the layer to shape. The output shape equals the
// input shape. Re-binding reinitializes parameters and running
// statistics, even for the same shape.
func (l *BatchNorm) SetInputShape(shape tensor.Shape) (tensor.Shape, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("batchnorm: %w", err)
	}
	l.shape = shape.Clone()
	l.st = backend.NewNormState(shape.NumNodes(), l.cfg.GammaInit, l.cfg.BetaInit, l.cfg.Eps, l.cfg.Momentum)
	l.releaseInput()
	l.forwardDone = false
	return l.shape.Clone(), nil
}

// Forward normalizes x node by node. In training mode the batch
// statistics update the running averages and the input is retained
// for Backward.
func (l *BatchNorm) Forward(x *tensor.FrameBuffer, training bool) (*tensor.FrameBuffer, error) {
	if l.st == nil {
		return nil, fmt.Errorf("batchnorm: SetInputShape must be called before Forward")
	}
	if x.NumNodes() != l.shape.NumNodes() {
		return nil, fmt.Errorf("batchnorm: input has %d nodes, layer bound to %d", x.NumNodes(), l.shape.NumNodes())
	}

	y, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), x.DType(), x.Device())
	if err != nil {
		return nil, err
	}

	k := dispatch.Select(l.cfg.Backend)
	if err := k.NormForward(x, y, l.st, training); err != nil {
		y.Release()
		return nil, fmt.Errorf("batchnorm forward (%s): %w", k.Name(), err)
	}

	if training {
		l.releaseInput()
		l.input = x.Clone()
		l.forwardDone = true
	}
	return y, nil
}

// Backward computes dx from the upstream gradient and fills in the
// gamma and beta gradients. It consumes the statistics saved by the
// last training Forward.
func (l *BatchNorm) Backward(dy *tensor.FrameBuffer) (*tensor.FrameBuffer, error) {
	if !l.forwardDone {
		return nil, fmt.Errorf("batchnorm: Backward requires a prior training Forward")
	}
	if dy.NumFrames() != l.input.NumFrames() || dy.NumNodes() != l.input.NumNodes() {
		return nil, fmt.Errorf("batchnorm: gradient extent %dx%d does not match forward input %dx%d",
			dy.NumFrames(), dy.NumNodes(), l.input.NumFrames(), l.input.NumNodes())
	}

	dx, err := tensor.NewFrameBuffer(dy.NumFrames(), dy.NumNodes(), dy.DType(), dy.Device())
	if err != nil {
		return nil, err
	}

	k := dispatch.Select(l.cfg.Backend)
	if err := k.NormBackward(l.input, dy, dx, l.st); err != nil {
		dx.Release()
		return nil, fmt.Errorf("batchnorm backward (%s): %w", k.Name(), err)
	}
	return dx, nil
}

// NodeForward evaluates a single input value at one node using the
// running statistics. Useful for probing a trained layer without
// building a frame buffer.
func (l *BatchNorm) NodeForward(node int, x float32) float32 {
	mean := l.st.RunningMean[node]
	v := l.st.RunningVar[node]
	if v < l.st.Eps {
		v = l.st.Eps
	}
	rstd := float32(1 / math.Sqrt(float64(v)))
	return l.st.Gamma[node]*(x-mean)*rstd + l.st.Beta[node]
}

// Parameters returns gamma and beta.
func (l *BatchNorm) Parameters() *Variables {
	v := NewVariables()
	if l.st != nil {
		v.Append("gamma", l.st.Gamma)
		v.Append("beta", l.st.Beta)
	}
	return v
}

// Gradients returns dgamma and dbeta, matching Parameters.
func (l *BatchNorm) Gradients() *Variables {
	v := NewVariables()
	if l.st != nil {
		v.Append("gamma", l.st.DGamma)
		v.Append("beta", l.st.DBeta)
	}
	return v
}

// RunningMean returns the running mean slice, aliased.
func (l *BatchNorm) RunningMean() []float32 { return l.st.RunningMean }

// RunningVar returns the running variance slice, aliased.
func (l *BatchNorm) RunningVar() []float32 { return l.st.RunningVar }

func (l *BatchNorm) releaseInput() {
	if l.input != nil {
		l.input.Release()
		l.input = nil
	}
}
