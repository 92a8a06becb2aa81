package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

func frames(t *testing.T, data [][]float32) *tensor.FrameBuffer {
	t.Helper()
	fb, err := tensor.NewFrameBuffer(len(data[0]), len(data), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	for node, xs := range data {
		for f, v := range xs {
			fb.Set(f, node, v)
		}
	}
	return fb
}

func TestBatchNorm_RequiresShape(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	x := frames(t, [][]float32{{1, 2}})
	_, err := bn.Forward(x, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SetInputShape")
}

func TestBatchNorm_TrainingForward(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{ExactMomentum: true})
	out, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{1}))

	x := frames(t, [][]float32{{1, 2, 3, 4}})
	y, err := bn.Forward(x, true)
	require.NoError(t, err)
	defer y.Release()

	want := []float32{-1.341641, -0.447214, 0.447214, 1.341641}
	for f, w := range want {
		assert.InDelta(t, w, y.At(f, 0), 1e-5)
	}
	// momentum 0 replaces the running stats with the batch stats
	assert.InDelta(t, 2.5, bn.RunningMean()[0], 1e-6)
	assert.InDelta(t, 1.25, bn.RunningVar()[0], 1e-6)
}

func TestBatchNorm_BackwardRequiresTrainingForward(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{2})
	require.NoError(t, err)

	x := frames(t, [][]float32{{1, 2}, {3, 4}})
	y, err := bn.Forward(x, false)
	require.NoError(t, err)
	y.Release()

	dy := frames(t, [][]float32{{1, 1}, {1, 1}})
	_, err = bn.Backward(dy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training Forward")
}

func TestBatchNorm_RebindResetsState(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{ExactMomentum: true})
	_, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)

	x := frames(t, [][]float32{{1, 2, 3, 4}})
	y, err := bn.Forward(x, true)
	require.NoError(t, err)
	y.Release()
	require.NotZero(t, bn.RunningMean()[0])

	// same shape, fresh state
	_, err = bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)
	assert.Zero(t, bn.RunningMean()[0])
	assert.Equal(t, float32(1), bn.RunningVar()[0])

	dy := frames(t, [][]float32{{1, 1, 1, 1}})
	_, err = bn.Backward(dy)
	assert.Error(t, err)
}

func TestBatchNorm_InferenceDoesNotMutate(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)
	bn.RunningMean()[0] = 6
	bn.RunningVar()[0] = 4

	x := frames(t, [][]float32{{5, 7}})
	y, err := bn.Forward(x, false)
	require.NoError(t, err)
	defer y.Release()

	assert.InDelta(t, -0.5, y.At(0, 0), 1e-6)
	assert.InDelta(t, 0.5, y.At(1, 0), 1e-6)
	assert.Equal(t, float32(6), bn.RunningMean()[0])
	assert.Equal(t, float32(4), bn.RunningVar()[0])
}

func TestBatchNorm_NodeForward(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{2})
	require.NoError(t, err)
	bn.RunningMean()[1] = 6
	bn.RunningVar()[1] = 4

	assert.InDelta(t, -0.5, bn.NodeForward(1, 5), 1e-6)
	assert.InDelta(t, 0.5, bn.NodeForward(1, 7), 1e-6)
}

func TestBatchNorm_ConstantInputYieldsBeta(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{GammaInit: 2, BetaInit: 3, UseInit: true})
	_, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)

	x := frames(t, [][]float32{{7, 7, 7, 7}})
	y, err := bn.Forward(x, true)
	require.NoError(t, err)
	defer y.Release()

	for f := 0; f < 4; f++ {
		assert.InDelta(t, 3, y.At(f, 0), 1e-5)
	}
}

func TestBatchNorm_ParametersAndGradients(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{3})
	require.NoError(t, err)

	params := bn.Parameters()
	require.Equal(t, 2, params.Len())
	assert.Equal(t, "gamma", params.Name(0))
	assert.Equal(t, "beta", params.Name(1))
	assert.Len(t, params.At(0), 3)
	assert.Equal(t, float32(1), params.At(0)[0])

	grads := bn.Gradients()
	require.Equal(t, 2, grads.Len())
	assert.Len(t, grads.At(0), 3)

	// optimizer writes reach the layer through the alias
	params.At(1)[2] = 5
	x := frames(t, [][]float32{{0, 0}, {0, 0}, {0, 0}})
	y, err := bn.Forward(x, true)
	require.NoError(t, err)
	defer y.Release()
	assert.InDelta(t, 5, y.At(0, 2), 1e-5)
}

func TestBatchNorm_GradientsFlowThroughBackward(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)

	x := frames(t, [][]float32{{1, 2, 3, 4}})
	y, err := bn.Forward(x, true)
	require.NoError(t, err)
	y.Release()

	dy := frames(t, [][]float32{{1, 1, 1, 1}})
	dx, err := bn.Backward(dy)
	require.NoError(t, err)
	defer dx.Release()

	// dbeta is the plain sum of dy
	assert.InDelta(t, 4, bn.Gradients().At(1)[0], 1e-5)
	// normalized input sums to zero, so dgamma vanishes for flat dy
	assert.InDelta(t, 0, bn.Gradients().At(0)[0], 1e-4)
	// a shift-invariant output means dx sums to zero
	var sum float32
	for f := 0; f < 4; f++ {
		sum += dx.At(f, 0)
	}
	assert.InDelta(t, 0, sum, 1e-4)
}

func TestBatchNorm_DefaultsApplied(t *testing.T) {
	bn := NewBatchNorm(BatchNormConfig{})
	_, err := bn.SetInputShape(tensor.Shape{1})
	require.NoError(t, err)
	assert.Equal(t, backend.DefaultMomentum, bn.st.Momentum)
	assert.Equal(t, backend.DefaultEps, bn.st.Eps)
	assert.Equal(t, float32(1), bn.st.Gamma[0])
	assert.Equal(t, float32(0), bn.st.Beta[0])
}
