package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

func TestIsAvailable(t *testing.T) {
	available := IsAvailable()
	t.Logf("WebGPU available: %v", available)
	// This test doesn't fail if WebGPU is unavailable, it just
	// reports the status.
}

func requireGPU(t *testing.T) *Backend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Skipf("WebGPU not available on this system: %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

func TestNew(t *testing.T) {
	b := requireGPU(t)
	assert.Equal(t, "webgpu", b.Name())
	assert.Equal(t, backend.Parallel, b.Kind())
}

func newFrames(t *testing.T, data [][]float32) *tensor.FrameBuffer {
	t.Helper()
	frames := len(data[0])
	fb, err := tensor.NewFrameBuffer(frames, len(data), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	for node, xs := range data {
		for f, v := range xs {
			fb.Set(f, node, v)
		}
	}
	return fb
}

func TestNormForward_MatchesReference(t *testing.T) {
	b := requireGPU(t)

	x := newFrames(t, [][]float32{{1, 2, 3, 4}})
	y, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	st := backend.NewNormState(1, 1, 0, backend.DefaultEps, 0)

	require.NoError(t, b.NormForward(x, y, st, true))

	assert.InDelta(t, 2.5, st.Mean[0], 1e-5)
	assert.InDelta(t, 2.5, st.RunningMean[0], 1e-5)
	assert.InDelta(t, 1.25, st.RunningVar[0], 1e-5)
	assert.InDelta(t, 0.894427, st.Rstd[0], 1e-5)

	want := []float32{-1.341641, -0.447214, 0.447214, 1.341641}
	for f, w := range want {
		assert.InDelta(t, w, y.At(f, 0), 1e-4, "frame %d", f)
	}
}

func TestNormForward_InferenceUsesRunningStats(t *testing.T) {
	b := requireGPU(t)

	x := newFrames(t, [][]float32{{5, 7}})
	y, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	st := backend.NewNormState(1, 1, 0, backend.DefaultEps, backend.DefaultMomentum)
	st.RunningMean[0] = 6
	st.RunningVar[0] = 4

	require.NoError(t, b.NormForward(x, y, st, false))

	assert.InDelta(t, -0.5, y.At(0, 0), 1e-5)
	assert.InDelta(t, 0.5, y.At(1, 0), 1e-5)
	// Inference must not touch the running averages.
	assert.Equal(t, float32(6), st.RunningMean[0])
	assert.Equal(t, float32(4), st.RunningVar[0])
}

func TestNormBackward_ZeroUpstream(t *testing.T) {
	b := requireGPU(t)

	x := newFrames(t, [][]float32{{1, 2, 3, 4}, {-1, 0, 1, 2}})
	y, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	dy, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	dx, err := tensor.NewFrameBuffer(x.NumFrames(), x.NumNodes(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	st := backend.NewNormState(2, 1, 0, backend.DefaultEps, backend.DefaultMomentum)

	require.NoError(t, b.NormForward(x, y, st, true))
	require.NoError(t, b.NormBackward(x, dy, dx, st))

	for node := 0; node < 2; node++ {
		assert.Zero(t, st.DGamma[node])
		assert.Zero(t, st.DBeta[node])
		for f := 0; f < 4; f++ {
			assert.Zero(t, dx.At(f, node))
		}
	}
}
