package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

func TestSparse_SerialWiring(t *testing.T) {
	s := NewSparse(SparseConfig{
		OutputShape: tensor.Shape{4},
		FanIn:       2,
		Policy:      "serial",
	})
	out, err := s.SetInputShape(tensor.Shape{8})
	require.NoError(t, err)
	assert.True(t, out.Equal(tensor.Shape{4}))

	want := [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}}
	for node, slots := range want {
		for slot, input := range slots {
			assert.Equal(t, input, s.Input(node, slot))
		}
	}
}

func TestSparse_GatherNode(t *testing.T) {
	s := NewSparse(SparseConfig{
		OutputShape: tensor.Shape{4},
		FanIn:       2,
		Policy:      "serial",
	})
	_, err := s.SetInputShape(tensor.Shape{8})
	require.NoError(t, err)

	x, err := tensor.NewFrameBuffer(2, 8, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	defer x.Release()
	for node := 0; node < 8; node++ {
		for f := 0; f < 2; f++ {
			x.Set(f, node, float32(10*node+f))
		}
	}

	dst := make([]float32, 2)
	s.GatherNode(x, 1, 2, dst)
	assert.Equal(t, []float32{41, 51}, dst)

	assert.PanicsWithValue(t, "sparse: dst length 3, fan-in 2", func() {
		s.GatherNode(x, 0, 0, make([]float32, 3))
	})
}

func TestSparse_CoordsAndRewire(t *testing.T) {
	s := NewSparse(SparseConfig{
		OutputShape: tensor.Shape{2, 2},
		FanIn:       3,
		Policy:      "random",
		Seed:        7,
	})
	_, err := s.SetInputShape(tensor.Shape{3, 4})
	require.NoError(t, err)

	assert.Equal(t, 3, s.FanIn())
	assert.Equal(t, 4, s.NumNodes())
	assert.Equal(t, []int{1, 1}, s.OutputCoords(3))

	require.NoError(t, s.SetInput(0, 0, 11))
	assert.Equal(t, 11, s.Input(0, 0))
	assert.Equal(t, []int{2, 3}, s.InputCoords(0, 0))
	assert.Error(t, s.SetInput(0, 0, 12))

	idx := s.Indices()
	require.Len(t, idx, 12)
	assert.Equal(t, int32(11), idx[0])
}

func TestSparse_RebindRebuildsTable(t *testing.T) {
	s := NewSparse(SparseConfig{
		OutputShape: tensor.Shape{2},
		FanIn:       2,
		Policy:      "random",
		Seed:        1,
	})
	_, err := s.SetInputShape(tensor.Shape{6})
	require.NoError(t, err)
	require.NoError(t, s.SetInput(0, 0, 5))
	before := s.Input(0, 0)

	_, err = s.SetInputShape(tensor.Shape{6})
	require.NoError(t, err)
	// fresh table from the same seed, manual rewiring gone unless
	// the policy happened to pick it
	assert.Equal(t, before, 5)
	first := s.Indices()
	_, err = s.SetInputShape(tensor.Shape{6})
	require.NoError(t, err)
	assert.Equal(t, first, s.Indices())
}

func TestSparse_PropagatesPolicyErrors(t *testing.T) {
	s := NewSparse(SparseConfig{
		OutputShape: tensor.Shape{4},
		FanIn:       9,
		Policy:      "random",
	})
	_, err := s.SetInputShape(tensor.Shape{8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sparse:")
}
