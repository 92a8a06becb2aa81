// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splinedrive/BinaryBrain/backend"
	"github.com/splinedrive/BinaryBrain/connect"
	"github.com/splinedrive/BinaryBrain/nn"
	"github.com/splinedrive/BinaryBrain/tensor"
)

// Exercises the whole public surface the way a downstream user would.
func TestPublicSurfaceRoundTrip(t *testing.T) {
	table, err := connect.Build(tensor.Shape{8}, tensor.Shape{4}, 2, connect.Serial, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Input(0, 1))

	model := nn.NewSequential(
		nn.NewBatchNorm(nn.BatchNormConfig{Backend: backend.Vector}),
		nn.NewReLU(),
	)
	outShape, err := model.SetInputShape(tensor.Shape{4})
	require.NoError(t, err)
	assert.True(t, outShape.Equal(tensor.Shape{4}))

	x, err := tensor.NewFrameBuffer(8, 4, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	defer x.Release()
	for node := 0; node < 4; node++ {
		for f := 0; f < 8; f++ {
			x.Set(f, node, float32(f*(node+1)))
		}
	}

	y, err := model.Forward(x, true)
	require.NoError(t, err)
	defer y.Release()

	dy, err := tensor.NewFrameBuffer(8, 4, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	defer dy.Release()
	for i := range dy.AsFloat32() {
		dy.AsFloat32()[i] = 1
	}

	dx, err := model.Backward(dy)
	require.NoError(t, err)
	defer dx.Release()

	assert.Equal(t, 2, model.Parameters().Len())
	assert.Equal(t, "gamma", model.Parameters().Name(0))
}

func TestSelectAlwaysReturnsKernels(t *testing.T) {
	for _, kind := range []backend.Kind{backend.Scalar, backend.Vector, backend.Parallel} {
		require.NotNil(t, backend.Select(kind))
	}
}
