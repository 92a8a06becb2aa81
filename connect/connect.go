// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package connect builds sparse connectivity tables that wire a fixed
// number of inputs to every output node under a named policy.
package connect

import (
	"github.com/splinedrive/BinaryBrain/internal/connect"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Table maps every output node to its fan-in input indices.
type Table = connect.Table

// Policy names accepted by Build.
const (
	Random    = connect.Random
	Serial    = connect.Serial
	Pointwise = connect.Pointwise
	Depthwise = connect.Depthwise
	Gauss     = connect.Gauss
)

// Build constructs a connectivity table. The seed fully determines
// every randomized policy; an empty policy selects random.
//
// Example:
//
//	table, err := connect.Build(
//	    tensor.Shape{28, 28, 1}, // input grid
//	    tensor.Shape{10, 10, 8}, // output grid
//	    6,                       // inputs per node
//	    connect.Random,
//	    42,
//	)
func Build(inputShape, outputShape tensor.Shape, fanIn int, policy string, seed uint64) (*Table, error) {
	return connect.Build(inputShape, outputShape, fanIn, policy, seed)
}
