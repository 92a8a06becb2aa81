// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides network layers over the frame-buffer data model.
//
// # Basic Usage
//
//	import (
//	    "github.com/splinedrive/BinaryBrain/nn"
//	    "github.com/splinedrive/BinaryBrain/tensor"
//	)
//
//	func main() {
//	    model := nn.NewSequential(
//	        nn.NewBatchNorm(nn.BatchNormConfig{}),
//	        nn.NewReLU(),
//	    )
//	    outShape, err := model.SetInputShape(tensor.Shape{28, 28, 1})
//	    ...
//	}
package nn

import (
	"github.com/splinedrive/BinaryBrain/internal/nn"
)

// Module is the base interface for all network layers.
type Module = nn.Module

// Variables is the flat parameter and gradient export collection.
type Variables = nn.Variables

// NewVariables returns an empty collection.
func NewVariables() *Variables {
	return nn.NewVariables()
}

// BatchNorm normalizes each node over the frame axis.
type BatchNorm = nn.BatchNorm

// BatchNormConfig configures a BatchNorm layer; the zero value selects
// the defaults.
type BatchNormConfig = nn.BatchNormConfig

// NewBatchNorm creates an unbound BatchNorm layer.
func NewBatchNorm(cfg BatchNormConfig) *BatchNorm {
	return nn.NewBatchNorm(cfg)
}

// Sparse is the connectivity base for fan-in limited layers.
type Sparse = nn.Sparse

// SparseConfig describes the connectivity a Sparse component builds.
type SparseConfig = nn.SparseConfig

// NewSparse creates an unbound Sparse component.
func NewSparse(cfg SparseConfig) *Sparse {
	return nn.NewSparse(cfg)
}

// Sequential chains modules so each output feeds the next input.
type Sequential = nn.Sequential

// NewSequential creates a container over the given modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// ReLU is the stateless rectifier layer.
type ReLU = nn.ReLU

// NewReLU creates an unbound ReLU layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}
