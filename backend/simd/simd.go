// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package simd provides the vectorized kernel tier.
package simd

import (
	"github.com/splinedrive/BinaryBrain/backend"
	internalsimd "github.com/splinedrive/BinaryBrain/internal/backend/simd"
)

// Backend implements the kernels with portable SIMD vectors.
type Backend = internalsimd.Backend

// Compile-time check that Backend implements backend.Kernels.
var _ backend.Kernels = (*Backend)(nil)

// New creates a vector backend.
func New() *Backend {
	return internalsimd.New()
}
