// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the portable scalar kernel tier.
package cpu

import (
	"github.com/splinedrive/BinaryBrain/backend"
	internalcpu "github.com/splinedrive/BinaryBrain/internal/backend/cpu"
)

// Backend is the scalar reference implementation of the kernels.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements backend.Kernels.
var _ backend.Kernels = (*Backend)(nil)

// New creates a scalar backend with its own worker pool.
func New() *Backend {
	return internalcpu.New()
}
