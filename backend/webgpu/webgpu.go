// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU kernel tier.
package webgpu

import (
	"github.com/splinedrive/BinaryBrain/backend"
	internalwebgpu "github.com/splinedrive/BinaryBrain/internal/backend/webgpu"
)

// Backend runs the kernels on a WebGPU device.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements backend.Kernels.
var _ backend.Kernels = (*Backend)(nil)

// New creates a GPU backend, or an error when no adapter is usable.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU device can be initialized.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
