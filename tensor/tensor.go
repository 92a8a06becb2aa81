// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the shape and frame-buffer data model.
//
// A Shape describes a node grid with the first axis varying fastest.
// A FrameBuffer holds a batch of frames in node-major order, one
// padded stripe per node, with reference-counted release semantics.
package tensor

import (
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Shape describes the extents of a node grid.
type Shape = tensor.Shape

// DataType identifies the element type of a buffer.
type DataType = tensor.DataType

// Supported element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// Device identifies where a buffer's authoritative copy lives.
type Device = tensor.Device

// Supported devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// Residency tracks which copies of a buffer are current.
type Residency = tensor.Residency

// Residency flags.
const (
	HostValid   = tensor.HostValid
	DeviceValid = tensor.DeviceValid
)

// FrameBuffer is a node-major batch of frames.
type FrameBuffer = tensor.FrameBuffer

// NewFrameBuffer allocates a zeroed buffer for the given extents.
// Zero frames is a valid empty buffer.
func NewFrameBuffer(frames, nodes int, dtype DataType, device Device) (*FrameBuffer, error) {
	return tensor.NewFrameBuffer(frames, nodes, dtype, device)
}
