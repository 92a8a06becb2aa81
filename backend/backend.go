// Copyright 2025 BinaryBrain Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend exposes the kernel tiers and their selection.
//
// Three tiers implement the same normalization kernels: scalar
// (portable), vector (SIMD) and parallel (GPU). Select falls back
// toward scalar when a tier is unavailable, so callers can always
// request the fastest tier.
package backend

import (
	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/backend/dispatch"
)

// Kind identifies a kernel tier.
type Kind = backend.Kind

// Kernel tiers, slowest to fastest.
const (
	Scalar   = backend.Scalar
	Vector   = backend.Vector
	Parallel = backend.Parallel
)

// Kernels is the contract every tier implements.
type Kernels = backend.Kernels

// NormState holds the parameters and statistics of one normalization
// layer, shared across tiers.
type NormState = backend.NormState

// NewNormState allocates per-node state for the given node count.
func NewNormState(nodes int, gammaInit, betaInit, eps, momentum float32) *NormState {
	return backend.NewNormState(nodes, gammaInit, betaInit, eps, momentum)
}

// Default normalization constants.
const (
	DefaultEps      = backend.DefaultEps
	DefaultMomentum = backend.DefaultMomentum
)

// Select returns kernels for the requested tier, falling back from
// parallel to vector to scalar when a tier is unavailable.
func Select(kind Kind) Kernels {
	return dispatch.Select(kind)
}
