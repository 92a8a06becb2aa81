// Package connect implements the sparse connectivity engine: it assigns,
// for every output node, a fixed-size ordered set of input-node indices
// under one of several topology policies, and exposes the resulting table
// to sparse-fan-in units for indirect addressing.
package connect

import (
	"fmt"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Table is the per-output-node connectivity artifact. For each output node
// it holds exactly FanIn() input-node indices in slot order; slot order
// determines which positional argument of the downstream unit each input
// feeds. Built once per shape change, immutable afterward except through
// SetInput.
type Table struct {
	inputShape  tensor.Shape
	outputShape tensor.Shape
	fanIn       int
	idx         []int32 // node-major: idx[node*fanIn+slot]
}

// NumInputs returns the input node count.
func (t *Table) NumInputs() int { return t.inputShape.NumNodes() }

// NumOutputs returns the output node count.
func (t *Table) NumOutputs() int { return t.outputShape.NumNodes() }

// InputShape returns the input shape the table was built for.
func (t *Table) InputShape() tensor.Shape { return t.inputShape }

// OutputShape returns the output shape the table was built for.
func (t *Table) OutputShape() tensor.Shape { return t.outputShape }

// FanIn returns the fixed number of input connections per output node.
func (t *Table) FanIn() int { return t.fanIn }

// Input returns the input node feeding the given (node, slot) pair.
func (t *Table) Input(node, slot int) int {
	t.check(node, slot)
	return int(t.idx[node*t.fanIn+slot])
}

// SetInput overwrites one connectivity entry; used for manual re-wiring.
// Returns an error if the input index is out of range.
func (t *Table) SetInput(node, slot, input int) error {
	t.check(node, slot)
	if input < 0 || input >= t.NumInputs() {
		return fmt.Errorf("connect: input node %d out of range [0,%d)", input, t.NumInputs())
	}
	t.idx[node*t.fanIn+slot] = int32(input)
	return nil
}

// InputCoords translates a flat input node index to coordinates.
func (t *Table) InputCoords(node int) []int { return t.inputShape.Coords(node) }

// OutputCoords translates a flat output node index to coordinates.
func (t *Table) OutputCoords(node int) []int { return t.outputShape.Coords(node) }

// Indices returns the full table in node-major slot order. The slice is a
// copy; it is the persisted-state layout consumed by serialization.
func (t *Table) Indices() []int32 {
	out := make([]int32, len(t.idx))
	copy(out, t.idx)
	return out
}

func (t *Table) check(node, slot int) {
	if node < 0 || node >= t.NumOutputs() {
		panic(fmt.Sprintf("connect: output node %d out of range [0,%d)", node, t.NumOutputs()))
	}
	if slot < 0 || slot >= t.fanIn {
		panic(fmt.Sprintf("connect: slot %d out of range [0,%d)", slot, t.fanIn))
	}
}
