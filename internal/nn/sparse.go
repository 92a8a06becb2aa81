package nn

import (
	"fmt"

	"github.com/splinedrive/BinaryBrain/internal/connect"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// SparseConfig describes the connectivity a Sparse component builds
// when it binds to an input shape.
type SparseConfig struct {
	// OutputShape is the node grid of the layer.
	OutputShape tensor.Shape

	// FanIn is the number of inputs wired to each output node.
	FanIn int

	// Policy selects the wiring rule: "random", "serial",
	// "pointwise", "depthwise" or "gauss". Empty means random.
	Policy string

	// Seed makes randomized policies reproducible.
	Seed uint64
}

// Sparse is the connectivity base shared by fan-in limited layers.
// It owns the input index table and offers indirect addressing over
// frame buffers; concrete layers embed it and add their per-node
// transfer function.
type Sparse struct {
	cfg   SparseConfig
	table *connect.Table
}

// NewSparse creates an unbound Sparse component.
func NewSparse(cfg SparseConfig) *Sparse {
	return &Sparse{cfg: cfg}
}

// SetInputShape builds the connectivity table for the given input
// shape and returns the output shape. Re-binding rebuilds the table
// from the configured policy and seed.
func (s *Sparse) SetInputShape(shape tensor.Shape) (tensor.Shape, error) {
	table, err := connect.Build(shape, s.cfg.OutputShape, s.cfg.FanIn, s.cfg.Policy, s.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("sparse: %w", err)
	}
	s.table = table
	return s.cfg.OutputShape.Clone(), nil
}

// Table returns the bound connectivity table, or nil before binding.
func (s *Sparse) Table() *connect.Table { return s.table }

// FanIn returns the number of inputs wired to each node.
func (s *Sparse) FanIn() int { return s.table.FanIn() }

// NumNodes returns the number of output nodes.
func (s *Sparse) NumNodes() int { return s.table.NumOutputs() }

// Input returns the flat input index wired to the given slot of node.
func (s *Sparse) Input(node, slot int) int { return s.table.Input(node, slot) }

// SetInput rewires one slot of a node.
func (s *Sparse) SetInput(node, slot, input int) error {
	return s.table.SetInput(node, slot, input)
}

// InputCoords translates the input wired to (node, slot) into
// coordinates in the input shape.
func (s *Sparse) InputCoords(node, slot int) []int {
	return s.table.InputCoords(s.table.Input(node, slot))
}

// OutputCoords translates a node index into coordinates in the
// output shape.
func (s *Sparse) OutputCoords(node int) []int {
	return s.table.OutputCoords(node)
}

// GatherNode copies the fan-in inputs of node at the given frame into
// dst. dst must have length FanIn.
func (s *Sparse) GatherNode(x *tensor.FrameBuffer, frame, node int, dst []float32) {
	fanIn := s.table.FanIn()
	if len(dst) != fanIn {
		panic(fmt.Sprintf("sparse: dst length %d, fan-in %d", len(dst), fanIn))
	}
	for slot := 0; slot < fanIn; slot++ {
		dst[slot] = x.At(frame, s.table.Input(node, slot))
	}
}

// Indices exports the full table in node-major order, the layout used
// for persisted state.
func (s *Sparse) Indices() []int32 { return s.table.Indices() }
