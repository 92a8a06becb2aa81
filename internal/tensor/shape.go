// Package tensor provides the core data containers for the BinaryBrain
// framework: Shape (multi-dimensional node layout) and FrameBuffer (the
// frame×node data-interchange buffer passed between layers).
package tensor

import (
	"fmt"
	"math"
)

// Shape describes one frame's multi-dimensional node layout.
//
// The first dimension varies fastest in the flat node index: for a shape
// {w, h, c} the node at {x, y, ch} has flat index x + w*(y + h*ch). This
// matches the connectivity policies, which address spatial axes before the
// channel axis.
type Shape []int

// NumNodes returns the total number of nodes in one frame.
func (s Shape) NumNodes() int {
	if len(s) == 0 {
		return 1 // Scalar layout has 1 node
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty shape")
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Index converts multi-dimensional coordinates to a flat node index.
// Panics if the number of coordinates does not match the rank or a
// coordinate is out of range.
func (s Shape) Index(coords []int) int {
	if len(coords) != len(s) {
		panic(fmt.Sprintf("shape %v: expected %d coordinates, got %d", s, len(s), len(coords)))
	}
	idx := 0
	for i := len(s) - 1; i >= 0; i-- {
		if coords[i] < 0 || coords[i] >= s[i] {
			panic(fmt.Sprintf("shape %v: coordinate %d out of range for axis %d", s, coords[i], i))
		}
		idx = idx*s[i] + coords[i]
	}
	return idx
}

// Coords converts a flat node index back to multi-dimensional coordinates.
// The inverse of Index over [0, NumNodes()).
func (s Shape) Coords(idx int) []int {
	if idx < 0 || idx >= s.NumNodes() {
		panic(fmt.Sprintf("shape %v: flat index %d out of range", s, idx))
	}
	coords := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		coords[i] = idx % s[i]
		idx /= s[i]
	}
	return coords
}

// Regularize rounds a continuous position to the nearest valid coordinates,
// clamping each axis into [0, dim). Used by the gauss connectivity policy to
// map sampled positions back onto the input grid.
func (s Shape) Regularize(pos []float64) []int {
	if len(pos) != len(s) {
		panic(fmt.Sprintf("shape %v: expected %d positions, got %d", s, len(s), len(pos)))
	}
	coords := make([]int, len(s))
	for i := range pos {
		c := int(math.Round(pos[i]))
		if c < 0 {
			c = 0
		}
		if c >= s[i] {
			c = s[i] - 1
		}
		coords[i] = c
	}
	return coords
}
