package nn

import (
	"fmt"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Sequential chains modules so each module's output feeds the next.
//
//	model := nn.NewSequential(
//	    nn.NewBatchNorm(nn.BatchNormConfig{}),
//	    nn.NewReLU(),
//	)
//	outShape, err := model.SetInputShape(tensor.Shape{28, 28, 1})
type Sequential struct {
	modules []Module
}

// NewSequential creates a container over the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Add appends a module to the chain.
func (s *Sequential) Add(m Module) {
	s.modules = append(s.modules, m)
}

// Len returns the number of contained modules.
func (s *Sequential) Len() int { return len(s.modules) }

// SetInputShape propagates the shape through every module in order
// and returns the final output shape.
func (s *Sequential) SetInputShape(shape tensor.Shape) (tensor.Shape, error) {
	cur := shape
	for i, m := range s.modules {
		next, err := m.SetInputShape(cur)
		if err != nil {
			return nil, fmt.Errorf("sequential: module %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}

// Forward runs every module in order. Intermediate buffers are
// released as soon as the next module has consumed them.
func (s *Sequential) Forward(x *tensor.FrameBuffer, training bool) (*tensor.FrameBuffer, error) {
	cur := x
	for i, m := range s.modules {
		next, err := m.Forward(cur, training)
		if err != nil {
			if cur != x {
				cur.Release()
			}
			return nil, fmt.Errorf("sequential: module %d forward: %w", i, err)
		}
		if cur != x {
			cur.Release()
		}
		cur = next
	}
	return cur, nil
}

// Backward runs every module in reverse order.
func (s *Sequential) Backward(dy *tensor.FrameBuffer) (*tensor.FrameBuffer, error) {
	cur := dy
	for i := len(s.modules) - 1; i >= 0; i-- {
		next, err := s.modules[i].Backward(cur)
		if err != nil {
			if cur != dy {
				cur.Release()
			}
			return nil, fmt.Errorf("sequential: module %d backward: %w", i, err)
		}
		if cur != dy {
			cur.Release()
		}
		cur = next
	}
	return cur, nil
}

// Parameters aggregates the parameters of every module in order.
func (s *Sequential) Parameters() *Variables {
	v := NewVariables()
	for _, m := range s.modules {
		v.Extend(m.Parameters())
	}
	return v
}

// Gradients aggregates the gradients of every module in order.
func (s *Sequential) Gradients() *Variables {
	v := NewVariables()
	for _, m := range s.modules {
		v.Extend(m.Gradients())
	}
	return v
}
