package connect

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// Connectivity policy names accepted by Build.
const (
	Random    = "random"
	Serial    = "serial"
	Pointwise = "pointwise"
	Depthwise = "depthwise"
	Gauss     = "gauss"
)

// Build populates a connectivity table for the given shapes under the named
// policy. An empty policy selects random. The seed fully determines every
// randomized policy: one generator is created per invocation and threaded
// through all draws, never reseeded.
//
// Configuration errors (unknown policy, shape-rank or axis mismatch for a
// policy, fan-in exceeding the distinct inputs the policy can reach) are
// reported at build time and never degraded.
func Build(inputShape, outputShape tensor.Shape, fanIn int, policy string, seed uint64) (*Table, error) {
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("connect: input shape: %w", err)
	}
	if err := outputShape.Validate(); err != nil {
		return nil, fmt.Errorf("connect: output shape: %w", err)
	}
	if fanIn <= 0 {
		return nil, fmt.Errorf("connect: fan-in must be positive, got %d", fanIn)
	}

	t := &Table{
		inputShape:  inputShape.Clone(),
		outputShape: outputShape.Clone(),
		fanIn:       fanIn,
		idx:         make([]int32, outputShape.NumNodes()*fanIn),
	}

	name := policy
	if fields := strings.Fields(policy); len(fields) > 0 {
		name = fields[0]
	}

	//nolint:gosec // deterministic seeded generator is the point, not security
	rng := rand.New(rand.NewSource(int64(seed)))

	var err error
	switch name {
	case Random, "":
		err = buildRandom(t, rng)
	case Serial:
		err = buildSerial(t)
	case Pointwise:
		err = buildPointwise(t, rng)
	case Depthwise:
		err = buildDepthwise(t, rng)
	case Gauss:
		err = buildGauss(t, rng)
	default:
		err = fmt.Errorf("connect: unknown connection rule %q", name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// buildRandom draws every output node's fan-in from one rotating shuffle
// over the whole input space.
func buildRandom(t *Table, rng *rand.Rand) error {
	if t.fanIn > t.NumInputs() {
		return fmt.Errorf("connect: random fan-in %d exceeds %d input nodes", t.fanIn, t.NumInputs())
	}
	ss := newShuffleSet(t.NumInputs(), rng)
	for node := 0; node < t.NumOutputs(); node++ {
		copy(t.idx[node*t.fanIn:(node+1)*t.fanIn], ss.draw(t.fanIn))
	}
	return nil
}

// buildSerial assigns consecutive input indices, wrapping modulo the input
// node count, to successive (node, slot) pairs. No randomness.
func buildSerial(t *Table) error {
	cursor := 0
	for node := 0; node < t.NumOutputs(); node++ {
		for slot := 0; slot < t.fanIn; slot++ {
			t.idx[node*t.fanIn+slot] = int32(cursor % t.NumInputs())
			cursor++
		}
	}
	return nil
}

// buildPointwise wires each spatial position independently: a fresh
// permutation over the channel axis per position, so connections never
// cross spatial position.
func buildPointwise(t *Table, rng *rand.Rand) error {
	in, out := t.inputShape, t.outputShape
	if len(in) != 3 || len(out) != 3 {
		return fmt.Errorf("connect: pointwise requires rank-3 shapes, got %v -> %v", in, out)
	}
	if in[0] != out[0] || in[1] != out[1] {
		return fmt.Errorf("connect: pointwise requires matching spatial axes, got %v -> %v", in, out)
	}
	if t.fanIn > in[2] {
		return fmt.Errorf("connect: pointwise fan-in %d exceeds %d input channels", t.fanIn, in[2])
	}
	for y := 0; y < out[1]; y++ {
		for x := 0; x < out[0]; x++ {
			ss := newShuffleSet(in[2], rng)
			for c := 0; c < out[2]; c++ {
				node := out.Index([]int{x, y, c})
				set := ss.draw(t.fanIn)
				for slot := 0; slot < t.fanIn; slot++ {
					input := in.Index([]int{x, y, int(set[slot])})
					t.idx[node*t.fanIn+slot] = int32(input)
				}
			}
		}
	}
	return nil
}

// buildDepthwise wires each channel independently: a fresh permutation over
// the spatial plane per channel, so connections never cross channel.
func buildDepthwise(t *Table, rng *rand.Rand) error {
	in, out := t.inputShape, t.outputShape
	if len(in) != 3 || len(out) != 3 {
		return fmt.Errorf("connect: depthwise requires rank-3 shapes, got %v -> %v", in, out)
	}
	if in[2] != out[2] {
		return fmt.Errorf("connect: depthwise requires matching channel axes, got %v -> %v", in, out)
	}
	plane := in[0] * in[1]
	if t.fanIn > plane {
		return fmt.Errorf("connect: depthwise fan-in %d exceeds %d spatial positions", t.fanIn, plane)
	}
	for c := 0; c < out[2]; c++ {
		ss := newShuffleSet(plane, rng)
		for y := 0; y < out[1]; y++ {
			for x := 0; x < out[0]; x++ {
				node := out.Index([]int{x, y, c})
				set := ss.draw(t.fanIn)
				for slot := 0; slot < t.fanIn; slot++ {
					iy := int(set[slot]) / in[0]
					ix := int(set[slot]) % in[0]
					input := in.Index([]int{ix, iy, c})
					t.idx[node*t.fanIn+slot] = int32(input)
				}
			}
		}
	}
	return nil
}

// buildGauss samples each output node's inputs around its geometrically
// corresponding input position with per-axis Gaussian falloff, retrying on
// duplicates until the fan-in is pairwise distinct.
func buildGauss(t *Table, rng *rand.Rand) error {
	in, out := t.inputShape, t.outputShape
	if len(in) != len(out) {
		return fmt.Errorf("connect: gauss requires equal ranks, got %v -> %v", in, out)
	}
	if t.fanIn > t.NumInputs() {
		return fmt.Errorf("connect: gauss fan-in %d exceeds %d input nodes", t.fanIn, t.NumInputs())
	}

	n := len(in)
	step := make([]float64, n)
	sigma := make([]float64, n)
	for i := 0; i < n; i++ {
		if out[i] > 1 {
			step[i] = float64(in[i]-1) / float64(out[i]-1)
		}
		sigma[i] = float64(in[i]) / float64(out[i])
	}

	pos := make([]float64, n)
	chosen := make([]int32, 0, t.fanIn)
	for node := 0; node < t.NumOutputs(); node++ {
		coords := out.Coords(node)
		chosen = chosen[:0]
		for slot := 0; slot < t.fanIn; slot++ {
			for {
				for j := 0; j < n; j++ {
					pos[j] = float64(coords[j])*step[j] + rng.NormFloat64()*sigma[j]
				}
				input := int32(in.Index(in.Regularize(pos)))
				if !contains(chosen, input) {
					chosen = append(chosen, input)
					t.idx[node*t.fanIn+slot] = input
					break
				}
			}
		}
	}
	return nil
}

func contains(s []int32, v int32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
