package connect

import "math/rand"

// shuffleSet is a rotating shuffle over the index pool [0, n). Each draw
// consumes the next k entries of the current permutation, so the entries of
// one draw are pairwise distinct while fan-out coverage stays approximately
// uniform across many draws. When fewer than k entries remain the whole
// pool is reshuffled with the same generator and the cursor rewinds.
type shuffleSet struct {
	pool   []int32
	cursor int
	rng    *rand.Rand
}

func newShuffleSet(n int, rng *rand.Rand) *shuffleSet {
	s := &shuffleSet{
		pool: make([]int32, n),
		rng:  rng,
	}
	for i := range s.pool {
		s.pool[i] = int32(i)
	}
	s.shuffle()
	return s
}

func (s *shuffleSet) shuffle() {
	s.rng.Shuffle(len(s.pool), func(i, j int) {
		s.pool[i], s.pool[j] = s.pool[j], s.pool[i]
	})
	s.cursor = 0
}

// draw returns the next k distinct indices. The returned slice aliases the
// pool and is only valid until the next draw. Panics if k exceeds the pool
// size; callers validate fan-in against the pool before building.
func (s *shuffleSet) draw(k int) []int32 {
	if k > len(s.pool) {
		panic("connect: draw larger than pool")
	}
	if s.cursor+k > len(s.pool) {
		s.shuffle()
	}
	out := s.pool[s.cursor : s.cursor+k]
	s.cursor += k
	return out
}
