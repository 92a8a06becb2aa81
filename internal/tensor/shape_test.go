package tensor

import "testing"

// TestShape_IndexCoordsBijection verifies flat-index ↔ coordinate mapping
// is a bijection over the whole node range.
func TestShape_IndexCoordsBijection(t *testing.T) {
	shapes := []Shape{{7}, {4, 3}, {5, 3, 2}, {2, 2, 2, 2}}
	for _, s := range shapes {
		for idx := 0; idx < s.NumNodes(); idx++ {
			coords := s.Coords(idx)
			if got := s.Index(coords); got != idx {
				t.Errorf("shape %v: Index(Coords(%d)) = %d", s, idx, got)
			}
		}
	}
}

// TestShape_FirstAxisFastest pins the index convention: the first axis
// varies fastest.
func TestShape_FirstAxisFastest(t *testing.T) {
	s := Shape{4, 3, 2} // {w, h, c}
	if got := s.Index([]int{1, 0, 0}); got != 1 {
		t.Errorf("Index({1,0,0}) = %d, want 1", got)
	}
	if got := s.Index([]int{0, 1, 0}); got != 4 {
		t.Errorf("Index({0,1,0}) = %d, want 4", got)
	}
	if got := s.Index([]int{0, 0, 1}); got != 12 {
		t.Errorf("Index({0,0,1}) = %d, want 12", got)
	}
	if got := s.Index([]int{3, 2, 1}); got != 23 {
		t.Errorf("Index({3,2,1}) = %d, want 23", got)
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (Shape{3, 4}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{3, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{}).Validate(); err == nil {
		t.Error("empty shape accepted")
	}
}

func TestShape_Regularize(t *testing.T) {
	s := Shape{8, 8}
	cases := []struct {
		pos  []float64
		want []int
	}{
		{[]float64{3.4, 3.6}, []int{3, 4}},
		{[]float64{-2.0, 0.0}, []int{0, 0}},
		{[]float64{100.0, 7.49}, []int{7, 7}},
	}
	for _, c := range cases {
		got := s.Regularize(c.pos)
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Regularize(%v) = %v, want %v", c.pos, got, c.want)
				break
			}
		}
	}
}
