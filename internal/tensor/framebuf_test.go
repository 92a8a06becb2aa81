package tensor

import "testing"

func TestFrameBuffer_StrideAlignment(t *testing.T) {
	fb, err := NewFrameBuffer(5, 3, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	if fb.Stride() < fb.NumFrames() {
		t.Fatalf("stride %d < frame count %d", fb.Stride(), fb.NumFrames())
	}
	if fb.Stride()%frameAlign != 0 {
		t.Errorf("stride %d not aligned to %d", fb.Stride(), frameAlign)
	}
}

func TestFrameBuffer_AtSet(t *testing.T) {
	fb, err := NewFrameBuffer(4, 3, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	fb.Set(2, 1, 3.5)
	if got := fb.At(2, 1); got != 3.5 {
		t.Errorf("At(2,1) = %v, want 3.5", got)
	}
	// Node-major layout: element (frame, node) at node*stride + frame.
	if got := fb.AsFloat32()[1*fb.Stride()+2]; got != 3.5 {
		t.Errorf("flat layout mismatch: got %v", got)
	}
}

func TestFrameBuffer_EmptyState(t *testing.T) {
	fb, err := NewFrameBuffer(0, 4, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	if !fb.Empty() {
		t.Error("zero-frame buffer not reported empty")
	}
	if fb.Bytes() != nil {
		t.Error("empty buffer has a backing store")
	}

	alloc, err := NewFrameBuffer(2, 4, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	if alloc.Empty() {
		t.Error("allocated buffer reported empty")
	}
	alloc.Release()
	if !alloc.Empty() {
		t.Error("released buffer not empty")
	}
}

func TestFrameBuffer_CloneSharesStore(t *testing.T) {
	a, err := NewFrameBuffer(3, 2, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	b := a.Clone()
	a.Set(1, 1, 7)
	if got := b.At(1, 1); got != 7 {
		t.Errorf("clone does not share data: got %v, want 7", got)
	}
	b.Release()
	// a still holds a reference; data must survive.
	if got := a.At(1, 1); got != 7 {
		t.Errorf("data lost after releasing one handle: got %v", got)
	}
}

func TestFrameBuffer_DTypeMismatchPanics(t *testing.T) {
	fb, err := NewFrameBuffer(2, 2, Float32, CPU)
	if err != nil {
		t.Fatalf("NewFrameBuffer: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on a float32 buffer did not panic")
		}
	}()
	fb.AsFloat64()
}
