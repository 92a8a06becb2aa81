package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// frameAlign is the frame-pitch alignment in elements. Node rows are padded
// to a multiple of this so vector loops can read whole lanes; padding is
// zero-filled at allocation.
const frameAlign = 8

// frameStore is a reference-counted backing store shared between
// FrameBuffer handles. Reassigning a handle releases the previous store
// when no other handle references it.
type frameStore struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

func newFrameStore(size int) *frameStore {
	st := &frameStore{
		data: make([]byte, size),
	}
	st.refCount.Store(1)
	return st
}

func (st *frameStore) addRef() {
	st.refCount.Add(1)
}

func (st *frameStore) release() {
	if st.refCount.Add(-1) == 0 {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.data = nil
	}
}

// FrameBuffer holds frameCount × nodeCount elements of one DataType and is
// the sole data-interchange object between layers.
//
// Storage is node-major: each node owns a contiguous run of Stride()
// elements, of which the first NumFrames() are live. Element (frame, node)
// lives at node*stride + frame. The stride may exceed the frame count for
// alignment; the padding is zero.
type FrameBuffer struct {
	store     *frameStore
	frames    int
	nodes     int
	stride    int
	dtype     DataType
	device    Device
	residency Residency
}

// NewFrameBuffer allocates a zeroed buffer for the given frame and node
// counts. A frame count of zero yields a valid empty (released) buffer
// with no backing store.
func NewFrameBuffer(frames, nodes int, dtype DataType, device Device) (*FrameBuffer, error) {
	if frames < 0 || nodes <= 0 {
		return nil, fmt.Errorf("framebuffer: invalid extent %d×%d", frames, nodes)
	}
	fb := &FrameBuffer{
		frames:    frames,
		nodes:     nodes,
		dtype:     dtype,
		device:    device,
		residency: HostValid,
	}
	if frames == 0 {
		return fb, nil
	}
	fb.stride = (frames + frameAlign - 1) &^ (frameAlign - 1)
	fb.store = newFrameStore(nodes * fb.stride * dtype.Size())
	return fb, nil
}

// NumFrames returns the number of live frames per node.
func (fb *FrameBuffer) NumFrames() int { return fb.frames }

// NumNodes returns the number of nodes per frame.
func (fb *FrameBuffer) NumNodes() int { return fb.nodes }

// Stride returns the node pitch in elements (stride ≥ NumFrames()).
func (fb *FrameBuffer) Stride() int { return fb.stride }

// DType returns the element type.
func (fb *FrameBuffer) DType() DataType { return fb.dtype }

// Device returns the compute device the buffer is bound to.
func (fb *FrameBuffer) Device() Device { return fb.device }

// Residency returns the current residency flags.
func (fb *FrameBuffer) Residency() Residency { return fb.residency }

// SetResidency replaces the residency flags. Called by backends after
// transfers.
func (fb *FrameBuffer) SetResidency(r Residency) { fb.residency = r }

// Empty reports whether the buffer is in the released zero-frame state.
func (fb *FrameBuffer) Empty() bool { return fb.frames == 0 }

// ByteSize returns the total backing-store size in bytes.
func (fb *FrameBuffer) ByteSize() int {
	return fb.nodes * fb.stride * fb.dtype.Size()
}

// Bytes returns the raw backing store including pitch padding.
func (fb *FrameBuffer) Bytes() []byte {
	if fb.store == nil {
		return nil
	}
	return fb.store.data
}

// AsFloat32 interprets the backing store (nodes × stride elements,
// including padding) as []float32. Panics if the dtype is not Float32.
func (fb *FrameBuffer) AsFloat32() []float32 {
	if fb.dtype != Float32 {
		panic(fmt.Sprintf("framebuffer dtype is %s, not float32", fb.dtype))
	}
	if fb.store == nil {
		return nil
	}
	data := fb.store.data
	//nolint:gosec // unsafe.Slice for zero-copy access, size fixed at allocation
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), fb.nodes*fb.stride)
}

// AsFloat64 interprets the backing store as []float64.
// Panics if the dtype is not Float64.
func (fb *FrameBuffer) AsFloat64() []float64 {
	if fb.dtype != Float64 {
		panic(fmt.Sprintf("framebuffer dtype is %s, not float64", fb.dtype))
	}
	if fb.store == nil {
		return nil
	}
	data := fb.store.data
	//nolint:gosec // unsafe.Slice for zero-copy access, size fixed at allocation
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), fb.nodes*fb.stride)
}

// NodeFloat32 returns the live frames of one node as a []float32 view.
func (fb *FrameBuffer) NodeFloat32(node int) []float32 {
	if node < 0 || node >= fb.nodes {
		panic(fmt.Sprintf("framebuffer: node %d out of range [0,%d)", node, fb.nodes))
	}
	off := node * fb.stride
	return fb.AsFloat32()[off : off+fb.frames]
}

// At returns element (frame, node) of a Float32 buffer.
func (fb *FrameBuffer) At(frame, node int) float32 {
	fb.checkIndex(frame, node)
	return fb.AsFloat32()[node*fb.stride+frame]
}

// Set writes element (frame, node) of a Float32 buffer.
func (fb *FrameBuffer) Set(frame, node int, v float32) {
	fb.checkIndex(frame, node)
	fb.AsFloat32()[node*fb.stride+frame] = v
}

func (fb *FrameBuffer) checkIndex(frame, node int) {
	if frame < 0 || frame >= fb.frames || node < 0 || node >= fb.nodes {
		panic(fmt.Sprintf("framebuffer: index (%d,%d) out of range %d×%d", frame, node, fb.frames, fb.nodes))
	}
}

// FillZero clears the backing store including padding.
func (fb *FrameBuffer) FillZero() {
	if fb.store == nil {
		return
	}
	clear(fb.store.data)
}

// Clone creates a handle sharing the same backing store with reference
// counting. Both handles see the same data.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	if fb.store != nil {
		fb.store.addRef()
	}
	c := *fb
	return &c
}

// Release decrements the backing-store reference count, freeing it when
// this was the last handle, and leaves the handle in the empty state.
func (fb *FrameBuffer) Release() {
	if fb.store != nil {
		fb.store.release()
		fb.store = nil
	}
	fb.frames = 0
	fb.stride = 0
}

// String returns a human-readable description of the buffer.
func (fb *FrameBuffer) String() string {
	return fmt.Sprintf("FrameBuffer[%s] %d×%d (stride %d) on %s",
		fb.dtype, fb.frames, fb.nodes, fb.stride, fb.device)
}
