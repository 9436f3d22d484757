package device

import (
	"fmt"
	"unsafe"
)

// Memory is a device-resident allocation. A nil *Memory plays the role of
// a null device pointer: kernels must classify it, never dereference it.
type Memory struct {
	buf  []byte
	size int64
}

// Cache-line alignment, matching what the real runtime guarantees.
const allocAlignment = 64

// Malloc allocates device memory of the given size in bytes. Zero-sized
// allocations are rejected; callers that hold logically empty buffers keep
// a one-element footprint instead.
func Malloc(size int64) (*Memory, error) {
	if size <= 0 {
		return nil, fmt.Errorf("device: malloc size must be positive, got %d", size)
	}
	aligned := (size + allocAlignment - 1) &^ (allocAlignment - 1)
	return &Memory{buf: make([]byte, aligned), size: size}, nil
}

// Size returns the requested allocation size in bytes.
func (m *Memory) Size() int64 {
	if m == nil {
		return 0
	}
	return m.size
}

// CopyFrom transfers host bytes into device memory.
func (m *Memory) CopyFrom(src []byte) error {
	if m == nil {
		return fmt.Errorf("device: copy to null device pointer")
	}
	if int64(len(src)) > m.size {
		return fmt.Errorf("device: copy of %d bytes exceeds allocation of %d", len(src), m.size)
	}
	copy(m.buf, src)
	return nil
}

// CopyTo transfers device memory back into host bytes.
func (m *Memory) CopyTo(dst []byte) error {
	if m == nil {
		return fmt.Errorf("device: copy from null device pointer")
	}
	if int64(len(dst)) > m.size {
		return fmt.Errorf("device: copy of %d bytes exceeds allocation of %d", len(dst), m.size)
	}
	copy(dst, m.buf[:len(dst)])
	return nil
}

// Float32 returns a float32 view of the allocation, usable only from
// kernel code running on the owning stream.
func (m *Memory) Float32() []float32 {
	if m == nil || len(m.buf) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&m.buf[0])), m.size/4)
}

// Float64 returns a float64 view of the allocation.
func (m *Memory) Float64() []float64 {
	if m == nil || len(m.buf) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&m.buf[0])), m.size/8)
}

// View returns a typed view of the allocation for kernel code.
func View[T any](m *Memory) []T {
	if m == nil || len(m.buf) == 0 {
		return nil
	}
	var t T
	elem := int64(unsafe.Sizeof(t))
	return unsafe.Slice((*T)(unsafe.Pointer(&m.buf[0])), m.size/elem)
}

// Free releases the allocation. Safe on nil.
func (m *Memory) Free() {
	if m == nil {
		return
	}
	m.buf = nil
	m.size = 0
}
