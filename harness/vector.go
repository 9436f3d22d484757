package harness

import (
	"fmt"
	"unsafe"

	"github.com/kerncheck/kerncheck/device"
)

// Float constrains the element types the harness moves between host and
// device.
type Float interface {
	~float32 | ~float64
}

// HostVector is a strided host-side container holding a logical vector of
// n elements at the given stride. A logically empty vector still carries a
// one-element footprint so it can never be dereferenced out of bounds.
type HostVector[T Float] struct {
	n    int
	inc  int
	data []T
}

// NewHostVector allocates a host vector of n logical elements at stride
// inc. inc must be at least 1.
func NewHostVector[T Float](n, inc int) *HostVector[T] {
	if inc < 1 {
		panic(fmt.Sprintf("harness: host vector stride must be >= 1, got %d", inc))
	}
	count := n * inc
	if count == 0 {
		count = 1
	}
	return &HostVector[T]{n: n, inc: inc, data: make([]T, count)}
}

// N returns the logical length.
func (v *HostVector[T]) N() int { return v.n }

// Inc returns the stride between logical elements.
func (v *HostVector[T]) Inc() int { return v.inc }

// Data returns the backing storage, including stride gaps.
func (v *HostVector[T]) Data() []T { return v.data }

// At returns the i-th logical element.
func (v *HostVector[T]) At(i int) T { return v.data[i*v.inc] }

// DeviceVector pairs a device allocation with the same logical shape as
// its host counterpart. Its lifetime is owned by one orchestrator run.
// Transfers are ordered against the owning stream: a copy never overlaps
// a kernel that is still in flight.
type DeviceVector[T Float] struct {
	n      int
	inc    int
	stream *device.Stream
	mem    *device.Memory
}

// NewDeviceVector allocates device memory shaped like NewHostVector,
// bound to the stream its kernels run on.
func NewDeviceVector[T Float](s *device.Stream, n, inc int) (*DeviceVector[T], error) {
	if s == nil {
		return nil, fmt.Errorf("harness: device vector requires a stream")
	}
	if inc < 1 {
		return nil, fmt.Errorf("harness: device vector stride must be >= 1, got %d", inc)
	}
	count := n * inc
	if count == 0 {
		count = 1
	}
	var t T
	mem, err := device.Malloc(int64(count) * int64(unsafe.Sizeof(t)))
	if err != nil {
		return nil, err
	}
	return &DeviceVector[T]{n: n, inc: inc, stream: s, mem: mem}, nil
}

// Memory returns the underlying device allocation.
func (d *DeviceVector[T]) Memory() *device.Memory { return d.mem }

// TransferFrom copies the paired host vector into device memory. The two
// must have identical footprints. The stream is drained first, so the
// copy cannot overwrite inputs a queued kernel is still reading.
func (d *DeviceVector[T]) TransferFrom(h *HostVector[T]) error {
	if err := d.matchShape(h); err != nil {
		return err
	}
	d.stream.Synchronize()
	if err := d.mem.CopyFrom(asBytes(h.data)); err != nil {
		return fmt.Errorf("harness: host to device transfer: %w", err)
	}
	return nil
}

// TransferTo copies device memory back into the paired host vector, after
// draining the stream so every queued write is visible.
func (d *DeviceVector[T]) TransferTo(h *HostVector[T]) error {
	if err := d.matchShape(h); err != nil {
		return err
	}
	d.stream.Synchronize()
	if err := d.mem.CopyTo(asBytes(h.data)); err != nil {
		return fmt.Errorf("harness: device to host transfer: %w", err)
	}
	return nil
}

func (d *DeviceVector[T]) matchShape(h *HostVector[T]) error {
	if d.n != h.n || d.inc != h.inc {
		return fmt.Errorf("harness: shape mismatch: device %dx%d vs host %dx%d", d.n, d.inc, h.n, h.inc)
	}
	return nil
}

// Free releases the device allocation. Safe on nil.
func (d *DeviceVector[T]) Free() {
	if d == nil {
		return
	}
	d.mem.Free()
	d.mem = nil
}

func asBytes[T Float](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var t T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(t)))
}
