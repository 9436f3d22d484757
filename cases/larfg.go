// Package cases wires concrete kernel families into the harness protocol.
// Each case owns the buffer sizing, initialization, invocation and error
// reduction for one kernel shape.
package cases

import (
	"fmt"

	"github.com/kerncheck/kerncheck/device"
	"github.com/kerncheck/kerncheck/harness"
	"github.com/kerncheck/kerncheck/hostref"
	"github.com/kerncheck/kerncheck/kernels"
)

// Larfg verifies and benchmarks the reflector-generation kernel for one
// element type. The logical layout follows the LAPACK convention: alpha
// and tau are scalars, x carries n-1 elements at stride inc, and only the
// x region enters the error norm (alpha becomes the convention-fixed beta
// and is excluded).
type Larfg[T harness.Float] struct {
	handle *device.Handle
	ref    hostref.ReflectorGen[T]
	ini    *harness.Initializer

	n   int
	inc int

	ha  *harness.HostVector[T] // alpha in, reference beta out
	hx  *harness.HostVector[T] // x in, reference v out
	hxr *harness.HostVector[T] // device v, transferred back
	ht  *harness.HostVector[T] // reference tau

	da *harness.DeviceVector[T]
	dx *harness.DeviceVector[T]
	dt *harness.DeviceVector[T]
}

// NewLarfg creates the case for handle h with the given input seed.
func NewLarfg[T harness.Float](h *device.Handle, seed int64) *Larfg[T] {
	return &Larfg[T]{
		handle: h,
		ref:    hostref.NewReflectorGen[T](),
		ini:    harness.NewInitializer(seed),
	}
}

func (c *Larfg[T]) Name() string {
	var t T
	if _, ok := any(t).(float32); ok {
		return "slarfg"
	}
	return "dlarfg"
}

// Prepare records the problem shape. The null-data probes depend on it,
// so it runs before any allocation.
func (c *Larfg[T]) Prepare(args harness.Arguments) {
	c.n = args.N
	c.inc = args.Inc
}

// Alloc sizes buffers to the problem. size_x could be zero for sizes that
// are neither quick-return nor invalid; it is held at one to avoid any
// possible memory access error in the rest of the run.
func (c *Larfg[T]) Alloc() error {
	sizeX := 1
	if c.n > 1 {
		sizeX = c.n - 1
	}

	c.ha = harness.NewHostVector[T](1, 1)
	c.ht = harness.NewHostVector[T](1, 1)
	c.hx = harness.NewHostVector[T](sizeX, c.inc)

	// The result buffer exists only when an error scalar is wanted; its
	// shape still matches x so the transfer back stays a plain copy.
	c.hxr = harness.NewHostVector[T](sizeX, c.inc)

	stream := c.handle.Stream()
	var err error
	if c.da, err = harness.NewDeviceVector[T](stream, 1, 1); err != nil {
		return err
	}
	if c.dx, err = harness.NewDeviceVector[T](stream, sizeX, c.inc); err != nil {
		return err
	}
	if c.dt, err = harness.NewDeviceVector[T](stream, 1, 1); err != nil {
		return err
	}
	return nil
}

func (c *Larfg[T]) Free() {
	c.da.Free()
	c.dx.Free()
	c.dt.Free()
	c.da, c.dx, c.dt = nil, nil, nil
}

func (c *Larfg[T]) CallNull() device.Status {
	return kernels.Larfg[T](c.handle, c.n, nil, nil, c.inc, nil)
}

func (c *Larfg[T]) Call() device.Status {
	return kernels.Larfg[T](c.handle, c.n, c.da.Memory(), c.dx.Memory(), c.inc, c.dt.Memory())
}

func (c *Larfg[T]) InitData(cpu, gpu bool) error {
	if cpu {
		c.ini.Reseed()
		harness.Fill(c.ini, c.ha)
		harness.Fill(c.ini, c.hx)
	}
	if gpu {
		if err := c.da.TransferFrom(c.ha); err != nil {
			return err
		}
		if err := c.dx.TransferFrom(c.hx); err != nil {
			return err
		}
	}
	return nil
}

// FetchResult drains the stream, then transfers the device-computed
// reflector vector back. tau is not compared, so it stays on the device.
func (c *Larfg[T]) FetchResult() error {
	c.handle.Stream().Synchronize()
	return c.dx.TransferTo(c.hxr)
}

func (c *Larfg[T]) Reference() {
	c.ref.Larfg(c.n, c.ha.Data(), c.hx.Data(), c.inc, c.ht.Data())
}

// ResultError reduces the x-region disagreement to one scalar with the
// one-norm, relative to the reference.
func (c *Larfg[T]) ResultError() float64 {
	return harness.NormError(harness.NormOne, 1, c.n-1, c.inc, c.hx.Data(), c.hxr.Data())
}

// CheckBadArgs sweeps the malformed-argument space with one-element dummy
// buffers, independent of the configured problem size.
func (c *Larfg[T]) CheckBadArgs() error {
	stream := c.handle.Stream()
	da, err := harness.NewDeviceVector[T](stream, 1, 1)
	if err != nil {
		return err
	}
	defer da.Free()
	dx, err := harness.NewDeviceVector[T](stream, 1, 1)
	if err != nil {
		return err
	}
	defer dx.Free()
	dt, err := harness.NewDeviceVector[T](stream, 1, 1)
	if err != nil {
		return err
	}
	defer dt.Free()

	const n, inc = 2, 1

	// handle
	if st := kernels.Larfg[T](nil, n, da.Memory(), dx.Memory(), inc, dt.Memory()); st != device.InvalidHandle {
		return fmt.Errorf("%s: null handle: expected %v, got %v", c.Name(), device.InvalidHandle, st)
	}

	// pointers, each nulled individually
	if st := kernels.Larfg[T](c.handle, n, nil, dx.Memory(), inc, dt.Memory()); st != device.InvalidPointer {
		return fmt.Errorf("%s: null alpha: expected %v, got %v", c.Name(), device.InvalidPointer, st)
	}
	if st := kernels.Larfg[T](c.handle, n, da.Memory(), nil, inc, dt.Memory()); st != device.InvalidPointer {
		return fmt.Errorf("%s: null x: expected %v, got %v", c.Name(), device.InvalidPointer, st)
	}
	if st := kernels.Larfg[T](c.handle, n, da.Memory(), dx.Memory(), inc, nil); st != device.InvalidPointer {
		return fmt.Errorf("%s: null tau: expected %v, got %v", c.Name(), device.InvalidPointer, st)
	}

	// x is required only for n > 1; the empty region accepts a null x
	if st := kernels.Larfg[T](c.handle, 1, da.Memory(), nil, inc, dt.Memory()); st != device.Success {
		return fmt.Errorf("%s: null x at n=1: expected %v, got %v", c.Name(), device.Success, st)
	}

	// quick return with all pointers null
	if st := kernels.Larfg[T](c.handle, 0, nil, nil, inc, nil); st != device.Success {
		return fmt.Errorf("%s: quick return: expected %v, got %v", c.Name(), device.Success, st)
	}
	return nil
}
