// Package kernels holds the accelerated entry points under test. Each
// entry point follows the runtime's argument contract: classify a null
// handle, an invalid size, and null data pointers in that order, honor the
// degenerate-size quick return before pointer validation, and answer
// workspace queries without touching data.
package kernels

import (
	"math"
	"unsafe"

	"github.com/kerncheck/kerncheck/device"
)

// Float constrains the element types the kernel family supports.
type Float interface {
	~float32 | ~float64
}

// Reduction block width used by the norm stage of the reflector kernel.
const larfgBlockSize = 256

// LarfgWorkspaceBytes returns the scratch requirement of Larfg for a
// problem of order n: one float64 partial sum per reduction block.
func LarfgWorkspaceBytes(n int) int64 {
	if n <= 1 {
		return 0
	}
	blocks := (n - 1 + larfgBlockSize - 1) / larfgBlockSize
	return int64(blocks) * 8
}

// Larfg generates an elementary Householder reflector on the device:
// given alpha and the n-1 element vector x (stride incx), it overwrites
// them with beta and the reflector vector v, and stores the scalar tau.
//
// dAlpha and dTau are one-element device buffers; dX holds n-1 logical
// elements read with stride incx. The call is asynchronous: it returns
// after the kernel is queued on the handle's stream.
func Larfg[T Float](h *device.Handle, n int, dAlpha *device.Memory, dX *device.Memory, incx int, dTau *device.Memory) device.Status {
	if h == nil {
		return device.InvalidHandle
	}
	if n < 0 || incx < 1 {
		return device.InvalidSize
	}

	// Workspace queries arrive with null data pointers; report and return
	// before any pointer validation.
	if h.IsMemQuery() {
		h.RequestWorkspace(LarfgWorkspaceBytes(n))
		return device.Success
	}

	// Quick return: nothing to do for the degenerate size, even when all
	// data pointers are null.
	if n == 0 {
		return device.Success
	}

	// x holds n-1 elements, so it is required only for n > 1.
	if dAlpha == nil || dTau == nil || (n > 1 && dX == nil) {
		return device.InvalidPointer
	}

	ws, st := h.AcquireWorkspace(LarfgWorkspaceBytes(n))
	if st != device.Success {
		return st
	}

	elem := int64(unsafe.Sizeof(*new(T)))
	if dAlpha.Size() < elem || dTau.Size() < elem {
		return device.InvalidPointer
	}
	if n > 1 && dX.Size() < (int64(n-2)*int64(incx)+1)*elem {
		return device.InvalidPointer
	}

	return h.Launch("larfg", func() {
		larfgBody[T](n, dAlpha, dX, incx, dTau, ws)
	})
}

// larfgBody runs on the device stream. Partial sums of squares are
// accumulated per block into the workspace, combined, and the reflector
// is formed with the usual sign convention beta = -sign(|[alpha;x]|, alpha).
func larfgBody[T Float](n int, dAlpha, dX *device.Memory, incx int, dTau *device.Memory, ws *device.Memory) {
	alpha := device.View[T](dAlpha)
	tau := device.View[T](dTau)

	if n == 1 {
		// Reflector of order one: H = I, x untouched.
		tau[0] = 0
		return
	}

	x := device.View[T](dX)
	partial := device.View[float64](ws)

	nx := n - 1
	blocks := (nx + larfgBlockSize - 1) / larfgBlockSize
	for b := 0; b < blocks; b++ {
		lo := b * larfgBlockSize
		hi := lo + larfgBlockSize
		if hi > nx {
			hi = nx
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			v := float64(x[i*incx])
			sum += v * v
		}
		partial[b] = sum
	}

	ssq := 0.0
	for b := 0; b < blocks; b++ {
		ssq += partial[b]
	}
	xnorm := math.Sqrt(ssq)

	a := float64(alpha[0])
	if xnorm == 0 {
		tau[0] = 0
		return
	}

	beta := -math.Copysign(math.Hypot(a, xnorm), a)
	tau[0] = T((beta - a) / beta)
	scale := 1 / (a - beta)
	for i := 0; i < nx; i++ {
		x[i*incx] = T(float64(x[i*incx]) * scale)
	}
	alpha[0] = T(beta)
}
