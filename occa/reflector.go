package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// Problem dimensions are baked into the kernel source, so each Reflector
// is built for one (n, incx) pair. OCCA caches compiled kernels by
// source, which keeps rebuilds across hot calls cheap.
const reflectorSource = `
#define N %d
#define INCX %d

@kernel void larfg(double *alpha, double *x, double *tau) {
	for (int b = 0; b < 1; ++b; @outer) {
		for (int t = 0; t < 1; ++t; @inner) {
			double ssq = 0.0;
			for (int i = 0; i < N - 1; ++i) {
				ssq += x[i * INCX] * x[i * INCX];
			}
			if (ssq == 0.0) {
				tau[0] = 0.0;
			} else {
				double a = alpha[0];
				double mag = sqrt(a * a + ssq);
				double beta = (a >= 0.0) ? -mag : mag;
				tau[0] = (beta - a) / beta;
				double scl = 1.0 / (a - beta);
				for (int i = 0; i < N - 1; ++i) {
					x[i * INCX] *= scl;
				}
				alpha[0] = beta;
			}
		}
	}
}`

// Reflector executes the reflector-generation kernel on an OCCA device
// for double-precision data.
type Reflector struct {
	device *gocca.OCCADevice
	kernel *gocca.OCCAKernel
	n      int
	incx   int
}

// NewReflector builds the kernel for a problem of order n with stride
// incx. The device stays owned by the caller.
func NewReflector(dev *gocca.OCCADevice, n, incx int) (*Reflector, error) {
	if n < 0 || incx < 1 {
		return nil, fmt.Errorf("occa: invalid reflector shape n=%d incx=%d", n, incx)
	}
	source := fmt.Sprintf(reflectorSource, n, incx)
	kernel, err := dev.BuildKernelFromString(source, "larfg", nil)
	if err != nil {
		return nil, fmt.Errorf("occa: build larfg kernel: %w", err)
	}
	return &Reflector{device: dev, kernel: kernel, n: n, incx: incx}, nil
}

// Run generates the reflector in place on alpha and x and returns tau.
// alpha is a one-element slice; x holds n-1 elements at stride incx. The
// call blocks until the device is idle and results are transferred back.
func (r *Reflector) Run(alpha []float64, x []float64) (float64, error) {
	if r.n == 0 {
		return 0, nil
	}
	if len(alpha) < 1 {
		return 0, fmt.Errorf("occa: alpha must hold one element")
	}
	need := (r.n - 1) * r.incx
	if r.n > 1 && len(x) < need {
		return 0, fmt.Errorf("occa: x holds %d elements, need %d", len(x), need)
	}

	dAlpha := r.device.Malloc(8, unsafe.Pointer(&alpha[0]), nil)
	defer dAlpha.Free()

	// A degenerate x still gets a one-element footprint on the device.
	hostX := x
	if len(hostX) == 0 {
		hostX = make([]float64, 1)
	}
	dX := r.device.Malloc(int64(len(hostX)*8), unsafe.Pointer(&hostX[0]), nil)
	defer dX.Free()

	var tau float64
	dTau := r.device.Malloc(8, nil, nil)
	defer dTau.Free()

	if err := r.kernel.RunWithArgs(dAlpha, dX, dTau); err != nil {
		return 0, fmt.Errorf("occa: run larfg kernel: %w", err)
	}
	r.device.Finish()

	dAlpha.CopyTo(unsafe.Pointer(&alpha[0]), 8)
	if len(x) > 0 {
		dX.CopyTo(unsafe.Pointer(&x[0]), int64(len(x)*8))
	}
	dTau.CopyTo(unsafe.Pointer(&tau), 8)
	return tau, nil
}

// Free releases the compiled kernel.
func (r *Reflector) Free() {
	if r.kernel != nil {
		r.kernel.Free()
		r.kernel = nil
	}
}
