package harness

import "github.com/kerncheck/kerncheck/device"

// Case binds one kernel instantiation to the harness phases. The harness
// drives every Case the same way: the shape "device buffers in, device
// buffer out, host reference available" is all it assumes.
//
// A Case owns its buffers for exactly one orchestrated run; Alloc and
// Free bracket that ownership.
type Case interface {
	Name() string

	// Prepare records the problem shape for the run. It must precede any
	// kernel invocation, including the null-data probes, and performs no
	// allocation.
	Prepare(args Arguments)

	// Alloc sizes host and device buffers for the prepared problem,
	// applying the minimum-footprint-of-one policy for degenerate sizes.
	Alloc() error
	Free()

	// CallNull invokes the kernel with all data pointers null, for the
	// invalid-size probe and for workspace queries.
	CallNull() device.Status

	// Call invokes the kernel on the allocated device buffers. The call
	// is asynchronous; results are observable only after FetchResult.
	Call() device.Status

	// InitData regenerates host inputs (cpu) and/or transfers them to
	// their paired device buffers (gpu). Regeneration always restarts
	// from the run seed.
	InitData(cpu, gpu bool) error

	// FetchResult synchronizes the stream and transfers the device
	// output back to the host result buffer.
	FetchResult() error

	// Reference runs the trusted host oracle in place on the current
	// host inputs, turning them into the expected outputs.
	Reference()

	// ResultError reduces the disagreement between the reference output
	// and the fetched device output to a single non-negative scalar.
	ResultError() float64

	// CheckBadArgs sweeps deliberately malformed arguments against the
	// kernel using minimal fixed-size dummy buffers, independent of the
	// configured problem size. It returns nil only when every probe
	// yields exactly the documented classification.
	CheckBadArgs() error
}
