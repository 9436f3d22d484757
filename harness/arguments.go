// Package harness implements the generic verification-and-benchmarking
// protocol for accelerated kernels: argument validation, workspace
// negotiation, reproducible data initialization, correctness evaluation
// against a host oracle, and cold/hot latency profiling, sequenced by a
// single orchestrator per run.
package harness

import "fmt"

// Arguments is the immutable per-run configuration. It is built once by
// the caller and consumed read-only by every phase.
//
// N and Inc describe the problem; negative N or sub-unit Inc are not
// configuration errors but inputs the kernel itself must classify as
// invalid_size (the run then terminates as Rejected).
type Arguments struct {
	N   int
	Inc int

	// HotCalls is the number of timed kernel invocations averaged into
	// the GPU sample.
	HotCalls int

	UnitCheck bool
	NormCheck bool
	Timing    bool

	// Perf selects performance-only mode: no CPU baseline is taken and
	// the CPU sample stays exactly zero.
	Perf bool

	// MemQuery requests a pure workspace-size query; the kernel is never
	// executed for real.
	MemQuery bool

	// Profile arms the device profile-logging layer with the given
	// maximum depth; ProfileKernels adds kernel-level detail.
	Profile        int
	ProfileKernels bool

	// Seed drives the reproducible input generator.
	Seed int64
}

// Validate rejects invalid flag combinations before any allocation.
func (a Arguments) Validate() error {
	if a.Timing && a.HotCalls < 1 {
		return fmt.Errorf("harness: timing requested with hot_calls=%d, need at least 1", a.HotCalls)
	}
	if a.Perf && !a.Timing {
		return fmt.Errorf("harness: performance-only mode requires timing")
	}
	if a.Profile < 0 {
		return fmt.Errorf("harness: profile depth must be non-negative, got %d", a.Profile)
	}
	if a.ProfileKernels && a.Profile == 0 {
		return fmt.Errorf("harness: kernel-level profiling requires a profile depth")
	}
	return nil
}

// needsError reports whether the run computes the error scalar.
func (a Arguments) needsError() bool {
	return a.UnitCheck || a.NormCheck
}
