package harness

import (
	"fmt"

	"github.com/kerncheck/kerncheck/device"
)

// Outcome is the terminal state of one orchestrated run.
type Outcome int

const (
	// Completed: the requested phases ran and produced results.
	Completed Outcome = iota
	// Rejected: the kernel classified the requested size as invalid.
	Rejected
	// SizeReported: a pure memory-size query; the kernel never ran.
	SizeReported
	// QuickReturn: the degenerate size short-circuited to success.
	QuickReturn
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Rejected:
		return "rejected"
	case SizeReported:
		return "size_reported"
	case QuickReturn:
		return "quick_return"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result carries the error scalar and timing samples of a run. A timing
// sample left at zero means its measurement was skipped, not that it
// measured zero time; the CPU sample in particular stays zero in
// performance-only mode.
type Result struct {
	Outcome        Outcome
	MaxError       float64
	CPUTimeUs      float64
	GPUTimeUs      float64
	WorkspaceBytes int64
}

// Orchestrator sequences the phases of a run over one handle and reports
// to an external reporter. There is no retry anywhere: any status other
// than the one expected at each step aborts the run as a test failure.
type Orchestrator struct {
	handle *device.Handle
	rep    Reporter
}

// NewOrchestrator binds a handle and a reporter for subsequent runs.
func NewOrchestrator(h *device.Handle, rep Reporter) *Orchestrator {
	return &Orchestrator{handle: h, rep: rep}
}

// Run drives one verification/benchmark run of c under args.
func (o *Orchestrator) Run(c Case, args Arguments) (Result, error) {
	if err := args.Validate(); err != nil {
		return Result{}, err
	}
	c.Prepare(args)

	// The kernel itself must classify an invalid size, before touching
	// any buffer; the probe therefore passes null data pointers.
	if args.N < 0 || args.Inc < 1 {
		if st := c.CallNull(); st != device.InvalidSize {
			return Result{}, fmt.Errorf("%s: invalid size probe: expected %v, got %v",
				c.Name(), device.InvalidSize, st)
		}
		if args.Timing {
			o.rep.Inform(InformInvalidSize)
		}
		return Result{Outcome: Rejected}, nil
	}

	// Workspace negotiation is mandatory whenever the runtime cannot
	// grow allocations on demand, and on explicit request.
	var wsBytes int64
	if args.MemQuery || !o.handle.ReallocOnDemand() {
		var err error
		wsBytes, err = o.negotiate(c)
		if err != nil {
			return Result{}, err
		}
		if args.MemQuery {
			o.rep.Inform(InformMemQuery, wsBytes)
			return Result{Outcome: SizeReported, WorkspaceBytes: wsBytes}, nil
		}
		if st := o.handle.SetWorkspaceSize(wsBytes); st != device.Success {
			return Result{}, device.Errf(c.Name()+": commit workspace", st)
		}
	}

	if err := c.Alloc(); err != nil {
		return Result{}, fmt.Errorf("%s: allocate buffers: %w", c.Name(), err)
	}
	defer c.Free()

	// Degenerate size: assert the quick-return contract and stop.
	if args.N == 0 {
		if st := c.Call(); st != device.Success {
			return Result{}, fmt.Errorf("%s: quick return probe: expected %v, got %v",
				c.Name(), device.Success, st)
		}
		if args.Timing {
			o.rep.Inform(InformQuickReturn)
		}
		return Result{Outcome: QuickReturn}, nil
	}

	res := Result{Outcome: Completed, WorkspaceBytes: wsBytes}

	if args.needsError() {
		maxErr, err := o.evaluate(c)
		if err != nil {
			return Result{}, err
		}
		res.MaxError = maxErr
	}

	if args.Timing {
		cpu, gpu, err := o.profile(c, args)
		if err != nil {
			return Result{}, err
		}
		res.CPUTimeUs = cpu
		res.GPUTimeUs = gpu
	}

	o.report(args, res)
	return res, nil
}

// negotiate asks the kernel, via a null-data query invocation, how many
// scratch bytes the configured problem needs. Any status other than
// success is fatal to the run.
func (o *Orchestrator) negotiate(c Case) (int64, error) {
	if st := o.handle.StartMemorySizeQuery(); st != device.Success {
		return 0, device.Errf(c.Name()+": start memory size query", st)
	}
	if st := c.CallNull(); st != device.Success {
		o.handle.StopMemorySizeQuery()
		return 0, device.Errf(c.Name()+": workspace query", st)
	}
	bytes, st := o.handle.StopMemorySizeQuery()
	if st != device.Success {
		return 0, device.Errf(c.Name()+": stop memory size query", st)
	}
	return bytes, nil
}

// evaluate runs kernel and reference on one generated-and-transferred
// input set and reduces the disagreement to the error scalar. It performs
// no pass/fail judgement; thresholding belongs to the caller.
func (o *Orchestrator) evaluate(c Case) (float64, error) {
	if err := c.InitData(true, true); err != nil {
		return 0, fmt.Errorf("%s: initialize data: %w", c.Name(), err)
	}
	if st := c.Call(); st != device.Success {
		return 0, device.Errf(c.Name()+": kernel", st)
	}
	if err := c.FetchResult(); err != nil {
		return 0, fmt.Errorf("%s: fetch result: %w", c.Name(), err)
	}
	c.Reference()
	return c.ResultError(), nil
}

// Number of untimed warm-up invocations before the hot loop.
const coldCalls = 2

// profile measures steady-state kernel latency under the cold/hot
// discipline. Each call, cold or hot, is preceded by fresh regeneration
// and transfer so cache residency cannot flatter the numbers. On any
// failure the partial timing data is discarded.
func (o *Orchestrator) profile(c Case, args Arguments) (cpuUs, gpuUs float64, err error) {
	if !args.Perf {
		// CPU baseline from a single reference invocation. Skipped
		// entirely in performance-only mode.
		if err = c.InitData(true, false); err != nil {
			return 0, 0, fmt.Errorf("%s: initialize data: %w", c.Name(), err)
		}
		start := TimeUs()
		c.Reference()
		cpuUs = TimeUs() - start
	}

	if err = c.InitData(true, false); err != nil {
		return 0, 0, fmt.Errorf("%s: initialize data: %w", c.Name(), err)
	}

	for iter := 0; iter < coldCalls; iter++ {
		if err = c.InitData(false, true); err != nil {
			return 0, 0, fmt.Errorf("%s: initialize data: %w", c.Name(), err)
		}
		if st := c.Call(); st != device.Success {
			return 0, 0, device.Errf(c.Name()+": cold call", st)
		}
	}

	stream := o.handle.Stream()

	// The profile layer is armed immediately before the hot loop; it is
	// an orthogonal side channel and must not alter timing semantics.
	if args.Profile > 0 {
		mode := device.LayerProfile
		if args.ProfileKernels {
			mode |= device.LayerKernel
		}
		o.handle.SetLogLayer(mode, args.Profile)
	}

	var total float64
	for iter := 0; iter < args.HotCalls; iter++ {
		if err = c.InitData(false, true); err != nil {
			return 0, 0, fmt.Errorf("%s: initialize data: %w", c.Name(), err)
		}
		start := TimeUsSync(stream)
		if st := c.Call(); st != device.Success {
			return 0, 0, device.Errf(c.Name()+": hot call", st)
		}
		total += TimeUsSync(stream) - start
	}
	gpuUs = total / float64(args.HotCalls)
	return cpuUs, gpuUs, nil
}

// report hands the problem parameters, timings and error scalar to the
// external reporter in the classic bench layout.
func (o *Orchestrator) report(args Arguments, res Result) {
	if !args.Timing {
		return
	}
	if args.Perf {
		if args.NormCheck {
			o.rep.Row(res.GPUTimeUs, res.MaxError)
		} else {
			o.rep.Row(res.GPUTimeUs)
		}
		return
	}

	o.rep.Header("Arguments:")
	o.rep.Labels("n", "inc")
	o.rep.Row(args.N, args.Inc)

	o.rep.Header("Results:")
	if args.NormCheck {
		o.rep.Labels("cpu_time_us", "gpu_time_us", "error")
		o.rep.Row(res.CPUTimeUs, res.GPUTimeUs, res.MaxError)
	} else {
		o.rep.Labels("cpu_time_us", "gpu_time_us")
		o.rep.Row(res.CPUTimeUs, res.GPUTimeUs)
	}
}

// ValidateArguments drives the kernel with deliberately malformed inputs
// and asserts each yields its documented classification. It is a pure
// contract check over the error-signaling surface; no numeric comparison
// is involved.
func ValidateArguments(c Case) error {
	return c.CheckBadArgs()
}
