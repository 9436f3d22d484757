package device

import (
	"time"

	"github.com/rs/zerolog"
)

// LogLayer selects which profile-logging layers are armed on a handle.
// Layering is a best-effort side channel: arming it must not change the
// result of any kernel, only emit events while kernels execute.
type LogLayer int

const (
	LayerNone    LogLayer = 0
	LayerProfile LogLayer = 1 << iota
	LayerKernel
)

// Handle is the execution context passed to every kernel entry point. It
// owns the stream the kernels run on, the negotiated scratch workspace,
// and the scoped profile-logging configuration.
//
// A nil *Handle is the "null execution-context handle" of the argument
// contract; kernels classify it as InvalidHandle.
type Handle struct {
	stream *Stream

	reallocOnDemand bool

	memQuery   bool
	queryBytes int64

	workspace     *Memory
	workspaceSize int64

	logMode  LogLayer
	logDepth int
	log      zerolog.Logger
}

// NewHandle creates an execution context with its own stream. The runtime
// grows kernel workspaces on demand unless SetReallocOnDemand disables it.
func NewHandle() *Handle {
	return &Handle{
		stream:          newStream(),
		reallocOnDemand: true,
		log:             zerolog.Nop(),
	}
}

// Free synchronizes and releases the stream and any negotiated workspace.
func (h *Handle) Free() {
	if h == nil {
		return
	}
	h.stream.Synchronize()
	h.stream.Close()
	h.workspace.Free()
	h.workspace = nil
}

// Stream returns the execution stream kernels launched through this
// handle run on.
func (h *Handle) Stream() *Stream {
	return h.stream
}

// SetReallocOnDemand controls whether kernels may grow their workspace at
// launch time. When disabled, the workspace size must be negotiated with
// StartMemorySizeQuery / StopMemorySizeQuery / SetWorkspaceSize before the
// real invocation.
func (h *Handle) SetReallocOnDemand(ok bool) {
	h.reallocOnDemand = ok
}

// ReallocOnDemand reports whether the runtime grows workspaces on demand.
func (h *Handle) ReallocOnDemand() bool {
	return h.reallocOnDemand
}

// SetLogger attaches a logger used by the profile layers. The default is
// a no-op logger.
func (h *Handle) SetLogger(log zerolog.Logger) {
	h.log = log
}

// Workspace negotiation.
//
// A query invocation calls the kernel with null data pointers; the kernel
// reports its scratch requirement through RequestWorkspace and returns
// without touching data.

// StartMemorySizeQuery puts the handle into query mode.
func (h *Handle) StartMemorySizeQuery() Status {
	if h == nil {
		return InvalidHandle
	}
	h.memQuery = true
	h.queryBytes = 0
	return Success
}

// StopMemorySizeQuery leaves query mode and returns the largest scratch
// requirement any queried kernel reported.
func (h *Handle) StopMemorySizeQuery() (int64, Status) {
	if h == nil {
		return 0, InvalidHandle
	}
	if !h.memQuery {
		return 0, ExecutionFailed
	}
	h.memQuery = false
	return h.queryBytes, Success
}

// IsMemQuery reports whether the handle is in query mode. Kernels check
// this after argument validation and before touching any data pointer.
func (h *Handle) IsMemQuery() bool {
	return h != nil && h.memQuery
}

// RequestWorkspace records a kernel's scratch requirement during a query.
func (h *Handle) RequestWorkspace(bytes int64) {
	if bytes > h.queryBytes {
		h.queryBytes = bytes
	}
}

// SetWorkspaceSize commits the negotiated workspace before the real
// invocation. The stream is drained before the old workspace is released
// so no queued kernel can still hold it.
func (h *Handle) SetWorkspaceSize(bytes int64) Status {
	if h == nil {
		return InvalidHandle
	}
	h.stream.Synchronize()
	h.workspace.Free()
	h.workspace = nil
	h.workspaceSize = bytes
	if bytes == 0 {
		return Success
	}
	mem, err := Malloc(bytes)
	if err != nil {
		return AllocationFailed
	}
	h.workspace = mem
	return Success
}

// AcquireWorkspace hands a kernel its scratch memory. With realloc on
// demand the workspace grows as needed; otherwise the committed size is a
// hard limit and exceeding it fails the launch.
func (h *Handle) AcquireWorkspace(bytes int64) (*Memory, Status) {
	if bytes == 0 {
		return nil, Success
	}
	if h.workspace != nil && h.workspace.Size() >= bytes {
		return h.workspace, Success
	}
	if !h.reallocOnDemand {
		return nil, AllocationFailed
	}
	mem, err := Malloc(bytes)
	if err != nil {
		return nil, AllocationFailed
	}
	// Queued kernels may still hold the outgoing workspace.
	h.stream.Synchronize()
	h.workspace.Free()
	h.workspace = mem
	h.workspaceSize = bytes
	return mem, Success
}

// SetLogLayer arms the profile-logging layers with the given maximum
// nesting depth. LayerNone disarms them.
func (h *Handle) SetLogLayer(mode LogLayer, maxDepth int) {
	h.logMode = mode
	h.logDepth = maxDepth
}

// Launch enqueues a kernel body on the handle's stream, emitting profile
// events when the corresponding layers are armed.
func (h *Handle) Launch(name string, body func()) Status {
	if h == nil || h.stream == nil {
		return InvalidHandle
	}
	mode, depth, log := h.logMode, h.logDepth, h.log
	if mode == LayerNone || depth <= 0 {
		h.stream.Enqueue(body)
		return Success
	}
	h.stream.Enqueue(func() {
		if mode&LayerKernel != 0 {
			log.Debug().Str("kernel", name).Msg("kernel launch")
		}
		start := time.Now()
		body()
		if mode&LayerProfile != 0 {
			log.Debug().
				Str("kernel", name).
				Float64("time_us", float64(time.Since(start).Nanoseconds())/1e3).
				Msg("kernel profile")
		}
	})
	return Success
}
