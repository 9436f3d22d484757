package device

import "fmt"

// Status is the classification every kernel entry point returns. It mirrors
// the fixed error-signaling surface of the accelerated runtime: a kernel
// either succeeds or reports exactly one of these conditions.
type Status int

const (
	Success Status = iota
	InvalidHandle
	InvalidPointer
	InvalidSize
	AllocationFailed
	ExecutionFailed
	TransferFailed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case InvalidHandle:
		return "invalid_handle"
	case InvalidPointer:
		return "invalid_pointer"
	case InvalidSize:
		return "invalid_size"
	case AllocationFailed:
		return "allocation_failed"
	case ExecutionFailed:
		return "execution_failed"
	case TransferFailed:
		return "transfer_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusError wraps a non-success status with the operation that produced
// it. Every status in the taxonomy is fatal to the current run; callers
// surface the offending status and abort instead of retrying.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// Errf returns nil for Success and a StatusError otherwise.
func Errf(op string, s Status) error {
	if s == Success {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}
