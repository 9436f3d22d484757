package harness

import (
	"time"

	"github.com/kerncheck/kerncheck/device"
)

// TimeUs returns a wall-clock timestamp in microseconds without any
// device synchronization. Used for the CPU baseline, where the work is
// synchronous anyway.
func TimeUs() float64 {
	return float64(time.Now().UnixNano()) / 1e3
}

// TimeUsSync drains the stream before taking the timestamp. Every timing
// boundary around an asynchronous kernel call must use this form, so the
// measurement covers device execution rather than dispatch.
func TimeUsSync(s *device.Stream) float64 {
	s.Synchronize()
	return TimeUs()
}
