package harness_test

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerncheck/kerncheck/cases"
	"github.com/kerncheck/kerncheck/device"
	"github.com/kerncheck/kerncheck/harness"
	"github.com/kerncheck/kerncheck/kernels"
)

// recordingReporter captures everything the orchestrator emits so tests
// can assert on the report stream instead of parsing text.
type recordingReporter struct {
	headers []string
	labels  [][]string
	rows    [][]any
	informs []harness.InformReason
}

func (r *recordingReporter) Header(title string)     { r.headers = append(r.headers, title) }
func (r *recordingReporter) Labels(labels ...string) { r.labels = append(r.labels, labels) }
func (r *recordingReporter) Row(values ...any)       { r.rows = append(r.rows, values) }
func (r *recordingReporter) Inform(reason harness.InformReason, _ ...int64) {
	r.informs = append(r.informs, reason)
}

func discardOrchestrator(h *device.Handle) *harness.Orchestrator {
	return harness.NewOrchestrator(h, harness.TableReporter{W: io.Discard})
}

func TestRunRejectsInvalidSizes(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	rep := &recordingReporter{}
	o := harness.NewOrchestrator(h, rep)

	for _, args := range []harness.Arguments{
		{N: -1, Inc: 1, HotCalls: 1, Timing: true},
		{N: 10, Inc: 0, HotCalls: 1, Timing: true},
	} {
		res, err := o.Run(c, args)
		require.NoError(t, err)
		assert.Equal(t, harness.Rejected, res.Outcome)
	}
	assert.Equal(t,
		[]harness.InformReason{harness.InformInvalidSize, harness.InformInvalidSize},
		rep.informs)
}

func TestRunQuickReturn(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	rep := &recordingReporter{}
	o := harness.NewOrchestrator(h, rep)

	res, err := o.Run(c, harness.Arguments{N: 0, Inc: 1, HotCalls: 1, Timing: true})
	require.NoError(t, err)
	assert.Equal(t, harness.QuickReturn, res.Outcome)
	assert.Equal(t, []harness.InformReason{harness.InformQuickReturn}, rep.informs)
	assert.Empty(t, rep.rows, "a quick return must not produce result rows")
}

func TestRunMemoryQuery(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	o := discardOrchestrator(h)
	args := harness.Arguments{N: 1000, Inc: 1, MemQuery: true}

	res, err := o.Run(c, args)
	require.NoError(t, err)
	assert.Equal(t, harness.SizeReported, res.Outcome)
	assert.Equal(t, kernels.LarfgWorkspaceBytes(1000), res.WorkspaceBytes)

	again, err := o.Run(c, args)
	require.NoError(t, err)
	assert.Equal(t, res.WorkspaceBytes, again.WorkspaceBytes,
		"identical queries must report identical sizes")
}

func TestRunUnitCheck(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	for _, tc := range []struct{ n, inc int }{
		{2, 1}, {50, 2}, {300, 1}, {1024, 1},
	} {
		c := cases.NewLarfg[float64](h, 1)
		res, err := discardOrchestrator(h).Run(c, harness.Arguments{
			N: tc.n, Inc: tc.inc, UnitCheck: true, Seed: 1,
		})
		require.NoError(t, err)
		require.Equal(t, harness.Completed, res.Outcome)
		assert.True(t, harness.WithinTolerance[float64](res.MaxError, tc.n),
			"n=%d inc=%d error=%g", tc.n, tc.inc, res.MaxError)
	}
}

func TestRunUnitCheckSinglePrecision(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float32](h, 1)
	res, err := discardOrchestrator(h).Run(c, harness.Arguments{
		N: 500, Inc: 1, UnitCheck: true, Seed: 1,
	})
	require.NoError(t, err)
	require.Equal(t, harness.Completed, res.Outcome)
	assert.True(t, harness.WithinTolerance[float32](res.MaxError, 500),
		"error=%g", res.MaxError)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	run := func(seed int64) float64 {
		c := cases.NewLarfg[float64](h, seed)
		res, err := discardOrchestrator(h).Run(c, harness.Arguments{
			N: 200, Inc: 1, UnitCheck: true, Seed: seed,
		})
		require.NoError(t, err)
		return res.MaxError
	}

	assert.Equal(t, run(7), run(7), "same seed must reproduce the same error scalar")
}

func TestRunTiming(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	rep := &recordingReporter{}
	res, err := harness.NewOrchestrator(h, rep).Run(c, harness.Arguments{
		N: 256, Inc: 1, HotCalls: 10, Timing: true, Seed: 1,
	})
	require.NoError(t, err)
	require.Equal(t, harness.Completed, res.Outcome)

	assert.False(t, math.IsNaN(res.GPUTimeUs))
	assert.GreaterOrEqual(t, res.GPUTimeUs, 0.0)
	assert.GreaterOrEqual(t, res.CPUTimeUs, 0.0)

	// classic bench layout: Arguments and Results sections
	assert.Equal(t, []string{"Arguments:", "Results:"}, rep.headers)
	require.Len(t, rep.rows, 2)
	assert.Equal(t, []any{256, 1}, rep.rows[0])
}

func TestRunTimingWithFreshTransfers(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	// Large problem with several hot calls: every cold and hot call is
	// preceded by a fresh transfer, which must order against the kernel
	// still in flight from the previous iteration.
	c := cases.NewLarfg[float64](h, 1)
	res, err := discardOrchestrator(h).Run(c, harness.Arguments{
		N: 100000, Inc: 1, HotCalls: 4, Timing: true, NormCheck: true, Seed: 1,
	})
	require.NoError(t, err)
	require.Equal(t, harness.Completed, res.Outcome)
	assert.True(t, harness.WithinTolerance[float64](res.MaxError, 100000),
		"error=%g", res.MaxError)
	assert.False(t, math.IsNaN(res.GPUTimeUs))
}

func TestRunProfileArming(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	var buf bytes.Buffer
	h.SetLogger(zerolog.New(&buf))

	c := cases.NewLarfg[float64](h, 1)
	res, err := discardOrchestrator(h).Run(c, harness.Arguments{
		N: 128, Inc: 1, HotCalls: 3, Timing: true, Seed: 1,
		Profile: 1, ProfileKernels: true,
	})
	require.NoError(t, err)
	require.Equal(t, harness.Completed, res.Outcome)

	// arming emits events but must not change the run's results
	out := buf.String()
	assert.Contains(t, out, "kernel profile")
	assert.Contains(t, out, "kernel launch")
	assert.Contains(t, out, "larfg")
	assert.False(t, math.IsNaN(res.GPUTimeUs))
	assert.GreaterOrEqual(t, res.GPUTimeUs, 0.0)
}

func TestRunPerfSkipsCPUBaseline(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	rep := &recordingReporter{}
	res, err := harness.NewOrchestrator(h, rep).Run(c, harness.Arguments{
		N: 256, Inc: 1, HotCalls: 5, Timing: true, Perf: true, Seed: 1,
	})
	require.NoError(t, err)
	require.Equal(t, harness.Completed, res.Outcome)

	assert.Equal(t, 0.0, res.CPUTimeUs, "performance-only mode takes no CPU sample")
	assert.Empty(t, rep.headers, "performance-only output is a bare row")
	require.Len(t, rep.rows, 1)
	require.Len(t, rep.rows[0], 1)
}

func TestRunNegotiatesWhenReallocDisabled(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()
	h.SetReallocOnDemand(false)

	c := cases.NewLarfg[float64](h, 1)
	res, err := discardOrchestrator(h).Run(c, harness.Arguments{
		N: 1000, Inc: 1, UnitCheck: true, Seed: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, harness.Completed, res.Outcome)
	assert.Equal(t, kernels.LarfgWorkspaceBytes(1000), res.WorkspaceBytes)
	assert.True(t, harness.WithinTolerance[float64](res.MaxError, 1000))
}

func TestRunRejectsBadFlagCombinations(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	c := cases.NewLarfg[float64](h, 1)
	_, err := discardOrchestrator(h).Run(c, harness.Arguments{
		N: 10, Inc: 1, Timing: true, HotCalls: 0,
	})
	assert.Error(t, err)
}

func TestValidateArguments(t *testing.T) {
	h := device.NewHandle()
	defer h.Free()

	for _, prec := range []string{"s", "d"} {
		t.Run(prec, func(t *testing.T) {
			if prec == "s" {
				assert.NoError(t, harness.ValidateArguments(cases.NewLarfg[float32](h, 1)))
			} else {
				assert.NoError(t, harness.ValidateArguments(cases.NewLarfg[float64](h, 1)))
			}
		})
	}
}
