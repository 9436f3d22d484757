package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kerncheck/kerncheck/cases"
	"github.com/kerncheck/kerncheck/device"
	"github.com/kerncheck/kerncheck/harness"
	"github.com/kerncheck/kerncheck/logger"
)

func newBenchCmd() *cobra.Command {
	var (
		n              int
		inc            int
		iters          int
		perf           bool
		normCheck      bool
		memQuery       bool
		profile        int
		profileKernels bool
		seed           int64
		precision      string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the reflector kernel under the cold/hot timing discipline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := activeCfg.Bench
			flags := cmd.Flags()
			if !flags.Changed("n") {
				n = b.N
			}
			if !flags.Changed("inc") {
				inc = b.Inc
			}
			if !flags.Changed("iters") {
				iters = b.Iters
			}
			if !flags.Changed("perf") {
				perf = b.Perf
			}
			if !flags.Changed("norm-check") {
				normCheck = b.NormCheck
			}
			if !flags.Changed("mem-query") {
				memQuery = b.MemQuery
			}
			if !flags.Changed("profile") {
				profile = b.Profile
			}
			if !flags.Changed("profile-kernels") {
				profileKernels = b.ProfileKernels
			}
			if !flags.Changed("seed") {
				seed = b.Seed
			}
			if !flags.Changed("precision") {
				precision = activeCfg.Precision
			}
			if !flags.Changed("format") {
				format = activeCfg.Format
			}

			args := harness.Arguments{
				N:              n,
				Inc:            inc,
				HotCalls:       iters,
				Timing:         !memQuery,
				Perf:           perf && !memQuery,
				NormCheck:      normCheck,
				MemQuery:       memQuery,
				Profile:        profile,
				ProfileKernels: profileKernels,
				Seed:           seed,
			}

			switch precision {
			case "s":
				return runBench[float32](args, format)
			case "d":
				return runBench[float64](args, format)
			default:
				return fmt.Errorf("--precision must be 's' or 'd', got %q", precision)
			}
		},
	}

	cmd.Flags().IntVar(&n, "n", 1024, "Problem size")
	cmd.Flags().IntVar(&inc, "inc", 1, "Stride between vector elements")
	cmd.Flags().IntVar(&iters, "iters", 10, "Timed (hot) kernel invocations to average")
	cmd.Flags().BoolVar(&perf, "perf", false, "Performance-only mode, skip the CPU baseline")
	cmd.Flags().BoolVar(&normCheck, "norm-check", false, "Also compute and report the error scalar")
	cmd.Flags().BoolVar(&memQuery, "mem-query", false, "Report the required workspace size and exit")
	cmd.Flags().IntVar(&profile, "profile", 0, "Profile-logging depth (0 disables)")
	cmd.Flags().BoolVar(&profileKernels, "profile-kernels", false, "Add kernel-level profile events")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for reproducible inputs")
	cmd.Flags().StringVar(&precision, "precision", "d", "Element type: s|d")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|log")

	return cmd
}

func runBench[T harness.Float](args harness.Arguments, format string) error {
	h := device.NewHandle()
	defer h.Free()
	h.SetLogger(logger.Log)

	var rep harness.Reporter
	switch format {
	case "log":
		rep = &harness.LogReporter{Log: logger.Log}
	case "table":
		rep = harness.TableReporter{W: os.Stdout}
	default:
		return fmt.Errorf("--format must be 'table' or 'log', got %q", format)
	}

	c := cases.NewLarfg[T](h, args.Seed)
	res, err := harness.NewOrchestrator(h, rep).Run(c, args)
	if err != nil {
		return err
	}
	logger.Log.Debug().
		Str("case", c.Name()).
		Stringer("outcome", res.Outcome).
		Float64("gpu_time_us", res.GPUTimeUs).
		Msg("bench finished")
	return nil
}
