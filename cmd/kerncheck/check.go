package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kerncheck/kerncheck/cases"
	"github.com/kerncheck/kerncheck/device"
	"github.com/kerncheck/kerncheck/harness"
	"github.com/kerncheck/kerncheck/logger"
)

func newCheckCmd() *cobra.Command {
	var (
		n         int
		inc       int
		seed      int64
		precision string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the argument-contract sweep and the correctness check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("n") {
				n = activeCfg.Bench.N
			}
			if !flags.Changed("inc") {
				inc = activeCfg.Bench.Inc
			}
			if !flags.Changed("seed") {
				seed = activeCfg.Bench.Seed
			}
			if !flags.Changed("precision") {
				precision = activeCfg.Precision
			}

			args := harness.Arguments{
				N:         n,
				Inc:       inc,
				UnitCheck: true,
				Seed:      seed,
			}

			switch precision {
			case "s":
				return runCheck[float32](args)
			case "d":
				return runCheck[float64](args)
			default:
				return fmt.Errorf("--precision must be 's' or 'd', got %q", precision)
			}
		},
	}

	cmd.Flags().IntVar(&n, "n", 1024, "Problem size")
	cmd.Flags().IntVar(&inc, "inc", 1, "Stride between vector elements")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for reproducible inputs")
	cmd.Flags().StringVar(&precision, "precision", "d", "Element type: s|d")

	return cmd
}

func runCheck[T harness.Float](args harness.Arguments) error {
	h := device.NewHandle()
	defer h.Free()
	h.SetLogger(logger.Log)

	c := cases.NewLarfg[T](h, args.Seed)

	if err := harness.ValidateArguments(c); err != nil {
		return fmt.Errorf("argument contract: %w", err)
	}

	res, err := harness.NewOrchestrator(h, harness.TableReporter{W: io.Discard}).Run(c, args)
	if err != nil {
		return err
	}

	// Tolerance policy: the error scalar must stay inside n times
	// machine epsilon for the element type.
	if res.Outcome == harness.Completed && !harness.WithinTolerance[T](res.MaxError, args.N) {
		return fmt.Errorf("%s: error %g exceeds %d x eps", c.Name(), res.MaxError, args.N)
	}

	logger.Log.Info().
		Str("case", c.Name()).
		Stringer("outcome", res.Outcome).
		Float64("max_error", res.MaxError).
		Msg("check passed")
	return nil
}
