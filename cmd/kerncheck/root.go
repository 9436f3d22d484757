package main

import (
	"github.com/spf13/cobra"

	"github.com/kerncheck/kerncheck/config"
	"github.com/kerncheck/kerncheck/logger"
)

var (
	cfgFile   string
	activeCfg config.Config
)

// NewRootCmd builds the kerncheck command tree.
func NewRootCmd() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "kerncheck",
		Short:         "Verify and benchmark accelerated numerical kernels against host references",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			if cmd.Flags().Changed("log-format") {
				loaded.LogFormat, _ = cmd.Flags().GetString("log-format")
			}
			activeCfg = loaded
			logger.Setup(loaded.LogLevel, loaded.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newCheckCmd())

	return cmd
}
