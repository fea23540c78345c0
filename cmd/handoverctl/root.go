package main

import (
	"fmt"

	"github.com/danmuck/handover/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "handoverctl",
		Short:         "Inspect, build and simulate NFC connection handover messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()
			if opts.logLevel != "" && !logging.SetLevel(opts.logLevel) {
				return fmt.Errorf("unknown log level %q", opts.logLevel)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml")

	cmd.AddCommand(
		newDecodeCmd(opts),
		newEncodeCmd(),
		newConfigCmd(),
		newSimulateCmd(),
	)
	return cmd
}
