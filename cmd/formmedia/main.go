package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "formmedia",
		Short:         "Process image attribute uploads for entity forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.toml")

	cmd.AddCommand(
		newServeCommand(opts),
		newProcessCommand(opts),
		newDispersionCommand(),
		newTokenCommand(opts),
		newPurgeCommand(opts),
		newVersionCommand(),
	)
	return cmd
}
