package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fieldops-load",
		Short:         "Console load and smoke testing tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSmokeCmd())
	cmd.AddCommand(newRunCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
