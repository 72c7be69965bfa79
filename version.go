package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixsort/internal/startup"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), startup.GetBuildInfo())
		},
	}
}
