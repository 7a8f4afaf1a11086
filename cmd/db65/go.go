package main

import "github.com/spf13/cobra"

func newGoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "go",
		Short: "resume execution until a breakpoint, watchpoint, bug, exit, or ctrl-C",
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := eng.Go(newCancelFlag())
			printStop(reason)
			return nil
		},
	}
}
