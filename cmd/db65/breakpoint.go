package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBreakCmd() *cobra.Command {
	var del bool
	var temp bool
	cmd := &cobra.Command{
		Use:   "break <addr-expr>",
		Short: "set (or, with --delete, remove) a breakpoint, persisted across invocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := eng.ConvertAddr(args[0])
			if err != nil {
				return err
			}
			if del {
				if eng.DeleteBreakpoint(addr) {
					fmt.Printf("deleted breakpoint at $%04X\n", addr)
				} else {
					fmt.Printf("no breakpoint at $%04X\n", addr)
				}
			} else {
				eng.SetBreak(addr, args[0], temp)
				fmt.Printf("breakpoint set at $%04X\n", addr)
			}
			return savePersistedBreakpoints(eng, cfg.BreakpointFile)
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "remove the breakpoint instead of setting it")
	cmd.Flags().BoolVar(&temp, "temp", false, "self-delete the first time this breakpoint is hit")
	return cmd
}
