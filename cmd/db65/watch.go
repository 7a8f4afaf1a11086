package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pm100/db65-sub000/internal/engine"
)

func newWatchCmd() *cobra.Command {
	var del bool
	var kind string
	cmd := &cobra.Command{
		Use:   "watch <addr-expr>",
		Short: "set (or, with --delete, remove) a watchpoint for this session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := eng.ConvertAddr(args[0])
			if err != nil {
				return err
			}
			if del {
				if eng.DeleteWatchpoint(addr) {
					fmt.Printf("deleted watchpoint at $%04X\n", addr)
				} else {
					fmt.Printf("no watchpoint at $%04X\n", addr)
				}
				return nil
			}
			wk, err := parseWatchKind(kind)
			if err != nil {
				return err
			}
			eng.SetWatch(addr, args[0], wk)
			fmt.Printf("watchpoint set at $%04X (%s)\n", addr, kind)
			return nil
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "remove the watchpoint instead of setting it")
	cmd.Flags().StringVar(&kind, "kind", "write", "one of read, write, readwrite")
	return cmd
}

func parseWatchKind(s string) (engine.WatchKind, error) {
	switch s {
	case "read":
		return engine.WatchRead, nil
	case "write":
		return engine.WatchWrite, nil
	case "readwrite":
		return engine.WatchReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown watch kind %q (want read, write, or readwrite)", s)
	}
}
