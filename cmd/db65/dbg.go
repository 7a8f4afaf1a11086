package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDbgCmd exposes load_dbg as its own subcommand, mirroring newLoadCmd.
func newDbgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbg",
		Short: "load the debug-info file named by --dbg and report a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagDbg == "" {
				return fmt.Errorf("--dbg is required")
			}
			fmt.Printf("loaded %s: %d symbols, %d files\n", flagDbg, len(eng.Store.SymDefs), len(eng.Store.Files))
			return nil
		},
	}
}
