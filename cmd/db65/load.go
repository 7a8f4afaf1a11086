package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoadCmd exposes load_code as its own subcommand for scripts that want
// to confirm a binary parses (headers, entry point) without running it;
// --code on the root command already loads it for every other subcommand.
func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "load the binary image named by --code and report its header",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagCode == "" {
				return fmt.Errorf("--code is required")
			}
			fmt.Printf("loaded %s: run_addr=$%04X pc=$%04X\n", flagCode, eng.ReadRegisters().PC, eng.ReadRegisters().PC)
			return nil
		},
	}
}
