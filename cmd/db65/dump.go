package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

// newDumpCmd pretty-prints the full session state (registers, synthetic call
// stack, tracked heap blocks) for scripting and debugging db65 itself.
func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "pretty-print registers, call stack, and heap tracker state",
		RunE: func(cmd *cobra.Command, args []string) error {
			spew.Dump(eng.ReadRegisters())
			spew.Dump(eng.ReadStack())
			spew.Dump(eng.GetHeapBlocks())
			return nil
		},
	}
}
