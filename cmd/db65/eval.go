package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expr>",
		Short: "evaluate an address expression (literals, registers, symbols, @(...) dereference)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := eng.Evaluate(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s = $%04X (%d)\n", args[0], v, v)
			return nil
		},
	}
}
