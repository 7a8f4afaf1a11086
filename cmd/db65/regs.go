package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegsCmd() *cobra.Command {
	var setReg string
	var setVal uint16
	cmd := &cobra.Command{
		Use:   "regs",
		Short: "print the register block, or write one register with --set/--value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if setReg != "" {
				r := eng.ReadRegisters()
				switch setReg {
				case "a":
					r.A = byte(setVal)
				case "x":
					r.X = byte(setVal)
				case "y":
					r.Y = byte(setVal)
				case "sp":
					r.SP = byte(setVal)
				case "pc":
					r.PC = setVal
				default:
					return fmt.Errorf("unknown register %q (want a, x, y, sp, or pc)", setReg)
				}
				eng.WriteRegisters(r)
			}
			r := eng.ReadRegisters()
			fmt.Printf("A=$%02X X=$%02X Y=$%02X SR=$%02X SP=$%02X PC=$%04X\n", r.A, r.X, r.Y, r.SR, r.SP, r.PC)
			return nil
		},
	}
	cmd.Flags().StringVar(&setReg, "set", "", "register to write: a, x, y, sp, or pc")
	cmd.Flags().Uint16Var(&setVal, "value", 0, "value to write into --set")
	return cmd
}
