package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMemCmd() *cobra.Command {
	var length int
	var writeVal int
	var write bool
	cmd := &cobra.Command{
		Use:   "mem <addr-expr>",
		Short: "read (or, with --write, set) memory starting at an address expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := eng.ConvertAddr(args[0])
			if err != nil {
				return err
			}
			if write {
				eng.WriteByte(addr, byte(writeVal))
				fmt.Printf("$%04X <- $%02X\n", addr, byte(writeVal))
				return nil
			}
			for i := 0; i < length; i += 16 {
				fmt.Printf("$%04X:", addr+uint16(i))
				for j := i; j < i+16 && j < length; j++ {
					fmt.Printf(" %02X", eng.ReadByte(addr+uint16(j)))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "len", 16, "number of bytes to dump")
	cmd.Flags().BoolVar(&write, "write", false, "write --value instead of reading")
	cmd.Flags().IntVar(&writeVal, "value", 0, "byte value to write with --write")
	return cmd
}
