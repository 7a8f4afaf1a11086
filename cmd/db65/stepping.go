package main

import (
	"github.com/spf13/cobra"
)

func newStepCmd() *cobra.Command {
	var statement bool
	cmd := &cobra.Command{
		Use:   "step",
		Short: "single-step one machine instruction, or one source statement with --statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			if statement {
				printStop(eng.StepStatement(newCancelFlag()))
				return nil
			}
			printStop(eng.Step())
			return nil
		},
	}
	cmd.Flags().BoolVar(&statement, "statement", false, "step by source statement instead of by instruction")
	return cmd
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "run until the innermost call frame returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStop(eng.Finish(newCancelFlag()))
			return nil
		},
	}
}

func newNextCmd() *cobra.Command {
	var statement bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "step over a JSR, or one source statement without descending into calls with --statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			if statement {
				printStop(eng.NextStatement(newCancelFlag()))
				return nil
			}
			printStop(eng.Next(newCancelFlag()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&statement, "statement", false, "step by source statement instead of by instruction")
	return cmd
}
