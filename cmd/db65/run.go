package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [args...]",
		Short: "run the loaded image to completion, honouring ctrl-C",
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := eng.Run(args, newCancelFlag())
			printStop(reason)
			return nil
		},
	}
}

// newCancelFlag wires an atomic.Bool to SIGINT, satisfying engine.CancelFlag
// directly (spec §5's suspension-point design).
func newCancelFlag() *atomic.Bool {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT)
	var cancel atomic.Bool
	go func() {
		<-ctx.Done()
		cancel.Store(true)
		stop()
	}()
	return &cancel
}
