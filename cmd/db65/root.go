// Command db65 is a source-level debugger for cc65-compiled 6502/65C02
// programs. Each invocation loads a binary image (and, optionally, its
// companion debug-info file), applies any breakpoints persisted from earlier
// invocations, runs exactly one engine operation, and prints
// the resulting stop reason.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pm100/db65-sub000/internal/config"
	"github.com/pm100/db65-sub000/internal/engine"
)

var (
	v   = viper.New()
	cfg config.Config
	log *zap.SugaredLogger
	eng *engine.Engine

	flagCode string
	flagDbg  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "db65",
		Short: "source-level debugger for cc65-compiled 6502/65C02 programs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(v)
			if err != nil {
				return err
			}
			cfg = loaded

			zl, err := zap.NewProduction()
			if err != nil {
				return err
			}
			log = zl.Sugar()

			eng = engine.New(log)
			eng.SetCC65Dir(cfg.CC65Dir)
			eng.EnableStackCheck(cfg.StackCheck)
			eng.EnableMemCheck(cfg.MemCheck)
			eng.EnableHeapCheck(cfg.HeapCheck)

			if flagCode != "" {
				if _, err := eng.LoadCode(flagCode); err != nil {
					return err
				}
			}
			if flagDbg != "" {
				if err := eng.LoadDbg(flagDbg); err != nil {
					return err
				}
			}
			return loadPersistedBreakpoints(eng, cfg.BreakpointFile)
		},
	}

	root.PersistentFlags().StringVar(&flagCode, "code", "", "path to the sim65 binary image to debug")
	root.PersistentFlags().StringVar(&flagDbg, "dbg", "", "path to the cc65 textual debug-info file")
	config.BindFlags(root, v)

	root.AddCommand(
		newLoadCmd(),
		newDbgCmd(),
		newRunCmd(),
		newBreakCmd(),
		newWatchCmd(),
		newGoCmd(),
		newStepCmd(),
		newNextCmd(),
		newFinishCmd(),
		newRegsCmd(),
		newMemCmd(),
		newEvalCmd(),
		newDumpCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printStop(reason engine.StopReason) {
	fmt.Printf("stop: %s addr=$%04X code=%d bug=%d\n", reason, reason.Addr, reason.Code, reason.Bug)
}
