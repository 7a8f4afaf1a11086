package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/pm100/db65-sub000/internal/engine"
)

// persistedBreakpoint is the on-disk shape of a Breakpoint, used to carry
// breakpoints across separate db65 invocations (config.Config.BreakpointFile).
type persistedBreakpoint struct {
	Addr   uint16 `json:"addr"`
	Symbol string `json:"symbol"`
	Temp   bool   `json:"temp"`
}

func loadPersistedBreakpoints(e *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading breakpoint file %q", path)
	}
	var bps []persistedBreakpoint
	if err := json.Unmarshal(data, &bps); err != nil {
		return errors.Wrapf(err, "parsing breakpoint file %q", path)
	}
	for _, bp := range bps {
		e.SetBreak(bp.Addr, bp.Symbol, bp.Temp)
	}
	return nil
}

func savePersistedBreakpoints(e *engine.Engine, path string) error {
	live := e.Breakpoints()
	out := make([]persistedBreakpoint, 0, len(live))
	for _, bp := range live {
		if bp.Temp {
			continue // temporary breakpoints never survive past the run that set them
		}
		out = append(out, persistedBreakpoint{Addr: bp.Addr, Symbol: bp.Symbol, Temp: bp.Temp})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling breakpoints")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing breakpoint file %q", path)
	}
	return nil
}
