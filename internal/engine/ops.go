package engine

// Run resets the CPU (PC from the reset vector) and clears the synthetic
// stack and heap tracker, sets argv (via the same paravirt `args` convention
// the loaded binary expects) and starts unbounded execution. Breakpoints and
// watchpoints are kept.
func (e *Engine) Run(args []string, cancel CancelFlag) StopReason {
	e.M.Reset()
	e.resetSessionState()
	e.M.Args = args
	return e.Go(cancel)
}

// Go runs unbounded until a breakpoint, watchpoint, bug, exit, or cancel.
func (e *Engine) Go(cancel CancelFlag) StopReason {
	return e.run(0, cancel)
}

// Step executes exactly one machine instruction.
func (e *Engine) Step() StopReason {
	return e.run(1, nil)
}

// Next executes one machine instruction, stepping over a JSR rather than
// into it (spec scenario S2): if the instruction at PC is JSR, it runs
// unbounded with a step-over target set at the return address; otherwise it
// behaves like Step.
func (e *Engine) Next(cancel CancelFlag) StopReason {
	if e.M.CurrentOpcode() == opJSR {
		e.nextBP = e.M.PC + 3
		e.hasNextBP = true
		return e.run(0, cancel)
	}
	return e.run(1, nil)
}

// StepStatement steps until PC lands on any new source line (spec §4.6
// Source step / Step mode).
func (e *Engine) StepStatement(cancel CancelFlag) StopReason {
	e.stepMode = StepStep
	defer func() { e.stepMode = StepNone }()
	return e.run(0, cancel)
}

// NextStatement steps until PC lands on a source line in the current file,
// stepping over calls into other files/modules (spec §4.6 Source step /
// Next mode).
func (e *Engine) NextStatement(cancel CancelFlag) StopReason {
	e.stepMode = StepNext
	defer func() { e.stepMode = StepNone }()
	return e.run(0, cancel)
}

// Finish runs until the innermost Jsr frame returns.
func (e *Engine) Finish(cancel CancelFlag) StopReason {
	if !e.markFinish() {
		return StopReason{Kind: StopFinish}
	}
	return e.run(0, cancel)
}

// SetBreak installs a breakpoint at addr. temp breakpoints self-delete the
// first time they're hit.
func (e *Engine) SetBreak(addr uint16, symbol string, temp bool) *Breakpoint {
	e.nextBpID++
	bp := &Breakpoint{ID: e.nextBpID, Addr: addr, Symbol: symbol, Temp: temp}
	e.breakpoints[addr] = bp
	return bp
}

// DeleteBreakpoint removes the breakpoint at addr, if one exists.
func (e *Engine) DeleteBreakpoint(addr uint16) bool {
	if _, ok := e.breakpoints[addr]; !ok {
		return false
	}
	delete(e.breakpoints, addr)
	return true
}

// DeleteAllBreakpoints clears every breakpoint.
func (e *Engine) DeleteAllBreakpoints() {
	e.breakpoints = make(map[uint16]*Breakpoint)
}

// Breakpoints returns every installed breakpoint.
func (e *Engine) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, 0, len(e.breakpoints))
	for _, bp := range e.breakpoints {
		out = append(out, *bp)
	}
	return out
}

// SetWatch installs a watchpoint at addr.
func (e *Engine) SetWatch(addr uint16, symbol string, kind WatchKind) *Watchpoint {
	e.nextWpID++
	wp := &Watchpoint{ID: e.nextWpID, Addr: addr, Symbol: symbol, Kind: kind}
	e.watchpoints[addr] = wp
	return wp
}

// DeleteWatchpoint removes the watchpoint at addr, if one exists.
func (e *Engine) DeleteWatchpoint(addr uint16) bool {
	if _, ok := e.watchpoints[addr]; !ok {
		return false
	}
	delete(e.watchpoints, addr)
	return true
}

// DeleteAllWatchpoints clears every watchpoint.
func (e *Engine) DeleteAllWatchpoints() {
	e.watchpoints = make(map[uint16]*Watchpoint)
}

// Watchpoints returns every installed watchpoint.
func (e *Engine) Watchpoints() []Watchpoint {
	out := make([]Watchpoint, 0, len(e.watchpoints))
	for _, wp := range e.watchpoints {
		out = append(out, *wp)
	}
	return out
}

// ReadByte/WriteByte/ReadWord/WriteWord expose raw (unchecked) memory access
// for the shell's register/memory inspection commands.
func (e *Engine) ReadByte(addr uint16) byte          { return e.M.PeekByte(addr) }
func (e *Engine) WriteByte(addr uint16, v byte)      { e.M.PokeByte(addr, v) }
func (e *Engine) ReadWord(addr uint16) uint16        { return e.M.PeekWord(addr) }
func (e *Engine) WriteWord(addr uint16, v uint16)    { e.M.PokeWord(addr, v) }

// Registers is a snapshot of the register block for display/scripting.
type Registers struct {
	A, X, Y, Z byte
	SR         byte
	SP         byte
	PC         uint16
}

// ReadRegisters returns the current register block.
func (e *Engine) ReadRegisters() Registers {
	return Registers{A: e.M.A, X: e.M.X, Y: e.M.Y, Z: e.M.Z, SR: e.M.SR, SP: e.M.SP, PC: e.M.PC}
}

// WriteRegisters overwrites the register block.
func (e *Engine) WriteRegisters(r Registers) {
	e.M.A, e.M.X, e.M.Y, e.M.Z = r.A, r.X, r.Y, r.Z
	e.M.SR, e.M.SP, e.M.PC = r.SR, r.SP, r.PC
}

// AC, XR, YR, SP, and PC satisfy expr.Registers directly against live
// machine state (not a point-in-time snapshot), so an evaluate() call always
// sees the current registers even mid-session.
func (e *Engine) AC() uint16 { return uint16(e.M.A) }
func (e *Engine) XR() uint16 { return uint16(e.M.X) }
func (e *Engine) YR() uint16 { return uint16(e.M.Y) }
func (e *Engine) SP() uint16 { return uint16(e.M.SP) }
func (e *Engine) PC() uint16 { return e.M.PC }
