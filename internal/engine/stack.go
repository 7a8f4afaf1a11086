package engine

const (
	opJSR = 0x20
	opRTS = 0x60
	opPHA = 0x48
	opPHP = 0x08
	opPLA = 0x68
	opPLP = 0x28
	opRTI = 0x40
)

// preDecode inspects the opcode about to execute and maintains the synthetic
// call stack (spec §4.6 step 1). It returns a pending bug (set only by a
// stack-check failure on RTS) and a deferred stop staged by an intercept
// (on entry or return) or by a finish frame, both to be surfaced by the post-execute checks once the
// triggering instruction has actually run.
func (e *Engine) preDecode() (pendingBug BugKind, deferredEnter *StopReason) {
	op := e.M.CurrentOpcode()
	switch op {
	case opJSR:
		dest := e.M.PeekWord(e.M.PC + 1)
		frame := Frame{
			Kind:   FrameJsr,
			Dest:   dest,
			Return: e.M.PC + 3,
			SP:     e.M.SP,
			SP65:   e.currentSP65(),
		}
		if fn, ok := e.intercepts[dest]; ok {
			frame.HasIntercept = true
			if stop := fn(e, true); stop != nil {
				deferredEnter = stop
			}
		}
		e.stack = append(e.stack, frame)

	case opRTS:
		frame, ok := e.popFrame()
		if ok && frame.Kind == FrameJsr {
			if e.stackCheck && e.M.SP+2 != frame.SP {
				pendingBug = BugSpMismatch
			}
			if frame.HasIntercept {
				if fn, ok := e.intercepts[frame.Dest]; ok {
					if stop := fn(e, false); stop != nil {
						deferredEnter = stop
					}
				}
			}
			if frame.StopOnPop {
				deferredEnter = &StopReason{Kind: StopFinish}
			}
		}

	case opPHA:
		e.stack = append(e.stack, Frame{Kind: FramePha, Value: e.M.A})

	case opPHP:
		e.stack = append(e.stack, Frame{Kind: FramePhp, Value: e.M.SR})

	case opPLA, opPLP, opRTI:
		// Popped without the RTS stack-check, per the resolved open question
		// in spec §9: PLA/PLP/RTI never validate SpMismatch against a
		// popped Jsr frame, regardless of enable_stack_check.
		e.popFrame()
	}
	return pendingBug, deferredEnter
}

func (e *Engine) popFrame() (Frame, bool) {
	if len(e.stack) == 0 {
		return Frame{}, false
	}
	last := len(e.stack) - 1
	f := e.stack[last]
	e.stack = e.stack[:last]
	return f, true
}

// currentSP65 reads the cc65 software stack pointer word through the
// zero-page sp65 address recorded at load_code time.
func (e *Engine) currentSP65() uint16 {
	if e.sp65Addr == 0 {
		return 0
	}
	return e.M.PeekWord(uint16(e.sp65Addr))
}

// markFinish stages the top Jsr frame to stop once its matching RTS pops it
// (the shell's `finish` operation).
func (e *Engine) markFinish() bool {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].Kind == FrameJsr {
			e.stack[i].StopOnPop = true
			return true
		}
	}
	return false
}

// ReadStack returns the synthetic call stack, innermost frame last, for the
// shell's `read_stack` operation.
func (e *Engine) ReadStack() []Frame {
	out := make([]Frame, len(e.stack))
	copy(out, e.stack)
	return out
}
