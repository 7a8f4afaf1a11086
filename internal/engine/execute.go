package engine

import "github.com/pm100/db65-sub000/internal/cpu"

// CancelFlag is polled between instructions so a ctrl-C can stop a run
// without interrupting one in flight (spec §5 suspension points).
type CancelFlag interface {
	Load() bool
}

// Cancel, when set, is seen at the top of the loop before the next
// instruction executes, and yields a BreakPoint-equivalent stop at the
// current PC. Nil means no cancellation
// source is wired (e.g. non-interactive use).
var _ CancelFlag // documents the expected shape; callers pass their own atomic.Bool

// run is the execution loop shared by every shell operation that advances
// the machine: Go, Step, Next, NextStatement, StepStatement, Finish. count=0
// means unbounded. cancel may be nil.
func (e *Engine) run(count int, cancel CancelFlag) StopReason {
	for {
		if cancel != nil && cancel.Load() {
			return StopReason{Kind: StopBreakPoint, Addr: e.M.PC}
		}

		pendingBug, deferredEnter := e.preDecode()

		e.M.ExecuteInsn()

		if reason, stop := e.postExecute(count, pendingBug, deferredEnter); stop {
			e.finishStep(true)
			return reason
		}
		if count > 0 {
			count--
		}
		e.finishStep(false)
	}
}

// postExecute implements spec §4.6 step 3, in the documented order:
// exit, paracall pop, memcheck bug, count, deferred finish/intercept stop,
// step-over, watchpoints, breakpoints, source step.
func (e *Engine) postExecute(count int, pendingBug BugKind, deferredEnter *StopReason) (StopReason, bool) {
	if e.M.Exit {
		return StopReason{Kind: StopExit, Code: e.M.ExitCode}, true
	}

	if e.M.Paracall {
		e.popFrame()
	}

	if e.memCheck && !e.privileged {
		switch e.M.MemCheck.Kind {
		case cpu.MemCheckReadBeforeWrite:
			return StopReason{Kind: StopBug, Bug: BugReadBeforeWrite, Addr: e.M.MemCheck.Addr}, true
		case cpu.MemCheckWriteForbidden:
			return StopReason{Kind: StopBug, Bug: BugWriteForbidden, Addr: e.M.MemCheck.Addr}, true
		}
	}
	if pendingBug == BugSpMismatch {
		return StopReason{Kind: StopBug, Bug: BugSpMismatch}, true
	}

	if count == 1 {
		return StopReason{Kind: StopCount}, true
	}

	if deferredEnter != nil {
		return *deferredEnter, true
	}

	if e.hasNextBP && e.nextBP == e.M.PC {
		e.hasNextBP = false
		return StopReason{Kind: StopNext}, true
	}

	for i := 0; i < e.M.MemHitCount; i++ {
		hit := e.M.MemHits[i]
		if wp, ok := e.watchpoints[hit.Addr]; ok {
			if watchMatches(wp.Kind, hit.Write) {
				return StopReason{Kind: StopWatchPoint, Addr: hit.Addr}, true
			}
		}
	}

	if bp, ok := e.breakpoints[e.M.PC]; ok {
		if bp.Temp {
			delete(e.breakpoints, e.M.PC)
		}
		return StopReason{Kind: StopBreakPoint, Addr: e.M.PC}, true
	}

	if si, ok := e.sourceMap[e.M.PC]; ok {
		switch e.stepMode {
		case StepNext:
			if si.File == e.currentFile {
				return StopReason{Kind: StopNext}, true
			}
		case StepStep:
			return StopReason{Kind: StopNext}, true
		}
	}

	return StopReason{}, false
}

func watchMatches(kind WatchKind, isWrite bool) bool {
	switch kind {
	case WatchWrite:
		return isWrite
	case WatchRead:
		return !isWrite
	case WatchReadWrite:
		return true
	}
	return false
}

// finishStep resets per-instruction scratch and, on a stop with a source
// line at PC, updates current_file (spec §4.6 step 4).
func (e *Engine) finishStep(stopped bool) {
	e.M.MemHitCount = 0
	e.M.MemCheck = cpu.MemCheck{Kind: cpu.MemCheckNone}
	e.M.Paracall = false
	if !stopped {
		return
	}
	if si, ok := e.sourceMap[e.M.PC]; ok {
		e.currentFile = si.File
	}
}
