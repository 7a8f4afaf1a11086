// Package engine implements the debug engine: the execution loop that
// drives the CPU core instruction by instruction, tracks a synthetic call
// stack, enforces stack/memory/heap invariants, and honours breakpoints,
// watchpoints, and source-step modes.
package engine

import (
	"github.com/pm100/db65-sub000/internal/dbginfo"
)

// StopKind is the tag of a StopReason.
type StopKind int

const (
	StopBreakPoint StopKind = iota
	StopWatchPoint
	StopExit
	StopCount
	StopNext
	StopFinish
	StopBug
)

// BugKind distinguishes the Bug(...) stop variants.
type BugKind int

const (
	BugNone BugKind = iota
	BugSpMismatch
	BugReadBeforeWrite
	BugWriteForbidden
	BugHeapCheck
)

// StopReason is the result of running any amount of execution.
type StopReason struct {
	Kind StopKind
	Addr uint16 // valid for BreakPoint, WatchPoint, and addressed bugs
	Code byte   // valid for Exit
	Bug  BugKind
}

func (s StopReason) String() string {
	switch s.Kind {
	case StopBreakPoint:
		return "breakpoint"
	case StopWatchPoint:
		return "watchpoint"
	case StopExit:
		return "exit"
	case StopCount:
		return "count"
	case StopNext:
		return "next"
	case StopFinish:
		return "finish"
	case StopBug:
		return "bug"
	default:
		return "unknown"
	}
}

// WatchKind is the trigger condition of a Watchpoint.
type WatchKind int

const (
	WatchRead WatchKind = iota
	WatchWrite
	WatchReadWrite
)

// Breakpoint stops execution when PC reaches Addr.
type Breakpoint struct {
	ID     int
	Addr   uint16
	Symbol string
	Temp   bool
}

// Watchpoint stops execution on a matching memory access at Addr.
type Watchpoint struct {
	ID     int
	Addr   uint16
	Symbol string
	Kind   WatchKind
}

// FrameKind is the discriminant of a synthetic stack Frame.
type FrameKind int

const (
	FrameJsr FrameKind = iota
	FramePha
	FramePhp
)

// Frame is one entry of the synthetic call stack, modelling what the
// hardware stack holds without walking live stack memory.
type Frame struct {
	Kind FrameKind

	// Jsr fields
	Dest        uint16
	Return      uint16
	SP          byte
	SP65        uint16
	StopOnPop   bool
	HasIntercept bool

	// Pha/Php fields
	Value byte
}

// SourceStepMode is the engine's current source-level stepping mode.
type SourceStepMode int

const (
	StepNone SourceStepMode = iota
	StepNext
	StepStep
)

// HeapBlock is one tracked allocation.
type HeapBlock struct {
	Addr        uint16
	Size        uint16
	AllocSitePC uint16
	ReallocSize uint16
	HasRealloc  bool
}

// CodeLocation is the resolution chain result of where_are_we: an address
// described in terms of the debug-info entities that own it.
type CodeLocation struct {
	Addr      uint16
	HasSeg    bool
	Seg       int
	HasModule bool
	Module    string
	HasScope  bool
	Scope     int
	HasAsm    bool
	AsmLine   dbginfo.SourceInfo
	HasC      bool
	CLine     dbginfo.SourceInfo
}

// InterceptFn is called on entry (entering=true) and return (entering=false)
// of a registered symbol. A non-nil return forces a stop once the triggering
// instruction finishes executing.
type InterceptFn func(e *Engine, entering bool) *StopReason
