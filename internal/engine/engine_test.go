package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pm100/db65-sub000/internal/cpu"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(zap.NewNop().Sugar())
	// grant full permissions over RAM so instruction execution in these
	// engine-level tests isn't tripped up by memcheck unless the test is
	// specifically exercising it.
	shadow := e.M.Shadow()
	for i := range shadow {
		shadow[i] = cpu.ShadowRead | cpu.ShadowWrite | cpu.ShadowExecute | cpu.ShadowWritten
	}
	return e
}

func TestS1SimpleBreakpoint(t *testing.T) {
	e := newTestEngine(t)
	e.M.PC = 0x0200
	e.M.PokeByte(0x0200, 0xA9) // LDA #$05
	e.M.PokeByte(0x0201, 0x05)
	e.M.PokeByte(0x0202, 0x00) // BRK

	e.SetBreak(0x0202, "", false)
	reason := e.Go(nil)

	assert.Equal(t, StopBreakPoint, reason.Kind)
	assert.EqualValues(t, 0x0202, reason.Addr)
	assert.EqualValues(t, 5, e.M.A)
}

func TestS2StepOverJsr(t *testing.T) {
	e := newTestEngine(t)
	e.M.PC = 0x0300
	e.M.PokeByte(0x0300, 0x20) // JSR $0400
	e.M.PokeByte(0x0301, 0x00)
	e.M.PokeByte(0x0302, 0x04)
	e.M.PokeByte(0x0303, 0xEA) // NOP
	// subroutine: a few instructions then RTS
	e.M.PokeByte(0x0400, 0xE8) // INX
	e.M.PokeByte(0x0401, 0xE8) // INX
	e.M.PokeByte(0x0402, 0x60) // RTS

	reason := e.Next(nil)

	assert.Equal(t, StopNext, reason.Kind)
	assert.EqualValues(t, 0x0303, e.M.PC)
	assert.EqualValues(t, 2, e.M.X)
}

func TestS3WatchOnWrite(t *testing.T) {
	e := newTestEngine(t)
	e.M.PC = 0x0200
	e.M.PokeByte(0x0200, 0xA9) // LDA #$42
	e.M.PokeByte(0x0201, 0x42)
	e.M.PokeByte(0x0202, 0x85) // STA $C0
	e.M.PokeByte(0x0203, 0xC0)

	e.SetWatch(0x00C0, "", WatchWrite)
	reason := e.Go(nil)

	assert.Equal(t, StopWatchPoint, reason.Kind)
	assert.EqualValues(t, 0x00C0, reason.Addr)
	assert.EqualValues(t, 0x0204, e.M.PC)
}

func TestS4HeapDoubleFree(t *testing.T) {
	e := newTestEngine(t)
	e.heap[0x1000] = &HeapBlock{Addr: 0x1000, Size: 16}
	e.M.A, e.M.X = 0x00, 0x10 // free(0x1000): pointer passed in X:A

	stop := freeIntercept(e, true)
	assert.Nil(t, stop)
	_, tracked := e.heap[0x1000]
	assert.False(t, tracked)

	stop = freeIntercept(e, true)
	require.NotNil(t, stop)
	assert.Equal(t, StopBug, stop.Kind)
	assert.Equal(t, BugHeapCheck, stop.Bug)
}

func TestS5ReadBeforeWrite(t *testing.T) {
	e := New(zap.NewNop().Sugar()) // no blanket permissions granted
	e.M.PC = 0x0200
	shadow := e.M.Shadow()
	shadow[0x0200] |= cpu.ShadowExecute
	shadow[0x0201] |= cpu.ShadowExecute
	shadow[0x0202] |= cpu.ShadowExecute
	e.M.PokeByte(0x0200, 0xAD) // LDA $4000
	e.M.PokeByte(0x0201, 0x00)
	e.M.PokeByte(0x0202, 0x40)

	reason := e.Go(nil)

	assert.Equal(t, StopBug, reason.Kind)
	assert.Equal(t, BugReadBeforeWrite, reason.Bug)
	assert.EqualValues(t, 0x4000, reason.Addr)
}

func TestS6ParavirtExit(t *testing.T) {
	e := newTestEngine(t)
	e.M.SP = 0xFD
	e.M.PokeByte(0x01FD, 0x00)
	e.M.PokeByte(0x01FC, 0x00)
	e.M.SP = 0xFB
	e.M.PC = cpu.ParavirtBase + cpu.SyscallExit
	e.M.A = 7

	reason := e.Go(nil)

	assert.Equal(t, StopExit, reason.Kind)
	assert.EqualValues(t, 7, reason.Code)
}

func TestFinishStopsAtReturn(t *testing.T) {
	e := newTestEngine(t)
	e.M.PC = 0x0300
	e.M.PokeByte(0x0300, 0x20) // JSR $0400
	e.M.PokeByte(0x0301, 0x00)
	e.M.PokeByte(0x0302, 0x04)
	e.M.PokeByte(0x0303, 0xEA) // NOP
	e.M.PokeByte(0x0400, 0x60) // RTS

	e.Step() // execute JSR, pushes a Jsr frame
	reason := e.Finish(nil)

	assert.Equal(t, StopFinish, reason.Kind)
	assert.EqualValues(t, 0x0303, e.M.PC)
}

func TestBreakpointLifecycle(t *testing.T) {
	e := newTestEngine(t)
	bp := e.SetBreak(0x1234, "foo", false)
	assert.Len(t, e.Breakpoints(), 1)
	assert.True(t, e.DeleteBreakpoint(bp.Addr))
	assert.Empty(t, e.Breakpoints())
	assert.False(t, e.DeleteBreakpoint(bp.Addr))
}
