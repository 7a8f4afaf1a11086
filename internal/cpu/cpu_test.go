package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(zap.NewNop().Sugar())
	// grant full read/write/execute over all of RAM so instruction-level
	// semantics can be exercised without tripping shadow checks in tests
	// that aren't specifically about memcheck behavior.
	for i := range m.shadow {
		m.shadow[i] = ShadowRead | ShadowWrite | ShadowExecute | ShadowWritten
	}
	return m
}

func TestResetLoadsVectorAndClearsRegs(t *testing.T) {
	m := newTestMachine(t)
	m.PokeWord(resetVectAddr, 0x0200)
	m.A, m.X, m.Y = 1, 2, 3

	m.Reset()

	assert.EqualValues(t, 0x0200, m.PC)
	assert.EqualValues(t, 0, m.A)
	assert.EqualValues(t, 0, m.X)
	assert.EqualValues(t, 0, m.Y)
	assert.EqualValues(t, 0xFD, m.SP)
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	m := newTestMachine(t)
	m.PC = 0x0200
	m.PokeByte(0x0200, 0xA9) // LDA #$00
	m.PokeByte(0x0201, 0x00)

	m.ExecuteInsn()

	assert.EqualValues(t, 0, m.A)
	assert.NotZero(t, m.getFlag(FlagZ))
	assert.Zero(t, m.getFlag(FlagN))
}

func TestStaWritesMemoryAndSetsWritten(t *testing.T) {
	m := newTestMachine(t)
	m.PC = 0x0200
	m.A = 0x42
	m.PokeByte(0x0200, 0x85) // STA $C0
	m.PokeByte(0x0201, 0xC0)
	m.shadow[0x00C0] = 0 // revoke so we can observe the WRITTEN seed

	m.ExecuteInsn()

	require.EqualValues(t, 0x42, m.PeekByte(0x00C0))
	assert.NotZero(t, m.shadow[0x00C0]&ShadowWritten)
}

func TestReadBeforeWriteSetsMemCheck(t *testing.T) {
	m := newTestMachine(t)
	for i := range m.shadow {
		m.shadow[i] = ShadowExecute // no READ/WRITE/WRITTEN anywhere
	}
	m.PC = 0x0200
	m.PokeByte(0x0200, 0xAD) // LDA $4000
	m.PokeByte(0x0201, 0x00)
	m.PokeByte(0x0202, 0x40)
	m.shadow[0x0200] |= ShadowExecute
	m.shadow[0x0201] |= ShadowExecute
	m.shadow[0x0202] |= ShadowExecute

	m.ExecuteInsn()

	assert.Equal(t, MemCheckReadBeforeWrite, m.MemCheck.Kind)
	assert.EqualValues(t, 0x4000, m.MemCheck.Addr)
}

func TestWriteWithoutPermissionSetsMemCheck(t *testing.T) {
	m := newTestMachine(t)
	m.shadow[0x00C0] = 0 // no WRITE permission
	m.PC = 0x0200
	m.PokeByte(0x0200, 0x85) // STA $C0
	m.PokeByte(0x0201, 0xC0)

	m.ExecuteInsn()

	assert.Equal(t, MemCheckWriteForbidden, m.MemCheck.Kind)
	assert.EqualValues(t, 0x00C0, m.MemCheck.Addr)
}

func TestJsrRtsRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	m.PC = 0x0300
	m.PokeByte(0x0300, 0x20) // JSR $0400
	m.PokeByte(0x0301, 0x00)
	m.PokeByte(0x0302, 0x04)
	m.PokeByte(0x0400, 0x60) // RTS

	m.ExecuteInsn() // JSR
	assert.EqualValues(t, 0x0400, m.PC)

	m.ExecuteInsn() // RTS
	assert.EqualValues(t, 0x0303, m.PC)
}

func TestParavirtExitTrapPopsReturnAddress(t *testing.T) {
	m := newTestMachine(t)
	var exitCode byte
	m.SetHook(SyscallExit, func(mm *Machine, _ int) {
		exitCode = mm.A
		mm.SetExit(mm.A)
	})

	// Simulate a JSR to the exit trap: push a return address, then land PC
	// inside the trap window as the pre-decode stack tracking would leave it.
	m.SP = 0xFD
	m.stackPush(0x00)
	m.stackPush(0x00)
	m.PC = ParavirtBase + SyscallExit
	m.A = 7

	m.ExecuteInsn()

	assert.True(t, m.Paracall)
	assert.True(t, m.Exit)
	assert.EqualValues(t, 7, exitCode)
	assert.EqualValues(t, 0x0000, m.PC)
}
