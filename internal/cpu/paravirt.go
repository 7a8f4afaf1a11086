package cpu

// NumSyscalls is the number of paravirtualized syscall trap slots.
const NumSyscalls = 6

// Syscall identifiers for the paravirt trap table, in trap-slot order.
const (
	SyscallOpen = iota
	SyscallClose
	SyscallRead
	SyscallWrite
	SyscallArgs
	SyscallExit
)

// ParavirtBase is the first trapped address; syscall i traps at ParavirtBase+i.
const ParavirtBase uint16 = 0xFFF4

// ParavirtHook is a host-side syscall implementation. It receives the machine
// so it can pop arguments off the cc65 software stack and set the return
// value in (A, X); it returns nothing because paravirt calls cannot fail in a
// way that stops execution (a failing syscall is reported through its own
// return-value convention, e.g. -1 in A/X).
type ParavirtHook func(m *Machine, syscall int)

// SetHook registers the host implementation for one paravirt syscall slot.
func (m *Machine) SetHook(syscall int, h ParavirtHook) {
	m.hooks[syscall] = h
}

func (m *Machine) inTrapWindow(pc uint16) (bool, int) {
	if pc < ParavirtBase || pc >= ParavirtBase+NumSyscalls {
		return false, 0
	}
	return true, int(pc - ParavirtBase)
}

// dispatchParavirt runs the registered hook for trap slot idx, then pops the
// return address off the hardware stack into PC (simulating an `rts` the
// trapped code never actually executed) and marks Paracall so the debug
// engine can pop its own synthetic call frame.
func (m *Machine) dispatchParavirt(idx int) {
	if h := m.hooks[idx]; h != nil {
		h(m, idx)
	}
	lo := m.stackPop()
	hi := m.stackPop()
	m.PC = uint16(hi)<<8 | uint16(lo)
	m.Paracall = true
}

// SetExit marks the machine as having exited with the given code; checked by
// the debug engine's execution loop after each instruction (spec §4.6 step 3).
func (m *Machine) SetExit(code byte) {
	m.Exit = true
	m.ExitCode = code
}

// AC returns (X<<8)|A, the cc65 16-bit return-value convention used by both
// paravirt syscalls and the malloc/free intercepts.
func (m *Machine) AC() uint16 { return uint16(m.X)<<8 | uint16(m.A) }

// SetAC sets A (low) and X (high) from a 16-bit value, the cc65 return
// convention's write side.
func (m *Machine) SetAC(v uint16) {
	m.A = byte(v)
	m.X = byte(v >> 8)
}

// PopArg reads a little-endian word from the cc65 software stack at *sp65Ptr
// (a zero-page address holding the software stack pointer) and advances it by
// two, per the paravirt calling convention (spec §6).
func (m *Machine) PopArg(sp65Ptr byte) uint16 {
	sp := m.PeekWord(uint16(sp65Ptr))
	v := m.PeekWord(sp)
	m.PokeWord(uint16(sp65Ptr), sp+2)
	return v
}
