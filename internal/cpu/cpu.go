// Package cpu implements an instruction-accurate MOS 6502 / 65C02 interpreter
// for programs produced by the cc65 toolchain.
//
// A Machine is the singleton emulated computer: 64 KiB of RAM, a parallel
// shadow-tag plane used by the debug engine to detect read-before-write and
// permission violations, and the register block a cc65 binary expects,
// including the sim65-only Z register. The interpreter never reaches for
// package-level state; every entry point takes *Machine explicitly, per the
// "typed container" design preferred in the surrounding documentation over a
// package-global singleton.
package cpu

import "go.uber.org/zap"

const (
	stackBase     uint16 = 0x0100
	resetVectAddr uint16 = 0xFFFC
	irqVectAddr   uint16 = 0xFFFE
)

// ResetVectorAddr is the 6502 reset vector address, exported so the debug
// engine can point it at a loaded image's entry address.
const ResetVectorAddr = resetVectAddr

// StatusFlag is a bit in the 6502 processor status register.
type StatusFlag byte

const (
	FlagC StatusFlag = 1 << iota // Carry
	FlagZ                        // Zero
	FlagI                        // Interrupt disable
	FlagD                        // Decimal mode
	FlagB                        // Break command
	FlagX                        // Unused, always 1
	FlagV                        // Overflow
	FlagN                        // Negative
)

// ShadowFlag is a bit in the per-byte shadow-tag plane.
type ShadowFlag byte

const (
	ShadowWritten ShadowFlag = 1 << iota
	ShadowExecute
	ShadowWrite
	ShadowRead
	ShadowTainted
)

// MemCheckKind distinguishes the two memory-permission bugs the core can raise.
type MemCheckKind int

const (
	MemCheckNone MemCheckKind = iota
	MemCheckReadBeforeWrite
	MemCheckWriteForbidden
)

// MemCheck is the outcome of the shadow-plane checks run for the instruction
// currently executing. The first failing address wins; it is reset once per
// instruction by the caller (the debug engine), not by the core itself.
type MemCheck struct {
	Kind MemCheckKind
	Addr uint16
}

// MemHit records one load or store made by the instruction in flight, used by
// the debug engine to drive watchpoints.
type MemHit struct {
	Write bool
	Addr  uint16
}

const maxMemHits = 6

// Variant selects between the two `cpu` byte values a cc65 binary header can carry.
type Variant byte

const (
	Variant6502 Variant = 0
	Variant65C02 Variant = 1
)

// Machine is the emulated computer: RAM, shadow tags, registers, and the
// per-instruction scratch state the debug engine inspects after each step.
type Machine struct {
	A, X, Y, Z byte
	SR         byte
	SP         byte
	PC         uint16

	ram    [65536]byte
	shadow [65536]ShadowFlag

	variant Variant

	// internal per-decode scratch, mirrors the teacher's addressing-mode convention
	addrAbs       uint16
	addrRel       uint16
	fetched       byte
	opcode        byte
	isImpliedAddr bool
	cycles        byte
	cycleCount    uint32

	instLookup [256]instruction

	// side channels read by the debug engine after ExecuteInsn
	MemHits     [maxMemHits]MemHit
	MemHitCount int
	MemCheck    MemCheck
	Paracall    bool
	Exit        bool
	ExitCode    byte

	// Args holds the command line argv strings a paravirt `args` syscall serves.
	Args []string

	hooks [NumSyscalls]ParavirtHook

	log *zap.SugaredLogger
}

type instruction struct {
	Name     string
	Exec     func(*Machine) byte
	AddrMode func(*Machine) byte
	Cycles   byte
}

// New constructs a fresh Machine with RAM and shadow tags zeroed. RAM and
// shadow survive Reset; only a fresh New clears them (the loader overwrites
// just the image bytes).
func New(log *zap.SugaredLogger) *Machine {
	m := &Machine{log: log}
	m.variant = Variant6502
	m.buildLookup()
	return m
}

// SetVariant selects 6502 vs 65C02 instruction decoding, driven by the binary
// header's `cpu` byte (loader.Header.CPU).
func (m *Machine) SetVariant(v Variant) {
	m.variant = v
	m.buildLookup()
}

// Reset clears per-instruction scratch and loads PC from the reset vector.
// It does not touch RAM or the shadow plane; the loader owns those.
func (m *Machine) Reset() {
	m.A, m.X, m.Y, m.Z = 0, 0, 0, 0
	m.SR = byte(FlagX) | byte(FlagI)
	m.SP = 0xFD
	m.PC = m.readWordRaw(resetVectAddr)
	m.resetScratch()
}

func (m *Machine) resetScratch() {
	m.MemHitCount = 0
	m.MemCheck = MemCheck{Kind: MemCheckNone}
	m.Paracall = false
}

// Shadow returns a reference to the 64 KiB shadow-tag array so the debug
// engine can seed permissions from segment types (spec §4.8).
func (m *Machine) Shadow() *[65536]ShadowFlag { return &m.shadow }

func (m *Machine) getFlag(f StatusFlag) byte {
	if m.SR&byte(f) != 0 {
		return 1
	}
	return 0
}

func (m *Machine) setFlag(f StatusFlag, set bool) {
	if set {
		m.SR |= byte(f)
	} else {
		m.SR &^= byte(f)
	}
}

func (m *Machine) recordHit(h MemHit) {
	if m.MemHitCount < maxMemHits {
		m.MemHits[m.MemHitCount] = h
		m.MemHitCount++
	}
}

// Read performs an instruction-level byte load: it is subject to the shadow
// read-before-write check and is recorded as a memhit.
func (m *Machine) Read(addr uint16) byte {
	if m.shadow[addr]&ShadowWritten == 0 && m.MemCheck.Kind == MemCheckNone {
		m.MemCheck = MemCheck{Kind: MemCheckReadBeforeWrite, Addr: addr}
	}
	m.recordHit(MemHit{Write: false, Addr: addr})
	return m.ram[addr]
}

// Write performs an instruction-level byte store: it is subject to the
// shadow write-permission check, sets WRITTEN, and is recorded as a memhit.
func (m *Machine) Write(addr uint16, v byte) {
	if m.shadow[addr]&ShadowWrite == 0 && m.MemCheck.Kind == MemCheckNone {
		m.MemCheck = MemCheck{Kind: MemCheckWriteForbidden, Addr: addr}
	}
	m.ram[addr] = v
	m.shadow[addr] |= ShadowWritten
	m.recordHit(MemHit{Write: true, Addr: addr})
}

// PeekByte reads a byte with no shadow checks and no memhit recording, for
// engine-side introspection (disassembly, register dumps, expression @()).
func (m *Machine) PeekByte(addr uint16) byte { return m.ram[addr] }

// PokeByte writes a byte bypassing permission checks but still marking it
// WRITTEN, for engine-side seeding (RAM image load, argv push, register pokes).
func (m *Machine) PokeByte(addr uint16, v byte) {
	m.ram[addr] = v
	m.shadow[addr] |= ShadowWritten
}

// ReadCString reads a NUL-terminated byte string starting at addr, for host
// syscalls (e.g. paravirt `open`'s filename argument) that receive a pointer
// into the emulated address space rather than the bytes themselves.
func (m *Machine) ReadCString(addr uint16) string {
	start := addr
	for m.ram[addr] != 0 {
		addr++
		if addr == start {
			break // wrapped the whole address space with no terminator
		}
	}
	return string(m.ram[start:addr])
}

func (m *Machine) readWordRaw(addr uint16) uint16 {
	lo := m.PeekByte(addr)
	hi := m.PeekByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// PeekWord reads a little-endian word with no shadow checks.
func (m *Machine) PeekWord(addr uint16) uint16 { return m.readWordRaw(addr) }

// PokeWord writes a little-endian word bypassing permission checks.
func (m *Machine) PokeWord(addr uint16, v uint16) {
	m.PokeByte(addr, byte(v))
	m.PokeByte(addr+1, byte(v>>8))
}

func (m *Machine) readWord(addr uint16) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (m *Machine) stackPush(v byte) {
	m.Write(stackBase|uint16(m.SP), v)
	m.SP--
}

func (m *Machine) stackPop() byte {
	m.SP++
	return m.Read(stackBase | uint16(m.SP))
}

// HardwareStackPeek reads a byte from the hardware stack without moving SP,
// used by the debug engine's synthetic-frame bookkeeping.
func (m *Machine) HardwareStackPeek(offsetFromTop byte) byte {
	return m.PeekByte(stackBase | uint16(m.SP+1+offsetFromTop))
}

// CurrentOpcode returns the byte at PC without decoding it, letting the debug
// engine pre-decode stack-tracking opcodes (JSR/RTS/PHA/...) before execution.
func (m *Machine) CurrentOpcode() byte { return m.PeekByte(m.PC) }

// ExecuteInsn executes exactly one instruction (or, if PC is inside the
// paravirt trap window, one host syscall dispatch) and returns the number of
// clock ticks it consumed. Per-instruction scratch (MemHits/MemCheck/Paracall)
// is populated here and is the caller's responsibility to reset between steps.
func (m *Machine) ExecuteInsn() uint32 {
	if ok, idx := m.inTrapWindow(m.PC); ok {
		m.dispatchParavirt(idx)
		return 2
	}

	opcode := m.Read(m.PC)
	inst := m.instLookup[opcode]
	m.opcode = opcode
	m.PC++

	extra1 := inst.AddrMode(m)
	extra2 := inst.Exec(m)

	ticks := uint32(inst.Cycles) + uint32(extra1&extra2)
	m.cycleCount += ticks
	m.isImpliedAddr = false
	return ticks
}
