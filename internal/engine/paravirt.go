package engine

import (
	"os"

	"github.com/pm100/db65-sub000/internal/cpu"
)

// firstHostFD is the first synthetic file descriptor handed out by pvOpen;
// 0-2 are reserved for stdin/stdout/stderr and never appear as map keys.
const firstHostFD = 3

const (
	pvModeRead = iota
	pvModeWrite
	pvModeAppend
)

// registerParavirt wires the six cc65 paravirtualization host syscalls
// (spec §4.1/§6) to the underlying machine's trap dispatch. It is called
// once from New; the hooks close over e and read its session state (sp65
// pointer, open file table) at call time, so re-registering on every
// LoadCode would be redundant.
func (e *Engine) registerParavirt() {
	e.M.SetHook(cpu.SyscallOpen, e.pvOpen)
	e.M.SetHook(cpu.SyscallClose, e.pvClose)
	e.M.SetHook(cpu.SyscallRead, e.pvRead)
	e.M.SetHook(cpu.SyscallWrite, e.pvWrite)
	e.M.SetHook(cpu.SyscallArgs, e.pvArgs)
	e.M.SetHook(cpu.SyscallExit, e.pvExit)
}

// hostFile resolves a guest fd to a real file: 0/1/2 are stdin/stdout/stderr,
// anything else is looked up in the table pvOpen populated.
func (e *Engine) hostFile(fd uint16) *os.File {
	switch fd {
	case 0:
		return os.Stdin
	case 1:
		return os.Stdout
	case 2:
		return os.Stderr
	default:
		return e.files[fd]
	}
}

// pvOpen implements the `open` syscall: pops a filename pointer and an open
// mode off the cc65 software stack, opens the file on the host, and returns
// the new fd in AC (or 0xFFFF on failure), grounded on the open/mode pair
// _examples/original_source/src/paravirt.rs's (stubbed) pv_open declares.
func (e *Engine) pvOpen(m *cpu.Machine, _ int) {
	namePtr := m.PopArg(e.sp65Addr)
	mode := m.PopArg(e.sp65Addr)
	name := m.ReadCString(namePtr)

	var flags int
	switch mode {
	case pvModeWrite:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case pvModeAppend:
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		flags = os.O_RDONLY
	}

	f, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		m.SetAC(0xFFFF)
		return
	}

	fd := e.nextFD
	e.nextFD++
	e.files[fd] = f
	m.SetAC(fd)
}

// pvClose implements the `close` syscall: pops a fd, closes the underlying
// host file if it's one pvOpen produced, and returns 0 on success or 0xFFFF.
func (e *Engine) pvClose(m *cpu.Machine, _ int) {
	fd := m.PopArg(e.sp65Addr)
	f, ok := e.files[fd]
	if !ok {
		m.SetAC(0xFFFF)
		return
	}
	delete(e.files, fd)
	if err := f.Close(); err != nil {
		m.SetAC(0xFFFF)
		return
	}
	m.SetAC(0)
}

// pvRead implements the `read` syscall: pops fd, buffer pointer, and count,
// reads up to count bytes from the host file into guest RAM, and returns the
// byte count read in AC (or 0xFFFF on failure).
func (e *Engine) pvRead(m *cpu.Machine, _ int) {
	fd := m.PopArg(e.sp65Addr)
	addr := m.PopArg(e.sp65Addr)
	count := m.PopArg(e.sp65Addr)

	f := e.hostFile(fd)
	if f == nil {
		m.SetAC(0xFFFF)
		return
	}
	buf := make([]byte, count)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		m.SetAC(0xFFFF)
		return
	}
	for i := 0; i < n; i++ {
		m.PokeByte(addr+uint16(i), buf[i])
	}
	m.SetAC(uint16(n))
}

// pvWrite implements the `write` syscall: pops fd, buffer pointer, and
// count, and writes that many bytes from guest RAM to the host file.
// Grounded on pv_write in _examples/original_source/src/paravirt.rs, the
// one syscall in that file with a working body.
func (e *Engine) pvWrite(m *cpu.Machine, _ int) {
	fd := m.PopArg(e.sp65Addr)
	addr := m.PopArg(e.sp65Addr)
	count := m.PopArg(e.sp65Addr)

	f := e.hostFile(fd)
	if f == nil {
		m.SetAC(0xFFFF)
		return
	}
	buf := make([]byte, count)
	for i := range buf {
		buf[i] = m.PeekByte(addr + uint16(i))
	}
	n, err := f.Write(buf)
	if err != nil {
		m.SetAC(0xFFFF)
		return
	}
	m.SetAC(uint16(n))
}

// argsScratchBase is the RAM address pvArgs stores argv's pointer array and
// strings at, on every call.
// Best-effort, like the heap tracker's realloc handling: a real cc65 program
// expects the runtime startup code to have already wired these, but a debug
// session launched straight from a loaded image has no such code to run.
const argsScratchBase = 0xEE00

// pvArgs implements the `args` syscall. argv is always packed into a
// scratch RAM region and its address is returned through AC with argc in Y;
// when the loaded debug info also names __argc/__argv symbols, argc and the
// pointer-array address are written there as well.
func (e *Engine) pvArgs(m *cpu.Machine, _ int) {
	argc := uint16(len(m.Args))

	argvAddr := uint16(argsScratchBase)
	cursor := argvAddr + 2*uint16(argc+1)
	for i, s := range m.Args {
		ptrSlot := argvAddr + uint16(i)*2
		m.PokeWord(ptrSlot, cursor)
		for j := 0; j < len(s); j++ {
			m.PokeByte(cursor, s[j])
			cursor++
		}
		m.PokeByte(cursor, 0)
		cursor++
	}
	m.PokeWord(argvAddr+2*argc, 0)

	if e.Store != nil {
		if refs := e.Store.GetSymbol("__argc"); len(refs) >= 1 {
			m.PokeByte(refs[0].Value, byte(argc))
		}
		if refs := e.Store.GetSymbol("__argv"); len(refs) >= 1 {
			m.PokeWord(refs[0].Value, argvAddr)
		}
	}

	m.SetAC(argvAddr)
	m.Y = byte(argc)
}

// pvExit implements the `exit` syscall: the exit code is already in A per
// this engine's established ABI (cpu.TestParavirtExitTrapPopsReturnAddress),
// not popped off the hardware stack the way the incomplete
// _examples/original_source/src/paravirt.rs pv_exit attempts.
func (e *Engine) pvExit(m *cpu.Machine, _ int) {
	m.SetExit(m.A)
}
