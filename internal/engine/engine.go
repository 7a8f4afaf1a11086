package engine

import (
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pm100/db65-sub000/internal/cpu"
	"github.com/pm100/db65-sub000/internal/dbginfo"
	"github.com/pm100/db65-sub000/internal/loader"
	"github.com/pm100/db65-sub000/internal/source"
)

// ErrSymbolNotFound is wrapped when a symbol lookup finds nothing.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrAmbiguousSymbol is wrapped when a symbol lookup matches more than one
// definition and the caller gave no way to disambiguate.
var ErrAmbiguousSymbol = errors.New("ambiguous symbol")

// Engine owns the emulated machine, the debug-info store, the source
// resolver, and all debug-session state (breakpoints, watchpoints, the
// synthetic call stack, heap tracking). It is constructed once per process
// and reused across load_code/run cycles; load_dbg replaces the store.
type Engine struct {
	M        *cpu.Machine
	Store    *dbginfo.Store
	Resolver *source.Resolver
	log      *zap.SugaredLogger

	sessionID uuid.UUID

	breakpoints map[uint16]*Breakpoint
	nextBpID    int
	watchpoints map[uint16]*Watchpoint
	nextWpID    int

	stack []Frame
	heap  map[uint16]*HeapBlock

	intercepts map[uint16]InterceptFn

	files  map[uint16]*os.File
	nextFD uint16

	sourceMap   map[uint16]dbginfo.SourceInfo
	currentFile int

	stepMode  SourceStepMode
	nextBP    uint16
	hasNextBP bool

	stackCheck bool
	memCheck   bool
	heapCheck  bool
	privileged bool

	cc65Dir  string
	sp65Addr byte
	runAddr  uint16
}

// New constructs an Engine with a fresh CPU core; the core is not reset
// until LoadCode or Run.
func New(log *zap.SugaredLogger) *Engine {
	e := &Engine{
		M:           cpu.New(log),
		Resolver:    source.New(log, ""),
		log:         log,
		sessionID:   uuid.New(),
		breakpoints: make(map[uint16]*Breakpoint),
		watchpoints: make(map[uint16]*Watchpoint),
		heap:        make(map[uint16]*HeapBlock),
		intercepts:  make(map[uint16]InterceptFn),
		sourceMap:   make(map[uint16]dbginfo.SourceInfo),
		files:       make(map[uint16]*os.File),
		nextFD:      firstHostFD,
		stackCheck:  true,
		memCheck:    true,
		heapCheck:   true,
	}
	e.registerParavirt()
	return e
}

// LoadCode loads a sim65 binary image, points the reset vector at its entry,
// and resets the CPU. Breakpoints and watchpoints survive; the synthetic
// stack and heap tracker do not (spec §3 lifecycle).
func (e *Engine) LoadCode(path string) (loader.Result, error) {
	res, err := loader.Load(e.M, path)
	if err != nil {
		return loader.Result{}, errors.WithMessagef(err, "load_code %q", path)
	}
	e.sp65Addr = res.Header.Sp65Addr
	e.runAddr = res.Header.RunAddr
	e.M.SetVariant(res.Header.CPU)
	e.M.PokeWord(cpu.ResetVectorAddr, res.Header.RunAddr)
	e.M.Reset()
	e.resetSessionState()
	e.log.Infow("loaded code", "session", e.sessionID, "path", path,
		"load_addr", res.Header.LoadAddr, "run_addr", res.Header.RunAddr, "bytes", res.ByteCount)
	return res, nil
}

func (e *Engine) resetSessionState() {
	e.stack = nil
	e.heap = make(map[uint16]*HeapBlock)
	for _, f := range e.files {
		f.Close()
	}
	e.files = make(map[uint16]*os.File)
	e.nextFD = firstHostFD
}

// SetCC65Dir updates the root directory the source resolver probes for
// libsrc-relative paths.
func (e *Engine) SetCC65Dir(dir string) {
	e.cc65Dir = dir
	e.Resolver.SetCC65Dir(dir)
}

// EnableStackCheck toggles the RTS/Jsr-frame stack-pointer invariant.
func (e *Engine) EnableStackCheck(v bool) { e.stackCheck = v }

// EnableMemCheck toggles read-before-write/write-forbidden bug reporting.
func (e *Engine) EnableMemCheck(v bool) { e.memCheck = v }

// EnableHeapCheck toggles malloc/free/realloc bug reporting.
func (e *Engine) EnableHeapCheck(v bool) { e.heapCheck = v }

// LoadDbg parses path as cc65 textual debug info, replaces the store,
// rebuilds the source-address map, seeds shadow permissions from the
// segment layout, registers the malloc/free/realloc intercepts, and
// attempts to resolve every C-line source file, logging one aggregate
// warning for whatever didn't resolve.
func (e *Engine) LoadDbg(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "load_dbg %q", path)
	}
	defer f.Close()

	st, err := dbginfo.Parse(f)
	if err != nil {
		return errors.Wrapf(err, "load_dbg %q", path)
	}
	e.Store = st
	e.buildSourceMap()
	e.seedShadow()
	e.registerIntercepts()
	e.resolveSourceFiles()
	e.Resolver.LogFailures()

	e.log.Infow("loaded debug info", "session", e.sessionID, "path", path,
		"symbols", len(st.SymDefs), "files", len(st.Files))
	return nil
}

func (e *Engine) buildSourceMap() {
	e.sourceMap = make(map[uint16]dbginfo.SourceInfo)
	for _, ln := range e.Store.Lines {
		for _, spID := range ln.Spans {
			sp, ok := e.Store.Spans[spID]
			if !ok {
				continue
			}
			seg, ok := e.Store.Segments[sp.Seg]
			if !ok {
				continue
			}
			addr := seg.Start + sp.Start
			e.sourceMap[addr] = dbginfo.SourceInfo{
				File: ln.File, Line: ln.LineNo, Seg: sp.Seg, Offset: int(sp.Start), Addr: addr,
			}
		}
	}
}

const (
	hwStackStart = 0x0100
	hwStackEnd   = 0x0200
	cc65StackTop = 0xFFF0
	cc65StackLen = 0x0800
)

// seedShadow grants permissions over the shadow plane from the segment
// layout (spec §4.8), skipping EXEHDR: ReadWrite/Zp get READ|WRITE, ReadOnly
// gets READ, Code gets EXECUTE|READ. The hardware stack and the cc65 runtime
// stack region get READ|WRITE regardless of what segment (if any) covers them.
func (e *Engine) seedShadow() {
	shadow := e.M.Shadow()
	for _, seg := range e.Store.LoadSegList() {
		if seg.Name == "EXEHDR" {
			continue
		}
		var bits cpu.ShadowFlag
		switch seg.Type {
		case dbginfo.SegReadWrite, dbginfo.SegZp:
			bits = cpu.ShadowRead | cpu.ShadowWrite
		case dbginfo.SegReadOnly:
			bits = cpu.ShadowRead
		case dbginfo.SegCode:
			bits = cpu.ShadowExecute | cpu.ShadowRead
		}
		end := int(seg.Start) + seg.Size
		for a := int(seg.Start); a < end && a < 0x10000; a++ {
			shadow[a] |= bits
		}
	}
	for a := hwStackStart; a < hwStackEnd; a++ {
		shadow[a] |= cpu.ShadowRead | cpu.ShadowWrite
	}
	for a := cc65StackTop - cc65StackLen; a < cc65StackTop; a++ {
		shadow[a] |= cpu.ShadowRead | cpu.ShadowWrite
	}
}

// registerIntercepts wires malloc/free/realloc entry intercepts if the
// corresponding symbols resolve (spec §4.7). cc65's runtime names these
// _malloc/_free/_realloc (the leading underscore is the C-to-asm naming
// convention); both spellings are tried since user code can link a renamed
// allocator shim.
func (e *Engine) registerIntercepts() {
	e.intercepts = make(map[uint16]InterceptFn)
	if addr, ok := e.symbolEntry("malloc", "_malloc"); ok {
		e.intercepts[addr] = mallocIntercept
	}
	if addr, ok := e.symbolEntry("free", "_free"); ok {
		e.intercepts[addr] = freeIntercept
	}
	if addr, ok := e.symbolEntry("realloc", "_realloc"); ok {
		e.intercepts[addr] = reallocIntercept
	}
}

func (e *Engine) symbolEntry(name, asmName string) (uint16, bool) {
	if refs := e.Store.GetSymbol(asmName); len(refs) >= 1 {
		return refs[0].Value, true
	}
	if refs := e.Store.GetSymbol(name); len(refs) >= 1 {
		return refs[0].Value, true
	}
	return 0, false
}

func (e *Engine) resolveSourceFiles() {
	for id, f := range e.Store.Files {
		isCFile := false
		for _, ln := range e.Store.Lines {
			if ln.File == id && ln.Type == dbginfo.LineC {
				isCFile = true
				break
			}
		}
		if isCFile {
			e.Resolver.Resolve(id, f.Name)
		}
	}
}
