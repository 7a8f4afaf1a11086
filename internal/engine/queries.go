package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pm100/db65-sub000/internal/dbginfo"
	"github.com/pm100/db65-sub000/internal/expr"
)

// LookupSymbol satisfies expr.SymbolLookup: a bare-name lookup, failing on
// ambiguity exactly like convert_addr's global-symbol fallback.
func (e *Engine) LookupSymbol(name string) (uint16, bool) {
	if e.Store == nil {
		return 0, false
	}
	refs := e.Store.GetSymbol(name)
	if len(refs) != 1 {
		return 0, false
	}
	return refs[0].Value, true
}

// Evaluate parses and evaluates an address expression (spec §4.9).
func (e *Engine) Evaluate(expression string) (uint16, error) {
	return expr.Eval(expression, e, e, e.M)
}

// SymbolLookup renders addr as "symbol" or "symbol+offset", falling back to
// a bare hex address when no label owns it (SPEC_FULL §12). Labels are
// preferred over equates, matching find_symbol_by_addr's own ordering.
func (e *Engine) SymbolLookup(addr uint16) string {
	if e.Store != nil {
		for off := uint16(0); off <= addr && off < 0x100; off++ {
			syms := e.Store.FindSymbolByAddr(addr - off)
			for _, s := range syms {
				if s.Kind == dbginfo.SymLabel {
					if off == 0 {
						return s.Name
					}
					return fmt.Sprintf("%s+%d", s.Name, off)
				}
			}
		}
	}
	return fmt.Sprintf("$%04X", addr)
}

// ZpSymbolLookup is SymbolLookup's zero-page counterpart, used for register
// and pointer displays that only ever reference the first 256 bytes.
func (e *Engine) ZpSymbolLookup(addr byte) string {
	return e.SymbolLookup(uint16(addr))
}

// WhereAreWe resolves addr through the full chain: segment -> module/chunk
// -> scope -> assembly line -> C line (SPEC_FULL §12).
func (e *Engine) WhereAreWe(addr uint16) CodeLocation {
	loc := CodeLocation{Addr: addr}
	if e.Store == nil {
		return loc
	}
	for _, seg := range e.Store.LoadSegList() {
		if addr >= seg.Start && int(addr) < int(seg.Start)+seg.Size {
			loc.HasSeg, loc.Seg = true, seg.ID
			for _, ch := range seg.Modules {
				if int(addr-seg.Start) >= ch.Offset && int(addr-seg.Start) < ch.Offset+ch.Size {
					loc.HasModule, loc.Module = true, ch.ModuleName
					break
				}
			}
			if scID, ok := e.Store.FindScope(seg.ID, addr-seg.Start); ok {
				loc.HasScope, loc.Scope = true, scID
			}
			break
		}
	}
	if si, ok := e.Store.FindAssemblyLine(addr); ok {
		loc.HasAsm, loc.AsmLine = true, si
	}
	if si, ok := e.Store.FindCLine(addr); ok {
		loc.HasC, loc.CLine = true, si
	}
	return loc
}

// ConvertAddr resolves a user-typed address string with the priority chain
// from spec §4.9: file:line -> hex literal -> decimal literal -> C-symbol
// scoped to the current PC -> global symbol (ambiguous -> error).
func (e *Engine) ConvertAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	if idx := strings.LastIndexByte(s, ':'); idx > 0 {
		file, lineStr := s[:idx], s[idx+1:]
		if lineNo, err := strconv.Atoi(lineStr); err == nil {
			return e.convertFileLine(file, lineNo)
		}
	}

	if strings.HasPrefix(s, "$") {
		v, err := strconv.ParseUint(s[1:], 16, 16)
		if err == nil {
			return uint16(v), nil
		}
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 16)
		if err == nil {
			return uint16(v), nil
		}
	}
	if len(s) > 0 && s[0] >= '0' && s[0] <= '9' {
		v, err := strconv.ParseUint(s, 10, 16)
		if err == nil {
			return uint16(v), nil
		}
	}

	if scID, ok := e.scopeAtPC(); ok {
		if addr, ok := e.resolveCSymbol(s, scID); ok {
			return addr, nil
		}
	}

	if e.Store == nil {
		return 0, fmt.Errorf("%w: %q (no debug info loaded)", ErrSymbolNotFound, s)
	}
	refs := e.Store.GetSymbol(s)
	switch len(refs) {
	case 0:
		return 0, fmt.Errorf("%w: %q", ErrSymbolNotFound, s)
	case 1:
		return refs[0].Value, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrAmbiguousSymbol, s)
	}
}

func (e *Engine) convertFileLine(file string, lineNo int) (uint16, error) {
	if e.Store == nil {
		return 0, fmt.Errorf("%w: %s:%d (no debug info loaded)", ErrSymbolNotFound, file, lineNo)
	}
	for id, f := range e.Store.Files {
		if f.Name == file || strings.HasSuffix(f.Name, "/"+file) {
			if si, ok := e.Store.FindSourceLineByLineNo(id, lineNo); ok {
				return si.Addr, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s:%d", ErrSymbolNotFound, file, lineNo)
}

func (e *Engine) scopeAtPC() (int, bool) {
	loc := e.WhereAreWe(e.M.PC)
	if !loc.HasScope {
		return 0, false
	}
	return loc.Scope, true
}

// resolveCSymbol resolves a C identifier scoped to scID, applying the
// register-bank/auto-variable pseudo-symbol resolution from SPEC_FULL §12:
// auto-storage locals are addressed relative to the nearest enclosing Jsr
// frame's sp65 value; register-storage locals are addressed relative to a
// fixed `regbank` base symbol; everything else resolves like a normal
// symbol.
func (e *Engine) resolveCSymbol(name string, scID int) (uint16, bool) {
	cs, ok := e.Store.FindCSym(name, scID)
	if !ok {
		return 0, false
	}
	switch cs.SC {
	case dbginfo.SCAuto:
		sp65 := e.nearestSP65()
		return sp65 + uint16(cs.Offset), true
	case dbginfo.SCReg:
		refs := e.Store.GetSymbol("regbank")
		if len(refs) != 1 {
			return 0, false
		}
		return refs[0].Value + uint16(cs.Offset), true
	default:
		if cs.HasSym {
			if sym, ok := e.Store.SymDefs[cs.Sym]; ok {
				if sym.HasSeg {
					if seg, ok := e.Store.Segments[sym.Seg]; ok {
						return seg.Start + sym.Val, true
					}
				}
				return sym.Val, true
			}
		}
		return 0, false
	}
}

// nearestSP65 returns the sp65 value recorded by the innermost Jsr frame on
// the synthetic stack, or the live sp65 word if the stack is empty.
func (e *Engine) nearestSP65() uint16 {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].Kind == FrameJsr {
			return e.stack[i].SP65
		}
	}
	return e.currentSP65()
}
