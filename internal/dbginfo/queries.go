package dbginfo

import (
	"sort"
	"strings"
)

// GetSymbols returns every definition symbol whose name contains filter
// (case-sensitive substring match); an empty filter returns all of them.
// Results are sorted by name for stable shell output.
func (s *Store) GetSymbols(filter string) []Symbol {
	var out []Symbol
	for _, sym := range s.SymDefs {
		if filter == "" || strings.Contains(sym.Name, filter) {
			out = append(out, *sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetSymbol resolves a bare or "module.name" symbol reference to every
// matching definition (cc65 allows the same name in several modules once
// scoped, e.g. a static C function called "init" in two .c files).
func (s *Store) GetSymbol(name string) []SymbolRef {
	mod := ""
	bare := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		mod, bare = name[:i], name[i+1:]
	}

	var out []SymbolRef
	for _, id := range s.symsByName[bare] {
		sym := s.SymDefs[id]
		modName := s.moduleNameForSymbol(sym)
		if mod != "" && modName != mod {
			continue
		}
		out = append(out, SymbolRef{Name: sym.Name, Value: s.symbolAddr(sym), Module: modName})
	}
	return out
}

func (s *Store) moduleNameForSymbol(sym *Symbol) string {
	if sc, ok := s.Scopes[sym.Scope]; ok {
		if m, ok := s.Modules[sc.Module]; ok {
			return m.Name
		}
	}
	return ""
}

func (s *Store) symbolAddr(sym *Symbol) uint16 {
	if sym.HasSeg {
		if seg, ok := s.Segments[sym.Seg]; ok {
			return seg.Start + sym.Val
		}
	}
	return sym.Val
}

// FindSymbolByAddr returns every definition symbol that has a segment and
// whose absolute address equals addr, labels sorted before equates (labels
// are what a disassembly view wants to show first).
func (s *Store) FindSymbolByAddr(addr uint16) []Symbol {
	var out []Symbol
	for _, sym := range s.SymDefs {
		if sym.HasSeg && s.symbolAddr(sym) == addr {
			out = append(out, *sym)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == SymLabel
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FindAssemblyLine resolves addr to the assembly source line that generated
// the byte at that address: the entry with the greatest Addr <= addr.
func (s *Store) FindAssemblyLine(addr uint16) (SourceInfo, bool) {
	return nearestBelow(s.asmIndex, addr)
}

// FindCLine resolves addr to the C source line that generated it, by the
// same nearest-below rule as FindAssemblyLine.
func (s *Store) FindCLine(addr uint16) (SourceInfo, bool) {
	return nearestBelow(s.cIndex, addr)
}

// FindSourceLine resolves addr to the C source line containing it (the
// nearest C-line record at or below addr); assembly lines are not consulted.
func (s *Store) FindSourceLine(addr uint16) (SourceInfo, bool) {
	return s.FindCLine(addr)
}

func nearestBelow(idx []SourceInfo, addr uint16) (SourceInfo, bool) {
	i := sort.Search(len(idx), func(i int) bool { return idx[i].Addr > addr })
	if i == 0 {
		return SourceInfo{}, false
	}
	return idx[i-1], true
}

// FindSourceLineByLineNo returns the first address generated by the lowest
// line of file numbered lineNo or later that has code, used to resolve a
// `break file:line` request to an address.
func (s *Store) FindSourceLineByLineNo(file int, lineNo int) (SourceInfo, bool) {
	best := SourceInfo{}
	found := false
	for _, ln := range s.Lines {
		if ln.File != file || ln.LineNo < lineNo {
			continue
		}
		for _, spID := range ln.Spans {
			sp, ok := s.Spans[spID]
			if !ok {
				continue
			}
			seg, ok := s.Segments[sp.Seg]
			if !ok {
				continue
			}
			si := SourceInfo{File: file, Line: ln.LineNo, Seg: sp.Seg, Offset: int(sp.Start), Addr: seg.Start + sp.Start}
			if !found || si.Line < best.Line || (si.Line == best.Line && si.Addr < best.Addr) {
				best, found = si, true
			}
		}
	}
	return best, found
}

// FindScope returns the scope owning the smallest span that covers
// (seg, offset), if any.
func (s *Store) FindScope(seg int, offset uint16) (int, bool) {
	best, bestSize, found := 0, 0, false
	for spID, scID := range s.spanOwnerScope {
		sp, ok := s.Spans[spID]
		if !ok || sp.Seg != seg {
			continue
		}
		if offset >= sp.Start && offset < sp.Start+uint16(sp.Size) && (!found || sp.Size < bestSize) {
			best, bestSize, found = scID, sp.Size, true
		}
	}
	return best, found
}

// FindCSym resolves a C symbol by name, preferring one declared within scope
// (or one of its ancestor scopes) over a namesake elsewhere, matching normal
// lexical-scoping shadowing rules.
func (s *Store) FindCSym(name string, scope int) (CSymbol, bool) {
	var best *CSymbol
	for cur := scope; cur >= 0; {
		sc, ok := s.Scopes[cur]
		if !ok {
			break
		}
		for _, cs := range s.CSyms {
			if cs.Name == name && cs.Scope == cur {
				best = cs
				break
			}
		}
		if best != nil {
			break
		}
		cur = sc.Parent
	}
	if best == nil {
		for _, cs := range s.CSyms {
			if cs.Name == name {
				best = cs
				break
			}
		}
	}
	if best == nil {
		return CSymbol{}, false
	}
	return *best, true
}

// LoadSegList returns every segment in id order, each with its
// module Chunk breakdown, for the shell's `load_seg_list`/memory-map display.
func (s *Store) LoadSegList() []Segment {
	out := make([]Segment, 0, len(s.SegOrder))
	for _, id := range s.SegOrder {
		out = append(out, *s.Segments[id])
	}
	return out
}

// FileName returns the source file name for a file id, or "" if unknown.
func (s *Store) FileName(id int) string {
	if f, ok := s.Files[id]; ok {
		return f.Name
	}
	return ""
}
