package dbginfo

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Store is the in-memory index built from a parsed debug-info stream. It
// answers every query the debug engine and shell operations need: symbol
// lookup by name or address, address-to-source resolution in both
// directions, and segment/module layout for `load_seg_list`.
type Store struct {
	Files    map[int]*File
	Modules  map[int]*Module
	Segments map[int]*Segment
	SegOrder []int
	Spans    map[int]*Span
	Lines    map[int]*Line
	Scopes   map[int]*Scope
	SymDefs  map[int]*Symbol
	SymRefs  map[int]*Symbol
	CSyms    map[int]*CSymbol

	symsByName map[string][]int // into SymDefs, case-sensitive

	// asmIndex and cIndex are address-sorted projections used to answer
	// FindAssemblyLine/FindCLine/FindSourceLine by nearest-below lookup.
	asmIndex []SourceInfo
	cIndex   []SourceInfo

	spanOwnerLine  map[int]int // span id -> line id (last writer wins, matches cc65 1:1 in practice)
	spanOwnerScope map[int]int // span id -> scope id
}

func newStore() *Store {
	return &Store{
		Files:          make(map[int]*File),
		Modules:        make(map[int]*Module),
		Segments:       make(map[int]*Segment),
		Spans:          make(map[int]*Span),
		Lines:          make(map[int]*Line),
		Scopes:         make(map[int]*Scope),
		SymDefs:        make(map[int]*Symbol),
		SymRefs:        make(map[int]*Symbol),
		CSyms:          make(map[int]*CSymbol),
		symsByName:     make(map[string][]int),
		spanOwnerLine:  make(map[int]int),
		spanOwnerScope: make(map[int]int),
	}
}

// knownFields lists the fields this store understands for each recognized
// tag. A field outside this set on a recognized tag is an error (spec §4.3);
// an entirely unrecognized tag is still skipped, matching cc65's own
// forward-compatibility stance.
var knownFields = map[string]map[string]bool{
	"file":  set("id", "name", "size", "mtime"),
	"mod":   set("id", "name", "file"),
	"seg":   set("id", "name", "start", "size", "type"),
	"span":  set("id", "seg", "start", "size"),
	"line":  set("id", "file", "line", "type", "count", "span"),
	"scope": set("id", "name", "mod", "type", "size", "parent", "sym", "span"),
	"sym":   set("id", "name", "addrsize", "scope", "def", "val", "seg", "size", "exp", "parent", "type"),
	"csym":  set("id", "name", "scope", "type", "offs", "sym", "sc"),
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func checkKnownFields(tag string, f map[string]string) error {
	allowed := knownFields[tag]
	for k := range f {
		if !allowed[k] {
			return errors.Wrapf(ErrMalformed, "%s: unknown field %q", tag, k)
		}
	}
	return nil
}

func (s *Store) apply(r record) error {
	switch r.tag {
	case "version", "info", "lib":
		return nil
	case "file":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applyFile(r.fields)
	case "mod":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applyMod(r.fields)
	case "seg":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applySeg(r.fields)
	case "span":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applySpan(r.fields)
	case "line":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applyLine(r.fields)
	case "scope":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applyScope(r.fields)
	case "sym":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applySym(r.fields)
	case "csym":
		if err := checkKnownFields(r.tag, r.fields); err != nil {
			return err
		}
		return s.applyCSym(r.fields)
	default:
		return nil
	}
}

func (s *Store) applyFile(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	size, _ := intFieldDefault(f, "size", 0)
	mtime, _ := intFieldDefault(f, "mtime", 0)
	name, _ := field(f, "name")
	s.Files[id] = &File{ID: id, Name: unquote(name), Size: size, MTime: int64(mtime)}
	return nil
}

func (s *Store) applyMod(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	name, _ := field(f, "name")
	file, _ := intFieldDefault(f, "file", -1)
	s.Modules[id] = &Module{ID: id, Name: unquote(name), File: file}
	return nil
}

func (s *Store) applySeg(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	name, _ := field(f, "name")
	start, _ := intFieldDefault(f, "start", 0)
	size, _ := intFieldDefault(f, "size", 0)
	typ := parseSegType(f)
	s.Segments[id] = &Segment{ID: id, Name: unquote(name), Start: uint16(start), Size: size, Type: typ}
	s.SegOrder = append(s.SegOrder, id)
	return nil
}

func parseSegType(f map[string]string) SegType {
	t, ok := field(f, "type")
	if !ok {
		return SegReadWrite
	}
	switch strings.ToLower(t) {
	case "ro":
		return SegReadOnly
	case "rw":
		return SegReadWrite
	case "zp":
		return SegZp
	default:
		return SegReadWrite
	}
}

func (s *Store) applySpan(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	seg, _ := intFieldDefault(f, "seg", -1)
	start, _ := intFieldDefault(f, "start", 0)
	size, _ := intFieldDefault(f, "size", 0)
	s.Spans[id] = &Span{ID: id, Seg: seg, Start: uint16(start), Size: size}
	return nil
}

func (s *Store) applyLine(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	file, _ := intFieldDefault(f, "file", -1)
	lineNo, _ := intFieldDefault(f, "line", 0)
	typ := LineAssembly
	if t, ok := field(f, "type"); ok {
		switch t {
		case "1":
			typ = LineC
		case "2":
			typ = LineMacro
		}
	}
	count, _ := intFieldDefault(f, "count", 0)
	spans := parseSpanList(f)
	s.Lines[id] = &Line{ID: id, File: file, LineNo: lineNo, Type: typ, Spans: spans, Count: count}
	for _, sp := range spans {
		s.spanOwnerLine[sp] = id
	}
	return nil
}

func (s *Store) applyScope(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	name, _ := field(f, "name")
	mod, _ := intFieldDefault(f, "mod", -1)
	typ, _ := intFieldDefault(f, "type", 0)
	size, _ := intFieldDefault(f, "size", 0)
	parent, _ := intFieldDefault(f, "parent", -1)
	sc := &Scope{ID: id, Name: unquote(name), Module: mod, Type: typ, Size: size, Parent: parent}
	if symStr, ok := field(f, "sym"); ok {
		if v, err := parseInt(symStr); err == nil {
			sc.Sym, sc.HasSym = v, true
		}
	}
	sc.Spans = parseSpanList(f)
	for _, sp := range sc.Spans {
		s.spanOwnerScope[sp] = id
	}
	s.Scopes[id] = sc
	return nil
}

// parseSpanList parses the "span" field of a line/scope record, a
// "+"-joined list of span ids (e.g. span=4+5+9).
func parseSpanList(f map[string]string) []int {
	raw, ok := field(f, "span")
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, "+")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := parseInt(p)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) applySym(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	name, _ := field(f, "name")
	sym := &Symbol{ID: id, Name: unquote(name)}

	if as, ok := field(f, "addrsize"); ok && strings.EqualFold(as, "zp") {
		sym.AddrSize = AddrZeropage
	}
	sym.Scope, _ = intFieldDefault(f, "scope", -1)
	if def, ok := field(f, "def"); ok {
		v, has, _ := parseFirstInt(def)
		if has {
			sym.Def = v
		}
	}
	if val, ok := field(f, "val"); ok {
		v, _ := parseInt(val)
		sym.Val = uint16(v)
	}
	if seg, ok := field(f, "seg"); ok {
		v, err := parseInt(seg)
		if err == nil {
			sym.Seg, sym.HasSeg = v, true
		}
	}
	sym.Size, _ = intFieldDefault(f, "size", 0)
	sym.Exp, _ = intFieldDefault(f, "exp", -1)
	sym.Parent, _ = intFieldDefault(f, "parent", -1)

	typ, _ := field(f, "type")
	switch typ {
	case "imp":
		sym.Import = true
		sym.Kind = SymUnknown
	case "equ":
		sym.Kind = SymEquate
	case "lab":
		sym.Kind = SymLabel
	default:
		sym.Kind = SymLabel
	}

	if sym.Import {
		s.SymRefs[id] = sym
	} else {
		s.SymDefs[id] = sym
		s.symsByName[sym.Name] = append(s.symsByName[sym.Name], id)
	}
	return nil
}

func (s *Store) applyCSym(f map[string]string) error {
	id, err := intField(f, "id")
	if err != nil {
		return err
	}
	name, _ := field(f, "name")
	cs := &CSymbol{ID: id, Name: unquote(name)}
	cs.Scope, _ = intFieldDefault(f, "scope", -1)
	cs.Type, _ = intFieldDefault(f, "type", 0)
	cs.Offset, _ = intFieldDefault(f, "offs", 0)
	if sym, ok := field(f, "sym"); ok {
		v, err := parseInt(sym)
		if err == nil {
			cs.Sym, cs.HasSym = v, true
		}
	}
	if sc, ok := field(f, "sc"); ok {
		switch sc {
		case "auto":
			cs.SC = SCAuto
		case "register":
			cs.SC = SCReg
		case "static":
			cs.SC = SCStatic
		default:
			cs.SC = SCExt
		}
	}
	s.CSyms[id] = cs
	return nil
}

// finalize runs the post-parse passes: dedup-equates, merge-c-statics, and
// build the address-sorted line indexes used for nearest-below lookups
// (spec §4.3, §4.4).
func (s *Store) finalize() {
	s.dedupEquates()
	s.mergeCStatics()
	s.buildSourceIndexes()
	sort.Ints(s.SegOrder)
	s.buildSegChunks()
}

// hasOwningModule reports whether sym's scope is attached to a module; equates
// declared inside a module scope are module-local and not subject to
// deduplication (spec §4.3(a) only covers the module-less, shared-header case).
func (s *Store) hasOwningModule(sym *Symbol) bool {
	if sym.Scope < 0 {
		return false
	}
	sc, ok := s.Scopes[sym.Scope]
	return ok && sc.Module >= 0
}

// dedupEquates collapses equates that share a name and have no owning module:
// cc65 emits the same textual equate once per including module when a shared
// header defines it at file scope. Only the first definition is kept as
// canonical; later ones are dropped from name lookup but remain addressable
// by id for any span/scope that still references them.
func (s *Store) dedupEquates() {
	seen := make(map[string]int) // name -> canonical symbol id
	ids := make([]int, 0, len(s.SymDefs))
	for id := range s.SymDefs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		sym := s.SymDefs[id]
		if sym.Kind != SymEquate || s.hasOwningModule(sym) {
			continue
		}
		if canon, ok := seen[sym.Name]; ok && canon != id {
			names := s.symsByName[sym.Name]
			filtered := names[:0]
			for _, nid := range names {
				if nid != id {
					filtered = append(filtered, nid)
				}
			}
			s.symsByName[sym.Name] = filtered
			continue
		}
		seen[sym.Name] = id
	}
}

// mergeCStatics attaches each static C symbol to its backing assembler
// symbol so address and value queries can be answered uniformly; where cc65
// emitted the C symbol without a sym= backref (older debug-info versions),
// it falls back to matching by name within the same scope's module.
func (s *Store) mergeCStatics() {
	for _, cs := range s.CSyms {
		if cs.SC != SCStatic || cs.HasSym {
			continue
		}
		sc, ok := s.Scopes[cs.Scope]
		if !ok {
			continue
		}
		for _, id := range s.symsByName[cs.Name] {
			sym := s.SymDefs[id]
			if sym.Scope == sc.ID || sym.Parent == sc.ID {
				cs.Sym, cs.HasSym = id, true
				break
			}
		}
	}
}

func (s *Store) buildSourceIndexes() {
	for _, ln := range s.Lines {
		for _, spID := range ln.Spans {
			sp, ok := s.Spans[spID]
			if !ok {
				continue
			}
			seg, ok := s.Segments[sp.Seg]
			if !ok {
				continue
			}
			si := SourceInfo{
				File:   ln.File,
				Line:   ln.LineNo,
				Seg:    sp.Seg,
				Offset: int(sp.Start),
				Addr:   seg.Start + sp.Start,
			}
			switch ln.Type {
			case LineC:
				s.cIndex = append(s.cIndex, si)
			default:
				s.asmIndex = append(s.asmIndex, si)
			}
		}
	}
	sort.Slice(s.asmIndex, func(i, j int) bool { return s.asmIndex[i].Addr < s.asmIndex[j].Addr })
	sort.Slice(s.cIndex, func(i, j int) bool { return s.cIndex[i].Addr < s.cIndex[j].Addr })
}

// buildSegChunks groups each segment's assembly spans by owning module,
// producing the Chunk list load_seg_list reports.
func (s *Store) buildSegChunks() {
	type key struct{ seg, mod int }
	sizes := make(map[key]int)
	mins := make(map[key]int)
	names := make(map[int]string)
	for _, m := range s.Modules {
		names[m.ID] = m.Name
	}

	for _, ln := range s.Lines {
		if ln.Type != LineAssembly {
			continue
		}
		file, ok := s.Files[ln.File]
		_ = file
		if !ok {
			continue
		}
		modID := moduleForFile(s.Modules, ln.File)
		if modID < 0 {
			continue
		}
		for _, spID := range ln.Spans {
			sp, ok := s.Spans[spID]
			if !ok {
				continue
			}
			k := key{sp.Seg, modID}
			sizes[k] += sp.Size
			if cur, ok := mins[k]; !ok || int(sp.Start) < cur {
				mins[k] = int(sp.Start)
			}
		}
	}

	for k, sz := range sizes {
		seg, ok := s.Segments[k.seg]
		if !ok {
			continue
		}
		seg.Modules = append(seg.Modules, Chunk{
			Offset:     mins[k],
			ModuleID:   k.mod,
			ModuleName: names[k.mod],
			Size:       sz,
		})
	}
	for _, seg := range s.Segments {
		sort.Slice(seg.Modules, func(i, j int) bool { return seg.Modules[i].Offset < seg.Modules[j].Offset })
	}
}

func moduleForFile(mods map[int]*Module, fileID int) int {
	for _, m := range mods {
		if m.File == fileID {
			return m.ID
		}
	}
	return -1
}

var errNotFound = errors.New("not found")

// ErrNotFound is returned by lookups that found nothing, distinguishing a
// clean miss from a malformed query.
var ErrNotFound = errNotFound
