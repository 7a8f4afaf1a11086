package dbginfo

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is wrapped around any line-level parse failure.
var ErrMalformed = errors.New("malformed debug-info record")

// record is one parsed line: tag plus its key=value fields.
type record struct {
	tag    string
	fields map[string]string
}

// Parse reads a cc65 textual debug-info stream and builds a Store.
//
// The format is line-oriented: each line is `<tag>\tid=<n>,key=val,...`. Tags
// version, info and lib are accepted and ignored; file, mod, seg, span, line,
// scope, sym, and csym populate the store. Unrecognized tags are skipped,
// matching cc65's own forward-compatibility stance (new tags may appear in
// newer debug-info versions).
func Parse(r io.Reader) (*Store, error) {
	st := newStore()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		if err := st.apply(rec); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading debug info")
	}

	st.finalize()
	return st, nil
}

func parseLine(line string) (record, error) {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return record{}, errors.Wrapf(ErrMalformed, "no tag separator in %q", line)
	}
	tag := line[:tab]
	rest := line[tab+1:]

	parts := splitFields(rest)
	fields := make(map[string]string, len(parts))
	for _, p := range parts {
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			return record{}, errors.Wrapf(ErrMalformed, "field %q has no '='", p)
		}
		fields[p[:eq]] = p[eq+1:]
	}
	return record{tag: tag, fields: fields}, nil
}

// splitFields splits a comma-separated field list, respecting double-quoted
// values that may themselves contain commas (e.g. file names).
func splitFields(s string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == ',' && !inQuotes:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseInt(s[1:], 16, 64)
		return int(v), err
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return int(v), err
	default:
		v, err := strconv.ParseInt(s, 10, 64)
		return int(v), err
	}
}

// parseFirstInt parses a "+"-joined list of numbers, e.g. def="3+9+14", and
// returns the first element. cc65 emits these when a symbol has multiple
// definitions (e.g. a .proc re-opened in several places); the store keeps
// only the primary one, which is sufficient for address<->source lookups.
func parseFirstInt(s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	first := s
	if idx := strings.IndexByte(s, '+'); idx >= 0 {
		first = s[:idx]
	}
	v, err := parseInt(first)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func field(f map[string]string, key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func intField(f map[string]string, key string) (int, error) {
	v, ok := f[key]
	if !ok {
		return 0, errors.Wrapf(ErrMalformed, "missing field %q", key)
	}
	return parseInt(v)
}

func intFieldDefault(f map[string]string, key string, def int) (int, error) {
	v, ok := f[key]
	if !ok {
		return def, nil
	}
	return parseInt(v)
}
