// Package expr evaluates the address expressions accepted anywhere the
// shell expects an address: register names, symbols, integer literals, the
// usual arithmetic operators, and an `@(...)` memory-dereference builtin.
package expr

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// Registers supplies the current register values as expression variables
// ac, xr, yr, sp, pc.
type Registers interface {
	AC() uint16
	XR() uint16
	YR() uint16
	SP() uint16
	PC() uint16
}

// SymbolLookup resolves a bare identifier to an address, for expressions
// that reference a label or equate by name.
type SymbolLookup interface {
	LookupSymbol(name string) (uint16, bool)
}

// MemReader backs the `@(expr)` dereference builtin.
type MemReader interface {
	PeekWord(addr uint16) uint16
}

// ErrSyntax is wrapped around any parse failure, with the offending token.
var ErrSyntax = errors.New("expression syntax error")

// ErrUnknownSymbol is wrapped around a reference to an identifier that is
// neither a register nor a resolvable symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Eval parses and evaluates expr, returning its value truncated to 16 bits.
func Eval(expr string, regs Registers, syms SymbolLookup, mem MemReader) (uint16, error) {
	p := &parser{regs: regs, syms: syms, mem: mem}
	p.sc.Init(strings.NewReader(expr))
	p.sc.Mode = scanner.ScanIdents | scanner.ScanInts
	p.next()

	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok != scanner.EOF {
		return 0, errors.Wrapf(ErrSyntax, "unexpected trailing input near %q", p.text)
	}
	return uint16(v), nil
}

type parser struct {
	sc   scanner.Scanner
	tok  rune
	text string

	regs Registers
	syms SymbolLookup
	mem  MemReader
}

func (p *parser) next() {
	p.tok = p.sc.Scan()
	p.text = p.sc.TokenText()
}

// parseExpr : term (('+' | '-') term)*
func (p *parser) parseExpr() (int64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.text == "+" || p.text == "-" {
		op := p.text
		p.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

// parseTerm : unary (('*' | '/' | '&' | '|') unary)*
func (p *parser) parseTerm() (int64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.text == "*" || p.text == "/" || p.text == "&" || p.text == "|" {
		op := p.text
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			v *= rhs
		case "/":
			if rhs == 0 {
				return 0, errors.Wrap(ErrSyntax, "division by zero")
			}
			v /= rhs
		case "&":
			v &= rhs
		case "|":
			v |= rhs
		}
	}
	return v, nil
}

// parseUnary : '-' unary | primary
func (p *parser) parseUnary() (int64, error) {
	if p.text == "-" {
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

// parsePrimary : number | '(' expr ')' | '@' '(' expr ')' | ident
func (p *parser) parsePrimary() (int64, error) {
	switch {
	case p.text == "(":
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.text != ")" {
			return 0, errors.Wrapf(ErrSyntax, "expected ')', got %q", p.text)
		}
		p.next()
		return v, nil

	case p.text == "@":
		p.next()
		if p.text != "(" {
			return 0, errors.Wrapf(ErrSyntax, "expected '(' after '@', got %q", p.text)
		}
		p.next()
		addr, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.text != ")" {
			return 0, errors.Wrapf(ErrSyntax, "expected ')', got %q", p.text)
		}
		p.next()
		if p.mem == nil {
			return 0, errors.Wrap(ErrSyntax, "@() not supported in this context")
		}
		if addr < 0 || addr > 0xFFFF {
			return 0, errors.Wrapf(ErrSyntax, "@() address %d exceeds 16 bits", addr)
		}
		return int64(p.mem.PeekWord(uint16(addr))), nil

	case p.tok == scanner.Int:
		v, err := parseNumber(p.text)
		if err != nil {
			return 0, err
		}
		p.next()
		return v, nil

	case p.text == "$":
		// text/scanner tokenizes "$12AB" as '$', Int "12", Ident "AB"; cc65
		// style hex literals are handled by gluing the adjacent digit tokens.
		p.next()
		digits, end := "", -1
		for (p.tok == scanner.Int || p.tok == scanner.Ident) && (end < 0 || p.sc.Position.Offset == end) {
			digits += p.text
			end = p.sc.Position.Offset + len(p.text)
			p.next()
		}
		v, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrSyntax, "bad hex literal $%s", digits)
		}
		return v, nil

	case p.tok == scanner.Ident, p.text == ".":
		name := p.text
		p.next()
		// cc65 local-label style names may start with '.'; glue it to the
		// following identifier token if the scanner split them.
		if name == "." && p.tok == scanner.Ident {
			name += p.text
			p.next()
		}
		return p.resolveIdent(name)

	default:
		return 0, errors.Wrapf(ErrSyntax, "unexpected token %q", p.text)
	}
}

func (p *parser) resolveIdent(name string) (int64, error) {
	switch strings.ToLower(name) {
	case "ac":
		return int64(p.regs.AC()), nil
	case "xr":
		return int64(p.regs.XR()), nil
	case "yr":
		return int64(p.regs.YR()), nil
	case "sp":
		return int64(p.regs.SP()), nil
	case "pc":
		return int64(p.regs.PC()), nil
	}
	if p.syms != nil {
		if v, ok := p.syms.LookupSymbol(name); ok {
			return int64(v), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownSymbol, "%q", name)
}

func parseNumber(text string) (int64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseInt(text[2:], 16, 64)
		return v, errors.Wrapf(err, "bad hex literal %q", text)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	return v, errors.Wrapf(err, "bad integer literal %q", text)
}
