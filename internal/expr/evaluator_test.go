package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegs struct{ ac, xr, yr, sp, pc uint16 }

func (f fakeRegs) AC() uint16 { return f.ac }
func (f fakeRegs) XR() uint16 { return f.xr }
func (f fakeRegs) YR() uint16 { return f.yr }
func (f fakeRegs) SP() uint16 { return f.sp }
func (f fakeRegs) PC() uint16 { return f.pc }

type fakeSyms map[string]uint16

func (f fakeSyms) LookupSymbol(name string) (uint16, bool) {
	v, ok := f[name]
	return v, ok
}

type fakeMem map[uint16]uint16

func (f fakeMem) PeekWord(addr uint16) uint16 { return f[addr] }

func TestEvalArithmetic(t *testing.T) {
	v, err := Eval("1 + 2 * 3", nil, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)
}

func TestEvalParensAndUnaryMinus(t *testing.T) {
	v, err := Eval("(1 + 2) * -3", nil, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0xFFF7, v)
}

func TestEvalHexLiterals(t *testing.T) {
	v, err := Eval("$20 + 0x10", nil, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0x30, v)
}

func TestEvalRegisters(t *testing.T) {
	regs := fakeRegs{ac: 5, xr: 0x20, pc: 0x0200}
	v, err := Eval("xr + 0x20", regs, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0x40, v)
}

func TestEvalSymbolAndDeref(t *testing.T) {
	syms := fakeSyms{"ptr": 0x00C0}
	mem := fakeMem{0x00C0: 0x1234, 0x00E0: 0x0005}
	v, err := Eval("@(ptr)", nil, syms, mem)
	require.NoError(t, err)
	assert.EqualValues(t, 0x1234, v)

	v, err = Eval("@(ptr + 0x20*xr)", fakeRegs{xr: 1}, syms, mem)
	require.NoError(t, err)
	assert.EqualValues(t, 0x0005, v)
}

func TestEvalUnknownSymbol(t *testing.T) {
	_, err := Eval("nosuch", fakeRegs{}, fakeSyms{}, nil)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := Eval("1/0", nil, nil, nil)
	assert.Error(t, err)
}
