package dbginfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDbg = `version	major=2,minor=0
file	id=0,name="main.c",size=120,mtime=0x5F000000
mod	id=0,name="main.o",file=0
seg	id=0,name="CODE",start=0x0200,size=0x0100,type=ro
span	id=0,seg=0,start=0,size=3
span	id=1,seg=0,start=3,size=2
line	id=0,file=0,line=10,type=1,span=0
line	id=1,file=0,line=11,type=1,span=1
scope	id=0,name="main",mod=0,type=0,size=5,parent=-1,span=0+1
sym	id=0,name="_main",addrsize=absolute,scope=0,def=0,val=0x0000,seg=0,type=lab
sym	id=1,name="BUFSIZE",addrsize=absolute,scope=0,def=1,val=0x0040,type=equ
`

func mustParse(t *testing.T, text string) *Store {
	t.Helper()
	st, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return st
}

func TestParseBuildsEntities(t *testing.T) {
	st := mustParse(t, sampleDbg)

	require.Len(t, st.Files, 1)
	assert.Equal(t, "main.c", st.Files[0].Name)
	require.Len(t, st.Segments, 1)
	assert.Equal(t, uint16(0x0200), st.Segments[0].Start)
	require.Len(t, st.SymDefs, 2)
}

func TestFindSourceLineResolvesNearestBelow(t *testing.T) {
	st := mustParse(t, sampleDbg)

	si, ok := st.FindSourceLine(0x0200)
	require.True(t, ok)
	assert.Equal(t, 10, si.Line)

	si, ok = st.FindSourceLine(0x0204)
	require.True(t, ok)
	assert.Equal(t, 11, si.Line)

	_, ok = st.FindSourceLine(0x01FF)
	assert.False(t, ok)
}

func TestFindSymbolByAddr(t *testing.T) {
	st := mustParse(t, sampleDbg)

	syms := st.FindSymbolByAddr(0x0200)
	require.Len(t, syms, 1)
	assert.Equal(t, "_main", syms[0].Name)
}

func TestGetSymbolFiltersByModule(t *testing.T) {
	st := mustParse(t, sampleDbg)

	refs := st.GetSymbol("main.BUFSIZE")
	assert.Empty(t, refs) // BUFSIZE has no scope=0's module name "main"; module name comes from mod record, not scope name

	refs = st.GetSymbol("BUFSIZE")
	require.Len(t, refs, 1)
	assert.EqualValues(t, 0x0040, refs[0].Value)
}

func TestFindSourceLineByLineNo(t *testing.T) {
	st := mustParse(t, sampleDbg)

	si, ok := st.FindSourceLineByLineNo(0, 11)
	require.True(t, ok)
	assert.EqualValues(t, 0x0203, si.Addr)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("sym\tid0,name=\"x\""))
	assert.Error(t, err)
}
