package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	r := New(zap.NewNop().Sugar(), "")
	f := r.Resolve(1, path)

	require.False(t, f.Failed)
	assert.Equal(t, "line one", f.Line(1))
	assert.Equal(t, "line two", f.Line(2))
}

func TestResolveUnderCC65Libsrc(t *testing.T) {
	root := t.TempDir()
	libsrc := filepath.Join(root, "libsrc", "runtime")
	require.NoError(t, os.MkdirAll(libsrc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libsrc, "crt0.s"), []byte("nop\n"), 0o644))

	r := New(zap.NewNop().Sugar(), root)
	f := r.Resolve(2, "runtime/crt0.s")

	require.False(t, f.Failed)
	assert.Equal(t, "nop", f.Line(1))
}

func TestResolveStripsForeignAbsolutePath(t *testing.T) {
	root := t.TempDir()
	libsrc := filepath.Join(root, "libsrc", "runtime")
	require.NoError(t, os.MkdirAll(libsrc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libsrc, "crt0.s"), []byte("nop\n"), 0o644))

	r := New(zap.NewNop().Sugar(), root)
	f := r.Resolve(3, "/home/someoneelse/cc65/libsrc/runtime/crt0.s")

	require.False(t, f.Failed)
	assert.Equal(t, "nop", f.Line(1))
}

func TestResolveMissingFileFailsOnce(t *testing.T) {
	r := New(zap.NewNop().Sugar(), "")
	f1 := r.Resolve(4, "/nonexistent/path/main.c")
	f2 := r.Resolve(4, "/nonexistent/path/main.c")

	assert.True(t, f1.Failed)
	assert.Same(t, f1, f2)
	assert.Contains(t, r.Failures(), "/nonexistent/path/main.c")
}
