package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pm100/db65-sub000/internal/cpu"
)

func writeImage(t *testing.T, dir string, cpuByte, sp65 byte, loadAddr, runAddr uint16, body []byte) string {
	t.Helper()
	path := filepath.Join(dir, "test.bin")
	buf := []byte{0x73, 0x69, 0x6D, 0x36, 0x35, headerVersion, cpuByte, sp65,
		byte(loadAddr), byte(loadAddr >> 8), byte(runAddr), byte(runAddr >> 8)}
	buf = append(buf, body...)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoadValidImage(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, 0, 0x02, 0x0200, 0x0200, []byte{0xA9, 0x05, 0x00})

	m := cpu.New(zap.NewNop().Sugar())
	res, err := Load(m, path)
	require.NoError(t, err)

	assert.EqualValues(t, 0x0200, res.Header.LoadAddr)
	assert.EqualValues(t, 0x0200, res.Header.RunAddr)
	assert.EqualValues(t, cpu.Variant6502, res.Header.CPU)
	assert.Equal(t, 3, res.ByteCount)
	assert.EqualValues(t, 0xA9, m.PeekByte(0x0200))
	assert.EqualValues(t, 0x05, m.PeekByte(0x0201))
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte("not-a-sim65-image-at-all"), 0o644))

	m := cpu.New(zap.NewNop().Sugar())
	_, err := Load(m, path)
	require.Error(t, err)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badver.bin")
	buf := []byte{0x73, 0x69, 0x6D, 0x36, 0x35, 99, 0, 0x02, 0x00, 0x02, 0x00, 0x02}
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	m := cpu.New(zap.NewNop().Sugar())
	_, err := Load(m, path)
	require.Error(t, err)
}
