// Package loader parses cc65/sim65 binary images: a fixed header followed by
// the raw program image, written directly into the emulated machine's RAM.
package loader

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/pm100/db65-sub000/internal/cpu"
)

// ErrInvalidHeader is returned (possibly wrapped) when any fixed header field
// fails validation.
var ErrInvalidHeader = errors.New("invalid sim65 image header")

var magic = [5]byte{0x73, 0x69, 0x6D, 0x36, 0x35} // "sim65"

const headerVersion = 2

// Header is the fixed preamble of a sim65 binary image.
type Header struct {
	Version   byte
	CPU       cpu.Variant
	Sp65Addr  byte
	LoadAddr  uint16
	RunAddr   uint16
}

// Result carries everything the debug engine needs after a successful load.
type Result struct {
	Header    Header
	ByteCount int
}

// Load reads the sim65 image at path, validates its header, and writes the
// image bytes into m's RAM starting at LoadAddr. Bytes are written with
// PokeByte (bypassing shadow permission checks) since the loader, not
// executing code, is populating memory (spec §4.2).
func Load(m *cpu.Machine, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "opening image %q", path)
	}
	defer f.Close()

	var buf [8]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return Result{}, errors.Wrapf(ErrInvalidHeader, "reading header of %q: %v", path, err)
	}

	if [5]byte{buf[0], buf[1], buf[2], buf[3], buf[4]} != magic {
		return Result{}, errors.Wrapf(ErrInvalidHeader, "%q: bad magic", path)
	}
	version := buf[5]
	if version != headerVersion {
		return Result{}, errors.Wrapf(ErrInvalidHeader, "%q: unsupported version %d", path, version)
	}
	cpuByte := buf[6]
	if cpuByte != byte(cpu.Variant6502) && cpuByte != byte(cpu.Variant65C02) {
		return Result{}, errors.Wrapf(ErrInvalidHeader, "%q: unknown cpu byte %d", path, cpuByte)
	}
	sp65Addr := buf[7]
	_ = sp65Addr // sp65Addr itself is the 8th header byte; kept distinct from the following addresses

	var addrs [4]byte
	if _, err := io.ReadFull(f, addrs[:]); err != nil {
		return Result{}, errors.Wrapf(ErrInvalidHeader, "reading addresses of %q: %v", path, err)
	}
	loadAddr := binary.LittleEndian.Uint16(addrs[0:2])
	runAddr := binary.LittleEndian.Uint16(addrs[2:4])

	image, err := io.ReadAll(f)
	if err != nil {
		return Result{}, errors.Wrapf(err, "reading image body of %q", path)
	}

	addr := loadAddr
	for _, b := range image {
		m.PokeByte(addr, b)
		addr++
	}

	hdr := Header{
		Version:  version,
		CPU:      cpu.Variant(cpuByte),
		Sp65Addr: buf[7],
		LoadAddr: loadAddr,
		RunAddr:  runAddr,
	}
	return Result{Header: hdr, ByteCount: len(image)}, nil
}
