// Package source locates and caches the on-disk source files referenced by
// debug info, so the debug engine can show the user a source line for any
// address without re-reading files on every stop.
package source

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// File is one resolved (or failed) source file, read once and cached by
// line number.
type File struct {
	ID       int
	Name     string // the name debug info referenced, e.g. "libsrc/runtime/crt0.s"
	FullPath string // the path it was actually found at, once resolved
	Lines    []string
	Failed   bool
}

// Line returns the 1-indexed source line, or "" if out of range or the file
// failed to resolve.
func (f *File) Line(lineNo int) string {
	if f == nil || f.Failed || lineNo < 1 || lineNo > len(f.Lines) {
		return ""
	}
	return f.Lines[lineNo-1]
}

// Resolver locates and caches source files under a configurable cc65 root.
type Resolver struct {
	cc65Dir string
	cwd     string
	log     *zap.SugaredLogger

	files map[int]*File
}

// New creates a Resolver. cwd defaults to the process's working directory
// when empty.
func New(log *zap.SugaredLogger, cc65Dir string) *Resolver {
	cwd, _ := os.Getwd()
	return &Resolver{cc65Dir: cc65Dir, cwd: cwd, log: log, files: make(map[int]*File)}
}

// SetCC65Dir updates the root directory probed for libsrc-relative paths
// (the shell's `set_cc65_dir` operation).
func (r *Resolver) SetCC65Dir(dir string) {
	r.cc65Dir = dir
}

// Resolve locates and reads name (the path debug info recorded for file
// id), caching the result. Re-resolving the same id returns the cached
// File without touching disk again, matching the "read once, never retry"
// rule in spec §4.5.
func (r *Resolver) Resolve(id int, name string) *File {
	if f, ok := r.files[id]; ok {
		return f
	}
	full, ok := r.find(name)
	f := &File{ID: id, Name: name}
	if !ok {
		f.Failed = true
		r.files[id] = f
		return f
	}
	lines, err := readLines(full)
	if err != nil {
		f.Failed = true
		r.files[id] = f
		return f
	}
	f.FullPath = full
	f.Lines = lines
	r.files[id] = f
	return f
}

// find implements the probing order from spec §4.5: absolute path as-is,
// then <cc65Dir>/libsrc/<relative>, then cwd/<relative>, then repeatedly
// stripping leading path components of a nominally-absolute foreign path
// and re-probing under the cc65 root (for debug info produced on another
// machine, where the absolute path won't exist locally).
func (r *Resolver) find(name string) (string, bool) {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name, true
		}
	} else {
		if r.cc65Dir != "" {
			p := filepath.Join(r.cc65Dir, "libsrc", name)
			if fileExists(p) {
				return p, true
			}
		}
		p := filepath.Join(r.cwd, name)
		if fileExists(p) {
			return p, true
		}
	}

	// Foreign-machine absolute path: strip leading components and re-probe
	// under the cc65 root until either something resolves or we run out of
	// components to strip.
	if r.cc65Dir == "" {
		return "", false
	}
	parts := splitPathComponents(name)
	for i := 1; i < len(parts); i++ {
		rel := filepath.Join(parts[i:]...)
		p := filepath.Join(r.cc65Dir, "libsrc", rel)
		if fileExists(p) {
			return p, true
		}
		p = filepath.Join(r.cc65Dir, rel)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func splitPathComponents(p string) []string {
	p = filepath.ToSlash(p)
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Failures returns the names of every file that failed to resolve, for the
// single aggregate diagnostic emitted after a load_dbg (spec §4.5) instead
// of one warning per failure.
func (r *Resolver) Failures() []string {
	var out []string
	for _, f := range r.files {
		if f.Failed {
			out = append(out, f.Name)
		}
	}
	return out
}

// LogFailures emits the aggregate source-resolution diagnostic.
func (r *Resolver) LogFailures() {
	fails := r.Failures()
	if len(fails) == 0 {
		return
	}
	r.log.Warnw("could not resolve source files", "count", len(fails), "files", fails)
}
