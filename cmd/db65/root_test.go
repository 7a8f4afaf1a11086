package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandRegistersEverySubcommand(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{
		"load", "dbg", "run", "break", "watch",
		"go", "step", "next", "finish", "regs", "mem", "eval", "dump",
	}, names)
}

func TestParseWatchKindRejectsUnknown(t *testing.T) {
	_, err := parseWatchKind("bogus")
	assert.Error(t, err)
}

func TestParseWatchKindAcceptsAllThree(t *testing.T) {
	for _, k := range []string{"read", "write", "readwrite"} {
		_, err := parseWatchKind(k)
		assert.NoError(t, err)
	}
}
