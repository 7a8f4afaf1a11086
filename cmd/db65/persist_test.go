package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pm100/db65-sub000/internal/engine"
)

func TestBreakpointsRoundTripThroughPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakpoints.json")

	e1 := engine.New(zap.NewNop().Sugar())
	e1.SetBreak(0x0202, "main.c:12", false)
	e1.SetBreak(0x0300, "", true) // temp: must not survive the round trip

	require.NoError(t, savePersistedBreakpoints(e1, path))

	e2 := engine.New(zap.NewNop().Sugar())
	require.NoError(t, loadPersistedBreakpoints(e2, path))

	bps := e2.Breakpoints()
	require.Len(t, bps, 1)
	assert.EqualValues(t, 0x0202, bps[0].Addr)
	assert.Equal(t, "main.c:12", bps[0].Symbol)
}

func TestLoadPersistedBreakpointsMissingFileIsNotAnError(t *testing.T) {
	e := engine.New(zap.NewNop().Sugar())
	err := loadPersistedBreakpoints(e, filepath.Join(t.TempDir(), "nope.json"))
	assert.NoError(t, err)
	assert.Empty(t, e.Breakpoints())
}
