package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoConfigFile(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir()) // guaranteed empty, no .db65.yaml present

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.True(t, cfg.StackCheck)
	assert.True(t, cfg.MemCheck)
	assert.True(t, cfg.HeapCheck)
	assert.Equal(t, ".db65.breakpoints", cfg.BreakpointFile)
}

func TestLoadHonoursEnvOverride(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir())
	t.Setenv("DB65_MEM_CHECK", "false")
	t.Setenv("DB65_CC65_DIR", "/opt/cc65")

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.False(t, cfg.MemCheck)
	assert.Equal(t, "/opt/cc65", cfg.CC65Dir)
	assert.True(t, cfg.StackCheck) // untouched setting keeps its default
}
