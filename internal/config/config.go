// Package config resolves db65's runtime settings from flags, environment
// variables, and an optional config file, in that order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds every setting the engine and CLI need at startup.
type Config struct {
	CC65Dir string `mapstructure:"cc65-dir"`

	StackCheck bool `mapstructure:"stack-check"`
	MemCheck   bool `mapstructure:"mem-check"`
	HeapCheck  bool `mapstructure:"heap-check"`

	BreakpointFile string `mapstructure:"breakpoint-file"`
}

// defaults mirrors engine.New's own defaults (every check enabled).
func defaults() Config {
	return Config{
		StackCheck:     true,
		MemCheck:       true,
		HeapCheck:      true,
		BreakpointFile: ".db65.breakpoints",
	}
}

// BindFlags registers the shared persistent flags on root and binds them into
// v, so cobra's parsed flag values flow through viper's precedence chain
// alongside the environment and config file.
func BindFlags(root *cobra.Command, v *viper.Viper) {
	d := defaults()
	root.PersistentFlags().String("cc65-dir", d.CC65Dir, "root directory of the cc65 installation (for libsrc-relative source lookup)")
	root.PersistentFlags().Bool("stack-check", d.StackCheck, "enable JSR/RTS stack-pointer invariant checking")
	root.PersistentFlags().Bool("mem-check", d.MemCheck, "enable read-before-write/write-forbidden checking")
	root.PersistentFlags().Bool("heap-check", d.HeapCheck, "enable malloc/free/realloc heap checking")
	root.PersistentFlags().String("breakpoint-file", d.BreakpointFile, "file breakpoints are persisted to across sessions")

	_ = v.BindPFlag("cc65-dir", root.PersistentFlags().Lookup("cc65-dir"))
	_ = v.BindPFlag("stack-check", root.PersistentFlags().Lookup("stack-check"))
	_ = v.BindPFlag("mem-check", root.PersistentFlags().Lookup("mem-check"))
	_ = v.BindPFlag("heap-check", root.PersistentFlags().Lookup("heap-check"))
	_ = v.BindPFlag("breakpoint-file", root.PersistentFlags().Lookup("breakpoint-file"))
}

// Load reads settings with precedence flags > environment (DB65_*) > config
// file (.db65.yaml, searched in cwd and $HOME) > built-in defaults.
func Load(v *viper.Viper) (Config, error) {
	d := defaults()
	v.SetDefault("cc65-dir", d.CC65Dir)
	v.SetDefault("stack-check", d.StackCheck)
	v.SetDefault("mem-check", d.MemCheck)
	v.SetDefault("heap-check", d.HeapCheck)
	v.SetDefault("breakpoint-file", d.BreakpointFile)

	v.SetEnvPrefix("DB65")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".db65")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errors.Wrap(err, "reading .db65.yaml")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshaling config")
	}
	return cfg, nil
}
