// Package config loads aliasfang's run configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"fmt"
)

// ErrNegativeWorkers is returned when a configured worker count is
// negative.
var ErrNegativeWorkers = errors.New("worker count must not be negative")

// Config is the top-level configuration struct for aliasfang.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Check CheckConfig `mapstructure:"check"`
}

// CheckConfig holds check command settings. Threads and Procs are
// defaults for the -t/-p flags; -1 means the mode is not enabled by
// configuration.
type CheckConfig struct {
	Threads    int    `mapstructure:"threads"`
	Procs      int    `mapstructure:"procs"`
	Lazy       bool   `mapstructure:"lazy"`
	NoColor    bool   `mapstructure:"no_color"`
	PolicyFile string `mapstructure:"policy_file"`
}

// Validate checks the configuration for values that must abort the run
// before any file is touched.
func (c *Config) Validate() error {
	if c.Check.Threads < disabledWorkers {
		return fmt.Errorf("check.threads: %w: %d", ErrNegativeWorkers, c.Check.Threads)
	}

	if c.Check.Procs < disabledWorkers {
		return fmt.Errorf("check.procs: %w: %d", ErrNegativeWorkers, c.Check.Procs)
	}

	return nil
}

// ThreadsEnabled reports whether configuration enables the goroutine
// pool strategy.
func (c *Config) ThreadsEnabled() bool {
	return c.Check.Threads != disabledWorkers
}

// ProcsEnabled reports whether configuration enables the process pool
// strategy.
func (c *Config) ProcsEnabled() bool {
	return c.Check.Procs != disabledWorkers
}
