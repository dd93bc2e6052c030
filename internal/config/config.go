// Package config loads imstr CLI settings from TOML and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dshills/imstr/internal/logging"
	"github.com/dshills/imstr/internal/storage"
)

// Config holds all settings. The zero value is not valid; start from Default.
type Config struct {
	// Strategy selects the reference-counting strategy: atomic, local or cloned.
	Strategy string `toml:"strategy"`
	// Pool enables size-class pooling of buffers.
	Pool bool `toml:"pool"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Metrics MetricsConfig `toml:"metrics"`
	Split   SplitConfig   `toml:"split"`
	Lua     LuaConfig     `toml:"lua"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `toml:"addr"`
}

// SplitConfig controls record splitting in fields mode.
type SplitConfig struct {
	// Delimiter separates key=value pairs. Empty means white space.
	Delimiter string `toml:"delimiter"`
	// TrimSpace trims keys and values.
	TrimSpace bool `toml:"trim_space"`
}

// LuaConfig bounds script execution.
type LuaConfig struct {
	InstructionLimit int64    `toml:"instruction_limit"`
	Timeout          Duration `toml:"timeout"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Strategy: storage.StrategyAtomic,
		Pool:     true,
		LogLevel: "info",
		Lua: LuaConfig{
			InstructionLimit: 1_000_000,
			Timeout:          Duration{5 * time.Second},
		},
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrValidationFailed}, args...)...))
	}

	if _, err := storage.ParseStrategy(c.Strategy); err != nil {
		fail("strategy: %v", err)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		fail("log_level: unknown level %q", c.LogLevel)
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			fail("metrics.addr: %v", err)
		}
	}
	if c.Lua.InstructionLimit < 0 {
		fail("lua.instruction_limit: must not be negative")
	}
	if c.Lua.Timeout.Duration < 0 {
		fail("lua.timeout: must not be negative")
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}
