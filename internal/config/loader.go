package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/imstr/internal/logging"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "IMSTR_"

type loader struct {
	logger    *logging.Logger
	envPrefix string
	lookupEnv func(string) (string, bool)
}

// Option configures loading.
type Option func(*loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(ld *loader) {
		ld.logger = l
	}
}

// WithEnvPrefix sets the environment variable prefix. Empty disables
// environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(ld *loader) {
		ld.envPrefix = prefix
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(ld *loader) {
		ld.lookupEnv = fn
	}
}

func newLoader(opts []Option) *loader {
	ld := &loader{
		logger:    logging.Nop(),
		envPrefix: DefaultEnvPrefix,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads the TOML file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string, opts ...Option) (*Config, error) {
	ld := newLoader(opts)
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			ld.logger.Debug("config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := parse(path, data, cfg); err != nil {
				return nil, err
			}
			ld.logger.Debug("loaded config from %s", path)
		}
	}
	return ld.finish(cfg)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader, opts ...Option) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := parse("<reader>", data, cfg); err != nil {
		return nil, err
	}
	return newLoader(opts).finish(cfg)
}

func (ld *loader) finish(cfg *Config) (*Config, error) {
	if err := ld.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse decodes data over cfg. Unknown keys are errors.
func parse(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			pe.Message = "unknown keys: " + strings.Join(missingKeys(serr), ", ")
			if len(serr.Errors) > 0 {
				pe.Line, pe.Column = serr.Errors[0].Position()
			}
		}
		return pe
	}
	return nil
}

func missingKeys(serr *toml.StrictMissingError) []string {
	keys := make([]string, 0, len(serr.Errors))
	for _, e := range serr.Errors {
		keys = append(keys, strings.Join(e.Key(), "."))
	}
	return keys
}

// applyEnv overrides settings from PREFIX_STRATEGY, PREFIX_POOL,
// PREFIX_LOG_LEVEL and PREFIX_METRICS_ADDR.
func (ld *loader) applyEnv(cfg *Config) error {
	if ld.envPrefix == "" {
		return nil
	}
	lookup := func(name string) (string, bool) {
		return ld.lookupEnv(ld.envPrefix + name)
	}

	if v, ok := lookup("STRATEGY"); ok {
		cfg.Strategy = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}
	if v, ok := lookup("POOL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sPOOL: %v", ErrValidationFailed, ld.envPrefix, err)
		}
		cfg.Pool = b
	}
	return nil
}
