package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/dshills/imstr/internal/config"
	"github.com/dshills/imstr/internal/logging"
	"github.com/dshills/imstr/internal/metrics"
	"github.com/dshills/imstr/internal/storage"
)

// Processing modes.
const (
	ModeLines  = "lines"
	ModeFields = "fields"
	ModeJSON   = "json"
	ModeLua    = "lua"
	ModeStats  = "stats"
)

// Options configures the application. Non-empty string options override
// the configuration file.
type Options struct {
	ConfigPath  string
	Mode        string
	Path        string // JSON path or field key
	Set         string // raw JSON written at Path in json mode
	Delete      bool   // delete Path in json mode
	Script      string
	Strategy    string
	MetricsAddr string
	LogLevel    string

	// Files are processed in order. "-" or no files reads standard input.
	Files []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Application runs one invocation of the imstr command.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *logging.Logger

	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener

	out   *bufio.Writer
	width int // terminal columns, 0 when output is not a terminal

	running atomic.Bool
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	a := &Application{
		opts:  opts,
		out:   bufio.NewWriter(opts.Stdout),
		width: terminalWidth(opts.Stdout),
	}
	if err := a.bootstrap(); err != nil {
		return nil, err
	}
	return a, nil
}

// bootstrap initializes components in dependency order.
func (a *Application) bootstrap() error {
	switch a.opts.Mode {
	case ModeLines, ModeFields, ModeJSON, ModeStats:
	case ModeLua:
		if a.opts.Script == "" {
			return &InitError{Component: "mode", Err: ErrMissingScript}
		}
	default:
		return &InitError{Component: "mode", Err: fmt.Errorf("%w: %q", ErrUnknownMode, a.opts.Mode)}
	}

	// 1. Configuration, with flags layered on top.
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if a.opts.Strategy != "" {
		cfg.Strategy = a.opts.Strategy
	}
	if a.opts.LogLevel != "" {
		cfg.LogLevel = a.opts.LogLevel
	}
	if a.opts.MetricsAddr != "" {
		cfg.Metrics.Addr = a.opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	cfg.Strategy, _ = storage.ParseStrategy(cfg.Strategy)
	a.cfg = cfg

	// 2. Logging
	a.logger = logging.New(logging.Config{
		Level:  cfg.Level(),
		Output: a.opts.Stderr,
		Prefix: "imstr",
	})
	logging.SetDefault(a.logger)
	storage.SetLogger(a.logger)
	storage.SetPooling(cfg.Pool)

	// 3. Metrics
	a.registry = prometheus.NewRegistry()
	if err := metrics.Register(a.registry); err != nil {
		return &InitError{Component: "metrics", Err: err}
	}
	return nil
}

// Config returns the effective configuration.
func (a *Application) Config() *config.Config {
	return a.cfg
}

// MetricsAddr returns the address the metrics endpoint listens on, or ""
// if it is not running.
func (a *Application) MetricsAddr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Run processes every input file.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return errors.New("application already running")
	}

	if a.cfg.Metrics.Addr != "" {
		if err := a.startMetrics(); err != nil {
			return err
		}
	}

	files := a.opts.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := storage.ReadMetrics()
		a.logger.Debug("processing %s in %s mode", name, a.opts.Mode)
		if err := a.processFile(ctx, name); err != nil {
			a.out.Flush()
			return err
		}
		if a.logger.Enabled(logging.LevelDebug) {
			d := storage.ReadMetrics().Sub(before)
			a.logger.WithField("file", name).Debug("buffers: %d allocated, %d released, %d grown",
				d.Allocs, d.Releases, d.Grows)
		}
	}
	return a.out.Flush()
}

// Shutdown stops the metrics endpoint.
func (a *Application) Shutdown() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("metrics shutdown: %v", err)
	}
	a.server = nil
}

func (a *Application) startMetrics() error {
	ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return &InitError{Component: "metrics", Err: err}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))

	a.listener = ln
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server: %v", err)
		}
	}(a.server)
	a.logger.Info("serving metrics on http://%s/metrics", ln.Addr())
	return nil
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
