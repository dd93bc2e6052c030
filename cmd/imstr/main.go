// Package main is the entry point for the imstr command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/imstr/internal/app"
	"github.com/dshills/imstr/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.Mode, "mode", app.ModeLines, "Processing mode (lines, fields, json, lua, stats)")
	flag.StringVar(&opts.Mode, "m", app.ModeLines, "Processing mode (shorthand)")
	flag.StringVar(&opts.Path, "path", "", "JSON path (json mode) or field key (fields mode)")
	flag.StringVar(&opts.Set, "set", "", "Raw JSON value to write at -path")
	flag.BoolVar(&opts.Delete, "delete", false, "Delete the value at -path")
	flag.StringVar(&opts.Script, "script", "", "Lua script to run (lua mode)")
	flag.StringVar(&opts.Strategy, "strategy", "", "Storage strategy (atomic, local, cloned)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "imstr - shared, copy-on-write text processing\n\n")
		fmt.Fprintf(os.Stderr, "Usage: imstr [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  imstr file.txt                          Number the lines of a file\n")
		fmt.Fprintf(os.Stderr, "  imstr -m fields -path user access.log   Print the user field of each record\n")
		fmt.Fprintf(os.Stderr, "  imstr -m json -path a.b doc.json        Print a JSON value\n")
		fmt.Fprintf(os.Stderr, "  imstr -m json -path n -set 4 doc.json   Rewrite a JSON value\n")
		fmt.Fprintf(os.Stderr, "  imstr -m lua -script edit.lua file.txt  Run a script over a file\n")
		fmt.Fprintf(os.Stderr, "  cat file.txt | imstr -m stats           Summarize standard input\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("imstr %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	opts.Files = flag.Args()
	return opts
}
