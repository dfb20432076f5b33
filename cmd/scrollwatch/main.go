// Package main is the entry point for scrollwatch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/scrollwatch/internal/app"
	"github.com/dshills/scrollwatch/internal/logging"
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
	opts, files := parseFlags()

	input, title, closeInput, err := openInput(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeInput()
	opts.Input = input
	opts.Title = title

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrQuit) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openInput picks the document: the named file, or stdin when it is piped.
func openInput(files []string) (io.Reader, string, func(), error) {
	switch {
	case len(files) > 1:
		return nil, "", nil, errors.New("only one file can be paged at a time")
	case len(files) == 1:
		f, err := os.Open(files[0])
		if err != nil {
			return nil, "", nil, err
		}
		return f, filepath.Base(files[0]), func() { f.Close() }, nil
	case !term.IsTerminal(int(os.Stdin.Fd())):
		return os.Stdin, "stdin", func() {}, nil
	default:
		// Replay runs need no document.
		return nil, "", func() {}, nil
	}
}

func parseFlags() (app.Options, []string) {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.HookScript, "hook", "", "Lua script defining on_update/on_idle")
	flag.StringVar(&opts.RecordPath, "record", "", "Record the session to a JSON-lines trace")
	flag.StringVar(&opts.ReplayPath, "replay", "", "Replay a recorded trace headless instead of paging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scrollwatch - page a file and watch scroll direction, turns and viewport size\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scrollwatch [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  scrollwatch README.md                  Page a file\n")
		fmt.Fprintf(os.Stderr, "  git log | scrollwatch                  Page stdin\n")
		fmt.Fprintf(os.Stderr, "  scrollwatch -record s.jsonl main.go    Record a session\n")
		fmt.Fprintf(os.Stderr, "  scrollwatch -replay s.jsonl -hook h.lua\n")
		fmt.Fprintf(os.Stderr, "\nKeys: arrows, hjkl, PgUp/PgDn, space, Home/End, mouse wheel; q or Esc quits.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("scrollwatch %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	return opts, flag.Args()
}
