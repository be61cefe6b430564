package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/erazemk/mechatrack/internal/config"
	"github.com/erazemk/mechatrack/internal/db"
	"github.com/erazemk/mechatrack/internal/logger"
)

const usage = `Usage: mechatrack [command] [flags]

Commands:
  serve          run the HTTP API (default)
  seed           add the default common parts to the inventory
  dedupe-jobs    delete duplicate jobs (same customer and vehicle)

Flags:
  -d, -db <path>          SQLite database path (default: mechatrack.sqlite3)
  -a, -addr <host:port>   listen address, serve only (default: :5000)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be given as a MECHATRACK_* environment variable
or in a .env file; flags take precedence.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	var fn func(context.Context, *app) error
	switch command {
	case "serve":
		fn = serve
	case "seed":
		fn = seed
	case "dedupe-jobs":
		fn = dedupeJobs
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n%s", command, usage)
		return 1
	}

	cfg, err := parseConfig(command, args, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	a, err := newApp(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	runErr := fn(ctx, a)
	if runErr != nil {
		a.log.Error(ctx, command+" failed", runErr)
	}
	if err := a.Close(); err != nil {
		fmt.Fprintf(stderr, "error: closing: %v\n", err)
	}
	if runErr != nil {
		return 1
	}
	return 0
}

// parseConfig loads the environment configuration and applies flag overrides.
func parseConfig(command string, args []string, stdout, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("mechatrack "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dbPath, addr, logPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")
	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if addr != "" {
		cfg.App.Addr = addr
	}
	if logPath != "" {
		cfg.App.LogFile = logPath
	}
	return cfg, nil
}

// app holds what every command needs: configuration, logger and database.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *sql.DB
	stdout  io.Writer
	closers []func() error
}

func newApp(cfg *config.Config, stdout, stderr io.Writer) (*app, error) {
	logg, closeLog, err := logger.New(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		File:   cfg.App.LogFile,
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, multierr.Append(err, closeLog())
	}
	if err := db.EnsureSchema(database); err != nil {
		return nil, multierr.Combine(err, database.Close(), closeLog())
	}

	logg.Info(logg.WithField(context.Background(), "path", cfg.DB.Path), "database ready")

	// Close in reverse order of opening.
	return &app{
		cfg:     cfg,
		log:     logg,
		db:      database,
		stdout:  stdout,
		closers: []func() error{database.Close, closeLog},
	}, nil
}

// Close releases everything the app opened, collecting all errors.
func (a *app) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c())
	}
	return err
}
