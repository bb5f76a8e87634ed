// Command ferc1 clones the FERC Form 1 archive into a relational store and
// extracts quality-filtered tables from it.
//
// Usage:
//
//	ferc1 clone
//	ferc1 extract [-out dir] [-tables a,b] [-years 2015,2016]
//	ferc1 catalog [-year 2017]
//	ferc1 dupes -table f1_fuel [-years 2004-2017]
//	ferc1 serve
//
// Settings come from the environment and an optional .env file; see
// internal/config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ferc1/internal/config"
	"github.com/JonMunkholm/ferc1/internal/core"
	_ "github.com/JonMunkholm/ferc1/internal/core/tables" // Register all extracts
	"github.com/JonMunkholm/ferc1/internal/dbf"
	"github.com/JonMunkholm/ferc1/internal/logging"
	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"clone", "rebuild the store from the archive", runClone},
	{"extract", "write filtered tables as CSV", runExtract},
	{"catalog", "print the reconstructed catalog of a year as JSON", runCatalog},
	{"dupes", "count duplicate records per year", runDupes},
	{"serve", "serve the extraction API over HTTP", runServe},
}

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	store   store.Store
	service *core.Service
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		usage()
		return 2
	}
	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "ferc1: unknown command %q\n", args[0])
		usage()
		return 2
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		return 1
	}
	defer a.store.Close()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		slog.Error(cmd.name+" failed", "error", err, "code", core.MapError(err).Code)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ferc1 <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.summary)
	}
}

// newApp opens the store and builds the service from cfg.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	exclude, err := schema.ParseColumnSet(cfg.Clone.BadColumns)
	if err != nil {
		return nil, err
	}
	enc, err := dbf.LookupEncoding(cfg.Archive.Encoding)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:          cfg.Database.Driver,
		URL:             cfg.Database.DSN(),
		ForeignKeys:     cfg.Database.ForeignKeys,
		BatchSize:       cfg.Clone.BatchSize,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("connected to store", "driver", st.Driver())

	archive := core.DefaultArchive(cfg.Archive.DataDir)
	archive.YearDir = cfg.Archive.YearDir
	archive.CatalogFile = cfg.Archive.CatalogFile
	archive.DBCMinLength = cfg.Archive.DBCMinLength
	archive.Encoding = enc

	svc, err := core.NewService(st, core.Options{
		Archive:        archive,
		Years:          cfg.Archive.Years,
		WorkingYears:   cfg.Extract.WorkingYears,
		RefYear:        cfg.Archive.RefYear,
		Tables:         cfg.Clone.Tables,
		BadColumns:     exclude,
		BadRespondents: cfg.Extract.BadRespondents,
		Workers:        cfg.Clone.Workers,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	slog.Debug("extracts registered", "count", core.TableCount())

	return &app{cfg: cfg, store: st, service: svc}, nil
}
