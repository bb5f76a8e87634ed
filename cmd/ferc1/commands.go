package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/ferc1/internal/config"
	"github.com/JonMunkholm/ferc1/internal/core"
	"github.com/JonMunkholm/ferc1/internal/web"
)

func runClone(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("clone", flag.ContinueOnError)
	tables := fs.String("tables", "", "comma separated tables to clone (default: configured tables)")
	years := fs.String("years", "", "years to load, e.g. 2004-2017 (default: every data year)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := core.CloneOptions{Tables: splitFlag(*tables)}
	if *years != "" {
		ys, err := config.ParseYears(*years)
		if err != nil {
			return fmt.Errorf("invalid parameter years: %w", err)
		}
		opts.Years = ys
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Clone.Timeout)
	defer cancel()

	res, err := a.service.Clone(ctx, opts)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tYEARS\tROWS")
	for _, t := range res.Tables {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Table, len(t.Years), t.Rows)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	slog.Info("clone finished",
		"run_id", res.RunID,
		"tables", len(res.Tables),
		"skipped", len(res.Skipped),
		"rows", res.Rows(),
		"duration", res.Duration.Round(time.Millisecond),
	)
	return nil
}

func runExtract(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	out := fs.String("out", ".", "directory receiving one CSV per table")
	tables := fs.String("tables", "", "comma separated extracts (default: all)")
	years := fs.String("years", "", "years to extract, e.g. 2015,2016 (default: working years)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	keys := splitFlag(*tables)
	if keys == nil {
		keys = core.Keys()
	}
	ys := a.service.WorkingYears()
	if *years != "" {
		var err error
		if ys, err = config.ParseYears(*years); err != nil {
			return fmt.Errorf("invalid parameter years: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Extract.Timeout)
	defer cancel()

	batches, err := a.service.Extract(ctx, keys, ys)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, key := range keys {
		b, ok := batches[key]
		if !ok {
			continue
		}
		path := filepath.Join(*out, key+".csv")
		if err := writeCSVFile(path, b); err != nil {
			return err
		}
		slog.Info("wrote extract", "table", key, "rows", b.Len(), "path", path)
	}
	return nil
}

func runCatalog(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	year := fs.Int("year", a.service.RefYear(), "archive year")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := a.service.Catalog(ctx, *year)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog)
}

func runDupes(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("dupes", flag.ContinueOnError)
	table := fs.String("table", "", "archive table, e.g. f1_fuel")
	years := fs.String("years", "", "years to check (default: every data year)")
	key := fs.String("key", "", "comma separated key columns (default: "+strings.Join(core.DefaultDuplicateKey, ",")+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *table == "" {
		return errors.New("invalid parameter table: required")
	}

	var ys []int
	if *years != "" {
		var err error
		if ys, err = config.ParseYears(*years); err != nil {
			return fmt.Errorf("invalid parameter years: %w", err)
		}
	}

	counts, err := a.service.Duplicates(ctx, *table, ys, splitFlag(*key))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tRECORDS\tDUPLICATES")
	found := false
	for _, c := range counts {
		if c.Duplicates == 0 {
			continue
		}
		found = true
		fmt.Fprintf(tw, "%d\t%d\t%d\n", c.Year, c.Records, c.Duplicates)
	}
	if !found {
		fmt.Fprintf(tw, "no duplicates in %s\n", *table)
	}
	return tw.Flush()
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.Server.Addr(), "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server := web.NewServer(a.service, a.cfg.Server, a.cfg.Security)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(*addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func splitFlag(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
