package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/JonMunkholm/ferc1/internal/dbc"
	"github.com/JonMunkholm/ferc1/internal/logging"
	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// Clone rebuilds the store from the archive.
//
// Every existing table is dropped, the schema is synthesized from the
// reference year and created, and each table is then loaded from every
// requested year that has a data file, oldest first. The registry table is
// deduplicated on its key keeping the last occurrence, so the newest year's
// respondent record wins. Tables with no rows are left empty.
//
// Up to Options.Workers tables are decoded concurrently. Writes happen on a
// single goroutine in schema order.
func (s *Service) Clone(ctx context.Context, opts CloneOptions) (*CloneResult, error) {
	tables := opts.Tables
	if len(tables) == 0 {
		tables = s.cloneTables()
	}
	for _, t := range tables {
		if _, ok := s.opts.Archive.Files[t]; !ok {
			return nil, &ValidationError{Err: ErrUnknownTable, Value: t, Valid: s.opts.Archive.Files.Tables()}
		}
	}
	years := s.opts.Years
	if opts.Years != nil {
		years = sortedYears(opts.Years)
		if err := s.checkDataYears(years); err != nil {
			return nil, err
		}
	}

	result := &CloneResult{
		RunID:   uuid.NewString(),
		RefYear: s.opts.RefYear,
		Started: time.Now(),
	}
	ctx = logging.WithRun(ctx, result.RunID)
	log := logging.FromContext(ctx)
	log.Info("clone started", "tables", len(tables), "years", len(years), "ref_year", s.opts.RefYear)

	if err := s.store.DropAll(ctx); err != nil {
		return nil, fmt.Errorf("drop tables: %w", err)
	}

	ref, err := s.readReference(ctx, s.opts.RefYear, tables)
	if err != nil {
		return nil, err
	}
	result.Skipped = ref.skipped

	defs, err := s.synthesize(ref)
	if err != nil {
		return nil, fmt.Errorf("synthesize schema: %w", err)
	}
	if err := s.store.Create(ctx, defs); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	log.Info("schema created", "tables", len(defs))

	loaded, err := s.load(ctx, ref.catalog, defs, years)
	if err != nil {
		return nil, err
	}
	result.Tables = loaded
	result.Duration = time.Since(result.Started)

	log.Info("clone finished", "rows", result.Rows(), "duration", result.Duration)
	return result, nil
}

// load decodes every table in defs and writes it. A decoded table holds a
// worker slot until the writer takes it, which bounds memory to Workers
// tables.
func (s *Service) load(ctx context.Context, catalog dbc.Map, defs []*schema.Table, years []int) ([]TableResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	slots := semaphore.NewWeighted(int64(s.opts.Workers))

	type decoded struct {
		batch *store.Batch
		years []int
	}
	ready := make([]chan decoded, len(defs))
	for i := range ready {
		ready[i] = make(chan decoded, 1)
	}

	g.Go(func() error {
		for i, def := range defs {
			if err := slots.Acquire(gctx, 1); err != nil {
				return err
			}
			g.Go(func() error {
				b, found, err := s.readAll(gctx, catalog, def, years)
				if err != nil {
					slots.Release(1)
					return err
				}
				ready[i] <- decoded{batch: b, years: found}
				return nil
			})
		}
		return nil
	})

	results := make([]TableResult, 0, len(defs))
	g.Go(func() error {
		for i, def := range defs {
			var d decoded
			select {
			case d = <-ready[i]:
			case <-gctx.Done():
				return gctx.Err()
			}
			slots.Release(1)

			res := TableResult{Table: def.Name, Years: d.years}
			if d.batch.Len() > 0 {
				logging.WithFields(gctx, "table", def.Name).Info("loading rows", "rows", d.batch.Len())
				n, err := s.store.Insert(gctx, def, d.batch)
				if err != nil {
					return fmt.Errorf("load %s: %w", def.Name, err)
				}
				res.Rows = n
			}
			results = append(results, res)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readAll concatenates every year of def into one batch laid out like def.
// Columns the schema does not have are dropped.
func (s *Service) readAll(ctx context.Context, catalog dbc.Map, def *schema.Table, years []int) (*store.Batch, []int, error) {
	log := logging.WithFields(ctx, "table", def.Name)
	columns := def.ColumnNames()
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	out := &store.Batch{Columns: columns}
	var found []int
	for _, year := range years {
		yb, err := s.ReadTable(ctx, catalog, def.Name, year)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		found = append(found, year)

		pos := make([]int, len(yb.Batch.Columns))
		for j, c := range yb.Batch.Columns {
			p, ok := index[c]
			if !ok {
				p = -1
				log.Debug("dropping column", "column", c, "year", year)
			}
			pos[j] = p
		}
		for _, row := range yb.Batch.Rows {
			aligned := make([]any, len(columns))
			for j, v := range row {
				if pos[j] >= 0 {
					aligned[pos[j]] = v
				}
			}
			out.Rows = append(out.Rows, aligned)
		}
		log.Debug("year decoded", "year", year, "rows", yb.Batch.Len())
	}

	if def.Name == s.opts.Archive.Registry.Table {
		before := out.Len()
		out.Rows = dedupeLast(out.Rows, index[s.opts.Archive.Registry.Key])
		if d := before - out.Len(); d > 0 {
			log.Debug("dropped superseded registry rows", "rows", d)
		}
	}
	return out, found, nil
}

// dedupeLast keeps the last row for each value of column key, preserving the
// order of the kept rows. Rows with a nil key are all kept.
func dedupeLast(rows [][]any, key int) [][]any {
	last := make(map[any]int, len(rows))
	for i, r := range rows {
		if k := keyValue(r[key]); k != nil {
			last[k] = i
		}
	}
	kept := rows[:0]
	for i, r := range rows {
		if k := keyValue(r[key]); k == nil || last[k] == i {
			kept = append(kept, r)
		}
	}
	clear(rows[len(kept):])
	return kept
}

// keyValue folds integral floats into int64 so that the same key decoded
// from fields of different widths compares equal.
func keyValue(v any) any {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return int64(f)
	}
	return v
}
