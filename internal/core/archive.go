package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/JonMunkholm/ferc1/internal/dbc"
	"github.com/JonMunkholm/ferc1/internal/dbf"
	"github.com/JonMunkholm/ferc1/internal/logging"
	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// ctxCheckEvery is how many records are decoded between context checks.
const ctxCheckEvery = 10000

// reference is what one year's catalog and headers say about the schema.
type reference struct {
	year    int
	catalog dbc.Map
	fields  map[string][]dbf.Field
	skipped []string // tables without a data file that year
}

// readReference reads the field descriptors of tables in year and pairs
// them with the year's catalog. Tables without a data file are skipped.
func (s *Service) readReference(ctx context.Context, year int, tables []string) (*reference, error) {
	log := logging.WithFields(ctx, "year", year)
	a := s.opts.Archive

	ref := &reference{year: year, fields: make(map[string][]dbf.Field, len(tables))}
	physical := make(map[string][]string, len(tables))
	for _, t := range tables {
		path, ok := a.TablePath(t, year)
		if !ok {
			return nil, fmt.Errorf("table %s: %w", t, ErrUnknownTable)
		}
		fields, err := dbf.ReadFields(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("no data file for table", "table", t, "path", path)
			ref.skipped = append(ref.skipped, t)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s header: %w", t, err)
		}
		ref.fields[t] = fields

		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		physical[t] = names
	}

	tokens, err := dbc.ReadFile(a.CatalogPath(year), a.DBCMinLength)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	ref.catalog, err = dbc.Reconstruct(tokens, physical)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %d catalog: %w", year, err)
	}
	return ref, nil
}

// synthesize builds the schema of the tables present in ref.
func (s *Service) synthesize(ref *reference) ([]*schema.Table, error) {
	tables := make([]string, 0, len(ref.fields))
	for _, t := range ref.catalog.Tables() {
		if _, ok := ref.fields[t]; ok {
			tables = append(tables, t)
		}
	}
	return schema.Synthesize(schema.Input{
		Tables:   tables,
		Fields:   ref.fields,
		Catalog:  ref.catalog,
		TypeMap:  s.opts.Archive.TypeMap,
		Exclude:  s.opts.BadColumns,
		Registry: s.opts.Archive.Registry,
	})
}

// Synthesize returns the schema a clone of tables would create, derived
// from the reference year. Nil tables means the default clone targets.
func (s *Service) Synthesize(ctx context.Context, tables []string) ([]*schema.Table, error) {
	if tables == nil {
		tables = s.cloneTables()
	}
	ref, err := s.readReference(ctx, s.opts.RefYear, tables)
	if err != nil {
		return nil, err
	}
	return s.synthesize(ref)
}

// Catalog reconstructs the catalog of one data year for every table in the
// archive's file map that has a data file that year.
func (s *Service) Catalog(ctx context.Context, year int) (dbc.Map, error) {
	if err := s.checkDataYears([]int{year}); err != nil {
		return nil, err
	}
	ref, err := s.readReference(ctx, year, s.opts.Archive.Files.Tables())
	if err != nil {
		return nil, err
	}
	return ref.catalog, nil
}

// ReadTable decodes one year of table. Field names are renamed through
// catalog and the null flags pseudo-field is dropped; a name the catalog
// does not know is kept as stored. Numeric fields pass through
// dbf.CleanNumeric before decoding and character fields are decoded with
// the archive's encoding.
//
// A missing data file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func (s *Service) ReadTable(ctx context.Context, catalog dbc.Map, table string, year int) (*YearBatch, error) {
	path, ok := s.opts.Archive.TablePath(table, year)
	if !ok {
		return nil, fmt.Errorf("table %s: %w", table, ErrUnknownTable)
	}
	opts := []dbf.Option{dbf.WithNumericHook(dbf.CleanNumeric)}
	if enc := s.opts.Archive.Encoding; enc != nil {
		opts = append(opts, dbf.WithEncoding(enc))
	}
	rd, err := dbf.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s %d: %w", table, year, err)
	}
	defer rd.Close()

	renames := catalog.Renames(table)
	var keep []int
	var columns []string
	for i, f := range rd.Fields {
		if f.Name == dbc.NullFlags {
			continue
		}
		name := f.Name
		if full, ok := renames[f.Name]; ok {
			name = full
		}
		keep = append(keep, i)
		columns = append(columns, name)
	}

	batch := &store.Batch{Columns: columns}
	for rec, err := range rd.Records() {
		if err != nil {
			return nil, fmt.Errorf("read %s %d: %w", table, year, err)
		}
		row := make([]any, len(keep))
		for j, i := range keep {
			row[j] = rec[i]
		}
		batch.Rows = append(batch.Rows, row)

		if len(batch.Rows)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return &YearBatch{Table: table, Year: year, Batch: batch}, nil
}
