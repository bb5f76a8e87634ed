package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/JonMunkholm/ferc1/internal/logging"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// Extract returns the quality-filtered rows of each requested table for the
// requested years, keyed by extract name.
//
// Every row must satisfy the table's registered predicate, fall in years,
// and come from a respondent outside the bad respondent list. Requests are
// validated before the store is consulted: each year must be a data year
// and a working year, and each table must be registered. Empty tables or
// years return an empty map.
func (s *Service) Extract(ctx context.Context, tables []string, years []int) (map[string]*store.Batch, error) {
	if len(tables) == 0 || len(years) == 0 {
		return map[string]*store.Batch{}, nil
	}
	if err := s.checkDataYears(years); err != nil {
		return nil, err
	}
	if err := s.checkWorkingYears(years); err != nil {
		return nil, err
	}
	defs := make([]TableDefinition, 0, len(tables))
	for _, t := range tables {
		def, ok := Get(t)
		if !ok {
			return nil, &ValidationError{Err: ErrUnknownTable, Value: t, Valid: Keys()}
		}
		defs = append(defs, def)
	}

	present, err := s.store.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w; is the clone initialized?", ErrStoreEmpty)
	}

	out := make(map[string]*store.Batch, len(defs))
	for _, def := range defs {
		if _, done := out[def.Key]; done {
			continue
		}
		if !slices.Contains(present, def.Source) {
			return nil, fmt.Errorf("extract %s: %s: %w", def.Key, def.Source, store.ErrNotFound)
		}
		b, err := s.store.Select(ctx, store.Query{
			Table: def.Source,
			Where: s.filter(def, years),
		})
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", def.Key, err)
		}
		logging.WithFields(ctx, "table", def.Key, "source", def.Source).Info("extracted", "rows", b.Len())
		out[def.Key] = b
	}
	return out, nil
}

// filter combines the year and respondent restrictions with def's predicate.
func (s *Service) filter(def TableDefinition, years []int) store.Expr {
	where := store.And{
		store.In("report_year", years...),
		store.NotIn("respondent_id", s.opts.BadRespondents...),
	}
	if def.Filter != nil {
		where = append(where, def.Filter)
	}
	return where
}

func (s *Service) checkDataYears(years []int) error {
	for _, y := range years {
		if !slices.Contains(s.opts.Years, y) {
			return &ValidationError{
				Err:   ErrYearUnavailable,
				Value: fmt.Sprint(y),
				Valid: yearStrings(s.opts.Years),
			}
		}
	}
	return nil
}

func (s *Service) checkWorkingYears(years []int) error {
	for _, y := range years {
		if !slices.Contains(s.opts.WorkingYears, y) {
			return &ValidationError{
				Err:   ErrYearNotIntegrated,
				Value: fmt.Sprint(y),
				Valid: yearStrings(s.opts.WorkingYears),
			}
		}
	}
	return nil
}
