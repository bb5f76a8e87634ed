package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Duplicates counts, for each year with a data file, the records of table
// that repeat the key of an earlier record in the same year. Columns are
// named as in the reference year catalog. Years whose file lacks a key
// column are left out. Nil years means every data year; nil key means
// DefaultDuplicateKey.
func (s *Service) Duplicates(ctx context.Context, table string, years []int, key []string) ([]DuplicateCount, error) {
	if _, ok := s.opts.Archive.Files[table]; !ok {
		return nil, &ValidationError{Err: ErrUnknownTable, Value: table, Valid: s.opts.Archive.Files.Tables()}
	}
	if years == nil {
		years = s.opts.Years
	} else if err := s.checkDataYears(years); err != nil {
		return nil, err
	}
	if len(key) == 0 {
		key = DefaultDuplicateKey
	}

	ref, err := s.readReference(ctx, s.opts.RefYear, []string{table})
	if err != nil {
		return nil, err
	}

	var out []DuplicateCount
	for _, year := range sortedYears(years) {
		yb, err := s.ReadTable(ctx, ref.catalog, table, year)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		idx := make([]int, len(key))
		complete := true
		for i, k := range key {
			if idx[i] = yb.Batch.Index(k); idx[i] < 0 {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		seen := make(map[string]struct{}, yb.Batch.Len())
		var parts []string
		for _, row := range yb.Batch.Rows {
			parts = parts[:0]
			for _, i := range idx {
				parts = append(parts, fmt.Sprint(keyValue(row[i])))
			}
			seen[strings.Join(parts, "\x1f")] = struct{}{}
		}
		out = append(out, DuplicateCount{
			Year:       year,
			Records:    yb.Batch.Len(),
			Duplicates: yb.Batch.Len() - len(seen),
		})
	}
	return out, nil
}
