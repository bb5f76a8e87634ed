package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// Options configures a Service.
type Options struct {
	Archive Archive

	// Years are the years for which the archive has data.
	Years []int

	// WorkingYears are the years extracts may request. A subset of Years.
	WorkingYears []int

	// RefYear is the year whose catalog and headers define the schema.
	RefYear int

	// Tables are the tables cloned by default. Empty means every table in
	// the archive's file map.
	Tables []string

	BadColumns     schema.ColumnSet
	BadRespondents []int

	// Workers bounds the tables decoded concurrently during a clone.
	Workers int
}

// Service provides the clone and extract operations over one store.
type Service struct {
	store store.Store
	opts  Options
}

// NewService creates a new Service instance.
func NewService(st store.Store, opts Options) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("nil store")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.RefYear == 0 && len(opts.Years) > 0 {
		opts.RefYear = slices.Max(opts.Years)
	}
	if opts.WorkingYears == nil {
		opts.WorkingYears = opts.Years
	}
	opts.Years = sortedYears(opts.Years)
	opts.WorkingYears = sortedYears(opts.WorkingYears)
	for _, t := range opts.Tables {
		if _, ok := opts.Archive.Files[t]; !ok {
			return nil, fmt.Errorf("table %s has no data file mapping", t)
		}
	}
	return &Service{store: st, opts: opts}, nil
}

// Store returns the underlying store.
func (s *Service) Store() store.Store { return s.store }

// ListTables returns the registered extract definitions.
func (s *Service) ListTables() []TableDefinition {
	return All()
}

// DataYears returns the years the archive has data for.
func (s *Service) DataYears() []int { return slices.Clone(s.opts.Years) }

// WorkingYears returns the years extracts may request.
func (s *Service) WorkingYears() []int { return slices.Clone(s.opts.WorkingYears) }

// RefYear returns the year whose catalog defines the schema.
func (s *Service) RefYear() int { return s.opts.RefYear }

// Health checks that the store answers.
func (s *Service) Health(ctx context.Context) error {
	_, err := s.store.Tables(ctx)
	return err
}

func (s *Service) cloneTables() []string {
	if len(s.opts.Tables) > 0 {
		return slices.Clone(s.opts.Tables)
	}
	return s.opts.Archive.Files.Tables()
}

func sortedYears(years []int) []int {
	out := slices.Clone(years)
	slices.Sort(out)
	return slices.Compact(out)
}
