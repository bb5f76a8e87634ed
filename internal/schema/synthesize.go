package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/JonMunkholm/ferc1/internal/dbc"
	"github.com/JonMunkholm/ferc1/internal/dbf"
)

var (
	ErrNoReference = errors.New("no reference data file")
	ErrUnknownType = errors.New("no column type for field type")
	ErrUnnamed     = errors.New("field missing from catalog")
)

// Input is everything Synthesize needs. Fields holds the reference-year
// field descriptors of every table in Tables.
type Input struct {
	Tables   []string
	Fields   map[string][]dbf.Field
	Catalog  dbc.Map
	TypeMap  TypeMap
	Exclude  ColumnSet
	Registry Registry
}

// Synthesize builds the table definitions for in.Tables, registry first and
// otherwise in dependency order.
//
// Every column is renamed through the catalog and typed through the type
// map; excluded columns and the null flags pseudo-field are left out. The
// registry table gets its key as sole primary key with replace-on-conflict.
// Any other table carrying the registry key references the registry, as
// long as the registry is part of the same schema.
func Synthesize(in Input) ([]*Table, error) {
	withRegistry := slices.Contains(in.Tables, in.Registry.Table)

	tables := make(map[string]*Table, len(in.Tables))
	for _, name := range in.Tables {
		fields, ok := in.Fields[name]
		if !ok {
			return nil, fmt.Errorf("table %s: %w", name, ErrNoReference)
		}

		t := &Table{Name: name}
		for _, f := range fields {
			if f.Name == dbc.NullFlags {
				continue
			}
			col, ok := in.Catalog.Rename(name, f.Name)
			if !ok {
				return nil, fmt.Errorf("table %s field %s: %w", name, f.Name, ErrUnnamed)
			}
			if in.Exclude.Has(name, col) {
				continue
			}
			typ, ok := in.TypeMap[f.Type]
			if !ok {
				return nil, fmt.Errorf("table %s field %s type %q: %w", name, f.Name, f.Type, ErrUnknownType)
			}
			c := Column{Name: col, Type: typ, Nullable: true}
			if typ == Text && f.Type == 'C' {
				c.Length = f.Length
			}
			t.Columns = append(t.Columns, c)
		}

		_, hasKey := t.Column(in.Registry.Key)
		switch {
		case name == in.Registry.Table:
			if !hasKey {
				return nil, fmt.Errorf("registry table %s has no %s column", name, in.Registry.Key)
			}
			t.PrimaryKey = []string{in.Registry.Key}
			t.ReplaceOnConflict = true
			for i := range t.Columns {
				if t.Columns[i].Name == in.Registry.Key {
					t.Columns[i].Nullable = false
				}
			}
		case hasKey && withRegistry:
			t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
				Columns:    []string{in.Registry.Key},
				RefTable:   in.Registry.Table,
				RefColumns: []string{in.Registry.Key},
			})
		}
		tables[name] = t
	}

	ordered := Order(tables)
	if i := slices.IndexFunc(ordered, func(t *Table) bool { return t.Name == in.Registry.Table }); i > 0 {
		reg := ordered[i]
		copy(ordered[1:i+1], ordered[:i])
		ordered[0] = reg
	}
	return ordered, nil
}

// Order returns tables so that every table follows the tables it
// references. Unrelated tables are ordered by name.
func Order(tables map[string]*Table) []*Table {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	slices.Sort(names)

	visited := make(map[string]bool, len(tables))
	order := make([]*Table, 0, len(tables))
	var visit func(name string)
	visit = func(name string) {
		t, ok := tables[name]
		if !ok || visited[name] {
			return
		}
		visited[name] = true
		for _, fk := range t.ForeignKeys {
			visit(fk.RefTable)
		}
		order = append(order, t)
	}
	for _, name := range names {
		visit(name)
	}
	return order
}
