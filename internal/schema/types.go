// Package schema synthesizes the relational schema of the cloned archive
// from one reference year's table headers and the reconstructed catalog.
package schema

import (
	"fmt"
	"slices"
	"strings"
)

// ColumnType is the store-level type of a column.
type ColumnType int

const (
	Integer ColumnType = iota
	Real
	Text
	Date
	Timestamp
	Boolean
	Blob
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Text:
		return "text"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Boolean:
		return "boolean"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column describes one column. Length is only meaningful for Text.
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Length   int        `json:"length,omitempty"`
	Nullable bool       `json:"nullable"`
}

// ForeignKey references RefColumns of RefTable.
type ForeignKey struct {
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// Table is a synthesized table. When ReplaceOnConflict is set, inserting a
// row whose primary key already exists replaces the stored row.
type Table struct {
	Name              string       `json:"name"`
	Columns           []Column     `json:"columns"`
	PrimaryKey        []string     `json:"primary_key,omitempty"`
	ReplaceOnConflict bool         `json:"replace_on_conflict,omitempty"`
	ForeignKeys       []ForeignKey `json:"foreign_keys,omitempty"`
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Registry names the table of reporting entities and its identifier column.
type Registry struct {
	Table string
	Key   string
}

// DefaultRegistry is the respondent table of FERC Form 1.
func DefaultRegistry() Registry {
	return Registry{Table: "f1_respondent_id", Key: "respondent_id"}
}

// ColumnSet is a set of table.column pairs.
type ColumnSet map[string]struct{}

// ParseColumnSet builds a set from "table.column" strings.
func ParseColumnSet(pairs []string) (ColumnSet, error) {
	set := make(ColumnSet, len(pairs))
	for _, p := range pairs {
		table, column, ok := strings.Cut(strings.TrimSpace(p), ".")
		if !ok || table == "" || column == "" {
			return nil, fmt.Errorf("invalid column %q: want table.column", p)
		}
		set.Add(table, column)
	}
	return set, nil
}

// Add inserts a pair.
func (s ColumnSet) Add(table, column string) {
	s[table+"."+column] = struct{}{}
}

// Has reports whether the pair is in the set.
func (s ColumnSet) Has(table, column string) bool {
	_, ok := s[table+"."+column]
	return ok
}

// Sorted returns the pairs as sorted "table.column" strings.
func (s ColumnSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
