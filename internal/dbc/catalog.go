package dbc

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"
)

// NullFlags is the pseudo-field FoxPro appends to tables with nullable
// columns. It carries no data and never appears in the catalog.
const NullFlags = "_NullFlags"

// prefixLen is how many leading characters of a truncated name must agree
// with the full catalog name.
const prefixLen = 8

var (
	ErrTableNotInCatalog  = errors.New("table not in catalog")
	ErrFieldCountMismatch = errors.New("catalog field count mismatch")
	ErrPrefixMismatch     = errors.New("catalog field prefix mismatch")
)

// CountMismatchError reports a table whose catalog field list and data file
// field list have different lengths.
type CountMismatchError struct {
	Table    string
	Catalog  int
	Physical int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("table %s: catalog lists %d fields but data file has %d: %v",
		e.Table, e.Catalog, e.Physical, ErrFieldCountMismatch)
}

func (e *CountMismatchError) Unwrap() error { return ErrFieldCountMismatch }

// PrefixMismatchError reports a truncated name that does not start like the
// full name it was paired with.
type PrefixMismatchError struct {
	Table string
	Short string
	Name  string
}

func (e *PrefixMismatchError) Error() string {
	return fmt.Sprintf("table %s: field %q paired with %q: %v",
		e.Table, e.Short, e.Name, ErrPrefixMismatch)
}

func (e *PrefixMismatchError) Unwrap() error { return ErrPrefixMismatch }

// Field pairs a catalog name with the truncated name stored in the data file.
type Field struct {
	Name  string `json:"name"`
	Short string `json:"short"`
}

// Entry is the reconstructed field list of one table, in data file order.
type Entry struct {
	Table  string  `json:"table"`
	Fields []Field `json:"fields"`
}

// Map holds reconstructed entries keyed by table name.
type Map map[string]*Entry

// Rename returns the full name for a truncated field of table.
func (m Map) Rename(table, short string) (string, bool) {
	e, ok := m[table]
	if !ok {
		return "", false
	}
	for _, f := range e.Fields {
		if f.Short == short {
			return f.Name, true
		}
	}
	return "", false
}

// Renames returns the truncated-to-full name mapping for table.
func (m Map) Renames(table string) map[string]string {
	e, ok := m[table]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Short] = f.Name
	}
	return out
}

// Tables returns the names of all reconstructed tables, sorted.
func (m Map) Tables() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var whitespace = regexp.MustCompile(`\s+`)

// Layout groups catalog tokens into table name -> field names, in catalog
// order. Only tokens starting with "Table" or "Field" contribute, and only
// their first two words survive, which trims the junk that bleeds into runs
// at imperfect string boundaries. A table listed twice keeps its last list.
func Layout(tokens iter.Seq[string]) map[string][]string {
	var kept []string
	for tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		tok = whitespace.ReplaceAllString(tok, " ")
		if !strings.HasPrefix(tok, "Table") && !strings.HasPrefix(tok, "Field") {
			continue
		}
		words := strings.Fields(tok)
		if len(words) > 2 {
			words = words[:2]
		}
		kept = append(kept, strings.ReplaceAll(strings.Join(words, " "), "Field ", ""))
	}

	layout := make(map[string][]string)
	for _, chunk := range strings.Split(strings.Join(kept, " "), "Table ") {
		words := strings.Fields(chunk)
		if len(words) == 0 {
			continue
		}
		layout[words[0]] = words[1:]
	}
	return layout
}

// Reconstruct pairs the catalog field list of every table in physical with
// the truncated names read from that table's reference data file.
//
// Pairing is positional: catalog order and data file order are assumed to
// match. The only available cross-check is that each truncated name shares
// its first eight characters, case-insensitively, with the full name. Any
// failure aborts the whole reconstruction.
func Reconstruct(tokens iter.Seq[string], physical map[string][]string) (Map, error) {
	layout := Layout(tokens)

	tables := make([]string, 0, len(physical))
	for t := range physical {
		tables = append(tables, t)
	}
	slices.Sort(tables)

	m := make(Map, len(tables))
	for _, table := range tables {
		shorts := slices.DeleteFunc(slices.Clone(physical[table]), func(s string) bool {
			return s == NullFlags
		})

		names, ok := layout[table]
		if !ok {
			return nil, fmt.Errorf("table %s: %w", table, ErrTableNotInCatalog)
		}
		if len(names) != len(shorts) {
			return nil, &CountMismatchError{Table: table, Catalog: len(names), Physical: len(shorts)}
		}

		entry := &Entry{Table: table, Fields: make([]Field, len(shorts))}
		for i, short := range shorts {
			if prefix(short) != prefix(names[i]) {
				return nil, &PrefixMismatchError{Table: table, Short: short, Name: names[i]}
			}
			entry.Fields[i] = Field{Name: names[i], Short: short}
		}
		m[table] = entry
	}
	return m, nil
}

func prefix(s string) string {
	s = strings.ToLower(s)
	if len(s) > prefixLen {
		return s[:prefixLen]
	}
	return s
}
