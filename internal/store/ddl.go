package store

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/ferc1/internal/schema"
)

// dialect holds what differs between the SQL of the two backends.
type dialect struct {
	columnType  func(schema.Column) string
	placeholder func(int) string
	// conflictClause is appended to the primary key of replace-on-conflict
	// tables. PostgreSQL resolves conflicts per statement instead.
	conflictClause string
}

var sqliteDialect = dialect{
	columnType: func(c schema.Column) string {
		switch c.Type {
		case schema.Integer:
			return "INTEGER"
		case schema.Real:
			return "REAL"
		case schema.Text:
			if c.Length > 0 {
				return fmt.Sprintf("VARCHAR(%d)", c.Length)
			}
			return "TEXT"
		case schema.Date:
			return "DATE"
		case schema.Timestamp:
			return "DATETIME"
		case schema.Boolean:
			return "BOOLEAN"
		default:
			return "BLOB"
		}
	},
	placeholder:    questionPlaceholder,
	conflictClause: " ON CONFLICT REPLACE",
}

var postgresDialect = dialect{
	columnType: func(c schema.Column) string {
		switch c.Type {
		case schema.Integer:
			return "BIGINT"
		case schema.Real:
			return "DOUBLE PRECISION"
		case schema.Text:
			return "TEXT"
		case schema.Date:
			return "DATE"
		case schema.Timestamp:
			return "TIMESTAMP"
		case schema.Boolean:
			return "BOOLEAN"
		default:
			return "BYTEA"
		}
	},
	placeholder: dollarPlaceholder,
}

// createTable renders the CREATE TABLE statement for t. Foreign keys are
// only rendered when withFKs is set.
func (d dialect) createTable(t *schema.Table, withFKs bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdentifier(t.Name))

	defs := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	for _, c := range t.Columns {
		def := "\t" + quoteIdentifier(c.Name) + " " + d.columnType(c)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 {
		pk := "\tPRIMARY KEY (" + quoteList(t.PrimaryKey) + ")"
		if t.ReplaceOnConflict {
			pk += d.conflictClause
		}
		defs = append(defs, pk)
	}
	if withFKs {
		for _, fk := range t.ForeignKeys {
			defs = append(defs, fmt.Sprintf("\tFOREIGN KEY (%s) REFERENCES %s (%s)",
				quoteList(fk.Columns), quoteIdentifier(fk.RefTable), quoteList(fk.RefColumns)))
		}
	}

	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

// selectSQL renders q.
func (d dialect) selectSQL(q Query) (string, []any) {
	cols := "*"
	if len(q.Columns) > 0 {
		cols = quoteList(q.Columns)
	}

	wb := newWhereBuilder(d.placeholder)
	wb.AddExpr(q.Where)
	where, args := wb.Build()

	sql := fmt.Sprintf("SELECT %s FROM %s%s", cols, quoteIdentifier(q.Table), where)
	if len(q.OrderBy) > 0 {
		sql += " ORDER BY " + quoteList(q.OrderBy)
	}
	return sql, args
}

// insertSQL renders a single-row INSERT of columns into table.
func (d dialect) insertSQL(table string, columns []string) string {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table), quoteList(columns), strings.Join(ph, ", "))
}
