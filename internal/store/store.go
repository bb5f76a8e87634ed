// Package store persists the cloned archive in a relational database.
//
// Two backends implement Store: SQLite through github.com/mattn/go-sqlite3,
// the default and a single file per clone, and PostgreSQL through pgx. The
// store is owned by one writer and is rebuilt from scratch by every clone.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/ferc1/internal/schema"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrUnknownColumn = errors.New("column not in table")
	ErrNotFound      = errors.New("table not found")
)

// Batch is a set of rows sharing one column list.
type Batch struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Index returns the position of column, or -1.
func (b *Batch) Index(column string) int {
	for i, c := range b.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Query selects rows of one table.
type Query struct {
	Table   string
	Columns []string // nil selects every column
	Where   Expr
	OrderBy []string
}

// ColumnInfo is a column as reported by the database catalog.
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// Store is a relational database holding the clone.
type Store interface {
	// Tables lists the tables currently present, sorted by name.
	Tables(ctx context.Context) ([]string, error)

	// DropAll removes every table present. It is a no-op on an empty store.
	DropAll(ctx context.Context) error

	// Create creates tables in the given order.
	Create(ctx context.Context, tables []*schema.Table) error

	// Insert coerces every value to its column type and writes b into t.
	// It returns the number of rows written.
	Insert(ctx context.Context, t *schema.Table, b *Batch) (int64, error)

	// Select runs q.
	Select(ctx context.Context, q Query) (*Batch, error)

	// Count returns the number of rows in table.
	Count(ctx context.Context, table string) (int64, error)

	// Describe returns the columns of table as the database sees them.
	Describe(ctx context.Context, table string) ([]ColumnInfo, error)

	// Driver names the backend.
	Driver() string

	Close() error
}

// Options configures Open.
type Options struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// URL is a file path for SQLite or a connection string for PostgreSQL.
	URL string

	// ForeignKeys adds foreign key constraints to created tables and, for
	// SQLite, turns on their enforcement.
	ForeignKeys bool

	// BatchSize bounds the rows written per transaction.
	BatchSize int

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open connects to the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100000
	}
	switch opts.Driver {
	case "sqlite", "sqlite3", "":
		return OpenSQLite(ctx, opts)
	case "postgres", "postgresql", "pgx":
		return OpenPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
