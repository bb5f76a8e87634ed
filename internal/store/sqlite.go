package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/ferc1/internal/schema"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db        *sql.DB
	fks       bool
	batchSize int
}

// OpenSQLite opens or creates the database file at opts.URL.
func OpenSQLite(ctx context.Context, opts Options) (*SQLite, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	dsn := opts.URL
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	fk := "0"
	if opts.ForeignKeys {
		fk = "1"
	}
	dsn += sep + "_foreign_keys=" + fk

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection: the store has a single writer, and connection-scoped
	// pragmas must hold for every statement.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = 100000
	}
	return &SQLite{db: db, fks: opts.ForeignKeys, batchSize: batch}, nil
}

func (s *SQLite) Driver() string { return "sqlite" }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DropAll drops every table with foreign key enforcement suspended, so the
// order of the drops does not matter.
func (s *SQLite) DropAll(ctx context.Context) error {
	names, err := s.Tables(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("suspend foreign keys: %w", err)
	}
	for _, name := range names {
		if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(name)); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	if s.fks {
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("restore foreign keys: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Create(ctx context.Context, tables []*schema.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, sqliteDialect.createTable(t, s.fks)); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// Insert writes b in transactions of at most the configured batch size.
// Rows of a replace-on-conflict table replace stored rows with the same key.
func (s *SQLite) Insert(ctx context.Context, t *schema.Table, b *Batch) (int64, error) {
	rows, err := coerceRows(t, b)
	if err != nil {
		return 0, err
	}

	query := sqliteDialect.insertSQL(t.Name, b.Columns)
	var n int64
	for chunk := range slices.Chunk(rows, s.batchSize) {
		if err := s.insertChunk(ctx, query, chunk); err != nil {
			return n, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		n += int64(len(chunk))
	}
	return n, nil
}

func (s *SQLite) insertChunk(ctx context.Context, query string, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Select(ctx context.Context, q Query) (*Batch, error) {
	query, args := sqliteDialect.selectSQL(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := &Batch{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if raw, ok := v.([]byte); ok && !strings.EqualFold(types[i].DatabaseTypeName(), "BLOB") {
				vals[i] = string(raw)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	return out, rows.Err()
}

func (s *SQLite) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *SQLite) Describe(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdentifier(table)+")")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			c       ColumnInfo
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	return cols, nil
}
