package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a PostgreSQL schema.
type Postgres struct {
	pool      *pgxpool.Pool
	fks       bool
	batchSize int
}

// OpenPostgres connects a pool to opts.URL.
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = 100000
	}
	return &Postgres{pool: pool, fks: opts.ForeignKeys, batchSize: batch}, nil
}

func (p *Postgres) Driver() string { return "postgres" }

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Tables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *Postgres) DropAll(ctx context.Context) error {
	names, err := p.Tables(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	_, err = p.pool.Exec(ctx, "DROP TABLE IF EXISTS "+quoteList(names)+" CASCADE")
	if err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, tables []*schema.Table) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for _, t := range tables {
			if _, err := tx.Exec(ctx, postgresDialect.createTable(t, p.fks)); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
		return nil
	})
}

// Insert uses COPY for ordinary tables. Replace-on-conflict tables are
// written row by row with an upsert so later rows win.
func (p *Postgres) Insert(ctx context.Context, t *schema.Table, b *Batch) (int64, error) {
	rows, err := coerceRows(t, b)
	if err != nil {
		return 0, err
	}

	var n int64
	for chunk := range slices.Chunk(rows, p.batchSize) {
		err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
			if t.ReplaceOnConflict && len(t.PrimaryKey) > 0 {
				return p.upsert(ctx, tx, t, b.Columns, chunk)
			}
			_, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, b.Columns, pgx.CopyFromRows(chunk))
			return err
		})
		if err != nil {
			return n, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		n += int64(len(chunk))
	}
	return n, nil
}

func (p *Postgres) upsert(ctx context.Context, tx pgx.Tx, t *schema.Table, columns []string, rows [][]any) error {
	var updates []string
	for _, c := range columns {
		if slices.Contains(t.PrimaryKey, c) {
			continue
		}
		q := quoteIdentifier(c)
		updates = append(updates, q+" = EXCLUDED."+q)
	}
	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	query := postgresDialect.insertSQL(t.Name, columns) +
		" ON CONFLICT (" + quoteList(t.PrimaryKey) + ") " + conflict

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row...)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (p *Postgres) Select(ctx context.Context, q Query) (*Batch, error) {
	query, args := postgresDialect.selectSQL(q)
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := &Batch{Columns: make([]string, len(fields))}
	for i, f := range fields {
		out.Columns[i] = f.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, vals)
	}
	return out, rows.Err()
}

func (p *Postgres) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (p *Postgres) Describe(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable = 'NO',
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage k
					ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND k.column_name = c.column_name
			)
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ColumnInfo, error) {
		var c ColumnInfo
		err := row.Scan(&c.Name, &c.Type, &c.NotNull, &c.PrimaryKey)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	return cols, nil
}
